// Package batcher buffers items and hands them to a flush callback in batches,
// by size or by interval, at a bounded flush rate.
package batcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// ErrStopped is returned by Add once Stop has been called.
var ErrStopped = errors.New("batcher stopped")

// FlushFunc receives a batch. The slice is reused after the call returns.
type FlushFunc[T any] func(ctx context.Context, items []T) error

// Options tunes a Batcher. Zero values fall back to defaults.
type Options struct {
	Size     int
	Interval time.Duration
	// FlushesPerSecond bounds the flush rate.
	FlushesPerSecond int
	// DrainTimeout bounds the final flush after Stop or cancellation.
	DrainTimeout time.Duration
}

const (
	defaultSize             = 100
	defaultInterval         = time.Second
	defaultFlushesPerSecond = 10
	defaultDrainTimeout     = 10 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = defaultSize
	}
	if o.Interval <= 0 {
		o.Interval = defaultInterval
	}
	if o.FlushesPerSecond <= 0 {
		o.FlushesPerSecond = defaultFlushesPerSecond
	}
	if o.DrainTimeout <= 0 {
		o.DrainTimeout = defaultDrainTimeout
	}
	return o
}

// Batcher buffers items and flushes them either by size or interval.
type Batcher[T any] struct {
	flush  FlushFunc[T]
	items  chan T
	opts   Options
	rl     ratelimit.Limiter
	logger *zap.Logger

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// New constructs a Batcher.
func New[T any](logger *zap.Logger, flush FlushFunc[T], opts Options) *Batcher[T] {
	opts = opts.withDefaults()
	return &Batcher[T]{
		logger: logger,
		flush:  flush,
		items:  make(chan T, opts.Size*2),
		opts:   opts,
		rl:     ratelimit.New(opts.FlushesPerSecond),
		stop:   make(chan struct{}),
	}
}

// Start begins the background flushing loop.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.run(ctx)
}

// Stop flushes what is queued and waits for the loop to exit. It is safe to
// call more than once.
func (b *Batcher[T]) Stop() {
	b.stopOnce.Do(func() {
		close(b.stop)
	})
	b.wg.Wait()
}

// Add queues an item, blocking while the queue is full.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stop:
		return ErrStopped
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stop:
		return ErrStopped
	case b.items <- item:
		return nil
	}
}

func (b *Batcher[T]) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.opts.Interval)
	defer ticker.Stop()

	buf := make([]T, 0, b.opts.Size)

	flush := func(ctx context.Context) {
		if len(buf) == 0 {
			return
		}

		b.rl.Take()
		if err := b.flush(ctx, buf); err != nil {
			b.logger.Error("batch not flushed", zap.Int("size", len(buf)), zap.Error(err))
		} else {
			b.logger.Debug("batch flushed", zap.Int("size", len(buf)))
		}
		buf = buf[:0]
	}

	drain := func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.opts.DrainTimeout)
		defer cancel()
		for {
			select {
			case item := <-b.items:
				buf = append(buf, item)
				if len(buf) >= b.opts.Size {
					flush(dctx)
				}
			default:
				flush(dctx)
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			return

		case <-b.stop:
			drain()
			return

		case item := <-b.items:
			buf = append(buf, item)
			if len(buf) >= b.opts.Size {
				flush(ctx)
			}

		case <-ticker.C:
			flush(ctx)
		}
	}
}
