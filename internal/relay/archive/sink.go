// Package archive copies relay events and accepted headers into the archive
// repository off the submission path.
package archive

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/btcrelay/internal/relay/model"
	"github.com/goodnatureofminers/btcrelay/pkg/batcher"
	"go.uber.org/zap"
)

// Sink buffers relay events and writes them in batches.
type Sink struct {
	repo    Repository
	batcher *batcher.Batcher[model.Event]
	logger  *zap.Logger
}

// NewSink builds a sink writing through repo.
func NewSink(repo Repository, opts batcher.Options, logger *zap.Logger) *Sink {
	s := &Sink{repo: repo, logger: logger}
	s.batcher = batcher.New(logger.Named("eventBatcher"), s.flush, opts)
	return s
}

// Start begins flushing in the background.
func (s *Sink) Start(ctx context.Context) {
	s.batcher.Start(ctx)
}

// Stop flushes buffered events and returns once they are written.
func (s *Sink) Stop() {
	s.batcher.Stop()
}

// Publish queues events. It blocks while the buffer is full.
func (s *Sink) Publish(ctx context.Context, events []model.Event) error {
	for _, e := range events {
		if err := s.batcher.Add(ctx, e); err != nil {
			return fmt.Errorf("queue %s event: %w", e.Kind, err)
		}
	}
	return nil
}

func (s *Sink) flush(ctx context.Context, events []model.Event) error {
	var headers []model.Header
	for _, e := range events {
		if e.Header != nil {
			headers = append(headers, *e.Header)
		}
	}
	if err := s.repo.InsertHeaders(ctx, headers); err != nil {
		return err
	}
	return s.repo.InsertEvents(ctx, events)
}

// Backfill archives canonical headers above the highest archived one, so the
// archive catches up with headers accepted while it was unavailable. An empty
// archive is filled from the trust anchor.
func (s *Sink) Backfill(ctx context.Context, src HeaderSource, batchSize int) (int, error) {
	network := src.Network()
	archived, found, err := s.repo.MaxArchivedHeight(ctx, network)
	if err != nil {
		return 0, fmt.Errorf("max archived height: %w", err)
	}
	anchor, err := src.AnchorHeight()
	if err != nil {
		return 0, fmt.Errorf("anchor height: %w", err)
	}
	best, err := src.GetBestHeight()
	if err != nil {
		return 0, fmt.Errorf("best height: %w", err)
	}
	from := anchor
	if found {
		from = max(anchor, archived+1)
	}
	if from > best {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	written := 0
	batch := make([]model.Header, 0, batchSize)
	write := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.repo.InsertHeaders(ctx, batch); err != nil {
			return fmt.Errorf("archive headers up to %d: %w", batch[len(batch)-1].Height, err)
		}
		written += len(batch)
		batch = batch[:0]
		return nil
	}

	for height := from; ; height++ {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		h, err := src.CanonicalHeader(height)
		if err != nil {
			return written, fmt.Errorf("canonical header %d: %w", height, err)
		}
		batch = append(batch, h)
		if len(batch) == batchSize {
			if err := write(); err != nil {
				return written, err
			}
		}
		if height == best {
			break
		}
	}
	if err := write(); err != nil {
		return written, err
	}

	s.logger.Info("archive backfilled",
		zap.String("network", string(network)),
		zap.Uint32("from", from),
		zap.Uint32("to", best),
		zap.Int("headers", written))
	return written, nil
}
