// Package relayer follows a Bitcoin node and feeds the headers it is missing
// into the relay.
package relayer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/btcrelay/internal/clock"
	"github.com/goodnatureofminers/btcrelay/internal/relay/store"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
	"go.uber.org/zap"
)

// Relayer submits node headers to the relay in height order.
type Relayer struct {
	logger      *zap.Logger
	relay       Relay
	fetcher     HeaderFetcher
	metrics     Metrics
	cfg         Config
	wait        func(ctx context.Context, d time.Duration, signal <-chan struct{}) error
	blockSignal <-chan struct{}
}

// New builds a Relayer. blockSignal may be nil, in which case the relayer polls.
func New(
	relay Relay,
	node NodeClient,
	metrics Metrics,
	cfg Config,
	logger *zap.Logger,
	blockSignal <-chan struct{},
) (*Relayer, error) {
	if metrics == nil {
		return nil, errors.New("relayer metrics is required")
	}
	cfg = cfg.withDefaults()
	fetcher, err := newNodeHeaderFetcher(relay, node, metrics, cfg)
	if err != nil {
		return nil, err
	}
	return &Relayer{
		logger:      logger.Named("relayer"),
		relay:       relay,
		fetcher:     fetcher,
		metrics:     metrics,
		cfg:         cfg,
		wait:        clock.WaitSignal,
		blockSignal: blockSignal,
	}, nil
}

// Run follows the node until the context is canceled.
func (r *Relayer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("run iteration failed, backing off", zap.Error(err), zap.Duration("sleep", r.cfg.SleepDuration))
			if sleepErr := r.wait(ctx, r.cfg.SleepDuration, r.blockSignal); sleepErr != nil {
				return sleepErr
			}
		}
	}
}

func (r *Relayer) run(ctx context.Context) error {
	if !r.relay.Initialized() {
		return r.bootstrap(ctx)
	}

	started := time.Now()
	rng, err := r.fetcher.Fetch(ctx)
	r.metrics.ObserveFetch(err, started)
	if err != nil {
		return err
	}
	if rng.Len() == 0 {
		r.logger.Debug("relay caught up with node; sleeping", zap.Duration("sleep", r.cfg.LongSleepDuration))
		return r.wait(ctx, r.cfg.LongSleepDuration, r.blockSignal)
	}

	started = time.Now()
	_, err = r.relay.SubmitHeaderBatch(ctx, bytes.Join(rng.Headers, nil))
	r.metrics.ObserveSubmit(err, rng.Len(), started)
	if err != nil {
		if nodeMoved(err) {
			r.fetcher.Forget()
		}
		return fmt.Errorf("submit headers %d-%d: %w", rng.From, rng.To(), err)
	}
	r.logger.Info("submitted headers",
		zap.Uint32("from", rng.From),
		zap.Uint32("to", rng.To()))

	if rng.Len() < r.cfg.BatchSize {
		return r.wait(ctx, r.cfg.SleepDuration, r.blockSignal)
	}
	return nil
}

// bootstrap initializes an empty relay from the node when configured to.
func (r *Relayer) bootstrap(ctx context.Context) error {
	if !r.cfg.Bootstrap {
		r.logger.Info("relay not initialized; waiting", zap.Duration("sleep", r.cfg.LongSleepDuration))
		return r.wait(ctx, r.cfg.LongSleepDuration, nil)
	}
	raw, err := r.fetcher.Header(ctx, r.cfg.AnchorHeight)
	if err != nil {
		return fmt.Errorf("fetch anchor: %w", err)
	}
	if err := r.relay.Initialize(ctx, raw, r.cfg.AnchorHeight); err != nil && !errors.Is(err, store.ErrAlreadyInitialized) {
		return fmt.Errorf("initialize relay at %d: %w", r.cfg.AnchorHeight, err)
	}
	r.logger.Info("relay bootstrapped from node", zap.Uint32("height", r.cfg.AnchorHeight))
	return nil
}

// nodeMoved reports whether a submission failed because the node's chain
// changed between fetching and submitting.
func nodeMoved(err error) bool {
	return errors.Is(err, store.ErrUnknownFork) ||
		errors.Is(err, store.ErrDuplicateBlock) ||
		errors.Is(err, spv.ErrInvalidChain)
}
