package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/btcrelay/internal/relay/model"
)

const insertEventsQuery = `
INSERT INTO relay_events (
	network,
	kind,
	digest,
	height,
	chain_id,
	fork_height,
	prev_digest,
	prev_height,
	observed_at
) VALUES`

// InsertEvents stores relay events.
func (r *Repository) InsertEvents(ctx context.Context, events []model.Event) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_events", firstNetwork(events), err, start)
	}()

	if len(events) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertEventsQuery)
	if err != nil {
		return fmt.Errorf("prepare events batch: %w", err)
	}

	for _, e := range events {
		if err = batch.Append(
			string(e.Network),
			string(e.Kind),
			e.Digest.String(),
			e.Height,
			e.ChainID,
			e.ForkHeight,
			prevDigest(e),
			e.PrevHeight,
			e.Observed.UTC(),
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append event: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return nil
}

func prevDigest(e model.Event) string {
	if e.Kind != model.EventChainReorg {
		return ""
	}
	return e.PrevDigest.String()
}

func firstNetwork[T model.Event | model.Header](items []T) model.Network {
	if len(items) == 0 {
		return ""
	}
	switch v := any(items[0]).(type) {
	case model.Event:
		return v.Network
	case model.Header:
		return v.Network
	default:
		return ""
	}
}
