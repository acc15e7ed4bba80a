package clickhouse

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goodnatureofminers/btcrelay/internal/relay/model"
)

const insertHeadersQuery = `
INSERT INTO relay_headers (
	network,
	digest,
	height,
	chain_id,
	version,
	prev_block,
	merkle_root,
	timestamp,
	bits,
	nonce,
	chain_work,
	raw
) VALUES`

// InsertHeaders stores accepted headers. Re-inserting a digest replaces the
// earlier row on merge.
func (r *Repository) InsertHeaders(ctx context.Context, headers []model.Header) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_headers", firstNetwork(headers), err, start)
	}()

	if len(headers) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertHeadersQuery)
	if err != nil {
		return fmt.Errorf("prepare headers batch: %w", err)
	}

	for _, h := range headers {
		if err = batch.Append(
			string(h.Network),
			h.Digest.String(),
			h.Height,
			h.ChainID,
			h.Version,
			h.PrevBlock.String(),
			h.MerkleRoot.String(),
			h.Timestamp.UTC(),
			h.Bits,
			h.Nonce,
			h.ChainWork,
			hex.EncodeToString(h.Raw),
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append header: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert headers: %w", err)
	}
	return nil
}
