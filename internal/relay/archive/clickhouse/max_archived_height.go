package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/btcrelay/internal/relay/model"
)

const maxArchivedHeightQuery = `
SELECT coalesce(max(height), toUInt32(0)) AS max_height, count() AS headers
FROM relay_headers FINAL
WHERE network = ?`

// MaxArchivedHeight returns the highest archived header height of a network.
// found is false when nothing is archived for it.
func (r *Repository) MaxArchivedHeight(ctx context.Context, network model.Network) (height uint32, found bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("max_archived_height", network, err, start)
	}()

	rows, err := r.conn.Query(ctx, maxArchivedHeightQuery, string(network))
	if err != nil {
		return 0, false, fmt.Errorf("query max archived height: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return 0, false, fmt.Errorf("iterate max archived height: %w", err)
		}
		return 0, false, errors.New("max archived height not found")
	}
	var headers uint64
	if err = rows.Scan(&height, &headers); err != nil {
		return 0, false, fmt.Errorf("scan max archived height: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, false, fmt.Errorf("iterate max archived height: %w", err)
	}
	return height, headers > 0, nil
}
