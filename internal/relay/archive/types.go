package archive

import (
	"context"

	"github.com/goodnatureofminers/btcrelay/internal/relay/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Repository interface {
		InsertEvents(ctx context.Context, events []model.Event) error
		InsertHeaders(ctx context.Context, headers []model.Header) error
		MaxArchivedHeight(ctx context.Context, network model.Network) (uint32, bool, error)
	}
	// HeaderSource is the relay as seen by the backfill.
	HeaderSource interface {
		Network() model.Network
		AnchorHeight() (uint32, error)
		GetBestHeight() (uint32, error)
		CanonicalHeader(height uint32) (model.Header, error)
	}
)
