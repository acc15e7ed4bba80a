package relayer

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/holiman/uint256"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Relay interface {
		Initialized() bool
		Initialize(ctx context.Context, raw []byte, height uint32) error
		AnchorHeight() (uint32, error)
		GetBestHeight() (uint32, error)
		Contains(digest chainhash.Hash) bool
		SubmitHeaderBatch(ctx context.Context, raw []byte) (*uint256.Int, error)
	}
	NodeClient interface {
		GetBlockCount() (int64, error)
		GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
		GetBlockHeader(blockHash *chainhash.Hash) (*wire.BlockHeader, error)
	}
	HeaderFetcher interface {
		Fetch(ctx context.Context) (Range, error)
		Header(ctx context.Context, height uint32) ([]byte, error)
		Forget()
	}
	Metrics interface {
		ObserveFetch(err error, started time.Time)
		ObserveSubmit(err error, headers int, started time.Time)
		SetNodeHeight(height uint32)
	}
)

// Range is a run of raw headers the node has and the relay does not,
// starting at height From.
type Range struct {
	From    uint32
	Headers [][]byte
}

// Len returns the number of headers in the range.
func (r Range) Len() int {
	return len(r.Headers)
}

// To returns the height of the last header. It is only meaningful when Len > 0.
func (r Range) To() uint32 {
	return r.From + uint32(len(r.Headers)) - 1
}
