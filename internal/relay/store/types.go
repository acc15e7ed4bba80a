package store

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/spv/codec"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Backend persists the arena. Apply must write a change set atomically.
	Backend interface {
		Load(ctx context.Context) (*Snapshot, error)
		Apply(ctx context.Context, cs *ChangeSet) error
		Close() error
	}
)

// Meta is the store-wide state.
type Meta struct {
	Initialized bool
	Canonical   ChainID
	NextChainID ChainID
}

// SegmentRecord is the persisted form of a segment without its headers.
type SegmentRecord struct {
	ID          ChainID
	Parent      Location
	HasParent   bool
	StartHeight uint32
	State       SegmentState
}

// HeaderRecord is the persisted form of a stored header.
type HeaderRecord struct {
	Digest    chainhash.Hash
	Location  Location
	Raw       [codec.HeaderSize]byte
	ChainWork [32]byte
}

// ChangeSet is everything one store transaction modified.
type ChangeSet struct {
	Meta            Meta
	Segments        []SegmentRecord
	DeletedSegments []ChainID
	Headers         []HeaderRecord
	DeletedHeaders  []chainhash.Hash
}

// Empty reports whether the change set only carries meta.
func (cs *ChangeSet) Empty() bool {
	return len(cs.Segments) == 0 && len(cs.DeletedSegments) == 0 &&
		len(cs.Headers) == 0 && len(cs.DeletedHeaders) == 0
}

// Snapshot is the full persisted state loaded on open.
type Snapshot struct {
	Meta     Meta
	Segments []SegmentRecord
	Headers  []HeaderRecord
}
