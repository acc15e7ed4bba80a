package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MemoryBackend keeps the persisted arena in process memory.
type MemoryBackend struct {
	mu       sync.Mutex
	meta     Meta
	segments map[ChainID]SegmentRecord
	headers  map[chainhash.Hash]HeaderRecord
	applied  int
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		segments: make(map[ChainID]SegmentRecord),
		headers:  make(map[chainhash.Hash]HeaderRecord),
	}
}

// Load returns a copy of the stored state.
func (b *MemoryBackend) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := &Snapshot{
		Meta:     b.meta,
		Segments: make([]SegmentRecord, 0, len(b.segments)),
		Headers:  make([]HeaderRecord, 0, len(b.headers)),
	}
	for _, id := range slices.Sorted(maps.Keys(b.segments)) {
		snap.Segments = append(snap.Segments, b.segments[id])
	}
	for _, rec := range b.headers {
		snap.Headers = append(snap.Headers, rec)
	}
	return snap, nil
}

// Apply writes the change set.
func (b *MemoryBackend) Apply(ctx context.Context, cs *ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.meta = cs.Meta
	for _, id := range cs.DeletedSegments {
		delete(b.segments, id)
	}
	for _, rec := range cs.Segments {
		b.segments[rec.ID] = rec
	}
	for _, digest := range cs.DeletedHeaders {
		delete(b.headers, digest)
	}
	for _, rec := range cs.Headers {
		b.headers[rec.Digest] = rec
	}
	b.applied++
	return nil
}

// Applied returns the number of change sets written.
func (b *MemoryBackend) Applied() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applied
}

// Close is a no-op.
func (b *MemoryBackend) Close() error {
	return nil
}
