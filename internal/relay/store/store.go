// Package store keeps the tree of accepted block headers: an arena of
// append-only segments, an index from digest to location and a pointer to the
// canonical (most-work) segment. Mutations run inside a Tx that is either
// committed to the Backend as one change set or rolled back without a trace.
//
// A Store is not safe for concurrent use.
package store

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/spv/codec"
	"github.com/holiman/uint256"
)

// Store is the chain/fork store.
type Store struct {
	cfg     Config
	backend Backend

	segments    map[ChainID]*Segment
	index       map[chainhash.Hash]Location
	canonical   ChainID
	nextID      ChainID
	initialized bool

	tx *Tx
}

// Open loads the persisted arena from backend.
func Open(ctx context.Context, backend Backend, cfg Config) (*Store, error) {
	snap, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	s := &Store{
		cfg:      cfg,
		backend:  backend,
		segments: make(map[ChainID]*Segment),
		index:    make(map[chainhash.Hash]Location),
		nextID:   MainChainID + 1,
	}
	if snap == nil || !snap.Meta.Initialized {
		return s, nil
	}
	if err := s.restore(snap); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) restore(snap *Snapshot) error {
	for _, rec := range snap.Segments {
		s.segments[rec.ID] = &Segment{
			ID:          rec.ID,
			Parent:      rec.Parent,
			HasParent:   rec.HasParent,
			StartHeight: rec.StartHeight,
			State:       rec.State,
		}
	}

	headers := slices.Clone(snap.Headers)
	slices.SortFunc(headers, func(a, b HeaderRecord) int {
		if a.Location.Chain != b.Location.Chain {
			return cmp.Compare(a.Location.Chain, b.Location.Chain)
		}
		return cmp.Compare(a.Location.Height, b.Location.Height)
	})
	for _, rec := range headers {
		seg, ok := s.segments[rec.Location.Chain]
		if !ok {
			return fmt.Errorf("header %s in missing segment %d: %w", rec.Digest, rec.Location.Chain, ErrCorruptSnapshot)
		}
		if want := seg.StartHeight + uint32(len(seg.Headers)); rec.Location.Height != want {
			return fmt.Errorf("segment %d height %d, want %d: %w", seg.ID, rec.Location.Height, want, ErrCorruptSnapshot)
		}
		h, err := codec.ParseHeader(rec.Raw[:])
		if err != nil {
			return fmt.Errorf("header %s: %w: %w", rec.Digest, ErrCorruptSnapshot, err)
		}
		if h.Digest() != rec.Digest {
			return fmt.Errorf("header %s digest mismatch: %w", rec.Digest, ErrCorruptSnapshot)
		}
		seg.Headers = append(seg.Headers, &StoredHeader{
			Header:    h,
			Digest:    rec.Digest,
			Height:    rec.Location.Height,
			ChainWork: new(uint256.Int).SetBytes32(rec.ChainWork[:]),
		})
		s.index[rec.Digest] = rec.Location
	}

	for id, seg := range s.segments {
		if len(seg.Headers) == 0 {
			return fmt.Errorf("segment %d has no headers: %w", id, ErrCorruptSnapshot)
		}
		if seg.HasParent {
			parent, ok := s.segments[seg.Parent.Chain]
			if !ok || !parent.contains(seg.Parent.Height) {
				return fmt.Errorf("segment %d parent %+v: %w", id, seg.Parent, ErrCorruptSnapshot)
			}
		}
	}
	if _, ok := s.segments[snap.Meta.Canonical]; !ok {
		return fmt.Errorf("canonical segment %d missing: %w", snap.Meta.Canonical, ErrCorruptSnapshot)
	}

	s.canonical = snap.Meta.Canonical
	s.nextID = snap.Meta.NextChainID
	s.initialized = true
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Initialized reports whether a trust anchor has been stored.
func (s *Store) Initialized() bool {
	return s.initialized
}

// Best returns the tip of the canonical chain.
func (s *Store) Best() (*StoredHeader, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return s.segments[s.canonical].Tip(), nil
}

// AnchorHeight returns the height of the trust anchor.
func (s *Store) AnchorHeight() (uint32, error) {
	if !s.initialized {
		return 0, ErrNotInitialized
	}
	return s.segments[MainChainID].StartHeight, nil
}

// BestHeight returns the height of the canonical tip.
func (s *Store) BestHeight() (uint32, error) {
	best, err := s.Best()
	if err != nil {
		return 0, err
	}
	return best.Height, nil
}

// BestDigest returns the digest of the canonical tip.
func (s *Store) BestDigest() (chainhash.Hash, error) {
	best, err := s.Best()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return best.Digest, nil
}

// Header looks up a stored header by digest, canonical or not.
func (s *Store) Header(digest chainhash.Hash) (*StoredHeader, Location, error) {
	loc, ok := s.index[digest]
	if !ok {
		return nil, Location{}, fmt.Errorf("digest %s: %w", digest, ErrBlockNotFound)
	}
	return s.segments[loc.Chain].at(loc.Height), loc, nil
}

// Contains reports whether digest is stored.
func (s *Store) Contains(digest chainhash.Hash) bool {
	_, ok := s.index[digest]
	return ok
}

// CanonicalAt returns the canonical header at height.
func (s *Store) CanonicalAt(height uint32) (*StoredHeader, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	for _, e := range s.path(s.canonical) {
		seg := s.segments[e.id]
		if height >= seg.StartHeight && height <= e.bound {
			return seg.at(height), nil
		}
	}
	return nil, fmt.Errorf("height %d: %w", height, ErrBlockNotFound)
}

// CanonicalByMerkleRoot returns the highest canonical header committing to root.
func (s *Store) CanonicalByMerkleRoot(root chainhash.Hash) (*StoredHeader, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	for _, e := range s.path(s.canonical) {
		seg := s.segments[e.id]
		for height := e.bound; ; height-- {
			if h := seg.at(height); h.Header.MerkleRoot == root {
				return h, nil
			}
			if height == seg.StartHeight {
				break
			}
		}
	}
	return nil, fmt.Errorf("merkle root %s: %w", root, ErrBlockNotFound)
}

// Ancestor returns the header at height on the branch ending in digest.
func (s *Store) Ancestor(digest chainhash.Hash, height uint32) (*StoredHeader, error) {
	loc, ok := s.index[digest]
	if !ok {
		return nil, fmt.Errorf("digest %s: %w", digest, ErrBlockNotFound)
	}
	if height > loc.Height {
		return nil, fmt.Errorf("height %d above %d: %w", height, loc.Height, ErrBlockNotFound)
	}
	seg := s.segments[loc.Chain]
	for height < seg.StartHeight {
		if !seg.HasParent {
			return nil, fmt.Errorf("height %d below anchor: %w", height, ErrBlockNotFound)
		}
		seg = s.segments[seg.Parent.Chain]
	}
	return seg.at(height), nil
}

// IsCanonical reports whether digest is on the canonical chain.
func (s *Store) IsCanonical(digest chainhash.Hash) bool {
	loc, ok := s.index[digest]
	return ok && s.isCanonical(loc)
}

// Confirmations returns best height - height + 1 for a canonical header.
func (s *Store) Confirmations(digest chainhash.Hash) (uint32, error) {
	if !s.initialized {
		return 0, ErrNotInitialized
	}
	loc, ok := s.index[digest]
	if !ok {
		return 0, fmt.Errorf("digest %s: %w", digest, ErrBlockNotFound)
	}
	if !s.isCanonical(loc) {
		return 0, fmt.Errorf("digest %s is not canonical: %w", digest, ErrBlockNotFound)
	}
	return s.segments[s.canonical].TipHeight() - loc.Height + 1, nil
}

// IsConfirmed reports whether digest is canonical with at least depth confirmations.
func (s *Store) IsConfirmed(digest chainhash.Hash, depth uint32) (bool, error) {
	confs, err := s.Confirmations(digest)
	if err != nil {
		return false, err
	}
	return confs >= depth, nil
}

// Segments summarizes every live segment ordered by id.
func (s *Store) Segments() []SegmentInfo {
	onPath := s.canonicalSet()
	out := make([]SegmentInfo, 0, len(s.segments))
	for _, id := range s.sortedIDs() {
		seg := s.segments[id]
		tip := seg.Tip()
		out = append(out, SegmentInfo{
			ID:                   seg.ID,
			Parent:               seg.Parent,
			HasParent:            seg.HasParent,
			StartHeight:          seg.StartHeight,
			TipHeight:            tip.Height,
			TipDigest:            tip.Digest,
			CumulativeDifficulty: tip.ChainWork.Clone(),
			State:                seg.State,
			Canonical:            onPath[id],
		})
	}
	return out
}

// pathEntry is one segment of a root-ward walk together with the highest
// height of it that belongs to the walk.
type pathEntry struct {
	id    ChainID
	bound uint32
}

// path walks from leaf to the anchor segment.
func (s *Store) path(leaf ChainID) []pathEntry {
	seg := s.segments[leaf]
	out := []pathEntry{{id: leaf, bound: seg.TipHeight()}}
	for seg.HasParent {
		out = append(out, pathEntry{id: seg.Parent.Chain, bound: seg.Parent.Height})
		seg = s.segments[seg.Parent.Chain]
	}
	return out
}

func (s *Store) canonicalSet() map[ChainID]bool {
	set := make(map[ChainID]bool)
	if !s.initialized {
		return set
	}
	for _, e := range s.path(s.canonical) {
		set[e.id] = true
	}
	return set
}

func (s *Store) isCanonical(loc Location) bool {
	for _, e := range s.path(s.canonical) {
		if e.id == loc.Chain {
			return loc.Height <= e.bound
		}
	}
	return false
}

func (s *Store) hasChildAt(loc Location) bool {
	for _, seg := range s.segments {
		if seg.HasParent && seg.Parent == loc {
			return true
		}
	}
	return false
}

func (s *Store) hasChildren(id ChainID) bool {
	for _, seg := range s.segments {
		if seg.HasParent && seg.Parent.Chain == id {
			return true
		}
	}
	return false
}

func (s *Store) sortedIDs() []ChainID {
	return slices.Sorted(maps.Keys(s.segments))
}
