package store

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/spv/headerchain"
	"github.com/goodnatureofminers/btcrelay/internal/spv/target"
	"github.com/goodnatureofminers/btcrelay/pkg/safe"
)

// Tx is an open store transaction. Every mutation is journaled so Rollback
// restores the arena exactly; Commit hands the accumulated change set to the
// backend in one call.
type Tx struct {
	s    *Store
	done bool

	journal []func()

	savedCanonical   ChainID
	savedNextID      ChainID
	savedInitialized bool
	savedStates      map[ChainID]SegmentState

	touchedSegments map[ChainID]struct{}
	touchedHeaders  map[chainhash.Hash]struct{}
}

// Begin opens a transaction. Only one transaction may be open at a time.
func (s *Store) Begin() (*Tx, error) {
	if s.tx != nil {
		return nil, ErrTxInProgress
	}
	states := make(map[ChainID]SegmentState, len(s.segments))
	for id, seg := range s.segments {
		states[id] = seg.State
	}
	tx := &Tx{
		s:                s,
		savedCanonical:   s.canonical,
		savedNextID:      s.nextID,
		savedInitialized: s.initialized,
		savedStates:      states,
		touchedSegments:  make(map[ChainID]struct{}),
		touchedHeaders:   make(map[chainhash.Hash]struct{}),
	}
	s.tx = tx
	return tx, nil
}

// Initialize stores the trust anchor at height. The anchor's own difficulty
// seeds the cumulative work of the chain.
func (tx *Tx) Initialize(anchor headerchain.Link, height uint32) error {
	if tx.done {
		return ErrTxDone
	}
	s := tx.s
	if s.initialized {
		return ErrAlreadyInitialized
	}

	seg := &Segment{
		ID:          MainChainID,
		StartHeight: height,
		State:       StateActive,
		Headers: []*StoredHeader{{
			Header:    anchor.Header,
			Digest:    anchor.Digest,
			Height:    height,
			ChainWork: anchor.Difficulty.Clone(),
		}},
	}
	s.segments[MainChainID] = seg
	s.index[anchor.Digest] = Location{Chain: MainChainID, Height: height}
	s.canonical = MainChainID
	s.nextID = MainChainID + 1
	s.initialized = true

	tx.journal = append(tx.journal, func() {
		delete(s.segments, MainChainID)
		delete(s.index, anchor.Digest)
	})
	tx.touchSegment(MainChainID)
	tx.touchHeader(anchor.Digest)
	return nil
}

// Insert stores one validated header under its parent. A failed insert leaves
// the transaction as it was before the call.
func (tx *Tx) Insert(link headerchain.Link) (*Insertion, error) {
	if tx.done {
		return nil, ErrTxDone
	}
	s := tx.s
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	if _, ok := s.index[link.Digest]; ok {
		return nil, fmt.Errorf("digest %s: %w", link.Digest, ErrDuplicateBlock)
	}
	parentLoc, ok := s.index[link.Header.PrevBlock]
	if !ok {
		return nil, fmt.Errorf("parent %s of %s: %w", link.Header.PrevBlock, link.Digest, ErrUnknownFork)
	}

	mark := len(tx.journal)
	ins, err := tx.insert(link, parentLoc)
	if err != nil {
		tx.undoTo(mark)
		return nil, err
	}
	return ins, nil
}

func (tx *Tx) insert(link headerchain.Link, parentLoc Location) (*Insertion, error) {
	s := tx.s
	parentSeg := s.segments[parentLoc.Chain]
	parent := parentSeg.at(parentLoc.Height)

	height, err := safe.AddUint32(parentLoc.Height, 1)
	if err != nil {
		return nil, fmt.Errorf("child of %s: %w: %w", parent.Digest, ErrBlockHeightOverflow, err)
	}
	work, err := target.AddDifficulty(parent.ChainWork, link.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("chain work at %d: %w", height, err)
	}
	stored := &StoredHeader{
		Header:    link.Header,
		Digest:    link.Digest,
		Height:    height,
		ChainWork: work,
	}

	var (
		seg    *Segment
		forked bool
	)
	if parentLoc.Height == parentSeg.TipHeight() && !s.hasChildAt(parentLoc) {
		seg = parentSeg
		seg.Headers = append(seg.Headers, stored)
		tx.journal = append(tx.journal, func() {
			seg.Headers = seg.Headers[:len(seg.Headers)-1]
		})
	} else {
		id, err := tx.allocateID()
		if err != nil {
			return nil, err
		}
		seg = &Segment{
			ID:          id,
			Parent:      parentLoc,
			HasParent:   true,
			StartHeight: height,
			Headers:     []*StoredHeader{stored},
			State:       StateActive,
		}
		s.segments[id] = seg
		tx.journal = append(tx.journal, func() {
			delete(s.segments, id)
		})
		forked = true
	}
	tx.touchSegment(seg.ID)

	loc := Location{Chain: seg.ID, Height: height}
	s.index[link.Digest] = loc
	tx.journal = append(tx.journal, func() {
		delete(s.index, link.Digest)
	})
	tx.touchHeader(link.Digest)

	ins := &Insertion{
		Digest:    link.Digest,
		ChainWork: work.Clone(),
		Forked:    forked,
	}

	if seg.ID != s.canonical && work.Gt(s.segments[s.canonical].CumulativeDifficulty()) {
		reorg, err := tx.switchCanonical(seg.ID)
		if err != nil {
			return nil, err
		}
		ins.Reorg = reorg
	}

	// A fork header far behind the best height may be pruned right away.
	ins.Location = loc
	ins.Pruned = tx.refreshStates()
	ins.Canonical = s.isCanonical(loc)
	return ins, nil
}

func (tx *Tx) allocateID() (ChainID, error) {
	s := tx.s
	id := s.nextID
	next, err := safe.AddUint32(uint32(id), 1)
	if err != nil {
		return 0, fmt.Errorf("allocate segment: %w: %w", ErrChainCounterOverflow, err)
	}
	s.nextID = ChainID(next)
	tx.journal = append(tx.journal, func() {
		s.nextID = id
	})
	return id, nil
}

func (tx *Tx) undoTo(mark int) {
	for i := len(tx.journal) - 1; i >= mark; i-- {
		tx.journal[i]()
	}
	tx.journal = tx.journal[:mark]
}

func (tx *Tx) touchSegment(id ChainID) {
	tx.touchedSegments[id] = struct{}{}
}

func (tx *Tx) touchHeader(digest chainhash.Hash) {
	tx.touchedHeaders[digest] = struct{}{}
}

// Commit persists the transaction. When the backend fails the arena is
// rolled back and the backend error returned.
func (tx *Tx) Commit(ctx context.Context) error {
	if tx.done {
		return ErrTxDone
	}
	cs := tx.changeSet()
	if err := tx.s.backend.Apply(ctx, cs); err != nil {
		tx.Rollback()
		return fmt.Errorf("apply change set: %w", err)
	}
	tx.finish()
	return nil
}

// Rollback discards every change made by the transaction. It is a no-op on a
// finished transaction, so it can be deferred.
func (tx *Tx) Rollback() {
	if tx.done {
		return
	}
	s := tx.s
	tx.undoTo(0)
	s.canonical = tx.savedCanonical
	s.nextID = tx.savedNextID
	s.initialized = tx.savedInitialized
	for id, st := range tx.savedStates {
		if seg, ok := s.segments[id]; ok {
			seg.State = st
		}
	}
	tx.finish()
}

func (tx *Tx) finish() {
	tx.done = true
	tx.s.tx = nil
}

func (tx *Tx) changeSet() *ChangeSet {
	s := tx.s
	cs := &ChangeSet{
		Meta: Meta{
			Initialized: s.initialized,
			Canonical:   s.canonical,
			NextChainID: s.nextID,
		},
	}
	for _, id := range slices.Sorted(maps.Keys(tx.touchedSegments)) {
		seg, ok := s.segments[id]
		if !ok {
			cs.DeletedSegments = append(cs.DeletedSegments, id)
			continue
		}
		cs.Segments = append(cs.Segments, SegmentRecord{
			ID:          seg.ID,
			Parent:      seg.Parent,
			HasParent:   seg.HasParent,
			StartHeight: seg.StartHeight,
			State:       seg.State,
		})
	}
	digests := slices.SortedFunc(maps.Keys(tx.touchedHeaders), func(a, b chainhash.Hash) int {
		return bytes.Compare(a[:], b[:])
	})
	for _, digest := range digests {
		loc, ok := s.index[digest]
		if !ok {
			cs.DeletedHeaders = append(cs.DeletedHeaders, digest)
			continue
		}
		h := s.segments[loc.Chain].at(loc.Height)
		cs.Headers = append(cs.Headers, HeaderRecord{
			Digest:    digest,
			Location:  loc,
			Raw:       h.Header.Raw,
			ChainWork: h.ChainWork.Bytes32(),
		})
	}
	return cs
}
