package store

import "fmt"

// switchCanonical makes leaf the canonical segment. Every segment on the new
// canonical path that continues past the point where the path leaves it is
// split, so canonical segments never carry a non-canonical tail.
func (tx *Tx) switchCanonical(leaf ChainID) (*Reorg, error) {
	s := tx.s
	oldBest := s.segments[s.canonical].Tip()
	newPath := s.path(leaf)

	forkHeight, ok := s.forkPoint(newPath)
	if !ok {
		return nil, fmt.Errorf("segment %d shares no ancestor with canonical %d: %w", leaf, s.canonical, ErrCorruptSnapshot)
	}

	prev := s.canonical
	s.canonical = leaf
	tx.journal = append(tx.journal, func() {
		s.canonical = prev
	})

	for _, e := range newPath[1:] {
		if s.segments[e.id].TipHeight() > e.bound {
			if err := tx.split(e.id, e.bound); err != nil {
				return nil, err
			}
		}
	}

	newBest := s.segments[leaf].Tip()
	return &Reorg{
		ForkHeight:    forkHeight,
		OldChain:      s.index[oldBest.Digest].Chain,
		OldBestHeight: oldBest.Height,
		OldBestDigest: oldBest.Digest,
		NewChain:      leaf,
		NewBestHeight: newBest.Height,
		NewBestDigest: newBest.Digest,
	}, nil
}

// forkPoint returns the highest height shared by the walk and the canonical path.
func (s *Store) forkPoint(walk []pathEntry) (uint32, bool) {
	canonical := make(map[ChainID]uint32)
	for _, e := range s.path(s.canonical) {
		canonical[e.id] = e.bound
	}
	for _, e := range walk {
		if bound, ok := canonical[e.id]; ok {
			return min(bound, e.bound), true
		}
	}
	return 0, false
}

// split moves the headers of id above height into a new segment. Children
// branching above height follow their headers.
func (tx *Tx) split(id ChainID, height uint32) error {
	s := tx.s
	head := s.segments[id]
	tailID, err := tx.allocateID()
	if err != nil {
		return err
	}

	cut := int(height-head.StartHeight) + 1
	tail := &Segment{
		ID:          tailID,
		Parent:      Location{Chain: id, Height: height},
		HasParent:   true,
		StartHeight: height + 1,
		Headers:     append([]*StoredHeader(nil), head.Headers[cut:]...),
		State:       head.State,
	}
	origHeaders := head.Headers
	head.Headers = head.Headers[:cut:cut]
	s.segments[tailID] = tail

	var moved []ChainID
	for _, seg := range s.segments {
		if seg.HasParent && seg.Parent.Chain == id && seg.Parent.Height > height {
			seg.Parent.Chain = tailID
			moved = append(moved, seg.ID)
			tx.touchSegment(seg.ID)
		}
	}
	for _, h := range tail.Headers {
		s.index[h.Digest] = Location{Chain: tailID, Height: h.Height}
		tx.touchHeader(h.Digest)
	}
	tx.touchSegment(id)
	tx.touchSegment(tailID)

	tx.journal = append(tx.journal, func() {
		for _, h := range tail.Headers {
			s.index[h.Digest] = Location{Chain: id, Height: h.Height}
		}
		for _, child := range moved {
			s.segments[child].Parent.Chain = id
		}
		delete(s.segments, tailID)
		head.Headers = origHeaders
	})
	return nil
}

// refreshStates recomputes every segment state against the current best
// height and removes forks that trail it by more than the prune depth.
func (tx *Tx) refreshStates() []PrunedSegment {
	s := tx.s
	best := s.segments[s.canonical].TipHeight()
	onPath := s.canonicalSet()

	var pruned []PrunedSegment
	for changed := true; changed; {
		changed = false
		for _, id := range s.sortedIDs() {
			seg, ok := s.segments[id]
			if !ok {
				continue
			}
			tip := seg.TipHeight()
			switch {
			case onPath[id] || tip >= best:
				tx.setState(seg, StateActive)
			case s.cfg.PruneDepth == 0 || best-tip <= s.cfg.PruneDepth || s.hasChildren(id):
				tx.setState(seg, StateStale)
			default:
				pruned = append(pruned, tx.prune(seg))
				changed = true
			}
		}
	}
	return pruned
}

func (tx *Tx) setState(seg *Segment, st SegmentState) {
	if seg.State == st {
		return
	}
	seg.State = st
	tx.touchSegment(seg.ID)
}

func (tx *Tx) prune(seg *Segment) PrunedSegment {
	s := tx.s
	delete(s.segments, seg.ID)
	for _, h := range seg.Headers {
		delete(s.index, h.Digest)
		tx.touchHeader(h.Digest)
	}
	tx.touchSegment(seg.ID)

	prevState := seg.State
	seg.State = StatePruned
	tx.journal = append(tx.journal, func() {
		seg.State = prevState
		s.segments[seg.ID] = seg
		for _, h := range seg.Headers {
			s.index[h.Digest] = Location{Chain: seg.ID, Height: h.Height}
		}
	})

	tip := seg.Tip()
	return PrunedSegment{
		ID:          seg.ID,
		StartHeight: seg.StartHeight,
		TipHeight:   tip.Height,
		TipDigest:   tip.Digest,
	}
}
