package store

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/spv/codec"
	"github.com/holiman/uint256"
)

// ChainID identifies a segment of the header tree.
type ChainID uint32

// MainChainID is the id of the segment holding the trust anchor.
const MainChainID ChainID = 0

// SegmentState tracks whether a segment may still become canonical.
type SegmentState uint8

const (
	// StateActive marks the canonical path and forks level with the best height.
	StateActive SegmentState = iota + 1
	// StateStale marks forks behind the best height but within the prune depth.
	StateStale
	// StatePruned marks forks that have been removed from the store.
	StatePruned
)

func (s SegmentState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateStale:
		return "stale"
	case StatePruned:
		return "pruned"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Location addresses one header: the segment holding it and its height.
type Location struct {
	Chain  ChainID
	Height uint32
}

// StoredHeader is a header accepted into the store.
type StoredHeader struct {
	Header *codec.Header
	Digest chainhash.Hash
	Height uint32
	// ChainWork is the difficulty summed from the anchor up to and including this header.
	ChainWork *uint256.Int
}

// Segment is a contiguous run of headers. Every segment except the one holding
// the anchor branches off a parent location; headers are only ever appended.
type Segment struct {
	ID          ChainID
	Parent      Location
	HasParent   bool
	StartHeight uint32
	Headers     []*StoredHeader
	State       SegmentState
}

// TipHeight returns the height of the last header.
func (s *Segment) TipHeight() uint32 {
	return s.StartHeight + uint32(len(s.Headers)) - 1
}

// Tip returns the last header.
func (s *Segment) Tip() *StoredHeader {
	return s.Headers[len(s.Headers)-1]
}

// CumulativeDifficulty returns the chain work of the segment tip.
func (s *Segment) CumulativeDifficulty() *uint256.Int {
	return s.Tip().ChainWork
}

func (s *Segment) contains(height uint32) bool {
	return height >= s.StartHeight && height <= s.TipHeight()
}

func (s *Segment) at(height uint32) *StoredHeader {
	return s.Headers[height-s.StartHeight]
}

// SegmentInfo is a read-only summary of a segment.
type SegmentInfo struct {
	ID                   ChainID
	Parent               Location
	HasParent            bool
	StartHeight          uint32
	TipHeight            uint32
	TipDigest            chainhash.Hash
	CumulativeDifficulty *uint256.Int
	State                SegmentState
	Canonical            bool
}

// Reorg describes a switch of the canonical chain.
type Reorg struct {
	ForkHeight    uint32
	OldChain      ChainID
	OldBestHeight uint32
	OldBestDigest chainhash.Hash
	NewChain      ChainID
	NewBestHeight uint32
	NewBestDigest chainhash.Hash
}

// PrunedSegment describes a fork removed from the store.
type PrunedSegment struct {
	ID          ChainID
	StartHeight uint32
	TipHeight   uint32
	TipDigest   chainhash.Hash
}

// Insertion reports where an inserted header landed and what it changed.
type Insertion struct {
	Location  Location
	Digest    chainhash.Hash
	ChainWork *uint256.Int
	// Forked is set when the header opened a new segment.
	Forked bool
	// Canonical is set when the header is on the canonical chain after insertion.
	Canonical bool
	Reorg     *Reorg
	Pruned    []PrunedSegment
}
