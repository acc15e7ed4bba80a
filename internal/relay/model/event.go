// Package model holds relay value types shared between the service, the
// archive and the transport layer.
package model

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Network names a Bitcoin network as accepted by the payment decoder.
type Network string

// EventKind enumerates what the relay reports after a state change.
type EventKind string

const (
	EventInitialized          EventKind = "initialized"
	EventStoreMainChainHeader EventKind = "store_main_chain_header"
	EventStoreForkHeader      EventKind = "store_fork_header"
	EventChainReorg           EventKind = "chain_reorg"
	EventForkPruned           EventKind = "fork_pruned"
)

// Event is one relay state change. Digest and Height describe the stored
// header, the new best header of a reorg or the tip of a pruned fork.
type Event struct {
	Kind     EventKind
	Network  Network
	Digest   chainhash.Hash
	Height   uint32
	ChainID  uint32
	Observed time.Time

	// Set for reorgs only.
	ForkHeight uint32
	PrevDigest chainhash.Hash
	PrevHeight uint32

	// Set for events that stored a header.
	Header *Header
}

// Header is an accepted header as archived.
type Header struct {
	Network    Network
	Digest     chainhash.Hash
	Height     uint32
	ChainID    uint32
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  time.Time
	Bits       uint32
	Nonce      uint32
	// ChainWork is the cumulative difficulty in decimal.
	ChainWork string
	Raw       []byte
}
