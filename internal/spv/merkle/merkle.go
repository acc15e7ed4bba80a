// Package merkle verifies transaction inclusion against a block's merkle root.
package merkle

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
	"github.com/goodnatureofminers/btcrelay/internal/spv/codec"
	"github.com/goodnatureofminers/btcrelay/internal/spv/hash"
)

// Verify walks the sibling hashes from leaf up to root. Bit i of index selects whether the
// running hash is the right (1) or left (0) child at level i; bits above the proof depth
// are ignored. A nodes length that is not a multiple of 32 is reported as
// spv.ErrMalformedProof rather than false.
func Verify(leaf, root chainhash.Hash, nodes []byte, index uint64) (bool, error) {
	if len(nodes)%chainhash.HashSize != 0 {
		return false, fmt.Errorf("intermediate nodes length %d: %w", len(nodes), spv.ErrMalformedProof)
	}
	if len(nodes) == 0 && index == 0 && leaf == root {
		return true, nil
	}

	current := leaf
	idx := index
	for off := 0; off < len(nodes); off += chainhash.HashSize {
		var sibling chainhash.Hash
		copy(sibling[:], nodes[off:off+chainhash.HashSize])

		if idx&1 == 1 {
			current = hash.MerkleStep(sibling, current)
		} else {
			current = hash.MerkleStep(current, sibling)
		}
		idx >>= 1
	}

	return current == root, nil
}

// VerifyProof verifies a decoded proof submission.
func VerifyProof(p *codec.MerkleProof) (bool, error) {
	return Verify(p.TxID, p.Root, p.Nodes, p.Index)
}

// ComputeRoot builds the merkle root of txids, duplicating the last hash of odd levels.
func ComputeRoot(txids []chainhash.Hash) chainhash.Hash {
	if len(txids) == 0 {
		return chainhash.Hash{}
	}
	level := append([]chainhash.Hash(nil), txids...)
	for len(level) > 1 {
		level = nextLevel(level)
	}
	return level[0]
}

// Branch returns the concatenated sibling hashes proving txids[index].
func Branch(txids []chainhash.Hash, index int) ([]byte, error) {
	if index < 0 || index >= len(txids) {
		return nil, fmt.Errorf("index %d out of range [0, %d)", index, len(txids))
	}

	var out []byte
	level := append([]chainhash.Hash(nil), txids...)
	pos := index
	for len(level) > 1 {
		sibling := pos ^ 1
		if sibling >= len(level) {
			sibling = pos
		}
		out = append(out, level[sibling][:]...)
		level = nextLevel(level)
		pos >>= 1
	}
	return out, nil
}

func nextLevel(level []chainhash.Hash) []chainhash.Hash {
	next := make([]chainhash.Hash, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		right := level[i]
		if i+1 < len(level) {
			right = level[i+1]
		}
		next = append(next, hash.MerkleStep(level[i], right))
	}
	return next
}
