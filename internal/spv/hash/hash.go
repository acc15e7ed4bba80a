// Package hash implements the double-SHA256 primitives used by Bitcoin headers,
// transactions and merkle trees.
package hash

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Sha256d returns SHA256(SHA256(b)) in internal byte order.
func Sha256d(b []byte) chainhash.Hash {
	return chainhash.DoubleHashH(b)
}

// MerkleStep hashes two child digests in the given left, right order.
func MerkleStep(left, right chainhash.Hash) chainhash.Hash {
	var buf [2 * chainhash.HashSize]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])
	return chainhash.DoubleHashH(buf[:])
}

// Reverse flips the byte order of a digest.
func Reverse(h chainhash.Hash) chainhash.Hash {
	var out chainhash.Hash
	for i := range h {
		out[chainhash.HashSize-1-i] = h[i]
	}
	return out
}

// Display renders a digest in the byte-reversed form used by block explorers and RPC.
func Display(h chainhash.Hash) string {
	return h.String()
}

// FromDisplay parses a 64 character display string into an internal-order digest.
func FromDisplay(s string) (chainhash.Hash, error) {
	if len(s) != chainhash.MaxHashStringSize {
		return chainhash.Hash{}, fmt.Errorf("digest %q: want %d hex characters, got %d", s, chainhash.MaxHashStringSize, len(s))
	}
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("digest %q: %w", s, err)
	}
	return *h, nil
}

// FromBytes copies a 32 byte slice in internal order into a digest.
func FromBytes(b []byte) (chainhash.Hash, error) {
	var h chainhash.Hash
	if err := h.SetBytes(b); err != nil {
		return chainhash.Hash{}, err
	}
	return h, nil
}
