// Package target implements Bitcoin's compact target encoding, difficulty arithmetic
// and the 2016-block retarget rule on 256-bit integers.
package target

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
	"github.com/holiman/uint256"
)

const (
	compactSignBit   = 0x00800000
	compactMantissa  = 0x007fffff
	maxCompactExpBit = 34
)

// Diff1 is the difficulty 1 target, 0xffff * 2^208, used by mainnet and testnet.
var Diff1 = new(uint256.Int).Lsh(uint256.NewInt(0xffff), 208)

// Decode expands compact bits into a target. Negative and overflowing encodings fail.
func Decode(bits uint32) (*uint256.Int, error) {
	exponent := uint(bits >> 24)
	mantissa := uint64(bits & compactMantissa)

	t := new(uint256.Int)
	if exponent <= 3 {
		t.SetUint64(mantissa >> (8 * (3 - exponent)))
	} else {
		if mantissa != 0 && (exponent > maxCompactExpBit ||
			(mantissa > 0xff && exponent > maxCompactExpBit-1) ||
			(mantissa > 0xffff && exponent > maxCompactExpBit-2)) {
			return nil, fmt.Errorf("bits %08x overflow: %w", bits, spv.ErrInvalidTarget)
		}
		t.SetUint64(mantissa)
		t.Lsh(t, 8*(exponent-3))
	}

	if bits&compactSignBit != 0 && !t.IsZero() {
		return nil, fmt.Errorf("bits %08x negative: %w", bits, spv.ErrInvalidTarget)
	}
	return t, nil
}

// Encode compresses a target into compact bits. Precision below the top three bytes is dropped.
func Encode(t *uint256.Int) uint32 {
	size := uint(t.ByteLen())

	var compact uint64
	if size <= 3 {
		compact = t.Uint64() << (8 * (3 - size))
	} else {
		compact = new(uint256.Int).Rsh(t, 8*(size-3)).Uint64()
	}

	if compact&compactSignBit != 0 {
		compact >>= 8
		size++
	}
	return uint32(compact) | uint32(size)<<24
}

// Log256 returns the number of bytes needed to hold t.
func Log256(t *uint256.Int) int {
	return t.ByteLen()
}

// Difficulty returns Diff1 / t, integer part.
func Difficulty(t *uint256.Int) (*uint256.Int, error) {
	return DifficultyFrom(Diff1, t)
}

// DifficultyFrom returns base / t, integer part.
func DifficultyFrom(base, t *uint256.Int) (*uint256.Int, error) {
	if t.IsZero() {
		return nil, fmt.Errorf("zero target: %w", spv.ErrInvalidTarget)
	}
	return new(uint256.Int).Div(base, t), nil
}

// ValidateWork reports whether digest, read as a little-endian integer, is below t.
// The all-zero digest is never valid.
func ValidateWork(digest chainhash.Hash, t *uint256.Int) bool {
	if digest == (chainhash.Hash{}) {
		return false
	}
	return HashToInt(digest).Lt(t)
}

// HashToInt interprets a digest in internal byte order as a little-endian integer.
func HashToInt(digest chainhash.Hash) *uint256.Int {
	var be [chainhash.HashSize]byte
	for i := range digest {
		be[chainhash.HashSize-1-i] = digest[i]
	}
	return new(uint256.Int).SetBytes32(be[:])
}

// AddDifficulty returns a + b, failing instead of wrapping.
func AddDifficulty(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, fmt.Errorf("add difficulty: %w", spv.ErrArithmeticOverflow)
	}
	return sum, nil
}
