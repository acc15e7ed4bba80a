// Package codec decodes the fixed-layout Bitcoin structures consumed by the SPV core:
// block headers, transactions, CompactSize integers and merkle proof submissions.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
	"github.com/goodnatureofminers/btcrelay/internal/spv/hash"
)

// HeaderSize is the serialized size of a block header.
const HeaderSize = 80

const (
	versionOffset    = 0
	prevBlockOffset  = 4
	merkleRootOffset = 36
	timestampOffset  = 68
	bitsOffset       = 72
	nonceOffset      = 76
)

// Header is a decoded 80-byte block header together with its raw bytes.
type Header struct {
	Raw        [HeaderSize]byte
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// ParseHeader decodes exactly one header. Any other length is rejected before interpretation.
func ParseHeader(raw []byte) (*Header, error) {
	if len(raw) != HeaderSize {
		return nil, fmt.Errorf("header length %d: %w", len(raw), spv.ErrWrongLengthHeader)
	}

	var bh wire.BlockHeader
	if err := bh.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("decode header: %w", spv.ErrWrongLengthHeader)
	}

	h := &Header{
		Version:    bh.Version,
		PrevBlock:  bh.PrevBlock,
		MerkleRoot: bh.MerkleRoot,
		Timestamp:  binary.LittleEndian.Uint32(raw[timestampOffset:bitsOffset]),
		Bits:       bh.Bits,
		Nonce:      bh.Nonce,
	}
	copy(h.Raw[:], raw)
	return h, nil
}

// Digest returns the block hash of the header.
func (h *Header) Digest() chainhash.Hash {
	return hash.Sha256d(h.Raw[:])
}

// Time returns the header timestamp as UTC time.
func (h *Header) Time() time.Time {
	return time.Unix(int64(h.Timestamp), 0).UTC()
}

// BlockHeader converts the header into its btcd wire form.
func (h *Header) BlockHeader() wire.BlockHeader {
	return wire.BlockHeader{
		Version:    h.Version,
		PrevBlock:  h.PrevBlock,
		MerkleRoot: h.MerkleRoot,
		Timestamp:  h.Time(),
		Bits:       h.Bits,
		Nonce:      h.Nonce,
	}
}

// SerializeHeader encodes a wire header into its 80-byte form.
func SerializeHeader(bh *wire.BlockHeader) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	if err := bh.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize header: %w", err)
	}
	return buf.Bytes(), nil
}

// SplitHeaders cuts concatenated headers into 80-byte records.
func SplitHeaders(raw []byte) ([][]byte, error) {
	if len(raw)%HeaderSize != 0 {
		return nil, fmt.Errorf("headers length %d: %w", len(raw), spv.ErrWrongLengthHeader)
	}
	out := make([][]byte, 0, len(raw)/HeaderSize)
	for off := 0; off < len(raw); off += HeaderSize {
		out = append(out, raw[off:off+HeaderSize])
	}
	return out, nil
}

// ExtractVersion returns the version field of a raw header.
func ExtractVersion(raw []byte) (int32, error) {
	if err := checkHeaderLength(raw); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(raw[versionOffset:prevBlockOffset])), nil
}

// ExtractPrevBlockHash returns bytes 4..36 of a raw header in internal order.
func ExtractPrevBlockHash(raw []byte) (chainhash.Hash, error) {
	if err := checkHeaderLength(raw); err != nil {
		return chainhash.Hash{}, err
	}
	var h chainhash.Hash
	copy(h[:], raw[prevBlockOffset:merkleRootOffset])
	return h, nil
}

// ExtractMerkleRoot returns bytes 36..68 of a raw header in internal order.
func ExtractMerkleRoot(raw []byte) (chainhash.Hash, error) {
	if err := checkHeaderLength(raw); err != nil {
		return chainhash.Hash{}, err
	}
	var h chainhash.Hash
	copy(h[:], raw[merkleRootOffset:timestampOffset])
	return h, nil
}

// ExtractTimestamp returns the timestamp field of a raw header.
func ExtractTimestamp(raw []byte) (uint32, error) {
	if err := checkHeaderLength(raw); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw[timestampOffset:bitsOffset]), nil
}

// ExtractBits returns the compact target field of a raw header.
func ExtractBits(raw []byte) (uint32, error) {
	if err := checkHeaderLength(raw); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw[bitsOffset:nonceOffset]), nil
}

// ExtractNonce returns the nonce field of a raw header.
func ExtractNonce(raw []byte) (uint32, error) {
	if err := checkHeaderLength(raw); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw[nonceOffset:HeaderSize]), nil
}

func checkHeaderLength(raw []byte) error {
	if len(raw) != HeaderSize {
		return fmt.Errorf("header length %d: %w", len(raw), spv.ErrWrongLengthHeader)
	}
	return nil
}
