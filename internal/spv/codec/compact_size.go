package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
)

// ReadCompactSize reads a Bitcoin CompactSize integer. Non-minimal encodings are rejected.
func ReadCompactSize(r io.Reader) (uint64, error) {
	v, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return 0, fmt.Errorf("read compact size: %w", err)
	}
	return v, nil
}

// WriteCompactSize writes v using the shortest CompactSize form.
func WriteCompactSize(w io.Writer, v uint64) error {
	return wire.WriteVarInt(w, 0, v)
}

// CompactSizeLen returns the encoded length of v: 1, 3, 5 or 9 bytes.
func CompactSizeLen(v uint64) int {
	return wire.VarIntSerializeSize(v)
}

// EncodeCompactSize returns the CompactSize encoding of v.
func EncodeCompactSize(v uint64) []byte {
	out := make([]byte, wire.VarIntSerializeSize(v))
	switch len(out) {
	case 1:
		out[0] = byte(v)
	case 3:
		out[0] = 0xfd
		binary.LittleEndian.PutUint16(out[1:], uint16(v))
	case 5:
		out[0] = 0xfe
		binary.LittleEndian.PutUint32(out[1:], uint32(v))
	default:
		out[0] = 0xff
		binary.LittleEndian.PutUint64(out[1:], v)
	}
	return out
}
