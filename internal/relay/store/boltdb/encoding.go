package boltdb

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/relay/store"
	"github.com/goodnatureofminers/btcrelay/internal/spv/codec"
)

const (
	// initialized u8 | canonical u32be | next chain id u32be
	metaSize = 1 + 4 + 4
	// parent chain u32be | parent height u32be | has parent u8 | start height u32be | state u8
	segmentSize = 4 + 4 + 1 + 4 + 1
	// chain u32be | height u32be | raw header 80 | chain work 32
	headerSize = 4 + 4 + codec.HeaderSize + 32
)

func encodeMeta(m store.Meta) []byte {
	out := make([]byte, metaSize)
	if m.Initialized {
		out[0] = 1
	}
	binary.BigEndian.PutUint32(out[1:5], uint32(m.Canonical))
	binary.BigEndian.PutUint32(out[5:9], uint32(m.NextChainID))
	return out
}

func decodeMeta(b []byte) (store.Meta, error) {
	if len(b) != metaSize {
		return store.Meta{}, fmt.Errorf("meta length %d: %w", len(b), store.ErrCorruptSnapshot)
	}
	return store.Meta{
		Initialized: b[0] == 1,
		Canonical:   store.ChainID(binary.BigEndian.Uint32(b[1:5])),
		NextChainID: store.ChainID(binary.BigEndian.Uint32(b[5:9])),
	}, nil
}

func segmentKey(id store.ChainID) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, uint32(id))
	return k
}

func encodeSegment(rec store.SegmentRecord) []byte {
	out := make([]byte, segmentSize)
	binary.BigEndian.PutUint32(out[0:4], uint32(rec.Parent.Chain))
	binary.BigEndian.PutUint32(out[4:8], rec.Parent.Height)
	if rec.HasParent {
		out[8] = 1
	}
	binary.BigEndian.PutUint32(out[9:13], rec.StartHeight)
	out[13] = byte(rec.State)
	return out
}

func decodeSegment(k, v []byte) (store.SegmentRecord, error) {
	if len(k) != 4 || len(v) != segmentSize {
		return store.SegmentRecord{}, fmt.Errorf("segment record %x: %w", k, store.ErrCorruptSnapshot)
	}
	return store.SegmentRecord{
		ID: store.ChainID(binary.BigEndian.Uint32(k)),
		Parent: store.Location{
			Chain:  store.ChainID(binary.BigEndian.Uint32(v[0:4])),
			Height: binary.BigEndian.Uint32(v[4:8]),
		},
		HasParent:   v[8] == 1,
		StartHeight: binary.BigEndian.Uint32(v[9:13]),
		State:       store.SegmentState(v[13]),
	}, nil
}

func encodeHeader(rec store.HeaderRecord) []byte {
	out := make([]byte, headerSize)
	binary.BigEndian.PutUint32(out[0:4], uint32(rec.Location.Chain))
	binary.BigEndian.PutUint32(out[4:8], rec.Location.Height)
	copy(out[8:8+codec.HeaderSize], rec.Raw[:])
	copy(out[8+codec.HeaderSize:], rec.ChainWork[:])
	return out
}

func decodeHeader(k, v []byte) (store.HeaderRecord, error) {
	if len(k) != chainhash.HashSize || len(v) != headerSize {
		return store.HeaderRecord{}, fmt.Errorf("header record %x: %w", k, store.ErrCorruptSnapshot)
	}
	var rec store.HeaderRecord
	copy(rec.Digest[:], k)
	rec.Location = store.Location{
		Chain:  store.ChainID(binary.BigEndian.Uint32(v[0:4])),
		Height: binary.BigEndian.Uint32(v[4:8]),
	}
	copy(rec.Raw[:], v[8:8+codec.HeaderSize])
	copy(rec.ChainWork[:], v[8+codec.HeaderSize:])
	return rec, nil
}
