package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
)

const (
	proofFixedSize = 2*chainhash.HashSize + 8
	proofIndexSize = 8
)

// MerkleProof is a merkle inclusion proof as submitted by a relayer.
type MerkleProof struct {
	TxID  chainhash.Hash
	Root  chainhash.Hash
	Nodes []byte
	Index uint64
}

// Depth returns the number of sibling hashes carried by the proof.
func (p *MerkleProof) Depth() int {
	return len(p.Nodes) / chainhash.HashSize
}

// ParseMerkleProof decodes txid(32) || root(32) || N*32 sibling hashes || index(u64 LE).
func ParseMerkleProof(raw []byte) (*MerkleProof, error) {
	if len(raw) < proofFixedSize {
		return nil, fmt.Errorf("proof length %d below %d: %w", len(raw), proofFixedSize, spv.ErrMalformedProof)
	}
	body := raw[2*chainhash.HashSize : len(raw)-proofIndexSize]
	if len(body)%chainhash.HashSize != 0 {
		return nil, fmt.Errorf("proof body length %d: %w", len(body), spv.ErrMalformedProof)
	}

	p := &MerkleProof{
		Nodes: append([]byte(nil), body...),
		Index: binary.LittleEndian.Uint64(raw[len(raw)-proofIndexSize:]),
	}
	copy(p.TxID[:], raw[:chainhash.HashSize])
	copy(p.Root[:], raw[chainhash.HashSize:2*chainhash.HashSize])
	return p, nil
}

// Serialize encodes the proof in submission form.
func (p *MerkleProof) Serialize() []byte {
	out := make([]byte, 0, proofFixedSize+len(p.Nodes))
	out = append(out, p.TxID[:]...)
	out = append(out, p.Root[:]...)
	out = append(out, p.Nodes...)
	return binary.LittleEndian.AppendUint64(out, p.Index)
}
