package merkle

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
	"github.com/goodnatureofminers/btcrelay/internal/spv/hash"
)

// maxBlockTransactions bounds nTransactions: max block weight over minimum tx weight.
const maxBlockTransactions = 4_000_000 / 240

// Match is a transaction committed to by a partial merkle tree.
type Match struct {
	TxID  chainhash.Hash
	Index uint32
}

// ParseTxOutProof decodes a serialized merkleblock as returned by gettxoutproof.
func ParseTxOutProof(raw []byte) (*wire.MsgMerkleBlock, error) {
	r := bytes.NewReader(raw)
	var mb wire.MsgMerkleBlock
	if err := mb.BtcDecode(r, wire.ProtocolVersion, wire.BaseEncoding); err != nil {
		return nil, fmt.Errorf("decode merkleblock: %v: %w", err, spv.ErrMalformedProof)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("merkleblock has %d trailing bytes: %w", r.Len(), spv.ErrMalformedProof)
	}
	return &mb, nil
}

// ExtractMatches rebuilds the merkle root of a BIP37 partial tree, checks it against the
// header and returns the matched transactions in tree order.
func ExtractMatches(mb *wire.MsgMerkleBlock) ([]Match, error) {
	if mb.Transactions == 0 {
		return nil, fmt.Errorf("no transactions: %w", spv.ErrMalformedProof)
	}
	if mb.Transactions > maxBlockTransactions {
		return nil, fmt.Errorf("%d transactions: %w", mb.Transactions, spv.ErrMalformedProof)
	}
	if len(mb.Hashes) > int(mb.Transactions) {
		return nil, fmt.Errorf("%d hashes for %d transactions: %w", len(mb.Hashes), mb.Transactions, spv.ErrMalformedProof)
	}
	if len(mb.Flags)*8 < len(mb.Hashes) {
		return nil, fmt.Errorf("%d flag bits for %d hashes: %w", len(mb.Flags)*8, len(mb.Hashes), spv.ErrMalformedProof)
	}

	tr := &partialTree{
		total:  mb.Transactions,
		hashes: mb.Hashes,
		flags:  mb.Flags,
	}
	height := uint(0)
	for tr.width(height) > 1 {
		height++
	}

	root := tr.traverse(height, 0)
	if tr.err != nil {
		return nil, tr.err
	}
	if (tr.bitsUsed+7)/8 != len(mb.Flags) {
		return nil, fmt.Errorf("unused flag bytes: %w", spv.ErrMalformedProof)
	}
	if tr.hashesUsed != len(mb.Hashes) {
		return nil, fmt.Errorf("unused hashes: %w", spv.ErrMalformedProof)
	}
	if root != mb.Header.MerkleRoot {
		return nil, fmt.Errorf("partial tree root %s: %w", root, spv.ErrInvalidMerkleProof)
	}
	return tr.matches, nil
}

type partialTree struct {
	total      uint32
	hashes     []*chainhash.Hash
	flags      []byte
	bitsUsed   int
	hashesUsed int
	matches    []Match
	err        error
}

func (t *partialTree) width(height uint) uint32 {
	return uint32((uint64(t.total) + (1 << height) - 1) >> height)
}

func (t *partialTree) traverse(height uint, pos uint32) chainhash.Hash {
	if t.err != nil {
		return chainhash.Hash{}
	}
	if t.bitsUsed >= len(t.flags)*8 {
		t.err = fmt.Errorf("flag bits exhausted: %w", spv.ErrMalformedProof)
		return chainhash.Hash{}
	}
	parentOfMatch := t.flags[t.bitsUsed/8]&(1<<(t.bitsUsed%8)) != 0
	t.bitsUsed++

	if height == 0 || !parentOfMatch {
		if t.hashesUsed >= len(t.hashes) || t.hashes[t.hashesUsed] == nil {
			t.err = fmt.Errorf("hashes exhausted: %w", spv.ErrMalformedProof)
			return chainhash.Hash{}
		}
		h := *t.hashes[t.hashesUsed]
		t.hashesUsed++
		if height == 0 && parentOfMatch {
			t.matches = append(t.matches, Match{TxID: h, Index: pos})
		}
		return h
	}

	left := t.traverse(height-1, pos*2)
	right := left
	if pos*2+1 < t.width(height-1) {
		right = t.traverse(height-1, pos*2+1)
		if t.err == nil && right == left {
			t.err = fmt.Errorf("duplicate sibling at height %d: %w", height, spv.ErrMalformedProof)
		}
	}
	return hash.MerkleStep(left, right)
}
