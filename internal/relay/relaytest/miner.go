// Package relaytest mines cheap regtest headers for relay tests.
package relaytest

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcrelay/internal/spv/codec"
	"github.com/goodnatureofminers/btcrelay/internal/spv/headerchain"
	"github.com/goodnatureofminers/btcrelay/internal/spv/target"
)

const (
	// EasyBits is the regtest proof-of-work limit; a header at these bits has difficulty 1.
	EasyBits uint32 = 0x207fffff
	// HardBits halves the target; a header at these bits has difficulty 2.
	HardBits uint32 = 0x203fffff

	blockInterval = 10 * time.Minute
)

// Miner grinds nonces for regtest headers.
type Miner struct {
	tb     testing.TB
	params target.Params
}

// NewMiner returns a miner for the regtest network.
func NewMiner(tb testing.TB) *Miner {
	tb.Helper()
	params, err := target.ParamsFromChain(&chaincfg.RegressionNetParams)
	if err != nil {
		tb.Fatalf("regtest params: %v", err)
	}
	return &Miner{tb: tb, params: params}
}

// Params returns the regtest proof-of-work rules.
func (m *Miner) Params() target.Params {
	return m.params
}

// Genesis returns the regtest genesis header.
func (m *Miner) Genesis() wire.BlockHeader {
	return chaincfg.RegressionNetParams.GenesisBlock.Header
}

// Next mines a child of prev at bits. Salt varies the merkle root so sibling
// branches get distinct digests.
func (m *Miner) Next(prev wire.BlockHeader, bits, salt uint32) wire.BlockHeader {
	m.tb.Helper()
	var seed [8]byte
	binary.LittleEndian.PutUint32(seed[:4], salt)
	binary.LittleEndian.PutUint32(seed[4:], uint32(prev.Timestamp.Unix()))

	return m.Mine(wire.BlockHeader{
		Version:    4,
		PrevBlock:  prev.BlockHash(),
		MerkleRoot: chainhash.DoubleHashH(seed[:]),
		Timestamp:  prev.Timestamp.Add(blockInterval),
		Bits:       bits,
	})
}

// Mine grinds the nonce of h until it meets its own bits.
func (m *Miner) Mine(h wire.BlockHeader) wire.BlockHeader {
	m.tb.Helper()
	t, err := target.Decode(h.Bits)
	if err != nil {
		m.tb.Fatalf("decode bits %08x: %v", h.Bits, err)
	}
	for nonce := uint32(0); ; nonce++ {
		h.Nonce = nonce
		if target.ValidateWork(h.BlockHash(), t) {
			return h
		}
		if nonce == ^uint32(0) {
			m.tb.Fatalf("no nonce found for bits %08x", h.Bits)
		}
	}
}

// Chain mines n consecutive easy headers on top of prev.
func (m *Miner) Chain(prev wire.BlockHeader, n int, salt uint32) []wire.BlockHeader {
	m.tb.Helper()
	out := make([]wire.BlockHeader, 0, n)
	for i := 0; i < n; i++ {
		prev = m.Next(prev, EasyBits, salt)
		out = append(out, prev)
	}
	return out
}

// Raw serializes headers back to back.
func Raw(tb testing.TB, headers ...wire.BlockHeader) []byte {
	tb.Helper()
	out := make([]byte, 0, len(headers)*codec.HeaderSize)
	for i := range headers {
		raw, err := codec.SerializeHeader(&headers[i])
		if err != nil {
			tb.Fatalf("serialize header: %v", err)
		}
		out = append(out, raw...)
	}
	return out
}

// Link validates one header under regtest rules.
func (m *Miner) Link(h wire.BlockHeader) headerchain.Link {
	m.tb.Helper()
	link, err := headerchain.New(m.params).ValidateHeader(Raw(m.tb, h))
	if err != nil {
		m.tb.Fatalf("validate header %s: %v", h.BlockHash(), err)
	}
	return link
}
