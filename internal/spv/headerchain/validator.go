// Package headerchain validates contiguous runs of block headers: linkage first,
// then proof of work, summing the difficulty of every accepted header.
package headerchain

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
	"github.com/goodnatureofminers/btcrelay/internal/spv/codec"
	"github.com/goodnatureofminers/btcrelay/internal/spv/target"
	"github.com/holiman/uint256"
)

// Link is one validated header of a run.
type Link struct {
	Header     *codec.Header
	Digest     chainhash.Hash
	Target     *uint256.Int
	Difficulty *uint256.Int
}

// Result is an accepted run of headers.
type Result struct {
	Links           []Link
	TotalDifficulty *uint256.Int
}

// Validator checks header runs against one network's proof-of-work rules.
type Validator struct {
	params target.Params
}

// New builds a Validator.
func New(params target.Params) *Validator {
	return &Validator{params: params}
}

var mainnet = New(target.MainNetParams)

// ValidateChain validates concatenated headers with mainnet rules and returns their
// total difficulty.
func ValidateChain(raw []byte) (*uint256.Int, error) {
	return mainnet.ValidateChain(raw)
}

// ValidateChain validates concatenated headers and returns their total difficulty.
func (v *Validator) ValidateChain(raw []byte) (*uint256.Int, error) {
	res, err := v.Validate(raw)
	if err != nil {
		return nil, err
	}
	return res.TotalDifficulty, nil
}

// Validate validates concatenated headers and returns every accepted link.
// The first header is not linked to anything; callers check its parent separately.
func (v *Validator) Validate(raw []byte) (*Result, error) {
	records, err := codec.SplitHeaders(raw)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Links:           make([]Link, 0, len(records)),
		TotalDifficulty: new(uint256.Int),
	}
	for i, record := range records {
		h, err := codec.ParseHeader(record)
		if err != nil {
			return nil, fmt.Errorf("header %d: %w", i, err)
		}
		digest := h.Digest()

		if i > 0 && h.PrevBlock != res.Links[i-1].Digest {
			return nil, fmt.Errorf("header %d prev %s != %s: %w", i, h.PrevBlock, res.Links[i-1].Digest, spv.ErrInvalidChain)
		}

		link, err := v.checkWork(h, digest)
		if err != nil {
			return nil, fmt.Errorf("header %d: %w", i, err)
		}

		total, err := target.AddDifficulty(res.TotalDifficulty, link.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("header %d: %w", i, err)
		}
		res.TotalDifficulty = total
		res.Links = append(res.Links, link)
	}
	return res, nil
}

// ValidateHeader checks the proof of work of a single raw header.
func (v *Validator) ValidateHeader(raw []byte) (Link, error) {
	h, err := codec.ParseHeader(raw)
	if err != nil {
		return Link{}, err
	}
	return v.checkWork(h, h.Digest())
}

// Params returns the proof-of-work rules the validator enforces.
func (v *Validator) Params() target.Params {
	return v.params
}

func (v *Validator) checkWork(h *codec.Header, digest chainhash.Hash) (Link, error) {
	t, err := target.Decode(h.Bits)
	if err != nil {
		return Link{}, fmt.Errorf("bits %08x: %w: %w", h.Bits, spv.ErrInsufficientWork, err)
	}
	if !target.ValidateWork(digest, t) {
		return Link{}, fmt.Errorf("digest %s above target %08x: %w", digest, h.Bits, spv.ErrInsufficientWork)
	}
	difficulty, err := v.params.Difficulty(t)
	if err != nil {
		return Link{}, err
	}
	return Link{Header: h, Digest: digest, Target: t, Difficulty: difficulty}, nil
}
