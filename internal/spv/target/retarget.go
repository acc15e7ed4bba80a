package target

import (
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
	"github.com/holiman/uint256"
)

const (
	defaultTargetTimespan   = 14 * 24 * 60 * 60
	defaultRetargetInterval = 2016
	retargetFactor          = 4
)

// Params describes the proof-of-work rules of one network.
type Params struct {
	PowLimit            *uint256.Int
	PowLimitBits        uint32
	GenesisTarget       *uint256.Int
	TargetTimespan      uint32
	RetargetInterval    uint32
	ReduceMinDifficulty bool
	NoRetargeting       bool
}

// MainNetParams are the Bitcoin mainnet proof-of-work rules.
var MainNetParams = Params{
	PowLimit:         new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 224), uint256.NewInt(1)),
	PowLimitBits:     0x1d00ffff,
	GenesisTarget:    Diff1,
	TargetTimespan:   defaultTargetTimespan,
	RetargetInterval: defaultRetargetInterval,
}

// ParamsFromChain derives proof-of-work rules from btcd chain parameters.
func ParamsFromChain(p *chaincfg.Params) (Params, error) {
	powLimit, err := fromBig(p.PowLimit)
	if err != nil {
		return Params{}, fmt.Errorf("%s pow limit: %w", p.Name, err)
	}
	genesis, err := Decode(p.GenesisBlock.Header.Bits)
	if err != nil {
		return Params{}, fmt.Errorf("%s genesis bits: %w", p.Name, err)
	}

	timespan := uint32(p.TargetTimespan / time.Second)
	interval := uint32(defaultRetargetInterval)
	if p.TargetTimePerBlock > 0 {
		interval = uint32(p.TargetTimespan / p.TargetTimePerBlock)
	}

	return Params{
		PowLimit:            powLimit,
		PowLimitBits:        p.PowLimitBits,
		GenesisTarget:       genesis,
		TargetTimespan:      timespan,
		RetargetInterval:    interval,
		ReduceMinDifficulty: p.ReduceMinDifficulty,
		NoRetargeting:       p.PoWNoRetargeting,
	}, nil
}

// Difficulty returns the difficulty of t relative to the network's genesis target.
func (p Params) Difficulty(t *uint256.Int) (*uint256.Int, error) {
	base := p.GenesisTarget
	if base == nil {
		base = Diff1
	}
	return DifficultyFrom(base, t)
}

// IsRetargetHeight reports whether a block at height starts a new difficulty period.
func (p Params) IsRetargetHeight(height uint32) bool {
	return p.RetargetInterval != 0 && height%p.RetargetInterval == 0
}

// Retarget computes the bits of the first block of a new period from the bits of the last
// block of the previous period and the timestamps bounding that period.
func (p Params) Retarget(prevBits, firstTimestamp, lastTimestamp uint32) (uint32, error) {
	prev, err := Decode(prevBits)
	if err != nil {
		return 0, err
	}
	if p.TargetTimespan == 0 {
		return 0, fmt.Errorf("zero target timespan: %w", spv.ErrInvalidTarget)
	}

	span := int64(p.TargetTimespan)
	actual := int64(lastTimestamp) - int64(firstTimestamp)
	if minSpan := span / retargetFactor; actual < minSpan {
		actual = minSpan
	}
	if maxSpan := span * retargetFactor; actual > maxSpan {
		actual = maxSpan
	}

	next, overflow := new(uint256.Int).MulOverflow(prev, uint256.NewInt(uint64(actual)))
	if overflow {
		return 0, fmt.Errorf("retarget %08x: %w", prevBits, spv.ErrArithmeticOverflow)
	}
	next.Div(next, uint256.NewInt(uint64(span)))

	if p.PowLimit != nil && next.Gt(p.PowLimit) {
		next.Set(p.PowLimit)
	}
	return Encode(next), nil
}

// WithinPowLimit reports whether t does not exceed the network's easiest allowed target.
func (p Params) WithinPowLimit(t *uint256.Int) bool {
	return p.PowLimit == nil || !t.Gt(p.PowLimit)
}

func fromBig(v *big.Int) (*uint256.Int, error) {
	if v == nil || v.Sign() < 0 {
		return nil, spv.ErrInvalidTarget
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, spv.ErrArithmeticOverflow
	}
	return out, nil
}
