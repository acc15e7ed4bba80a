package service

import "github.com/goodnatureofminers/btcrelay/internal/relay/model"

const (
	// DefaultConfirmationDepth is the depth required by payment verification.
	DefaultConfirmationDepth uint32 = 6
	// DefaultMinHeaderVersion rejects headers older than BIP65.
	DefaultMinHeaderVersion int32 = 4
)

// Config tunes the relay.
type Config struct {
	Network model.Network
	// ConfirmationDepth applies when a caller does not request a depth.
	ConfirmationDepth uint32
	// StableConfirmationDepth is a floor on every requested depth.
	StableConfirmationDepth uint32
	// RetargetInterval overrides the network's difficulty period when non-zero.
	RetargetInterval uint32
	// DisableDifficultyCheck skips expected-target and version checks.
	// Proof of work against a header's own bits is always enforced.
	DisableDifficultyCheck bool
	MinHeaderVersion       int32
}

// DefaultConfig returns mainnet settings.
func DefaultConfig() Config {
	return Config{
		Network:           "mainnet",
		ConfirmationDepth: DefaultConfirmationDepth,
		MinHeaderVersion:  DefaultMinHeaderVersion,
	}
}
