// Package spv holds the error kinds shared by the SPV validation core.
package spv

import "errors"

var (
	// ErrWrongLengthHeader is returned when header input is not a multiple of 80 bytes.
	ErrWrongLengthHeader = errors.New("wrong length header")
	// ErrInvalidChain is returned when a header does not link to its predecessor.
	ErrInvalidChain = errors.New("invalid chain")
	// ErrInsufficientWork is returned when a header digest does not meet its target.
	ErrInsufficientWork = errors.New("insufficient work")
	// ErrMalformedTransaction is returned when transaction bytes cannot be decoded.
	ErrMalformedTransaction = errors.New("malformed transaction")
	// ErrMalformedProof is returned when merkle proof bytes cannot be decoded.
	ErrMalformedProof = errors.New("malformed merkle proof")
	// ErrInvalidMerkleProof is returned when a well-formed proof does not hash to the root.
	ErrInvalidMerkleProof = errors.New("invalid merkle proof")
	// ErrInvalidTarget is returned for negative or overflowing compact targets.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrArithmeticOverflow is returned when 256-bit arithmetic would overflow.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	// ErrDiffTargetHeader is returned when header bits differ from the expected target.
	ErrDiffTargetHeader = errors.New("unexpected difficulty target")
)
