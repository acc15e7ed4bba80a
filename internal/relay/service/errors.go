package service

import "errors"

var (
	// ErrInvalidTxID is returned when a transaction does not hash to the proven txid.
	ErrInvalidTxID = errors.New("invalid txid")
	// ErrInsufficientConfirmations is returned when a block is not buried deep enough.
	ErrInsufficientConfirmations = errors.New("insufficient confirmations")
	// ErrInvalidHeaderVersion is returned for headers below the minimum version.
	ErrInvalidHeaderVersion = errors.New("invalid header version")
	// ErrEmptyBatch is returned when a batch carries no headers.
	ErrEmptyBatch = errors.New("empty header batch")
)
