package store

import "errors"

var (
	// ErrUnknownFork is returned when a header's parent is not stored.
	ErrUnknownFork = errors.New("unknown fork")
	// ErrDuplicateBlock is returned when a header digest is already stored.
	ErrDuplicateBlock = errors.New("duplicate block")
	// ErrBlockNotFound is returned for digests or heights the store does not hold.
	ErrBlockNotFound = errors.New("block not found")
	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("relay already initialized")
	// ErrNotInitialized is returned by any operation that needs an anchor before Initialize.
	ErrNotInitialized = errors.New("relay not initialized")
	// ErrChainCounterOverflow is returned when no further segment ids can be allocated.
	ErrChainCounterOverflow = errors.New("chain counter overflow")
	// ErrBlockHeightOverflow is returned when a header would sit above the maximum height.
	ErrBlockHeightOverflow = errors.New("block height overflow")
	// ErrTxInProgress is returned by Begin while another transaction is open.
	ErrTxInProgress = errors.New("store transaction in progress")
	// ErrTxDone is returned when a committed or rolled back transaction is used.
	ErrTxDone = errors.New("store transaction already finished")
	// ErrCorruptSnapshot is returned when persisted state does not describe a valid arena.
	ErrCorruptSnapshot = errors.New("corrupt store snapshot")
)
