package transport

import (
	"errors"

	"github.com/goodnatureofminers/btcrelay/internal/relay/service"
	"github.com/goodnatureofminers/btcrelay/internal/relay/store"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
	"github.com/goodnatureofminers/btcrelay/internal/spv/payment"
	"google.golang.org/grpc/codes"
)

var errBadRequest = errors.New("bad request")

var (
	invalidArgument = []error{
		errBadRequest,
		spv.ErrWrongLengthHeader,
		spv.ErrInvalidChain,
		spv.ErrInsufficientWork,
		spv.ErrMalformedTransaction,
		spv.ErrMalformedProof,
		spv.ErrInvalidMerkleProof,
		spv.ErrInvalidTarget,
		spv.ErrDiffTargetHeader,
		store.ErrUnknownFork,
		store.ErrBlockHeightOverflow,
		service.ErrInvalidTxID,
		service.ErrInvalidHeaderVersion,
		service.ErrEmptyBatch,
		payment.ErrWrongRecipient,
		payment.ErrInsufficientValue,
		payment.ErrInvalidOpReturn,
		payment.ErrUnsupportedScript,
		payment.ErrInvalidAddress,
	}
	conflict = []error{
		store.ErrAlreadyInitialized,
		store.ErrNotInitialized,
		store.ErrDuplicateBlock,
	}
)

// errorCode classifies relay errors: validation failures are the caller's
// fault, lifecycle errors conflict with the relay state.
func errorCode(err error) codes.Code {
	switch {
	case errors.Is(err, store.ErrBlockNotFound):
		return codes.NotFound
	case errors.Is(err, service.ErrInsufficientConfirmations):
		return codes.FailedPrecondition
	case isAny(err, conflict):
		return codes.Aborted
	case isAny(err, invalidArgument):
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
