package transport

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/relay/service"
	"github.com/goodnatureofminers/btcrelay/internal/relay/store"
	"github.com/goodnatureofminers/btcrelay/internal/spv/merkle"
	"github.com/goodnatureofminers/btcrelay/internal/spv/payment"
	"github.com/holiman/uint256"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Relay interface {
		Initialized() bool
		Initialize(ctx context.Context, raw []byte, height uint32) error
		SubmitHeader(ctx context.Context, raw []byte) (uint32, error)
		SubmitHeaderBatch(ctx context.Context, raw []byte) (*uint256.Int, error)
		GetBestHeight() (uint32, error)
		GetBestDigest() (chainhash.Hash, error)
		GetBlockHeader(digest chainhash.Hash) (service.HeaderInfo, error)
		VerifyMerkleProof(txid, root chainhash.Hash, nodes []byte, index uint64) (bool, error)
		VerifyTransactionInclusion(ctx context.Context, txid, blockDigest chainhash.Hash, nodes []byte, index uint64, confirmations uint32) error
		VerifyAndExtractPayment(ctx context.Context, rawProof, rawTx []byte, address string, minAmount btcutil.Amount) (payment.Payment, error)
		VerifyAndValidateOpReturn(ctx context.Context, rawProof, rawTx []byte, address string, minAmount btcutil.Amount, opReturn []byte) (payment.Payment, error)
		VerifyTxOutProof(ctx context.Context, raw []byte, confirmations uint32) ([]merkle.Match, error)
		Forks() []store.SegmentInfo
	}
)
