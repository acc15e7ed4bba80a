package service

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
	"github.com/goodnatureofminers/btcrelay/internal/spv/codec"
	"github.com/goodnatureofminers/btcrelay/internal/spv/merkle"
	"github.com/goodnatureofminers/btcrelay/internal/spv/payment"
	"go.uber.org/zap"
)

// VerifyMerkleProof checks that txid hashes up to root through nodes. It does
// not consult the store.
func (r *Relay) VerifyMerkleProof(txid, root chainhash.Hash, nodes []byte, index uint64) (ok bool, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("verify_merkle_proof", err, started)
	}()
	return merkle.Verify(txid, root, nodes, index)
}

// VerifyTransactionInclusion checks that txid is committed to by a canonical
// block with enough confirmations. A zero confirmations value uses the
// configured depth.
func (r *Relay) VerifyTransactionInclusion(
	_ context.Context,
	txid, blockDigest chainhash.Hash,
	nodes []byte,
	index uint64,
	confirmations uint32,
) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("verify_transaction_inclusion", err, started)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	h, _, err := r.store.Header(blockDigest)
	if err != nil {
		return err
	}
	if _, err := r.confirmed(blockDigest, confirmations); err != nil {
		return err
	}
	ok, err := merkle.Verify(txid, h.Header.MerkleRoot, nodes, index)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("tx %s in block %s: %w", txid, blockDigest, spv.ErrInvalidMerkleProof)
	}
	return nil
}

// VerifyAndExtractPayment proves rawTx is buried in the canonical chain and
// returns its output paying address at least minAmount. An empty address
// accepts the first standard output.
func (r *Relay) VerifyAndExtractPayment(
	ctx context.Context,
	rawProof, rawTx []byte,
	address string,
	minAmount btcutil.Amount,
) (p payment.Payment, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("verify_payment", err, started)
	}()

	tx, err := r.proveTransaction(ctx, rawProof, rawTx)
	if err != nil {
		return payment.Payment{}, err
	}
	return r.decoder.FindPayment(tx, address, minAmount)
}

// VerifyAndValidateOpReturn is VerifyAndExtractPayment that also requires an
// OP_RETURN output carrying exactly opReturn.
func (r *Relay) VerifyAndValidateOpReturn(
	ctx context.Context,
	rawProof, rawTx []byte,
	address string,
	minAmount btcutil.Amount,
	opReturn []byte,
) (p payment.Payment, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("verify_op_return", err, started)
	}()

	tx, err := r.proveTransaction(ctx, rawProof, rawTx)
	if err != nil {
		return payment.Payment{}, err
	}
	p, err = r.decoder.FindPayment(tx, address, minAmount)
	if err != nil {
		return payment.Payment{}, err
	}
	if _, err = payment.FindOpReturn(tx, opReturn); err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}

// VerifyTxOutProof checks a serialized BIP37 merkleblock against the store and
// returns the transactions it proves.
func (r *Relay) VerifyTxOutProof(_ context.Context, raw []byte, confirmations uint32) (matches []merkle.Match, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("verify_txout_proof", err, started)
	}()

	mb, err := merkle.ParseTxOutProof(raw)
	if err != nil {
		return nil, err
	}
	matches, err = merkle.ExtractMatches(mb)
	if err != nil {
		return nil, err
	}
	digest := mb.Header.BlockHash()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.confirmed(digest, confirmations); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *Relay) proveTransaction(_ context.Context, rawProof, rawTx []byte) (*codec.Transaction, error) {
	proof, err := codec.ParseMerkleProof(rawProof)
	if err != nil {
		return nil, err
	}
	tx, err := codec.ParseTransaction(rawTx)
	if err != nil {
		return nil, err
	}
	if txid := tx.TxID(); txid != proof.TxID {
		return nil, fmt.Errorf("tx hashes to %s, proof is for %s: %w", txid, proof.TxID, ErrInvalidTxID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	block, err := r.store.CanonicalByMerkleRoot(proof.Root)
	if err != nil {
		return nil, err
	}
	confs, err := r.confirmed(block.Digest, 0)
	if err != nil {
		return nil, err
	}
	ok, err := merkle.VerifyProof(proof)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("tx %s under root %s: %w", proof.TxID, proof.Root, spv.ErrInvalidMerkleProof)
	}
	r.logger.Debug("transaction proven",
		zap.Stringer("txid", proof.TxID),
		zap.Stringer("block", block.Digest),
		zap.Uint32("confirmations", confs))
	return tx, nil
}

// confirmed returns the confirmations of a canonical block, failing below the
// effective depth.
func (r *Relay) confirmed(digest chainhash.Hash, requested uint32) (uint32, error) {
	confs, err := r.store.Confirmations(digest)
	if err != nil {
		return 0, err
	}
	if want := r.depth(requested); confs < want {
		return confs, fmt.Errorf("block %s has %d of %d confirmations: %w", digest, confs, want, ErrInsufficientConfirmations)
	}
	return confs, nil
}

func (r *Relay) depth(requested uint32) uint32 {
	if requested == 0 {
		requested = r.cfg.ConfirmationDepth
	}
	return max(requested, r.cfg.StableConfirmationDepth)
}
