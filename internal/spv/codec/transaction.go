package codec

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
)

// Input is a transaction input.
type Input struct {
	PrevOut    wire.OutPoint
	Script     []byte
	Sequence   uint32
	HasWitness bool
}

// Output is a transaction output.
type Output struct {
	Value    int64
	PkScript []byte
}

// Transaction is a decoded Bitcoin transaction.
type Transaction struct {
	Version  int32
	Inputs   []Input
	Outputs  []Output
	LockTime uint32

	txid chainhash.Hash
}

// ParseTransaction decodes a serialized transaction. Segwit serializations are accepted;
// truncated data, non-canonical counts and trailing bytes are not.
func ParseTransaction(raw []byte) (*Transaction, error) {
	r := bytes.NewReader(raw)
	var msg wire.MsgTx
	if err := msg.Deserialize(r); err != nil {
		return nil, fmt.Errorf("decode transaction: %v: %w", err, spv.ErrMalformedTransaction)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes: %w", r.Len(), spv.ErrMalformedTransaction)
	}
	if len(msg.TxIn) == 0 {
		return nil, fmt.Errorf("no inputs: %w", spv.ErrMalformedTransaction)
	}
	if len(msg.TxOut) == 0 {
		return nil, fmt.Errorf("no outputs: %w", spv.ErrMalformedTransaction)
	}

	return newTransaction(&msg), nil
}

// NewTransaction wraps an already decoded wire transaction.
func NewTransaction(msg *wire.MsgTx) *Transaction {
	return newTransaction(msg)
}

func newTransaction(msg *wire.MsgTx) *Transaction {
	tx := &Transaction{
		Version:  msg.Version,
		Inputs:   make([]Input, 0, len(msg.TxIn)),
		Outputs:  make([]Output, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
		txid:     msg.TxHash(),
	}
	for _, in := range msg.TxIn {
		tx.Inputs = append(tx.Inputs, Input{
			PrevOut:    in.PreviousOutPoint,
			Script:     in.SignatureScript,
			Sequence:   in.Sequence,
			HasWitness: len(in.Witness) > 0,
		})
	}
	for _, out := range msg.TxOut {
		tx.Outputs = append(tx.Outputs, Output{
			Value:    out.Value,
			PkScript: out.PkScript,
		})
	}
	return tx
}

// TxID returns the double-SHA256 of the witness-stripped serialization.
func (t *Transaction) TxID() chainhash.Hash {
	return t.txid
}
