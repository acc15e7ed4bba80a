// Package payment locates payments and OP_RETURN data in decoded transactions.
package payment

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/btcrelay/internal/spv/codec"
)

var (
	// ErrWrongRecipient is returned when no output pays the expected address.
	ErrWrongRecipient = errors.New("wrong recipient")
	// ErrInsufficientValue is returned when the matching output pays less than required.
	ErrInsufficientValue = errors.New("insufficient value")
	// ErrInvalidOpReturn is returned when no OP_RETURN output carries the expected data.
	ErrInvalidOpReturn = errors.New("invalid op_return")
	// ErrUnsupportedScript is returned for output scripts without a single standard address.
	ErrUnsupportedScript = errors.New("unsupported output script")
	// ErrInvalidAddress is returned when an address does not decode for the network.
	ErrInvalidAddress = errors.New("invalid address")
)

// Payment is an output paying a known address.
type Payment struct {
	Address     string
	Amount      btcutil.Amount
	OutputIndex int
}

// Decoder extracts addresses using the params of one network.
type Decoder struct {
	params *chaincfg.Params
}

// NewDecoder builds a Decoder for a network name.
func NewDecoder(network string) (*Decoder, error) {
	params, err := ChainParams(network)
	if err != nil {
		return nil, err
	}
	return &Decoder{params: params}, nil
}

// ChainParams resolves btcd chain params for a network name.
func ChainParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "main", "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}

// Params returns the chain params the decoder uses.
func (d *Decoder) Params() *chaincfg.Params {
	return d.params
}

// ExtractAddress returns the address paid by a standard P2PKH, P2SH, P2WPKH, P2WSH or P2TR script.
func (d *Decoder) ExtractAddress(pkScript []byte) (string, error) {
	class, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, d.params)
	if err != nil {
		return "", fmt.Errorf("extract script addresses: %w", err)
	}
	switch class {
	case txscript.PubKeyHashTy,
		txscript.ScriptHashTy,
		txscript.WitnessV0PubKeyHashTy,
		txscript.WitnessV0ScriptHashTy,
		txscript.WitnessV1TaprootTy:
	default:
		return "", fmt.Errorf("script class %s: %w", class, ErrUnsupportedScript)
	}
	if len(addrs) != 1 {
		return "", fmt.Errorf("%d addresses: %w", len(addrs), ErrUnsupportedScript)
	}
	return addrs[0].EncodeAddress(), nil
}

// FindPayment returns the first output paying address at least minAmount. With an empty
// address the first output paying any standard address is used.
func (d *Decoder) FindPayment(tx *codec.Transaction, address string, minAmount btcutil.Amount) (Payment, error) {
	if address == "" {
		return d.firstPayment(tx, minAmount)
	}

	addr, err := btcutil.DecodeAddress(address, d.params)
	if err != nil {
		return Payment{}, fmt.Errorf("decode %q: %v: %w", address, err, ErrInvalidAddress)
	}
	if !addr.IsForNet(d.params) {
		return Payment{}, fmt.Errorf("%q not for %s: %w", address, d.params.Name, ErrInvalidAddress)
	}
	want, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return Payment{}, fmt.Errorf("script for %q: %v: %w", address, err, ErrInvalidAddress)
	}

	matched := false
	var best btcutil.Amount
	for i, out := range tx.Outputs {
		if !bytes.Equal(out.PkScript, want) {
			continue
		}
		matched = true
		amount := btcutil.Amount(out.Value)
		if amount >= minAmount {
			return Payment{Address: addr.EncodeAddress(), Amount: amount, OutputIndex: i}, nil
		}
		if amount > best {
			best = amount
		}
	}
	if matched {
		return Payment{}, fmt.Errorf("best output %s below %s: %w", best, minAmount, ErrInsufficientValue)
	}
	return Payment{}, fmt.Errorf("no output pays %s: %w", address, ErrWrongRecipient)
}

func (d *Decoder) firstPayment(tx *codec.Transaction, minAmount btcutil.Amount) (Payment, error) {
	for i, out := range tx.Outputs {
		address, err := d.ExtractAddress(out.PkScript)
		if err != nil {
			continue
		}
		amount := btcutil.Amount(out.Value)
		if amount < minAmount {
			return Payment{}, fmt.Errorf("output %d pays %s below %s: %w", i, amount, minAmount, ErrInsufficientValue)
		}
		return Payment{Address: address, Amount: amount, OutputIndex: i}, nil
	}
	return Payment{}, fmt.Errorf("no standard output: %w", ErrWrongRecipient)
}

// ExtractOpReturn returns the data pushed by a null-data script.
func ExtractOpReturn(pkScript []byte) ([]byte, bool) {
	if txscript.GetScriptClass(pkScript) != txscript.NullDataTy {
		return nil, false
	}
	pushes, err := txscript.PushedData(pkScript)
	if err != nil {
		return nil, false
	}
	return bytes.Join(pushes, nil), true
}

// FindOpReturn checks that some output carries exactly data in an OP_RETURN script.
func FindOpReturn(tx *codec.Transaction, data []byte) (int, error) {
	for i, out := range tx.Outputs {
		got, ok := ExtractOpReturn(out.PkScript)
		if ok && bytes.Equal(got, data) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no op_return with %x: %w", data, ErrInvalidOpReturn)
}
