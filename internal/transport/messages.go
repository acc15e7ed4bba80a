package transport

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hex is a byte string carried as lowercase hex in JSON.
type Hex []byte

// MarshalText implements encoding.TextMarshaler.
func (h Hex) MarshalText() ([]byte, error) {
	out := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(out, h)
	return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hex) UnmarshalText(text []byte) error {
	out := make([]byte, hex.DecodedLen(len(text)))
	if _, err := hex.Decode(out, text); err != nil {
		return fmt.Errorf("decode hex: %w", err)
	}
	*h = out
	return nil
}

// Hash is a 32-byte digest in the byte-reversed hex form Bitcoin tools display.
type Hash chainhash.Hash

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(chainhash.Hash(h).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	if len(text) != chainhash.MaxHashStringSize {
		return fmt.Errorf("hash %q: want %d hex characters", text, chainhash.MaxHashStringSize)
	}
	parsed, err := chainhash.NewHashFromStr(string(text))
	if err != nil {
		return fmt.Errorf("hash %q: %w", text, err)
	}
	*h = Hash(*parsed)
	return nil
}

type (
	initializeRequest struct {
		Header Hex    `json:"header"`
		Height uint32 `json:"height"`
	}
	initializeResponse struct {
		Digest Hash   `json:"digest"`
		Height uint32 `json:"height"`
	}

	submitHeaderRequest struct {
		Header Hex `json:"header"`
	}
	submitHeaderResponse struct {
		Height uint32 `json:"height"`
	}

	submitBatchRequest struct {
		Headers Hex `json:"headers"`
	}
	submitBatchResponse struct {
		Headers         int    `json:"headers"`
		TotalDifficulty string `json:"total_difficulty"`
	}

	bestResponse struct {
		Height uint32 `json:"height"`
		Digest Hash   `json:"digest"`
	}

	headerResponse struct {
		Digest        Hash   `json:"digest"`
		Height        uint32 `json:"height"`
		ChainID       uint32 `json:"chain_id"`
		Version       int32  `json:"version"`
		PrevBlock     Hash   `json:"prev_block"`
		MerkleRoot    Hash   `json:"merkle_root"`
		Timestamp     int64  `json:"timestamp"`
		Bits          uint32 `json:"bits"`
		Nonce         uint32 `json:"nonce"`
		ChainWork     string `json:"chain_work"`
		Canonical     bool   `json:"canonical"`
		Confirmations uint32 `json:"confirmations"`
		Raw           Hex    `json:"raw"`
	}

	merkleProofRequest struct {
		TxID       Hash   `json:"txid"`
		MerkleRoot Hash   `json:"merkle_root"`
		Nodes      Hex    `json:"nodes"`
		Index      uint64 `json:"index"`
	}
	merkleProofResponse struct {
		Valid bool `json:"valid"`
	}

	inclusionRequest struct {
		TxID          Hash   `json:"txid"`
		BlockDigest   Hash   `json:"block_digest"`
		Nodes         Hex    `json:"nodes"`
		Index         uint64 `json:"index"`
		Confirmations uint32 `json:"confirmations"`
	}
	verifiedResponse struct {
		Verified bool `json:"verified"`
	}

	txOutProofRequest struct {
		Proof         Hex    `json:"proof"`
		Confirmations uint32 `json:"confirmations"`
	}
	txOutProofMatch struct {
		TxID  Hash   `json:"txid"`
		Index uint32 `json:"index"`
	}
	txOutProofResponse struct {
		Matches []txOutProofMatch `json:"matches"`
	}

	paymentRequest struct {
		Proof     Hex    `json:"proof"`
		Tx        Hex    `json:"tx"`
		Address   string `json:"address"`
		MinAmount int64  `json:"min_amount"`
		OpReturn  Hex    `json:"op_return,omitempty"`
	}
	paymentResponse struct {
		Address     string `json:"address"`
		Amount      int64  `json:"amount"`
		OutputIndex int    `json:"output_index"`
	}

	forkResponse struct {
		ChainID       uint32 `json:"chain_id"`
		ParentChainID uint32 `json:"parent_chain_id,omitempty"`
		ParentHeight  uint32 `json:"parent_height,omitempty"`
		StartHeight   uint32 `json:"start_height"`
		TipHeight     uint32 `json:"tip_height"`
		TipDigest     Hash   `json:"tip_digest"`
		ChainWork     string `json:"chain_work"`
		State         string `json:"state"`
		Canonical     bool   `json:"canonical"`
	}
	forksResponse struct {
		Forks []forkResponse `json:"forks"`
	}
)
