// Package transport exposes the relay over HTTP and gRPC.
package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/spv/payment"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const maxBodyBytes = 8 << 20

// RelayHandler serves the relay's REST API.
type RelayHandler struct {
	relay  Relay
	mux    *gwruntime.ServeMux
	logger *zap.Logger
}

// NewRelayHandler registers the relay routes on mux.
func NewRelayHandler(relay Relay, mux *gwruntime.ServeMux, logger *zap.Logger) (*RelayHandler, error) {
	h := &RelayHandler{relay: relay, mux: mux, logger: logger.Named("relayHandler")}
	routes := []struct {
		method  string
		pattern string
		handler gwruntime.HandlerFunc
	}{
		{http.MethodPost, "/v1/initialize", h.initialize},
		{http.MethodPost, "/v1/headers", h.submitHeader},
		{http.MethodPost, "/v1/headers/batch", h.submitHeaderBatch},
		{http.MethodGet, "/v1/best", h.best},
		{http.MethodGet, "/v1/headers/{digest}", h.header},
		{http.MethodGet, "/v1/forks", h.forks},
		{http.MethodPost, "/v1/proofs/merkle", h.verifyMerkleProof},
		{http.MethodPost, "/v1/proofs/verify", h.verifyInclusion},
		{http.MethodPost, "/v1/proofs/txout", h.verifyTxOutProof},
		{http.MethodPost, "/v1/payments/verify", h.verifyPayment},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return nil, fmt.Errorf("register %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	return h, nil
}

func (h *RelayHandler) initialize(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req initializeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.relay.Initialize(r.Context(), req.Header, req.Height); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, initializeResponse{
		Digest: Hash(chainhash.DoubleHashH(req.Header)),
		Height: req.Height,
	})
}

func (h *RelayHandler) submitHeader(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req submitHeaderRequest
	if !h.decode(w, r, &req) {
		return
	}
	height, err := h.relay.SubmitHeader(r.Context(), req.Header)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, submitHeaderResponse{Height: height})
}

func (h *RelayHandler) submitHeaderBatch(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req submitBatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	total, err := h.relay.SubmitHeaderBatch(r.Context(), req.Headers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, submitBatchResponse{
		Headers:         len(req.Headers) / 80,
		TotalDifficulty: total.Dec(),
	})
}

func (h *RelayHandler) best(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	height, err := h.relay.GetBestHeight()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	digest, err := h.relay.GetBestDigest()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, bestResponse{Height: height, Digest: Hash(digest)})
}

func (h *RelayHandler) header(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var digest Hash
	if err := digest.UnmarshalText([]byte(params["digest"])); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	info, err := h.relay.GetBlockHeader(chainhash.Hash(digest))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, headerResponse{
		Digest:        Hash(info.Digest),
		Height:        info.Height,
		ChainID:       uint32(info.ChainID),
		Version:       info.Header.Version,
		PrevBlock:     Hash(info.Header.PrevBlock),
		MerkleRoot:    Hash(info.Header.MerkleRoot),
		Timestamp:     info.Header.Time().Unix(),
		Bits:          info.Header.Bits,
		Nonce:         info.Header.Nonce,
		ChainWork:     info.ChainWork.Dec(),
		Canonical:     info.Canonical,
		Confirmations: info.Confirmations,
		Raw:           info.Header.Raw[:],
	})
}

func (h *RelayHandler) forks(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	segments := h.relay.Forks()
	out := forksResponse{Forks: make([]forkResponse, 0, len(segments))}
	for _, seg := range segments {
		f := forkResponse{
			ChainID:     uint32(seg.ID),
			StartHeight: seg.StartHeight,
			TipHeight:   seg.TipHeight,
			TipDigest:   Hash(seg.TipDigest),
			ChainWork:   seg.CumulativeDifficulty.Dec(),
			State:       seg.State.String(),
			Canonical:   seg.Canonical,
		}
		if seg.HasParent {
			f.ParentChainID = uint32(seg.Parent.Chain)
			f.ParentHeight = seg.Parent.Height
		}
		out.Forks = append(out.Forks, f)
	}
	h.respond(w, out)
}

func (h *RelayHandler) verifyMerkleProof(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req merkleProofRequest
	if !h.decode(w, r, &req) {
		return
	}
	ok, err := h.relay.VerifyMerkleProof(chainhash.Hash(req.TxID), chainhash.Hash(req.MerkleRoot), req.Nodes, req.Index)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, merkleProofResponse{Valid: ok})
}

func (h *RelayHandler) verifyInclusion(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req inclusionRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.relay.VerifyTransactionInclusion(
		r.Context(),
		chainhash.Hash(req.TxID),
		chainhash.Hash(req.BlockDigest),
		req.Nodes,
		req.Index,
		req.Confirmations,
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, verifiedResponse{Verified: true})
}

func (h *RelayHandler) verifyTxOutProof(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req txOutProofRequest
	if !h.decode(w, r, &req) {
		return
	}
	matches, err := h.relay.VerifyTxOutProof(r.Context(), req.Proof, req.Confirmations)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := txOutProofResponse{Matches: make([]txOutProofMatch, 0, len(matches))}
	for _, m := range matches {
		out.Matches = append(out.Matches, txOutProofMatch{TxID: Hash(m.TxID), Index: m.Index})
	}
	h.respond(w, out)
}

func (h *RelayHandler) verifyPayment(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.MinAmount < 0 {
		h.fail(w, r, fmt.Errorf("%w: negative min_amount", errBadRequest))
		return
	}

	minAmount := btcutil.Amount(req.MinAmount)
	var (
		p   payment.Payment
		err error
	)
	if len(req.OpReturn) > 0 {
		p, err = h.relay.VerifyAndValidateOpReturn(r.Context(), req.Proof, req.Tx, req.Address, minAmount, req.OpReturn)
	} else {
		p, err = h.relay.VerifyAndExtractPayment(r.Context(), req.Proof, req.Tx, req.Address, minAmount)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, paymentResponse{
		Address:     p.Address,
		Amount:      int64(p.Amount),
		OutputIndex: p.OutputIndex,
	})
}

func (h *RelayHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err == nil {
		err = json.Unmarshal(body, v)
	}
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return false
	}
	return true
}

func (h *RelayHandler) respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("write response failed", zap.Error(err))
	}
}

// fail writes err as a google.rpc.Status body with the HTTP status of its code.
func (h *RelayHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := errorCode(err)
	if code == codes.Internal {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		h.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	gwruntime.HTTPError(r.Context(), h.mux, &gwruntime.JSONPb{}, w, r, status.Error(code, err.Error()))
}
