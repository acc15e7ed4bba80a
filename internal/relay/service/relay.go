// Package service exposes the relay operations: header submission on top of
// the chain/fork store and SPV verification against the stored chain.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/relay/model"
	"github.com/goodnatureofminers/btcrelay/internal/relay/store"
	"github.com/goodnatureofminers/btcrelay/internal/spv/codec"
	"github.com/goodnatureofminers/btcrelay/internal/spv/headerchain"
	"github.com/goodnatureofminers/btcrelay/internal/spv/payment"
	"github.com/goodnatureofminers/btcrelay/internal/spv/target"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// Relay serializes every operation that reads or mutates the store.
type Relay struct {
	mu sync.Mutex

	store     *store.Store
	validator *headerchain.Validator
	params    target.Params
	decoder   *payment.Decoder
	sink      EventSink
	metrics   Metrics
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewRelay builds a relay over st for the configured network. A nil sink disables events.
func NewRelay(st *store.Store, cfg Config, sink EventSink, metrics Metrics, logger *zap.Logger) (*Relay, error) {
	if cfg.Network == "" {
		cfg.Network = DefaultConfig().Network
	}
	if cfg.ConfirmationDepth == 0 {
		cfg.ConfirmationDepth = DefaultConfirmationDepth
	}
	if cfg.MinHeaderVersion == 0 {
		cfg.MinHeaderVersion = DefaultMinHeaderVersion
	}

	chainParams, err := payment.ChainParams(string(cfg.Network))
	if err != nil {
		return nil, err
	}
	params, err := target.ParamsFromChain(chainParams)
	if err != nil {
		return nil, err
	}
	if cfg.RetargetInterval != 0 {
		params.RetargetInterval = cfg.RetargetInterval
	}
	decoder, err := payment.NewDecoder(string(cfg.Network))
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("network", string(cfg.Network)))
	if cfg.DisableDifficultyCheck {
		logger.Warn("difficulty checks disabled, only proof of work against header bits is enforced")
	}

	return &Relay{
		store:     st,
		validator: headerchain.New(params),
		params:    params,
		decoder:   decoder,
		sink:      sink,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Initialize stores the trust anchor. It may succeed only once.
func (r *Relay) Initialize(ctx context.Context, raw []byte, height uint32) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("initialize", err, started)
	}()

	h, err := codec.ParseHeader(raw)
	if err != nil {
		return err
	}
	t, err := target.Decode(h.Bits)
	if err != nil {
		return fmt.Errorf("anchor bits %08x: %w", h.Bits, err)
	}
	difficulty, err := r.params.Difficulty(t)
	if err != nil {
		return fmt.Errorf("anchor difficulty: %w", err)
	}
	link := headerchain.Link{Header: h, Digest: h.Digest(), Target: t, Difficulty: difficulty}

	event, err := r.initialize(ctx, link, height)
	if err != nil {
		return err
	}
	r.logger.Info("relay initialized",
		zap.Stringer("digest", link.Digest),
		zap.Uint32("height", height))
	r.metrics.SetBestHeight(height)
	r.publish(ctx, []model.Event{event})
	return nil
}

func (r *Relay) initialize(ctx context.Context, link headerchain.Link, height uint32) (model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.store.Begin()
	if err != nil {
		return model.Event{}, err
	}
	defer tx.Rollback()
	if err := tx.Initialize(link, height); err != nil {
		return model.Event{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Event{}, err
	}

	stored, _, err := r.store.Header(link.Digest)
	if err != nil {
		return model.Event{}, err
	}
	return r.headerEvent(model.EventInitialized, stored, store.MainChainID), nil
}

// SubmitHeader validates and stores one header and returns its height.
func (r *Relay) SubmitHeader(ctx context.Context, raw []byte) (height uint32, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("submit_header", err, started)
	}()

	link, err := r.validator.ValidateHeader(raw)
	if err != nil {
		r.logger.Debug("header rejected", zap.Error(err))
		return 0, err
	}

	inserted, events, err := r.insertLinks(ctx, []headerchain.Link{link})
	if err != nil {
		r.logger.Debug("header rejected", zap.Stringer("digest", link.Digest), zap.Error(err))
		return 0, err
	}
	r.publish(ctx, events)
	return inserted[0].Location.Height, nil
}

// SubmitHeaderBatch validates a contiguous run of headers and stores all of
// them or none. It returns the summed difficulty of the run.
func (r *Relay) SubmitHeaderBatch(ctx context.Context, raw []byte) (total *uint256.Int, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("submit_header_batch", err, started)
	}()

	res, err := r.validator.Validate(raw)
	if err != nil {
		r.logger.Debug("header batch rejected", zap.Error(err))
		return nil, err
	}
	if len(res.Links) == 0 {
		return nil, ErrEmptyBatch
	}

	_, events, err := r.insertLinks(ctx, res.Links)
	if err != nil {
		r.logger.Debug("header batch rejected", zap.Int("headers", len(res.Links)), zap.Error(err))
		return nil, err
	}
	r.publish(ctx, events)
	return res.TotalDifficulty, nil
}

// insertLinks stores links in one store transaction under r.mu. The returned
// events are published by the caller once the lock is released.
func (r *Relay) insertLinks(ctx context.Context, links []headerchain.Link) ([]*store.Insertion, []model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.store.Initialized() {
		return nil, nil, store.ErrNotInitialized
	}
	tx, err := r.store.Begin()
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	inserted := make([]*store.Insertion, 0, len(links))
	var events []model.Event
	for i, link := range links {
		if err := r.checkHeader(link); err != nil {
			return nil, nil, fmt.Errorf("header %d %s: %w", i, link.Digest, err)
		}
		ins, err := tx.Insert(link)
		if err != nil {
			return nil, nil, fmt.Errorf("header %d %s: %w", i, link.Digest, err)
		}
		inserted = append(inserted, ins)
		events = append(events, r.insertionEvents(link, ins)...)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	if best, err := r.store.BestHeight(); err == nil {
		r.metrics.SetBestHeight(best)
	}
	return inserted, events, nil
}

// GetBestHeight returns the height of the canonical tip.
func (r *Relay) GetBestHeight() (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.BestHeight()
}

// AnchorHeight returns the height the relay was initialized at.
func (r *Relay) AnchorHeight() (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.AnchorHeight()
}

// GetBestDigest returns the digest of the canonical tip.
func (r *Relay) GetBestDigest() (chainhash.Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.BestDigest()
}

// Initialized reports whether the trust anchor is set.
func (r *Relay) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Initialized()
}

// Contains reports whether a digest is stored, canonical or not.
func (r *Relay) Contains(digest chainhash.Hash) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Contains(digest)
}

// HeaderInfo describes a stored header.
type HeaderInfo struct {
	Header        *codec.Header
	Digest        chainhash.Hash
	Height        uint32
	ChainID       store.ChainID
	ChainWork     *uint256.Int
	Canonical     bool
	Confirmations uint32
}

// GetBlockHeader returns a stored header. Confirmations are zero off the canonical chain.
func (r *Relay) GetBlockHeader(digest chainhash.Hash) (HeaderInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, loc, err := r.store.Header(digest)
	if err != nil {
		return HeaderInfo{}, err
	}
	info := HeaderInfo{
		Header:    h.Header,
		Digest:    h.Digest,
		Height:    h.Height,
		ChainID:   loc.Chain,
		ChainWork: h.ChainWork.Clone(),
		Canonical: r.store.IsCanonical(digest),
	}
	if info.Canonical {
		confs, err := r.store.Confirmations(digest)
		if err != nil {
			return HeaderInfo{}, err
		}
		info.Confirmations = confs
	}
	return info, nil
}

// CanonicalHeader returns the canonical header at height in archive form.
func (r *Relay) CanonicalHeader(height uint32) (model.Header, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, err := r.store.CanonicalAt(height)
	if err != nil {
		return model.Header{}, err
	}
	_, loc, err := r.store.Header(h.Digest)
	if err != nil {
		return model.Header{}, err
	}
	return r.modelHeader(h, loc.Chain), nil
}

// Confirmations returns best height - height + 1 for a canonical header.
func (r *Relay) Confirmations(digest chainhash.Hash) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Confirmations(digest)
}

// Forks summarizes every live segment of the header tree.
func (r *Relay) Forks() []store.SegmentInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Segments()
}

// Network returns the network the relay validates.
func (r *Relay) Network() model.Network {
	return r.cfg.Network
}
