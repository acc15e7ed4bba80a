package service

import (
	"context"

	"github.com/goodnatureofminers/btcrelay/internal/relay/model"
	"github.com/goodnatureofminers/btcrelay/internal/relay/store"
	"github.com/goodnatureofminers/btcrelay/internal/spv/headerchain"
	"go.uber.org/zap"
)

func (r *Relay) insertionEvents(link headerchain.Link, ins *store.Insertion) []model.Event {
	stored := &store.StoredHeader{
		Header:    link.Header,
		Digest:    link.Digest,
		Height:    ins.Location.Height,
		ChainWork: ins.ChainWork,
	}

	kind := model.EventStoreForkHeader
	if ins.Canonical && ins.Reorg == nil {
		kind = model.EventStoreMainChainHeader
	}
	events := []model.Event{r.headerEvent(kind, stored, ins.Location.Chain)}

	if reorg := ins.Reorg; reorg != nil {
		r.logger.Info("chain reorganized",
			zap.Uint32("fork_height", reorg.ForkHeight),
			zap.Stringer("old_best", reorg.OldBestDigest),
			zap.Uint32("old_height", reorg.OldBestHeight),
			zap.Stringer("new_best", reorg.NewBestDigest),
			zap.Uint32("new_height", reorg.NewBestHeight))
		events = append(events, model.Event{
			Kind:       model.EventChainReorg,
			Network:    r.cfg.Network,
			Digest:     reorg.NewBestDigest,
			Height:     reorg.NewBestHeight,
			ChainID:    uint32(reorg.NewChain),
			Observed:   r.now(),
			ForkHeight: reorg.ForkHeight,
			PrevDigest: reorg.OldBestDigest,
			PrevHeight: reorg.OldBestHeight,
		})
	}

	for _, p := range ins.Pruned {
		r.logger.Info("fork pruned",
			zap.Uint32("chain_id", uint32(p.ID)),
			zap.Uint32("start_height", p.StartHeight),
			zap.Uint32("tip_height", p.TipHeight))
		events = append(events, model.Event{
			Kind:     model.EventForkPruned,
			Network:  r.cfg.Network,
			Digest:   p.TipDigest,
			Height:   p.TipHeight,
			ChainID:  uint32(p.ID),
			Observed: r.now(),
		})
	}
	return events
}

func (r *Relay) headerEvent(kind model.EventKind, h *store.StoredHeader, chain store.ChainID) model.Event {
	header := r.modelHeader(h, chain)
	return model.Event{
		Kind:     kind,
		Network:  r.cfg.Network,
		Digest:   h.Digest,
		Height:   h.Height,
		ChainID:  uint32(chain),
		Observed: r.now(),
		Header:   &header,
	}
}

func (r *Relay) modelHeader(h *store.StoredHeader, chain store.ChainID) model.Header {
	return model.Header{
		Network:    r.cfg.Network,
		Digest:     h.Digest,
		Height:     h.Height,
		ChainID:    uint32(chain),
		Version:    h.Header.Version,
		PrevBlock:  h.Header.PrevBlock,
		MerkleRoot: h.Header.MerkleRoot,
		Timestamp:  h.Header.Time(),
		Bits:       h.Header.Bits,
		Nonce:      h.Header.Nonce,
		ChainWork:  h.ChainWork.Dec(),
		Raw:        append([]byte(nil), h.Header.Raw[:]...),
	}
}

// publish hands events to the sink. The store is already committed, so a sink
// failure is logged and not returned. Callers must not hold r.mu.
func (r *Relay) publish(ctx context.Context, events []model.Event) {
	for _, e := range events {
		r.metrics.IncEvent(e.Kind)
	}
	if r.sink == nil || len(events) == 0 {
		return
	}
	if err := r.sink.Publish(ctx, events); err != nil {
		r.logger.Warn("publish relay events", zap.Int("events", len(events)), zap.Error(err))
	}
}
