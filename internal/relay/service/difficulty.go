package service

import (
	"errors"
	"fmt"

	"github.com/goodnatureofminers/btcrelay/internal/relay/store"
	"github.com/goodnatureofminers/btcrelay/internal/spv"
	"github.com/goodnatureofminers/btcrelay/internal/spv/headerchain"
)

// checkHeader enforces the rules that depend on the stored parent: the
// proof-of-work limit always, the header version and the expected bits
// unless difficulty checks are disabled.
func (r *Relay) checkHeader(link headerchain.Link) error {
	if !r.params.WithinPowLimit(link.Target) {
		return fmt.Errorf("bits %08x above pow limit: %w", link.Header.Bits, spv.ErrDiffTargetHeader)
	}
	if r.cfg.DisableDifficultyCheck {
		return nil
	}
	if link.Header.Version < r.cfg.MinHeaderVersion {
		return fmt.Errorf("version %d below %d: %w", link.Header.Version, r.cfg.MinHeaderVersion, ErrInvalidHeaderVersion)
	}
	if r.params.NoRetargeting || r.params.ReduceMinDifficulty {
		return nil
	}

	parent, _, err := r.store.Header(link.Header.PrevBlock)
	if err != nil {
		// The store reports the unknown parent on insert.
		return nil
	}
	height := parent.Height + 1

	want := parent.Header.Bits
	if r.params.IsRetargetHeight(height) && height >= r.params.RetargetInterval {
		first, err := r.store.Ancestor(parent.Digest, height-r.params.RetargetInterval)
		switch {
		case errors.Is(err, store.ErrBlockNotFound):
			// The period started below the trust anchor.
			return nil
		case err != nil:
			return err
		}
		want, err = r.params.Retarget(parent.Header.Bits, first.Header.Timestamp, parent.Header.Timestamp)
		if err != nil {
			return fmt.Errorf("retarget at %d: %w", height, err)
		}
	}
	if link.Header.Bits != want {
		return fmt.Errorf("bits %08x at %d, want %08x: %w", link.Header.Bits, height, want, spv.ErrDiffTargetHeader)
	}
	return nil
}
