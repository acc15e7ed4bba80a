package store

// DefaultPruneDepth is how far a stale fork may trail the best height before it is pruned.
const DefaultPruneDepth uint32 = 144

// Config tunes the chain/fork store.
type Config struct {
	// PruneDepth is the lag, in blocks, after which a stale fork is removed.
	// Zero keeps stale forks forever.
	PruneDepth uint32
}

// DefaultConfig returns the store settings used by the daemon.
func DefaultConfig() Config {
	return Config{PruneDepth: DefaultPruneDepth}
}
