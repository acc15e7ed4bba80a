package relayer

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcrelay/internal/spv/codec"
	"github.com/goodnatureofminers/btcrelay/pkg/safe"
	"github.com/goodnatureofminers/btcrelay/pkg/workerpool"
	lru "github.com/hashicorp/golang-lru/v2"
)

// nodeHeaderFetcher reads the headers the relay is missing from a node. The
// node's chain is authoritative: fetching resumes above the highest node block
// the relay already stores, so a node reorg is followed from its fork point.
type nodeHeaderFetcher struct {
	relay       Relay
	node        NodeClient
	metrics     Metrics
	cache       *lru.Cache[chainhash.Hash, []byte]
	workerCount int
	batchSize   int
}

func newNodeHeaderFetcher(relay Relay, node NodeClient, metrics Metrics, cfg Config) (*nodeHeaderFetcher, error) {
	cache, err := lru.New[chainhash.Hash, []byte](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("header cache: %w", err)
	}
	return &nodeHeaderFetcher{
		relay:       relay,
		node:        node,
		metrics:     metrics,
		cache:       cache,
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
	}, nil
}

func (f *nodeHeaderFetcher) Fetch(ctx context.Context) (Range, error) {
	count, err := f.node.GetBlockCount()
	if err != nil {
		return Range{}, fmt.Errorf("get block count: %w", err)
	}
	nodeHeight, err := safe.Uint32(count)
	if err != nil {
		return Range{}, fmt.Errorf("block count %d: %w", count, err)
	}
	f.metrics.SetNodeHeight(nodeHeight)

	from, err := f.resumeHeight(nodeHeight)
	if err != nil {
		return Range{}, err
	}
	if from > nodeHeight {
		return Range{From: from}, nil
	}

	to := nodeHeight
	if span := uint64(nodeHeight) - uint64(from) + 1; span > uint64(f.batchSize) {
		to = from + uint32(f.batchSize) - 1
	}
	heights := make([]uint32, 0, to-from+1)
	for h := from; ; h++ {
		heights = append(heights, h)
		if h == to {
			break
		}
	}

	headers, err := workerpool.Collect(ctx, f.workerCount, heights, f.Header)
	if err != nil {
		return Range{}, err
	}
	return Range{From: from, Headers: headers}, nil
}

// resumeHeight returns the height above the highest node block the relay
// stores, canonical or not.
func (f *nodeHeaderFetcher) resumeHeight(nodeHeight uint32) (uint32, error) {
	anchor, err := f.relay.AnchorHeight()
	if err != nil {
		return 0, err
	}
	if nodeHeight < anchor {
		return anchor + 1, nil
	}
	best, err := f.relay.GetBestHeight()
	if err != nil {
		return 0, err
	}

	for h := min(best, nodeHeight); ; h-- {
		hash, err := f.blockHash(h)
		if err != nil {
			return 0, err
		}
		if f.relay.Contains(*hash) {
			return h + 1, nil
		}
		if h <= anchor {
			return 0, fmt.Errorf("node block %s at %d: %w", hash, h, ErrChainMismatch)
		}
	}
}

// Header returns the raw header of the node's block at height.
func (f *nodeHeaderFetcher) Header(_ context.Context, height uint32) ([]byte, error) {
	hash, err := f.blockHash(height)
	if err != nil {
		return nil, err
	}
	if raw, ok := f.cache.Get(*hash); ok {
		return raw, nil
	}
	bh, err := f.node.GetBlockHeader(hash)
	if err != nil {
		return nil, fmt.Errorf("get block header %s: %w", hash, err)
	}
	raw, err := codec.SerializeHeader(bh)
	if err != nil {
		return nil, fmt.Errorf("serialize header %s: %w", hash, err)
	}
	f.cache.Add(*hash, raw)
	return raw, nil
}

// Forget drops cached headers after the node's chain moved under a submission.
func (f *nodeHeaderFetcher) Forget() {
	f.cache.Purge()
}

func (f *nodeHeaderFetcher) blockHash(height uint32) (*chainhash.Hash, error) {
	hash, err := f.node.GetBlockHash(int64(height))
	if err != nil {
		return nil, fmt.Errorf("get block hash %d: %w", height, err)
	}
	return hash, nil
}
