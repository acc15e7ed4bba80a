package relayer

import "time"

const (
	defaultWorkerCount = 8
	defaultBatchSize   = 500
	defaultCacheSize   = 4096

	sleepDuration     = 5 * time.Second
	longSleepDuration = 30 * time.Second
)

// Config tunes the follower loop.
type Config struct {
	// BatchSize caps the headers submitted per relay call.
	BatchSize int
	// WorkerCount is the number of concurrent node requests.
	WorkerCount int
	// CacheSize is the number of raw headers kept by block hash.
	CacheSize int
	// Bootstrap initializes an empty relay from the node at AnchorHeight.
	Bootstrap    bool
	AnchorHeight uint32

	SleepDuration     time.Duration
	LongSleepDuration time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = defaultWorkerCount
	}
	if c.CacheSize <= 0 {
		c.CacheSize = defaultCacheSize
	}
	if c.SleepDuration <= 0 {
		c.SleepDuration = sleepDuration
	}
	if c.LongSleepDuration <= 0 {
		c.LongSleepDuration = longSleepDuration
	}
	return c
}
