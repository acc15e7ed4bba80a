// Package boltdb persists the chain/fork store in a bbolt file. Every change
// set is written in a single bbolt update transaction.
package boltdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goodnatureofminers/btcrelay/internal/relay/store"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketMeta     = []byte("meta")
	bucketSegments = []byte("segments_by_id")
	bucketHeaders  = []byte("headers_by_digest")

	keyMeta = []byte("state")
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Metrics observes backend operations.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Backend is a store.Backend on top of bbolt.
type Backend struct {
	db      *bolt.DB
	metrics Metrics
}

// Open opens or creates the database file at path.
func Open(path string, metrics Metrics) (*Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketMeta, bucketSegments, bucketHeaders} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Backend{db: db, metrics: metrics}, nil
}

// Load reads the whole arena.
func (b *Backend) Load(ctx context.Context) (snap *store.Snapshot, err error) {
	started := time.Now()
	defer func() {
		b.metrics.Observe("load", err, started)
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap = &store.Snapshot{}
	err = b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketMeta).Get(keyMeta); v != nil {
			meta, err := decodeMeta(v)
			if err != nil {
				return err
			}
			snap.Meta = meta
		}
		if err := tx.Bucket(bucketSegments).ForEach(func(k, v []byte) error {
			rec, err := decodeSegment(k, v)
			if err != nil {
				return err
			}
			snap.Segments = append(snap.Segments, rec)
			return nil
		}); err != nil {
			return err
		}
		return tx.Bucket(bucketHeaders).ForEach(func(k, v []byte) error {
			rec, err := decodeHeader(k, v)
			if err != nil {
				return err
			}
			snap.Headers = append(snap.Headers, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Apply writes the change set in one update transaction.
func (b *Backend) Apply(ctx context.Context, cs *store.ChangeSet) (err error) {
	started := time.Now()
	defer func() {
		b.metrics.Observe("apply", err, started)
	}()
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketMeta).Put(keyMeta, encodeMeta(cs.Meta)); err != nil {
			return fmt.Errorf("put meta: %w", err)
		}

		segments := tx.Bucket(bucketSegments)
		for _, id := range cs.DeletedSegments {
			if err := segments.Delete(segmentKey(id)); err != nil {
				return fmt.Errorf("delete segment %d: %w", id, err)
			}
		}
		for _, rec := range cs.Segments {
			if err := segments.Put(segmentKey(rec.ID), encodeSegment(rec)); err != nil {
				return fmt.Errorf("put segment %d: %w", rec.ID, err)
			}
		}

		headers := tx.Bucket(bucketHeaders)
		for _, digest := range cs.DeletedHeaders {
			if err := headers.Delete(digest[:]); err != nil {
				return fmt.Errorf("delete header %s: %w", digest, err)
			}
		}
		for _, rec := range cs.Headers {
			if err := headers.Put(rec.Digest[:], encodeHeader(rec)); err != nil {
				return fmt.Errorf("put header %s: %w", rec.Digest, err)
			}
		}
		return nil
	})
}

// Close closes the database file.
func (b *Backend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
