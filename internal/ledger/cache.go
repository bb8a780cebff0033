package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const boltRecordBucket = "records"

// BoltCache is a read-through cache of ledger records kept in a BoltDB file.
// Ledger records are immutable, so cached entries never expire.
type BoltCache struct {
	db       *bolt.DB
	upstream Ledger
}

// NewBoltCache opens (or creates) the cache at path in front of upstream.
func NewBoltCache(path string, upstream Ledger) (*BoltCache, error) {
	if path == "" {
		return nil, errors.New("cache path is required")
	}
	if upstream == nil {
		return nil, errors.New("upstream ledger is required")
	}

	cleaned := filepath.Clean(path)
	if dir := filepath.Dir(cleaned); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := bolt.Open(cleaned, 0o600, nil)
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltRecordBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltCache{db: db, upstream: upstream}, nil
}

// Lookup serves the record from the cache, falling back to upstream and
// storing what it returns.
func (c *BoltCache) Lookup(ctx context.Context, hash string) (Record, error) {
	if rec, ok := c.cached(hash); ok {
		logrus.Debugf("Ledger cache hit for %s", hash)
		return rec, nil
	}

	rec, err := c.upstream.Lookup(ctx, hash)
	if err != nil {
		return Record{}, err
	}

	if err := c.store(hash, rec); err != nil {
		logrus.Warnf("Failed to cache ledger record %s: %v", hash, err)
	}
	return rec, nil
}

// BuildPackages is not cached: build indexes may still grow.
func (c *BoltCache) BuildPackages(ctx context.Context, buildID string) ([]string, error) {
	return c.upstream.BuildPackages(ctx, buildID)
}

// Close closes the cache file and the upstream ledger.
func (c *BoltCache) Close() error {
	return errors.Join(c.db.Close(), c.upstream.Close())
}

func (c *BoltCache) cached(hash string) (Record, bool) {
	var data []byte
	_ = c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltRecordBucket))
		if bucket == nil {
			return nil
		}
		if v := bucket.Get([]byte(hash)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if data == nil {
		return Record{}, false
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		logrus.Warnf("Ignoring corrupt cache entry for %s: %v", hash, err)
		return Record{}, false
	}
	return rec, true
}

func (c *BoltCache) store(hash string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltRecordBucket))
		if bucket == nil {
			return errors.New("cache bucket missing")
		}
		return bucket.Put([]byte(hash), data)
	})
}
