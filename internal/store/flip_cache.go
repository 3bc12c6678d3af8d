package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"

	"ceremony/internal/domain"
)

const (
	flipCacheFilename = "flips.db"
	epochBucketPrefix = "epoch-"
)

// FlipBoltCache keeps fetched flip ciphertexts in a bbolt database, one
// bucket per epoch keyed by flip hash.
type FlipBoltCache struct {
	db *bolt.DB
}

// OpenFlipCache opens or creates the cache under dir.
func OpenFlipCache(dir string) (*FlipBoltCache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(dir, flipCacheFilename), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, xerrors.Errorf("open flip cache: %w", err)
	}
	return &FlipBoltCache{db: db}, nil
}

// Close releases the database file lock.
func (c *FlipBoltCache) Close() error { return c.db.Close() }

func epochBucket(epoch domain.Epoch) []byte {
	return []byte(fmt.Sprintf("%s%d", epochBucketPrefix, epoch))
}

// GetFlip returns the cached ciphertext for (epoch, hash).
func (c *FlipBoltCache) GetFlip(epoch domain.Epoch, hash domain.FlipHash) (domain.FlipCiphertext, bool, error) {
	var (
		ct    domain.FlipCiphertext
		found bool
	)
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(epochBucket(epoch))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(hash))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &ct)
	})
	if err != nil {
		return domain.FlipCiphertext{}, false, xerrors.Errorf("read flip %s: %w", hash, err)
	}
	return ct, found, nil
}

// PutFlip stores ct for (epoch, hash).
func (c *FlipBoltCache) PutFlip(epoch domain.Epoch, hash domain.FlipHash, ct domain.FlipCiphertext) error {
	v, err := json.Marshal(ct)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(epochBucket(epoch))
		if err != nil {
			return err
		}
		return b.Put([]byte(hash), v)
	})
}

// PruneBefore drops every epoch bucket older than epoch.
func (c *FlipBoltCache) PruneBefore(epoch domain.Epoch) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		var stale [][]byte
		err := tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			s := string(name)
			if !strings.HasPrefix(s, epochBucketPrefix) {
				return nil
			}
			n, err := strconv.ParseUint(strings.TrimPrefix(s, epochBucketPrefix), 10, 16)
			if err != nil {
				return nil
			}
			if domain.Epoch(n) < epoch {
				stale = append(stale, append([]byte(nil), name...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, name := range stale {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Compile-time assertion that FlipBoltCache implements domain.FlipCache.
var _ domain.FlipCache = (*FlipBoltCache)(nil)
