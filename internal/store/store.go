package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/folio-sh/folio/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCart  = []byte("cart")
	bucketBadge = []byte("badge")
)

// Collection keys within the cart bucket
const (
	keyBooks = "books"
	keyPacks = "packs"
	keyBadge = "state"
)

// CartStore persists the cart collections and badge scalars using BoltDB.
// All operations are synchronous; a memory cache fronts the database for
// hot-path reads. With an empty path the store runs memory-only (used by
// tests and ephemeral sessions).
type CartStore struct {
	db     *bolt.DB
	logger *slog.Logger

	mu    sync.RWMutex // Protects memory cache
	cache map[string][]byte
}

// Open opens (or creates) the cart database at path.
func Open(path string, logger *slog.Logger) (*CartStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if path == "" {
		// Memory-only mode (no persistence)
		return &CartStore{cache: make(map[string][]byte), logger: logger}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cart db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCart, bucketBadge} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CartStore{db: db, cache: make(map[string][]byte), logger: logger}, nil
}

func (s *CartStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Books returns the line-item collection for standalone books.
func (s *CartStore) Books() *Collection {
	return &Collection{store: s, key: keyBooks}
}

// Packs returns the line-item collection for book packs.
func (s *CartStore) Packs() *Collection {
	return &Collection{store: s, key: keyPacks}
}

// === Generic helpers ===

func (s *CartStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		if err := json.Unmarshal(data, dest); err != nil {
			s.logger.Warn("discarding unparsable cached value", "key", cacheKey, "error", err)
			return false
		}
		return true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	// Read from BoltDB
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt persisted value: degrade to absent, never propagate
		s.logger.Warn("discarding unparsable stored value", "key", cacheKey, "error", err)
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return true
}

func (s *CartStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	if s.db != nil {
		// Write to BoltDB before touching the cache so a failed write
		// leaves the cached view consistent with disk
		err = s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucket)
			return b.Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return nil
}

func (s *CartStore) delete(bucket []byte, key string) error {
	cacheKey := string(bucket) + ":" + key

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucket)
			if b != nil {
				return b.Delete([]byte(key))
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	return nil
}

// === Badge scalars ===

func (s *CartStore) Badge() domain.BadgeState {
	var state domain.BadgeState
	s.get(bucketBadge, keyBadge, &state)
	return state
}

func (s *CartStore) SaveBadge(state domain.BadgeState) error {
	return s.set(bucketBadge, keyBadge, state)
}
