package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltStorage keeps generations in a bbolt file, one top-level bucket per
// generation. A bolt transaction makes every Put and PutAll atomic.
type BoltStorage struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("offline: open bolt %s: %w", path, err)
	}
	return &BoltStorage{db: db}, nil
}

// NewBoltStorage wraps an already open database.
func NewBoltStorage(db *bolt.DB) *BoltStorage {
	return &BoltStorage{db: db}
}

// Close closes the database.
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

// Open creates the bolt bucket for name if needed.
func (s *BoltStorage) Open(ctx context.Context, name string) (Bucket, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("offline: open generation %s: %w", name, err)
	}
	return &boltBucket{db: s.db, name: name}, nil
}

// Names lists the top-level bolt buckets, sorted.
func (s *BoltStorage) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	sort.Strings(names)
	return names, err
}

// Drop deletes the bolt bucket for name. Missing buckets are ignored.
func (s *BoltStorage) Drop(ctx context.Context, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(name))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

type boltBucket struct {
	db   *bolt.DB
	name string
}

// Name returns the generation name.
func (b *boltBucket) Name() string { return b.name }

// Match decodes the entry stored under key.
func (b *boltBucket) Match(ctx context.Context, key string) (*Entry, bool, error) {
	var e *Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(b.name))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}
		// Unmarshal copies; data is only valid inside the transaction.
		e = new(Entry)
		return json.Unmarshal(data, e)
	})
	if err != nil {
		return nil, false, err
	}
	return e, e != nil, nil
}

// Put stores e under key in one transaction.
func (b *boltBucket) Put(ctx context.Context, key string, e *Entry) error {
	return b.PutAll(ctx, map[string]*Entry{key: e})
}

// PutAll stores every entry in one transaction.
func (b *boltBucket) PutAll(ctx context.Context, entries map[string]*Entry) error {
	encoded := make(map[string][]byte, len(entries))
	for key, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("offline: encode %s: %w", key, err)
		}
		encoded[key] = data
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(b.name))
		if bucket == nil {
			return ErrDropped
		}
		for key, data := range encoded {
			if err := bucket.Put([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Keys returns the stored keys in bolt order.
func (b *boltBucket) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(b.name))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}
