package offline

import (
	"context"
	"sort"
	"sync"
)

// MemoryStorage keeps generations in process memory.
type MemoryStorage struct {
	mu      sync.RWMutex
	buckets map[string]*memoryBucket
}

// NewMemoryStorage creates an empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{buckets: make(map[string]*memoryBucket)}
}

// Open returns the generation name, creating it when missing.
func (s *MemoryStorage) Open(ctx context.Context, name string) (Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[name]; ok {
		return b, nil
	}
	b := &memoryBucket{name: name, entries: make(map[string]*Entry)}
	s.buckets[name] = b
	return b, nil
}

// Names returns every generation, sorted.
func (s *MemoryStorage) Names(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.buckets))
	for name := range s.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Drop deletes a generation. Handles to it reject later writes.
func (s *MemoryStorage) Drop(ctx context.Context, name string) error {
	s.mu.Lock()
	b, ok := s.buckets[name]
	delete(s.buckets, name)
	s.mu.Unlock()

	if ok {
		b.mu.Lock()
		b.dropped = true
		b.entries = nil
		b.mu.Unlock()
	}
	return nil
}

type memoryBucket struct {
	name    string
	mu      sync.RWMutex
	entries map[string]*Entry
	dropped bool
}

// Name returns the generation name.
func (b *memoryBucket) Name() string { return b.name }

// Match returns a copy of the entry stored under key.
func (b *memoryBucket) Match(ctx context.Context, key string) (*Entry, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[key]
	if !ok {
		return nil, false, nil
	}
	return e.Clone(), true, nil
}

// Put stores a copy of e under key.
func (b *memoryBucket) Put(ctx context.Context, key string, e *Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dropped {
		return ErrDropped
	}
	b.entries[key] = e.Clone()
	return nil
}

// PutAll stores every entry under one lock.
func (b *memoryBucket) PutAll(ctx context.Context, entries map[string]*Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dropped {
		return ErrDropped
	}
	for key, e := range entries {
		b.entries[key] = e.Clone()
	}
	return nil
}

// Keys returns the stored keys, sorted.
func (b *memoryBucket) Keys(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
