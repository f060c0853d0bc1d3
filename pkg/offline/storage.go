package offline

import (
	"context"
	"errors"
)

var (
	// ErrDropped is returned when writing to a generation that was deleted.
	ErrDropped = errors.New("offline: generation dropped")

	// ErrState is returned when a worker lifecycle step runs out of order.
	ErrState = errors.New("offline: invalid worker state")
)

// Storage holds named cache generations.
type Storage interface {
	// Open returns the generation called name, creating it if needed.
	Open(ctx context.Context, name string) (Bucket, error)

	// Names lists all generations, sorted.
	Names(ctx context.Context) ([]string, error)

	// Drop deletes a generation. Dropping a missing name is not an error.
	Drop(ctx context.Context, name string) error
}

// Bucket is one generation of cached responses keyed by request.
type Bucket interface {
	Name() string

	// Match looks up key. ok is false on a miss.
	Match(ctx context.Context, key string) (e *Entry, ok bool, err error)

	// Put stores e under key, replacing any prior entry. Readers see either
	// the old or the new entry, never a partial one.
	Put(ctx context.Context, key string, e *Entry) error

	// PutAll stores every entry or none of them.
	PutAll(ctx context.Context, entries map[string]*Entry) error

	// Keys lists the stored keys, sorted.
	Keys(ctx context.Context) ([]string, error)
}
