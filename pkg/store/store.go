package store

import (
	"sync"
	"sync/atomic"
)

// Readable is the read side of a Store, handed to components that observe
// state but must not mutate it.
type Readable[V any] interface {
	Get() V
	Subscribe(fn func(V)) (unsubscribe func())
}

// subscription is one registered callback.
type subscription[V any] struct {
	fn     func(V)
	active atomic.Bool
}

// Store is a reactive value container.
type Store[V any] struct {
	// emitMu serializes write+notify cycles so notifications are strictly
	// ordered and Update is atomic with respect to other writers.
	emitMu sync.Mutex

	// mu protects value and subs. It is never held while subscribers run.
	mu    sync.RWMutex
	value V
	subs  []*subscription[V]
}

// New creates a Store holding initial.
func New[V any](initial V) *Store[V] {
	return &Store[V]{value: initial}
}

// Get returns the current value.
func (s *Store[V]) Get() V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Subscribe registers fn to be called with every subsequent value.
// It does not replay the current value; use Get for that.
//
// A subscriber registered while a notification is running is first invoked
// for the next notification. The returned function removes the subscription;
// calling it more than once is a no-op.
//
// fn runs while the Store holds its write lock. Calling Set or Update on the
// same Store from fn deadlocks; so does calling into an owner that writes
// the Store under its own lock, such as an optimistic.Coordinator. Start a
// goroutine for such writes.
func (s *Store[V]) Subscribe(fn func(V)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	sub := &subscription[V]{fn: fn}
	sub.active.Store(true)

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(sub) })
	}
}

// Set replaces the value and notifies every subscriber.
func (s *Store[V]) Set(value V) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.value = value
	subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, value)
}

// Update replaces the value with fn(current) and notifies every subscriber.
// fn runs outside the value lock, so it may call Get, but no other writer
// can interleave between the read and the write.
func (s *Store[V]) Update(fn func(V) V) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	next := fn(s.Get())

	s.mu.Lock()
	s.value = next
	subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, next)
}

// Len returns the number of active subscribers.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// snapshotLocked copies the subscriber list. Caller holds mu.
func (s *Store[V]) snapshotLocked() []*subscription[V] {
	subs := make([]*subscription[V], len(s.subs))
	copy(subs, s.subs)
	return subs
}

func (s *Store[V]) remove(sub *subscription[V]) {
	sub.active.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Preserve registration order for the remaining subscribers.
	for i, existing := range s.subs {
		if existing == sub {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func notify[V any](subs []*subscription[V], value V) {
	for _, sub := range subs {
		if sub.active.Load() {
			sub.fn(value)
		}
	}
}
