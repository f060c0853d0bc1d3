// Package store provides the reactive state container every stateful
// component of the client is built on.
//
// A Store holds one immutable value and an ordered list of subscribers.
// Every mutation replaces the value wholesale and notifies all current
// subscribers synchronously, in registration order, before the mutating
// call returns:
//
//	users := store.New([]api.User{})
//	stop := users.Subscribe(func(v []api.User) {
//	    render(v)
//	})
//	defer stop()
//
//	users.Update(func(v []api.User) []api.User {
//	    return append(slices.Clone(v), u)
//	})
//
// Stores are explicitly constructed and passed to their owners. There are no
// package-level instances; each test builds its own.
//
// Notifications of one Store are serialized, so subscribers observe values in
// the order they were written even when writers live on different
// goroutines. A subscriber must not call Set or Update on the Store that is
// notifying it; hand the write to a goroutine instead.
package store
