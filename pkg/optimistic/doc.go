// Package optimistic applies local-first mutations to a store.Store.
//
// A Coordinator owns one container. Each Mutation patches the container
// immediately, calls the remote service, and settles in one of three ways:
//
//   - the service answers with an identifiable entity: Reconcile replaces
//     the optimistically patched entity with the server copy wholesale
//   - the service answers without an identity: the coordinator discards the
//     guess and reloads the whole collection
//   - the call fails: same full reload, plus exactly one failure notification
//
// Full reloads go through Resync, which is safe to call concurrently. A
// reload that started earlier never overwrites the result of one that
// started later.
//
// # Ordering
//
// Every mutation draws a sequence number for its key. A successful
// settlement is applied only if no newer mutation for the same key was
// started in the meantime; otherwise it reports Superseded and leaves the
// newer optimistic state alone. WithoutSequencing disables the check, in
// which case a slow response can overwrite a newer optimistic patch.
//
// # Usage
//
//	users := store.New([]api.User{})
//	coord := optimistic.New(users, loadAll,
//	    optimistic.WithNotifier(toasts),
//	)
//
//	coord.Apply(ctx, optimistic.Mutation[[]api.User, api.User]{
//	    Action:    "drink",
//	    Key:       id,
//	    Patch:     incrementBeers(id),
//	    Call:      func(ctx context.Context) (api.User, error) { return svc.Drink(ctx, id) },
//	    Identify:  func(u api.User) bool { return u.ID != "" },
//	    Reconcile: replaceUser,
//	    Failure:   "Fehler beim Hinzufügen des Biers",
//	})
//
// Subscribers of the container must not call Apply or Resync synchronously
// from inside their callback.
package optimistic
