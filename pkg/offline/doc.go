// Package offline is a versioned, stale-while-revalidate cache that sits in
// front of a static origin.
//
// A Worker owns one cache generation, named after the deployed version:
//
//	Install   fetch every manifest resource; all succeed or the generation
//	          is not used
//	Activate  delete every other generation, then take over
//	Fetch     answer GET requests from the cache while refreshing the entry
//	          from the network in the background
//
// API traffic (paths containing "/v1/" by default) and non-GET requests go
// straight to the network.
//
// A Scope holds the worker currently in control. Registering a new worker
// installs and activates it; if the install fails the previous worker keeps
// serving.
//
//	scope := offline.NewScope(offline.NewMemoryStorage())
//	w, _ := offline.NewWorker(storage, "2025.06.1", manifest, offline.WithOrigin("http://localhost:5173"))
//	if err := scope.Register(ctx, w); err != nil {
//	    log.Printf("install failed, still on %s", scope.Controller().Version())
//	}
//	http.ListenAndServe(":8080", scope)
//
// Generations live in a Storage: MemoryStorage, BoltStorage (a bbolt file,
// one bolt bucket per generation) or S3Storage (one key prefix per
// generation).
package offline
