// Package club holds the client-side state of the club: the beer roster,
// matches and standings, tournaments, statistics and settings.
//
// Each type owns one store.Store and exposes it read-only. Writes go
// through the methods here, which talk to the service via pkg/api and
// report results through a Notifier (usually a *toast.Center). The beer
// roster is mutated optimistically through pkg/optimistic; everything else
// waits for the service.
//
// Load failures are shown once and logged; the returned error lets compound
// flows (SaveMatch, SaveTournament) stop before dependent steps run.
package club
