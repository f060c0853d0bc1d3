// Package auth keeps the bearer token and the client's authentication state.
//
// A TokenStore persists the token between runs (MemoryTokens for tests,
// FileTokens for the CLI). A Session wraps a TokenStore together with a
// store.Store[State] so views can react to login and logout:
//
//	sess := auth.NewSession(auth.NewFileTokens(path))
//	sess.Initialize()
//	if !sess.State().Authenticated {
//	    // prompt for credentials
//	}
//
// The gateway removes the token on its own when the service answers 401.
// Session.Logout clears both the token and the state.
package auth
