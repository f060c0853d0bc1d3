// Package gateway is the client's single door to the club service.
//
// Client executes JSON requests against the service base URL, injects the
// bearer token from an auth.TokenStore, propagates the trace context and
// normalizes every failure into *Error:
//
//	gw := gateway.New("https://api.example.com", tokens,
//	    gateway.WithUnauthenticated(func() { showLogin() }),
//	)
//	var users []api.User
//	if err := gw.Get(ctx, "/v1/user?active=true", &users); err != nil {
//	    var gerr *gateway.Error
//	    errors.As(err, &gerr) // gerr.Message is user-facing
//	}
//
// A 401 answer removes the stored token and fires the unauthenticated
// callback before the error is returned. The gateway does not retry and
// imposes no timeout of its own beyond the http.Client it is given.
package gateway
