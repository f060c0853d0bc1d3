// Package errors provides coded, actionable errors for the kickers command.
//
// Library packages under pkg/ report plain Go errors. The command line and the
// configuration loader wrap them in an *Error so the user sees what failed,
// why, and what to try next.
//
// # Error Codes
//
// Each code maps to a registered template:
//   - K1xx: configuration
//   - K2xx: remote service
//   - K3xx: offline cache
//   - K4xx: command usage
//
// # Usage
//
//	err := errors.New("K101").
//	    WithDetail("line 3: expected '='").
//	    Wrap(parseErr)
//
//	errors.Print(os.Stderr, err)
//	// ERROR K101: Configuration file is invalid
//	//
//	//   line 3: expected '='
package errors
