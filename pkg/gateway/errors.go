package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway failure.
type Kind int

const (
	// KindTransport means no response reached the client.
	KindTransport Kind = iota + 1

	// KindServer means the service answered with an error status.
	KindServer

	// KindDecode means the service answered 2xx with a body that could not
	// be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// User-facing fallback messages.
const (
	MsgNoResponse = "Keine Antwort vom Server. Bitte überprüfen Sie Ihre Internetverbindung."
	MsgUnknown    = "Ein unbekannter Fehler ist aufgetreten"
)

// Error is the normalized gateway failure. Message is safe to show to users.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway: %s error (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("gateway: %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthenticated reports whether the service rejected the credentials.
func (e *Error) Unauthenticated() bool {
	return e.Kind == KindServer && e.Status == http.StatusUnauthorized
}

// Message extracts the user-facing message from err, falling back to the
// error text and then to fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var gerr *Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
