package optimistic

import "fmt"

// MutationError is returned by Apply when the remote call failed. The
// container has already been resynchronized when the caller sees it.
type MutationError struct {
	Action string
	Key    string
	Err    error
}

func (e *MutationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("optimistic: %s: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("optimistic: %s %s: %v", e.Action, e.Key, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }
