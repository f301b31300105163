package dashboard

import "errors"

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrFieldAlreadyFiltered = errors.New("field already has a filter")
	// ErrStaleResult means a newer query started while this fetch was in flight.
	ErrStaleResult = errors.New("result superseded by a newer query")
	// ErrFetchFailed is the single user-facing failure for upstream errors.
	ErrFetchFailed = errors.New("something went wrong, try again")
)

// FetchError wraps an upstream failure. Its message is the generic
// ErrFetchFailed text; the cause stays reachable through errors.Is/As.
type FetchError struct {
	Cause error
}

func (e *FetchError) Error() string {
	return ErrFetchFailed.Error()
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Cause}
}
