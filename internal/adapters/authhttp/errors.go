package authhttp

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCredentialRefresh is matched by every *CredentialRefreshError.
	ErrCredentialRefresh = errors.New("credential refresh failed")
	// ErrMissingAccessToken means the token endpoint answered 2xx without an access_token.
	ErrMissingAccessToken = errors.New("token response has no access_token")
)

// HTTPError is a non-2xx response from the remote API.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

func (e *HTTPError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *HTTPError) IsServerError() bool {
	return e.StatusCode >= 500
}

// CredentialRefreshError is returned when a 403 could not be recovered
// because the token exchange failed. Both the exchange failure and the
// original 403 stay reachable through errors.Is and errors.As.
type CredentialRefreshError struct {
	Cause    error
	Original *HTTPError
}

func (e *CredentialRefreshError) Error() string {
	return fmt.Sprintf("%v: %v (original request: %v)", ErrCredentialRefresh, e.Cause, e.Original)
}

func (e *CredentialRefreshError) Unwrap() []error {
	// Original comes first so errors.As finds the 403, not a failed token response.
	errs := []error{ErrCredentialRefresh}
	if e.Original != nil {
		errs = append(errs, e.Original)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// IsForbidden reports whether err carries a 403 from the remote API.
func IsForbidden(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.IsForbidden()
}

// IsNotFound reports whether err carries a 404 from the remote API.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.IsNotFound()
}
