package collector

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is wrapped in a FetchError when a report page still
// redirects to the landing page after the session was re-established.
var ErrSessionExpired = errors.New("session expired")

// AuthError reports a failed session bootstrap. Retrying the bootstrap may succeed.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("efd auth: %s: %v", e.Reason, e.Err)
	}
	return "efd auth: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a transport failure or a non-200 response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("efd fetch %s: status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("efd fetch %s: %v", e.URL, e.Err)
	default:
		return "efd fetch " + e.URL
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a malformed index or report row. The row is skipped.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }
