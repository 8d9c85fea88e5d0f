package domain

import "errors"

var (
	// ErrTokenInvalidOrExpired is returned when the backend rejects a cached token.
	ErrTokenInvalidOrExpired = errors.New("token invalid or expired")
	// ErrNetworkFailure is returned when the backend cannot be reached. The
	// session core treats it exactly like ErrTokenInvalidOrExpired.
	ErrNetworkFailure = errors.New("backend unreachable")
	// ErrMalformedCachedState is returned when only one half of the cached
	// token/user pair is present.
	ErrMalformedCachedState = errors.New("malformed cached session state")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrInvalidUser          = errors.New("invalid user payload")
	ErrTooManyAttempts      = errors.New("too many login attempts")
)

// BackendError carries the human-readable detail message returned by the
// backend for a failed call.
type BackendError struct {
	Status int
	Detail string
	Err    error
}

func (e *BackendError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "backend request failed"
}

func (e *BackendError) Unwrap() error { return e.Err }
