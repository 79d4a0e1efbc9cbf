package domain

import "errors"

// Sentinel errors for client-side failure paths
var (
	// ErrNotAuthenticated indicates a mutation requires a logged-in session.
	// Rollback for this error is silent; the caller redirects to login.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrShareCancelled indicates the user dismissed the share prompt.
	// Rollback is silent and no error notification is shown.
	ErrShareCancelled = errors.New("share cancelled")

	// ErrVlogNotFound indicates the requested vlog does not exist
	ErrVlogNotFound = errors.New("vlog not found")

	// ErrUserNotFound indicates the requested user does not exist
	ErrUserNotFound = errors.New("user not found")
)

// ErrorKind classifies API failures by HTTP status.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindInvalidInput
	KindAuthExpired
	KindForbidden
	KindNotFound
	KindRateLimited
	KindServer
)

// String returns a short identifier for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindInvalidInput:
		return "invalid-input"
	case KindAuthExpired:
		return "auth-expired"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not-found"
	case KindRateLimited:
		return "rate-limited"
	case KindServer:
		return "server-error"
	default:
		return "unknown"
	}
}

// APIError is a normalized server or transport failure. Message is always
// user-facing: either the server-provided error text or a per-status default.
type APIError struct {
	Status  int
	Kind    ErrorKind
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// ValidationError is a local precondition failure. No network call is made
// and no cache write occurs when one is raised.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UserMessage extracts a user-facing message from err, falling back to
// fallback for errors that don't carry one.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	return fallback
}
