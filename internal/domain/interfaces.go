package domain

import (
	"context"
	"encoding/json"
)

// AuthAPI covers the authentication endpoints.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (AuthResult, error)
	Register(ctx context.Context, username, password string) (AuthResult, error)
	Me(ctx context.Context) (Session, error)
}

// FeedAPI covers the read endpoints. Responses are returned as raw JSON so
// the cache layer can preserve the server's envelope shape on write.
type FeedAPI interface {
	Feed(ctx context.Context, page int) (json.RawMessage, error)
	Trending(ctx context.Context) (json.RawMessage, error)
	UserVlogs(ctx context.Context, userID string, page int) (json.RawMessage, error)
	Vlog(ctx context.Context, vlogID string) (json.RawMessage, error)
	User(ctx context.Context, userID string) (json.RawMessage, error)
}

// MutationAPI covers the write endpoints, one per mutation. Like and dislike
// are toggles server-side, so a duplicate in-flight click is absorbed by the
// same toggle rather than double-counted.
type MutationAPI interface {
	ToggleLike(ctx context.Context, vlogID string) (json.RawMessage, error)
	ToggleDislike(ctx context.Context, vlogID string) (json.RawMessage, error)
	AddBookmark(ctx context.Context, vlogID string) (json.RawMessage, error)
	RemoveBookmark(ctx context.Context, vlogID string) (json.RawMessage, error)
	AddComment(ctx context.Context, vlogID, text string) (json.RawMessage, error)
	DeleteComment(ctx context.Context, vlogID, commentID string) (json.RawMessage, error)
	Follow(ctx context.Context, userID string) (json.RawMessage, error)
	Unfollow(ctx context.Context, userID string) (json.RawMessage, error)
	UpdateVlog(ctx context.Context, vlogID string, update VlogUpdate) (json.RawMessage, error)
	DeleteVlog(ctx context.Context, vlogID string) (json.RawMessage, error)
	RecordView(ctx context.Context, vlogID string) (json.RawMessage, error)
	RecordShare(ctx context.Context, vlogID string) (json.RawMessage, error)
}

// Notifier surfaces user-visible notifications. Implementations must be safe
// to call from any goroutine.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// Navigator abstracts route changes so the mutation engine and the HTTP
// facade stay independent of the view layer.
type Navigator interface {
	// Current returns the route the user is on.
	Current() string

	// Navigate switches to the given route.
	Navigate(route string)
}
