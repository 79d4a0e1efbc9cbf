package tui

import (
	"github.com/vlogdeck/vlogdeck/internal/domain"
	"github.com/vlogdeck/vlogdeck/internal/notify"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// FeedLoadedMsg signals that a feed page has been loaded
type FeedLoadedMsg struct {
	Page     domain.FeedPage
	PageNum  int
	Trending bool
}

// UserVlogsLoadedMsg signals that a user's vlogs have been loaded
type UserVlogsLoadedMsg struct {
	Page    domain.FeedPage
	UserID  string
	PageNum int
}

// VlogLoadedMsg signals that a single vlog has been loaded
type VlogLoadedMsg struct {
	Vlog domain.Vlog
}

// ProfileLoadedMsg signals that a user profile has been loaded
type ProfileLoadedMsg struct {
	User domain.User
}

// MutationDoneMsg signals that an optimistic mutation has settled
type MutationDoneMsg struct {
	Action string
	VlogID string
	Err    error
}

// LoginResultMsg signals the outcome of a login or register attempt
type LoginResultMsg struct {
	Session domain.Session
	Err     error
}

// LoggedOutMsg signals that the session was cleared
type LoggedOutMsg struct{}

// NotificationMsg carries a toast from the notifier channel
type NotificationMsg struct {
	Notification notify.Notification
}

// ClearToastMsg clears the toast bar
type ClearToastMsg struct{}

// NavigateMsg requests a route change (also emitted by the auth-expiry
// redirect through the router)
type NavigateMsg struct {
	Route string
}

// TickMsg is a general tick message for animations
type TickMsg struct{}
