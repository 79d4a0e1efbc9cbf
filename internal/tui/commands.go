package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vlogdeck/vlogdeck/internal/domain"
	"github.com/vlogdeck/vlogdeck/internal/feed"
	"github.com/vlogdeck/vlogdeck/internal/mutate"
	"github.com/vlogdeck/vlogdeck/internal/notify"
	"github.com/vlogdeck/vlogdeck/internal/session"
)

// Command factories for async operations

const toastLifetime = 3 * time.Second

// LoadFeedCmd loads one page of the home feed
func LoadFeedCmd(svc *feed.Service, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		p, err := svc.HomeFeed(ctx, page)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading feed"}
		}
		return FeedLoadedMsg{Page: p, PageNum: page}
	}
}

// LoadTrendingCmd loads the trending list
func LoadTrendingCmd(svc *feed.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		p, err := svc.Trending(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading trending"}
		}
		return FeedLoadedMsg{Page: p, Trending: true}
	}
}

// LoadUserVlogsCmd loads one page of a user's vlogs
func LoadUserVlogsCmd(svc *feed.Service, userID string, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		p, err := svc.UserVlogs(ctx, userID, page)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading vlogs"}
		}
		return UserVlogsLoadedMsg{Page: p, UserID: userID, PageNum: page}
	}
}

// LoadVlogCmd loads a single vlog and records the view
func LoadVlogCmd(svc *feed.Service, eng *mutate.Engine, vlogID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		v, err := svc.Vlog(ctx, vlogID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading vlog"}
		}
		// view tracking is fire-and-forget; failures roll back silently
		go eng.RecordView(context.Background(), vlogID)
		return VlogLoadedMsg{Vlog: v}
	}
}

// LoadProfileCmd loads a user profile
func LoadProfileCmd(svc *feed.Service, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		u, err := svc.Profile(ctx, userID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading profile"}
		}
		return ProfileLoadedMsg{User: u}
	}
}

// MutateCmd runs one optimistic mutation. Errors surface through the
// notifier, so MutationDoneMsg only carries them for state bookkeeping.
func MutateCmd(action, vlogID string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := fn(ctx)
		return MutationDoneMsg{Action: action, VlogID: vlogID, Err: err}
	}
}

// LoginCmd attempts a login or registration
func LoginCmd(mgr *session.Manager, auth domain.AuthAPI, username, password string, register bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var (
			sess domain.Session
			err  error
		)
		if register {
			sess, err = mgr.Register(ctx, auth, username, password)
		} else {
			sess, err = mgr.Login(ctx, auth, username, password)
		}
		return LoginResultMsg{Session: sess, Err: err}
	}
}

// LogoutCmd clears the session and the cache
func LogoutCmd(mgr *session.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Logout()
		return LoggedOutMsg{}
	}
}

// ListenNotificationsCmd waits for the next toast from the notifier
func ListenNotificationsCmd(ch *notify.ChannelNotifier) tea.Cmd {
	return func() tea.Msg {
		return NotificationMsg{Notification: <-ch.C()}
	}
}

// ClearToastCmd clears the toast bar after its lifetime
func ClearToastCmd() tea.Cmd {
	return tea.Tick(toastLifetime, func(time.Time) tea.Msg {
		return ClearToastMsg{}
	})
}
