// Package tui implements the terminal interface: a feed browser with
// vlog detail and profile views, driven by the optimistic mutation
// engine so every action lands on screen before the server replies.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/vlogdeck/vlogdeck/internal/domain"
	"github.com/vlogdeck/vlogdeck/internal/feed"
	"github.com/vlogdeck/vlogdeck/internal/mutate"
	"github.com/vlogdeck/vlogdeck/internal/notify"
	"github.com/vlogdeck/vlogdeck/internal/session"
	"github.com/vlogdeck/vlogdeck/internal/tui/styles"
)

type viewKind int

const (
	viewFeed viewKind = iota
	viewVlog
	viewProfile
	viewLogin
)

type inputMode int

const (
	inputNone inputMode = iota
	inputComment
	inputFilter
)

// App is the root bubbletea model.
type App struct {
	keys   KeyMap
	theme  styles.Theme
	width  int
	height int

	feedSvc  *feed.Service
	engine   *mutate.Engine
	sessions *session.Manager
	auth     domain.AuthAPI
	router   *Router
	toasts   *notify.ChannelNotifier
	logger   *slog.Logger

	view     viewKind
	page     domain.FeedPage
	pageNum  int
	trending bool
	cursor   int

	vlog         domain.Vlog
	profile      domain.User
	profileVlogs domain.FeedPage

	login loginForm

	input    textinput.Model
	mode     inputMode
	filtered []domain.Vlog

	pending bool
	loading bool
	toast   *notify.Notification
}

// NewApp wires the root model.
func NewApp(feedSvc *feed.Service, engine *mutate.Engine, sessions *session.Manager, auth domain.AuthAPI, router *Router, toasts *notify.ChannelNotifier, theme string, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	input := textinput.New()
	input.CharLimit = 500
	return &App{
		keys:     DefaultKeyMap(),
		theme:    styles.New(theme),
		feedSvc:  feedSvc,
		engine:   engine,
		sessions: sessions,
		auth:     auth,
		router:   router,
		toasts:   toasts,
		logger:   logger,
		pageNum:  1,
		login:    newLoginForm(),
		input:    input,
		loading:  true,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		LoadFeedCmd(a.feedSvc, 1),
		ListenNotificationsCmd(a.toasts),
		ListenNavCmd(a.router),
		textinput.Blink,
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case NavigateMsg:
		return a, a.applyRoute(msg.Route)

	case FeedLoadedMsg:
		a.loading = false
		a.page = msg.Page
		a.trending = msg.Trending
		if !msg.Trending {
			a.pageNum = msg.PageNum
		}
		a.clampCursor(len(a.page.Vlogs))
		return a, nil

	case UserVlogsLoadedMsg:
		a.profileVlogs = msg.Page
		return a, nil

	case VlogLoadedMsg:
		a.loading = false
		a.vlog = msg.Vlog
		return a, nil

	case ProfileLoadedMsg:
		a.loading = false
		a.profile = msg.User
		return a, nil

	case MutationDoneMsg:
		a.pending = false
		return a, a.reloadAfterMutation(msg)

	case LoginResultMsg:
		a.login.busy = false
		if msg.Err != nil {
			a.login.errText = domain.UserMessage(msg.Err, "Login failed. Please try again.")
			return a, nil
		}
		a.login = newLoginForm()
		return a, a.applyRoute(a.sessions.ConsumeReturnRoute())

	case LoggedOutMsg:
		a.toast = &notify.Notification{Level: notify.LevelInfo, Message: "Logged out.", At: time.Now()}
		return a, tea.Batch(a.applyRoute(domain.RouteFeed), ClearToastCmd())

	case NotificationMsg:
		n := msg.Notification
		a.toast = &n
		return a, tea.Batch(ListenNotificationsCmd(a.toasts), ClearToastCmd())

	case ClearToastMsg:
		a.toast = nil
		return a, nil

	case ErrMsg:
		a.loading = false
		a.toast = &notify.Notification{Level: notify.LevelError, Message: domain.UserMessage(msg.Err, msg.Error()), At: time.Now()}
		return a, ClearToastCmd()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.view == viewLogin {
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg)
		return a, cmd
	}
	if a.mode != inputNone {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) && a.mode == inputNone && a.view != viewLogin {
		return a, tea.Quit
	}

	if a.view == viewLogin {
		return a.handleLoginKey(msg)
	}
	if a.mode != inputNone {
		return a.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, a.keys.Enter):
		if v, ok := a.selectedVlog(); ok && a.view != viewVlog {
			return a, a.applyRoute(domain.RouteVlog + "/" + v.ID)
		}
	case key.Matches(msg, a.keys.Back):
		return a, a.applyRoute(domain.RouteFeed)
	case key.Matches(msg, a.keys.Feed):
		return a, a.applyRoute(domain.RouteFeed)
	case key.Matches(msg, a.keys.Trending):
		return a, a.applyRoute(domain.RouteTrending)
	case key.Matches(msg, a.keys.NextPage):
		if a.view == viewFeed && !a.trending && a.page.HasMore {
			a.loading = true
			return a, LoadFeedCmd(a.feedSvc, a.pageNum+1)
		}
	case key.Matches(msg, a.keys.PrevPage):
		if a.view == viewFeed && !a.trending && a.pageNum > 1 {
			a.loading = true
			return a, LoadFeedCmd(a.feedSvc, a.pageNum-1)
		}
	case key.Matches(msg, a.keys.Refresh):
		return a, a.refreshCurrent()
	case key.Matches(msg, a.keys.Search):
		if a.view == viewFeed {
			a.mode = inputFilter
			a.input.Placeholder = "search cached vlogs"
			a.input.SetValue("")
			a.input.Focus()
		}
	case key.Matches(msg, a.keys.Profile):
		if v, ok := a.selectedVlog(); ok && v.Author.ID != "" {
			return a, a.applyRoute(domain.RouteProfile + "/" + v.Author.ID)
		}
	case key.Matches(msg, a.keys.Comment):
		if a.view == viewVlog && !a.pending {
			a.mode = inputComment
			a.input.Placeholder = "write a comment"
			a.input.SetValue("")
			a.input.Focus()
		}
	default:
		return a, a.handleActionKey(msg)
	}
	return a, nil
}

// handleActionKey dispatches optimistic mutations. While one is in
// flight the action keys are inert so the user cannot double-toggle.
func (a *App) handleActionKey(msg tea.KeyMsg) tea.Cmd {
	if a.pending {
		return nil
	}
	v, ok := a.selectedVlog()

	switch {
	case key.Matches(msg, a.keys.Like) && ok:
		return a.mutation("like", v.ID, func(ctx context.Context) error {
			return a.engine.ToggleLike(ctx, v.ID)
		})
	case key.Matches(msg, a.keys.Dislike) && ok:
		return a.mutation("dislike", v.ID, func(ctx context.Context) error {
			return a.engine.ToggleDislike(ctx, v.ID)
		})
	case key.Matches(msg, a.keys.Bookmark) && ok:
		return a.mutation("bookmark", v.ID, func(ctx context.Context) error {
			return a.engine.ToggleBookmark(ctx, v.ID)
		})
	case key.Matches(msg, a.keys.Share) && ok:
		return a.mutation("share", v.ID, func(ctx context.Context) error {
			return a.engine.Share(ctx, v.ID, nil)
		})
	case key.Matches(msg, a.keys.Follow):
		if id := a.targetUserID(v, ok); id != "" {
			return a.mutation("follow", "", func(ctx context.Context) error {
				return a.engine.Follow(ctx, id)
			})
		}
	case key.Matches(msg, a.keys.Unfollow):
		if id := a.targetUserID(v, ok); id != "" {
			return a.mutation("unfollow", "", func(ctx context.Context) error {
				return a.engine.Unfollow(ctx, id)
			})
		}
	}
	return nil
}

func (a *App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		a.login = a.login.cycleFocus()
		return a, nil
	case "ctrl+r":
		a.login.register = !a.login.register
		return a, nil
	case "esc":
		return a, a.applyRoute(domain.RouteFeed)
	case "enter":
		if !a.login.ready() {
			return a, nil
		}
		user, pass := a.login.values()
		a.login.busy = true
		a.login.errText = ""
		return a, LoginCmd(a.sessions, a.auth, user, pass, a.login.register)
	}
	var cmd tea.Cmd
	a.login, cmd = a.login.update(msg)
	return a, cmd
}

func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = inputNone
		a.filtered = nil
		a.input.Blur()
		return a, nil
	case "enter":
		text := a.input.Value()
		mode := a.mode
		a.mode = inputNone
		a.input.Blur()
		switch mode {
		case inputComment:
			vlogID := a.vlog.ID
			return a, a.mutation("comment", vlogID, func(ctx context.Context) error {
				return a.engine.AddComment(ctx, vlogID, text)
			})
		case inputFilter:
			a.filtered = a.feedSvc.Search(text)
			a.cursor = 0
			return a, nil
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if a.mode == inputFilter {
		a.filtered = a.filterLoaded(a.input.Value())
		a.cursor = 0
	}
	return a, cmd
}

// filterLoaded narrows the currently loaded page as the user types,
// before enter widens the search to the whole cache.
func (a *App) filterLoaded(query string) []domain.Vlog {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	titles := make([]string, len(a.page.Vlogs))
	for i, v := range a.page.Vlogs {
		titles[i] = v.Title
	}
	var out []domain.Vlog
	for _, m := range fuzzy.Find(query, titles) {
		out = append(out, a.page.Vlogs[m.Index])
	}
	return out
}

func (a *App) mutation(action, vlogID string, fn func(ctx context.Context) error) tea.Cmd {
	a.pending = true
	return MutateCmd(action, vlogID, fn)
}

// reloadAfterMutation refreshes the visible view from the cache, which
// the engine has already rewritten (speculation or reconciliation).
func (a *App) reloadAfterMutation(msg MutationDoneMsg) tea.Cmd {
	switch a.view {
	case viewVlog:
		vlogID := a.vlog.ID
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			v, err := a.feedSvc.Vlog(ctx, vlogID)
			if err != nil {
				return ErrMsg{Err: err, Context: "reloading vlog"}
			}
			return VlogLoadedMsg{Vlog: v}
		}
	case viewProfile:
		return LoadProfileCmd(a.feedSvc, a.profile.ID)
	case viewFeed:
		if a.trending {
			return LoadTrendingCmd(a.feedSvc)
		}
		return LoadFeedCmd(a.feedSvc, a.pageNum)
	}
	return nil
}

func (a *App) refreshCurrent() tea.Cmd {
	a.loading = true
	switch a.view {
	case viewVlog:
		return LoadVlogCmd(a.feedSvc, a.engine, a.vlog.ID)
	case viewProfile:
		return tea.Batch(LoadProfileCmd(a.feedSvc, a.profile.ID), LoadUserVlogsCmd(a.feedSvc, a.profile.ID, 1))
	default:
		if a.trending {
			return LoadTrendingCmd(a.feedSvc)
		}
		return LoadFeedCmd(a.feedSvc, a.pageNum)
	}
}

// applyRoute switches views based on a route path and kicks off the
// loads the new view needs.
func (a *App) applyRoute(route string) tea.Cmd {
	a.router.SetCurrent(route)
	a.mode = inputNone
	a.filtered = nil
	segs := splitRoute(route)

	switch {
	case len(segs) == 0 || segs[0] == "feed":
		a.view = viewFeed
		a.trending = false
		a.loading = true
		return tea.Batch(LoadFeedCmd(a.feedSvc, a.pageNum), ListenNavCmd(a.router))
	case segs[0] == "trending":
		a.view = viewFeed
		a.trending = true
		a.loading = true
		return tea.Batch(LoadTrendingCmd(a.feedSvc), ListenNavCmd(a.router))
	case segs[0] == "login" || segs[0] == "register":
		a.view = viewLogin
		a.login = newLoginForm()
		a.login.register = segs[0] == "register"
		return ListenNavCmd(a.router)
	case segs[0] == "vlog" && len(segs) > 1:
		a.view = viewVlog
		a.loading = true
		return tea.Batch(LoadVlogCmd(a.feedSvc, a.engine, segs[1]), ListenNavCmd(a.router))
	case segs[0] == "profile" && len(segs) > 1:
		a.view = viewProfile
		a.loading = true
		return tea.Batch(
			LoadProfileCmd(a.feedSvc, segs[1]),
			LoadUserVlogsCmd(a.feedSvc, segs[1], 1),
			ListenNavCmd(a.router),
		)
	}
	return ListenNavCmd(a.router)
}

func (a *App) selectedVlog() (domain.Vlog, bool) {
	switch a.view {
	case viewVlog:
		if a.vlog.ID != "" {
			return a.vlog, true
		}
	case viewFeed:
		list := a.visibleVlogs()
		if a.cursor >= 0 && a.cursor < len(list) {
			return list[a.cursor], true
		}
	case viewProfile:
		if a.cursor >= 0 && a.cursor < len(a.profileVlogs.Vlogs) {
			return a.profileVlogs.Vlogs[a.cursor], true
		}
	}
	return domain.Vlog{}, false
}

func (a *App) targetUserID(v domain.Vlog, ok bool) string {
	if a.view == viewProfile {
		return a.profile.ID
	}
	if ok {
		return v.Author.ID
	}
	return ""
}

func (a *App) visibleVlogs() []domain.Vlog {
	if a.filtered != nil {
		return a.filtered
	}
	return a.page.Vlogs
}

func (a *App) moveCursor(delta int) {
	var n int
	switch a.view {
	case viewFeed:
		n = len(a.visibleVlogs())
	case viewProfile:
		n = len(a.profileVlogs.Vlogs)
	default:
		return
	}
	a.cursor += delta
	a.clampCursor(n)
}

func (a *App) clampCursor(n int) {
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *App) sessionLine() string {
	if sess, ok := a.sessions.Current(); ok && a.sessions.IsAuthenticated() {
		return fmt.Sprintf("@%s · following %d", sess.Username, sess.FollowingCount)
	}
	return "not signed in"
}
