package tui

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vlogdeck/vlogdeck/internal/domain"
)

// Router tracks the current route and feeds programmatic navigation
// requests (auth-expiry redirects, post-login returns) into the update
// loop. It satisfies domain.Navigator.
type Router struct {
	mu      sync.Mutex
	current string
	ch      chan string
}

// NewRouter creates a router starting at the given route.
func NewRouter(start string) *Router {
	return &Router{current: start, ch: make(chan string, 8)}
}

// Current returns the route being displayed.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate requests a route change. It never blocks; if the channel is
// full the request is dropped, the user can navigate manually.
func (r *Router) Navigate(route string) {
	select {
	case r.ch <- route:
	default:
	}
}

// SetCurrent records the displayed route after the app applies a change.
func (r *Router) SetCurrent(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = route
}

var _ domain.Navigator = (*Router)(nil)

// ListenNavCmd waits for the next programmatic navigation request.
func ListenNavCmd(r *Router) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: <-r.ch}
	}
}

// splitRoute returns the route's path segments, e.g. "/vlog/v1" becomes
// ["vlog", "v1"]. Query strings are dropped.
func splitRoute(route string) []string {
	if i := strings.IndexByte(route, '?'); i >= 0 {
		route = route[:i]
	}
	route = strings.Trim(route, "/")
	if route == "" {
		return nil
	}
	return strings.Split(route, "/")
}
