package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
)

// Manager owns the credential lifecycle and the cached Session entry. The
// session itself lives in the cache store like every other server-derived
// value, so follow mutations can update it through the same write path.
type Manager struct {
	store  *cache.Store
	logger *slog.Logger

	// PersistToken saves the credential across restarts (the config layer
	// in production). Nil disables persistence, which is what tests use.
	PersistToken func(token string) error

	mu          sync.RWMutex
	token       string
	returnRoute string
}

// NewManager creates a session manager seeded with a previously persisted
// token (empty when logged out).
func NewManager(store *cache.Store, token string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger, token: token}
}

// Token returns the current bearer credential, or "" when unauthenticated.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// SetToken stores and persists a new credential.
func (m *Manager) SetToken(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	if m.PersistToken != nil {
		if err := m.PersistToken(token); err != nil {
			m.logger.Error("failed to persist token", "error", err)
		}
	}
}

// Clear drops the credential and the cached session entry. Called on logout
// and on auth-expired responses.
func (m *Manager) Clear() {
	m.SetToken("")
	m.store.Delete(cache.KeySession)
}

// IsAuthenticated reports whether a usable credential is present.
func (m *Manager) IsAuthenticated() bool {
	token := m.Token()
	return token != "" && !tokenExpired(token)
}

// tokenExpired checks the token's exp claim locally. The check is advisory;
// the server is the authority and a token we cannot parse is passed through
// for the server to judge.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(time.Now())
}

// Current returns the cached session identity.
func (m *Manager) Current() (domain.Session, bool) {
	return cache.Read[domain.Session](m.store, cache.KeySession)
}

// SetSession writes the session identity into the cache.
func (m *Manager) SetSession(s domain.Session) {
	if err := cache.Write(m.store, cache.KeySession, s); err != nil {
		m.logger.Error("failed to cache session", "error", err)
	}
}

// SetReturnRoute records where the user was when authentication was
// demanded, so login can send them back. Login and register routes are
// never recorded.
func (m *Manager) SetReturnRoute(route string) {
	if domain.IsAuthRoute(route) {
		return
	}
	m.mu.Lock()
	m.returnRoute = route
	m.mu.Unlock()
}

// ConsumeReturnRoute returns and clears the recorded route, defaulting to
// the feed.
func (m *Manager) ConsumeReturnRoute() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	route := m.returnRoute
	m.returnRoute = ""
	if route == "" {
		return domain.RouteFeed
	}
	return route
}

// Login authenticates and installs the resulting session.
func (m *Manager) Login(ctx context.Context, auth domain.AuthAPI, username, password string) (domain.Session, error) {
	result, err := auth.Login(ctx, username, password)
	if err != nil {
		return domain.Session{}, err
	}
	m.SetToken(result.Token)
	m.SetSession(result.Session)
	m.logger.Info("logged in", "username", result.Session.Username)
	return result.Session, nil
}

// Register creates an account and installs the resulting session.
func (m *Manager) Register(ctx context.Context, auth domain.AuthAPI, username, password string) (domain.Session, error) {
	result, err := auth.Register(ctx, username, password)
	if err != nil {
		return domain.Session{}, err
	}
	m.SetToken(result.Token)
	m.SetSession(result.Session)
	m.logger.Info("registered", "username", result.Session.Username)
	return result.Session, nil
}

// Bootstrap refreshes the cached session from the server when a persisted
// credential is present.
func (m *Manager) Bootstrap(ctx context.Context, auth domain.AuthAPI) error {
	if !m.IsAuthenticated() {
		return nil
	}
	sess, err := auth.Me(ctx)
	if err != nil {
		return err
	}
	m.SetSession(sess)
	return nil
}

// Logout clears the credential and every cached entry.
func (m *Manager) Logout() {
	m.Clear()
	m.store.Clear()
	m.logger.Info("logged out")
}
