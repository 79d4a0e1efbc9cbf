package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
	"github.com/vlogdeck/vlogdeck/internal/log"
)

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	s, err := cache.NewStore("", "", log.NullLogger())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

type stubAuth struct {
	result  domain.AuthResult
	session domain.Session
	err     error
	calls   int
}

func (a *stubAuth) Login(ctx context.Context, username, password string) (domain.AuthResult, error) {
	a.calls++
	return a.result, a.err
}

func (a *stubAuth) Register(ctx context.Context, username, password string) (domain.AuthResult, error) {
	a.calls++
	return a.result, a.err
}

func (a *stubAuth) Me(ctx context.Context) (domain.Session, error) {
	a.calls++
	return a.session, a.err
}

func TestIsAuthenticated(t *testing.T) {
	store := newTestStore(t)

	m := NewManager(store, "", log.NullLogger())
	if m.IsAuthenticated() {
		t.Error("empty token must not authenticate")
	}

	m = NewManager(store, signedToken(t, time.Now().Add(time.Hour)), log.NullLogger())
	if !m.IsAuthenticated() {
		t.Error("valid token should authenticate")
	}

	m = NewManager(store, signedToken(t, time.Now().Add(-time.Hour)), log.NullLogger())
	if m.IsAuthenticated() {
		t.Error("expired token must not authenticate")
	}

	// Opaque tokens are passed through for the server to judge.
	m = NewManager(store, "not-a-jwt", log.NullLogger())
	if !m.IsAuthenticated() {
		t.Error("unparseable token should be treated as valid locally")
	}
}

func TestReturnRoute(t *testing.T) {
	m := NewManager(newTestStore(t), "", log.NullLogger())

	if got := m.ConsumeReturnRoute(); got != domain.RouteFeed {
		t.Errorf("expected feed default, got %q", got)
	}

	m.SetReturnRoute("/vlog/v1")
	if got := m.ConsumeReturnRoute(); got != "/vlog/v1" {
		t.Errorf("expected recorded route back, got %q", got)
	}
	if got := m.ConsumeReturnRoute(); got != domain.RouteFeed {
		t.Errorf("route should be consumed once, got %q", got)
	}

	// Auth routes are never recorded: returning there would loop.
	m.SetReturnRoute(domain.RouteLogin)
	if got := m.ConsumeReturnRoute(); got != domain.RouteFeed {
		t.Errorf("login route must not be recorded, got %q", got)
	}
	m.SetReturnRoute(domain.RouteRegister)
	if got := m.ConsumeReturnRoute(); got != domain.RouteFeed {
		t.Errorf("register route must not be recorded, got %q", got)
	}
}

func TestLoginInstallsSession(t *testing.T) {
	store := newTestStore(t)
	m := NewManager(store, "", log.NullLogger())

	var persisted string
	m.PersistToken = func(token string) error {
		persisted = token
		return nil
	}

	auth := &stubAuth{result: domain.AuthResult{
		Token: "fresh-token",
		Session: domain.Session{
			UserID:         "u1",
			Username:       "casey",
			Following:      []string{"u2"},
			FollowingCount: 1,
		},
	}}

	sess, err := m.Login(context.Background(), auth, "casey", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if sess.Username != "casey" {
		t.Errorf("unexpected session: %+v", sess)
	}
	if m.Token() != "fresh-token" {
		t.Errorf("token not installed, got %q", m.Token())
	}
	if persisted != "fresh-token" {
		t.Errorf("token not persisted, got %q", persisted)
	}

	cached, ok := m.Current()
	if !ok || cached.UserID != "u1" {
		t.Errorf("session not cached: %+v ok=%v", cached, ok)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	store := newTestStore(t)
	store.PutRaw(cache.VlogKey("v1"), []byte(`{"id":"v1"}`))

	m := NewManager(store, "tok", log.NullLogger())
	m.SetSession(domain.Session{UserID: "u1"})

	m.Logout()

	if m.Token() != "" {
		t.Error("expected empty token after logout")
	}
	if _, ok := m.Current(); ok {
		t.Error("expected no session after logout")
	}
	if _, ok := store.GetRaw(cache.VlogKey("v1")); ok {
		t.Error("logout must clear the whole cache")
	}
}

func TestBootstrapRefreshesSession(t *testing.T) {
	store := newTestStore(t)
	m := NewManager(store, signedToken(t, time.Now().Add(time.Hour)), log.NullLogger())

	auth := &stubAuth{session: domain.Session{UserID: "u1", Username: "casey"}}
	if err := m.Bootstrap(context.Background(), auth); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if auth.calls != 1 {
		t.Errorf("expected one Me call, got %d", auth.calls)
	}
	sess, ok := m.Current()
	if !ok || sess.Username != "casey" {
		t.Errorf("session not refreshed: %+v", sess)
	}

	// Without a credential Bootstrap is a no-op.
	m2 := NewManager(newTestStore(t), "", log.NullLogger())
	auth2 := &stubAuth{}
	if err := m2.Bootstrap(context.Background(), auth2); err != nil {
		t.Fatalf("bootstrap should no-op: %v", err)
	}
	if auth2.calls != 0 {
		t.Errorf("expected no Me call without a credential, got %d", auth2.calls)
	}
}
