// Package mutate implements the optimistic mutation engine: every
// user-initiated write action speculates a local cache change, issues one
// network call, then reconciles or rolls back, and finally invalidates the
// dependent cache entries so the UI re-synchronizes with the server either
// way.
package mutate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
	"github.com/vlogdeck/vlogdeck/internal/session"
)

// Phase is a mutation's position in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSpeculating
	PhasePending
	PhaseReconciling
	PhaseRollingBack
	PhaseSettled
)

// String returns a short identifier for logging.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseSpeculating:
		return "speculating"
	case PhasePending:
		return "pending"
	case PhaseReconciling:
		return "reconciling"
	case PhaseRollingBack:
		return "rolling-back"
	case PhaseSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// loginRedirectDelay gives the login-required notification time to render
// before navigation takes over the screen.
const loginRedirectDelay = 1500 * time.Millisecond

// Engine runs the mutation state machine against the shared cache store.
// Mutations on different resources may be in flight simultaneously; each
// snapshot/rollback pair is scoped to the keys it touches. A second
// mutation on the same resource is not queued: both race to the server and
// the last response to resolve wins the reconciling write.
type Engine struct {
	api     domain.MutationAPI
	store   *cache.Store
	session *session.Manager
	notify  domain.Notifier
	nav     domain.Navigator
	logger  *slog.Logger

	// after schedules the deferred login redirect, a seam for tests.
	after func(d time.Duration, fn func()) *time.Timer
}

// NewEngine wires the mutation engine. nav may be nil for surfaces without
// navigation (the scriptable CLI).
func NewEngine(api domain.MutationAPI, store *cache.Store, sessions *session.Manager, notifier domain.Notifier, nav domain.Navigator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		api:     api,
		store:   store,
		session: sessions,
		notify:  notifier,
		nav:     nav,
		logger:  logger,
		after:   time.AfterFunc,
	}
}

// operation describes one mutation for the phase runner.
type operation struct {
	name        string
	validate    func() error
	keys        func() []string
	speculate   func()
	call        func(ctx context.Context) (json.RawMessage, error)
	reconcile   func(raw json.RawMessage)
	settle      func()
	successMsg  string
	fallbackMsg string

	// silent suppresses notifications entirely (view/share recording).
	silent bool
}

// run drives an operation through the state machine:
//
//	Idle → Validating → Speculating → Pending → {Reconciling | RollingBack} → Settled
//
// A validation failure short-circuits before any cache write or network
// call, and skips the settle phase entirely.
func (e *Engine) run(ctx context.Context, op operation) error {
	phase := PhaseIdle

	e.transition(op.name, &phase, PhaseValidating)
	if op.validate != nil {
		if err := op.validate(); err != nil {
			return err
		}
	}

	e.transition(op.name, &phase, PhaseSpeculating)
	keys := op.keys()
	for _, key := range keys {
		// An in-flight background refetch must not clobber the speculative
		// write we are about to make.
		e.store.CancelInFlight(key)
	}
	snap := e.store.SnapshotKeys(keys...)
	if op.speculate != nil {
		op.speculate()
	}

	e.transition(op.name, &phase, PhasePending)
	raw, err := op.call(ctx)
	if err != nil {
		e.transition(op.name, &phase, PhaseRollingBack)
		e.store.Restore(snap)
		if !op.silent && !silentFailure(err) {
			e.notify.Error(domain.UserMessage(err, op.fallbackMsg))
		}
		e.settle(op, &phase)
		return err
	}

	e.transition(op.name, &phase, PhaseReconciling)
	if op.reconcile != nil {
		op.reconcile(raw)
	}
	if !op.silent && op.successMsg != "" {
		e.notify.Success(op.successMsg)
	}
	e.settle(op, &phase)
	return nil
}

func (e *Engine) settle(op operation, phase *Phase) {
	e.transition(op.name, phase, PhaseSettled)
	if op.settle != nil {
		op.settle()
	}
}

func (e *Engine) transition(name string, phase *Phase, next Phase) {
	e.logger.Debug("mutation transition", "op", name, "from", phase.String(), "to", next.String())
	*phase = next
}

// silentFailure reports whether a failure rolls back without an error
// notification: the user is being redirected to log in, or dismissed the
// share prompt themselves.
func silentFailure(err error) bool {
	return errors.Is(err, domain.ErrNotAuthenticated) || errors.Is(err, domain.ErrShareCancelled)
}

// requireAuth validates that a session is present. On failure it notifies,
// records the originating route, and schedules the login redirect after a
// short delay so the notification renders first.
func (e *Engine) requireAuth(action string) error {
	if e.session.IsAuthenticated() {
		return nil
	}
	e.notify.Info("Please log in to " + action)
	if e.nav != nil {
		origin := e.nav.Current()
		e.session.SetReturnRoute(origin)
		e.after(loginRedirectDelay, func() {
			e.nav.Navigate(domain.LoginRoute(origin))
		})
	}
	return domain.ErrNotAuthenticated
}

// === Shared cache plumbing ===

// vlogKeys returns every key a vlog mutation might touch: the single entry
// plus all cached list pages.
func (e *Engine) vlogKeys(vlogID string) []string {
	keys := []string{cache.VlogKey(vlogID)}
	for _, prefix := range cache.ListPrefixes() {
		keys = append(keys, e.store.Keys(prefix)...)
	}
	return keys
}

// applyToVlog writes the same transform into the single-vlog entry and
// every cached list page embedding the vlog.
func (e *Engine) applyToVlog(vlogID string, fn func(domain.Vlog) domain.Vlog) {
	if _, err := cache.Mutate(e.store, cache.VlogKey(vlogID), fn); err != nil {
		e.logger.Warn("skipped malformed cache entry", "key", cache.VlogKey(vlogID), "error", err)
	}
	page := func(p domain.FeedPage) domain.FeedPage {
		for i := range p.Vlogs {
			if p.Vlogs[i].ID == vlogID {
				p.Vlogs[i] = fn(p.Vlogs[i])
			}
		}
		return p
	}
	for _, prefix := range cache.ListPrefixes() {
		if _, err := cache.MutateMatching(e.store, prefix, page); err != nil {
			e.logger.Warn("skipped malformed list entry", "prefix", prefix, "error", err)
		}
	}
}

// reconcileVlog overwrites the speculative value with the authoritative
// server response where one is available; otherwise the speculative value
// stands until the settle-phase refetch.
func (e *Engine) reconcileVlog(vlogID string, raw json.RawMessage) {
	v, err := cache.DecodeResource[domain.Vlog](raw)
	if err != nil || v.ID == "" {
		return
	}
	if err := cache.Write(e.store, cache.VlogKey(vlogID), v); err != nil {
		e.logger.Error("failed to reconcile vlog", "vlogID", vlogID, "error", err)
	}
	e.applyToVlog(vlogID, func(domain.Vlog) domain.Vlog { return v })
}

// settleVlog invalidates the vlog's dependent cache entries so the next
// read re-synchronizes with the server.
func (e *Engine) settleVlog(vlogID string) {
	e.store.Invalidate(cache.VlogKey(vlogID))
	for _, prefix := range cache.ListPrefixes() {
		e.store.InvalidatePrefix(prefix)
	}
}

// cachedVlog finds the vlog's current cached value, checking the single
// entry first and falling back to list pages.
func (e *Engine) cachedVlog(vlogID string) (domain.Vlog, bool) {
	if v, ok := cache.Read[domain.Vlog](e.store, cache.VlogKey(vlogID)); ok {
		return v, true
	}
	for _, prefix := range cache.ListPrefixes() {
		for _, key := range e.store.Keys(prefix) {
			p, ok := cache.Read[domain.FeedPage](e.store, key)
			if !ok {
				continue
			}
			for _, v := range p.Vlogs {
				if v.ID == vlogID {
					return v, true
				}
			}
		}
	}
	return domain.Vlog{}, false
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
