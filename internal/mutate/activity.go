package mutate

import (
	"context"
	"encoding/json"

	"github.com/vlogdeck/vlogdeck/internal/domain"
)

// RecordView bumps a vlog's view count. Views are recorded for anonymous
// users too, and never produce notifications in either direction.
func (e *Engine) RecordView(ctx context.Context, vlogID string) error {
	return e.run(ctx, operation{
		name: "view",
		keys: func() []string { return e.vlogKeys(vlogID) },
		speculate: func() {
			e.applyToVlog(vlogID, func(v domain.Vlog) domain.Vlog {
				v.Views++
				return v
			})
		},
		call: func(ctx context.Context) (json.RawMessage, error) {
			return e.api.RecordView(ctx, vlogID)
		},
		reconcile: func(raw json.RawMessage) { e.reconcileVlog(vlogID, raw) },
		settle:    func() { e.settleVlog(vlogID) },
		silent:    true,
	})
}

// Share presents the share surface (clipboard copy, native dialog) and
// records the share when it completes. A present func returning
// domain.ErrShareCancelled rolls back silently: the user changed their
// mind, that is not an error.
func (e *Engine) Share(ctx context.Context, vlogID string, present func() error) error {
	return e.run(ctx, operation{
		name: "share",
		keys: func() []string { return e.vlogKeys(vlogID) },
		speculate: func() {
			e.applyToVlog(vlogID, func(v domain.Vlog) domain.Vlog {
				v.Shares++
				return v
			})
		},
		call: func(ctx context.Context) (json.RawMessage, error) {
			if present != nil {
				if err := present(); err != nil {
					return nil, err
				}
			}
			return e.api.RecordShare(ctx, vlogID)
		},
		reconcile:   func(raw json.RawMessage) { e.reconcileVlog(vlogID, raw) },
		settle:      func() { e.settleVlog(vlogID) },
		successMsg:  "Vlog shared!",
		fallbackMsg: "Failed to share vlog. Please try again.",
	})
}
