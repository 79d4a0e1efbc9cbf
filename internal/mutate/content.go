package mutate

import (
	"context"
	"encoding/json"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
)

// UpdateVlog applies an edit to a vlog the session user owns.
func (e *Engine) UpdateVlog(ctx context.Context, vlogID string, update domain.VlogUpdate) error {
	return e.run(ctx, operation{
		name:     "update-vlog",
		validate: func() error { return e.requireAuth("edit vlogs") },
		keys:     func() []string { return e.vlogKeys(vlogID) },
		speculate: func() {
			e.applyToVlog(vlogID, update.Apply)
		},
		call: func(ctx context.Context) (json.RawMessage, error) {
			return e.api.UpdateVlog(ctx, vlogID, update)
		},
		reconcile:   func(raw json.RawMessage) { e.reconcileVlog(vlogID, raw) },
		settle:      func() { e.settleVlog(vlogID) },
		successMsg:  "Vlog updated!",
		fallbackMsg: "Failed to update vlog. Please try again.",
	})
}

// DeleteVlog removes a vlog: the single entry is evicted and the vlog
// disappears from every cached list page immediately.
func (e *Engine) DeleteVlog(ctx context.Context, vlogID string) error {
	return e.run(ctx, operation{
		name:     "delete-vlog",
		validate: func() error { return e.requireAuth("delete vlogs") },
		keys:     func() []string { return e.vlogKeys(vlogID) },
		speculate: func() {
			e.removeFromCache(vlogID)
		},
		call: func(ctx context.Context) (json.RawMessage, error) {
			return e.api.DeleteVlog(ctx, vlogID)
		},
		reconcile: func(json.RawMessage) {
			// The entry was already evicted speculatively; make sure a
			// racing refetch didn't resurrect it.
			e.store.Delete(cache.VlogKey(vlogID))
		},
		settle: func() {
			for _, prefix := range cache.ListPrefixes() {
				e.store.InvalidatePrefix(prefix)
			}
		},
		successMsg:  "Vlog deleted.",
		fallbackMsg: "Failed to delete vlog. Please try again.",
	})
}

func (e *Engine) removeFromCache(vlogID string) {
	e.store.Delete(cache.VlogKey(vlogID))
	page := func(p domain.FeedPage) domain.FeedPage {
		kept := make([]domain.Vlog, 0, len(p.Vlogs))
		for _, v := range p.Vlogs {
			if v.ID != vlogID {
				kept = append(kept, v)
			}
		}
		if len(kept) < len(p.Vlogs) && p.Total > 0 {
			p.Total--
		}
		p.Vlogs = kept
		return p
	}
	for _, prefix := range cache.ListPrefixes() {
		if _, err := cache.MutateMatching(e.store, prefix, page); err != nil {
			e.logger.Warn("skipped malformed list entry", "prefix", prefix, "error", err)
		}
	}
}
