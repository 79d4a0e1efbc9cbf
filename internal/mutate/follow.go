package mutate

import (
	"context"
	"encoding/json"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
)

// Follow follows a user, propagating the follower count into every cached
// view that embeds it.
func (e *Engine) Follow(ctx context.Context, userID string) error {
	return e.setFollow(ctx, userID, true)
}

// Unfollow is the inverse of Follow.
func (e *Engine) Unfollow(ctx context.Context, userID string) error {
	return e.setFollow(ctx, userID, false)
}

func (e *Engine) setFollow(ctx context.Context, targetID string, follow bool) error {
	name := "follow"
	successMsg := "User followed!"
	fallbackMsg := "Failed to follow user. Please try again."
	if !follow {
		name = "unfollow"
		successMsg = "User unfollowed."
		fallbackMsg = "Failed to unfollow user. Please try again."
	}

	actingID := e.sessionUserID()

	return e.run(ctx, operation{
		name:     name,
		validate: func() error { return e.requireAuth("follow creators") },
		keys:     func() []string { return e.followKeys(targetID) },
		speculate: func() {
			e.propagateFollowChange(targetID, follow, actingID)
		},
		call: func(ctx context.Context) (json.RawMessage, error) {
			if follow {
				return e.api.Follow(ctx, targetID)
			}
			return e.api.Unfollow(ctx, targetID)
		},
		reconcile: func(raw json.RawMessage) {
			u, err := cache.DecodeResource[domain.User](raw)
			if err != nil || u.ID == "" {
				return
			}
			if err := cache.Write(e.store, cache.UserKey(targetID), u); err != nil {
				e.logger.Error("failed to reconcile profile", "userID", targetID, "error", err)
			}
		},
		settle:      func() { e.settleFollow(targetID) },
		successMsg:  successMsg,
		fallbackMsg: fallbackMsg,
	})
}

// followKeys covers every entry a follow-state change can touch: the target
// profile, the session, all list pages, and all single-vlog entries.
func (e *Engine) followKeys(targetID string) []string {
	keys := []string{cache.KeySession, cache.UserKey(targetID)}
	keys = append(keys, e.store.Keys(cache.PrefixVlog)...)
	for _, prefix := range cache.ListPrefixes() {
		keys = append(keys, e.store.Keys(prefix)...)
	}
	return keys
}

func (e *Engine) settleFollow(targetID string) {
	e.store.Invalidate(cache.UserKey(targetID))
	e.store.Invalidate(cache.KeySession)
	e.store.InvalidatePrefix(cache.PrefixVlog)
	for _, prefix := range cache.ListPrefixes() {
		e.store.InvalidatePrefix(prefix)
	}
}
