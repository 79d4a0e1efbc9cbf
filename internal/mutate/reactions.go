package mutate

import (
	"context"
	"encoding/json"

	"github.com/vlogdeck/vlogdeck/internal/domain"
)

// ToggleLike toggles the session user's like on a vlog. Joining the like
// set removes any standing dislike in the same write, so an id is never in
// both sets at once.
func (e *Engine) ToggleLike(ctx context.Context, vlogID string) error {
	userID := e.sessionUserID()
	successMsg := "Vlog liked!"
	if v, ok := e.cachedVlog(vlogID); ok && v.LikedBy(userID) {
		successMsg = "Like removed."
	}

	return e.run(ctx, operation{
		name:     "like",
		validate: func() error { return e.requireAuth("like vlogs") },
		keys:     func() []string { return e.vlogKeys(vlogID) },
		speculate: func() {
			e.applyToVlog(vlogID, func(v domain.Vlog) domain.Vlog {
				return toggleLike(v, userID)
			})
		},
		call: func(ctx context.Context) (json.RawMessage, error) {
			return e.api.ToggleLike(ctx, vlogID)
		},
		reconcile:   func(raw json.RawMessage) { e.reconcileVlog(vlogID, raw) },
		settle:      func() { e.settleVlog(vlogID) },
		successMsg:  successMsg,
		fallbackMsg: "Failed to like vlog. Please try again.",
	})
}

// ToggleDislike is the symmetric toggle on the dislike set.
func (e *Engine) ToggleDislike(ctx context.Context, vlogID string) error {
	userID := e.sessionUserID()
	successMsg := "Vlog disliked."
	if v, ok := e.cachedVlog(vlogID); ok && v.DislikedBy(userID) {
		successMsg = "Dislike removed."
	}

	return e.run(ctx, operation{
		name:     "dislike",
		validate: func() error { return e.requireAuth("rate vlogs") },
		keys:     func() []string { return e.vlogKeys(vlogID) },
		speculate: func() {
			e.applyToVlog(vlogID, func(v domain.Vlog) domain.Vlog {
				return toggleDislike(v, userID)
			})
		},
		call: func(ctx context.Context) (json.RawMessage, error) {
			return e.api.ToggleDislike(ctx, vlogID)
		},
		reconcile:   func(raw json.RawMessage) { e.reconcileVlog(vlogID, raw) },
		settle:      func() { e.settleVlog(vlogID) },
		successMsg:  successMsg,
		fallbackMsg: "Failed to dislike vlog. Please try again.",
	})
}

// ToggleBookmark flips the bookmark flag for the session user.
func (e *Engine) ToggleBookmark(ctx context.Context, vlogID string) error {
	adding := true
	if v, ok := e.cachedVlog(vlogID); ok && v.Bookmarked {
		adding = false
	}

	successMsg := "Vlog bookmarked!"
	fallbackMsg := "Failed to bookmark vlog. Please try again."
	if !adding {
		successMsg = "Bookmark removed!"
		fallbackMsg = "Failed to remove bookmark. Please try again."
	}

	return e.run(ctx, operation{
		name:     "bookmark",
		validate: func() error { return e.requireAuth("bookmark vlogs") },
		keys:     func() []string { return e.vlogKeys(vlogID) },
		speculate: func() {
			e.applyToVlog(vlogID, func(v domain.Vlog) domain.Vlog {
				v.Bookmarked = adding
				return v
			})
		},
		call: func(ctx context.Context) (json.RawMessage, error) {
			if adding {
				return e.api.AddBookmark(ctx, vlogID)
			}
			return e.api.RemoveBookmark(ctx, vlogID)
		},
		reconcile:   func(raw json.RawMessage) { e.reconcileVlog(vlogID, raw) },
		settle:      func() { e.settleVlog(vlogID) },
		successMsg:  successMsg,
		fallbackMsg: fallbackMsg,
	})
}

func (e *Engine) sessionUserID() string {
	sess, ok := e.session.Current()
	if !ok {
		return ""
	}
	return sess.UserID
}

func toggleLike(v domain.Vlog, userID string) domain.Vlog {
	if v.LikedBy(userID) {
		v.Likes = removeID(v.Likes, userID)
		return v
	}
	v.Likes = append(append([]string{}, v.Likes...), userID)
	v.Dislikes = removeID(v.Dislikes, userID)
	return v
}

func toggleDislike(v domain.Vlog, userID string) domain.Vlog {
	if v.DislikedBy(userID) {
		v.Dislikes = removeID(v.Dislikes, userID)
		return v
	}
	v.Dislikes = append(append([]string{}, v.Dislikes...), userID)
	v.Likes = removeID(v.Likes, userID)
	return v
}
