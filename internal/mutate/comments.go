package mutate

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
)

// maxCommentLength bounds comment text after trimming.
const maxCommentLength = 500

// AddComment inserts an optimistic comment with a client-generated
// temporary id at the head of the comment list; on success the placeholder
// is replaced by the server-assigned comment, preserving list order.
func (e *Engine) AddComment(ctx context.Context, vlogID, text string) error {
	trimmed := strings.TrimSpace(text)
	sess, _ := e.session.Current()
	tempID := domain.TempCommentPrefix + uuid.NewString()

	var expected int

	return e.run(ctx, operation{
		name: "add-comment",
		validate: func() error {
			if err := e.requireAuth("comment on vlogs"); err != nil {
				return err
			}
			return e.validateCommentText(trimmed)
		},
		keys: func() []string { return e.vlogKeys(vlogID) },
		speculate: func() {
			comment := domain.Comment{
				ID:        tempID,
				Author:    sess.Author(),
				Text:      trimmed,
				CreatedAt: time.Now(),
			}
			e.applyToVlog(vlogID, func(v domain.Vlog) domain.Vlog {
				v.Comments = append([]domain.Comment{comment}, v.Comments...)
				return v
			})
			if v, ok := e.cachedVlog(vlogID); ok {
				expected = v.CommentCount()
			}
		},
		call: func(ctx context.Context) (json.RawMessage, error) {
			return e.api.AddComment(ctx, vlogID, trimmed)
		},
		reconcile: func(raw json.RawMessage) {
			created, err := e.decodeComment(raw)
			if err == nil && created.ID != "" {
				e.applyToVlog(vlogID, func(v domain.Vlog) domain.Vlog {
					for i := range v.Comments {
						if v.Comments[i].ID == tempID {
							v.Comments[i] = created
						}
					}
					return v
				})
			}
			// Soft consistency check: a mismatch is logged, never surfaced.
			if v, ok := e.cachedVlog(vlogID); ok && expected > 0 && v.CommentCount() != expected {
				e.logger.Warn("comment count mismatch after reconciliation",
					"vlogID", vlogID, "expected", expected, "actual", v.CommentCount())
			}
		},
		settle:      func() { e.settleVlog(vlogID) },
		successMsg:  "Comment added!",
		fallbackMsg: "Failed to add comment. Please try again.",
	})
}

// DeleteComment removes a comment from a vlog.
func (e *Engine) DeleteComment(ctx context.Context, vlogID, commentID string) error {
	return e.run(ctx, operation{
		name:     "delete-comment",
		validate: func() error { return e.requireAuth("manage comments") },
		keys:     func() []string { return e.vlogKeys(vlogID) },
		speculate: func() {
			e.applyToVlog(vlogID, func(v domain.Vlog) domain.Vlog {
				kept := make([]domain.Comment, 0, len(v.Comments))
				for _, c := range v.Comments {
					if c.ID != commentID {
						kept = append(kept, c)
					}
				}
				v.Comments = kept
				return v
			})
		},
		call: func(ctx context.Context) (json.RawMessage, error) {
			return e.api.DeleteComment(ctx, vlogID, commentID)
		},
		reconcile:   func(raw json.RawMessage) { e.reconcileVlog(vlogID, raw) },
		settle:      func() { e.settleVlog(vlogID) },
		successMsg:  "Comment deleted.",
		fallbackMsg: "Failed to delete comment. Please try again.",
	})
}

func (e *Engine) validateCommentText(trimmed string) error {
	var msg string
	switch {
	case trimmed == "":
		msg = "Comment cannot be empty."
	case utf8.RuneCountInString(trimmed) > maxCommentLength:
		msg = "Comments are limited to 500 characters."
	default:
		return nil
	}
	e.notify.Error(msg)
	return &domain.ValidationError{Message: msg}
}

func (e *Engine) decodeComment(raw json.RawMessage) (domain.Comment, error) {
	return cache.DecodeResource[domain.Comment](raw)
}
