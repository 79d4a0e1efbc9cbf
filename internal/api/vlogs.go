package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vlogdeck/vlogdeck/internal/domain"
)

var (
	_ domain.FeedAPI     = (*Client)(nil)
	_ domain.MutationAPI = (*Client)(nil)
)

// === Reads ===
//
// Read responses are returned raw so the cache can store them in whichever
// envelope shape the server used.

// Feed returns one page of the home feed.
func (c *Client) Feed(ctx context.Context, page int) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/api/v1/vlogs?page=%d", page))
}

// Trending returns the trending list.
func (c *Client) Trending(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/v1/vlogs/trending")
}

// UserVlogs returns one page of a user's vlogs.
func (c *Client) UserVlogs(ctx context.Context, userID string, page int) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/api/v1/users/%s/vlogs?page=%d", userID, page))
}

// Vlog returns a single vlog by id.
func (c *Client) Vlog(ctx context.Context, vlogID string) (json.RawMessage, error) {
	return c.get(ctx, "/api/v1/vlogs/"+vlogID)
}

// User returns a standalone user profile.
func (c *Client) User(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.get(ctx, "/api/v1/users/"+userID)
}

// === Mutations ===

// ToggleLike toggles the session user's membership in a vlog's like set.
func (c *Client) ToggleLike(ctx context.Context, vlogID string) (json.RawMessage, error) {
	return c.post(ctx, "/api/v1/vlogs/"+vlogID+"/like", nil)
}

// ToggleDislike toggles the session user's membership in a vlog's dislike set.
func (c *Client) ToggleDislike(ctx context.Context, vlogID string) (json.RawMessage, error) {
	return c.post(ctx, "/api/v1/vlogs/"+vlogID+"/dislike", nil)
}

// AddBookmark bookmarks a vlog for the session user.
func (c *Client) AddBookmark(ctx context.Context, vlogID string) (json.RawMessage, error) {
	return c.post(ctx, "/api/v1/vlogs/"+vlogID+"/bookmark", nil)
}

// RemoveBookmark removes a bookmark.
func (c *Client) RemoveBookmark(ctx context.Context, vlogID string) (json.RawMessage, error) {
	return c.delete(ctx, "/api/v1/vlogs/"+vlogID+"/bookmark")
}

// AddComment posts a comment; the response carries the server-assigned
// comment that replaces the optimistic placeholder.
func (c *Client) AddComment(ctx context.Context, vlogID, text string) (json.RawMessage, error) {
	return c.post(ctx, "/api/v1/vlogs/"+vlogID+"/comments", map[string]string{"text": text})
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, vlogID, commentID string) (json.RawMessage, error) {
	return c.delete(ctx, "/api/v1/vlogs/"+vlogID+"/comments/"+commentID)
}

// Follow follows a user.
func (c *Client) Follow(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.post(ctx, "/api/v1/users/"+userID+"/follow", nil)
}

// Unfollow unfollows a user.
func (c *Client) Unfollow(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.delete(ctx, "/api/v1/users/"+userID+"/follow")
}

// UpdateVlog applies an edit to a vlog the session user owns.
func (c *Client) UpdateVlog(ctx context.Context, vlogID string, update domain.VlogUpdate) (json.RawMessage, error) {
	return c.put(ctx, "/api/v1/vlogs/"+vlogID, update)
}

// DeleteVlog deletes a vlog the session user owns.
func (c *Client) DeleteVlog(ctx context.Context, vlogID string) (json.RawMessage, error) {
	return c.delete(ctx, "/api/v1/vlogs/"+vlogID)
}

// RecordView records a view.
func (c *Client) RecordView(ctx context.Context, vlogID string) (json.RawMessage, error) {
	return c.post(ctx, "/api/v1/vlogs/"+vlogID+"/view", nil)
}

// RecordShare records a share.
func (c *Client) RecordShare(ctx context.Context, vlogID string) (json.RawMessage, error) {
	return c.post(ctx, "/api/v1/vlogs/"+vlogID+"/share", nil)
}
