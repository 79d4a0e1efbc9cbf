package domain

import (
	"strings"
	"time"
)

// User is the partial user representation embedded in vlogs and cached as a
// standalone profile. Both copies must stay numerically consistent after a
// follow-state change.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio,omitempty"`
	Followers int    `json:"followers"`
}

// Comment belongs to exactly one vlog. Optimistic comments carry a
// client-generated temporary id until the server assigns the real one.
type Comment struct {
	ID        string    `json:"id"`
	Author    User      `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// TempCommentPrefix marks client-generated comment ids awaiting the
// server-assigned replacement.
const TempCommentPrefix = "temp-"

// IsTemporary reports whether the comment still carries a client-local id.
func (c Comment) IsTemporary() bool {
	return strings.HasPrefix(c.ID, TempCommentPrefix)
}

// Vlog is a content item as seen by the client cache. Like and dislike sets
// hold user ids; an id is never in both sets at once.
type Vlog struct {
	ID          string    `json:"id"`
	Author      User      `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	Likes       []string  `json:"likes"`
	Dislikes    []string  `json:"dislikes"`
	Comments    []Comment `json:"comments"`
	Views       int       `json:"views"`
	Shares      int       `json:"shares"`
	Bookmarked  bool      `json:"bookmarked"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LikedBy reports whether userID is in the like set.
func (v Vlog) LikedBy(userID string) bool {
	for _, id := range v.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// DislikedBy reports whether userID is in the dislike set.
func (v Vlog) DislikedBy(userID string) bool {
	for _, id := range v.Dislikes {
		if id == userID {
			return true
		}
	}
	return false
}

// CommentCount is the rendered comment count; it always reflects the array
// length, including optimistic insertions.
func (v Vlog) CommentCount() int {
	return len(v.Comments)
}

// VlogUpdate carries the editable vlog fields. Nil fields are left unchanged.
type VlogUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// Apply returns a copy of v with the non-nil update fields applied.
func (u VlogUpdate) Apply(v Vlog) Vlog {
	if u.Title != nil {
		v.Title = *u.Title
	}
	if u.Description != nil {
		v.Description = *u.Description
	}
	if u.Tags != nil {
		v.Tags = *u.Tags
	}
	return v
}

// Session is the current authenticated identity. FollowingCount is always
// recomputed from the Following list, never incremented independently.
type Session struct {
	UserID         string   `json:"id"`
	Username       string   `json:"username"`
	Avatar         string   `json:"avatar"`
	Following      []string `json:"following"`
	FollowingCount int      `json:"followingCount"`
}

// IsFollowing reports whether the session follows userID.
func (s Session) IsFollowing(userID string) bool {
	for _, id := range s.Following {
		if id == userID {
			return true
		}
	}
	return false
}

// Author returns the session identity as an embeddable partial user, used
// when inserting optimistic comments.
func (s Session) Author() User {
	return User{ID: s.UserID, Username: s.Username, Avatar: s.Avatar}
}

// FeedPage is one cached page of a vlog list view.
type FeedPage struct {
	Vlogs   []Vlog `json:"vlogs"`
	Page    int    `json:"page"`
	Total   int    `json:"total"`
	HasMore bool   `json:"hasMore"`
}

// AuthResult is returned by login and register calls.
type AuthResult struct {
	Token   string  `json:"token"`
	Session Session `json:"user"`
}
