package mutate

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
)

// seedCreatorViews caches the same creator in every view shape: a
// standalone profile, a feed page, a trending list, and a single vlog.
func seedCreatorViews(f *fixture) {
	creator := domain.User{ID: "u2", Username: "creator", Followers: 10}

	f.seedUser(creator)

	v1 := testVlog("v1")
	v1.Author = creator
	v2 := testVlog("v2")
	v2.Author = domain.User{ID: "u3", Username: "other", Followers: 5}

	f.seedVlog(v1)
	f.seedFeed(1, v1, v2)

	trending, _ := json.Marshal(domain.FeedPage{Vlogs: []domain.Vlog{v1}, Page: 1, Total: 1})
	f.store.PutRaw(cache.KeyTrending, trending)
}

func TestFollowPropagatesEverywhere(t *testing.T) {
	f := newFixture(t)
	seedCreatorViews(f)

	if err := f.engine.Follow(context.Background(), "u2"); err != nil {
		t.Fatalf("follow failed: %v", err)
	}

	assert.Equal(t, f.api.calls, []string{"follow u2"})
	assert.Equal(t, f.notes.successes, []string{"User followed!"})

	// One fact, four cached locations, one value.
	profile, _ := cache.Read[domain.User](f.store, cache.UserKey("u2"))
	assert.Equal(t, profile.Followers, 11)

	assert.Equal(t, f.vlog(t, "v1").Author.Followers, 11)
	assert.Equal(t, f.feedVlog(t, 1, "v1").Author.Followers, 11)

	trending, _ := cache.Read[domain.FeedPage](f.store, cache.KeyTrending)
	assert.Equal(t, trending.Vlogs[0].Author.Followers, 11)

	// Unrelated authors are untouched.
	assert.Equal(t, f.feedVlog(t, 1, "v2").Author.Followers, 5)

	// The session follows the target, count derived from the list.
	sess, _ := f.sessions.Current()
	assert.Equal(t, sess.IsFollowing("u2"), true)
	assert.Equal(t, sess.FollowingCount, len(sess.Following))
}

func TestUnfollowFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	creator := domain.User{ID: "u2", Username: "creator", Followers: 0}
	f.seedUser(creator)
	f.sessions.SetSession(domain.Session{
		UserID: "u1", Username: "casey",
		Following: []string{"u2"}, FollowingCount: 1,
	})

	if err := f.engine.Unfollow(context.Background(), "u2"); err != nil {
		t.Fatalf("unfollow failed: %v", err)
	}

	profile, _ := cache.Read[domain.User](f.store, cache.UserKey("u2"))
	assert.Equal(t, profile.Followers, 0)

	sess, _ := f.sessions.Current()
	assert.Equal(t, sess.IsFollowing("u2"), false)
	assert.Equal(t, sess.FollowingCount, 0)
	assert.Equal(t, f.notes.successes, []string{"User unfollowed."})
}

func TestFollowIsIdempotentInSession(t *testing.T) {
	f := newFixture(t)
	f.seedUser(domain.User{ID: "u2", Followers: 3})
	f.sessions.SetSession(domain.Session{
		UserID: "u1", Following: []string{"u2"}, FollowingCount: 1,
	})

	if err := f.engine.Follow(context.Background(), "u2"); err != nil {
		t.Fatalf("follow failed: %v", err)
	}

	sess, _ := f.sessions.Current()
	assert.Equal(t, sess.Following, []string{"u2"})
	assert.Equal(t, sess.FollowingCount, 1)
}

func TestFollowRollsBackAllViews(t *testing.T) {
	f := newFixture(t)
	seedCreatorViews(f)
	profileBefore, _ := f.store.GetRaw(cache.UserKey("u2"))
	sessionBefore, _ := f.store.GetRaw(cache.KeySession)
	feedBefore, _ := f.store.GetRaw(cache.FeedKey(1))
	vlogBefore, _ := f.store.GetRaw(cache.VlogKey("v1"))

	f.api.err = fmt.Errorf("boom")
	if err := f.engine.Follow(context.Background(), "u2"); err == nil {
		t.Fatal("expected error")
	}

	profileAfter, _ := f.store.GetRaw(cache.UserKey("u2"))
	sessionAfter, _ := f.store.GetRaw(cache.KeySession)
	feedAfter, _ := f.store.GetRaw(cache.FeedKey(1))
	vlogAfter, _ := f.store.GetRaw(cache.VlogKey("v1"))

	assert.Equal(t, string(profileAfter), string(profileBefore))
	assert.Equal(t, string(sessionAfter), string(sessionBefore))
	assert.Equal(t, string(feedAfter), string(feedBefore))
	assert.Equal(t, string(vlogAfter), string(vlogBefore))

	assert.Equal(t, f.notes.errors, []string{"Failed to follow user. Please try again."})
}

func TestFollowFallsBackToInvalidation(t *testing.T) {
	f := newFixture(t)
	seedCreatorViews(f)
	// A malformed list page makes precise propagation impossible.
	f.store.PutRaw(cache.FeedKey(2), []byte(`"scrambled"`))

	if err := f.engine.Follow(context.Background(), "u2"); err != nil {
		t.Fatalf("follow failed: %v", err)
	}

	// Degraded mode: everything the change touches is marked stale so no
	// view can keep serving a contradicting value as fresh.
	assert.Equal(t, f.store.IsStale(cache.UserKey("u2")), true)
	assert.Equal(t, f.store.IsStale(cache.KeySession), true)
	assert.Equal(t, f.store.IsStale(cache.FeedKey(1)), true)
	assert.Equal(t, f.store.IsStale(cache.VlogKey("v1")), true)
}

func TestApplyFollowChangeDirect(t *testing.T) {
	f := newFixture(t)
	f.seedUser(domain.User{ID: "u2", Followers: 1})

	if err := applyFollowChange(f.store, "u2", true, "u1"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	u, _ := cache.Read[domain.User](f.store, cache.UserKey("u2"))
	assert.Equal(t, u.Followers, 2)

	if err := applyFollowChange(f.store, "u2", false, "u1"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	u, _ = cache.Read[domain.User](f.store, cache.UserKey("u2"))
	assert.Equal(t, u.Followers, 1)

	// Malformed entries surface as errors rather than panics.
	f.store.PutRaw(cache.FeedKey(9), []byte(`12345`))
	if err := applyFollowChange(f.store, "u2", true, "u1"); err == nil {
		t.Fatal("expected error for malformed page")
	}
}
