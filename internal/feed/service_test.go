package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
	"github.com/vlogdeck/vlogdeck/internal/log"
)

type stubFeedAPI struct {
	calls     []string
	responses map[string]json.RawMessage
	err       error
}

func (a *stubFeedAPI) respond(name string) (json.RawMessage, error) {
	a.calls = append(a.calls, name)
	if a.err != nil {
		return nil, a.err
	}
	return a.responses[name], nil
}

func (a *stubFeedAPI) Feed(ctx context.Context, page int) (json.RawMessage, error) {
	return a.respond(fmt.Sprintf("feed %d", page))
}
func (a *stubFeedAPI) Trending(ctx context.Context) (json.RawMessage, error) {
	return a.respond("trending")
}
func (a *stubFeedAPI) UserVlogs(ctx context.Context, userID string, page int) (json.RawMessage, error) {
	return a.respond(fmt.Sprintf("uservlogs %s %d", userID, page))
}
func (a *stubFeedAPI) Vlog(ctx context.Context, vlogID string) (json.RawMessage, error) {
	return a.respond("vlog " + vlogID)
}
func (a *stubFeedAPI) User(ctx context.Context, userID string) (json.RawMessage, error) {
	return a.respond("user " + userID)
}

var _ domain.FeedAPI = (*stubFeedAPI)(nil)

func newTestService(t *testing.T) (*Service, *stubFeedAPI, *cache.Store) {
	t.Helper()
	store, err := cache.NewStore("", "", log.NullLogger())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	api := &stubFeedAPI{responses: make(map[string]json.RawMessage)}
	return NewService(api, store, log.NullLogger()), api, store
}

func feedJSON(vlogs ...domain.Vlog) json.RawMessage {
	p := domain.FeedPage{Vlogs: vlogs, Page: 1, Total: len(vlogs)}
	data, _ := json.Marshal(p)
	return json.RawMessage(fmt.Sprintf(`{"success":true,"data":%s}`, data))
}

func vlog(id, title string, tags ...string) domain.Vlog {
	return domain.Vlog{ID: id, Title: title, Tags: tags, Author: domain.User{ID: "u-" + id}}
}

func TestHomeFeedFetchesOnMiss(t *testing.T) {
	svc, api, store := newTestService(t)
	api.responses["feed 1"] = feedJSON(vlog("v1", "morning run"))

	p, err := svc.HomeFeed(context.Background(), 1)
	if err != nil {
		t.Fatalf("HomeFeed failed: %v", err)
	}
	if len(p.Vlogs) != 1 || p.Vlogs[0].ID != "v1" {
		t.Fatalf("unexpected page: %+v", p)
	}
	if len(api.calls) != 1 {
		t.Errorf("expected one fetch, got %v", api.calls)
	}

	// The raw enveloped response is what got cached.
	raw, ok := store.GetRaw(cache.FeedKey(1))
	if !ok {
		t.Fatal("expected response cached")
	}
	if string(raw) != string(api.responses["feed 1"]) {
		t.Errorf("cache should hold the server bytes verbatim: %s", raw)
	}
}

func TestHomeFeedServesFreshCacheWithoutFetching(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.responses["feed 1"] = feedJSON(vlog("v1", "morning run"))

	if _, err := svc.HomeFeed(context.Background(), 1); err != nil {
		t.Fatalf("HomeFeed failed: %v", err)
	}
	if _, err := svc.HomeFeed(context.Background(), 1); err != nil {
		t.Fatalf("HomeFeed failed: %v", err)
	}
	if len(api.calls) != 1 {
		t.Errorf("fresh cache hit must not refetch, got %v", api.calls)
	}
}

func TestStaleEntryIsServedImmediately(t *testing.T) {
	svc, api, store := newTestService(t)
	api.responses["feed 1"] = feedJSON(vlog("v1", "morning run"))

	if _, err := svc.HomeFeed(context.Background(), 1); err != nil {
		t.Fatalf("HomeFeed failed: %v", err)
	}
	store.Invalidate(cache.FeedKey(1))

	// Stale data comes back without waiting on the network.
	p, err := svc.HomeFeed(context.Background(), 1)
	if err != nil {
		t.Fatalf("HomeFeed failed: %v", err)
	}
	if len(p.Vlogs) != 1 {
		t.Fatalf("expected the cached page, got %+v", p)
	}
}

func TestFetchErrorSurfacesOnMiss(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.err = fmt.Errorf("boom")

	if _, err := svc.HomeFeed(context.Background(), 1); err == nil {
		t.Fatal("expected error on cold-cache fetch failure")
	}
}

func TestCancelledFetchIsDiscarded(t *testing.T) {
	svc, api, store := newTestService(t)
	api.responses["feed 1"] = feedJSON(vlog("v1", "before"))

	store.PutRaw(cache.FeedKey(1), []byte(`{"vlogs":[],"page":1,"total":0}`))
	gen := store.BeginFetch(cache.FeedKey(1))
	store.CancelInFlight(cache.FeedKey(1))

	raw, err := api.Feed(context.Background(), 1)
	if err != nil {
		t.Fatalf("stub fetch failed: %v", err)
	}
	if store.CompleteFetch(cache.FeedKey(1), gen, raw) {
		t.Error("cancelled fetch must not land")
	}

	p, err := svc.HomeFeed(context.Background(), 1)
	if err != nil {
		t.Fatalf("HomeFeed failed: %v", err)
	}
	if len(p.Vlogs) != 0 {
		t.Errorf("expected the protected entry to survive, got %+v", p)
	}
}

func TestVlogAndProfileReads(t *testing.T) {
	svc, api, _ := newTestService(t)
	vdata, _ := json.Marshal(vlog("v1", "morning run"))
	api.responses["vlog v1"] = json.RawMessage(fmt.Sprintf(`{"success":true,"data":%s}`, vdata))
	udata, _ := json.Marshal(domain.User{ID: "u1", Username: "casey", Followers: 2})
	api.responses["user u1"] = udata

	v, err := svc.Vlog(context.Background(), "v1")
	if err != nil {
		t.Fatalf("Vlog failed: %v", err)
	}
	if v.Title != "morning run" {
		t.Errorf("unexpected vlog: %+v", v)
	}

	u, err := svc.Profile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if u.Username != "casey" || u.Followers != 2 {
		t.Errorf("unexpected profile: %+v", u)
	}
}

func TestSearchMatchesTitlesAndTags(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.responses["feed 1"] = feedJSON(
		vlog("v1", "Morning Run in Lisbon", "running"),
		vlog("v2", "Sourdough Diary", "baking", "bread"),
		vlog("v3", "Night Cycling", "cycling"),
	)
	if _, err := svc.HomeFeed(context.Background(), 1); err != nil {
		t.Fatalf("HomeFeed failed: %v", err)
	}

	results := svc.Search("lisbon")
	if len(results) != 1 || results[0].ID != "v1" {
		t.Fatalf("expected v1 for title match, got %+v", results)
	}

	results = svc.Search("bread")
	if len(results) != 1 || results[0].ID != "v2" {
		t.Fatalf("expected v2 for tag match, got %+v", results)
	}

	if got := svc.Search("   "); got != nil {
		t.Errorf("blank query should return nil, got %+v", got)
	}
	if got := svc.Search("zzzqqq"); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}
