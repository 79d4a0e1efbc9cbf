// Package feed orchestrates reads: API fetches land in the cache store in
// their original envelope shape, and cached pages are served
// stale-while-revalidate so invalidated entries self-heal on the next read.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
)

const refreshTimeout = 30 * time.Second

type fetchFunc func(ctx context.Context) (json.RawMessage, error)

// Service serves feed pages, single vlogs, and profiles from the cache,
// fetching through the API client on miss.
type Service struct {
	client domain.FeedAPI
	store  *cache.Store
	logger *slog.Logger
}

// NewService creates a feed service.
func NewService(client domain.FeedAPI, store *cache.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, store: store, logger: logger}
}

// HomeFeed returns one page of the home feed.
func (s *Service) HomeFeed(ctx context.Context, page int) (domain.FeedPage, error) {
	return read[domain.FeedPage](s, ctx, cache.FeedKey(page), func(ctx context.Context) (json.RawMessage, error) {
		return s.client.Feed(ctx, page)
	})
}

// Trending returns the trending list.
func (s *Service) Trending(ctx context.Context) (domain.FeedPage, error) {
	return read[domain.FeedPage](s, ctx, cache.KeyTrending, s.client.Trending)
}

// UserVlogs returns one page of a user's vlogs.
func (s *Service) UserVlogs(ctx context.Context, userID string, page int) (domain.FeedPage, error) {
	return read[domain.FeedPage](s, ctx, cache.UserVlogsKey(userID, page), func(ctx context.Context) (json.RawMessage, error) {
		return s.client.UserVlogs(ctx, userID, page)
	})
}

// Vlog returns a single vlog by id.
func (s *Service) Vlog(ctx context.Context, vlogID string) (domain.Vlog, error) {
	return read[domain.Vlog](s, ctx, cache.VlogKey(vlogID), func(ctx context.Context) (json.RawMessage, error) {
		return s.client.Vlog(ctx, vlogID)
	})
}

// Profile returns a standalone user profile.
func (s *Service) Profile(ctx context.Context, userID string) (domain.User, error) {
	return read[domain.User](s, ctx, cache.UserKey(userID), func(ctx context.Context) (json.RawMessage, error) {
		return s.client.User(ctx, userID)
	})
}

// read serves key from cache when present, scheduling a background refetch
// for stale entries; on miss it fetches inline. Fetch results pass through
// the store's generation check so a cancelled fetch never overwrites a
// fresher optimistic write.
func read[T any](s *Service, ctx context.Context, key string, fetch fetchFunc) (T, error) {
	if v, ok := cache.Read[T](s.store, key); ok {
		if s.store.IsStale(key) {
			go s.refresh(key, fetch)
		}
		return v, nil
	}

	var zero T
	if err := s.fetchInto(ctx, key, fetch); err != nil {
		return zero, err
	}
	v, ok := cache.Read[T](s.store, key)
	if !ok {
		return zero, fmt.Errorf("unexpected response shape for %q", key)
	}
	return v, nil
}

// Refresh refetches key unconditionally, e.g. on an explicit user refresh.
func (s *Service) Refresh(ctx context.Context, key string, fetch fetchFunc) error {
	return s.fetchInto(ctx, key, fetch)
}

// RefreshFeed refetches one home feed page.
func (s *Service) RefreshFeed(ctx context.Context, page int) error {
	return s.fetchInto(ctx, cache.FeedKey(page), func(ctx context.Context) (json.RawMessage, error) {
		return s.client.Feed(ctx, page)
	})
}

func (s *Service) fetchInto(ctx context.Context, key string, fetch fetchFunc) error {
	gen := s.store.BeginFetch(key)
	raw, err := fetch(ctx)
	if err != nil {
		s.logger.Error("fetch failed", "key", key, "error", err)
		return err
	}
	if !s.store.CompleteFetch(key, gen, raw) {
		s.logger.Debug("discarded cancelled fetch result", "key", key)
	}
	return nil
}

func (s *Service) refresh(key string, fetch fetchFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := s.fetchInto(ctx, key, fetch); err != nil {
		s.logger.Debug("background refresh failed", "key", key, "error", err)
	}
}
