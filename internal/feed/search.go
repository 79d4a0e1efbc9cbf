package feed

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
)

// Search fuzzy-matches query against the titles and tags of every cached
// vlog. It only sees what the cache holds; it never hits the network.
func (s *Service) Search(query string) []domain.Vlog {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	type ranked struct {
		vlog domain.Vlog
		rank int
	}

	seen := make(map[string]bool)
	var matches []ranked

	consider := func(v domain.Vlog) {
		if v.ID == "" || seen[v.ID] {
			return
		}
		seen[v.ID] = true
		target := v.Title + " " + strings.Join(v.Tags, " ")
		if rank := fuzzy.RankMatchNormalizedFold(query, target); rank >= 0 {
			matches = append(matches, ranked{vlog: v, rank: rank})
		}
	}

	for _, prefix := range cache.ListPrefixes() {
		for _, key := range s.store.Keys(prefix) {
			if page, ok := cache.Read[domain.FeedPage](s.store, key); ok {
				for _, v := range page.Vlogs {
					consider(v)
				}
			}
		}
	}
	for _, key := range s.store.Keys(cache.PrefixVlog) {
		if v, ok := cache.Read[domain.Vlog](s.store, key); ok {
			consider(v)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].rank < matches[j].rank
	})

	out := make([]domain.Vlog, len(matches))
	for i, m := range matches {
		out[i] = m.vlog
	}
	return out
}
