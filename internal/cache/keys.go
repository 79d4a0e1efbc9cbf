package cache

import "fmt"

// Cache keys are composites of resource type and id or pagination parameters.
const (
	// KeySession is the cache key for the current authenticated session
	KeySession = "session"

	// KeyTrending is the cache key for the trending list view
	KeyTrending = "trending"

	// PrefixVlog is the prefix for single-vlog entries (vlog:{vlogID})
	PrefixVlog = "vlog:"

	// PrefixFeed is the prefix for home feed pages (feed:{page})
	PrefixFeed = "feed:"

	// PrefixUser is the prefix for standalone user profiles (user:{userID})
	PrefixUser = "user:"

	// PrefixUserVlogs is the prefix for a user's vlog pages (uservlogs:{userID}:{page})
	PrefixUserVlogs = "uservlogs:"
)

// VlogKey returns the cache key for a single vlog.
func VlogKey(vlogID string) string {
	return PrefixVlog + vlogID
}

// FeedKey returns the cache key for a home feed page.
func FeedKey(page int) string {
	return fmt.Sprintf("%s%d", PrefixFeed, page)
}

// UserKey returns the cache key for a standalone user profile.
func UserKey(userID string) string {
	return PrefixUser + userID
}

// UserVlogsKey returns the cache key for one page of a user's vlogs.
func UserVlogsKey(userID string, page int) string {
	return fmt.Sprintf("%s%s:%d", PrefixUserVlogs, userID, page)
}

// UserVlogsPrefix returns the prefix matching every cached page of a user's
// vlogs.
func UserVlogsPrefix(userID string) string {
	return PrefixUserVlogs + userID + ":"
}

// ListPrefixes returns the prefixes of every cached list view that embeds
// vlogs. Cross-view propagation and settle-phase invalidation walk these.
func ListPrefixes() []string {
	return []string{PrefixFeed, KeyTrending, PrefixUserVlogs}
}
