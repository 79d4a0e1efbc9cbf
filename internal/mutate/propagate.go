package mutate

import (
	"fmt"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
)

// applyFollowChange writes a single follow-state change into every cache
// location embedding the affected fact, as one logical transaction of
// individually applied writes:
//
//  1. the target's standalone profile (follower count, floored at zero)
//  2. the acting user's session (following list; count recomputed from the
//     list's length, never incremented independently, to avoid drift)
//  3. every cached list page whose embedded author matches
//  4. every cached single-vlog entry whose embedded author matches
//
// Any error aborts with the cache possibly part-written; the caller must
// then degrade to coarse invalidation.
func applyFollowChange(s *cache.Store, targetID string, follow bool, actingID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("follow propagation panicked: %v", r)
		}
	}()

	adjust := func(u domain.User) domain.User {
		if u.ID != targetID {
			return u
		}
		if follow {
			u.Followers++
		} else if u.Followers > 0 {
			u.Followers--
		}
		return u
	}

	if _, err := cache.Mutate(s, cache.UserKey(targetID), adjust); err != nil {
		return err
	}

	if _, err := cache.Mutate(s, cache.KeySession, func(sess domain.Session) domain.Session {
		if follow {
			if !sess.IsFollowing(targetID) {
				sess.Following = append(sess.Following, targetID)
			}
		} else {
			sess.Following = removeID(sess.Following, targetID)
		}
		sess.FollowingCount = len(sess.Following)
		return sess
	}); err != nil {
		return err
	}

	for _, prefix := range cache.ListPrefixes() {
		if _, err := cache.MutateMatching(s, prefix, func(p domain.FeedPage) domain.FeedPage {
			for i := range p.Vlogs {
				p.Vlogs[i].Author = adjust(p.Vlogs[i].Author)
			}
			return p
		}); err != nil {
			return err
		}
	}

	if _, err := cache.MutateMatching(s, cache.PrefixVlog, func(v domain.Vlog) domain.Vlog {
		v.Author = adjust(v.Author)
		return v
	}); err != nil {
		return err
	}

	return nil
}

// propagateFollowChange applies the change, degrading to coarse
// invalidation of the affected key prefixes when any step fails. Partial
// propagation would leave mounted views contradicting each other; stale
// everywhere is the safer failure mode.
func (e *Engine) propagateFollowChange(targetID string, follow bool, actingID string) {
	if err := applyFollowChange(e.store, targetID, follow, actingID); err != nil {
		e.logger.Warn("follow propagation failed, falling back to invalidation",
			"userID", targetID, "follow", follow, "error", err)
		e.settleFollow(targetID)
	}
}
