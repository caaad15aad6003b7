package bot

import (
	"context"
	"regexp"

	"github.com/rustyechelle/masto-share-bot/internal/contenttext"
	"github.com/rustyechelle/masto-share-bot/internal/mastodon"
	"github.com/rustyechelle/masto-share-bot/internal/state"
)

var (
	reMention         = regexp.MustCompile(`@\w+`)
	reRegisterCommand = regexp.MustCompile(`\bboost\b`)
	reStopCommand     = regexp.MustCompile(`\bstop\b`)
	reCancelCommand   = regexp.MustCompile(`\bcancel\b`)
)

func statusText(st mastodon.Status) string {
	return contenttext.Text(st.Content)
}

// statusTextWithoutMentions strips @-handles so a mention of the bot never
// accidentally contains a command token from a username.
func statusTextWithoutMentions(st mastodon.Status) string {
	return reMention.ReplaceAllString(statusText(st), "")
}

// parentStatus fetches the status a reply points at. A 401 or 404 means the
// parent is gone or hidden; that is reported as nil without error and the
// caller skips the action.
func (e *Engine) parentStatus(ctx context.Context, id string) (*mastodon.Status, error) {
	st, err := e.api.GetStatus(ctx, id)
	if err != nil {
		if mastodon.IsResourceGone(err) {
			e.logger.Warn("parent_status_unavailable", "id", id, "error", err.Error())
			return nil, nil
		}
		return nil, err
	}
	return st, nil
}

// dailyBoostCount returns the user's boost count for today and whether the
// daily ceiling still has room.
func (e *Engine) dailyBoostCount(uri string, rec state.UserRecord) (int, bool) {
	use := rec.DailyUseCount(useKeyBoosts, e.clock())
	if use >= e.cfg.BoostLimit {
		e.logger.Info("boost_limit_reached", "uri", uri, "use", use, "limit", e.cfg.BoostLimit)
		return use, false
	}
	return use, true
}

// registerUser opts the sender in: follow their account, remember the hashtag
// filter from the triggering status (empty = match any), persist.
func (e *Engine) registerUser(ctx context.Context, uri string, rec state.UserRecord, st mastodon.Status) error {
	accountID := st.Account.ID
	if accountID == "" {
		return nil
	}

	optedIn, err := e.users.OptedInCount()
	if err != nil {
		return err
	}
	if optedIn > e.cfg.UserLimit {
		e.logger.Warn("user_limit_reached", "limit", e.cfg.UserLimit)
		return nil
	}

	e.logger.Info("following_user", "uri", uri)
	if err := e.api.Follow(ctx, accountID); err != nil {
		return err
	}

	hashtags := make([]string, 0, len(st.Tags))
	for _, tag := range st.Tags {
		if tag.Name != "" {
			hashtags = append(hashtags, tag.Name)
		}
	}

	rec.Boost = true
	rec.Hashtags = hashtags
	return e.users.Put(uri, rec)
}

// stopUser opts the sender out: unfollow and clear the opt-in flag. Quota and
// hashtag state are left as they were.
func (e *Engine) stopUser(ctx context.Context, uri string, rec state.UserRecord, st mastodon.Status) error {
	accountID := st.Account.ID
	if accountID == "" {
		return nil
	}

	e.logger.Info("unfollowing_user", "uri", uri)
	if err := e.api.Unfollow(ctx, accountID); err != nil {
		return err
	}

	rec.Boost = false
	return e.users.Put(uri, rec)
}

// cancelBoost un-reblogs the parent of a reply, but only for the parent's own
// author. Cancelling costs no quota.
func (e *Engine) cancelBoost(ctx context.Context, parentID, uri string) error {
	parent, err := e.parentStatus(ctx, parentID)
	if err != nil || parent == nil {
		return err
	}
	if parent.Account.URI != uri {
		return nil
	}

	e.logger.Info("canceling_boost", "status", parentID, "uri", uri)
	return e.api.Unreblog(ctx, parentID)
}

// boostParent reblogs the parent of a reply when the sender owns it, it is
// public, and the sender's daily quota has room. The remote reblog endpoint
// is idempotent, so re-processing the same reply is harmless.
func (e *Engine) boostParent(ctx context.Context, parentID, uri string, rec state.UserRecord) error {
	use, ok := e.dailyBoostCount(uri, rec)
	if !ok {
		return nil
	}

	parent, err := e.parentStatus(ctx, parentID)
	if err != nil || parent == nil {
		return err
	}
	// Only public statuses are ever boosted.
	if parent.Visibility != mastodon.VisibilityPublic {
		return nil
	}
	if parent.Account.URI != uri {
		return nil
	}

	e.logger.Info("boosting_status", "status", parentID, "uri", uri)
	return e.reblogCounted(ctx, parentID, uri, rec, use)
}

// reblogCounted issues the reblog and persists the incremented daily counter.
func (e *Engine) reblogCounted(ctx context.Context, statusID, uri string, rec state.UserRecord, use int) error {
	if err := e.api.Reblog(ctx, statusID); err != nil {
		return err
	}
	rec.SetDailyUseCount(useKeyBoosts, use+1, e.clock())
	return e.users.Put(uri, rec)
}

// hasStatusHashtag reports whether the status carries any tag from hashtags.
// An empty filter matches any tagged status; an untagged status never
// matches.
func hasStatusHashtag(st mastodon.Status, hashtags []string) bool {
	if len(st.Tags) == 0 {
		return false
	}
	if len(hashtags) == 0 {
		return true
	}
	for _, tag := range st.Tags {
		for _, want := range hashtags {
			if tag.Name == want {
				return true
			}
		}
	}
	return false
}
