package bot

import (
	"context"

	"github.com/rustyechelle/masto-share-bot/internal/mastodon"
)

// AutoShareTags boosts opted-in users' public tagged posts and interprets
// mention commands: "boost" registers, "stop" deregisters, a reply saying
// "cancel" retracts a boost, and any other reply asks for the parent to be
// boosted.
type AutoShareTags struct{}

func (AutoShareTags) HandleNotification(ctx context.Context, e *Engine, n mastodon.Notification) error {
	if n.Type != mastodon.NotificationMention || n.Status == nil {
		return nil
	}
	st := *n.Status
	uri := st.Account.URI
	if uri == "" {
		return nil
	}

	rec, err := e.users.Get(uri)
	if err != nil {
		return err
	}
	if rec.Blocked {
		return nil
	}

	// Command priority: register beats stop beats the reply-only commands.
	text := statusTextWithoutMentions(st)
	switch {
	case reRegisterCommand.MatchString(text):
		return e.registerUser(ctx, uri, rec, st)
	case reStopCommand.MatchString(text):
		return e.stopUser(ctx, uri, rec, st)
	case st.InReplyToID != "":
		if reCancelCommand.MatchString(text) {
			return e.cancelBoost(ctx, st.InReplyToID, uri)
		}
		return e.boostParent(ctx, st.InReplyToID, uri, rec)
	}
	return nil
}

func (AutoShareTags) HandleHomeStatus(ctx context.Context, e *Engine, st mastodon.Status) error {
	e.logger.Debug("processing_status", "id", st.ID, "acct", st.Account.Acct)

	if st.Visibility != mastodon.VisibilityPublic {
		return nil
	}
	uri := st.Account.URI
	if uri == "" || st.ID == "" {
		return nil
	}

	rec, err := e.users.Get(uri)
	if err != nil {
		return err
	}
	if rec.Blocked || !rec.Boost {
		return nil
	}
	if !hasStatusHashtag(st, rec.Hashtags) {
		return nil
	}

	use, ok := e.dailyBoostCount(uri, rec)
	if !ok {
		return nil
	}

	e.logger.Info("boosting_home_status", "status", st.ID, "uri", uri)
	return e.reblogCounted(ctx, st.ID, uri, rec, use)
}
