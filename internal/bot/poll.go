package bot

import (
	"context"
	"fmt"

	"github.com/rustyechelle/masto-share-bot/internal/mastodon"
)

// processHome runs the home-timeline stream when its check interval elapsed.
// The interval stamp advances only after a clean pass, so a failed poll is
// retried on the next tick.
func (e *Engine) processHome(ctx context.Context) error {
	now := e.clock()
	if now.Sub(e.lastHomePoll) < e.cfg.TimelineCheckFrequency {
		return nil
	}
	if err := e.pollHome(ctx); err != nil {
		return fmt.Errorf("home poll: %w", err)
	}
	e.lastHomePoll = e.clock()
	return nil
}

func (e *Engine) pollHome(ctx context.Context) error {
	e.logger.Debug("home_poll_start")

	cursor, err := e.cursors.Get(cursorLastHomeID)
	if err != nil {
		return err
	}

	if cursor == "" {
		// First run: establish a starting point from the most recent
		// statuses without walking the full history.
		statuses, err := e.api.HomeTimeline(ctx, "", homeBootstrapLimit)
		if err != nil {
			return err
		}
		_, err = e.processHomeBatch(ctx, statuses)
		return err
	}

	// Catch up in pages until the remote hands back a short batch. Each
	// processed batch advances the cursor, so the next fetch starts after
	// everything already handled.
	for {
		statuses, err := e.api.HomeTimeline(ctx, cursor, homePageLimit)
		if err != nil {
			return err
		}
		advanced, err := e.processHomeBatch(ctx, statuses)
		if err != nil {
			return err
		}
		if advanced != "" {
			cursor = advanced
		}
		if len(statuses) < homePageLimit {
			return nil
		}
	}
}

// processHomeBatch hands statuses to the behavior in chronological order (the
// remote returns newest first) and persists the id of the newest processed
// status as the stream cursor.
func (e *Engine) processHomeBatch(ctx context.Context, statuses []mastodon.Status) (string, error) {
	last := ""
	for i := len(statuses) - 1; i >= 0; i-- {
		st := statuses[i]
		if err := e.behavior.HandleHomeStatus(ctx, e, st); err != nil {
			return "", err
		}
		last = st.ID
	}
	if last == "" {
		return "", nil
	}
	if err := e.cursors.Set(cursorLastHomeID, last); err != nil {
		return "", err
	}
	return last, nil
}

// processNotifications runs the notification stream when its check interval
// elapsed.
func (e *Engine) processNotifications(ctx context.Context) error {
	now := e.clock()
	if now.Sub(e.lastNotificationPoll) < e.cfg.NotificationCheckFrequency {
		return nil
	}
	if err := e.pollNotifications(ctx); err != nil {
		return fmt.Errorf("notification poll: %w", err)
	}
	e.lastNotificationPoll = e.clock()
	return nil
}

// pollNotifications drains the notification list: every fetched item is
// processed then dismissed at the remote end, so there is no cursor to keep.
func (e *Engine) pollNotifications(ctx context.Context) error {
	e.logger.Debug("notification_poll_start")

	for {
		notifications, err := e.api.Notifications(ctx, notificationPageLimit)
		if err != nil {
			return err
		}
		for _, n := range notifications {
			if err := e.behavior.HandleNotification(ctx, e, n); err != nil {
				return err
			}
			if err := e.dismissNotification(ctx, n); err != nil {
				return err
			}
		}
		if len(notifications) < notificationPageLimit {
			return nil
		}
	}
}

func (e *Engine) dismissNotification(ctx context.Context, n mastodon.Notification) error {
	e.logger.Info("dismissing_notification", "id", n.ID, "type", n.Type)
	return e.api.DismissNotification(ctx, n.ID)
}
