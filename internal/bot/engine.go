// Package bot implements the processing engine behind each configured bot
// identity: incremental timeline and notification polling, command
// interpretation, and quota-bounded boost actions.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/rustyechelle/masto-share-bot/internal/mastodon"
	"github.com/rustyechelle/masto-share-bot/internal/state"
)

const (
	cursorLastHomeID = "last_home_id"

	homeBootstrapLimit    = 10
	homePageLimit         = 20
	notificationPageLimit = 10

	// Processing for a bot is skipped while the server-reported remaining
	// quota is under this and the reset is still ahead.
	rateLimitSafety = 50

	useKeyBoosts = "boosts"
)

// API is the slice of the Mastodon client the engine drives. *mastodon.Client
// satisfies it; tests substitute fakes.
type API interface {
	HomeTimeline(ctx context.Context, sinceID string, limit int) ([]mastodon.Status, error)
	Notifications(ctx context.Context, limit int) ([]mastodon.Notification, error)
	GetStatus(ctx context.Context, id string) (*mastodon.Status, error)
	Reblog(ctx context.Context, id string) error
	Unreblog(ctx context.Context, id string) error
	DismissNotification(ctx context.Context, id string) error
	Follow(ctx context.Context, accountID string) error
	Unfollow(ctx context.Context, accountID string) error
	RateLimit() mastodon.RateLimitState
}

// Engine runs one bot identity. It is not safe for concurrent use; the
// scheduler drives each engine from a single goroutine.
type Engine struct {
	cfg      Config
	logger   *slog.Logger
	api      API
	users    *state.UserStore
	cursors  *state.CursorStore
	behavior Behavior

	clock func() time.Time

	lastHomePoll         time.Time
	lastNotificationPoll time.Time
}

func NewEngine(cfg Config, api API, users *state.UserStore, cursors *state.CursorStore, behavior Behavior, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:      cfg,
		logger:   logger.With("bot", cfg.Identifier),
		api:      api,
		users:    users,
		cursors:  cursors,
		behavior: behavior,
		clock:    time.Now,
	}
}

func (e *Engine) Identifier() string { return e.cfg.Identifier }

// Process runs one tick: a rate-limit gate, then the notification drain, then
// the home-timeline catch-up. Each stream is additionally gated by its own
// check frequency.
func (e *Engine) Process(ctx context.Context) error {
	if !e.rateLimitOK() {
		return nil
	}
	if err := e.processNotifications(ctx); err != nil {
		return err
	}
	return e.processHome(ctx)
}

// rateLimitOK consults the latest server-reported snapshot. Unknown state
// (fresh process, no response yet) counts as full quota.
func (e *Engine) rateLimitOK() bool {
	rl := e.api.RateLimit()
	now := e.clock()
	if rl.Known && !rl.ResetAt.IsZero() && rl.Remaining < rateLimitSafety && now.Before(rl.ResetAt) {
		e.logger.Info("rate_limit_backoff", "remaining", rl.Remaining, "reset_at", rl.ResetAt.Format(time.RFC3339))
		return false
	}
	return true
}
