package bot

import (
	"context"
	"fmt"

	"github.com/rustyechelle/masto-share-bot/internal/mastodon"
)

// Behavior is the bot-type-specific handling of polled items. The engine owns
// polling, state, and quota mechanics; the behavior decides what an item
// means.
type Behavior interface {
	HandleNotification(ctx context.Context, e *Engine, n mastodon.Notification) error
	HandleHomeStatus(ctx context.Context, e *Engine, st mastodon.Status) error
}

// BehaviorForType maps the configured bot type to its implementation.
func BehaviorForType(botType string) (Behavior, error) {
	switch botType {
	case "AutoShareTags":
		return AutoShareTags{}, nil
	default:
		return nil, fmt.Errorf("invalid bot type %q", botType)
	}
}
