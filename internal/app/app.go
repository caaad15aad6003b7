// Package app drives the configured bots: one scheduler loop, every bot
// ticked once per iteration, repeating until the context is cancelled.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const tickSleep = 1 * time.Second

// Bot is one schedulable bot identity. *bot.Engine satisfies it.
type Bot interface {
	Identifier() string
	Process(ctx context.Context) error
}

type App struct {
	logger *slog.Logger
	bots   []Bot
}

func New(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{logger: logger}
}

func (a *App) Add(b Bot) {
	a.bots = append(a.bots, b)
}

// ProcessOnce ticks every bot in order. A failing bot is logged and isolated:
// it neither stops the remaining bots nor the next iteration.
func (a *App) ProcessOnce(ctx context.Context) {
	for _, b := range a.bots {
		if ctx.Err() != nil {
			return
		}
		runID := uuid.NewString()
		if err := b.Process(ctx); err != nil {
			a.logger.Error("bot_tick_error", "bot", b.Identifier(), "run_id", runID, "error", err.Error())
		}
	}
}

// ProcessLoop runs ProcessOnce until ctx is cancelled. Cancellation is
// cooperative: an in-flight tick finishes before the loop exits.
func (a *App) ProcessLoop(ctx context.Context) {
	a.logger.Info("process_loop_start", "bots", len(a.bots))

	for {
		a.ProcessOnce(ctx)

		timer := time.NewTimer(tickSleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			a.logger.Info("process_loop_exit")
			return
		case <-timer.C:
		}
	}
}
