package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rustyechelle/masto-share-bot/internal/app"
	"github.com/rustyechelle/masto-share-bot/internal/bot"
	"github.com/rustyechelle/masto-share-bot/internal/fsstore"
	"github.com/rustyechelle/masto-share-bot/internal/logutil"
	"github.com/rustyechelle/masto-share-bot/internal/mastodon"
	"github.com/rustyechelle/masto-share-bot/internal/state"
	"github.com/rustyechelle/masto-share-bot/internal/statepaths"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <identifier>...",
		Short: "Run the processing loop for the given bot identities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			once, _ := cmd.Flags().GetBool("once")

			a := app.New(logger)
			var locks []*fsstore.DirLock
			defer func() {
				for _, l := range locks {
					_ = l.Release()
				}
			}()

			seen := make(map[string]bool)
			for _, identifier := range args {
				if seen[identifier] {
					return fmt.Errorf("bot %q: given more than once", identifier)
				}
				seen[identifier] = true

				cfg, err := bot.ConfigFromViper(identifier)
				if err != nil {
					return err
				}
				behavior, err := bot.BehaviorForType(cfg.Type)
				if err != nil {
					return fmt.Errorf("bot %q: %w", identifier, err)
				}

				botDir := statepaths.BotDir(identifier)
				if err := fsstore.EnsureDir(botDir); err != nil {
					return fmt.Errorf("bot %q: %w", identifier, err)
				}
				lock, err := fsstore.AcquireDirLock(botDir)
				if err != nil {
					return fmt.Errorf("bot %q: %w", identifier, err)
				}
				locks = append(locks, lock)

				botLogger := logger.With("bot", identifier)
				client := mastodon.New(mastodon.Options{
					BaseURL:    cfg.BaseURL,
					Token:      cfg.APIKey,
					Persistent: cfg.PersistentConnections,
					Logger:     botLogger,
				})
				users := state.NewUserStore(statepaths.UsersPath(identifier), botLogger)
				cursors := state.NewCursorStore(statepaths.CursorsPath(identifier), botLogger)

				a.Add(bot.NewEngine(cfg, client, users, cursors, behavior, logger))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once {
				a.ProcessOnce(ctx)
				return nil
			}
			a.ProcessLoop(ctx)
			return nil
		},
	}

	cmd.Flags().Bool("once", false, "Run a single processing pass for each bot, then exit.")

	return cmd
}
