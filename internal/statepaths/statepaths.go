// Package statepaths resolves on-disk locations for per-bot durable state.
package statepaths

import (
	"path/filepath"

	"github.com/rustyechelle/masto-share-bot/internal/pathutil"
	"github.com/spf13/viper"
)

const (
	UsersFilename   = "users.json"
	CursorsFilename = "cursors.json"

	defaultStateDir = "~/.masto-share-bot"
)

func StateDir() string {
	return pathutil.ResolveStateDir(viper.GetString("state_dir"), defaultStateDir)
}

// BotDir is the directory holding one bot's state files, keyed by the
// bot's configured identifier.
func BotDir(identifier string) string {
	return filepath.Join(StateDir(), identifier)
}

func UsersPath(identifier string) string {
	return filepath.Join(BotDir(identifier), UsersFilename)
}

func CursorsPath(identifier string) string {
	return filepath.Join(BotDir(identifier), CursorsFilename)
}
