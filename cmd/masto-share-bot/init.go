package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rustyechelle/masto-share-bot/internal/pathutil"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type defaultLoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type defaultBotConfig struct {
	Type                       string `yaml:"type"`
	BaseURL                    string `yaml:"base_url"`
	APIKey                     string `yaml:"api_key"`
	PersistentConnections      bool   `yaml:"persistent_connections"`
	TimelineCheckFrequency     int    `yaml:"timeline_check_frequency"`
	NotificationCheckFrequency int    `yaml:"notification_check_frequency"`
	BoostLimit                 int    `yaml:"boost_limit"`
	UserLimit                  int    `yaml:"user_limit"`
}

type defaultConfig struct {
	StateDir string                      `yaml:"state_dir"`
	Logging  defaultLoggingConfig        `yaml:"logging"`
	Bots     map[string]defaultBotConfig `yaml:"bots"`
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Initialize a config.yaml with a sample bot identity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "~/.masto-share-bot/"
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = args[0]
			}
			dir = pathutil.ExpandHomePath(dir)
			if strings.TrimSpace(dir) == "" {
				return fmt.Errorf("invalid dir")
			}
			dir = filepath.Clean(dir)

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			cfgPath := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			}

			body, err := renderDefaultConfig(dir)
			if err != nil {
				return err
			}
			if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
				return err
			}

			fmt.Printf("initialized %s\n", cfgPath)
			return nil
		},
	}

	return cmd
}

func renderDefaultConfig(stateDir string) (string, error) {
	cfg := defaultConfig{
		StateDir: stateDir,
		Logging: defaultLoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Bots: map[string]defaultBotConfig{
			"mybot": {
				Type:                       "AutoShareTags",
				BaseURL:                    "https://mastodon.example",
				APIKey:                     "env:MYBOT_API_KEY",
				PersistentConnections:      true,
				TimelineCheckFrequency:     60,
				NotificationCheckFrequency: 30,
				BoostLimit:                 10,
				UserLimit:                  100,
			},
		},
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("render config: %w", err)
	}

	header := "# masto-share-bot configuration.\n" +
		"# Check frequencies are in seconds. api_key supports env:NAME indirection\n" +
		"# so access tokens stay out of this file.\n"
	return header + string(out), nil
}
