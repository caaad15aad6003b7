package bot

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries the per-bot-identity settings from the `bots.<identifier>`
// config section.
type Config struct {
	Identifier string
	Type       string
	BaseURL    string
	APIKey     string
	// PersistentConnections keeps HTTP connections alive between calls.
	PersistentConnections bool
	TimelineCheckFrequency     time.Duration
	NotificationCheckFrequency time.Duration
	// BoostLimit caps per-user boosts per UTC day.
	BoostLimit int
	// UserLimit caps how many users may be opted in at once.
	UserLimit int
}

const (
	defaultTimelineCheckFrequency     = 60 * time.Second
	defaultNotificationCheckFrequency = 30 * time.Second
	defaultBoostLimit                 = 10
	defaultUserLimit                  = 100
)

// ConfigFromViper resolves the settings for identifier. Secrets may use
// `env:NAME` indirection so tokens stay out of config files.
func ConfigFromViper(identifier string) (Config, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Config{}, fmt.Errorf("empty bot identifier")
	}
	section := viper.Sub("bots." + identifier)
	if section == nil {
		return Config{}, fmt.Errorf("bot %q: missing config section", identifier)
	}

	section.SetDefault("persistent_connections", true)
	section.SetDefault("timeline_check_frequency", defaultTimelineCheckFrequency.Seconds())
	section.SetDefault("notification_check_frequency", defaultNotificationCheckFrequency.Seconds())
	section.SetDefault("boost_limit", defaultBoostLimit)
	section.SetDefault("user_limit", defaultUserLimit)

	cfg := Config{
		Identifier:                 identifier,
		Type:                       strings.TrimSpace(section.GetString("type")),
		BaseURL:                    strings.TrimSpace(section.GetString("base_url")),
		PersistentConnections:      section.GetBool("persistent_connections"),
		TimelineCheckFrequency:     time.Duration(section.GetInt("timeline_check_frequency")) * time.Second,
		NotificationCheckFrequency: time.Duration(section.GetInt("notification_check_frequency")) * time.Second,
		BoostLimit:                 section.GetInt("boost_limit"),
		UserLimit:                  section.GetInt("user_limit"),
	}
	if cfg.Type == "" {
		return Config{}, fmt.Errorf("bot %q: missing type", identifier)
	}
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("bot %q: missing base_url", identifier)
	}

	apiKey, err := resolveSecret(section.GetString("api_key"))
	if err != nil {
		return Config{}, fmt.Errorf("bot %q: api_key: %w", identifier, err)
	}
	cfg.APIKey = apiKey

	return cfg, nil
}

// resolveSecret returns value as-is, or the named environment variable when
// value uses the `env:NAME` form.
func resolveSecret(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("missing value")
	}
	const envPrefix = "env:"
	if !strings.HasPrefix(value, envPrefix) {
		return value, nil
	}
	name := strings.TrimSpace(strings.TrimPrefix(value, envPrefix))
	resolved := os.Getenv(name)
	if resolved == "" {
		return "", fmt.Errorf("environment variable %s is not set", name)
	}
	return resolved, nil
}
