package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHomePath expands a leading "~" or "~/" to the current user's home
// directory. Paths without a leading tilde are returned unchanged.
func ExpandHomePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return ""
	}
	if p == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

// ResolveStateDir expands and cleans a configured state directory, falling
// back to fallback when the configured value is empty.
func ResolveStateDir(configured, fallback string) string {
	dir := strings.TrimSpace(configured)
	if dir == "" {
		dir = fallback
	}
	dir = ExpandHomePath(dir)
	if dir == "" {
		return ""
	}
	return filepath.Clean(dir)
}
