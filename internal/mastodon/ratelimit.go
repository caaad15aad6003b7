package mastodon

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Remaining requests below this emit a warning log.
const rateLimitLowWater = 5

// RateLimitState is the latest server-reported quota snapshot. It lives in
// memory only; a restarted process assumes full quota until the first response.
type RateLimitState struct {
	Remaining int
	// Known is false until the server has reported a remaining value.
	Known   bool
	ResetAt time.Time
}

func (c *Client) updateRateLimit(h http.Header) {
	limit := headerInt(h.Get("x-ratelimit-limit"))
	remaining := headerInt(h.Get("x-ratelimit-remaining"))
	reset := strings.TrimSpace(h.Get("x-ratelimit-reset"))

	c.mu.Lock()
	defer c.mu.Unlock()

	if remaining != nil {
		if *remaining < rateLimitLowWater {
			limitStr := "?"
			if limit != nil {
				limitStr = strconv.Itoa(*limit)
			}
			c.logger.Warn("rate_limit_alert", "remaining", *remaining, "limit", limitStr, "reset", reset)
		}
		c.rl.Remaining = *remaining
		c.rl.Known = true
	}

	if reset != "" {
		if t, ok := parseResetDate(reset); ok {
			c.rl.ResetAt = t
		}
	}
}

// RateLimit returns the snapshot taken from the most recent response.
func (c *Client) RateLimit() RateLimitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rl
}

func headerInt(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

// parseResetDate accepts RFC3339-ish timestamps, with or without a trailing
// "Z" or an explicit offset. Malformed values are ignored, not fatal.
func parseResetDate(value string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	// Some servers omit the zone entirely; treat those as UTC.
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", value); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
