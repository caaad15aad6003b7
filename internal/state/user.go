package state

import "time"

const dayLayout = "20060102"

// Today returns the UTC day stamp used for daily usage accounting.
func Today(now time.Time) string {
	return now.UTC().Format(dayLayout)
}

// DailyUse tracks per-day action counters. Counters from a previous day are
// dead weight: accessors report zero whenever Day is not the current UTC day.
type DailyUse struct {
	Day      string         `json:"day,omitempty"`
	Counters map[string]int `json:"counters,omitempty"`
}

// UserRecord is the persisted per-user opt-in and quota state, keyed by the
// user's URI. The zero value is a valid record for an unknown user.
type UserRecord struct {
	Boost    bool     `json:"boost,omitempty"`
	Blocked  bool     `json:"blocked,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
	Use      DailyUse `json:"use,omitempty"`
}

// DailyUseCount returns the counter for key, or 0 when the stored day is not
// the current UTC day.
func (r UserRecord) DailyUseCount(key string, now time.Time) int {
	if r.Use.Day != Today(now) {
		return 0
	}
	return r.Use.Counters[key]
}

// SetDailyUseCount stamps today and records count for key. A rollover to a
// new day discards every other counter.
func (r *UserRecord) SetDailyUseCount(key string, count int, now time.Time) {
	today := Today(now)
	if r.Use.Day != today || r.Use.Counters == nil {
		r.Use.Counters = make(map[string]int)
	}
	r.Use.Day = today
	r.Use.Counters[key] = count
}
