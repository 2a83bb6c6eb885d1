// Package timeutil provides date-window helpers for deadline handling.
// All application timestamps are stored in UTC; these helpers keep the
// urgency and calendar queries consistent about day boundaries.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// Day is one calendar day.
const Day = 24 * time.Hour

// UrgencyWindow is how far ahead a scholarship deadline counts as urgent.
const UrgencyWindow = 7 * Day

// StartOfDay returns 00:00:00 UTC of t's day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59.999999999 UTC of t's day.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// DaysUntil returns whole days from now until t, negative when past.
func DaysUntil(now, t time.Time) int {
	return int(t.Sub(now).Hours() / 24)
}

// WithinWindow reports whether t falls inside [now, now+window].
func WithinWindow(now, t time.Time, window time.Duration) bool {
	if t.Before(now) {
		return false
	}
	return t.Sub(now) <= window
}

// ClampRange orders a date range and widens it to whole days, so a
// calendar query for (from, to) covers both boundary days fully.
func ClampRange(from, to time.Time) (time.Time, time.Time) {
	if to.Before(from) {
		from, to = to, from
	}
	return StartOfDay(from), EndOfDay(to)
}
