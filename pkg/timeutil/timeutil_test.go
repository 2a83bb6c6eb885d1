package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartAndEndOfDay(t *testing.T) {
	at := time.Date(2026, 3, 15, 13, 45, 30, 0, time.UTC)

	start := StartOfDay(at)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), start)

	end := EndOfDay(at)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), StartOfDay(end))
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(now, now))
	assert.Equal(t, 3, DaysUntil(now, now.Add(3*Day)))
	assert.Equal(t, 0, DaysUntil(now, now.Add(12*time.Hour)))
	assert.Equal(t, -2, DaysUntil(now, now.Add(-2*Day)))
}

func TestWithinWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.True(t, WithinWindow(now, now, UrgencyWindow))
	assert.True(t, WithinWindow(now, now.Add(7*Day), UrgencyWindow))
	assert.False(t, WithinWindow(now, now.Add(7*Day+time.Second), UrgencyWindow))
	assert.False(t, WithinWindow(now, now.Add(-time.Second), UrgencyWindow), "past deadlines are not urgent")
}

func TestClampRange(t *testing.T) {
	from := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 20, 9, 30, 0, 0, time.UTC)

	gotFrom, gotTo := ClampRange(from, to)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), gotFrom)
	assert.Equal(t, 20, gotTo.Day())
	assert.Equal(t, 23, gotTo.Hour())

	// Reversed input is reordered.
	gotFrom2, gotTo2 := ClampRange(to, from)
	assert.Equal(t, gotFrom, gotFrom2)
	assert.Equal(t, gotTo, gotTo2)
}
