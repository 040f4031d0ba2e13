package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestExpiryStatus(t *testing.T) {
	assert.Equal(t, "expiring_soon", ExpiryStatus(now.AddDate(0, 0, 29), now))
	assert.Equal(t, "expired", ExpiryStatus(now.AddDate(0, 0, -1), now))
	assert.Equal(t, "active", ExpiryStatus(now.AddDate(0, 0, 90), now))
	// Boundary: exactly 30 days out is still expiring_soon.
	assert.Equal(t, "expiring_soon", ExpiryStatus(now.Add(30*24*time.Hour), now))
}

func TestDaysUntilExpiry(t *testing.T) {
	assert.Equal(t, 29, DaysUntilExpiry(now.AddDate(0, 0, 29), now))
	assert.Equal(t, -1, DaysUntilExpiry(now.Add(-2*time.Hour), now))
}

func TestCompletionStatsMixed(t *testing.T) {
	s := CompletionStats([]Item{
		{Required: true, Completed: true},
		{Required: true, Completed: false},
		{Required: false, Completed: true},
	})
	assert.Equal(t, 3, s.TotalItems)
	assert.Equal(t, 2, s.CompletedItems)
	assert.Equal(t, 2, s.RequiredItems)
	assert.Equal(t, 1, s.CompletedRequired)
	assert.Equal(t, 67, s.Percentage)
	assert.Equal(t, "partial", s.Status)
}

func TestCompletionStatsRequiredDoneOptionalPending(t *testing.T) {
	s := CompletionStats([]Item{
		{Required: true, Completed: true},
		{Required: true, Completed: true},
		{Required: false, Completed: false},
	})
	assert.Equal(t, "completed", s.Status)
	assert.Equal(t, 67, s.Percentage)
}

func TestCompletionStatsNoRequired(t *testing.T) {
	all := CompletionStats([]Item{{Completed: true}, {Completed: true}})
	assert.Equal(t, "completed", all.Status)
	assert.Equal(t, 100, all.Percentage)

	some := CompletionStats([]Item{{Completed: true}, {Completed: false}})
	assert.Equal(t, "partial", some.Status)
}

func TestCompletionStatsEmpty(t *testing.T) {
	s := CompletionStats(nil)
	assert.Equal(t, 0, s.Percentage)
	assert.Equal(t, "partial", s.Status)
}

func TestFormatSequential(t *testing.T) {
	assert.Equal(t, "CO-2025-0004", FormatSequential("CO", 2025, 3))
	assert.Equal(t, "RPT-2024-0001", FormatSequential("RPT", 2024, 0))
	assert.Equal(t, "WO-2025-10000", FormatSequential("WO", 2025, 9999))
}

func TestOverdue(t *testing.T) {
	assert.True(t, Overdue(true, now.Add(-time.Hour), now))
	assert.False(t, Overdue(false, now.Add(-time.Hour), now))
	assert.False(t, Overdue(true, now.Add(time.Hour), now))
	assert.False(t, Overdue(true, time.Time{}, now))
}

func TestDurationMinutes(t *testing.T) {
	assert.Equal(t, 90, DurationMinutes(now, now.Add(90*time.Minute)))
	assert.Equal(t, 1, DurationMinutes(now, now.Add(61*time.Second)))
}

func TestAllDayEnd(t *testing.T) {
	start := time.Date(2025, 3, 9, 8, 30, 0, 0, time.UTC)
	end := AllDayEnd(start)
	require.Equal(t, start.Day(), end.Day())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 59, end.Second())
	assert.Equal(t, 999_000_000, end.Nanosecond())
}
