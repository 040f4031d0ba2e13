// Package derive holds the pure derived-field computations run on read
// or immediately before persisting. Everything here is deterministic in
// its inputs; callers pass the clock.
package derive

import (
	"fmt"
	"math"
	"time"
)

const expirySoonWindow = 30 * 24 * time.Hour

// ExpiryStatus classifies a credential by its expiry date.
// expired if expiry < now; expiring_soon if within 30 days; active otherwise.
func ExpiryStatus(expiry, now time.Time) string {
	switch {
	case expiry.Before(now):
		return "expired"
	case expiry.Sub(now) <= expirySoonWindow:
		return "expiring_soon"
	default:
		return "active"
	}
}

// DaysUntilExpiry returns whole days from now to expiry, negative once past.
func DaysUntilExpiry(expiry, now time.Time) int {
	return int(math.Floor(expiry.Sub(now).Hours() / 24))
}

// Item is the minimal checklist-line view the stats computation needs.
type Item struct {
	Required  bool
	Completed bool
}

// Stats is the recomputed summary of a checklist instance.
type Stats struct {
	TotalItems        int
	CompletedItems    int
	RequiredItems     int
	CompletedRequired int
	Percentage        int
	Status            string // completed | partial
}

// CompletionStats recomputes checklist counters. Percentage is
// round(completed/total*100) with 0 items yielding 0. Status is
// "completed" when all required items are done; with no required items,
// when all items are done.
func CompletionStats(items []Item) Stats {
	s := Stats{TotalItems: len(items)}
	for _, it := range items {
		if it.Completed {
			s.CompletedItems++
		}
		if it.Required {
			s.RequiredItems++
			if it.Completed {
				s.CompletedRequired++
			}
		}
	}
	if s.TotalItems > 0 {
		s.Percentage = int(math.Round(float64(s.CompletedItems) / float64(s.TotalItems) * 100))
	}
	done := false
	if s.RequiredItems > 0 {
		done = s.CompletedRequired == s.RequiredItems
	} else {
		done = s.TotalItems > 0 && s.CompletedItems == s.TotalItems
	}
	if done {
		s.Status = "completed"
	} else {
		s.Status = "partial"
	}
	return s
}

// FormatSequential renders a document number like "CO-2025-0004" where
// seq is the count of documents already issued for that prefix and year.
func FormatSequential(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq+1)
}

// Overdue reports whether a record with an active (non-terminal) status
// has slipped past its due date.
func Overdue(active bool, due, now time.Time) bool {
	return active && !due.IsZero() && due.Before(now)
}

// DurationMinutes returns the rounded length of [start, end] in minutes.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

// AllDayEnd derives the implied end of an all-day event that omitted
// one: 23:59:59.999 on the start's calendar day.
func AllDayEnd(start time.Time) time.Time {
	y, m, d := start.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, start.Location())
}
