package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used across the API. Deadlines carry
// no time-of-day significance.
const DateLayout = "2006-01-02"

// ParseDate parses "2006-01-02", falling back to RFC3339 for clients that
// send full timestamps. The result is truncated to the calendar date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// EndOfDay pushes a calendar date to 23:59:59 so deadline comparisons include
// the deadline day itself.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
