package timeutil

import "time"

// DateLayout is the canonical calendar-date format (YYYY-MM-DD) used as the
// key for cache entries and schedule lookups.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date string into a midnight-UTC time.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as its canonical YYYY-MM-DD key.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DateOf truncates a time to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b.
// Negative if b is before a. Both inputs are normalized to dates first.
func DaysBetween(a, b time.Time) int {
	a = DateOf(a)
	b = DateOf(b)
	return int(b.Sub(a).Hours() / 24)
}

// MonthRange returns the first and last calendar days of the given month, UTC.
func MonthRange(year int, month time.Month) (first, last time.Time) {
	first = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}
