package timeutil

import (
	"testing"
	"time"
)

func TestDateOfNormalizesToMidnightUTC(t *testing.T) {
	in := time.Date(2024, 3, 10, 18, 45, 12, 0, time.UTC)
	got := DateOf(in)
	want := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 27, 1, 0, 0, 0, time.UTC)

	if got := DaysBetween(a, b); got != 17 {
		t.Fatalf("expected 17 days, got %d", got)
	}
	if got := DaysBetween(b, a); got != -17 {
		t.Fatalf("expected -17 days, got %d", got)
	}
}

func TestFormatAndParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := FormatDate(d); got != "2024-03-10" {
		t.Fatalf("expected 2024-03-10, got %s", got)
	}
}

func TestMonthRange(t *testing.T) {
	first, last := MonthRange(2024, time.March)
	if FormatDate(first) != "2024-03-01" {
		t.Fatalf("expected first day 2024-03-01, got %s", FormatDate(first))
	}
	if FormatDate(last) != "2024-03-31" {
		t.Fatalf("expected last day 2024-03-31, got %s", FormatDate(last))
	}

	// Leap-year February.
	_, last = MonthRange(2024, time.February)
	if last.Day() != 29 {
		t.Fatalf("expected 29 days in 2024-02, got %d", last.Day())
	}
}
