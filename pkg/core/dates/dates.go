// Package dates provides the calendar date primitives used by the scheduling
// engine. Dates travel as dd-mm-yyyy strings and are handled internally as
// time.Time values at midnight UTC, so one local calendar is assumed.
package dates

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the wire format for calendar dates (dd-mm-yyyy)
const Layout = "02-01-2006"

const displayLayout = "02 Jan"

// ErrInvalidDate is returned when a date string is not in dd-mm-yyyy format
var ErrInvalidDate = errors.New("invalid date")

// Parse parses a dd-mm-yyyy date string
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected dd-mm-yyyy", ErrInvalidDate, s)
	}
	return t, nil
}

// Format formats a date as dd-mm-yyyy
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FormatDisplay formats a date for display, e.g. "05 Jan"
func FormatDisplay(t time.Time) string {
	return t.Format(displayLayout)
}

// FormatRange formats a date range for display, e.g. "05 Jan to 02 Feb"
func FormatRange(start, end time.Time) string {
	return FormatDisplay(start) + " to " + FormatDisplay(end)
}

// MonthYear returns the section header for a date, e.g. "Jan 2026"
func MonthYear(t time.Time) string {
	return t.Format("Jan 2006")
}

// WeekdayIndex returns the weekday of t with Monday as 0 and Sunday as 6
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsWeekend reports whether t falls on a Saturday or Sunday
func IsWeekend(t time.Time) bool {
	return WeekdayIndex(t) >= 5
}

// TruncateToDay returns midnight UTC of the calendar day of t
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day
func Today() time.Time {
	return TruncateToDay(time.Now())
}

// Range returns count consecutive days starting at start (inclusive)
func Range(start time.Time, count int) []time.Time {
	if count <= 0 {
		return nil
	}
	start = TruncateToDay(start)
	days := make([]time.Time, count)
	for i := range count {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}
