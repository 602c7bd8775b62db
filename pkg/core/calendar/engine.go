// Package calendar implements the ride scheduling engine: selecting the first
// quota eligible days from an effective start date, recalculating on weekday or
// start date changes, and checking round trip shift compatibility.
//
// Every function is pure. Views are rebuilt wholesale on each call.
package calendar

import (
	"fmt"
	"time"

	"github.com/jakechorley/ridepass/pkg/core/dates"
)

// eligible reports whether a day can carry a ride for the weekday set
func eligible(d Day, weekdays Weekdays) bool {
	return d.Available && weekdays.Contains(dates.WeekdayIndex(d.Date))
}

// EarliestStart returns the first available day whose weekday is in the set
func EarliestStart(days []Day, weekdays Weekdays) (time.Time, bool) {
	for _, d := range days {
		if eligible(d, weekdays) {
			return d.Date, true
		}
	}
	return time.Time{}, false
}

// BuildSelection maps days to views, selecting the first quota eligible days on
// or after start. A zero start is derived with EarliestStart; if no day is
// eligible every view is returned unselected.
//
// Selection is greedy and never backtracks: once the quota is met, later
// eligible days stay unselected.
func BuildSelection(days []Day, weekdays Weekdays, quota int, start time.Time) []DateView {
	if start.IsZero() {
		derived, ok := EarliestStart(days, weekdays)
		if !ok {
			views := make([]DateView, len(days))
			for i, d := range days {
				views[i] = newDateView(d)
			}
			return views
		}
		start = derived
	}

	views := make([]DateView, len(days))
	count := 0
	first, last := -1, -1
	for i, d := range days {
		views[i] = newDateView(d)
		if count >= quota || d.Date.Before(start) || !eligible(d, weekdays) {
			continue
		}
		views[i].IsSelected = true
		count++
		if first < 0 {
			first = i
		}
		last = i
	}

	if first >= 0 {
		views[first].IsStartDate = true
		views[last].IsEndDate = true
	}
	return views
}

// RecalculateForStartDate rebuilds the selection from an explicit start date.
// It never returns an under-quota selection.
func RecalculateForStartDate(days []Day, weekdays Weekdays, quota int, newStart, maxValidStart time.Time) ([]DateView, error) {
	if newStart.After(maxValidStart) {
		return nil, recalcError(ErrStartAfterHorizon,
			"Start date cannot be after "+dates.FormatDisplay(maxValidStart))
	}

	views := BuildSelection(days, weekdays, quota, newStart)
	if SelectedCount(views) < quota {
		if eligibleCount(days, weekdays) < quota {
			return nil, recalcError(ErrQuotaUnreachable,
				fmt.Sprintf("Not enough available dates in the calendar to fill %d rides", quota))
		}
		return nil, recalcError(ErrInsufficientDates,
			fmt.Sprintf("Not enough available dates to fill %d rides from selected start", quota))
	}
	return views, nil
}

// RecalculateForWeekdays rebuilds the selection for a new weekday set, keeping
// currentStart when set. When the result is short and the start lies after
// today, it retries once from the earliest eligible day, provided that day is
// not after maxValidStart.
func RecalculateForWeekdays(days []Day, weekdays Weekdays, quota int, currentStart, maxValidStart, today time.Time) ([]DateView, error) {
	if weekdays.Len() == 0 {
		return nil, recalcError(ErrNoWeekdays, "At least one weekday must be selected")
	}

	earliest, ok := EarliestStart(days, weekdays)
	if !ok {
		return nil, recalcError(ErrQuotaUnreachable, "No available dates for selected weekdays")
	}

	start := currentStart
	if start.IsZero() {
		start = earliest
	}

	views := BuildSelection(days, weekdays, quota, start)
	if SelectedCount(views) < quota && start.After(today) &&
		!earliest.Equal(start) && !earliest.After(maxValidStart) {
		views = BuildSelection(days, weekdays, quota, earliest)
	}

	if SelectedCount(views) < quota {
		return nil, recalcError(ErrCannotFillWeekdays,
			fmt.Sprintf("Cannot fill %d rides with selected weekdays", quota))
	}
	return views, nil
}

// ValidatePairedShiftCompatibility reports whether the paired shift of a round
// trip can still fill its own quota with the proposed weekdays
func ValidatePairedShiftCompatibility(days []Day, proposed Weekdays, quota int) bool {
	if proposed.Len() == 0 {
		return false
	}
	views := BuildSelection(days, proposed, quota, time.Time{})
	return SelectedCount(views) >= quota
}

func eligibleCount(days []Day, weekdays Weekdays) int {
	n := 0
	for _, d := range days {
		if eligible(d, weekdays) {
			n++
		}
	}
	return n
}

// SelectedDates returns the selected dates in chronological order
func SelectedDates(views []DateView) []string {
	selected := []string{}
	for _, v := range views {
		if v.IsSelected {
			selected = append(selected, v.Date)
		}
	}
	return selected
}

func SelectedCount(views []DateView) int {
	n := 0
	for _, v := range views {
		if v.IsSelected {
			n++
		}
	}
	return n
}

// StartDate returns the date marked as the start of the selection
func StartDate(views []DateView) (time.Time, bool) {
	for _, v := range views {
		if v.IsStartDate {
			return v.Time, true
		}
	}
	return time.Time{}, false
}

// DateRangeText returns the first and last selected dates in display format.
// ok is false when nothing is selected.
func DateRangeText(views []DateView) (start, end string, ok bool) {
	var first, last *DateView
	for i := range views {
		if !views[i].IsSelected {
			continue
		}
		if first == nil {
			first = &views[i]
		}
		last = &views[i]
	}
	if first == nil {
		return "", "", false
	}
	return dates.FormatDisplay(first.Time), dates.FormatDisplay(last.Time), true
}

// Summary describes a selection, e.g. "22 rides, 05 Jan to 03 Feb"
func Summary(views []DateView) string {
	start, end, ok := DateRangeText(views)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d rides, %s to %s", SelectedCount(views), start, end)
}
