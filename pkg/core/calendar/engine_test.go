package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/ridepass/pkg/core/dates"
)

// Monday 5 January 2026
var jan5 = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

func date(day, month int) time.Time {
	return time.Date(2026, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// makeDays returns n consecutive available days from start, optionally mutated
func makeDays(start time.Time, n int, mutate func(i int, d *Day)) []Day {
	days := make([]Day, n)
	for i, t := range dates.Range(start, n) {
		days[i] = Day{Date: t, Raw: dates.Format(t), Available: true}
		if mutate != nil {
			mutate(i, &days[i])
		}
	}
	return days
}

func holidaysAt(remarks map[int]string) func(int, *Day) {
	return func(i int, d *Day) {
		if remark, ok := remarks[i]; ok {
			d.Available = false
			d.Holiday = true
			d.HolidayRemark = remark
		}
	}
}

func selectedViews(views []DateView) []DateView {
	var selected []DateView
	for _, v := range views {
		if v.IsSelected {
			selected = append(selected, v)
		}
	}
	return selected
}

func assertMarkers(t *testing.T, views []DateView) {
	t.Helper()
	starts, ends := 0, 0
	var startTime, endTime time.Time
	for _, v := range views {
		if v.IsStartDate {
			starts++
			startTime = v.Time
			assert.True(t, v.IsSelected, "start marker on unselected day %s", v.Date)
		}
		if v.IsEndDate {
			ends++
			endTime = v.Time
			assert.True(t, v.IsSelected, "end marker on unselected day %s", v.Date)
		}
	}
	if SelectedCount(views) == 0 {
		assert.Zero(t, starts)
		assert.Zero(t, ends)
		return
	}
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, ends)
	assert.False(t, startTime.After(endTime))
}

func TestBuildSelection_FirstQuotaWeekdays(t *testing.T) {
	days := makeDays(jan5, 60, nil)

	views := BuildSelection(days, DefaultWeekdays, 22, time.Time{})

	require.Len(t, views, 60)
	assert.Equal(t, 22, SelectedCount(views))
	selected := selectedViews(views)
	assert.Equal(t, "05-01-2026", selected[0].Date)
	assert.Equal(t, "03-02-2026", selected[21].Date)
	assert.True(t, selected[0].IsStartDate)
	assert.True(t, selected[21].IsEndDate)
	assertMarkers(t, views)

	start, end, ok := DateRangeText(views)
	require.True(t, ok)
	assert.Equal(t, "05 Jan", start)
	assert.Equal(t, "03 Feb", end)
}

func TestBuildSelection_SkipsHolidays(t *testing.T) {
	days := makeDays(jan5, 60, holidaysAt(map[int]string{8: "Local Festival", 17: "Strike"}))

	views := BuildSelection(days, DefaultWeekdays, 22, time.Time{})

	assert.Equal(t, 22, SelectedCount(views))
	assert.False(t, views[8].IsSelected)
	assert.False(t, views[17].IsSelected)
	assert.True(t, views[8].IsHoliday)
	assert.Equal(t, "Strike", views[17].HolidayRemark)

	selected := selectedViews(views)
	assert.Equal(t, "05-01-2026", selected[0].Date)
	assert.Equal(t, "05-02-2026", selected[21].Date)
	assertMarkers(t, views)
}

func TestBuildSelection_StartsFromFirstEligibleDay(t *testing.T) {
	// Saturday start, Monday unavailable
	days := makeDays(date(3, 1), 30, func(i int, d *Day) {
		if i == 2 {
			d.Available = false
		}
	})

	views := BuildSelection(days, DefaultWeekdays, 3, time.Time{})

	assert.Equal(t, []string{"06-01-2026", "07-01-2026", "08-01-2026"}, SelectedDates(views))
	start, ok := StartDate(views)
	require.True(t, ok)
	assert.Equal(t, date(6, 1), start)
}

func TestBuildSelection_ExplicitStart(t *testing.T) {
	days := makeDays(jan5, 60, nil)

	views := BuildSelection(days, NewWeekdays(Monday, Wednesday), 4, date(8, 1))

	assert.Equal(t, []string{"12-01-2026", "14-01-2026", "19-01-2026", "21-01-2026"}, SelectedDates(views))
	assertMarkers(t, views)
}

func TestBuildSelection_NoEligibleDay(t *testing.T) {
	days := makeDays(jan5, 14, func(i int, d *Day) {
		if dates.WeekdayIndex(d.Date) == Tuesday {
			d.Available = false
		}
	})

	views := BuildSelection(days, NewWeekdays(Tuesday), 5, time.Time{})

	require.Len(t, views, 14)
	assert.Zero(t, SelectedCount(views))
	assertMarkers(t, views)
	_, ok := StartDate(views)
	assert.False(t, ok)
	_, _, ok = DateRangeText(views)
	assert.False(t, ok)
	assert.Empty(t, Summary(views))
}

func TestBuildSelection_GreedyDoesNotBacktrack(t *testing.T) {
	days := makeDays(jan5, 21, nil)

	views := BuildSelection(days, DefaultWeekdays, 3, date(14, 1))

	assert.Equal(t, []string{"14-01-2026", "15-01-2026", "16-01-2026"}, SelectedDates(views))
	for _, v := range views[:9] {
		assert.False(t, v.IsSelected, v.Date)
	}
}

func TestBuildSelection_Properties(t *testing.T) {
	days := makeDays(jan5, 45, func(i int, d *Day) {
		if i%7 == 3 || i == 11 || i == 29 {
			d.Available = false
		}
	})

	for set := Weekdays(1); set <= DefaultWeekdays; set++ {
		for _, quota := range []int{1, 5, 12, 22, 40} {
			for _, start := range []time.Time{{}, date(5, 1), date(10, 1), date(2, 2)} {
				views := BuildSelection(days, set, quota, start)
				require.Len(t, views, len(days))

				count := SelectedCount(views)
				assert.LessOrEqual(t, count, quota)

				effective := start
				if effective.IsZero() {
					effective, _ = EarliestStart(days, set)
				}
				if eligibleFrom(days, set, effective) >= quota {
					assert.Equal(t, quota, count, "set %s quota %d start %v", set, quota, start)
				}

				for _, v := range views {
					if v.IsWeekend {
						assert.False(t, v.IsSelected)
					}
					if v.IsSelected {
						assert.True(t, v.IsAvailable)
						assert.True(t, set.Contains(dates.WeekdayIndex(v.Time)))
						assert.False(t, v.Time.Before(effective))
					}
				}
				assertMarkers(t, views)
			}
		}
	}
}

func eligibleFrom(days []Day, set Weekdays, start time.Time) int {
	n := 0
	for _, d := range days {
		if !d.Date.Before(start) && eligible(d, set) {
			n++
		}
	}
	return n
}

func TestBuildSelection_Deterministic(t *testing.T) {
	days := makeDays(jan5, 60, holidaysAt(map[int]string{21: "Republic Day"}))

	first := BuildSelection(days, NewWeekdays(Monday, Tuesday, Thursday), 10, time.Time{})
	second := BuildSelection(days, NewWeekdays(Monday, Tuesday, Thursday), 10, time.Time{})

	assert.Equal(t, first, second)
}

func TestRecalculateForStartDate(t *testing.T) {
	days := makeDays(jan5, 60, nil)
	maxValidStart := date(1, 3)

	tests := []struct {
		name        string
		quota       int
		newStart    time.Time
		maxStart    time.Time
		wantKind    error
		wantMessage string
		wantFirst   string
		wantLast    string
	}{
		{
			name:      "valid start",
			quota:     22,
			newStart:  date(7, 1),
			maxStart:  maxValidStart,
			wantFirst: "07-01-2026",
			wantLast:  "05-02-2026",
		},
		{
			name:        "start after horizon",
			quota:       22,
			newStart:    date(20, 1),
			maxStart:    date(19, 1),
			wantKind:    ErrStartAfterHorizon,
			wantMessage: "Start date cannot be after 19 Jan",
		},
		{
			name:        "not enough days after start",
			quota:       22,
			newStart:    date(16, 2),
			maxStart:    maxValidStart,
			wantKind:    ErrInsufficientDates,
			wantMessage: "Not enough available dates to fill 22 rides from selected start",
		},
		{
			name:        "quota larger than the calendar",
			quota:       50,
			newStart:    date(5, 1),
			maxStart:    maxValidStart,
			wantKind:    ErrQuotaUnreachable,
			wantMessage: "Not enough available dates in the calendar to fill 50 rides",
		},
		{
			name:      "start on the horizon is allowed",
			quota:     2,
			newStart:  date(19, 1),
			maxStart:  date(19, 1),
			wantFirst: "19-01-2026",
			wantLast:  "20-01-2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := RecalculateForStartDate(days, DefaultWeekdays, tt.quota, tt.newStart, tt.maxStart)
			if tt.wantKind != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantKind)
				assert.EqualError(t, err, tt.wantMessage)
				assert.Nil(t, views)
				return
			}
			require.NoError(t, err)
			selected := SelectedDates(views)
			require.Len(t, selected, tt.quota)
			assert.Equal(t, tt.wantFirst, selected[0])
			assert.Equal(t, tt.wantLast, selected[len(selected)-1])
		})
	}
}

func TestRecalculateForWeekdays(t *testing.T) {
	days := makeDays(jan5, 60, nil)
	monToThu := NewWeekdays(Monday, Tuesday, Wednesday, Thursday)

	t.Run("empty weekday set", func(t *testing.T) {
		_, err := RecalculateForWeekdays(days, 0, 22, time.Time{}, date(19, 1), date(4, 1))
		assert.ErrorIs(t, err, ErrNoWeekdays)
		assert.EqualError(t, err, "At least one weekday must be selected")
	})

	t.Run("no eligible day", func(t *testing.T) {
		closed := makeDays(jan5, 60, func(_ int, d *Day) { d.Available = false })
		_, err := RecalculateForWeekdays(closed, DefaultWeekdays, 22, time.Time{}, date(19, 1), date(4, 1))
		assert.ErrorIs(t, err, ErrQuotaUnreachable)
		assert.EqualError(t, err, "No available dates for selected weekdays")
	})

	t.Run("keeps current start", func(t *testing.T) {
		views, err := RecalculateForWeekdays(days, monToThu, 4, date(7, 1), date(19, 1), date(4, 1))
		require.NoError(t, err)
		assert.Equal(t, []string{"07-01-2026", "08-01-2026", "12-01-2026", "13-01-2026"}, SelectedDates(views))
	})

	t.Run("derives start when none", func(t *testing.T) {
		views, err := RecalculateForWeekdays(days, NewWeekdays(Friday), 2, time.Time{}, date(19, 1), date(4, 1))
		require.NoError(t, err)
		assert.Equal(t, []string{"09-01-2026", "16-01-2026"}, SelectedDates(views))
	})

	t.Run("retries from earliest day when short", func(t *testing.T) {
		views, err := RecalculateForWeekdays(days, monToThu, 22, date(2, 2), date(19, 1), date(4, 1))
		require.NoError(t, err)
		selected := SelectedDates(views)
		require.Len(t, selected, 22)
		assert.Equal(t, "05-01-2026", selected[0])
		assert.Equal(t, "10-02-2026", selected[21])
	})

	t.Run("no retry when start is not after today", func(t *testing.T) {
		_, err := RecalculateForWeekdays(days, monToThu, 22, date(2, 2), date(19, 1), date(2, 2))
		assert.ErrorIs(t, err, ErrCannotFillWeekdays)
		assert.EqualError(t, err, "Cannot fill 22 rides with selected weekdays")
	})

	t.Run("no retry when earliest start is beyond horizon", func(t *testing.T) {
		_, err := RecalculateForWeekdays(days, monToThu, 22, date(2, 2), date(1, 1), date(4, 1))
		assert.ErrorIs(t, err, ErrCannotFillWeekdays)
	})

	t.Run("still short after retry", func(t *testing.T) {
		_, err := RecalculateForWeekdays(days, NewWeekdays(Monday), 22, date(2, 2), date(19, 1), date(4, 1))
		assert.ErrorIs(t, err, ErrCannotFillWeekdays)
		var recalcErr *RecalcError
		require.ErrorAs(t, err, &recalcErr)
		assert.Equal(t, "Cannot fill 22 rides with selected weekdays", recalcErr.Message)
	})
}

func TestValidatePairedShiftCompatibility(t *testing.T) {
	// six weeks of evening availability
	evening := makeDays(jan5, 42, nil)

	assert.True(t, ValidatePairedShiftCompatibility(evening, DefaultWeekdays, 22))
	assert.False(t, ValidatePairedShiftCompatibility(evening, NewWeekdays(Monday, Tuesday, Wednesday), 22))
	assert.True(t, ValidatePairedShiftCompatibility(evening, NewWeekdays(Monday, Tuesday, Wednesday), 18))
	assert.False(t, ValidatePairedShiftCompatibility(evening, 0, 1))
}

func TestHolidayRemarks(t *testing.T) {
	days := makeDays(date(24, 1), 5, holidaysAt(map[int]string{2: "Republic Day"}))

	assert.Equal(t, []string{"26-01-2026: Republic Day"}, HolidayRemarks(days))
	assert.Empty(t, HolidayRemarks(makeDays(jan5, 3, nil)))
}

func TestSummary(t *testing.T) {
	views := BuildSelection(makeDays(jan5, 60, nil), DefaultWeekdays, 22, time.Time{})

	assert.Equal(t, "22 rides, 05 Jan to 03 Feb", Summary(views))
}

func TestDateView_Flags(t *testing.T) {
	days := makeDays(date(9, 1), 3, holidaysAt(map[int]string{0: "Festival"}))
	views := BuildSelection(days, DefaultWeekdays, 1, time.Time{})

	// Friday holiday
	assert.False(t, views[0].IsClickable())
	assert.True(t, views[0].IsDisabled())
	// Saturday available in raw data
	assert.True(t, views[1].IsWeekend)
	assert.False(t, views[1].IsClickable())
	assert.True(t, views[1].IsDisabled())
	assert.Equal(t, 10, views[1].DayOfMonth)
	assert.Equal(t, "Jan 2026", views[1].MonthYear)
}
