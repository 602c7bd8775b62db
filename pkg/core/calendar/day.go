package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
)

// Day is a parsed raw calendar day
type Day struct {
	Date          time.Time
	Raw           string // dd-mm-yyyy as received
	Available     bool
	Holiday       bool
	HolidayRemark string
}

// ParseDays parses raw calendar days and returns them in chronological order.
// Malformed and duplicate dates are rejected.
func ParseDays(raw []model.CalendarDay) ([]Day, error) {
	days := make([]Day, 0, len(raw))
	seen := make(map[time.Time]struct{}, len(raw))
	for _, r := range raw {
		date, err := dates.Parse(r.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse calendar day: %w", err)
		}
		if _, dup := seen[date]; dup {
			return nil, fmt.Errorf("duplicate calendar day %s", r.Date)
		}
		seen[date] = struct{}{}

		day := Day{
			Date:      date,
			Raw:       dates.Format(date),
			Available: r.IsRideAvailable,
		}
		if r.HolidayRemark != nil {
			day.Holiday = true
			day.HolidayRemark = *r.HolidayRemark
		}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days, nil
}

// DateView is the derived, display-ready state of a single calendar day
type DateView struct {
	Time          time.Time `json:"-"`
	Date          string    `json:"date"`
	DayOfMonth    int       `json:"dayOfMonth"`
	MonthYear     string    `json:"monthYear"`
	IsHoliday     bool      `json:"isHoliday"`
	IsWeekend     bool      `json:"isWeekend"`
	IsSelected    bool      `json:"isSelected"`
	IsStartDate   bool      `json:"isStartDate"`
	IsEndDate     bool      `json:"isEndDate"`
	IsAvailable   bool      `json:"isAvailable"`
	HolidayRemark string    `json:"holidayRemark,omitempty"`
}

// IsClickable reports whether the day can be chosen as a start date
func (v DateView) IsClickable() bool {
	return v.IsAvailable && !v.IsWeekend
}

// IsDisabled reports whether the day should be rendered greyed out
func (v DateView) IsDisabled() bool {
	return !v.IsAvailable || v.IsWeekend || v.IsHoliday
}

func newDateView(d Day) DateView {
	return DateView{
		Time:          d.Date,
		Date:          d.Raw,
		DayOfMonth:    d.Date.Day(),
		MonthYear:     dates.MonthYear(d.Date),
		IsHoliday:     d.Holiday,
		IsWeekend:     dates.IsWeekend(d.Date),
		IsAvailable:   d.Available,
		HolidayRemark: d.HolidayRemark,
	}
}

// HolidayRemarks returns "dd-mm-yyyy: remark" lines for every holiday in days
func HolidayRemarks(days []Day) []string {
	remarks := []string{}
	for _, d := range days {
		if d.Holiday {
			remarks = append(remarks, d.Raw+": "+d.HolidayRemark)
		}
	}
	return remarks
}

// FindDay returns the day matching the dd-mm-yyyy date, if present
func FindDay(days []Day, date string) (Day, bool) {
	t, err := dates.Parse(date)
	if err != nil {
		return Day{}, false
	}
	for _, d := range days {
		if d.Date.Equal(t) {
			return d, true
		}
	}
	return Day{}, false
}
