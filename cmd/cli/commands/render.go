package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jakechorley/ridepass/pkg/core/calendar"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/core/session"
)

var (
	colorHeader   = color.New(color.Bold)
	colorSelected = color.New(color.FgGreen, color.Bold)
	colorMarker   = color.New(color.FgCyan, color.Bold)
	colorHoliday  = color.New(color.FgRed)
	colorMuted    = color.New(color.FgWhite, color.Faint)
	colorError    = color.New(color.FgRed, color.Bold)
	colorSuccess  = color.New(color.FgGreen)
)

var weekdayHeader = []string{"M", "T", "W", "Th", "F", "S", "Su"}

// dayCell renders one day as its day of month plus a marker:
// '>' start, '<' end, '*' selected, '!' holiday
func dayCell(v calendar.DateView) string {
	cell := fmt.Sprintf("%2d", v.DayOfMonth)
	switch {
	case v.IsStartDate:
		return colorMarker.Sprint(cell + ">")
	case v.IsEndDate:
		return colorMarker.Sprint(cell + "<")
	case v.IsSelected:
		return colorSelected.Sprint(cell + "*")
	case v.IsHoliday:
		return colorHoliday.Sprint(cell + "!")
	case v.IsDisabled():
		return colorMuted.Sprint(cell + " ")
	}
	return cell + " "
}

// renderGrid prints the days month by month in Monday-first week rows
func renderGrid(w io.Writer, views []calendar.DateView) {
	month := ""
	column := 0
	for _, v := range views {
		if v.MonthYear != month {
			if month != "" {
				fmt.Fprintln(w)
			}
			month = v.MonthYear
			colorHeader.Fprintf(w, "\n%s\n", month)
			for _, label := range weekdayHeader {
				fmt.Fprintf(w, "%2s  ", label)
			}
			fmt.Fprintln(w)
			column = dates.WeekdayIndex(v.Time)
			fmt.Fprint(w, strings.Repeat("    ", column))
		}

		fmt.Fprint(w, dayCell(v)+" ")
		column++
		if column == 7 {
			fmt.Fprintln(w)
			column = 0
		}
	}
	if column != 0 {
		fmt.Fprintln(w)
	}
}

// renderWeekdays prints the weekday toggles, e.g. "[x] M  [ ] T ... [-] S"
func renderWeekdays(w io.Writer, slots []calendar.WeekdaySlot) {
	parts := make([]string, len(slots))
	for i, slot := range slots {
		switch {
		case !slot.Enabled:
			parts[i] = colorMuted.Sprintf("[-] %s", slot.Label)
		case slot.Selected:
			parts[i] = colorSelected.Sprintf("[x] %s", slot.Label)
		default:
			parts[i] = fmt.Sprintf("[ ] %s", slot.Label)
		}
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}

// renderModel prints the calendar screen
func renderModel(w io.Writer, tod model.TimeOfDay, m session.CalendarModel) {
	colorHeader.Fprintf(w, "\n%s calendar\n", tod.ShiftName())
	renderWeekdays(w, m.SelectedWeekdays)
	if m.WeekSelectionError != nil {
		colorError.Fprintf(w, "✗ %s\n", *m.WeekSelectionError)
	}

	renderGrid(w, m.CalendarDates)
	fmt.Fprintln(w)

	if m.IsConfirmEnabled {
		colorSuccess.Fprintf(w, "✓ %s\n", m.PlanDurationText)
	} else {
		fmt.Fprintln(w, m.RidesSelectedText)
	}
	if m.StartDateText != nil && m.EndDateText != nil {
		fmt.Fprintf(w, "Start: %s   End: %s\n", *m.StartDateText, *m.EndDateText)
	}
	if m.MaxValidStartDate != "" {
		colorMuted.Fprintf(w, "Latest start date: %s\n", m.MaxValidStartDate)
	}

	if len(m.HolidayRemarks) > 0 {
		if m.IsHolidayRemarksExpanded {
			colorHeader.Fprintln(w, "Holidays:")
			for _, remark := range m.HolidayRemarks {
				colorHoliday.Fprintf(w, "  %s\n", remark)
			}
		} else {
			colorMuted.Fprintf(w, "%d holidays (run 'remarks' to show)\n", len(m.HolidayRemarks))
		}
	}
	for _, remark := range m.FooterRemarks {
		colorMuted.Fprintf(w, "• %s\n", remark.Text)
	}
}

// renderShift prints one shift of the pass setup
func renderShift(w io.Writer, shift model.ShiftConfig) {
	colorHeader.Fprintf(w, "%-8s ", shift.TimeOfDay.ShiftName())
	if !shift.HasStops() {
		colorMuted.Fprintln(w, "no stops selected")
		return
	}
	fmt.Fprint(w, shift.RouteText())
	if shift.ScheduleSummary == "" {
		colorMuted.Fprintln(w, "  (calendar not loaded)")
		return
	}
	fmt.Fprintf(w, "  %s", shift.ScheduleSummary)
	if len(shift.SelectedWeekdays) > 0 {
		fmt.Fprintf(w, " [%s]", calendar.NewWeekdays(shift.SelectedWeekdays...))
	}
	fmt.Fprintln(w)
}

func printError(w io.Writer, msg string) {
	colorError.Fprintf(w, "✗ %s\n", msg)
}

func printSuccess(w io.Writer, format string, args ...any) {
	colorSuccess.Fprintf(w, "✓ "+format+"\n", args...)
}
