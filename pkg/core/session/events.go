package session

import (
	"encoding/json"

	"github.com/jakechorley/ridepass/pkg/core/calendar"
	"github.com/jakechorley/ridepass/pkg/core/model"
)

// Event is a user or system action handled by a Calendar
type Event interface {
	isEvent()
}

// Initialize loads raw calendar data and builds the first selection.
// SelectedDates, when set, are previously confirmed dates: the earliest seeds
// the start date.
type Initialize struct {
	Days            []model.CalendarDay
	Quota           int
	Weekdays        calendar.Weekdays // empty means Monday to Friday
	SelectedDates   []string
	MaxValidStart   string // dd-mm-yyyy
	MinimumWeekdays int    // 0 means DefaultMinimumWeekdays
	FooterRemarks   []model.CalendarRemark
}

type ToggleWeekday struct {
	Index int
}

type SelectDate struct {
	Date string // dd-mm-yyyy
}

type ConfirmDates struct{}

type ToggleHolidayRemarks struct{}

func (Initialize) isEvent()           {}
func (ToggleWeekday) isEvent()        {}
func (SelectDate) isEvent()           {}
func (ConfirmDates) isEvent()         {}
func (ToggleHolidayRemarks) isEvent() {}

// Effect is a one-shot signal for the UI
type Effect interface {
	isEffect()
}

// DatesConfirmed carries the confirmed schedule to the next step
type DatesConfirmed struct {
	SelectedDates    []string `json:"selectedDates"`
	SelectedWeekdays []int    `json:"selectedWeekDays"`
}

// ShowError is a transient error message
type ShowError struct {
	Message string `json:"message"`
}

func (DatesConfirmed) isEffect() {}
func (ShowError) isEffect()      {}

func (e DatesConfirmed) MarshalJSON() ([]byte, error) {
	type fields DatesConfirmed
	return json.Marshal(struct {
		Type string `json:"type"`
		fields
	}{Type: "DatesConfirmed", fields: fields(e)})
}

func (e ShowError) MarshalJSON() ([]byte, error) {
	type fields ShowError
	return json.Marshal(struct {
		Type string `json:"type"`
		fields
	}{Type: "Error", fields: fields(e)})
}

// State is the published phase of a Calendar
type State interface {
	isState()
}

type Idle struct{}

// Loading means raw calendar data is being fetched
type Loading struct{}

type Ready struct {
	Model CalendarModel
}

// Failed means the raw calendar could not be fetched
type Failed struct {
	Message string
}

func (Idle) isState()    {}
func (Loading) isState() {}
func (Ready) isState()   {}
func (Failed) isState()  {}

// CalendarModel is the display model of the calendar screen
type CalendarModel struct {
	CalendarDates            []calendar.DateView    `json:"calendarDates"`
	SelectedWeekdays         []calendar.WeekdaySlot `json:"selectedWeekDays"`
	TotalRidesNeeded         int                    `json:"totalRidesNeeded"`
	SelectedRideCount        int                    `json:"selectedRideCount"`
	StartDateText            *string                `json:"startDateText"`
	EndDateText              *string                `json:"endDateText"`
	WeekSelectionError       *string                `json:"weekSelectionError"`
	HolidayRemarks           []string               `json:"holidayRemarks"`
	IsHolidayRemarksExpanded bool                   `json:"isHolidayRemarksExpanded"`
	IsConfirmEnabled         bool                   `json:"isConfirmEnabled"`
	PlanDurationText         string                 `json:"planDurationText"`
	RidesSelectedText        string                 `json:"ridesSelectedText"`
	FooterRemarks            []model.CalendarRemark `json:"footerRemarks"`
	MaxValidStartDate        string                 `json:"maxValidStartDate"`
	MinimumDaysPerWeek       int                    `json:"minimumDaysPerWeek"`
}

// SelectedDates returns the selected dates in chronological order
func (m CalendarModel) SelectedDates() []string {
	return calendar.SelectedDates(m.CalendarDates)
}

// Weekdays returns the selected weekday set
func (m CalendarModel) Weekdays() calendar.Weekdays {
	var w calendar.Weekdays
	for _, slot := range m.SelectedWeekdays {
		if slot.Selected {
			w = w.With(slot.Index)
		}
	}
	return w
}
