package model

import (
	"fmt"
	"strings"
)

// TimeOfDay identifies a shift (one leg of a subscription)
type TimeOfDay string

const (
	Morning TimeOfDay = "morning"
	Evening TimeOfDay = "evening"
)

func (t TimeOfDay) IsValid() bool {
	return t == Morning || t == Evening
}

// ShiftName returns the display name, e.g. "Morning"
func (t TimeOfDay) ShiftName() string {
	switch t {
	case Morning:
		return "Morning"
	case Evening:
		return "Evening"
	}
	return string(t)
}

// Other returns the paired shift of a round trip
func (t TimeOfDay) Other() TimeOfDay {
	if t == Morning {
		return Evening
	}
	return Morning
}

// ParseTimeOfDay parses "morning" or "evening" (case-insensitive)
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t := TimeOfDay(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid shift %q, expected morning or evening", s)
	}
	return t, nil
}

// PaymentMethod is the payment option chosen at checkout. Empty means none chosen.
type PaymentMethod string

const (
	PaymentWallet PaymentMethod = "wallet"
	PaymentUPI    PaymentMethod = "upi"
	PaymentCard   PaymentMethod = "card"
)

func (p PaymentMethod) IsValid() bool {
	return p == PaymentWallet || p == PaymentUPI || p == PaymentCard
}

func (p PaymentMethod) DisplayName() string {
	switch p {
	case PaymentWallet:
		return "Wallet"
	case PaymentUPI:
		return "UPI"
	case PaymentCard:
		return "Credit/Debit Card"
	}
	return string(p)
}

// Stop represents a pickup or drop-off point
type Stop struct {
	ID            int64
	Name          string
	DepartureTime string // "HH:MM", may be empty
}

// Plan represents a subscription plan
type Plan struct {
	Slug               string
	Name               string
	TotalRides         int // rides per shift
	IsRoundTrip        bool
	MinimumDaysPerWeek int
	PreferenceDays     []int // default weekday preference, empty means Mon-Fri
}

// ShiftConfig is the configuration of a single shift during pass setup
type ShiftConfig struct {
	TimeOfDay        TimeOfDay
	Pickup           *Stop
	DropOff          *Stop
	SelectedDates    []string // dd-mm-yyyy
	SelectedWeekdays []int    // 0 = Monday
	ScheduleSummary  string   // e.g. "22 rides, 05 Jan to 03 Feb"
}

// HasStops returns true if both pickup and drop-off are set
func (s ShiftConfig) HasStops() bool {
	return s.Pickup != nil && s.DropOff != nil
}

// RouteText returns "Pickup → DropOff", or empty if stops are missing
func (s ShiftConfig) RouteText() string {
	if !s.HasStops() {
		return ""
	}
	return s.Pickup.Name + " → " + s.DropOff.Name
}

// CalendarRequest identifies the calendar data to fetch for a shift
type CalendarRequest struct {
	PickupStopID  int64
	DropOffStopID int64
	PlanSlug      string
	TimeOfDay     TimeOfDay
}

// CalendarDay is a raw calendar entry as served by the calendar source
type CalendarDay struct {
	Date            string  `json:"date" validate:"required"`
	IsRideAvailable bool    `json:"isRideAvailable"`
	HolidayRemark   *string `json:"holidayRemark,omitempty"`
}

// CalendarRemark is a footer note shown under the calendar
type CalendarRemark struct {
	Text string `json:"text" validate:"required"`
	Icon string `json:"icon,omitempty"`
}

// CalendarResponse is the payload returned by the calendar source
type CalendarResponse struct {
	Dates             []CalendarDay    `json:"dates" validate:"required,min=1,dive"`
	MaxValidStartDate string           `json:"maxValidStartDate" validate:"required"`
	FooterRemarks     []CalendarRemark `json:"footerRemarks" validate:"dive"`
}
