// Package validation holds the predicates that gate the subscription flow.
package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/ridepass/pkg/core/calendar"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ShiftConfigured reports whether a shift has both stops and at least one selected date
func ShiftConfigured(shift model.ShiftConfig) bool {
	return shift.HasStops() && len(shift.SelectedDates) > 0
}

// CanProceed reports whether pass setup is complete. Round trips need both the
// morning and evening shifts configured, one-way plans need at least one.
func CanProceed(shifts map[model.TimeOfDay]model.ShiftConfig, roundTrip bool) bool {
	if roundTrip {
		return ShiftConfigured(shifts[model.Morning]) && ShiftConfigured(shifts[model.Evening])
	}
	for _, shift := range shifts {
		if ShiftConfigured(shift) {
			return true
		}
	}
	return false
}

// CanPlaceOrder reports whether checkout can submit an order
func CanPlaceOrder(method model.PaymentMethod, termsAccepted, processing bool) bool {
	return method.IsValid() && termsAccepted && !processing
}

// WeekdayMinimum returns an error when fewer than minimum weekdays are selected
func WeekdayMinimum(selected calendar.Weekdays, minimum int) error {
	if selected.Len() < minimum {
		return fmt.Errorf("Minimum %d weekdays must be selected", minimum)
	}
	return nil
}

// RideCountExact returns an error unless exactly required rides are selected
func RideCountExact(selected, required int) error {
	if selected != required {
		return fmt.Errorf("Expected %d rides, but %d selected", required, selected)
	}
	return nil
}

// CalendarResponse validates a payload from the calendar source
func CalendarResponse(resp *model.CalendarResponse) error {
	if resp == nil {
		return fmt.Errorf("calendar response is empty")
	}
	if err := validate.Struct(resp); err != nil {
		return fmt.Errorf("calendar response validation failed: %w", err)
	}

	for i, day := range resp.Dates {
		if _, err := dates.Parse(day.Date); err != nil {
			return fmt.Errorf("invalid dates[%d]: %w", i, err)
		}
	}
	if _, err := dates.Parse(resp.MaxValidStartDate); err != nil {
		return fmt.Errorf("invalid maxValidStartDate: %w", err)
	}

	return nil
}
