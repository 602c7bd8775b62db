// Package calendarclient provides sources of raw calendar availability.
package calendarclient

import (
	"context"
	"fmt"

	"github.com/jakechorley/ridepass/pkg/core/model"
)

// DefaultFooterRemarks are shown under every generated calendar
var DefaultFooterRemarks = []model.CalendarRemark{
	{Text: "Rides are not available on weekends and public holidays", Icon: "info"},
	{Text: "Your subscription will start from the first selected date", Icon: "calendar"},
	{Text: "You can reschedule rides 24 hours before departure", Icon: "clock"},
}

// Source fetches the raw calendar for a shift configuration
type Source interface {
	FetchCalendar(ctx context.Context, req model.CalendarRequest) (*model.CalendarResponse, error)
}

func checkRequest(req model.CalendarRequest) error {
	if !req.TimeOfDay.IsValid() {
		return fmt.Errorf("invalid shift %q", req.TimeOfDay)
	}
	if req.PlanSlug == "" {
		return fmt.Errorf("plan is required")
	}
	if req.PickupStopID == req.DropOffStopID {
		return fmt.Errorf("pickup and drop-off stops must differ")
	}
	return nil
}
