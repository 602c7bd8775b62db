package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/pkg/clients/calendarclient"
	"github.com/jakechorley/ridepass/pkg/core/calendar"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/core/validation"
)

// ScheduleResult is the default selection for one shift calendar
type ScheduleResult struct {
	Response      *model.CalendarResponse
	Days          []calendar.Day
	Views         []calendar.DateView
	Weekdays      calendar.Weekdays
	MaxValidStart time.Time
	SelectedDates []string
	Summary       string
}

// Full reports whether the selection meets the quota
func (r *ScheduleResult) Full(quota int) bool {
	return len(r.SelectedDates) == quota
}

// DefaultSchedule fetches the calendar for a shift and selects the first quota
// eligible days for the given weekdays. An empty weekday set uses Mon-Fri.
func DefaultSchedule(
	ctx context.Context,
	source calendarclient.Source,
	logger *zap.Logger,
	req model.CalendarRequest,
	quota int,
	weekdays calendar.Weekdays,
) (*ScheduleResult, error) {
	logger.Debug("Starting defaultSchedule",
		zap.String("plan", req.PlanSlug),
		zap.String("shift", string(req.TimeOfDay)),
		zap.Int("quota", quota))

	if quota <= 0 {
		return nil, fmt.Errorf("quota must be positive, got %d", quota)
	}
	if weekdays.Len() == 0 {
		weekdays = calendar.DefaultWeekdays
	}

	resp, err := source.FetchCalendar(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	if err := validation.CalendarResponse(resp); err != nil {
		return nil, err
	}

	days, err := calendar.ParseDays(resp.Dates)
	if err != nil {
		return nil, err
	}
	logger.Debug("Parsed calendar days", zap.Int("count", len(days)))

	maxValidStart, err := dates.Parse(resp.MaxValidStartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid maxValidStartDate: %w", err)
	}

	views := calendar.BuildSelection(days, weekdays, quota, time.Time{})
	result := &ScheduleResult{
		Response:      resp,
		Days:          days,
		Views:         views,
		Weekdays:      weekdays,
		MaxValidStart: maxValidStart,
		SelectedDates: calendar.SelectedDates(views),
		Summary:       calendar.Summary(views),
	}

	logger.Info("Built default schedule",
		zap.Int("selected", len(result.SelectedDates)),
		zap.String("weekdays", weekdays.String()),
		zap.String("summary", result.Summary))

	return result, nil
}
