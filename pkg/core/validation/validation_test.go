package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/ridepass/pkg/core/calendar"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
)

var (
	pickup  = &model.Stop{ID: 1, Name: "Andheri"}
	dropOff = &model.Stop{ID: 2, Name: "BKC"}
)

func configured(tod model.TimeOfDay) model.ShiftConfig {
	return model.ShiftConfig{
		TimeOfDay:     tod,
		Pickup:        pickup,
		DropOff:       dropOff,
		SelectedDates: []string{"05-01-2026"},
	}
}

func TestShiftConfigured(t *testing.T) {
	tests := []struct {
		name  string
		shift model.ShiftConfig
		want  bool
	}{
		{name: "fully configured", shift: configured(model.Morning), want: true},
		{name: "missing pickup", shift: model.ShiftConfig{DropOff: dropOff, SelectedDates: []string{"05-01-2026"}}},
		{name: "missing drop-off", shift: model.ShiftConfig{Pickup: pickup, SelectedDates: []string{"05-01-2026"}}},
		{name: "no dates", shift: model.ShiftConfig{Pickup: pickup, DropOff: dropOff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShiftConfigured(tt.shift))
		})
	}
}

func TestCanProceed(t *testing.T) {
	morningOnly := map[model.TimeOfDay]model.ShiftConfig{
		model.Morning: configured(model.Morning),
		model.Evening: {TimeOfDay: model.Evening, Pickup: pickup},
	}
	both := map[model.TimeOfDay]model.ShiftConfig{
		model.Morning: configured(model.Morning),
		model.Evening: configured(model.Evening),
	}

	assert.True(t, CanProceed(both, true))
	assert.False(t, CanProceed(morningOnly, true))
	assert.True(t, CanProceed(morningOnly, false))
	assert.False(t, CanProceed(map[model.TimeOfDay]model.ShiftConfig{}, false))
	assert.False(t, CanProceed(nil, true))
}

func TestCanPlaceOrder(t *testing.T) {
	tests := []struct {
		name       string
		method     model.PaymentMethod
		terms      bool
		processing bool
		want       bool
	}{
		{name: "ready", method: model.PaymentUPI, terms: true, want: true},
		{name: "no payment method", terms: true},
		{name: "terms not accepted", method: model.PaymentCard},
		{name: "already processing", method: model.PaymentWallet, terms: true, processing: true},
		{name: "unknown method", method: "cash", terms: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPlaceOrder(tt.method, tt.terms, tt.processing))
		})
	}
}

func TestWeekdayMinimum(t *testing.T) {
	assert.NoError(t, WeekdayMinimum(calendar.DefaultWeekdays, 5))
	assert.NoError(t, WeekdayMinimum(calendar.NewWeekdays(0, 1, 2), 3))

	err := WeekdayMinimum(calendar.NewWeekdays(0, 1, 2, 3), 5)
	assert.EqualError(t, err, "Minimum 5 weekdays must be selected")
}

func TestRideCountExact(t *testing.T) {
	assert.NoError(t, RideCountExact(22, 22))
	assert.EqualError(t, RideCountExact(20, 22), "Expected 22 rides, but 20 selected")
	assert.EqualError(t, RideCountExact(23, 22), "Expected 22 rides, but 23 selected")
}

func TestCalendarResponse(t *testing.T) {
	valid := func() *model.CalendarResponse {
		return &model.CalendarResponse{
			Dates: []model.CalendarDay{
				{Date: "05-01-2026", IsRideAvailable: true},
				{Date: "06-01-2026", IsRideAvailable: true},
			},
			MaxValidStartDate: "19-01-2026",
			FooterRemarks:     []model.CalendarRemark{{Text: "Rides are not available on weekends"}},
		}
	}

	require.NoError(t, CalendarResponse(valid()))

	tests := []struct {
		name    string
		mutate  func(r *model.CalendarResponse)
		wantErr string
	}{
		{
			name:    "no dates",
			mutate:  func(r *model.CalendarResponse) { r.Dates = nil },
			wantErr: "validation failed",
		},
		{
			name:    "missing max start",
			mutate:  func(r *model.CalendarResponse) { r.MaxValidStartDate = "" },
			wantErr: "validation failed",
		},
		{
			name:    "empty remark text",
			mutate:  func(r *model.CalendarResponse) { r.FooterRemarks[0].Text = "" },
			wantErr: "validation failed",
		},
		{
			name:    "malformed day",
			mutate:  func(r *model.CalendarResponse) { r.Dates[1].Date = "2026-01-06" },
			wantErr: "invalid dates[1]",
		},
		{
			name:    "malformed max start",
			mutate:  func(r *model.CalendarResponse) { r.MaxValidStartDate = "19/01/2026" },
			wantErr: "invalid maxValidStartDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := valid()
			tt.mutate(resp)
			err := CalendarResponse(resp)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	err := CalendarResponse(&model.CalendarResponse{
		Dates:             []model.CalendarDay{{Date: "xx"}},
		MaxValidStartDate: "19-01-2026",
	})
	assert.ErrorIs(t, err, dates.ErrInvalidDate)
	assert.Error(t, CalendarResponse(nil))
}
