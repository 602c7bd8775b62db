package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
)

func strPtr(s string) *string {
	return &s
}

func TestParseDays(t *testing.T) {
	raw := []model.CalendarDay{
		{Date: "07-01-2026", IsRideAvailable: true},
		{Date: "05-01-2026", IsRideAvailable: true},
		{Date: "06-01-2026", IsRideAvailable: false, HolidayRemark: strPtr("Local Festival")},
	}

	days, err := ParseDays(raw)
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, "05-01-2026", days[0].Raw)
	assert.Equal(t, "06-01-2026", days[1].Raw)
	assert.Equal(t, "07-01-2026", days[2].Raw)
	assert.True(t, days[1].Holiday)
	assert.False(t, days[1].Available)
	assert.Equal(t, "Local Festival", days[1].HolidayRemark)
	assert.False(t, days[0].Holiday)
}

func TestParseDays_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     []model.CalendarDay
		wantErr string
	}{
		{
			name:    "malformed date",
			raw:     []model.CalendarDay{{Date: "2026-01-05"}},
			wantErr: "invalid date",
		},
		{
			name:    "impossible date",
			raw:     []model.CalendarDay{{Date: "31-02-2026"}},
			wantErr: "invalid date",
		},
		{
			name: "duplicate date",
			raw: []model.CalendarDay{
				{Date: "05-01-2026"},
				{Date: "05-01-2026"},
			},
			wantErr: "duplicate calendar day 05-01-2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDays(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := ParseDays([]model.CalendarDay{{Date: "bad"}})
	assert.ErrorIs(t, err, dates.ErrInvalidDate)
}

func TestFindDay(t *testing.T) {
	days := makeDays(jan5, 5, nil)

	day, ok := FindDay(days, "07-01-2026")
	require.True(t, ok)
	assert.Equal(t, date(7, 1), day.Date)

	_, ok = FindDay(days, "12-01-2026")
	assert.False(t, ok)
	_, ok = FindDay(days, "not-a-date")
	assert.False(t, ok)
}
