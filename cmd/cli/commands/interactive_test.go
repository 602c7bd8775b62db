package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/internal/config"
	"github.com/jakechorley/ridepass/pkg/analytics"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/db"
)

// stubSource serves 60 days from Monday 5 Jan 2026 for every request
type stubSource struct{}

func (stubSource) FetchCalendar(ctx context.Context, req model.CalendarRequest) (*model.CalendarResponse, error) {
	remark := "Republic Day"
	resp := &model.CalendarResponse{MaxValidStartDate: "19-01-2026"}
	for _, d := range dates.Range(time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), 60) {
		day := model.CalendarDay{Date: dates.Format(d), IsRideAvailable: !dates.IsWeekend(d)}
		if day.Date == "26-01-2026" {
			day.IsRideAvailable = false
			day.HolidayRemark = &remark
		}
		resp.Dates = append(resp.Dates, day)
	}
	return resp, nil
}

func testApp(out *bytes.Buffer) *AppContext {
	return &AppContext{
		Cfg: &config.Config{
			Plans: []config.PlanConfig{
				{Slug: "weekly-5", Name: "Weekly", TotalRides: 5, IsRoundTrip: true, MinimumDaysPerWeek: 1},
			},
			Stops: []config.StopConfig{
				{ID: 1, Name: "Andheri East", TimeOfDay: "morning"},
				{ID: 2, Name: "BKC", TimeOfDay: "morning"},
				{ID: 3, Name: "BKC", TimeOfDay: "evening"},
				{ID: 4, Name: "Andheri East", TimeOfDay: "evening"},
			},
		},
		Database: db.NewMemoryDB(),
		Source:   stubSource{},
		Tracker:  &analytics.Recorder{},
		Logger:   zap.NewNop(),
		Ctx:      context.Background(),
		Out:      out,
		Today: func() time.Time {
			return time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC)
		},
	}
}

func testRoot(app *AppContext) *cobra.Command {
	root := &cobra.Command{Use: "ridepass"}
	root.AddCommand(
		PlansCmd(app),
		CalendarCmd(app),
		SetupCmd(app),
		StopsCmd(app),
		OpenCmd(app),
		ToggleCmd(app),
		SelectCmd(app),
		RemarksCmd(app),
		ConfirmCmd(app),
		StatusCmd(app),
		CheckoutCmd(app),
		SubscriptionsCmd(app),
		InteractiveCmd(app),
	)
	return root
}

func runScript(t *testing.T, app *AppContext, lines ...string) string {
	t.Helper()
	err := runInteractive(app, testRoot(app), strings.NewReader(strings.Join(lines, "\n")+"\n"))
	require.NoError(t, err)
	return app.Out.(*bytes.Buffer).String()
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{name: "plain", line: "stops morning 1 2", want: []string{"stops", "morning", "1", "2"}},
		{name: "extra spaces", line: "  toggle   Th ", want: []string{"toggle", "Th"}},
		{name: "double quotes", line: `checkout --payment "upi"`, want: []string{"checkout", "--payment", "upi"}},
		{name: "single quotes keep spaces", line: "setup 'weekly 5'", want: []string{"setup", "weekly 5"}},
		{name: "unclosed quote", line: `setup "weekly`, wantErr: true},
		{name: "empty", line: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommandLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInteractive_PlacesRoundTripSubscription(t *testing.T) {
	app := testApp(&bytes.Buffer{})

	out := runScript(t, app,
		"setup weekly-5",
		"stops morning 1 2",
		"stops evening 3 4",
		"open morning",
		"toggle F",
		"confirm",
		"status",
		"checkout --payment upi --accept-terms",
		"subscriptions",
		"exit",
	)

	assert.Contains(t, out, "Setting up Weekly (5 rides per shift)")
	assert.Contains(t, out, "Morning  Andheri East → BKC  5 rides, 05 Jan to 09 Jan [M,T,W,Th,F]")
	assert.Contains(t, out, "[x] M  [x] T  [x] W  [x] Th  [ ] F  [-] S  [-] Su")
	assert.Contains(t, out, "Morning schedule saved")
	assert.Contains(t, out, "Evening  BKC → Andheri East  5 rides, 05 Jan to 12 Jan [M,T,W,Th]")
	assert.Contains(t, out, "Ready for checkout")
	assert.Contains(t, out, "Subscription placed!")
	assert.Contains(t, out, "Rides booked:    10")
	assert.Contains(t, out, "05-01-2026 to 12-01-2026  0 used, 10 remaining")
	assert.Contains(t, out, "Goodbye!")

	subs, err := app.Database.GetSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "weekly-5", subs[0].PlanSlug)
	assert.Equal(t, "upi", subs[0].PaymentMethod)

	rides, err := app.Database.GetRides(context.Background(), subs[0].ID)
	require.NoError(t, err)
	require.Len(t, rides, 10)
	for _, r := range rides {
		assert.NotEqual(t, "09-01-2026", r.RideDate, "friday was deselected")
	}

	names := app.Tracker.(*analytics.Recorder).Names()
	assert.Contains(t, names, "calendar_opened")
	assert.Contains(t, names, "weekday_toggled")
	assert.Contains(t, names, "dates_confirmed")
	assert.Contains(t, names, "schedule_applied")
	assert.Contains(t, names, "subscription_placed")

	_, err = app.ActiveFlow()
	assert.Error(t, err, "checkout ends the flow")
}

func TestInteractive_Errors(t *testing.T) {
	app := testApp(&bytes.Buffer{})

	out := runScript(t, app,
		"open morning",
		"frobnicate",
		"setup unknown",
		"setup weekly-5",
		"open morning",
		"stops morning 1 3",
		"stops morning 1 2",
		"checkout --payment upi",
		"quit",
	)

	assert.Contains(t, out, "no pass setup in progress")
	assert.Contains(t, out, "Unknown command: frobnicate")
	assert.Contains(t, out, `unknown plan "unknown"`)
	assert.Contains(t, out, "calendar not loaded")
	assert.Contains(t, out, "no morning stop with id 3")
	assert.Contains(t, out, "terms must be accepted")

	subs, err := app.Database.GetSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestInteractive_SelectAndRemarks(t *testing.T) {
	app := testApp(&bytes.Buffer{})

	out := runScript(t, app,
		"setup weekly-5",
		"stops morning 1 2",
		"open morning",
		"select 07-01-2026",
		"remarks",
		"select 21-01-2026",
		"exit",
	)

	assert.Contains(t, out, "Start: 07 Jan   End: 13 Jan")
	assert.Contains(t, out, "26-01-2026: Republic Day")
	assert.Contains(t, out, "Start date cannot be after 19 Jan")
}
