package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ridepass/pkg/core/calendar"
	"github.com/jakechorley/ridepass/pkg/core/model"
)

// PlansCmd creates the plans command
func PlansCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List the subscription plans on offer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans := app.Cfg.ModelPlans()
			colorHeader.Fprintf(app.Out, "\n%d plans:\n\n", len(plans))
			for _, p := range plans {
				trip := "one way"
				if p.IsRoundTrip {
					trip = "round trip"
				}
				fmt.Fprintf(app.Out, "  %-14s %-12s %3d rides  %-10s", p.Slug, p.Name, p.TotalRides, trip)
				if p.MinimumDaysPerWeek > 0 {
					fmt.Fprintf(app.Out, "  min %d days/week", p.MinimumDaysPerWeek)
				}
				if len(p.PreferenceDays) > 0 {
					colorMuted.Fprintf(app.Out, "  prefers %s", calendar.NewWeekdays(p.PreferenceDays...))
				}
				fmt.Fprintln(app.Out)
			}
			fmt.Fprintln(app.Out)
			return nil
		},
	}
}

// StopsCmd creates the stops command. Without stop ids it lists stops; with
// them it sets the route of a shift in the pass setup and loads its calendar.
func StopsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stops [shift] [pickup_id dropoff_id]",
		Short: "List stops, or set a shift's pickup and drop-off",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 || len(args) > 3 {
				return fmt.Errorf("expected [shift] or <shift> <pickup_id> <dropoff_id>, got %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			shifts := []model.TimeOfDay{model.Morning, model.Evening}
			if len(args) > 0 {
				tod, err := model.ParseTimeOfDay(args[0])
				if err != nil {
					return err
				}
				shifts = []model.TimeOfDay{tod}
			}

			if len(args) < 3 {
				for _, tod := range shifts {
					colorHeader.Fprintf(app.Out, "\n%s stops:\n", tod.ShiftName())
					for _, s := range app.Cfg.StopsFor(tod) {
						fmt.Fprintf(app.Out, "  %3d  %-20s %s\n", s.ID, s.Name, s.DepartureTime)
					}
				}
				fmt.Fprintln(app.Out)
				return nil
			}

			flow, err := app.ActiveFlow()
			if err != nil {
				return err
			}
			tod := shifts[0]
			pickup, err := lookupStop(app, tod, args[1])
			if err != nil {
				return err
			}
			dropOff, err := lookupStop(app, tod, args[2])
			if err != nil {
				return err
			}

			if err := flow.Setup.SetStops(tod, pickup, dropOff); err != nil {
				return err
			}
			if err := flow.Setup.FetchCalendars(app.Ctx); err != nil {
				return fmt.Errorf("failed to load calendars: %w", err)
			}

			fmt.Fprintln(app.Out)
			for _, shift := range orderedShifts(flow) {
				renderShift(app.Out, shift)
			}
			fmt.Fprintln(app.Out)
			return nil
		},
	}
}

func lookupStop(app *AppContext, tod model.TimeOfDay, arg string) (model.Stop, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return model.Stop{}, fmt.Errorf("stop id must be a number: %w", err)
	}
	for _, s := range app.Cfg.StopsFor(tod) {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Stop{}, fmt.Errorf("no %s stop with id %d", tod, id)
}

func orderedShifts(flow *Flow) []model.ShiftConfig {
	var shifts []model.ShiftConfig
	for _, tod := range flow.Setup.ShiftOrder() {
		if shift, ok := flow.Setup.Shift(tod); ok {
			shifts = append(shifts, shift)
		}
	}
	return shifts
}
