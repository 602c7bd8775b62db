package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ridepass/pkg/clients/calendarclient"
	"github.com/jakechorley/ridepass/pkg/core/calendar"
	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/core/services"
)

// CalendarCmd creates the calendar command
func CalendarCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar <plan> <shift> <pickup_id> <dropoff_id>",
		Short: "Show the default ride schedule for a plan and route",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, ok := app.Cfg.Plan(args[0])
			if !ok {
				return fmt.Errorf("unknown plan %q (run 'plans' to list them)", args[0])
			}
			tod, err := model.ParseTimeOfDay(args[1])
			if err != nil {
				return err
			}
			pickup, err := lookupStop(app, tod, args[2])
			if err != nil {
				return err
			}
			dropOff, err := lookupStop(app, tod, args[3])
			if err != nil {
				return err
			}

			weekdays := calendar.NewWeekdays(plan.PreferenceDays...)
			if flag, _ := cmd.Flags().GetString("weekdays"); flag != "" {
				weekdays, err = calendar.ParseWeekdays(flag)
				if err != nil {
					return err
				}
			}

			req := model.CalendarRequest{
				PickupStopID:  pickup.ID,
				DropOffStopID: dropOff.ID,
				PlanSlug:      plan.Slug,
				TimeOfDay:     tod,
			}
			result, err := services.DefaultSchedule(app.Ctx, app.Source, app.Logger, req, plan.TotalRides, weekdays)
			if err != nil {
				return err
			}

			colorHeader.Fprintf(app.Out, "\n%s: %s → %s\n", plan.Name, pickup.Name, dropOff.Name)
			renderWeekdays(app.Out, calendar.NewWeekdaySlots(result.Weekdays))
			renderGrid(app.Out, result.Views)
			fmt.Fprintln(app.Out)
			if result.Full(plan.TotalRides) {
				printSuccess(app.Out, "%s", result.Summary)
			} else {
				printError(app.Out, fmt.Sprintf("Only %d of %d rides available: %s", len(result.SelectedDates), plan.TotalRides, result.Summary))
			}
			colorMuted.Fprintf(app.Out, "Latest start date: %s\n\n", result.Response.MaxValidStartDate)

			if path, _ := cmd.Flags().GetString("save"); path != "" {
				if err := calendarclient.WriteCalendarFile(path, result.Response); err != nil {
					return err
				}
				printSuccess(app.Out, "Calendar saved to %s", path)
			}
			return nil
		},
	}

	cmd.Flags().String("save", "", "Write the fetched calendar to a JSON file usable as a file source")
	cmd.Flags().String("weekdays", "", "Weekdays to ride, e.g. M,W,F (defaults to the plan preference)")

	return cmd
}
