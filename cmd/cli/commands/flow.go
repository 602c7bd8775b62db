package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ridepass/pkg/core/calendar"
	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/core/session"
)

// OpenCmd creates the open command
func OpenCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open <shift>",
		Short: "Open the calendar of a shift to change its dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := app.ActiveFlow()
			if err != nil {
				return err
			}
			tod, err := model.ParseTimeOfDay(args[0])
			if err != nil {
				return err
			}
			if err := flow.openCalendar(app, tod); err != nil {
				return err
			}
			return showCalendar(app, flow, nil)
		},
	}
}

// ToggleCmd creates the toggle command
func ToggleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <weekday>",
		Short: "Toggle a weekday in the open calendar (M, T, W, Th, F)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekdays, err := calendar.ParseWeekdays(args[0])
			if err != nil {
				return err
			}
			if weekdays.Len() != 1 {
				return fmt.Errorf("expected a single weekday, got %q", args[0])
			}
			return dispatchAndShow(app, session.ToggleWeekday{Index: weekdays.Sorted()[0]})
		},
	}
}

// SelectCmd creates the select command
func SelectCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <dd-mm-yyyy>",
		Short: "Choose the start date in the open calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAndShow(app, session.SelectDate{Date: args[0]})
		},
	}
}

// RemarksCmd creates the remarks command
func RemarksCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remarks",
		Short: "Show or hide holiday remarks in the open calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAndShow(app, session.ToggleHolidayRemarks{})
		},
	}
}

// ConfirmCmd creates the confirm command
func ConfirmCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm",
		Short: "Confirm the dates of the open calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := app.ActiveFlow()
			if err != nil {
				return err
			}
			cal, err := flow.activeCalendar()
			if err != nil {
				return err
			}

			effects := flow.dispatch(session.ConfirmDates{})
			for _, e := range effects {
				switch e := e.(type) {
				case session.ShowError:
					printError(app.Out, e.Message)
				case session.DatesConfirmed:
					weekdays := calendar.NewWeekdays(e.SelectedWeekdays...)
					if err := flow.Setup.ApplySchedule(flow.Shift, e.SelectedDates, weekdays); err != nil {
						var recalc *calendar.RecalcError
						if errors.As(err, &recalc) {
							printError(app.Out, recalc.Message)
							return nil
						}
						return fmt.Errorf("failed to apply schedule: %w", err)
					}

					printSuccess(app.Out, "%s schedule saved", flow.Shift.ShiftName())
					flow.closeCalendar()
					for _, shift := range orderedShifts(flow) {
						renderShift(app.Out, shift)
					}
					fmt.Fprintln(app.Out)
					return nil
				}
			}

			if m, ok := cal.Model(); ok && !m.IsConfirmEnabled {
				fmt.Fprintln(app.Out, m.RidesSelectedText)
			}
			return nil
		},
	}
}

func dispatchAndShow(app *AppContext, event session.Event) error {
	flow, err := app.ActiveFlow()
	if err != nil {
		return err
	}
	if _, err := flow.activeCalendar(); err != nil {
		return err
	}
	return showCalendar(app, flow, flow.dispatch(event))
}

func showCalendar(app *AppContext, flow *Flow, effects []session.Effect) error {
	m, ok := flow.Calendar.Model()
	if !ok {
		return fmt.Errorf("calendar is not ready")
	}
	renderModel(app.Out, flow.Shift, m)
	for _, e := range effects {
		if shown, ok := e.(session.ShowError); ok {
			printError(app.Out, shown.Message)
		}
	}
	fmt.Fprintln(app.Out)
	return nil
}
