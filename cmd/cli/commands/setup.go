package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// SetupCmd creates the setup command
func SetupCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setup <plan>",
		Short: "Start setting up a pass for a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, ok := app.Cfg.Plan(args[0])
			if !ok {
				return fmt.Errorf("unknown plan %q (run 'plans' to list them)", args[0])
			}

			flow := app.StartFlow(plan)
			app.Logger.Info("Started pass setup", zap.String("plan", plan.Slug))

			printSuccess(app.Out, "Setting up %s (%d rides per shift)", plan.Name, plan.TotalRides)
			for _, tod := range flow.Setup.ShiftOrder() {
				fmt.Fprintf(app.Out, "  %s: run 'stops %s <pickup_id> <dropoff_id>'\n", tod.ShiftName(), tod)
			}
			fmt.Fprintln(app.Out)
			return nil
		},
	}
}

// StatusCmd creates the status command
func StatusCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the pass being set up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := app.ActiveFlow()
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON && flow.Calendar != nil {
				m, ok := flow.Calendar.Model()
				if !ok {
					return fmt.Errorf("calendar is not ready")
				}
				data, err := json.MarshalIndent(m, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode calendar: %w", err)
				}
				fmt.Fprintln(app.Out, string(data))
				return nil
			}

			plan := flow.Setup.Plan()
			colorHeader.Fprintf(app.Out, "\n%s (%d rides per shift)\n", plan.Name, plan.TotalRides)
			for _, shift := range orderedShifts(flow) {
				renderShift(app.Out, shift)
			}
			if flow.Calendar != nil {
				colorMuted.Fprintf(app.Out, "%s calendar open\n", flow.Shift.ShiftName())
			}
			if flow.Setup.CanProceed() {
				printSuccess(app.Out, "Ready for checkout")
			} else {
				colorMuted.Fprintln(app.Out, "Not ready for checkout")
			}
			fmt.Fprintln(app.Out)
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the open calendar model as JSON")

	return cmd
}
