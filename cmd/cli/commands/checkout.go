package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/core/services"
)

// CheckoutCmd creates the checkout command
func CheckoutCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place the subscription being set up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := app.ActiveFlow()
			if err != nil {
				return err
			}
			payment, _ := cmd.Flags().GetString("payment")
			accepted, _ := cmd.Flags().GetBool("accept-terms")

			result, err := services.PlaceSubscription(app.Ctx, app.Database, app.Tracker, app.Logger, services.PlaceSubscriptionInput{
				Plan:          flow.Setup.Plan(),
				Shifts:        flow.Setup.Shifts(),
				PaymentMethod: model.PaymentMethod(payment),
				TermsAccepted: accepted,
			})
			if err != nil {
				return err
			}
			app.CloseFlow()

			sub := result.Subscription
			printSuccess(app.Out, "Subscription placed!")
			fmt.Fprintf(app.Out, "\nSubscription ID: %s\n", sub.ID)
			fmt.Fprintf(app.Out, "Plan:            %s\n", sub.PlanName)
			fmt.Fprintf(app.Out, "Payment:         %s\n", model.PaymentMethod(sub.PaymentMethod).DisplayName())
			fmt.Fprintf(app.Out, "Rides booked:    %d\n\n", len(result.Rides))
			return nil
		},
	}

	cmd.Flags().String("payment", "", "Payment method: wallet, upi or card")
	cmd.Flags().Bool("accept-terms", false, "Accept the terms and conditions")

	return cmd
}

// SubscriptionsCmd creates the subscriptions command
func SubscriptionsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "List placed subscriptions and their rides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := services.ListSubscriptions(app.Ctx, app.Database, app.Logger, app.today())
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(app.Out, "No subscriptions yet.")
				return nil
			}

			showRides, _ := cmd.Flags().GetBool("rides")
			for _, v := range views {
				colorHeader.Fprintf(app.Out, "\n%s  %s\n", v.Subscription.PlanName, v.Subscription.ID)
				fmt.Fprintf(app.Out, "  %s to %s  %d used, %d remaining\n", v.StartDate, v.EndDate, v.RidesUsed, v.RidesRemaining)
				if v.NextRide != nil {
					fmt.Fprintf(app.Out, "  Next ride: %s %s, %s → %s\n",
						v.NextRide.RideDate, v.NextRide.TimeOfDay, v.NextRide.PickupStop, v.NextRide.DropOffStop)
				}
				if showRides {
					for _, r := range v.Rides {
						colorMuted.Fprintf(app.Out, "    %s %-7s %s → %s\n", r.RideDate, r.TimeOfDay, r.PickupStop, r.DropOffStop)
					}
				}
			}
			fmt.Fprintln(app.Out)
			return nil
		},
	}

	cmd.Flags().Bool("rides", false, "List every ride")

	return cmd
}
