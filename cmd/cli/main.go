package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/cmd/cli/commands"
	"github.com/jakechorley/ridepass/internal/config"
	"github.com/jakechorley/ridepass/pkg/analytics"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	noColor bool
	app     = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ridepass",
		Short: "Ridepass CLI - Set up and place ride subscriptions",
		Long:  `A CLI tool for choosing ride plans, scheduling ride dates per shift, and placing subscriptions.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Database != nil {
				app.Database.Close()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (selects ridepass_config.<env>.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	rootCmd.AddCommand(commands.PlansCmd(app))
	rootCmd.AddCommand(commands.CalendarCmd(app))
	rootCmd.AddCommand(commands.SetupCmd(app))
	rootCmd.AddCommand(commands.StopsCmd(app))
	rootCmd.AddCommand(commands.OpenCmd(app))
	rootCmd.AddCommand(commands.ToggleCmd(app))
	rootCmd.AddCommand(commands.SelectCmd(app))
	rootCmd.AddCommand(commands.RemarksCmd(app))
	rootCmd.AddCommand(commands.ConfirmCmd(app))
	rootCmd.AddCommand(commands.StatusCmd(app))
	rootCmd.AddCommand(commands.CheckoutCmd(app))
	rootCmd.AddCommand(commands.SubscriptionsCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, calendar source and database
func initApp() error {
	var err error
	app.Ctx = context.Background()
	app.Out = color.Output
	app.Today = dates.Today
	if noColor {
		color.NoColor = true
	}

	app.Logger, _, err = logging.InitLogger(env, logging.WithVerbose(verbose))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	sessionID := uuid.New().String()
	app.Logger.Info("Starting application", zap.String("environment", env), zap.String("session_id", sessionID))

	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.Int("plans", len(app.Cfg.Plans)),
		zap.Int("stops", len(app.Cfg.Stops)))

	app.Source, err = commands.NewSource(app.Cfg, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create calendar source: %w", err)
	}

	app.Database, err = commands.NewDatabase(app.Ctx, app.Cfg, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	app.Tracker = analytics.NewLogTracker(app.Logger, sessionID)

	return nil
}
