package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/internal/config"
	"github.com/jakechorley/ridepass/pkg/clients/calendarclient"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/db"
	"github.com/jakechorley/ridepass/pkg/postgres"
)

// NewSource builds the calendar source selected in the config
func NewSource(cfg *config.Config, logger *zap.Logger) (calendarclient.Source, error) {
	if cfg.Calendar.Source == config.SourceFile {
		logger.Debug("Using calendar files", zap.String("dir", cfg.Calendar.Dir))
		return calendarclient.NewFileClient(cfg.Calendar.Dir, logger), nil
	}

	holidays := make([]calendarclient.Holiday, 0, len(cfg.Calendar.Holidays))
	for _, h := range cfg.Calendar.Holidays {
		date, err := dates.Parse(h.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday: %w", err)
		}
		holidays = append(holidays, calendarclient.Holiday{Date: date, Remark: h.Remark})
	}

	gaps := make([]calendarclient.ServiceGap, 0, len(cfg.Calendar.ServiceGaps))
	for _, g := range cfg.Calendar.ServiceGaps {
		gaps = append(gaps, calendarclient.ServiceGap{RRule: g.RRule, Remark: g.Remark})
	}

	logger.Debug("Using generated calendars",
		zap.Int("horizon_days", cfg.Calendar.HorizonDays),
		zap.Int("holidays", len(holidays)),
		zap.Int("service_gaps", len(gaps)))

	return calendarclient.NewGeneratedClient(calendarclient.Options{
		HorizonDays:        cfg.Calendar.HorizonDays,
		MaxStartOffsetDays: cfg.Calendar.MaxStartOffsetDays,
		Latency:            time.Duration(cfg.Calendar.LatencyMillis) * time.Millisecond,
		Holidays:           holidays,
		ServiceGaps:        gaps,
	}, logger)
}

// NewDatabase connects to postgres when a database URL is configured and
// falls back to an in-memory store otherwise
func NewDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Database, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("No databaseURL configured, subscriptions are kept in memory")
		return db.NewMemoryDB(), nil
	}

	database, err := postgres.NewDB(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, nil
}
