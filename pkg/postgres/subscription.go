package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/db"
)

const uniqueViolation = "23505"

// InsertSubscription inserts a subscription and copies its rides in one transaction
func (d *DB) InsertSubscription(ctx context.Context, sub *db.Subscription, rides []db.Ride) error {
	rideRows := make([][]any, 0, len(rides))
	for _, r := range rides {
		rideDate, err := dates.Parse(r.RideDate)
		if err != nil {
			return fmt.Errorf("invalid ride %s: %w", r.ID, err)
		}
		rideRows = append(rideRows, []any{r.ID, r.SubscriptionID, r.TimeOfDay, rideDate, r.PickupStop, r.DropOffStop})
	}

	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO subscription (id, plan_slug, plan_name, is_round_trip, payment_method, total_rides, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, sub.ID, sub.PlanSlug, sub.PlanName, sub.IsRoundTrip, sub.PaymentMethod, sub.TotalRides, sub.Status, sub.CreatedAt.UTC())
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("failed to insert subscription %s: %w", sub.ID, db.ErrDuplicateID)
			}
			return fmt.Errorf("failed to insert subscription: %w", err)
		}

		if len(rideRows) == 0 {
			return nil
		}
		copied, err := tx.CopyFrom(ctx,
			pgx.Identifier{"ride"},
			[]string{"id", "subscription_id", "time_of_day", "ride_date", "pickup_stop", "drop_off_stop"},
			pgx.CopyFromRows(rideRows))
		if err != nil {
			return fmt.Errorf("failed to insert rides: %w", err)
		}
		if int(copied) != len(rideRows) {
			return fmt.Errorf("inserted %d of %d rides", copied, len(rideRows))
		}
		return nil
	})
}

// GetSubscriptions retrieves all subscriptions, oldest first
func (d *DB) GetSubscriptions(ctx context.Context) ([]db.Subscription, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, plan_slug, plan_name, is_round_trip, payment_method, total_rides, status, created_at
		FROM subscription
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []db.Subscription
	for rows.Next() {
		var s db.Subscription
		if err := rows.Scan(&s.ID, &s.PlanSlug, &s.PlanName, &s.IsRoundTrip, &s.PaymentMethod, &s.TotalRides, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}

// GetRides retrieves the rides of a subscription ordered by date, morning first
func (d *DB) GetRides(ctx context.Context, subscriptionID string) ([]db.Ride, error) {
	var exists bool
	if err := d.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM subscription WHERE id = $1)`, subscriptionID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("subscription %s: %w", subscriptionID, db.ErrNotFound)
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, subscription_id, time_of_day, ride_date, pickup_stop, drop_off_stop
		FROM ride
		WHERE subscription_id = $1
		ORDER BY ride_date, time_of_day DESC
	`, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rides: %w", err)
	}
	defer rows.Close()

	var rides []db.Ride
	for rows.Next() {
		var r db.Ride
		var rideDate time.Time
		if err := rows.Scan(&r.ID, &r.SubscriptionID, &r.TimeOfDay, &rideDate, &r.PickupStop, &r.DropOffStop); err != nil {
			return nil, fmt.Errorf("failed to scan ride: %w", err)
		}
		r.RideDate = dates.Format(rideDate)
		rides = append(rides, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rides: %w", err)
	}

	return rides, nil
}
