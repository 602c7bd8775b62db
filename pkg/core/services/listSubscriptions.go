package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/db"
)

// SubscriptionView summarises one subscription relative to a day
type SubscriptionView struct {
	Subscription   db.Subscription
	Rides          []db.Ride
	StartDate      string
	EndDate        string
	RidesUsed      int
	RidesRemaining int
	NextRide       *db.Ride
}

// ListSubscriptions loads every subscription with its rides. Rides dated
// before today count as used.
func ListSubscriptions(ctx context.Context, store db.SubscriptionStore, logger *zap.Logger, today time.Time) ([]SubscriptionView, error) {
	logger.Debug("Starting listSubscriptions")

	subs, err := store.GetSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions: %w", err)
	}

	today = dates.TruncateToDay(today)
	views := make([]SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		rides, err := store.GetRides(ctx, sub.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch rides for subscription %s: %w", sub.ID, err)
		}
		db.SortRides(rides)

		view := SubscriptionView{Subscription: sub, Rides: rides}
		for i, ride := range rides {
			date, err := dates.Parse(ride.RideDate)
			if err != nil {
				return nil, fmt.Errorf("subscription %s: %w", sub.ID, err)
			}
			if date.Before(today) {
				view.RidesUsed++
				continue
			}
			view.RidesRemaining++
			if view.NextRide == nil {
				view.NextRide = &rides[i]
			}
		}
		if len(rides) > 0 {
			view.StartDate = rides[0].RideDate
			view.EndDate = rides[len(rides)-1].RideDate
		}
		views = append(views, view)
	}

	logger.Debug("Loaded subscriptions", zap.Int("count", len(views)))
	return views, nil
}
