package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/pkg/analytics"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/core/validation"
	"github.com/jakechorley/ridepass/pkg/db"
)

var (
	ErrOrderNotReady   = errors.New("order cannot be placed")
	ErrSetupIncomplete = errors.New("pass setup is incomplete")
)

// PlaceSubscriptionInput is the checkout state submitted with an order
type PlaceSubscriptionInput struct {
	Plan          model.Plan
	Shifts        map[model.TimeOfDay]model.ShiftConfig
	PaymentMethod model.PaymentMethod
	TermsAccepted bool
	Processing    bool
	Now           time.Time
}

// PlaceSubscriptionResult contains the stored subscription and its rides
type PlaceSubscriptionResult struct {
	Subscription db.Subscription
	Rides        []db.Ride
}

// PlaceSubscription persists a subscription with one ride per selected date of
// every configured shift
func PlaceSubscription(
	ctx context.Context,
	store db.SubscriptionStore,
	tracker analytics.Tracker,
	logger *zap.Logger,
	input PlaceSubscriptionInput,
) (*PlaceSubscriptionResult, error) {
	logger.Debug("Starting placeSubscription",
		zap.String("plan", input.Plan.Slug),
		zap.String("payment_method", string(input.PaymentMethod)))

	if !validation.CanPlaceOrder(input.PaymentMethod, input.TermsAccepted, input.Processing) {
		switch {
		case !input.PaymentMethod.IsValid():
			return nil, fmt.Errorf("%w: select a payment method", ErrOrderNotReady)
		case !input.TermsAccepted:
			return nil, fmt.Errorf("%w: terms must be accepted", ErrOrderNotReady)
		default:
			return nil, fmt.Errorf("%w: an order is already processing", ErrOrderNotReady)
		}
	}
	if !validation.CanProceed(input.Shifts, input.Plan.IsRoundTrip) {
		return nil, ErrSetupIncomplete
	}

	createdAt := input.Now
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	sub := db.Subscription{
		ID:            uuid.New().String(),
		PlanSlug:      input.Plan.Slug,
		PlanName:      input.Plan.Name,
		IsRoundTrip:   input.Plan.IsRoundTrip,
		PaymentMethod: string(input.PaymentMethod),
		TotalRides:    input.Plan.TotalRides,
		Status:        db.StatusActive,
		CreatedAt:     createdAt.UTC(),
	}

	var rides []db.Ride
	for _, tod := range []model.TimeOfDay{model.Morning, model.Evening} {
		shift, ok := input.Shifts[tod]
		if !ok || !validation.ShiftConfigured(shift) {
			continue
		}
		if err := validation.RideCountExact(len(shift.SelectedDates), input.Plan.TotalRides); err != nil {
			return nil, fmt.Errorf("%w: %s shift: %w", ErrSetupIncomplete, tod, err)
		}
		for _, date := range shift.SelectedDates {
			if _, err := dates.Parse(date); err != nil {
				return nil, fmt.Errorf("invalid %s ride date: %w", tod, err)
			}
			rides = append(rides, db.Ride{
				ID:             uuid.New().String(),
				SubscriptionID: sub.ID,
				TimeOfDay:      string(tod),
				RideDate:       date,
				PickupStop:     shift.Pickup.Name,
				DropOffStop:    shift.DropOff.Name,
			})
		}
	}
	db.SortRides(rides)
	logger.Debug("Built rides", zap.Int("count", len(rides)))

	if err := store.InsertSubscription(ctx, &sub, rides); err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	tracker.Track(analytics.SubscriptionPlaced{
		SubscriptionID: sub.ID,
		PlanSlug:       sub.PlanSlug,
		PaymentMethod:  input.PaymentMethod,
		RideCount:      len(rides),
	})
	logger.Info("Subscription placed",
		zap.String("id", sub.ID),
		zap.String("plan", sub.PlanSlug),
		zap.Int("rides", len(rides)))

	return &PlaceSubscriptionResult{Subscription: sub, Rides: rides}, nil
}
