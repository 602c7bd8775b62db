package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/pkg/db"
)

func TestListSubscriptions(t *testing.T) {
	store := &mockStore{
		subscriptions: []db.Subscription{
			{ID: "sub-1", PlanSlug: "weekly-3", TotalRides: 3, Status: db.StatusActive},
			{ID: "sub-2", PlanSlug: "monthly-22", TotalRides: 22, Status: db.StatusActive},
		},
		rides: map[string][]db.Ride{
			"sub-1": {
				{ID: "r3", SubscriptionID: "sub-1", TimeOfDay: "morning", RideDate: "07-01-2026"},
				{ID: "r1", SubscriptionID: "sub-1", TimeOfDay: "morning", RideDate: "05-01-2026"},
				{ID: "r2", SubscriptionID: "sub-1", TimeOfDay: "morning", RideDate: "06-01-2026"},
			},
			"sub-2": {},
		},
	}
	today := time.Date(2026, time.January, 6, 15, 0, 0, 0, time.UTC)

	views, err := ListSubscriptions(context.Background(), store, zap.NewNop(), today)
	require.NoError(t, err)
	require.Len(t, views, 2)

	first := views[0]
	assert.Equal(t, "sub-1", first.Subscription.ID)
	assert.Equal(t, "05-01-2026", first.StartDate)
	assert.Equal(t, "07-01-2026", first.EndDate)
	assert.Equal(t, 1, first.RidesUsed)
	assert.Equal(t, 2, first.RidesRemaining)
	require.NotNil(t, first.NextRide)
	assert.Equal(t, "r2", first.NextRide.ID)

	second := views[1]
	assert.Empty(t, second.StartDate)
	assert.Zero(t, second.RidesUsed)
	assert.Zero(t, second.RidesRemaining)
	assert.Nil(t, second.NextRide)
}

func TestListSubscriptions_Empty(t *testing.T) {
	views, err := ListSubscriptions(context.Background(), &mockStore{}, zap.NewNop(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestListSubscriptions_Errors(t *testing.T) {
	storeErr := errors.New("connection reset")

	tests := []struct {
		name    string
		store   *mockStore
		wantErr string
	}{
		{
			name:    "subscriptions fail",
			store:   &mockStore{getErr: storeErr},
			wantErr: "failed to fetch subscriptions",
		},
		{
			name: "rides fail",
			store: &mockStore{
				subscriptions: []db.Subscription{{ID: "sub-1"}},
				ridesErr:      storeErr,
			},
			wantErr: "failed to fetch rides for subscription sub-1",
		},
		{
			name: "corrupt ride date",
			store: &mockStore{
				subscriptions: []db.Subscription{{ID: "sub-1"}},
				rides: map[string][]db.Ride{
					"sub-1": {{ID: "r1", SubscriptionID: "sub-1", RideDate: "bad"}},
				},
			},
			wantErr: "subscription sub-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ListSubscriptions(context.Background(), tt.store, zap.NewNop(), time.Now())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
