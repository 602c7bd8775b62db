package db

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jakechorley/ridepass/pkg/core/dates"
)

// MemoryDB keeps subscriptions in memory for the lifetime of the process
type MemoryDB struct {
	mu            sync.RWMutex
	subscriptions []Subscription
	rides         map[string][]Ride
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{rides: make(map[string][]Ride)}
}

// InsertSubscription stores a subscription with its rides
func (m *MemoryDB) InsertSubscription(ctx context.Context, sub *Subscription, rides []Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rides[sub.ID]; exists {
		return fmt.Errorf("failed to insert subscription %s: %w", sub.ID, ErrDuplicateID)
	}
	for _, r := range rides {
		if r.SubscriptionID != sub.ID {
			return fmt.Errorf("ride %s belongs to subscription %s, not %s", r.ID, r.SubscriptionID, sub.ID)
		}
	}

	m.subscriptions = append(m.subscriptions, *sub)
	m.rides[sub.ID] = append([]Ride(nil), rides...)
	return nil
}

// GetSubscriptions returns all subscriptions, oldest first
func (m *MemoryDB) GetSubscriptions(ctx context.Context) ([]Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := append([]Subscription(nil), m.subscriptions...)
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].CreatedAt.Before(subs[j].CreatedAt)
	})
	return subs, nil
}

// GetRides returns the rides of a subscription ordered by date and shift
func (m *MemoryDB) GetRides(ctx context.Context, subscriptionID string) ([]Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.rides[subscriptionID]
	if !ok {
		return nil, fmt.Errorf("subscription %s: %w", subscriptionID, ErrNotFound)
	}
	rides := append([]Ride(nil), stored...)
	SortRides(rides)
	return rides, nil
}

func (m *MemoryDB) Close() {}

// SortRides orders rides chronologically, morning before evening on the same day
func SortRides(rides []Ride) {
	sort.SliceStable(rides, func(i, j int) bool {
		di, _ := dates.Parse(rides[i].RideDate)
		dj, _ := dates.Parse(rides[j].RideDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return rides[i].TimeOfDay > rides[j].TimeOfDay
	})
}
