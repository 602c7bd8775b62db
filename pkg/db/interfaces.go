package db

import "context"

// SubscriptionStore defines the interface for subscription database operations
type SubscriptionStore interface {
	InsertSubscription(ctx context.Context, sub *Subscription, rides []Ride) error
	GetSubscriptions(ctx context.Context) ([]Subscription, error)
	GetRides(ctx context.Context, subscriptionID string) ([]Ride, error)
}

// Database defines the interface for all database operations.
// Both the in-memory db.MemoryDB and postgres.DB implement this interface.
type Database interface {
	SubscriptionStore
	Close()
}
