package db

import (
	"errors"
	"time"
)

var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrNotFound    = errors.New("not found")
)

// Subscription status values
const (
	StatusActive = "active"
)

// Subscription represents a database subscription record
type Subscription struct {
	ID            string
	PlanSlug      string
	PlanName      string
	IsRoundTrip   bool
	PaymentMethod string
	TotalRides    int // rides per shift
	Status        string
	CreatedAt     time.Time
}

// Ride represents a single booked ride of a subscription
type Ride struct {
	ID             string
	SubscriptionID string
	TimeOfDay      string
	RideDate       string // dd-mm-yyyy
	PickupStop     string
	DropOffStop    string
}
