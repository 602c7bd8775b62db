// Package analytics records user interactions in the subscription flow.
package analytics

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/pkg/core/model"
)

// Event is a typed analytics event
type Event interface {
	Name() string
	Fields() []zap.Field
}

// Tracker receives analytics events
type Tracker interface {
	Track(event Event)
}

type CalendarOpened struct {
	TimeOfDay model.TimeOfDay
	PlanSlug  string
}

func (e CalendarOpened) Name() string { return "calendar_opened" }
func (e CalendarOpened) Fields() []zap.Field {
	return []zap.Field{zap.String("shift", string(e.TimeOfDay)), zap.String("plan", e.PlanSlug)}
}

type WeekdayToggled struct {
	Index    int
	Label    string
	Selected bool
}

func (e WeekdayToggled) Name() string { return "weekday_toggled" }
func (e WeekdayToggled) Fields() []zap.Field {
	return []zap.Field{zap.Int("index", e.Index), zap.String("label", e.Label), zap.Bool("selected", e.Selected)}
}

type CalendarDateClicked struct {
	Date string
}

func (e CalendarDateClicked) Name() string { return "calendar_date_clicked" }
func (e CalendarDateClicked) Fields() []zap.Field {
	return []zap.Field{zap.String("date", e.Date)}
}

type DatesConfirmed struct {
	RideCount int
	Weekdays  []int
}

func (e DatesConfirmed) Name() string { return "dates_confirmed" }
func (e DatesConfirmed) Fields() []zap.Field {
	return []zap.Field{zap.Int("rides", e.RideCount), zap.Ints("weekdays", e.Weekdays)}
}

type ScheduleApplied struct {
	TimeOfDay model.TimeOfDay
	Summary   string
}

func (e ScheduleApplied) Name() string { return "schedule_applied" }
func (e ScheduleApplied) Fields() []zap.Field {
	return []zap.Field{zap.String("shift", string(e.TimeOfDay)), zap.String("summary", e.Summary)}
}

type SubscriptionPlaced struct {
	SubscriptionID string
	PlanSlug       string
	PaymentMethod  model.PaymentMethod
	RideCount      int
}

func (e SubscriptionPlaced) Name() string { return "subscription_placed" }
func (e SubscriptionPlaced) Fields() []zap.Field {
	return []zap.Field{
		zap.String("subscription_id", e.SubscriptionID),
		zap.String("plan", e.PlanSlug),
		zap.String("payment_method", string(e.PaymentMethod)),
		zap.Int("rides", e.RideCount),
	}
}

// LogTracker writes events to a zap logger at debug level
type LogTracker struct {
	logger *zap.Logger
}

// NewLogTracker creates a tracker scoped to one flow session
func NewLogTracker(logger *zap.Logger, sessionID string) *LogTracker {
	return &LogTracker{logger: logger.Named("analytics").With(zap.String("session_id", sessionID))}
}

func (t *LogTracker) Track(event Event) {
	t.logger.Debug(event.Name(), event.Fields()...)
}

// Nop discards every event
type Nop struct{}

func (Nop) Track(Event) {}

// Recorder keeps events in memory, in order
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Track(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the names of the recorded events
func (r *Recorder) Names() []string {
	events := r.Events()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name()
	}
	return names
}
