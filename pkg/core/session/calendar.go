// Package session holds the per-flow state of the subscription setup: the
// calendar screen state machine and the pass setup coordinator that owns the
// per-shift calendar cache.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/pkg/analytics"
	"github.com/jakechorley/ridepass/pkg/clients/calendarclient"
	"github.com/jakechorley/ridepass/pkg/core/calendar"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/core/validation"
)

// DefaultMinimumWeekdays applies when Initialize carries no minimum
const DefaultMinimumWeekdays = 5

const errDatesRequired = "Please select all required dates"

var (
	ErrClosed         = errors.New("session closed")
	ErrAlreadyLoading = errors.New("calendar is already loading")
)

type phase int

const (
	phaseIdle phase = iota
	phaseLoading
	phaseReady
	phaseFailed
	phaseClosed
)

// Calendar is the state holder of the calendar screen. Events are processed one
// at a time; state and effects are delivered to observers synchronously on the
// dispatching goroutine, and observers must not call Dispatch.
type Calendar struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	logger  *zap.Logger
	tracker analytics.Tracker
	today   func() time.Time

	phase      phase
	pending    []Event
	loadCancel context.CancelFunc

	days           []calendar.Day
	views          []calendar.DateView
	quota          int
	weekdays       calendar.Weekdays
	minimum        int
	maxValidStart  time.Time
	holidayRemarks []string
	footerRemarks  []model.CalendarRemark
	weekError      string
	expanded       bool

	state   StateCell[State]
	effects EffectQueue[Effect]
}

// CalendarOption configures a Calendar
type CalendarOption func(*Calendar)

// WithToday overrides the clock used by weekday recalculation
func WithToday(today func() time.Time) CalendarOption {
	return func(c *Calendar) {
		c.today = today
	}
}

// NewCalendar creates an idle calendar bound to ctx. Cancelling ctx or calling
// Close stops any in-flight load.
func NewCalendar(ctx context.Context, logger *zap.Logger, tracker analytics.Tracker, opts ...CalendarOption) *Calendar {
	ctx, cancel := context.WithCancel(ctx)
	c := &Calendar{
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
		tracker: tracker,
		today:   dates.Today,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.Set(Idle{})
	return c
}

// State returns the continuous state channel
func (c *Calendar) State() *StateCell[State] {
	return &c.state
}

// Effects returns the one-shot effect channel
func (c *Calendar) Effects() *EffectQueue[Effect] {
	return &c.effects
}

// Model returns the current model when the calendar is ready
func (c *Calendar) Model() (CalendarModel, bool) {
	state, _ := c.state.Get()
	ready, ok := state.(Ready)
	return ready.Model, ok
}

// Dispatch processes a single event to completion
func (c *Calendar) Dispatch(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handle(event)
}

// LoadParams are the Initialize arguments that do not come from the calendar source
type LoadParams struct {
	Quota           int
	Weekdays        calendar.Weekdays
	SelectedDates   []string
	MinimumWeekdays int
}

// Load fetches the raw calendar and initializes from it. Events dispatched
// while loading are buffered and replayed once data arrives.
func (c *Calendar) Load(ctx context.Context, source calendarclient.Source, req model.CalendarRequest, params LoadParams) error {
	c.mu.Lock()
	switch c.phase {
	case phaseClosed:
		c.mu.Unlock()
		return ErrClosed
	case phaseLoading:
		c.mu.Unlock()
		return ErrAlreadyLoading
	}
	loadCtx, cancel := context.WithCancel(c.ctx)
	c.loadCancel = cancel
	c.phase = phaseLoading
	c.state.Set(Loading{})
	c.mu.Unlock()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	defer cancel()

	c.logger.Debug("Loading calendar",
		zap.String("shift", string(req.TimeOfDay)),
		zap.String("plan", req.PlanSlug))

	resp, err := source.FetchCalendar(loadCtx, req)
	if err == nil {
		err = validation.CalendarResponse(resp)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadCancel = nil
	if c.phase == phaseClosed {
		return ErrClosed
	}

	if err == nil {
		err = c.initialize(Initialize{
			Days:            resp.Dates,
			Quota:           params.Quota,
			Weekdays:        params.Weekdays,
			SelectedDates:   params.SelectedDates,
			MaxValidStart:   resp.MaxValidStartDate,
			MinimumWeekdays: params.MinimumWeekdays,
			FooterRemarks:   resp.FooterRemarks,
		})
	}
	if err != nil {
		c.logger.Warn("Failed to load calendar", zap.Error(err), zap.Int("dropped_events", len(c.pending)))
		c.phase = phaseFailed
		c.pending = nil
		message := "Could not load calendar: " + err.Error()
		c.state.Set(Failed{Message: message})
		c.effects.Emit(ShowError{Message: message})
		return fmt.Errorf("failed to load calendar: %w", err)
	}

	pending := c.pending
	c.pending = nil
	for _, event := range pending {
		c.handle(event)
	}
	return nil
}

// Close cancels any in-flight load and releases calendar data. Later events are ignored.
func (c *Calendar) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == phaseClosed {
		return
	}
	c.phase = phaseClosed
	c.cancel()
	c.pending = nil
	c.days = nil
	c.views = nil
	c.logger.Debug("Calendar closed")
}

func (c *Calendar) handle(event Event) {
	switch c.phase {
	case phaseClosed:
		c.logger.Debug("Ignoring event after close", zap.String("event", fmt.Sprintf("%T", event)))
		return
	case phaseLoading:
		c.pending = append(c.pending, event)
		return
	case phaseIdle, phaseFailed:
		if init, ok := event.(Initialize); ok {
			c.handleInitialize(init)
			return
		}
		c.effects.Emit(ShowError{Message: "Calendar is not ready yet"})
		return
	}

	switch e := event.(type) {
	case Initialize:
		c.handleInitialize(e)
	case ToggleWeekday:
		c.toggleWeekday(e.Index)
	case SelectDate:
		c.selectDate(e.Date)
	case ConfirmDates:
		c.confirm()
	case ToggleHolidayRemarks:
		c.expanded = !c.expanded
		c.publish()
	}
}

func (c *Calendar) handleInitialize(e Initialize) {
	if err := c.initialize(e); err != nil {
		c.logger.Warn("Rejected calendar data", zap.Error(err))
		c.effects.Emit(ShowError{Message: err.Error()})
	}
}

// initialize replaces all calendar data. Nothing changes if the data is invalid.
func (c *Calendar) initialize(e Initialize) error {
	if e.Quota <= 0 {
		return fmt.Errorf("ride quota must be positive, got %d", e.Quota)
	}
	days, err := calendar.ParseDays(e.Days)
	if err != nil {
		return err
	}
	maxValidStart, err := dates.Parse(e.MaxValidStart)
	if err != nil {
		return fmt.Errorf("invalid max start date: %w", err)
	}

	var start time.Time
	if len(e.SelectedDates) > 0 {
		seeds := make([]time.Time, 0, len(e.SelectedDates))
		for _, s := range e.SelectedDates {
			t, err := dates.Parse(s)
			if err != nil {
				return fmt.Errorf("invalid selected date: %w", err)
			}
			seeds = append(seeds, t)
		}
		sort.Slice(seeds, func(i, j int) bool { return seeds[i].Before(seeds[j]) })
		start = seeds[0]
	}

	weekdays := e.Weekdays
	if weekdays.Len() == 0 {
		weekdays = calendar.DefaultWeekdays
	}
	minimum := e.MinimumWeekdays
	if minimum <= 0 {
		minimum = DefaultMinimumWeekdays
	}

	c.days = days
	c.quota = e.Quota
	c.weekdays = weekdays
	c.minimum = minimum
	c.maxValidStart = maxValidStart
	c.footerRemarks = e.FooterRemarks
	c.holidayRemarks = calendar.HolidayRemarks(days)
	c.views = calendar.BuildSelection(days, weekdays, e.Quota, start)
	c.weekError = ""
	c.expanded = false
	c.phase = phaseReady

	c.logger.Debug("Calendar initialized",
		zap.Int("days", len(days)),
		zap.Int("quota", e.Quota),
		zap.Stringer("weekdays", weekdays),
		zap.Int("selected", calendar.SelectedCount(c.views)))

	c.publish()
	return nil
}

func (c *Calendar) toggleWeekday(index int) {
	if !calendar.IsEnabled(index) {
		return
	}
	selected := c.weekdays.Contains(index)
	c.tracker.Track(analytics.WeekdayToggled{
		Index:    index,
		Label:    calendar.NewWeekdaySlots(c.weekdays)[index].Label,
		Selected: !selected,
	})

	next := c.weekdays.With(index)
	if selected {
		next = c.weekdays.Without(index)
		if err := validation.WeekdayMinimum(next, c.minimum); err != nil {
			c.weekError = err.Error()
			c.publish()
			return
		}
	}

	start, _ := calendar.StartDate(c.views)
	views, err := calendar.RecalculateForWeekdays(c.days, next, c.quota, start, c.maxValidStart, dates.TruncateToDay(c.today()))
	c.weekdays = next
	if err != nil {
		// last valid dates stay selected until a recalculation succeeds
		c.logger.Debug("Weekday recalculation failed", zap.Stringer("weekdays", next), zap.Error(err))
		c.weekError = err.Error()
		c.publish()
		return
	}
	c.views = views
	c.weekError = ""
	c.publish()
}

func (c *Calendar) selectDate(date string) {
	c.tracker.Track(analytics.CalendarDateClicked{Date: date})

	day, ok := calendar.FindDay(c.days, date)
	if !ok {
		return
	}
	if day.Holiday || dates.IsWeekend(day.Date) {
		if !c.expanded {
			c.expanded = true
			c.publish()
		}
		return
	}
	if !day.Available {
		return
	}

	index := dates.WeekdayIndex(day.Date)
	if !c.weekdays.Contains(index) {
		c.toggleWeekday(index)
		return
	}

	views, err := calendar.RecalculateForStartDate(c.days, c.weekdays, c.quota, day.Date, c.maxValidStart)
	if err != nil {
		c.effects.Emit(ShowError{Message: err.Error()})
		return
	}
	c.views = views
	c.weekError = ""
	c.publish()
}

func (c *Calendar) confirm() {
	m := c.buildModel()
	if !m.IsConfirmEnabled {
		c.effects.Emit(ShowError{Message: errDatesRequired})
		return
	}

	weekdays := c.weekdays.Sorted()
	c.tracker.Track(analytics.DatesConfirmed{RideCount: m.SelectedRideCount, Weekdays: weekdays})
	c.effects.Emit(DatesConfirmed{
		SelectedDates:    calendar.SelectedDates(c.views),
		SelectedWeekdays: weekdays,
	})
}

func (c *Calendar) publish() {
	c.state.Set(Ready{Model: c.buildModel()})
}

func (c *Calendar) buildModel() CalendarModel {
	count := calendar.SelectedCount(c.views)
	m := CalendarModel{
		CalendarDates:            c.views,
		SelectedWeekdays:         calendar.NewWeekdaySlots(c.weekdays),
		TotalRidesNeeded:         c.quota,
		SelectedRideCount:        count,
		HolidayRemarks:           c.holidayRemarks,
		IsHolidayRemarksExpanded: c.expanded,
		IsConfirmEnabled:         count == c.quota && c.weekError == "",
		RidesSelectedText:        fmt.Sprintf("%d / %d rides selected", count, c.quota),
		FooterRemarks:            c.footerRemarks,
		MaxValidStartDate:        dates.Format(c.maxValidStart),
		MinimumDaysPerWeek:       c.minimum,
	}

	start, end, ok := calendar.DateRangeText(c.views)
	if ok {
		m.StartDateText = &start
		m.EndDateText = &end
	}
	if c.weekError != "" {
		weekError := c.weekError
		m.WeekSelectionError = &weekError
	}

	if ok && count == c.quota {
		m.PlanDurationText = fmt.Sprintf("%d rides · %s to %s", count, start, end)
	} else {
		m.PlanDurationText = m.RidesSelectedText
	}
	return m
}
