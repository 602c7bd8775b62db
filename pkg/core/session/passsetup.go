package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jakechorley/ridepass/pkg/analytics"
	"github.com/jakechorley/ridepass/pkg/clients/calendarclient"
	"github.com/jakechorley/ridepass/pkg/core/calendar"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/core/validation"
)

var (
	ErrUnknownShift         = errors.New("unknown shift")
	ErrCalendarNotLoaded    = errors.New("calendar not loaded")
	ErrIncompatibleWeekdays = errors.New("weekdays incompatible with paired shift")
)

// cachedCalendar is the raw calendar of one shift configuration
type cachedCalendar struct {
	req  model.CalendarRequest
	resp *model.CalendarResponse
	days []calendar.Day
}

// PassSetup coordinates the shifts of one subscription flow. It owns the raw
// calendar cache, keyed by shift, which is written only when a fetch completes.
type PassSetup struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	plan   model.Plan
	source calendarclient.Source
	shifts map[model.TimeOfDay]*model.ShiftConfig
	cache  map[model.TimeOfDay]*cachedCalendar
	group  singleflight.Group
	closed bool

	logger  *zap.Logger
	tracker analytics.Tracker
}

// NewPassSetup starts a flow for plan. Round trips get a morning and an evening
// shift, one-way plans a morning shift only.
func NewPassSetup(ctx context.Context, plan model.Plan, source calendarclient.Source, logger *zap.Logger, tracker analytics.Tracker) *PassSetup {
	ctx, cancel := context.WithCancel(ctx)
	p := &PassSetup{
		ctx:     ctx,
		cancel:  cancel,
		plan:    plan,
		source:  source,
		shifts:  make(map[model.TimeOfDay]*model.ShiftConfig),
		cache:   make(map[model.TimeOfDay]*cachedCalendar),
		logger:  logger,
		tracker: tracker,
	}
	for _, tod := range shiftsFor(plan) {
		p.shifts[tod] = &model.ShiftConfig{TimeOfDay: tod}
	}
	return p
}

func shiftsFor(plan model.Plan) []model.TimeOfDay {
	if plan.IsRoundTrip {
		return []model.TimeOfDay{model.Morning, model.Evening}
	}
	return []model.TimeOfDay{model.Morning}
}

func (p *PassSetup) Plan() model.Plan {
	return p.plan
}

// ShiftOrder returns the shifts of the flow, morning first
func (p *PassSetup) ShiftOrder() []model.TimeOfDay {
	return shiftsFor(p.plan)
}

// Shift returns a copy of the shift configuration
func (p *PassSetup) Shift(tod model.TimeOfDay) (model.ShiftConfig, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	shift, ok := p.shifts[tod]
	if !ok {
		return model.ShiftConfig{}, false
	}
	return copyShift(shift), true
}

// Shifts returns copies of all shift configurations
func (p *PassSetup) Shifts() map[model.TimeOfDay]model.ShiftConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	shifts := make(map[model.TimeOfDay]model.ShiftConfig, len(p.shifts))
	for tod, shift := range p.shifts {
		shifts[tod] = copyShift(shift)
	}
	return shifts
}

func copyShift(s *model.ShiftConfig) model.ShiftConfig {
	c := *s
	c.SelectedDates = append([]string(nil), s.SelectedDates...)
	c.SelectedWeekdays = append([]int(nil), s.SelectedWeekdays...)
	return c
}

// SetStops changes the stops of a shift. A new stop pair invalidates the cached
// calendar and the schedule of that shift.
func (p *PassSetup) SetStops(tod model.TimeOfDay, pickup, dropOff model.Stop) error {
	if pickup.ID == dropOff.ID {
		return fmt.Errorf("pickup and drop-off must be different stops")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	shift, ok := p.shifts[tod]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownShift, tod)
	}

	unchanged := shift.HasStops() && shift.Pickup.ID == pickup.ID && shift.DropOff.ID == dropOff.ID
	shift.Pickup = &pickup
	shift.DropOff = &dropOff
	if unchanged {
		return nil
	}

	delete(p.cache, tod)
	shift.SelectedDates = nil
	shift.SelectedWeekdays = nil
	shift.ScheduleSummary = ""
	p.logger.Debug("Shift stops changed",
		zap.String("shift", string(tod)),
		zap.Int64("pickup", pickup.ID),
		zap.Int64("drop_off", dropOff.ID))
	return nil
}

func (p *PassSetup) request(shift *model.ShiftConfig) model.CalendarRequest {
	return model.CalendarRequest{
		PickupStopID:  shift.Pickup.ID,
		DropOffStopID: shift.DropOff.ID,
		PlanSlug:      p.plan.Slug,
		TimeOfDay:     shift.TimeOfDay,
	}
}

// FetchCalendars fetches the raw calendar of every shift with stops that is not
// cached yet, concurrently. Shifts without a schedule get the default selection.
func (p *PassSetup) FetchCalendars(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	requests := make(map[model.TimeOfDay]model.CalendarRequest)
	for tod, shift := range p.shifts {
		if !shift.HasStops() {
			continue
		}
		req := p.request(shift)
		if cached, ok := p.cache[tod]; ok && cached.req == req {
			continue
		}
		requests[tod] = req
	}
	p.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for tod, req := range requests {
		g.Go(func() error {
			return p.fetchShift(gctx, tod, req)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for tod := range requests {
		p.preselect(tod)
	}
	return nil
}

// fetchShift collapses concurrent fetches of the same shift configuration
func (p *PassSetup) fetchShift(ctx context.Context, tod model.TimeOfDay, req model.CalendarRequest) error {
	key := fmt.Sprintf("%s/%d/%d/%s", tod, req.PickupStopID, req.DropOffStopID, req.PlanSlug)
	_, err, shared := p.group.Do(key, func() (any, error) {
		start := time.Now()
		resp, err := p.source.FetchCalendar(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s calendar: %w", tod, err)
		}
		if err := validation.CalendarResponse(resp); err != nil {
			return nil, fmt.Errorf("invalid %s calendar: %w", tod, err)
		}
		days, err := calendar.ParseDays(resp.Dates)
		if err != nil {
			return nil, fmt.Errorf("invalid %s calendar: %w", tod, err)
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return nil, ErrClosed
		}
		// drop results for a stop pair that changed while fetching
		if shift := p.shifts[tod]; shift.HasStops() && p.request(shift) == req {
			p.cache[tod] = &cachedCalendar{req: req, resp: resp, days: days}
		}

		p.logger.Debug("Fetched shift calendar",
			zap.String("shift", string(tod)),
			zap.Int("days", len(days)),
			zap.Duration("took", time.Since(start)))
		return nil, nil
	})
	if shared {
		p.logger.Debug("Shared in-flight calendar fetch", zap.String("shift", string(tod)))
	}
	return err
}

// preselect applies the default schedule to a shift that has none. Caller holds p.mu.
func (p *PassSetup) preselect(tod model.TimeOfDay) {
	shift := p.shifts[tod]
	cached, ok := p.cache[tod]
	if !ok || len(shift.SelectedDates) > 0 {
		return
	}

	weekdays := p.defaultWeekdays()
	if other, ok := p.shifts[tod.Other()]; ok && len(other.SelectedWeekdays) > 0 {
		weekdays = calendar.NewWeekdays(other.SelectedWeekdays...)
	}
	views := calendar.BuildSelection(cached.days, weekdays, p.plan.TotalRides, time.Time{})
	p.setSchedule(shift, calendar.SelectedDates(views), weekdays)
}

func (p *PassSetup) defaultWeekdays() calendar.Weekdays {
	weekdays := calendar.NewWeekdays(p.plan.PreferenceDays...)
	if weekdays.Len() == 0 {
		return calendar.DefaultWeekdays
	}
	return weekdays
}

func (p *PassSetup) setSchedule(shift *model.ShiftConfig, selected []string, weekdays calendar.Weekdays) {
	shift.SelectedDates = append([]string(nil), selected...)
	shift.SelectedWeekdays = weekdays.Sorted()
	shift.ScheduleSummary = scheduleSummary(selected)
}

// scheduleSummary describes selected dates, e.g. "22 rides, 05 Jan to 02 Feb"
func scheduleSummary(selected []string) string {
	if len(selected) == 0 {
		return ""
	}
	var first, last time.Time
	for _, s := range selected {
		t, err := dates.Parse(s)
		if err != nil {
			continue
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	if first.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d rides, %s", len(selected), dates.FormatRange(first, last))
}

// CalendarInit builds the Initialize event for the calendar screen of a shift
func (p *PassSetup) CalendarInit(tod model.TimeOfDay) (Initialize, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	shift, ok := p.shifts[tod]
	if !ok {
		return Initialize{}, fmt.Errorf("%w: %s", ErrUnknownShift, tod)
	}
	cached, ok := p.cache[tod]
	if !ok {
		return Initialize{}, fmt.Errorf("%w for %s shift", ErrCalendarNotLoaded, tod)
	}

	weekdays := calendar.NewWeekdays(shift.SelectedWeekdays...)
	if weekdays.Len() == 0 {
		weekdays = p.defaultWeekdays()
	}

	p.tracker.Track(analytics.CalendarOpened{TimeOfDay: tod, PlanSlug: p.plan.Slug})
	return Initialize{
		Days:            cached.resp.Dates,
		Quota:           p.plan.TotalRides,
		Weekdays:        weekdays,
		SelectedDates:   append([]string(nil), shift.SelectedDates...),
		MaxValidStart:   cached.resp.MaxValidStartDate,
		MinimumWeekdays: p.plan.MinimumDaysPerWeek,
		FooterRemarks:   cached.resp.FooterRemarks,
	}, nil
}

// ApplySchedule stores a confirmed schedule for a shift. On round trips the
// paired shift must still be able to fill its quota with the new weekdays, and
// is re-selected with them; otherwise nothing changes.
func (p *PassSetup) ApplySchedule(tod model.TimeOfDay, selected []string, weekdays calendar.Weekdays) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	shift, ok := p.shifts[tod]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownShift, tod)
	}
	if err := validation.RideCountExact(len(selected), p.plan.TotalRides); err != nil {
		return err
	}
	for _, s := range selected {
		if _, err := dates.Parse(s); err != nil {
			return err
		}
	}

	var paired *model.ShiftConfig
	var pairedCalendar *cachedCalendar
	if p.plan.IsRoundTrip {
		other := tod.Other()
		if cached, ok := p.cache[other]; ok {
			if !calendar.ValidatePairedShiftCompatibility(cached.days, weekdays, p.plan.TotalRides) {
				p.logger.Info("Rejected weekdays for paired shift",
					zap.String("shift", string(tod)),
					zap.String("paired", string(other)),
					zap.Stringer("weekdays", weekdays))
				return &calendar.RecalcError{
					Kind:    ErrIncompatibleWeekdays,
					Message: fmt.Sprintf("Cannot apply these weekdays: %s shift cannot fill required rides", other.ShiftName()),
				}
			}
			paired = p.shifts[other]
			pairedCalendar = cached
		}
	}

	p.setSchedule(shift, selected, weekdays)
	p.tracker.Track(analytics.ScheduleApplied{TimeOfDay: tod, Summary: shift.ScheduleSummary})

	if paired != nil && calendar.NewWeekdays(paired.SelectedWeekdays...) != weekdays {
		views := calendar.BuildSelection(pairedCalendar.days, weekdays, p.plan.TotalRides, time.Time{})
		p.setSchedule(paired, calendar.SelectedDates(views), weekdays)
		p.logger.Debug("Re-selected paired shift",
			zap.String("shift", string(paired.TimeOfDay)),
			zap.String("summary", paired.ScheduleSummary))
	}
	return nil
}

// CanProceed reports whether every required shift is configured
func (p *PassSetup) CanProceed() bool {
	return validation.CanProceed(p.Shifts(), p.plan.IsRoundTrip)
}

// Close cancels in-flight fetches and releases the calendar cache
func (p *PassSetup) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.cancel()
	p.cache = make(map[model.TimeOfDay]*cachedCalendar)
}
