package calendarclient

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/core/validation"
)

// Holiday is a public holiday with no rides
type Holiday struct {
	Date   time.Time
	Remark string
}

// ServiceGap is a recurring day with no rides, expressed as an RRULE
// (e.g. "FREQ=MONTHLY;BYMONTHDAY=15" for a monthly maintenance day)
type ServiceGap struct {
	RRule  string
	Remark string // shown as a holiday remark when set
}

// Options configures a GeneratedClient
type Options struct {
	HorizonDays        int           // days offered, starting tomorrow
	MaxStartOffsetDays int           // latest start date, in days from today
	Latency            time.Duration // simulated upstream latency
	Holidays           []Holiday
	ServiceGaps        []ServiceGap
	FooterRemarks      []model.CalendarRemark
	Now                func() time.Time
}

type serviceGap struct {
	options rrule.ROption
	remark  string
}

// GeneratedClient builds calendars locally: weekends, holidays and service
// gaps are unavailable, every other day is bookable.
type GeneratedClient struct {
	opts   Options
	gaps   []serviceGap
	logger *zap.Logger
}

// NewGeneratedClient parses the service gap rules and returns a client
func NewGeneratedClient(opts Options, logger *zap.Logger) (*GeneratedClient, error) {
	if opts.HorizonDays <= 0 {
		return nil, fmt.Errorf("horizon must be at least one day, got %d", opts.HorizonDays)
	}
	if opts.MaxStartOffsetDays <= 0 {
		return nil, fmt.Errorf("max start offset must be at least one day, got %d", opts.MaxStartOffsetDays)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FooterRemarks == nil {
		opts.FooterRemarks = DefaultFooterRemarks
	}

	gaps := make([]serviceGap, 0, len(opts.ServiceGaps))
	for i, gap := range opts.ServiceGaps {
		rule, err := rrule.StrToRRule(gap.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for service gap %d: %w", i, err)
		}
		gaps = append(gaps, serviceGap{options: rule.OrigOptions, remark: gap.Remark})
	}

	return &GeneratedClient{opts: opts, gaps: gaps, logger: logger}, nil
}

// FetchCalendar returns HorizonDays days starting tomorrow
func (c *GeneratedClient) FetchCalendar(ctx context.Context, req model.CalendarRequest) (*model.CalendarResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, fmt.Errorf("invalid calendar request: %w", err)
	}

	if c.opts.Latency > 0 {
		timer := time.NewTimer(c.opts.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("calendar fetch cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	today := dates.TruncateToDay(c.opts.Now())
	days := dates.Range(today.AddDate(0, 0, 1), c.opts.HorizonDays)
	closed, err := c.closedDays(days[0], days[len(days)-1])
	if err != nil {
		return nil, err
	}

	resp := &model.CalendarResponse{
		Dates:             make([]model.CalendarDay, 0, len(days)),
		MaxValidStartDate: dates.Format(today.AddDate(0, 0, c.opts.MaxStartOffsetDays)),
		FooterRemarks:     c.opts.FooterRemarks,
	}
	for _, day := range days {
		entry := model.CalendarDay{
			Date:            dates.Format(day),
			IsRideAvailable: !dates.IsWeekend(day),
		}
		if remark, ok := closed[day]; ok {
			entry.IsRideAvailable = false
			if remark != "" {
				entry.HolidayRemark = &remark
			}
		}
		resp.Dates = append(resp.Dates, entry)
	}

	if err := validation.CalendarResponse(resp); err != nil {
		return nil, err
	}

	c.logger.Debug("Generated calendar",
		zap.String("shift", string(req.TimeOfDay)),
		zap.String("plan", req.PlanSlug),
		zap.String("from", resp.Dates[0].Date),
		zap.Int("days", len(resp.Dates)),
		zap.Int("closed", len(closed)))

	return resp, nil
}

// closedDays returns the holidays and service gaps between from and to, with their remarks
func (c *GeneratedClient) closedDays(from, to time.Time) (map[time.Time]string, error) {
	closed := make(map[time.Time]string)
	for i, gap := range c.gaps {
		// fresh rule per call, the client is shared between concurrent fetches
		options := gap.options
		options.Dtstart = from
		rule, err := rrule.NewRRule(options)
		if err != nil {
			return nil, fmt.Errorf("failed to build service gap %d: %w", i, err)
		}
		for _, occurrence := range rule.Between(from, to, true) {
			closed[dates.TruncateToDay(occurrence)] = gap.remark
		}
	}
	// holidays win over service gaps
	for _, h := range c.opts.Holidays {
		day := dates.TruncateToDay(h.Date)
		if !day.Before(from) && !day.After(to) {
			closed[day] = h.Remark
		}
	}
	return closed, nil
}
