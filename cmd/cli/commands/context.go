package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/ridepass/internal/config"
	"github.com/jakechorley/ridepass/pkg/analytics"
	"github.com/jakechorley/ridepass/pkg/clients/calendarclient"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
	"github.com/jakechorley/ridepass/pkg/core/session"
	"github.com/jakechorley/ridepass/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Source   calendarclient.Source
	Tracker  analytics.Tracker
	Logger   *zap.Logger
	Ctx      context.Context
	Out      io.Writer
	Today    func() time.Time

	flow *Flow
}

// Flow is the subscription being set up in the current session
type Flow struct {
	Setup    *session.PassSetup
	Calendar *session.Calendar
	Shift    model.TimeOfDay

	effects     []session.Effect
	stopEffects func()
}

// StartFlow replaces any flow in progress with a new one for plan
func (app *AppContext) StartFlow(plan model.Plan) *Flow {
	app.CloseFlow()
	app.flow = &Flow{
		Setup: session.NewPassSetup(app.Ctx, plan, app.Source, app.Logger, app.Tracker),
	}
	return app.flow
}

func (app *AppContext) today() time.Time {
	if app.Today != nil {
		return app.Today()
	}
	return dates.Today()
}

// ActiveFlow returns the flow in progress
func (app *AppContext) ActiveFlow() (*Flow, error) {
	if app.flow == nil {
		return nil, fmt.Errorf("no pass setup in progress, run 'setup <plan>' first")
	}
	return app.flow, nil
}

// CloseFlow releases the flow in progress, if any
func (app *AppContext) CloseFlow() {
	if app.flow == nil {
		return
	}
	app.flow.closeCalendar()
	app.flow.Setup.Close()
	app.flow = nil
}

// openCalendar starts a calendar screen for a shift and initializes it from
// the pass setup cache
func (f *Flow) openCalendar(app *AppContext, tod model.TimeOfDay) error {
	event, err := f.Setup.CalendarInit(tod)
	if err != nil {
		return err
	}

	f.closeCalendar()
	f.Calendar = session.NewCalendar(app.Ctx, app.Logger, app.Tracker, session.WithToday(app.today))
	f.Shift = tod
	f.stopEffects = f.Calendar.Effects().Observe(func(e session.Effect) {
		f.effects = append(f.effects, e)
	})
	for _, e := range f.dispatch(event) {
		if shown, ok := e.(session.ShowError); ok {
			return fmt.Errorf("failed to open %s calendar: %s", tod, shown.Message)
		}
	}
	return nil
}

// activeCalendar returns the open calendar screen
func (f *Flow) activeCalendar() (*session.Calendar, error) {
	if f.Calendar == nil {
		return nil, fmt.Errorf("no calendar open, run 'open <shift>' first")
	}
	return f.Calendar, nil
}

// dispatch sends an event to the open calendar and returns the effects it produced
func (f *Flow) dispatch(event session.Event) []session.Effect {
	f.Calendar.Dispatch(event)
	effects := f.effects
	f.effects = nil
	return effects
}

func (f *Flow) closeCalendar() {
	if f.Calendar == nil {
		return
	}
	f.stopEffects()
	f.Calendar.Close()
	f.Calendar = nil
	f.effects = nil
}
