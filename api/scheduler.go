/*
scheduler.go - Overdue overtime watch

PURPOSE:
  Periodically computes the current month's summary of every calendar and
  logs a warning for each one whose osDebt90d is positive: overtime from
  four months ago that was not compensated with CS in time and has just
  been written off.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Checks once immediately on start
  - Stateless: nothing is persisted, every check is a fresh replay
  - Calendars are checked concurrently (bounded errgroup); one failing
    calendar is logged and does not stop the others

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether the watch is active (default: true)

USAGE:
  watch := NewDebtWatch(service, loc, logger)
  watch.Start()
  // ... later
  watch.Stop()

SEE ALSO:
  - overtime/service.go: Summary
  - config/config.go: DEBT_WATCH_INTERVAL, DEBT_WATCH_ENABLED
*/
package api

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/logging"
	"github.com/warp/pontaj/overtime"
)

// maxConcurrentChecks bounds the calendars replayed at once.
const maxConcurrentChecks = 4

// DebtAlert is one calendar with written-off overtime in the checked month.
type DebtAlert struct {
	ProfileID  generic.ProfileID
	CalendarID generic.CalendarID
	Month      generic.Month
	OSDebt90d  int64
}

// DebtWatch warns about overtime that aged out without CS.
type DebtWatch struct {
	Service       *overtime.Service
	Location      *time.Location
	Logger        *logging.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDebtWatch creates a watch with a one hour interval.
func NewDebtWatch(svc *overtime.Service, loc *time.Location, logger *logging.Logger) *DebtWatch {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &DebtWatch{
		Service:       svc,
		Location:      loc,
		Logger:        logger.WithComponent(logging.ComponentDebtWatch),
		CheckInterval: time.Hour,
		Enabled:       true,
	}
}

// Start begins the watch.
func (dw *DebtWatch) Start() {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if !dw.Enabled {
		dw.Logger.Info("disabled, not starting")
		return
	}
	if dw.ticker != nil {
		return
	}

	dw.ticker = time.NewTicker(dw.CheckInterval)
	dw.stop = make(chan struct{})
	dw.wg.Add(1)
	go dw.run(dw.ticker, dw.stop)

	dw.Logger.Info("started", "interval", dw.CheckInterval.String())
}

// Stop stops the watch and waits for a running check to finish.
func (dw *DebtWatch) Stop() {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.ticker != nil {
		dw.ticker.Stop()
		close(dw.stop)
		dw.wg.Wait()
		dw.ticker = nil
		dw.Logger.Info("stopped")
	}
}

func (dw *DebtWatch) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer dw.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	// Run immediately on start
	dw.check(ctx)

	for {
		select {
		case <-ticker.C:
			dw.check(ctx)
		case <-stop:
			return
		}
	}
}

func (dw *DebtWatch) check(ctx context.Context) {
	month := generic.Today(dw.Location).CalendarMonth()
	alerts, err := dw.CheckMonth(ctx, month)
	if err != nil {
		dw.Logger.ErrorContext(ctx, "check failed", logging.FieldMonth, month.String(), logging.FieldError, err)
		return
	}
	dw.Logger.Info("check completed", logging.FieldMonth, month.String(), "alerts", len(alerts))
}

// CheckMonth computes month for every calendar and returns (and logs) the
// ones with osDebt90d > 0, in profile/calendar order.
func (dw *DebtWatch) CheckMonth(ctx context.Context, month generic.Month) ([]DebtAlert, error) {
	store := dw.Service.Store
	profiles, err := store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	var calendars []generic.Calendar
	for _, p := range profiles {
		cals, err := store.ListCalendars(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		calendars = append(calendars, cals...)
	}

	results := make([]*DebtAlert, len(calendars))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)
	for i, c := range calendars {
		i, c := i, c
		g.Go(func() error {
			s, err := dw.Service.Summary(gctx, c.ID, month)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				dw.Logger.WarnContext(gctx, "calendar check failed",
					logging.FieldCalendar, c.ID, logging.FieldError, err)
				return nil
			}
			if s.OSDebt90d > 0 {
				results[i] = &DebtAlert{ProfileID: c.ProfileID, CalendarID: c.ID, Month: month, OSDebt90d: s.OSDebt90d}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var alerts []DebtAlert
	for _, a := range results {
		if a == nil {
			continue
		}
		dw.Logger.WarnContext(ctx, "overtime written off without CS",
			logging.FieldProfile, a.ProfileID,
			logging.FieldCalendar, a.CalendarID,
			logging.FieldMonth, a.Month.String(),
			logging.FieldDebt, overtime.FormatMinutes(a.OSDebt90d))
		alerts = append(alerts, *a)
	}
	return alerts, nil
}

// RunNow triggers an immediate check (for testing/admin).
func (dw *DebtWatch) RunNow(ctx context.Context) {
	dw.check(ctx)
}
