/*
service.go - Store-backed entry point for the engine

PURPOSE:
  Connects the pure Engine to persistence. The service loads the full
  history of a calendar, assembles the holiday calendar (official table +
  stored manual overrides for every year the replay touches) and runs the
  engine. It also owns the save path, where entries are normalized before
  they are written.

WHY A SERVICE?
  The engine must stay a pure function of (entries, target, holidays).
  Everything that touches a store, and therefore can fail, lives here.

USAGE:
  svc := overtime.NewService(store, overtime.RomanianHolidays())
  summary, err := svc.Summary(ctx, calendarID, generic.NewMonth(2025, time.March))
*/
package overtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/warp/pontaj/generic"
)

// Service runs the engine against stored calendars.
type Service struct {
	Store    Store
	Official *HolidayTable
}

// NewService creates a service. A nil official table means the built-in
// Romanian table.
func NewService(store Store, official *HolidayTable) *Service {
	if official == nil {
		official = RomanianHolidays()
	}
	return &Service{Store: store, Official: official}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// ManualHolidays returns the manual list of year. A year that was never
// configured starts out as a copy of the official list.
func (s *Service) ManualHolidays(ctx context.Context, year int) ([]generic.Date, error) {
	dates, configured, err := s.Store.ManualHolidays(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load manual holidays for %d: %w", year, err)
	}
	if !configured {
		return s.Official.Official(year), nil
	}
	return dates, nil
}

// SetManualHolidays replaces the manual list of year.
func (s *Service) SetManualHolidays(ctx context.Context, year int, dates []generic.Date) error {
	for _, d := range dates {
		if d.Year() != year {
			return fmt.Errorf("%w: %s is not in %d", generic.ErrInvalidDate, d, year)
		}
	}
	return s.Store.SetManualHolidays(ctx, year, sortedDates(dates))
}

// HolidayCalendar builds the official table plus the stored manual lists of
// years from..to inclusive.
func (s *Service) HolidayCalendar(ctx context.Context, from, to int) (*HolidayTable, error) {
	table := s.Official
	for year := from; year <= to; year++ {
		dates, configured, err := s.Store.ManualHolidays(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("failed to load manual holidays for %d: %w", year, err)
		}
		if configured {
			table = table.WithManual(year, dates)
		}
	}
	return table, nil
}

// =============================================================================
// ENTRIES
// =============================================================================

// SaveEntry normalizes e and writes it under its date.
func (s *Service) SaveEntry(ctx context.Context, calendarID generic.CalendarID, e DayEntry) (DayEntry, error) {
	if _, err := s.Store.GetCalendar(ctx, calendarID); err != nil {
		return DayEntry{}, err
	}
	cal, err := s.HolidayCalendar(ctx, e.Date.Year(), e.Date.Year())
	if err != nil {
		return DayEntry{}, err
	}
	normalized, err := NormalizeEntry(cal, e)
	if err != nil {
		return DayEntry{}, err
	}
	if normalized.ID == "" {
		normalized.ID = generic.EntryID(uuid.NewString())
	}
	return s.Store.SaveEntry(ctx, calendarID, normalized)
}

// PlanRepeat previews a repeated save without writing anything.
func (s *Service) PlanRepeat(ctx context.Context, template DayEntry, until generic.Date, intervalDays int) (RepeatPlan, []generic.Date, error) {
	cal, err := s.HolidayCalendar(ctx, template.Date.Year(), until.Year())
	if err != nil {
		return RepeatPlan{}, nil, err
	}
	return PlanRepeat(cal, template, until, intervalDays)
}

// SaveRepeated writes template on every repeat date up to until.
func (s *Service) SaveRepeated(ctx context.Context, calendarID generic.CalendarID, template DayEntry, until generic.Date, intervalDays int) ([]DayEntry, error) {
	if _, err := s.Store.GetCalendar(ctx, calendarID); err != nil {
		return nil, err
	}
	plan, _, err := s.PlanRepeat(ctx, template, until, intervalDays)
	if err != nil {
		return nil, err
	}
	saved := make([]DayEntry, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		e.ID = generic.EntryID(uuid.NewString())
		out, err := s.Store.SaveEntry(ctx, calendarID, e)
		if err != nil {
			return saved, fmt.Errorf("failed to save repeated entry %s: %w", e.Date, err)
		}
		saved = append(saved, out)
	}
	return saved, nil
}

// =============================================================================
// SUMMARIES
// =============================================================================

// engineFor loads the history and builds an engine whose holiday calendar
// covers every year the replay reads, plus the year after target for night
// shifts on December 31.
func (s *Service) engineFor(ctx context.Context, calendarID generic.CalendarID, lastYear int) (*Engine, []DayEntry, error) {
	if _, err := s.Store.GetCalendar(ctx, calendarID); err != nil {
		return nil, nil, err
	}
	entries, err := s.Store.Entries(ctx, calendarID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load entries: %w", err)
	}
	firstYear := lastYear
	for _, e := range entries {
		if e.Date.Year() < firstYear {
			firstYear = e.Date.Year()
		}
	}
	cal, err := s.HolidayCalendar(ctx, firstYear, lastYear+1)
	if err != nil {
		return nil, nil, err
	}
	return NewEngine(cal), entries, nil
}

// Summary returns the report of month m of a calendar.
func (s *Service) Summary(ctx context.Context, calendarID generic.CalendarID, m generic.Month) (MonthSummary, error) {
	engine, entries, err := s.engineFor(ctx, calendarID, m.Year)
	if err != nil {
		return MonthSummary{}, err
	}
	return engine.Summary(entries, m), nil
}

// Breakdown returns every replayed month up to m.
func (s *Service) Breakdown(ctx context.Context, calendarID generic.CalendarID, m generic.Month) ([]MonthRecord, error) {
	engine, entries, err := s.engineFor(ctx, calendarID, m.Year)
	if err != nil {
		return nil, err
	}
	return engine.Breakdown(entries, m), nil
}

// YearSummaries computes the twelve monthly reports of year concurrently.
// Each month is an independent replay over the same immutable snapshot.
func (s *Service) YearSummaries(ctx context.Context, calendarID generic.CalendarID, year int) ([12]MonthSummary, error) {
	var out [12]MonthSummary
	engine, entries, err := s.engineFor(ctx, calendarID, year)
	if err != nil {
		return out, err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range out {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = engine.Summary(entries, generic.NewMonth(year, time.Month(i+1)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
