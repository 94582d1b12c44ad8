/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built histories that populate the store with realistic
	entries. Each scenario creates one demo profile with one calendar and
	fills 2025 so that a specific part of the ledger shows up in the
	monthly reports.

AVAILABLE SCENARIOS:

	steady-overtime: 12h day shifts on every workday, no CS; debt ages out
	cs-clearing:     One heavy month, then CS taken three months later
	weekend-nights:  Night shifts around weekends and holidays

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create the demo profile and calendar
 3. Save entries through the service, so they are normalized like user input

USAGE VIA API:

	POST /api/scenarios/load
	{"scenarioId": "cs-clearing"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler
  - overtime/service.go: SaveEntry
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/logging"
	"github.com/warp/pontaj/overtime"
)

const (
	DemoProfileID  generic.ProfileID  = "demo"
	DemoCalendarID generic.CalendarID = "demo-calendar"

	demoYear = 2025
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	load func(ctx context.Context, h *Handler, cal generic.HolidayCalendar) error
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "steady-overtime",
			Name:        "Steady Overtime",
			Description: "12h30 day shifts on every workday of January-June; no CS, so each month's debt ages out after four months",
		},
		load: loadSteadyOvertime,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "cs-clearing",
			Name:        "CS Clearing",
			Description: "A heavy January followed by regular months; CS taken in April clears January's debt before it ages out",
		},
		load: loadCSClearing,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "weekend-nights",
			Name:        "Weekend Nights",
			Description: "Night shifts on Fridays, Saturdays and Sundays of March plus the 30 April night before Labour Day",
		},
		load: loadWeekendNights,
	},
}

// Scenarios lists the available scenarios.
func Scenarios() []ScenarioDTO {
	out := make([]ScenarioDTO, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, s.ScenarioDTO)
	}
	return out
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Scenarios())
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s.ScenarioDTO)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.ApplyScenario(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		h.fail(w, r, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "loaded",
		"scenario":   req.ScenarioID,
		"profileId":  string(DemoProfileID),
		"calendarId": string(DemoCalendarID),
	})
}

var errUnknownScenario = errors.New("unknown scenario")

// ApplyScenario resets the store and loads scenario id.
func (h *Handler) ApplyScenario(ctx context.Context, id string) error {
	var found *scenario
	for i := range scenarios {
		if scenarios[i].ID == id {
			found = &scenarios[i]
		}
	}
	if found == nil {
		return errUnknownScenario
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.resetStore(ctx); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}
	h.currentScenario = ""

	now := time.Now().UTC()
	if err := h.Store.CreateProfile(ctx, generic.Profile{ID: DemoProfileID, Name: "Demo", CreatedAt: now}); err != nil {
		return err
	}
	if err := h.Store.CreateCalendar(ctx, generic.Calendar{
		ID: DemoCalendarID, ProfileID: DemoProfileID, Name: found.Name, CreatedAt: now,
	}); err != nil {
		return err
	}

	cal, err := h.Service.HolidayCalendar(ctx, demoYear, demoYear+1)
	if err != nil {
		return err
	}
	if err := found.load(ctx, h, cal); err != nil {
		return err
	}

	h.currentScenario = id
	h.Logger.InfoContext(ctx, "scenario loaded", "scenario", id, logging.FieldCalendar, DemoCalendarID)
	return nil
}

type resetter interface {
	Reset(ctx context.Context) error
}

func (h *Handler) resetStore(ctx context.Context) error {
	if r, ok := h.Store.(resetter); ok {
		return r.Reset(ctx)
	}
	profiles, err := h.Store.ListProfiles(ctx)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if err := h.Store.DeleteProfile(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// fillMonth saves pick(d) on every day of m where it returns shifts.
func (h *Handler) fillMonth(ctx context.Context, m generic.Month, pick func(d generic.Date) []overtime.Shift) error {
	for _, d := range m.Days() {
		shifts := pick(d)
		if len(shifts) == 0 {
			continue
		}
		if _, err := h.Service.SaveEntry(ctx, DemoCalendarID, overtime.DayEntry{Date: d, Shifts: shifts}); err != nil {
			return fmt.Errorf("failed to seed %s: %w", d, err)
		}
	}
	return nil
}

func onBaselineDays(cal generic.HolidayCalendar, t overtime.ShiftType) func(generic.Date) []overtime.Shift {
	return func(d generic.Date) []overtime.Shift {
		if !generic.IsBaselineDay(cal, d) {
			return nil
		}
		return []overtime.Shift{overtime.DefaultShift(t)}
	}
}

func loadSteadyOvertime(ctx context.Context, h *Handler, cal generic.HolidayCalendar) error {
	for month := time.January; month <= time.June; month++ {
		if err := h.fillMonth(ctx, generic.NewMonth(demoYear, month), onBaselineDays(cal, overtime.ShiftDay)); err != nil {
			return err
		}
	}
	return nil
}

func loadCSClearing(ctx context.Context, h *Handler, cal generic.HolidayCalendar) error {
	if err := h.fillMonth(ctx, generic.NewMonth(demoYear, time.January), onBaselineDays(cal, overtime.ShiftDay)); err != nil {
		return err
	}
	for month := time.February; month <= time.May; month++ {
		if err := h.fillMonth(ctx, generic.NewMonth(demoYear, month), onBaselineDays(cal, overtime.ShiftNeither)); err != nil {
			return err
		}
	}

	// Five days of CS in April, each a full baseline day.
	april := generic.NewMonth(demoYear, time.April)
	taken := 0
	for _, d := range april.Days() {
		if taken == 5 || !generic.IsBaselineDay(cal, d) {
			continue
		}
		e := overtime.DayEntry{
			Date:   d,
			Notes:  "recuperare",
			Shifts: []overtime.Shift{{Type: overtime.ShiftCS, Duration: generic.NewMinutes(overtime.BaselineDayMinutes)}},
		}
		if _, err := h.Service.SaveEntry(ctx, DemoCalendarID, e); err != nil {
			return err
		}
		taken++
	}
	return nil
}

func loadWeekendNights(ctx context.Context, h *Handler, cal generic.HolidayCalendar) error {
	march := generic.NewMonth(demoYear, time.March)
	err := h.fillMonth(ctx, march, func(d generic.Date) []overtime.Shift {
		switch d.Weekday() {
		case time.Friday, time.Saturday, time.Sunday:
			return []overtime.Shift{overtime.DefaultShift(overtime.ShiftNight)}
		}
		if generic.IsBaselineDay(cal, d) {
			return []overtime.Shift{overtime.DefaultShift(overtime.ShiftNeither)}
		}
		return nil
	})
	if err != nil {
		return err
	}

	_, err = h.Service.SaveEntry(ctx, DemoCalendarID, overtime.DayEntry{
		Date:   generic.NewDate(demoYear, time.April, 30),
		Notes:  "noapte inainte de 1 Mai",
		Shifts: []overtime.Shift{overtime.DefaultShift(overtime.ShiftNight)},
	})
	return err
}
