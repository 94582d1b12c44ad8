/*
handlers.go - HTTP API handlers for the overtime ledger

PURPOSE:
  Exposes profiles, calendars, day entries and the overtime reports via a
  REST API. Handles HTTP request/response and JSON serialization and
  delegates to overtime.Service for everything that touches the engine.

ENDPOINTS:
  Profiles:
    GET    /api/profiles                      List profiles
    POST   /api/profiles                      Create profile
    PUT    /api/profiles/{id}                 Rename profile
    DELETE /api/profiles/{id}                 Delete profile (cascades)
    GET    /api/profiles/{id}/calendars       List calendars
    POST   /api/profiles/{id}/calendars       Create calendar

  Calendars:
    PUT    /api/calendars/{id}                Rename calendar
    DELETE /api/calendars/{id}                Delete calendar (cascades)

  Entries:
    GET    /api/calendars/{id}/entries?year=&month=
    GET    /api/calendars/{id}/entries/{date}
    PUT    /api/calendars/{id}/entries/{date} Save by date, optional repeat
    DELETE /api/calendars/{id}/entries/{date}
    DELETE /api/calendars/{id}/months/{year}/{month}

  Reports:
    GET    /api/calendars/{id}/summary/{year}/{month}
    GET    /api/calendars/{id}/breakdown/{year}/{month}
    GET    /api/calendars/{id}/years/{year}/summary

  Holidays / Backup:
    GET    /api/holidays/{year}               Official + manual list
    PUT    /api/holidays/{year}               Replace manual list
    GET    /api/backup                        Full JSON export
    POST   /api/backup                        Import (replaces profiles)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Profile, calendar or entry not found
  - 409: Duplicate ID
  - 500: Internal errors (logged)

SECURITY NOTE:
  No authentication. The server is meant to run on a trusted machine.

SEE ALSO:
  - dto.go: Request/response data structures
  - export.go: CSV downloads
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/pontaj/factory"
	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/logging"
	"github.com/warp/pontaj/overtime"
)

// maxBackupBytes caps POST /api/backup bodies.
const maxBackupBytes = 32 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    overtime.Store
	Service  *overtime.Service
	Backups  *factory.BackupFactory
	Location *time.Location
	Logger   *logging.Logger

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler. A nil official table means the built-in
// Romanian holidays; a nil location means UTC.
func NewHandler(store overtime.Store, official *overtime.HolidayTable, loc *time.Location, logger *logging.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		Store:    store,
		Service:  overtime.NewService(store, official),
		Backups:  factory.NewBackupFactory(loc),
		Location: loc,
		Logger:   logger.WithComponent(logging.ComponentHTTP),
	}
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

// ListProfiles returns all profiles.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.ListProfiles(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list profiles", err)
		return
	}
	dtos := make([]ProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		dtos = append(dtos, toProfileDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProfile creates a profile.
// POST /api/profiles
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeName(w, r)
	if !ok {
		return
	}
	p := generic.Profile{
		ID:        generic.ProfileID(idOrNew(req.ID)),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.CreateProfile(r.Context(), p); err != nil {
		h.fail(w, r, "Failed to create profile", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProfileDTO(p))
}

// RenameProfile renames a profile.
// PUT /api/profiles/{id}
func (h *Handler) RenameProfile(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeName(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := generic.ProfileID(chi.URLParam(r, "id"))
	if err := h.Store.RenameProfile(ctx, id, req.Name); err != nil {
		h.fail(w, r, "Failed to rename profile", err)
		return
	}
	p, err := h.Store.GetProfile(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

// DeleteProfile deletes a profile with its calendars and entries.
// DELETE /api/profiles/{id}
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := generic.ProfileID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteProfile(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete profile", err)
		return
	}
	h.Logger.InfoContext(r.Context(), "profile deleted", logging.FieldProfile, id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// ListCalendars returns the calendars of a profile.
// GET /api/profiles/{id}/calendars
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	id := generic.ProfileID(chi.URLParam(r, "id"))
	calendars, err := h.Store.ListCalendars(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to list calendars", err)
		return
	}
	dtos := make([]CalendarDTO, 0, len(calendars))
	for _, c := range calendars {
		dtos = append(dtos, toCalendarDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCalendar adds a calendar to a profile.
// POST /api/profiles/{id}/calendars
func (h *Handler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeName(w, r)
	if !ok {
		return
	}
	c := generic.Calendar{
		ID:        generic.CalendarID(idOrNew(req.ID)),
		ProfileID: generic.ProfileID(chi.URLParam(r, "id")),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.CreateCalendar(r.Context(), c); err != nil {
		h.fail(w, r, "Failed to create calendar", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCalendarDTO(c))
}

// RenameCalendar renames a calendar.
// PUT /api/calendars/{id}
func (h *Handler) RenameCalendar(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeName(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := generic.CalendarID(chi.URLParam(r, "id"))
	if err := h.Store.RenameCalendar(ctx, id, req.Name); err != nil {
		h.fail(w, r, "Failed to rename calendar", err)
		return
	}
	c, err := h.Store.GetCalendar(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to load calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarDTO(c))
}

// DeleteCalendar deletes a calendar and its entries.
// DELETE /api/calendars/{id}
func (h *Handler) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	id := generic.CalendarID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteCalendar(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete calendar", err)
		return
	}
	h.Logger.InfoContext(r.Context(), "calendar deleted", logging.FieldCalendar, id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns entries of a calendar, optionally narrowed by
// ?year= and ?month=.
// GET /api/calendars/{id}/entries
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id := generic.CalendarID(chi.URLParam(r, "id"))
	entries, err := h.filteredEntries(r.Context(), id, r.URL.Query().Get("year"), r.URL.Query().Get("month"))
	if err != nil {
		h.fail(w, r, "Failed to list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// GetEntry returns the entry on one date.
// GET /api/calendars/{id}/entries/{date}
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := generic.CalendarID(chi.URLParam(r, "id"))
	date, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	e, err := h.Store.GetEntry(r.Context(), id, date)
	if err != nil {
		h.fail(w, r, "Failed to get entry", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.EntryToJSON(e))
}

// SaveEntry writes the entry of one date. With a repeat block the same
// shifts are written every intervalDays up to until; with preview set the
// plan is returned and nothing is written.
// PUT /api/calendars/{id}/entries/{date}
func (h *Handler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.CalendarID(chi.URLParam(r, "id"))

	var req SaveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	entry, err := h.Backups.EntryFromJSON(factory.EntryJSON{
		Date:   chi.URLParam(r, "date"),
		Shifts: req.Shifts,
		Notes:  req.Notes,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry", err)
		return
	}

	if req.Repeat == nil {
		saved, err := h.Service.SaveEntry(ctx, id, entry)
		if err != nil {
			h.fail(w, r, "Failed to save entry", err)
			return
		}
		writeJSON(w, http.StatusOK, SaveEntryResponse{
			Entries:      toEntryDTOs([]overtime.DayEntry{saved}),
			TotalMinutes: generic.RoundMinutes(saved.TotalMinutes()),
			Saved:        true,
		})
		return
	}

	until, err := generic.ParseDate(req.Repeat.Until)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid repeat end date", err)
		return
	}
	if _, err := h.Store.GetCalendar(ctx, id); err != nil {
		h.fail(w, r, "Failed to save entry", err)
		return
	}
	plan, counted, err := h.Service.PlanRepeat(ctx, entry, until, req.Repeat.IntervalDays)
	if err != nil {
		h.fail(w, r, "Failed to plan repeat", err)
		return
	}
	resp := SaveEntryResponse{
		Entries:      toEntryDTOs(plan.Entries),
		Counted:      dateStrings(counted),
		TotalMinutes: generic.RoundMinutes(plan.TotalMinutes),
	}
	if !req.Repeat.Preview {
		saved, err := h.Service.SaveRepeated(ctx, id, entry, until, req.Repeat.IntervalDays)
		if err != nil {
			h.fail(w, r, "Failed to save repeated entries", err)
			return
		}
		resp.Entries = toEntryDTOs(saved)
		resp.Saved = true
		h.Logger.InfoContext(ctx, "repeated entry saved",
			logging.FieldCalendar, id, "from", entry.Date.String(), "until", until.String(), "count", len(saved))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteEntry removes the entry on one date.
// DELETE /api/calendars/{id}/entries/{date}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := generic.CalendarID(chi.URLParam(r, "id"))
	date, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if err := h.Store.DeleteEntry(r.Context(), id, date); err != nil {
		h.fail(w, r, "Failed to delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMonth removes every entry of one month.
// DELETE /api/calendars/{id}/months/{year}/{month}
func (h *Handler) DeleteMonth(w http.ResponseWriter, r *http.Request) {
	id := generic.CalendarID(chi.URLParam(r, "id"))
	m, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	n, err := h.Store.DeleteMonth(r.Context(), id, m)
	if err != nil {
		h.fail(w, r, "Failed to clear month", err)
		return
	}
	h.Logger.InfoContext(r.Context(), "month cleared",
		logging.FieldCalendar, id, logging.FieldMonth, m.String(), "deleted", n)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetSummary returns the overtime report of one month.
// GET /api/calendars/{id}/summary/{year}/{month}
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id := generic.CalendarID(chi.URLParam(r, "id"))
	m, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	s, err := h.Service.Summary(r.Context(), id, m)
	if err != nil {
		h.fail(w, r, "Failed to compute summary", err)
		return
	}
	writeJSON(w, http.StatusOK, MonthSummaryDTO{CalendarID: string(id), Month: m.String(), MonthSummary: s})
}

// GetBreakdown returns every replayed month up to the target.
// GET /api/calendars/{id}/breakdown/{year}/{month}
func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	id := generic.CalendarID(chi.URLParam(r, "id"))
	m, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	records, err := h.Service.Breakdown(r.Context(), id, m)
	if err != nil {
		h.fail(w, r, "Failed to compute breakdown", err)
		return
	}
	dtos := make([]MonthRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toMonthRecordDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetYearSummary returns the twelve monthly reports of a year.
// GET /api/calendars/{id}/years/{year}/summary
func (h *Handler) GetYearSummary(w http.ResponseWriter, r *http.Request) {
	id := generic.CalendarID(chi.URLParam(r, "id"))
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	summaries, err := h.Service.YearSummaries(r.Context(), id, year)
	if err != nil {
		h.fail(w, r, "Failed to compute year summary", err)
		return
	}
	resp := YearSummaryDTO{CalendarID: string(id), Year: year, Months: make([]MonthSummaryDTO, 0, 12)}
	for i, s := range summaries {
		m := generic.NewMonth(year, time.Month(i+1))
		resp.Months = append(resp.Months, MonthSummaryDTO{CalendarID: string(id), Month: m.String(), MonthSummary: s})
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// GetHolidays returns the official and the manual list of a year. A year
// that was never configured reports the official list as its manual list.
// GET /api/holidays/{year}
func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	manual, err := h.Service.ManualHolidays(r.Context(), year)
	if err != nil {
		h.fail(w, r, "Failed to load holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, HolidaysDTO{
		Year:     year,
		Official: dateStrings(h.Service.Official.Official(year)),
		Manual:   dateStrings(manual),
	})
}

// SetHolidays replaces the manual list of a year.
// PUT /api/holidays/{year}
func (h *Handler) SetHolidays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	var req HolidaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	dates := make([]generic.Date, 0, len(req.Dates))
	for _, s := range req.Dates {
		d, err := generic.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid holiday date", err)
			return
		}
		dates = append(dates, d)
	}
	if err := h.Service.SetManualHolidays(ctx, year, dates); err != nil {
		h.fail(w, r, "Failed to save holidays", err)
		return
	}
	h.Logger.InfoContext(ctx, "manual holidays replaced", logging.FieldYear, year, "count", len(dates))

	manual, err := h.Service.ManualHolidays(ctx, year)
	if err != nil {
		h.fail(w, r, "Failed to load holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, HolidaysDTO{
		Year:     year,
		Official: dateStrings(h.Service.Official.Official(year)),
		Manual:   dateStrings(manual),
	})
}

// =============================================================================
// BACKUP HANDLERS
// =============================================================================

// ExportBackup downloads every profile with its calendars, entries and
// configured holiday years.
// GET /api/backup
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	years, err := h.backupYears(ctx)
	if err != nil {
		h.fail(w, r, "Failed to export backup", err)
		return
	}
	b, err := h.Backups.Export(ctx, h.Store, years)
	if err != nil {
		h.fail(w, r, "Failed to export backup", err)
		return
	}
	filename := fmt.Sprintf("pontaj-backup-%s.json", generic.Today(h.Location))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, h.Backups.ToJSON(b))
}

// ImportBackup loads a backup document. Profiles with the same ID are
// replaced.
// POST /api/backup
func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}
	b, err := h.Backups.ParseBackup(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid backup document", err)
		return
	}
	res, err := h.Backups.Import(ctx, h.Store, b)
	if err != nil {
		h.fail(w, r, "Failed to import backup", err)
		return
	}
	h.Logger.InfoContext(ctx, "backup imported",
		"profiles", res.Profiles, "calendars", res.Calendars, "entries", res.Entries, "holiday_years", res.HolidayYears)
	writeJSON(w, http.StatusOK, res)
}

// backupYears returns every year that holds an entry plus the current and
// next year, so that manual lists configured ahead of time are exported too.
func (h *Handler) backupYears(ctx context.Context) ([]int, error) {
	today := generic.Today(h.Location)
	seen := map[int]bool{today.Year(): true, today.Year() + 1: true}

	profiles, err := h.Store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		calendars, err := h.Store.ListCalendars(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range calendars {
			entries, err := h.Store.Entries(ctx, c.ID)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				seen[e.Date.Year()] = true
			}
		}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	return years, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// filteredEntries narrows the calendar's entries by the optional year and
// month query values. A month without a year is rejected.
func (h *Handler) filteredEntries(ctx context.Context, id generic.CalendarID, yearStr, monthStr string) ([]overtime.DayEntry, error) {
	switch {
	case yearStr == "" && monthStr == "":
		return h.Store.Entries(ctx, id)
	case yearStr == "":
		return nil, fmt.Errorf("%w: month filter needs a year", generic.ErrInvalidDate)
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return nil, fmt.Errorf("%w: year %q", generic.ErrInvalidDate, yearStr)
	}
	if monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			return nil, fmt.Errorf("%w: month %q", generic.ErrInvalidDate, monthStr)
		}
		m, err := generic.ParseMonth(year, month)
		if err != nil {
			return nil, err
		}
		return h.Store.EntriesInMonth(ctx, id, m)
	}

	all, err := h.Store.Entries(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []overtime.DayEntry
	for _, e := range all {
		if e.Date.Year() == year {
			out = append(out, e)
		}
	}
	return out, nil
}

// fail maps domain errors to HTTP statuses. Unexpected errors are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, message, err)
	default:
		logging.FromContext(r.Context(), h.Logger).ErrorContext(r.Context(), message, logging.FieldError, err)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func decodeName(w http.ResponseWriter, r *http.Request) (NameRequest, bool) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", generic.ErrInvalidName)
		return req, false
	}
	return req, true
}

func idOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

func yearParam(r *http.Request) (int, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("%w: year %q", generic.ErrInvalidDate, chi.URLParam(r, "year"))
	}
	return year, nil
}

func monthParam(r *http.Request) (generic.Month, error) {
	year, err := yearParam(r)
	if err != nil {
		return generic.Month{}, err
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return generic.Month{}, fmt.Errorf("%w: month %q", generic.ErrInvalidDate, chi.URLParam(r, "month"))
	}
	return generic.ParseMonth(year, month)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
