/*
export.go - CSV downloads

PURPOSE:
  Renders entries and yearly summaries as CSV for spreadsheets. The same
  writers back the HTTP downloads and the pontaj CLI.

ENTRY CSV:
  One row per day/night/neither/cs shift:
    Date, ID, ShiftType, Start, End, Duration, OS, WeekendHours, Notes
  OS is the entry's total minus its baseline (480 on a baseline day, 0
  otherwise) and repeats on every row of the entry. WeekendHours is the
  premium of the row's shift. Durations are formatted "Hh Mm".

  A single-month export ends with a SUMMARY row taken from the month's
  summary: Duration holds OL, OS holds FTL, WeekendHours the month's premium
  and Notes "OS Debt: <osDebt90d>".

YEAR CSV:
  One row per month: Month, FTL, OL, OS, WeekendHours, OSDebt.
*/
package api

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/logging"
	"github.com/warp/pontaj/overtime"
)

var (
	entryCSVHeader = []string{"Date", "ID", "ShiftType", "Start", "End", "Duration", "OS", "WeekendHours", "Notes"}
	yearCSVHeader  = []string{"Month", "FTL", "OL", "OS", "WeekendHours", "OSDebt"}
)

// EntryFilter narrows the entry CSV. Zero fields match everything.
type EntryFilter struct {
	Year  int
	Month int
	Shift overtime.ShiftType
}

// ParseEntryFilter reads ?year=&month=&shift=.
func ParseEntryFilter(q url.Values) (EntryFilter, error) {
	var f EntryFilter
	if s := q.Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return f, fmt.Errorf("%w: year %q", generic.ErrInvalidDate, s)
		}
		f.Year = year
	}
	if s := q.Get("month"); s != "" {
		month, err := strconv.Atoi(s)
		if err != nil || month < 1 || month > 12 {
			return f, fmt.Errorf("%w: month %q", generic.ErrInvalidDate, s)
		}
		f.Month = month
	}
	if s := q.Get("shift"); s != "" {
		t, err := overtime.ParseShiftType(s)
		if err != nil {
			return f, err
		}
		if !exportable(t) {
			return f, fmt.Errorf("%w: %s rows are not exported", generic.ErrInvalidShift, t)
		}
		f.Shift = t
	}
	return f, nil
}

// SingleMonth reports the month selected when both year and month are set.
func (f EntryFilter) SingleMonth() (generic.Month, bool) {
	if f.Year == 0 || f.Month == 0 {
		return generic.Month{}, false
	}
	return generic.NewMonth(f.Year, time.Month(f.Month)), true
}

func (f EntryFilter) matchEntry(e overtime.DayEntry) bool {
	if f.Year != 0 && e.Date.Year() != f.Year {
		return false
	}
	if f.Month != 0 && int(e.Date.Month()) != f.Month {
		return false
	}
	return true
}

func (f EntryFilter) matchShift(s overtime.Shift) bool {
	if !exportable(s.Type) {
		return false
	}
	return f.Shift == 0 || s.Type == f.Shift
}

func exportable(t overtime.ShiftType) bool {
	switch t {
	case overtime.ShiftDay, overtime.ShiftNight, overtime.ShiftNeither, overtime.ShiftCS:
		return true
	}
	return false
}

// WriteEntriesCSV writes the entry CSV. cal classifies weekends and
// holidays for the OS and WeekendHours columns. A non-nil summary adds the
// closing SUMMARY row.
func WriteEntriesCSV(w io.Writer, cal generic.HolidayCalendar, entries []overtime.DayEntry, f EntryFilter, summary *overtime.MonthSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(entryCSVHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if !f.matchEntry(e) {
			continue
		}
		dayOS := generic.RoundMinutes(e.TotalMinutes().Sub(overtime.DayFTL(cal, e.Date)))
		for _, s := range e.Shifts {
			if !f.matchShift(s) {
				continue
			}
			row := []string{
				e.Date.String(),
				string(e.ID),
				s.Type.String(),
				s.StartTime,
				s.EndTime,
				overtime.FormatMinutes(generic.RoundMinutes(s.Duration)),
				overtime.FormatMinutes(dayOS),
				overtime.FormatMinutes(generic.RoundMinutes(overtime.ShiftPremium(cal, e.Date, s))),
				e.Notes,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	if summary != nil {
		row := []string{
			"SUMMARY", "", "", "", "",
			overtime.FormatMinutes(summary.TotalOL),
			overtime.FormatMinutes(summary.TotalFTL),
			overtime.FormatMinutes(summary.TotalWeekend),
			"OS Debt: " + overtime.FormatMinutes(summary.OSDebt90d),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteYearCSV writes the twelve monthly summaries of year.
func WriteYearCSV(w io.Writer, year int, summaries [12]overtime.MonthSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(yearCSVHeader); err != nil {
		return err
	}
	for i, s := range summaries {
		row := []string{
			generic.NewMonth(year, time.Month(i+1)).String(),
			overtime.FormatMinutes(s.TotalFTL),
			overtime.FormatMinutes(s.TotalOL),
			overtime.FormatMinutes(s.OSMonth),
			overtime.FormatMinutes(s.TotalWeekend),
			overtime.FormatMinutes(s.OSDebt90d),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// =============================================================================
// HANDLERS
// =============================================================================

// ExportEntriesCSV downloads the entry CSV of a calendar.
// GET /api/calendars/{id}/export/entries.csv?year=&month=&shift=
func (h *Handler) ExportEntriesCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.CalendarID(chi.URLParam(r, "id"))
	filter, err := ParseEntryFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	entries, err := h.Store.Entries(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to load entries", err)
		return
	}
	from, to := YearSpan(entries, generic.Today(h.Location))
	cal, err := h.Service.HolidayCalendar(ctx, from, to+1)
	if err != nil {
		h.fail(w, r, "Failed to load holidays", err)
		return
	}
	var summary *overtime.MonthSummary
	if m, ok := filter.SingleMonth(); ok {
		s, err := h.Service.Summary(ctx, id, m)
		if err != nil {
			h.fail(w, r, "Failed to compute summary", err)
			return
		}
		summary = &s
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "entries-"+string(id)+".csv"))
	if err := WriteEntriesCSV(w, cal, entries, filter, summary); err != nil {
		h.Logger.ErrorContext(ctx, "entry csv write failed", logging.FieldError, err)
	}
}

// ExportYearCSV downloads the yearly summary CSV of a calendar.
// GET /api/calendars/{id}/export/years/{year}.csv
func (h *Handler) ExportYearCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.CalendarID(chi.URLParam(r, "id"))
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	summaries, err := h.Service.YearSummaries(ctx, id, year)
	if err != nil {
		h.fail(w, r, "Failed to compute year summary", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"summary-%d.csv\"", year))
	if err := WriteYearCSV(w, year, summaries); err != nil {
		h.Logger.ErrorContext(ctx, "year csv write failed", logging.FieldError, err)
	}
}

// YearSpan returns the first and last year holding an entry, widened to
// include today's year.
func YearSpan(entries []overtime.DayEntry, today generic.Date) (int, int) {
	from, to := today.Year(), today.Year()
	for _, e := range entries {
		if y := e.Date.Year(); y < from {
			from = y
		} else if y > to {
			to = y
		}
	}
	return from, to
}
