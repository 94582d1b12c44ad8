/*
engine.go - Monthly overtime accounting

PURPOSE:
  Computes the MonthSummary of a target month from the complete entry
  history of one calendar. The result is always rebuilt from the first
  entry forward; nothing is cached between calls.

REPLAY (per month M, from the month of the earliest entry to the target):
  monthOL    = sum of all shift durations dated in M
  monthFTL   = baseline days of M * 480
  monthOS    = monthOL - monthFTL
  debt       opened for M when monthOS > 0
  CS entered in M is applied to the debt of M-3, then M-4
  osDebt90d  = what is left of the debt of M-4
  overdueOs  = original positive monthOS of M-4 (0 if none)
  osTotal(M) = osTotal(M-1) + monthOS - overdueOs

DEGENERATE INPUT:
  An empty history, or a target month without entries, yields a summary
  of zeros. The engine has no error path.

CONCURRENCY:
  An Engine is immutable. Summary and Breakdown sort a copy of their input,
  build a private DebtLedger and may be called from many goroutines.
*/
package overtime

import (
	"sort"
	"time"

	"github.com/warp/pontaj/generic"
)

// Engine computes summaries against one holiday calendar.
type Engine struct {
	holidays generic.HolidayCalendar
}

// NewEngine creates an engine. A nil calendar means no holidays.
func NewEngine(holidays generic.HolidayCalendar) *Engine {
	if holidays == nil {
		holidays = generic.NoHolidays{}
	}
	return &Engine{holidays: holidays}
}

// Holidays returns the calendar the engine classifies days with.
func (e *Engine) Holidays() generic.HolidayCalendar { return e.holidays }

// Summary returns the report for target.
func (e *Engine) Summary(entries []DayEntry, target generic.Month) MonthSummary {
	monthEntries := entriesIn(entries, target)
	if len(entries) == 0 || len(monthEntries) == 0 {
		return MonthSummary{}
	}

	totalWeekend := generic.ZeroMinutes()
	workDays := 0
	for _, entry := range monthEntries {
		totalWeekend = totalWeekend.Add(DayPremium(e.holidays, entry))
		if !entry.Date.IsWeekend() {
			workDays++
		}
	}

	records := e.Breakdown(entries, target)
	rec := records[len(records)-1]

	return MonthSummary{
		TotalFTL:     rec.MonthFTL.Int(),
		TotalOL:      rec.MonthOL.Int(),
		TotalWeekend: totalWeekend.Int(),
		WorkDays:     workDays,
		CSMonth:      rec.CSEntered.Int(),
		CSTotal:      rec.CSEntered.Int(),
		OSMonth:      rec.MonthOS.Int(),
		OSTotal:      rec.OSTotalAfterDebt.Int(),
		CSBalance:    rec.OSTotalAfterDebt.Int(),
		OSDebt90d:    rec.OSDebt90d.Int(),
	}
}

// Breakdown replays the history up to and including target and returns one
// record per month, oldest first. It returns nil when there are no entries
// or target precedes the first entry.
func (e *Engine) Breakdown(entries []DayEntry, target generic.Month) []MonthRecord {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]DayEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	byMonth := make(map[generic.Month][]DayEntry)
	for _, entry := range sorted {
		m := entry.Date.CalendarMonth()
		byMonth[m] = append(byMonth[m], entry)
	}

	months := generic.MonthsBetween(sorted[0].Date.CalendarMonth(), target)
	if len(months) == 0 {
		return nil
	}

	ledger := NewDebtLedger()
	records := make([]MonthRecord, 0, len(months))
	prevTotal := generic.ZeroMinutes()

	for _, m := range months {
		monthOL := generic.ZeroMinutes()
		csEntered := generic.ZeroMinutes()
		for _, entry := range byMonth[m] {
			monthOL = monthOL.Add(entry.TotalMinutes())
			csEntered = csEntered.Add(entry.MinutesOf(ShiftCS))
		}

		monthFTL := MonthFTL(e.holidays, m)
		monthOS := monthOL.Sub(monthFTL)

		ledger.Open(m, monthOS)
		csApplied := ledger.ApplyCS(m, csEntered)
		ledger.Prune()

		aging := m.AddMonths(-WriteOffLag)
		osDebt90d := ledger.Remaining(aging)
		overdueOS := ledger.OriginalOS(aging)

		total := prevTotal.Add(monthOS).Sub(overdueOS).Round()
		prevTotal = total

		records = append(records, MonthRecord{
			Month:            m,
			MonthOL:          monthOL,
			MonthFTL:         monthFTL,
			MonthOS:          monthOS,
			CSEntered:        csEntered,
			CSApplied:        csApplied,
			OSDebt90d:        osDebt90d,
			OSTotalAfterDebt: total,
		})
	}

	return records
}

// YearSummaries returns the twelve summaries of year, January first.
func (e *Engine) YearSummaries(entries []DayEntry, year int) [12]MonthSummary {
	var out [12]MonthSummary
	for i := range out {
		out[i] = e.Summary(entries, generic.NewMonth(year, time.Month(i+1)))
	}
	return out
}

func entriesIn(entries []DayEntry, m generic.Month) []DayEntry {
	var out []DayEntry
	for _, entry := range entries {
		if m.Contains(entry.Date) {
			out = append(out, entry)
		}
	}
	return out
}
