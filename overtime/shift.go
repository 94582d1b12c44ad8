package overtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/warp/pontaj/generic"
)

// =============================================================================
// CLOCK TIMES
// =============================================================================

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: time %q is not HH:MM", generic.ErrInvalidShift, s)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: time %q is not HH:MM", generic.ErrInvalidShift, s)
	}
	return h*60 + m, nil
}

// DurationBetween returns the minutes from start to end. An end earlier than
// the start is on the next day.
func DurationBetween(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e < s {
		e += 24 * 60
	}
	return e - s, nil
}

// FormatMinutes renders minutes as "Hh Mm"; negative values keep the sign on
// the hour part.
func FormatMinutes(m int64) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%dh %dm", sign, m/60, m%60)
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultShift returns the shift the entry form pre-fills for t.
func DefaultShift(t ShiftType) Shift {
	switch t {
	case ShiftDay:
		return Shift{Type: t, StartTime: "06:45", EndTime: "19:15", Duration: generic.NewMinutes(750)}
	case ShiftNight:
		return Shift{Type: t, StartTime: "18:45", EndTime: "07:15", Duration: generic.NewMinutes(750)}
	case ShiftNeither:
		return Shift{Type: t, StartTime: "08:00", EndTime: "16:00", Duration: generic.NewMinutes(480)}
	case ShiftCO, ShiftCM:
		return Shift{Type: t, Duration: generic.NewMinutes(BaselineDayMinutes)}
	case ShiftCS, ShiftINV:
		return Shift{Type: t, Duration: generic.ZeroMinutes()}
	}
	return Shift{Type: t, Duration: generic.ZeroMinutes()}
}

// InvShift builds an inv shift from an hour count (fractions allowed).
func InvShift(hours float64) Shift {
	return Shift{Type: ShiftINV, Duration: generic.HoursToMinutes(hours)}
}

// =============================================================================
// NORMALIZATION - Applied on save, before anything reaches the engine
// =============================================================================

// NormalizeEntry validates the entry and fixes durations:
//   - day, night, neither: Duration from StartTime/EndTime when both are set
//   - co, cm: 480 on a baseline day, 0 on a weekend/holiday, times cleared
//   - cs, inv: Duration kept as entered
//
// Unknown kinds and negative durations are rejected.
func NormalizeEntry(cal generic.HolidayCalendar, e DayEntry) (DayEntry, error) {
	out := e
	out.Shifts = make([]Shift, 0, len(e.Shifts))
	off := generic.IsWeekendOrHoliday(cal, e.Date)

	for i, s := range e.Shifts {
		if !s.Type.Valid() {
			return DayEntry{}, &generic.InvalidShiftError{Date: e.Date, Index: i, Type: s.Type.String(), Reason: "unknown shift type"}
		}

		switch s.Type {
		case ShiftDay, ShiftNight, ShiftNeither:
			if s.StartTime != "" && s.EndTime != "" {
				d, err := DurationBetween(s.StartTime, s.EndTime)
				if err != nil {
					return DayEntry{}, &generic.InvalidShiftError{Date: e.Date, Index: i, Type: s.Type.String(), Reason: err.Error()}
				}
				s.Duration = generic.NewMinutes(int64(d))
			}
		case ShiftCO, ShiftCM:
			s.StartTime, s.EndTime = "", ""
			if off {
				s.Duration = generic.ZeroMinutes()
			} else {
				s.Duration = generic.NewMinutes(BaselineDayMinutes)
			}
		case ShiftCS, ShiftINV:
		}

		if s.Duration.IsNegative() {
			return DayEntry{}, &generic.InvalidShiftError{Date: e.Date, Index: i, Type: s.Type.String(), Reason: "negative duration"}
		}
		out.Shifts = append(out.Shifts, s)
	}
	return out, nil
}

// =============================================================================
// REPEAT - "Repeat every N days until" saves
// =============================================================================

// RepeatDates returns from, from+interval, ... up to and including until.
func RepeatDates(from, until generic.Date, intervalDays int) ([]generic.Date, error) {
	if intervalDays < 1 {
		return nil, fmt.Errorf("%w: repeat interval must be at least 1 day", generic.ErrInvalidDate)
	}
	if until.Before(from) {
		return nil, fmt.Errorf("%w: repeat until %s is before %s", generic.ErrInvalidDate, until, from)
	}
	var dates []generic.Date
	for d := from; !d.After(until); d = d.AddDays(intervalDays) {
		dates = append(dates, d)
	}
	return dates, nil
}

// RepeatPlan is what a repeated save would write.
type RepeatPlan struct {
	Entries      []DayEntry
	TotalMinutes generic.Minutes
}

// PlanRepeat copies template onto every repeat date and normalizes each copy
// against cal, so co/cm become 0 on weekends and holidays. Copies whose
// normalized minutes are zero are left out of the count but still saved.
func PlanRepeat(cal generic.HolidayCalendar, template DayEntry, until generic.Date, intervalDays int) (RepeatPlan, []generic.Date, error) {
	dates, err := RepeatDates(template.Date, until, intervalDays)
	if err != nil {
		return RepeatPlan{}, nil, err
	}

	plan := RepeatPlan{TotalMinutes: generic.ZeroMinutes()}
	var counted []generic.Date
	for _, d := range dates {
		copyEntry := template
		copyEntry.ID = ""
		copyEntry.Date = d
		copyEntry.Shifts = append([]Shift(nil), template.Shifts...)

		normalized, err := NormalizeEntry(cal, copyEntry)
		if err != nil {
			return RepeatPlan{}, nil, err
		}
		plan.Entries = append(plan.Entries, normalized)

		if minutes := normalized.TotalMinutes(); minutes.IsPositive() {
			plan.TotalMinutes = plan.TotalMinutes.Add(minutes)
			counted = append(counted, d)
		}
	}
	return plan, counted, nil
}
