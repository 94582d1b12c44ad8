// Package overtime implements the day model and the overtime ledger engine.
// It uses the generic package for dates, months, minutes and holiday lookup.
package overtime

import (
	"fmt"
	"strings"

	"github.com/warp/pontaj/generic"
)

// =============================================================================
// SHIFT TYPE - Closed set of shift kinds
// =============================================================================

// ShiftType is one of the seven shift kinds. The zero value is invalid.
type ShiftType int

const (
	ShiftDay     ShiftType = iota + 1 // day shift, 06:45-19:15 by default
	ShiftNight                        // night shift, spans into the next calendar day
	ShiftNeither                      // regular hours that are neither day nor night
	ShiftCS                           // compensatory leave taken against overtime debt
	ShiftCO                           // annual leave
	ShiftCM                           // medical leave
	ShiftINV                          // hours entered directly (fractional hours allowed)
)

// AllShiftTypes lists every kind in display order.
var AllShiftTypes = []ShiftType{ShiftDay, ShiftNight, ShiftNeither, ShiftCS, ShiftCO, ShiftCM, ShiftINV}

func (t ShiftType) String() string {
	switch t {
	case ShiftDay:
		return "day"
	case ShiftNight:
		return "night"
	case ShiftNeither:
		return "neither"
	case ShiftCS:
		return "cs"
	case ShiftCO:
		return "co"
	case ShiftCM:
		return "cm"
	case ShiftINV:
		return "inv"
	default:
		return fmt.Sprintf("ShiftType(%d)", int(t))
	}
}

// Valid reports whether t is one of the seven kinds.
func (t ShiftType) Valid() bool {
	return t >= ShiftDay && t <= ShiftINV
}

// ParseShiftType parses the lowercase wire name of a shift kind.
func ParseShiftType(s string) (ShiftType, error) {
	for _, t := range AllShiftTypes {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown shift type %q", generic.ErrInvalidShift, s)
}

func (t ShiftType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", generic.ErrInvalidShift, int(t))
	}
	return []byte(t.String()), nil
}

func (t *ShiftType) UnmarshalText(b []byte) error {
	parsed, err := ParseShiftType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// =============================================================================
// SHIFT / DAY ENTRY
// =============================================================================

// Shift is one block of time on a day. Duration is authoritative; StartTime
// and EndTime ("HH:MM") are informational once the entry is normalized.
type Shift struct {
	Type      ShiftType
	StartTime string
	EndTime   string
	Duration  generic.Minutes
}

// DayEntry holds every shift worked or taken on one date of a calendar.
type DayEntry struct {
	ID     generic.EntryID
	Date   generic.Date
	Shifts []Shift
	Notes  string
}

// TotalMinutes sums every shift duration of the entry.
func (e DayEntry) TotalMinutes() generic.Minutes {
	total := generic.ZeroMinutes()
	for _, s := range e.Shifts {
		total = total.Add(s.Duration)
	}
	return total
}

// MinutesOf sums the durations of shifts of kind t.
func (e DayEntry) MinutesOf(t ShiftType) generic.Minutes {
	total := generic.ZeroMinutes()
	for _, s := range e.Shifts {
		if s.Type == t {
			total = total.Add(s.Duration)
		}
	}
	return total
}

// =============================================================================
// MONTH SUMMARY - Derived, never persisted
// =============================================================================

// MonthSummary is the report for one month. All fields are whole minutes
// except WorkDays.
type MonthSummary struct {
	TotalFTL     int64 `json:"totalFTL"`
	TotalOL      int64 `json:"totalOL"`
	TotalWeekend int64 `json:"totalWeekend"`
	WorkDays     int   `json:"workDays"`
	CSMonth      int64 `json:"csMonth"`
	CSTotal      int64 `json:"csTotal"`
	OSMonth      int64 `json:"osMonth"`
	OSTotal      int64 `json:"osTotal"`
	CSBalance    int64 `json:"csBalance"`
	OSDebt90d    int64 `json:"osDebt90d"`
}

// MonthRecord is one step of the ledger replay.
type MonthRecord struct {
	Month            generic.Month
	MonthOL          generic.Minutes
	MonthFTL         generic.Minutes
	MonthOS          generic.Minutes
	CSEntered        generic.Minutes
	CSApplied        generic.Minutes
	OSDebt90d        generic.Minutes
	OSTotalAfterDebt generic.Minutes
}
