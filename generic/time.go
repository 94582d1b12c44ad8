package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Civil calendar date (no time of day, no zone offset)
// =============================================================================

// DateLayout is the wire and storage format of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar date. It is stored as UTC midnight so weekday and
// month arithmetic never depend on the host's zone or DST transitions.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a strict YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals in tests and tables.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateIn returns the civil date of instant t as seen in loc.
func DateIn(t time.Time, loc *time.Location) Date {
	local := t.In(loc)
	return NewDate(local.Year(), local.Month(), local.Day())
}

// Today returns the current civil date in loc.
func Today(loc *time.Location) Date {
	return DateIn(time.Now(), loc)
}

// Comparison
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) IsZero() bool       { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Next() Date         { return d.AddDays(1) }

// Properties
func (d Date) Year() int              { return d.t.Year() }
func (d Date) Month() time.Month      { return d.t.Month() }
func (d Date) Day() int               { return d.t.Day() }
func (d Date) Weekday() time.Weekday  { return d.t.Weekday() }
func (d Date) CalendarMonth() Month   { return Month{Year: d.t.Year(), Month: d.t.Month()} }
func (d Date) String() string         { return d.t.Format(DateLayout) }

// IsWeekend reports Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// MarshalText / UnmarshalText keep JSON and TOML in YYYY-MM-DD form.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// HolidayCalendar answers whether a civil date is a public holiday.
// Implementations must be safe for concurrent reads.
type HolidayCalendar interface {
	IsHoliday(date Date) bool

	// Holidays lists the holiday dates of a year in ascending order.
	Holidays(year int) []Date
}

// NoHolidays is a calendar without holidays.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(Date) bool    { return false }
func (NoHolidays) Holidays(int) []Date    { return nil }

// IsWeekendOrHoliday combines both non-working predicates.
func IsWeekendOrHoliday(cal HolidayCalendar, d Date) bool {
	if d.IsWeekend() {
		return true
	}
	return cal != nil && cal.IsHoliday(d)
}

// IsBaselineDay reports whether d counts toward the full-time baseline.
func IsBaselineDay(cal HolidayCalendar, d Date) bool {
	return !IsWeekendOrHoliday(cal, d)
}
