package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// MONTH - The unit of overtime accounting
// =============================================================================

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func NewMonth(year int, month time.Month) Month {
	return Month{Year: year, Month: month}.normalize()
}

// normalize folds out-of-range months (e.g. month 0 or 13) into the year.
func (m Month) normalize() Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// AddMonths returns the month n months later (n may be negative).
func (m Month) AddMonths(n int) Month {
	return Month{Year: m.Year, Month: m.Month + time.Month(n)}.normalize()
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) After(o Month) bool { return o.Before(m) }

func (m Month) First() Date { return NewDate(m.Year, m.Month, 1) }
func (m Month) Last() Date  { return m.AddMonths(1).First().AddDays(-1) }

// DaysIn returns the number of days in the month.
func (m Month) DaysIn() int { return m.Last().Day() }

// Days returns every date of the month in order.
func (m Month) Days() []Date {
	n := m.DaysIn()
	days := make([]Date, 0, n)
	first := m.First()
	for i := 0; i < n; i++ {
		days = append(days, first.AddDays(i))
	}
	return days
}

// Contains reports whether d falls inside the month.
func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

// MonthsBetween returns the months from..to inclusive in chronological order.
// It returns nil when to is before from.
func MonthsBetween(from, to Month) []Month {
	if to.Before(from) {
		return nil
	}
	var months []Month
	for cur := from; !cur.After(to); cur = cur.AddMonths(1) {
		months = append(months, cur)
	}
	return months
}

// ParseMonth validates a year and 1-based month number.
func ParseMonth(year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidDate, month)
	}
	if year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("%w: year %d out of range", ErrInvalidDate, year)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}
