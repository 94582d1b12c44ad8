/*
Package generic provides the calendar and storage primitives shared by the
overtime engine, the persistence layer and the HTTP API.

PURPOSE:
  This package knows nothing about shift kinds or overtime rules. It defines
  minute amounts, civil dates, calendar months, holiday lookup and the storage
  contracts that the domain package (overtime) and the stores build on.

KEY CONCEPTS IN THIS FILE (types.go):
  - Minutes: A decimal count of minutes (fractional values allowed until output)
  - Profile / Calendar: The ownership hierarchy of day entries
  - Typed identifiers for profiles, calendars and entries

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so "1.5 hours * 60" stays exact
  2. Rounding happens once, at the output boundary (RoundMinutes)
  3. Type Safety: Strong typing for IDs prevents mixing profile/calendar IDs

SEE ALSO:
  - time.go: Civil dates and holiday lookup
  - period.go: Calendar months and month spans
  - store.go: Persistence contracts
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MINUTES - Decimal minute quantity
// =============================================================================

// Minutes is a quantity of minutes. It may be fractional or negative while a
// computation is in flight; RoundMinutes turns it into a whole-minute value.
type Minutes struct {
	Value decimal.Decimal
}

var half = decimal.NewFromFloat(0.5)

func NewMinutes(value int64) Minutes          { return Minutes{Value: decimal.NewFromInt(value)} }
func NewMinutesFromFloat(value float64) Minutes { return Minutes{Value: decimal.NewFromFloat(value)} }
func ZeroMinutes() Minutes                    { return Minutes{Value: decimal.Zero} }

// HoursToMinutes converts an hour count (e.g. 1.5 invoiced hours) to minutes.
func HoursToMinutes(hours float64) Minutes {
	return Minutes{Value: decimal.NewFromFloat(hours).Mul(decimal.NewFromInt(60))}
}

func (m Minutes) Add(o Minutes) Minutes     { return Minutes{Value: m.Value.Add(o.Value)} }
func (m Minutes) Sub(o Minutes) Minutes     { return Minutes{Value: m.Value.Sub(o.Value)} }
func (m Minutes) Mul(n int64) Minutes       { return Minutes{Value: m.Value.Mul(decimal.NewFromInt(n))} }
func (m Minutes) IsZero() bool              { return m.Value.IsZero() }
func (m Minutes) IsPositive() bool          { return m.Value.IsPositive() }
func (m Minutes) IsNegative() bool          { return m.Value.IsNegative() }
func (m Minutes) GreaterThan(o Minutes) bool { return m.Value.GreaterThan(o.Value) }
func (m Minutes) Equal(o Minutes) bool      { return m.Value.Equal(o.Value) }

func (m Minutes) Min(o Minutes) Minutes {
	if o.Value.LessThan(m.Value) {
		return o
	}
	return m
}

// Round rounds half up (toward +inf), so -2.5 becomes -2 and 2.5 becomes 3.
func (m Minutes) Round() Minutes {
	return Minutes{Value: m.Value.Add(half).Floor()}
}

// Int returns the whole-minute value after rounding.
func (m Minutes) Int() int64 {
	return m.Round().Value.IntPart()
}

// Float returns the unrounded value, for JSON payloads that carry fractions.
func (m Minutes) Float() float64 {
	f, _ := m.Value.Float64()
	return f
}

func (m Minutes) String() string { return m.Value.String() }

// RoundMinutes rounds to the nearest whole minute.
func RoundMinutes(m Minutes) int64 { return m.Int() }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProfileID string
type CalendarID string
type EntryID string

// =============================================================================
// OWNERSHIP - Profile -> Calendar -> DayEntry
// =============================================================================

// Profile groups calendars for one person.
type Profile struct {
	ID        ProfileID
	Name      string
	CreatedAt time.Time
}

// Calendar holds at most one day entry per date.
type Calendar struct {
	ID        CalendarID
	ProfileID ProfileID
	Name      string
	CreatedAt time.Time
}
