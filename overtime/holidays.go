package overtime

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/warp/pontaj/generic"
)

// =============================================================================
// OFFICIAL HOLIDAYS - Romanian legal holidays
// =============================================================================

var romanianHolidays = map[int][]string{
	2024: {
		"2024-01-01", "2024-01-02", "2024-01-06", "2024-01-07", "2024-01-24",
		"2024-05-01", "2024-06-01", "2024-08-15", "2024-08-30",
	},
	2025: {
		"2025-01-01", "2025-01-02", "2025-01-06", "2025-01-07", "2025-01-24",
		"2025-05-01", "2025-06-01", "2025-08-15", "2025-08-30",
	},
	2026: {
		"2026-01-01", "2026-01-02", "2026-01-06", "2026-01-07", "2026-01-24",
		"2026-05-01", "2026-06-01", "2026-08-15", "2026-08-30",
	},
}

// RomanianHolidays returns the built-in official table.
func RomanianHolidays() *HolidayTable {
	t := NewHolidayTable()
	for year, dates := range romanianHolidays {
		for _, s := range dates {
			t.official[year] = append(t.official[year], generic.MustParseDate(s))
		}
	}
	return t
}

// =============================================================================
// HOLIDAY TABLE - Official table plus per-year manual overrides
// =============================================================================

// HolidayTable implements generic.HolidayCalendar:
//
//	IsHoliday(d) = manual(d.year) contains d OR official(d.year) contains d
//
// A table is read-only once handed to an Engine; WithManual and WithOfficial
// return modified copies.
type HolidayTable struct {
	official map[int][]generic.Date
	manual   map[int][]generic.Date
}

var _ generic.HolidayCalendar = (*HolidayTable)(nil)

func NewHolidayTable() *HolidayTable {
	return &HolidayTable{
		official: make(map[int][]generic.Date),
		manual:   make(map[int][]generic.Date),
	}
}

func (t *HolidayTable) clone() *HolidayTable {
	c := NewHolidayTable()
	for y, d := range t.official {
		c.official[y] = append([]generic.Date(nil), d...)
	}
	for y, d := range t.manual {
		c.manual[y] = append([]generic.Date(nil), d...)
	}
	return c
}

// WithOfficial returns a copy whose official list for year is dates.
func (t *HolidayTable) WithOfficial(year int, dates []generic.Date) *HolidayTable {
	c := t.clone()
	c.official[year] = append([]generic.Date(nil), dates...)
	return c
}

// WithManual returns a copy whose manual override list for year is dates.
func (t *HolidayTable) WithManual(year int, dates []generic.Date) *HolidayTable {
	c := t.clone()
	c.manual[year] = append([]generic.Date(nil), dates...)
	return c
}

// Official returns the official dates of a year.
func (t *HolidayTable) Official(year int) []generic.Date {
	return sortedDates(t.official[year])
}

func (t *HolidayTable) IsHoliday(d generic.Date) bool {
	return containsDate(t.manual[d.Year()], d) || containsDate(t.official[d.Year()], d)
}

// Holidays returns the union of manual and official dates of a year.
func (t *HolidayTable) Holidays(year int) []generic.Date {
	seen := make(map[string]bool)
	var out []generic.Date
	for _, list := range [][]generic.Date{t.manual[year], t.official[year]} {
		for _, d := range list {
			if !seen[d.String()] {
				seen[d.String()] = true
				out = append(out, d)
			}
		}
	}
	return sortedDates(out)
}

func containsDate(list []generic.Date, d generic.Date) bool {
	for _, x := range list {
		if x.Equal(d) {
			return true
		}
	}
	return false
}

func sortedDates(in []generic.Date) []generic.Date {
	out := append([]generic.Date(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// =============================================================================
// TOML TABLE FILE
// =============================================================================

// holidayFile is the on-disk format:
//
//	[years]
//	2027 = ["2027-01-01", "2027-01-02"]
type holidayFile struct {
	Years map[string][]generic.Date `toml:"years"`
}

// LoadHolidayTable reads a TOML holiday file on top of base. Years present
// in the file replace the base list for that year.
func LoadHolidayTable(path string, base *HolidayTable) (*HolidayTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holiday file: %w", err)
	}
	return ParseHolidayTable(string(data), base)
}

// ParseHolidayTable is LoadHolidayTable for an in-memory document.
func ParseHolidayTable(doc string, base *HolidayTable) (*HolidayTable, error) {
	var f holidayFile
	if _, err := toml.Decode(doc, &f); err != nil {
		return nil, fmt.Errorf("failed to parse holiday file: %w", err)
	}
	if base == nil {
		base = NewHolidayTable()
	}
	table := base.clone()
	for key, dates := range f.Years {
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: holiday year %q", generic.ErrInvalidDate, key)
		}
		for _, d := range dates {
			if d.Year() != year {
				return nil, fmt.Errorf("%w: %s listed under year %d", generic.ErrInvalidDate, d, year)
			}
		}
		table.official[year] = append([]generic.Date(nil), dates...)
	}
	return table, nil
}
