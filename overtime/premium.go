package overtime

import "github.com/warp/pontaj/generic"

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// BaselineDayMinutes is the expected work of one baseline day (8h).
	BaselineDayMinutes = 480

	// NightIntoWorkdayMinutes is the premium of a night shift that starts on a
	// weekend/holiday and ends on a working day (5h15m).
	NightIntoWorkdayMinutes = 5*60 + 15

	// NightIntoWeekendMinutes is the premium of a night shift that starts on a
	// working day and ends on a weekend/holiday (7h15m).
	NightIntoWeekendMinutes = 7*60 + 15
)

// =============================================================================
// PREMIUM RULES
// =============================================================================

type premiumRule int

const (
	// premiumSameDay: counts in full iff the shift's own date is weekend/holiday.
	premiumSameDay premiumRule = iota + 1
	// premiumNight: looks at the shift's date and the following calendar day.
	premiumNight
)

// ruleFor maps every shift kind to its premium rule. ok is false only for
// values outside the closed set.
func ruleFor(t ShiftType) (rule premiumRule, ok bool) {
	switch t {
	case ShiftNight:
		return premiumNight, true
	case ShiftDay, ShiftNeither, ShiftCS, ShiftCO, ShiftCM, ShiftINV:
		return premiumSameDay, true
	}
	return 0, false
}

// NightPremium returns the weekend/holiday minutes of a night shift starting
// on date d. A night shift spans into d+1, so both days are classified.
func NightPremium(cal generic.HolidayCalendar, d generic.Date, duration generic.Minutes) generic.Minutes {
	startOff := generic.IsWeekendOrHoliday(cal, d)
	endOff := generic.IsWeekendOrHoliday(cal, d.Next())

	switch {
	case startOff && endOff:
		return duration
	case startOff && !endOff:
		return generic.NewMinutes(NightIntoWorkdayMinutes)
	case !startOff && endOff:
		return generic.NewMinutes(NightIntoWeekendMinutes)
	default:
		return generic.ZeroMinutes()
	}
}

// ShiftPremium returns the weekend/holiday minutes of a single shift dated d.
func ShiftPremium(cal generic.HolidayCalendar, d generic.Date, s Shift) generic.Minutes {
	rule, ok := ruleFor(s.Type)
	if !ok {
		return generic.ZeroMinutes()
	}
	switch rule {
	case premiumNight:
		return NightPremium(cal, d, s.Duration)
	default:
		if generic.IsWeekendOrHoliday(cal, d) {
			return s.Duration
		}
		return generic.ZeroMinutes()
	}
}

// DayPremium sums ShiftPremium over every shift of the entry.
func DayPremium(cal generic.HolidayCalendar, e DayEntry) generic.Minutes {
	total := generic.ZeroMinutes()
	for _, s := range e.Shifts {
		total = total.Add(ShiftPremium(cal, e.Date, s))
	}
	return total
}

// =============================================================================
// BASELINE (FTL)
// =============================================================================

// BaselineDays counts the days of m that are neither weekend nor holiday.
func BaselineDays(cal generic.HolidayCalendar, m generic.Month) int {
	n := 0
	for _, d := range m.Days() {
		if generic.IsBaselineDay(cal, d) {
			n++
		}
	}
	return n
}

// MonthFTL is the expected minutes of m: baseline days * 480. It depends on
// the calendar only, never on entries.
func MonthFTL(cal generic.HolidayCalendar, m generic.Month) generic.Minutes {
	return generic.NewMinutes(int64(BaselineDays(cal, m)) * BaselineDayMinutes)
}

// DayFTL is 480 on a baseline day and 0 otherwise.
func DayFTL(cal generic.HolidayCalendar, d generic.Date) generic.Minutes {
	if generic.IsBaselineDay(cal, d) {
		return generic.NewMinutes(BaselineDayMinutes)
	}
	return generic.ZeroMinutes()
}
