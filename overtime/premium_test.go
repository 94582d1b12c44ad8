package overtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/pontaj/generic"
)

func minutes(n int64) generic.Minutes { return generic.NewMinutes(n) }

func TestRuleFor_EveryKindHandled(t *testing.T) {
	// A new kind added to AllShiftTypes without a premium rule fails here.
	for _, kind := range AllShiftTypes {
		_, ok := ruleFor(kind)
		assert.True(t, ok, "no premium rule for %s", kind)
	}

	_, ok := ruleFor(ShiftType(0))
	assert.False(t, ok)
	_, ok = ruleFor(ShiftType(99))
	assert.False(t, ok)
}

func TestNightPremium_FourCases(t *testing.T) {
	cal := RomanianHolidays()
	tests := []struct {
		name     string
		start    string
		duration int64
		want     int64
	}{
		{"saturday into sunday counts in full", "2025-03-08", 750, 750},
		{"holiday friday into saturday counts in full", "2025-01-24", 690, 690},
		{"sunday into monday is fixed 315", "2025-03-09", 600, 315},
		{"sunday into monday ignores short duration", "2025-03-09", 60, 315},
		{"friday into saturday is fixed 435", "2025-03-07", 750, 435},
		{"wednesday into thursday is 0", "2025-03-05", 750, 0},
		{"workday into holiday is fixed 435", "2025-04-30", 750, 435},
		{"new year's eve into holiday", "2025-12-31", 750, 435},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NightPremium(cal, generic.MustParseDate(tt.start), minutes(tt.duration))
			assert.Equal(t, tt.want, got.Int())
		})
	}
}

func TestShiftPremium_NonNightUsesOwnDateOnly(t *testing.T) {
	// GIVEN: Non-night shifts on a Saturday, a Friday before a weekend and a
	//        holiday
	// WHEN: Computing their premium
	// THEN: Only the shift's own date matters
	cal := RomanianHolidays()
	saturday := generic.MustParseDate("2025-03-08")
	friday := generic.MustParseDate("2025-03-07")
	holiday := generic.MustParseDate("2025-05-01")

	for _, kind := range []ShiftType{ShiftDay, ShiftNeither, ShiftCS, ShiftCO, ShiftCM, ShiftINV} {
		s := Shift{Type: kind, Duration: minutes(480)}
		assert.Equal(t, int64(480), ShiftPremium(cal, saturday, s).Int(), "%s on Saturday", kind)
		assert.Equal(t, int64(480), ShiftPremium(cal, holiday, s).Int(), "%s on holiday", kind)
		assert.Equal(t, int64(0), ShiftPremium(cal, friday, s).Int(), "%s on Friday", kind)
	}
}

func TestShiftPremium_UnknownKindIsZero(t *testing.T) {
	s := Shift{Type: ShiftType(42), Duration: minutes(480)}

	assert.True(t, ShiftPremium(generic.NoHolidays{}, generic.MustParseDate("2025-03-08"), s).IsZero())
}

func TestDayPremium_SumsShifts(t *testing.T) {
	// GIVEN: A Sunday with a day shift and a night shift into Monday
	// THEN: Day shift counts in full, night shift gives 315
	e := DayEntry{
		Date: generic.MustParseDate("2025-03-09"),
		Shifts: []Shift{
			{Type: ShiftDay, Duration: minutes(300)},
			{Type: ShiftNight, Duration: minutes(750)},
		},
	}

	assert.Equal(t, int64(615), DayPremium(generic.NoHolidays{}, e).Int())
}

func TestMonthFTL_WeekdaysTimes480(t *testing.T) {
	tests := []struct {
		month    generic.Month
		weekdays int64
	}{
		{generic.NewMonth(2025, time.February), 20},
		{generic.NewMonth(2025, time.March), 21},
		{generic.NewMonth(2025, time.April), 22},
		{generic.NewMonth(2024, time.February), 21},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			assert.Equal(t, tt.weekdays*480, MonthFTL(generic.NoHolidays{}, tt.month).Int())
		})
	}
}

func TestMonthFTL_ManualHolidayReducesBaseline(t *testing.T) {
	cal := NewHolidayTable().WithManual(2025, []generic.Date{generic.MustParseDate("2025-03-12")})

	assert.Equal(t, 20, BaselineDays(cal, generic.NewMonth(2025, time.March)))
	assert.True(t, DayFTL(cal, generic.MustParseDate("2025-03-12")).IsZero())
	assert.Equal(t, int64(480), DayFTL(cal, generic.MustParseDate("2025-03-13")).Int())
}
