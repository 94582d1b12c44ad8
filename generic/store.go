/*
store.go - Persistence contracts for profiles, calendars and holidays

PURPOSE:
  Defines the interface between the domain logic and the database.
  Day entries are stored through overtime.EntryStore (they carry the
  overtime shift kinds); everything here is kind-agnostic.

KEY INTERFACES:
  ProfileStore: Profiles and the calendars they own
  HolidayStore: Per-year manual holiday overrides

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite with versioned migrations
  - generic/store/memory.go: In-memory for tests and demos

SEE ALSO:
  - overtime/store.go: Entry persistence
*/
package generic

import "context"

// =============================================================================
// PROFILE STORE
// =============================================================================

// ProfileStore persists profiles and their calendars.
// Lookups of missing records return ErrProfileNotFound / ErrCalendarNotFound.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p Profile) error
	GetProfile(ctx context.Context, id ProfileID) (Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	RenameProfile(ctx context.Context, id ProfileID, name string) error

	// DeleteProfile removes the profile, its calendars and their entries.
	DeleteProfile(ctx context.Context, id ProfileID) error

	CreateCalendar(ctx context.Context, c Calendar) error
	GetCalendar(ctx context.Context, id CalendarID) (Calendar, error)
	ListCalendars(ctx context.Context, profileID ProfileID) ([]Calendar, error)
	RenameCalendar(ctx context.Context, id CalendarID, name string) error

	// DeleteCalendar removes the calendar and all of its entries.
	DeleteCalendar(ctx context.Context, id CalendarID) error
}

// =============================================================================
// HOLIDAY STORE
// =============================================================================

// HolidayStore persists the manually configured holiday list of a year.
type HolidayStore interface {
	// ManualHolidays returns the configured list for year. configured is
	// false when the year was never set (callers then fall back to the
	// official table).
	ManualHolidays(ctx context.Context, year int) (dates []Date, configured bool, err error)

	// SetManualHolidays replaces the list for year.
	SetManualHolidays(ctx context.Context, year int, dates []Date) error
}
