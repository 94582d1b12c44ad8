package overtime

import (
	"context"

	"github.com/warp/pontaj/generic"
)

// EntryStore persists day entries of calendars. A calendar holds at most one
// entry per date; SaveEntry on an existing date replaces it. Entries are
// keyed by (calendar, date): the same entry ID may appear on other dates or
// in other calendars.
type EntryStore interface {
	// SaveEntry writes e under its date, assigning an ID when empty.
	SaveEntry(ctx context.Context, calendarID generic.CalendarID, e DayEntry) (DayEntry, error)

	// GetEntry returns generic.ErrEntryNotFound when the date is empty.
	GetEntry(ctx context.Context, calendarID generic.CalendarID, date generic.Date) (DayEntry, error)

	// Entries returns every entry of the calendar ordered by date.
	Entries(ctx context.Context, calendarID generic.CalendarID) ([]DayEntry, error)

	// EntriesInMonth returns the entries of one month ordered by date.
	EntriesInMonth(ctx context.Context, calendarID generic.CalendarID, m generic.Month) ([]DayEntry, error)

	DeleteEntry(ctx context.Context, calendarID generic.CalendarID, date generic.Date) error

	// DeleteMonth removes every entry of m and reports how many went.
	DeleteMonth(ctx context.Context, calendarID generic.CalendarID, m generic.Month) (int, error)
}

// Store is everything the service and the API need from persistence.
type Store interface {
	generic.ProfileStore
	generic.HolidayStore
	EntryStore
}

// TxStore wraps Store with transaction support.
// Use this when several writes must land together (e.g., a backup import).
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, every write made through the given store is undone.
	// If fn returns nil, the writes are committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
