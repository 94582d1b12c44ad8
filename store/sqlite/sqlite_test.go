package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pontaj/factory"
	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/overtime"
	"github.com/warp/pontaj/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.CreateProfile(ctx, generic.Profile{ID: "p-1", Name: "Ana"}))
	require.NoError(t, store.CreateCalendar(ctx, generic.Calendar{ID: "c-1", ProfileID: "p-1", Name: "Spital"}))
	return store
}

func TestStore_EntryRoundTripKeepsShiftOrderAndFractions(t *testing.T) {
	// GIVEN: An entry with three shifts, one of them fractional
	ctx := context.Background()
	store := newStore(t)
	e := overtime.DayEntry{
		Date:  generic.MustParseDate("2025-03-08"),
		Notes: "garda",
		Shifts: []overtime.Shift{
			{Type: overtime.ShiftNight, StartTime: "18:45", EndTime: "07:15", Duration: generic.NewMinutes(750)},
			{Type: overtime.ShiftCS, Duration: generic.NewMinutes(120)},
			overtime.InvShift(0.0125),
		},
	}

	// WHEN: Saving and reading it back
	saved, err := store.SaveEntry(ctx, "c-1", e)
	require.NoError(t, err)
	got, err := store.GetEntry(ctx, "c-1", e.Date)
	require.NoError(t, err)

	// THEN: Everything survives, including 0.75 minutes
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "garda", got.Notes)
	require.Len(t, got.Shifts, 3)
	assert.Equal(t, overtime.ShiftNight, got.Shifts[0].Type)
	assert.Equal(t, "18:45", got.Shifts[0].StartTime)
	assert.Equal(t, overtime.ShiftCS, got.Shifts[1].Type)
	assert.Equal(t, 0.75, got.Shifts[2].Duration.Float())
}

func TestStore_SaveReplacesSameDate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	d := generic.MustParseDate("2025-03-10")

	_, err := store.SaveEntry(ctx, "c-1", overtime.DayEntry{Date: d, Shifts: []overtime.Shift{{Type: overtime.ShiftDay, Duration: generic.NewMinutes(750)}}})
	require.NoError(t, err)
	_, err = store.SaveEntry(ctx, "c-1", overtime.DayEntry{Date: d, Shifts: []overtime.Shift{{Type: overtime.ShiftCO, Duration: generic.NewMinutes(480)}}})
	require.NoError(t, err)

	entries, err := store.Entries(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, overtime.ShiftCO, entries[0].Shifts[0].Type)
}

func TestStore_EntriesInMonthAndDeleteMonth(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	for _, d := range []string{"2025-02-28", "2025-03-01", "2025-03-31", "2025-04-01"} {
		_, err := store.SaveEntry(ctx, "c-1", overtime.DayEntry{Date: generic.MustParseDate(d)})
		require.NoError(t, err)
	}
	march := generic.NewMonth(2025, time.March)

	inMonth, err := store.EntriesInMonth(ctx, "c-1", march)
	require.NoError(t, err)
	assert.Len(t, inMonth, 2)

	n, err := store.DeleteMonth(ctx, "c-1", march)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := store.Entries(ctx, "c-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Empty(t, all[0].Shifts)
}

func TestStore_DeleteProfileCascades(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	_, err := store.SaveEntry(ctx, "c-1", overtime.DayEntry{
		Date:   generic.MustParseDate("2025-03-10"),
		Shifts: []overtime.Shift{{Type: overtime.ShiftDay, Duration: generic.NewMinutes(750)}},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteProfile(ctx, "p-1"))

	_, err = store.GetCalendar(ctx, "c-1")
	assert.ErrorIs(t, err, generic.ErrCalendarNotFound)
	assert.ErrorIs(t, store.DeleteProfile(ctx, "p-1"), generic.ErrProfileNotFound)
}

func TestStore_NotFoundAndConflict(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.GetEntry(ctx, "c-1", generic.MustParseDate("2025-03-10"))
	assert.ErrorIs(t, err, generic.ErrEntryNotFound)

	_, err = store.Entries(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrCalendarNotFound)

	assert.ErrorIs(t, store.RenameCalendar(ctx, "missing", "x"), generic.ErrCalendarNotFound)
	assert.ErrorIs(t, store.CreateProfile(ctx, generic.Profile{ID: "p-1", Name: "Dup"}), generic.ErrAlreadyExists)
}

func TestStore_ProfilesAndCalendarsListed(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.CreateCalendar(ctx, generic.Calendar{
		ID: "c-2", ProfileID: "p-1", Name: "Cabinet", CreatedAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, store.RenameProfile(ctx, "p-1", "Ana M."))

	profiles, err := store.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Ana M.", profiles[0].Name)

	calendars, err := store.ListCalendars(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, calendars, 2)
	assert.Equal(t, generic.CalendarID("c-1"), calendars[0].ID)
}

func TestStore_ManualHolidays(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, configured, err := store.ManualHolidays(ctx, 2025)
	require.NoError(t, err)
	assert.False(t, configured)

	dates := []generic.Date{generic.MustParseDate("2025-12-24"), generic.MustParseDate("2025-03-12")}
	require.NoError(t, store.SetManualHolidays(ctx, 2025, dates))

	got, configured, err := store.ManualHolidays(ctx, 2025)
	require.NoError(t, err)
	assert.True(t, configured)
	assert.Equal(t, []generic.Date{dates[1], dates[0]}, got)

	require.NoError(t, store.SetManualHolidays(ctx, 2025, nil))
	got, configured, err = store.ManualHolidays(ctx, 2025)
	require.NoError(t, err)
	assert.True(t, configured, "cleared year stays configured")
	assert.Empty(t, got)
}

func TestStore_FileDatabaseReopens(t *testing.T) {
	// GIVEN: A file database with one entry
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pontaj.db")
	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.CreateProfile(ctx, generic.Profile{ID: "p-1", Name: "Ana"}))
	require.NoError(t, store.Close())

	// WHEN: Reopening (migrations already applied)
	store, err = sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	// THEN: Data is there
	p, err := store.GetProfile(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Reset(ctx))

	profiles, err := store.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestStore_ServiceIntegration(t *testing.T) {
	// GIVEN: The service over a SQLite store
	ctx := context.Background()
	store := newStore(t)
	svc := overtime.NewService(store, nil)

	_, err := svc.SaveEntry(ctx, "c-1", overtime.DayEntry{
		Date:   generic.MustParseDate("2025-03-08"),
		Shifts: []overtime.Shift{{Type: overtime.ShiftNight, StartTime: "18:45", EndTime: "07:15"}},
	})
	require.NoError(t, err)

	// WHEN: Summarizing March
	s, err := svc.Summary(ctx, "c-1", generic.NewMonth(2025, time.March))
	require.NoError(t, err)

	// THEN: The normalized night shift is counted
	assert.Equal(t, int64(750), s.TotalOL)
	assert.Equal(t, int64(750), s.TotalWeekend)
	assert.Equal(t, int64(21*480), s.TotalFTL)
}

func dayShift() []overtime.Shift {
	return []overtime.Shift{{Type: overtime.ShiftDay, StartTime: "06:45", EndTime: "19:15", Duration: generic.NewMinutes(750)}}
}

func TestStore_EntryIDIsNotAKey(t *testing.T) {
	// GIVEN: Two calendars
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.CreateCalendar(ctx, generic.Calendar{ID: "c-2", ProfileID: "p-1", Name: "Cabinet"}))

	// WHEN: The same entry ID is saved on two dates and in the other calendar
	for _, d := range []string{"2025-03-05", "2025-03-06"} {
		_, err := store.SaveEntry(ctx, "c-1", overtime.DayEntry{ID: "x", Date: generic.MustParseDate(d), Shifts: dayShift()})
		require.NoError(t, err)
	}
	_, err := store.SaveEntry(ctx, "c-2", overtime.DayEntry{ID: "x", Date: generic.MustParseDate("2025-03-05"), Shifts: dayShift()})
	require.NoError(t, err)

	// THEN: Every date keeps its own entry and shifts
	c1, err := store.Entries(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, c1, 2)
	for _, e := range c1 {
		assert.Equal(t, generic.EntryID("x"), e.ID)
		assert.Len(t, e.Shifts, 1)
	}
	c2, err := store.Entries(ctx, "c-2")
	require.NoError(t, err)
	require.Len(t, c2, 1)
	assert.Len(t, c2[0].Shifts, 1)

	// AND: Deleting one date leaves the others alone
	require.NoError(t, store.DeleteEntry(ctx, "c-1", generic.MustParseDate("2025-03-05")))
	c1, err = store.Entries(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, c1, 1)
	assert.Equal(t, "2025-03-06", c1[0].Date.String())
	c2, err = store.Entries(ctx, "c-2")
	require.NoError(t, err)
	assert.Len(t, c2, 1)
}

func TestStore_WithTx(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	d := generic.MustParseDate("2025-03-10")
	errStop := errors.New("stop")

	// GIVEN/WHEN: A transaction that writes and then fails
	err := store.WithTx(ctx, func(tx overtime.Store) error {
		if _, err := tx.SaveEntry(ctx, "c-1", overtime.DayEntry{Date: d, Shifts: dayShift()}); err != nil {
			return err
		}
		if err := tx.SetManualHolidays(ctx, 2025, []generic.Date{d}); err != nil {
			return err
		}
		require.NoError(t, tx.DeleteProfile(ctx, "p-1"))
		return errStop
	})

	// THEN: Nothing it wrote is kept
	assert.ErrorIs(t, err, errStop)
	_, err = store.GetProfile(ctx, "p-1")
	require.NoError(t, err)
	_, err = store.GetEntry(ctx, "c-1", d)
	assert.ErrorIs(t, err, generic.ErrEntryNotFound)
	_, configured, err := store.ManualHolidays(ctx, 2025)
	require.NoError(t, err)
	assert.False(t, configured)

	// WHEN: A transaction succeeds
	err = store.WithTx(ctx, func(tx overtime.Store) error {
		_, err := tx.SaveEntry(ctx, "c-1", overtime.DayEntry{Date: d, Shifts: dayShift()})
		return err
	})

	// THEN: Its writes are visible afterwards
	require.NoError(t, err)
	got, err := store.GetEntry(ctx, "c-1", d)
	require.NoError(t, err)
	assert.Len(t, got.Shifts, 1)
}

// Older documents name entries after the date's timestamp, so two calendars
// with work on the same day carry the same entry ID.
const sharedIDBackup = `{
  "profiles": [{
    "id": "p-9",
    "name": "Ioana",
    "calendars": [
      {"id": "c-a", "name": "Spital", "entries": [
        {"id": "1741132800000", "date": "2025-03-04T22:00:00.000Z",
         "shifts": [{"type": "day", "startTime": "06:45", "endTime": "19:15", "duration": 750}]}
      ]},
      {"id": "c-b", "name": "Cabinet", "entries": [
        {"id": "1741132800000", "date": "2025-03-04T22:00:00.000Z",
         "shifts": [{"type": "neither", "startTime": "08:00", "endTime": "16:00", "duration": 480}]}
      ]}
    ]
  }]
}`

func TestStore_ImportCalendarsSharingEntryIDs(t *testing.T) {
	// GIVEN: A backup whose two calendars share an entry ID
	ctx := context.Background()
	store := newStore(t)
	loc, err := time.LoadLocation("Europe/Bucharest")
	require.NoError(t, err)
	f := factory.NewBackupFactory(loc)
	b, err := f.ParseBackup([]byte(sharedIDBackup))
	require.NoError(t, err)

	// WHEN: Importing it
	res, err := f.Import(ctx, store, b)

	// THEN: Both entries land on 2025-03-05 in their own calendar
	require.NoError(t, err)
	assert.Equal(t, factory.ImportResult{Profiles: 1, Calendars: 2, Entries: 2}, res)
	for cal, want := range map[generic.CalendarID]overtime.ShiftType{"c-a": overtime.ShiftDay, "c-b": overtime.ShiftNeither} {
		e, err := store.GetEntry(ctx, cal, generic.MustParseDate("2025-03-05"))
		require.NoError(t, err, cal)
		assert.Equal(t, generic.EntryID("1741132800000"), e.ID)
		require.Len(t, e.Shifts, 1)
		assert.Equal(t, want, e.Shifts[0].Type)
	}
}

func TestStore_FailedImportLeavesStoreUnchanged(t *testing.T) {
	// GIVEN: p-1 with an entry, and p-2 owning calendar c-b
	ctx := context.Background()
	store := newStore(t)
	d := generic.MustParseDate("2025-03-10")
	_, err := store.SaveEntry(ctx, "c-1", overtime.DayEntry{ID: "keep", Date: d, Shifts: dayShift()})
	require.NoError(t, err)
	require.NoError(t, store.CreateProfile(ctx, generic.Profile{ID: "p-2", Name: "Other"}))
	require.NoError(t, store.CreateCalendar(ctx, generic.Calendar{ID: "c-b", ProfileID: "p-2", Name: "Taken"}))

	// AND: A backup replacing p-1 whose second calendar collides with c-b
	f := factory.NewBackupFactory(nil)
	b, err := f.ParseBackup([]byte(`{"profiles": [{"id": "p-1", "name": "Replaced", "calendars": [
		{"id": "c-a", "name": "New", "entries": [{"date": "2025-03-11", "shifts": [{"type": "day", "duration": 750}]}]},
		{"id": "c-b", "name": "Clash"}
	]}], "manualHolidays": {"2025": ["2025-12-24"]}}`))
	require.NoError(t, err)

	// WHEN: Importing it
	res, err := f.Import(ctx, store, b)

	// THEN: The import fails and nothing changed
	assert.ErrorIs(t, err, generic.ErrAlreadyExists)
	assert.Equal(t, factory.ImportResult{}, res)

	p, err := store.GetProfile(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
	e, err := store.GetEntry(ctx, "c-1", d)
	require.NoError(t, err)
	assert.Equal(t, generic.EntryID("keep"), e.ID)
	_, err = store.GetCalendar(ctx, "c-a")
	assert.ErrorIs(t, err, generic.ErrCalendarNotFound)
	c, err := store.GetCalendar(ctx, "c-b")
	require.NoError(t, err)
	assert.Equal(t, generic.ProfileID("p-2"), c.ProfileID)
	_, configured, err := store.ManualHolidays(ctx, 2025)
	require.NoError(t, err)
	assert.False(t, configured)
}

func TestStore_MigratesEntriesToDateKeys(t *testing.T) {
	// GIVEN: A database at schema version 2 holding an entry with two shifts
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "v2.db")
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	require.NoError(t, err)
	for _, file := range []string{"000001_init.up.sql", "000002_manual_holidays.up.sql"} {
		ddl, err := os.ReadFile(filepath.Join("migrations", file))
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, string(ddl))
		require.NoError(t, err, file)
	}
	for _, stmt := range []string{
		`CREATE TABLE schema_migrations (version uint64, dirty bool)`,
		`CREATE UNIQUE INDEX version_unique ON schema_migrations (version)`,
		`INSERT INTO schema_migrations (version, dirty) VALUES (2, false)`,
		`INSERT INTO profiles (id, name, created_at) VALUES ('p-1', 'Ana', '2025-01-01T00:00:00.000000000Z')`,
		`INSERT INTO calendars (id, profile_id, name, created_at) VALUES ('c-1', 'p-1', 'Spital', '2025-01-01T00:00:00.000000000Z')`,
		`INSERT INTO entries (id, calendar_id, date, notes, updated_at) VALUES ('e-1', 'c-1', '2025-03-08', 'garda', '2025-03-08T00:00:00Z')`,
		`INSERT INTO shifts (entry_id, position, type, start_time, end_time, duration) VALUES ('e-1', 0, 'night', '18:45', '07:15', '750')`,
		`INSERT INTO shifts (entry_id, position, type, start_time, end_time, duration) VALUES ('e-1', 1, 'cs', '', '', '120')`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}
	require.NoError(t, db.Close())

	// WHEN: Opening it with the store
	store, err := sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	// THEN: The entry and its ordered shifts survive under the new keys
	e, err := store.GetEntry(ctx, "c-1", generic.MustParseDate("2025-03-08"))
	require.NoError(t, err)
	assert.Equal(t, generic.EntryID("e-1"), e.ID)
	assert.Equal(t, "garda", e.Notes)
	require.Len(t, e.Shifts, 2)
	assert.Equal(t, overtime.ShiftNight, e.Shifts[0].Type)
	assert.Equal(t, int64(120), e.Shifts[1].Duration.Int())

	// AND: Deleting the calendar still cascades to its entries
	require.NoError(t, store.DeleteCalendar(ctx, "c-1"))
	require.NoError(t, store.CreateCalendar(ctx, generic.Calendar{ID: "c-1", ProfileID: "p-1", Name: "Again"}))
	entries, err := store.Entries(ctx, "c-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
