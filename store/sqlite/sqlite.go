/*
Package sqlite provides a SQLite-backed implementation of overtime.Store.

PURPOSE:
  Persists profiles, calendars, day entries with their shifts and the
  per-year manual holiday lists. The engine never touches this package;
  the service loads a full calendar history from here and replays it.

KEY TABLES:
  profiles:        Owners of calendars
  calendars:       Entry containers, cascade-deleted with their profile
  entries:         One row per (calendar, date), replaced on save. The entry
                   ID is a label and need not be unique across calendars
  shifts:          Ordered shifts of an entry; duration is a decimal string
  holiday_years:   Years whose manual list was configured
  manual_holidays: Dates of a configured year

MIGRATIONS:
  Versioned SQL files under migrations/ are embedded and applied with
  golang-migrate on New(). Add a new NNNNNN_name.up.sql/.down.sql pair for
  every schema change; never edit an applied file.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Writes that touch several tables run
  inside one database transaction. WithTx hands fn a view of the store bound
  to a single transaction and holds the write lock until it commits.

WAL MODE:
  File databases are opened with WAL so readers don't block the writer.
  ":memory:" databases are pinned to a single connection, otherwise every
  pooled connection would see its own empty database.

USAGE:
  store, err := sqlite.New("./data/pontaj.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := overtime.NewService(store, nil)

SEE ALSO:
  - generic/store.go, overtime/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/overtime"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timestampLayout is fixed-width so ORDER BY created_at sorts chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements overtime.TxStore using SQLite.
type Store struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
	mu rwLocker
}

var _ overtime.TxStore = (*Store)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rwLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// noLock guards a transaction view; the parent store holds the real lock.
type noLock struct{}

func (noLock) Lock()    {}
func (noLock) Unlock()  {}
func (noLock) RLock()   {}
func (noLock) RUnlock() {}

// New creates a new SQLite store with the given database path and applies
// pending migrations. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == ":memory:" {
		dsn = "file::memory:?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db, q: db, mu: &sync.RWMutex{}}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// TRANSACTIONAL STORE (overtime.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. If fn returns an error
// nothing it wrote is kept. Called on a transaction view it joins the
// running transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store overtime.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Store{db: s.db, q: sqlTx, tx: sqlTx, mu: noLock{}}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// inTx runs fn on the current transaction, or on a new one that commits
// when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(q querier) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// runMigrations applies the embedded migrations on db itself so that an
// in-memory database is migrated on the connection the store keeps using.
// The migrate instance is not closed: its database driver would close db.
func runMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	defer src.Close()

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// =============================================================================
// PROFILE STORE (generic.ProfileStore interface)
// =============================================================================

func (s *Store) CreateProfile(ctx context.Context, p generic.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO profiles (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt.UTC().Format(timestampLayout),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: profile %s", generic.ErrAlreadyExists, p.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, id generic.ProfileID) (generic.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.q.QueryRowContext(ctx, `SELECT id, name, created_at FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Profile{}, generic.ErrProfileNotFound
	}
	return p, err
}

func (s *Store) ListProfiles(ctx context.Context) ([]generic.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.q.QueryContext(ctx, `SELECT id, name, created_at FROM profiles ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []generic.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) RenameProfile(ctx context.Context, id generic.ProfileID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.q.ExecContext(ctx, `UPDATE profiles SET name = ? WHERE id = ?`, name, id)
	return affected(res, err, generic.ErrProfileNotFound)
}

func (s *Store) DeleteProfile(ctx context.Context, id generic.ProfileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.q.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	return affected(res, err, generic.ErrProfileNotFound)
}

// =============================================================================
// CALENDARS
// =============================================================================

func (s *Store) CreateCalendar(ctx context.Context, c generic.Calendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireProfile(ctx, c.ProfileID); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO calendars (id, profile_id, name, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.ProfileID, c.Name, c.CreatedAt.UTC().Format(timestampLayout),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: calendar %s", generic.ErrAlreadyExists, c.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create calendar: %w", err)
	}
	return nil
}

func (s *Store) GetCalendar(ctx context.Context, id generic.CalendarID) (generic.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.q.QueryRowContext(ctx, `SELECT id, profile_id, name, created_at FROM calendars WHERE id = ?`, id)
	c, err := scanCalendar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Calendar{}, generic.ErrCalendarNotFound
	}
	return c, err
}

func (s *Store) ListCalendars(ctx context.Context, profileID generic.ProfileID) ([]generic.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireProfile(ctx, profileID); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT id, profile_id, name, created_at FROM calendars WHERE profile_id = ? ORDER BY created_at, id`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	defer rows.Close()

	var calendars []generic.Calendar
	for rows.Next() {
		c, err := scanCalendar(rows)
		if err != nil {
			return nil, err
		}
		calendars = append(calendars, c)
	}
	return calendars, rows.Err()
}

func (s *Store) RenameCalendar(ctx context.Context, id generic.CalendarID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.q.ExecContext(ctx, `UPDATE calendars SET name = ? WHERE id = ?`, name, id)
	return affected(res, err, generic.ErrCalendarNotFound)
}

func (s *Store) DeleteCalendar(ctx context.Context, id generic.CalendarID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.q.ExecContext(ctx, `DELETE FROM calendars WHERE id = ?`, id)
	return affected(res, err, generic.ErrCalendarNotFound)
}

// =============================================================================
// ENTRY STORE (overtime.EntryStore interface)
// =============================================================================

// SaveEntry replaces whatever the calendar holds on e.Date. Entries are
// keyed by date; e.ID is stored as given.
func (s *Store) SaveEntry(ctx context.Context, calendarID generic.CalendarID, e overtime.DayEntry) (overtime.DayEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCalendar(ctx, calendarID); err != nil {
		return overtime.DayEntry{}, err
	}
	if e.ID == "" {
		e.ID = generic.EntryID(uuid.NewString())
	}
	date := e.Date.String()

	err := s.inTx(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx,
			`DELETE FROM entries WHERE calendar_id = ? AND date = ?`, calendarID, date,
		); err != nil {
			return fmt.Errorf("failed to replace entry: %w", err)
		}

		if _, err := q.ExecContext(ctx,
			`INSERT INTO entries (calendar_id, date, id, notes, updated_at) VALUES (?, ?, ?, ?, ?)`,
			calendarID, date, e.ID, e.Notes, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}

		for i, sh := range e.Shifts {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO shifts (calendar_id, date, position, type, start_time, end_time, duration) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				calendarID, date, i, sh.Type.String(), sh.StartTime, sh.EndTime, sh.Duration.Value.String(),
			); err != nil {
				return fmt.Errorf("failed to save shift %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return overtime.DayEntry{}, err
	}
	return e, nil
}

func (s *Store) GetEntry(ctx context.Context, calendarID generic.CalendarID, date generic.Date) (overtime.DayEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireCalendar(ctx, calendarID); err != nil {
		return overtime.DayEntry{}, err
	}
	entries, err := s.queryEntries(ctx,
		`WHERE e.calendar_id = ? AND e.date = ?`, calendarID, date.String())
	if err != nil {
		return overtime.DayEntry{}, err
	}
	if len(entries) == 0 {
		return overtime.DayEntry{}, generic.ErrEntryNotFound
	}
	return entries[0], nil
}

func (s *Store) Entries(ctx context.Context, calendarID generic.CalendarID) ([]overtime.DayEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireCalendar(ctx, calendarID); err != nil {
		return nil, err
	}
	return s.queryEntries(ctx, `WHERE e.calendar_id = ?`, calendarID)
}

func (s *Store) EntriesInMonth(ctx context.Context, calendarID generic.CalendarID, m generic.Month) ([]overtime.DayEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireCalendar(ctx, calendarID); err != nil {
		return nil, err
	}
	return s.queryEntries(ctx,
		`WHERE e.calendar_id = ? AND e.date >= ? AND e.date <= ?`,
		calendarID, m.First().String(), m.Last().String())
}

func (s *Store) DeleteEntry(ctx context.Context, calendarID generic.CalendarID, date generic.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.q.ExecContext(ctx,
		`DELETE FROM entries WHERE calendar_id = ? AND date = ?`, calendarID, date.String())
	return affected(res, err, generic.ErrEntryNotFound)
}

func (s *Store) DeleteMonth(ctx context.Context, calendarID generic.CalendarID, m generic.Month) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCalendar(ctx, calendarID); err != nil {
		return 0, err
	}
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM entries WHERE calendar_id = ? AND date >= ? AND date <= ?`,
		calendarID, m.First().String(), m.Last().String())
	if err != nil {
		return 0, fmt.Errorf("failed to delete month: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// queryEntries loads entries and their shifts in one pass, ordered by date
// and shift position. where filters the entries alias e and must pin a
// single calendar.
func (s *Store) queryEntries(ctx context.Context, where string, args ...any) ([]overtime.DayEntry, error) {
	query := `
		SELECT e.id, e.date, e.notes, s.type, s.start_time, s.end_time, s.duration
		FROM entries e
		LEFT JOIN shifts s ON s.calendar_id = e.calendar_id AND s.date = e.date
		` + where + `
		ORDER BY e.date, s.position
	`
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []overtime.DayEntry
	for rows.Next() {
		var (
			id, date, notes            string
			typ, start, end, duration sql.NullString
		)
		if err := rows.Scan(&id, &date, &notes, &typ, &start, &end, &duration); err != nil {
			return nil, err
		}

		if len(entries) == 0 || entries[len(entries)-1].Date.String() != date {
			d, err := generic.ParseDate(date)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", id, err)
			}
			entries = append(entries, overtime.DayEntry{ID: generic.EntryID(id), Date: d, Notes: notes})
		}
		if !typ.Valid {
			continue
		}

		sh, err := parseShift(typ.String, start.String, end.String, duration.String)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", id, err)
		}
		last := &entries[len(entries)-1]
		last.Shifts = append(last.Shifts, sh)
	}
	return entries, rows.Err()
}

// =============================================================================
// HOLIDAY STORE (generic.HolidayStore interface)
// =============================================================================

func (s *Store) ManualHolidays(ctx context.Context, year int) ([]generic.Date, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM holiday_years WHERE year = ?`, year).Scan(&exists)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load holiday year: %w", err)
	}
	if exists == 0 {
		return nil, false, nil
	}

	rows, err := s.q.QueryContext(ctx, `SELECT date FROM manual_holidays WHERE year = ? ORDER BY date`, year)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load manual holidays: %w", err)
	}
	defer rows.Close()

	var dates []generic.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, false, err
		}
		d, err := generic.ParseDate(raw)
		if err != nil {
			return nil, false, err
		}
		dates = append(dates, d)
	}
	return dates, true, rows.Err()
}

func (s *Store) SetManualHolidays(ctx context.Context, year int, dates []generic.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM manual_holidays WHERE year = ?`, year); err != nil {
			return fmt.Errorf("failed to clear manual holidays: %w", err)
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO holiday_years (year, updated_at) VALUES (?, ?)
			 ON CONFLICT(year) DO UPDATE SET updated_at = excluded.updated_at`,
			year, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to mark holiday year: %w", err)
		}
		for _, d := range dates {
			if _, err := q.ExecContext(ctx,
				`INSERT OR IGNORE INTO manual_holidays (year, date) VALUES (?, ?)`, year, d.String(),
			); err != nil {
				return fmt.Errorf("failed to save manual holiday %s: %w", d, err)
			}
		}
		return nil
	})
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"shifts", "entries", "calendars", "profiles", "manual_holidays", "holiday_years"}
	for _, table := range tables {
		if _, err := s.q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) requireProfile(ctx context.Context, id generic.ProfileID) error {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles WHERE id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return generic.ErrProfileNotFound
	}
	return nil
}

func (s *Store) requireCalendar(ctx context.Context, id generic.CalendarID) error {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM calendars WHERE id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return generic.ErrCalendarNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (generic.Profile, error) {
	var (
		p       generic.Profile
		created string
	)
	if err := row.Scan(&p.ID, &p.Name, &created); err != nil {
		return generic.Profile{}, err
	}
	p.CreatedAt, _ = time.Parse(timestampLayout, created)
	return p, nil
}

func scanCalendar(row scanner) (generic.Calendar, error) {
	var (
		c       generic.Calendar
		created string
	)
	if err := row.Scan(&c.ID, &c.ProfileID, &c.Name, &created); err != nil {
		return generic.Calendar{}, err
	}
	c.CreatedAt, _ = time.Parse(timestampLayout, created)
	return c, nil
}

func parseShift(typ, start, end, duration string) (overtime.Shift, error) {
	t, err := overtime.ParseShiftType(typ)
	if err != nil {
		return overtime.Shift{}, err
	}
	d, err := decimal.NewFromString(duration)
	if err != nil {
		return overtime.Shift{}, fmt.Errorf("bad duration %q: %w", duration, err)
	}
	return overtime.Shift{
		Type:      t,
		StartTime: start,
		EndTime:   end,
		Duration:  generic.Minutes{Value: d},
	}, nil
}

// affected maps "no row changed" to notFound.
func affected(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
