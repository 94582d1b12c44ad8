/*
Package factory provides JSON backup <-> Go conversion.

PURPOSE:
  Converts a backup document (every profile, its calendars and their day
  entries, plus the manual holiday lists) into domain values and back. The
  HTTP API and the CLI both import and export through this package, so the
  on-disk format is defined in exactly one place.

JSON SCHEMA:
  {
    "version": 1,
    "exportedAt": "2025-03-31T18:00:00Z",
    "profiles": [
      {
        "id": "p-1",
        "name": "Ana",
        "createdAt": "2025-01-01T08:00:00Z",
        "calendars": [
          {
            "id": "c-1",
            "name": "Spital",
            "createdAt": "2025-01-01T08:00:00Z",
            "entries": [
              {
                "id": "e-1",
                "date": "2025-03-08",
                "notes": "garda",
                "shifts": [
                  {"type": "night", "startTime": "18:45", "endTime": "07:15", "duration": 750}
                ]
              }
            ]
          }
        ]
      }
    ],
    "manualHolidays": {"2025": ["2025-12-24"]}
  }

DATES:
  Entry dates are YYYY-MM-DD. Older documents stored full timestamps of
  local midnight ("2025-03-07T22:00:00.000Z"); those are converted to the
  civil date in the factory's zone, so the example above becomes
  2025-03-08 in Europe/Bucharest.

VALIDATION:
  - Shift types must be one of the seven kinds
  - Durations must be >= 0 (fractions allowed)
  - At most one entry per date per calendar
  - Profile and calendar names must not be empty
  The first problem found is returned as a *generic.ImportError whose Path
  points at the offending field.

USAGE:
  f := factory.NewBackupFactory(loc)
  backup, err := f.ParseBackup(data)
  result, err := f.Import(ctx, store, backup) // atomic on a TxStore

SEE ALSO:
  - overtime/types.go: DayEntry and Shift
  - generic/errors.go: ImportError
*/
package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/overtime"
)

// BackupVersion is written into every exported document.
const BackupVersion = 1

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// BackupJSON is the JSON representation of a full backup.
type BackupJSON struct {
	Version        int                 `json:"version"`
	ExportedAt     string              `json:"exportedAt,omitempty"`
	Profiles       []ProfileJSON       `json:"profiles"`
	ManualHolidays map[string][]string `json:"manualHolidays,omitempty"`
}

// ProfileJSON represents one profile with its calendars.
type ProfileJSON struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt string         `json:"createdAt,omitempty"`
	Calendars []CalendarJSON `json:"calendars"`
}

// CalendarJSON represents one calendar with its entries.
type CalendarJSON struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	CreatedAt string      `json:"createdAt,omitempty"`
	Entries   []EntryJSON `json:"entries"`
}

// EntryJSON represents a day entry. Date is YYYY-MM-DD or RFC3339.
type EntryJSON struct {
	ID     string      `json:"id"`
	Date   string      `json:"date"`
	Shifts []ShiftJSON `json:"shifts"`
	Notes  string      `json:"notes,omitempty"`
}

// ShiftJSON represents one shift. Duration is in minutes.
type ShiftJSON struct {
	Type      string  `json:"type"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Duration  float64 `json:"duration"`
}

// =============================================================================
// DOMAIN TYPES
// =============================================================================

// Backup is a parsed, validated backup document.
type Backup struct {
	Profiles       []ProfileBackup
	ManualHolidays map[int][]generic.Date
}

type ProfileBackup struct {
	Profile   generic.Profile
	Calendars []CalendarBackup
}

type CalendarBackup struct {
	Calendar generic.Calendar
	Entries  []overtime.DayEntry
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Profiles     int `json:"profiles"`
	Calendars    int `json:"calendars"`
	Entries      int `json:"entries"`
	HolidayYears int `json:"holidayYears"`
}

// =============================================================================
// BACKUP FACTORY
// =============================================================================

// BackupFactory converts between backup JSON and domain values.
type BackupFactory struct {
	// Location converts timestamp dates to civil dates.
	Location *time.Location

	now func() time.Time
}

// NewBackupFactory creates a factory. A nil location means UTC.
func NewBackupFactory(loc *time.Location) *BackupFactory {
	if loc == nil {
		loc = time.UTC
	}
	return &BackupFactory{Location: loc, now: time.Now}
}

// ParseBackup parses and validates a JSON document.
func (f *BackupFactory) ParseBackup(data []byte) (*Backup, error) {
	var bj BackupJSON
	if err := json.Unmarshal(data, &bj); err != nil {
		return nil, &generic.ImportError{Path: "$", Err: fmt.Errorf("failed to parse backup JSON: %w", err)}
	}
	return f.FromJSON(bj)
}

// FromJSON validates bj and converts it to a Backup.
func (f *BackupFactory) FromJSON(bj BackupJSON) (*Backup, error) {
	if bj.Version > BackupVersion {
		return nil, &generic.ImportError{Path: "version", Err: fmt.Errorf("unsupported version %d", bj.Version)}
	}

	b := &Backup{ManualHolidays: make(map[int][]generic.Date)}

	for pi, pj := range bj.Profiles {
		path := fmt.Sprintf("profiles[%d]", pi)
		profile, err := f.parseProfile(path, pj)
		if err != nil {
			return nil, err
		}

		pb := ProfileBackup{Profile: profile}
		for ci, cj := range pj.Calendars {
			cb, err := f.parseCalendar(fmt.Sprintf("%s.calendars[%d]", path, ci), profile.ID, cj)
			if err != nil {
				return nil, err
			}
			pb.Calendars = append(pb.Calendars, cb)
		}
		b.Profiles = append(b.Profiles, pb)
	}

	for key, raw := range bj.ManualHolidays {
		path := fmt.Sprintf("manualHolidays[%q]", key)
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, &generic.ImportError{Path: path, Err: fmt.Errorf("%w: year %q", generic.ErrInvalidDate, key)}
		}
		dates := make([]generic.Date, 0, len(raw))
		for i, s := range raw {
			d, err := generic.ParseDate(s)
			if err == nil && d.Year() != year {
				err = fmt.Errorf("%w: %s is not in %d", generic.ErrInvalidDate, s, year)
			}
			if err != nil {
				return nil, &generic.ImportError{Path: fmt.Sprintf("%s[%d]", path, i), Err: err}
			}
			dates = append(dates, d)
		}
		b.ManualHolidays[year] = dates
	}

	return b, nil
}

func (f *BackupFactory) parseProfile(path string, pj ProfileJSON) (generic.Profile, error) {
	if strings.TrimSpace(pj.Name) == "" {
		return generic.Profile{}, &generic.ImportError{Path: path + ".name", Err: generic.ErrInvalidName}
	}
	id := pj.ID
	if id == "" {
		id = uuid.NewString()
	}
	created, err := f.parseTimestamp(pj.CreatedAt)
	if err != nil {
		return generic.Profile{}, &generic.ImportError{Path: path + ".createdAt", Err: err}
	}
	return generic.Profile{ID: generic.ProfileID(id), Name: pj.Name, CreatedAt: created}, nil
}

func (f *BackupFactory) parseCalendar(path string, owner generic.ProfileID, cj CalendarJSON) (CalendarBackup, error) {
	if strings.TrimSpace(cj.Name) == "" {
		return CalendarBackup{}, &generic.ImportError{Path: path + ".name", Err: generic.ErrInvalidName}
	}
	id := cj.ID
	if id == "" {
		id = uuid.NewString()
	}
	created, err := f.parseTimestamp(cj.CreatedAt)
	if err != nil {
		return CalendarBackup{}, &generic.ImportError{Path: path + ".createdAt", Err: err}
	}

	cb := CalendarBackup{Calendar: generic.Calendar{
		ID:        generic.CalendarID(id),
		ProfileID: owner,
		Name:      cj.Name,
		CreatedAt: created,
	}}

	seen := make(map[string]int)
	for ei, ej := range cj.Entries {
		entryPath := fmt.Sprintf("%s.entries[%d]", path, ei)
		e, err := f.parseEntry(entryPath, ej)
		if err != nil {
			return CalendarBackup{}, err
		}
		if prev, dup := seen[e.Date.String()]; dup {
			return CalendarBackup{}, &generic.ImportError{
				Path: entryPath + ".date",
				Err:  fmt.Errorf("%w: %s already used by entries[%d]", generic.ErrInvalidDate, e.Date, prev),
			}
		}
		seen[e.Date.String()] = ei
		cb.Entries = append(cb.Entries, e)
	}
	return cb, nil
}

// EntryFromJSON converts a single entry payload; errors carry the path
// "entry".
func (f *BackupFactory) EntryFromJSON(ej EntryJSON) (overtime.DayEntry, error) {
	return f.parseEntry("entry", ej)
}

func (f *BackupFactory) parseEntry(path string, ej EntryJSON) (overtime.DayEntry, error) {
	d, err := f.ParseEntryDate(ej.Date)
	if err != nil {
		return overtime.DayEntry{}, &generic.ImportError{Path: path + ".date", Err: err}
	}
	id := ej.ID
	if id == "" {
		id = uuid.NewString()
	}

	e := overtime.DayEntry{ID: generic.EntryID(id), Date: d, Notes: ej.Notes}
	for si, sj := range ej.Shifts {
		shiftPath := fmt.Sprintf("%s.shifts[%d]", path, si)
		t, err := overtime.ParseShiftType(sj.Type)
		if err != nil {
			return overtime.DayEntry{}, &generic.ImportError{Path: shiftPath + ".type", Err: err}
		}
		if sj.Duration < 0 {
			return overtime.DayEntry{}, &generic.ImportError{
				Path: shiftPath + ".duration",
				Err:  fmt.Errorf("%w: negative duration %v", generic.ErrInvalidShift, sj.Duration),
			}
		}
		e.Shifts = append(e.Shifts, overtime.Shift{
			Type:      t,
			StartTime: sj.StartTime,
			EndTime:   sj.EndTime,
			Duration:  generic.NewMinutesFromFloat(sj.Duration),
		})
	}
	return e, nil
}

// ParseEntryDate accepts YYYY-MM-DD or an RFC3339 timestamp. Timestamps are
// read as instants and converted to the civil date in f.Location.
func (f *BackupFactory) ParseEntryDate(s string) (generic.Date, error) {
	s = strings.TrimSpace(s)
	if len(s) == len(generic.DateLayout) {
		return generic.ParseDate(s)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return generic.Date{}, fmt.Errorf("%w: %q", generic.ErrInvalidDate, s)
	}
	return generic.DateIn(t, f.Location), nil
}

func (f *BackupFactory) parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", generic.ErrInvalidDate, s)
	}
	return t.UTC(), nil
}

// =============================================================================
// STORE ROUND TRIP
// =============================================================================

// Export reads every profile, calendar, entry and configured holiday year
// in years from store.
func (f *BackupFactory) Export(ctx context.Context, store overtime.Store, holidayYears []int) (*Backup, error) {
	b := &Backup{ManualHolidays: make(map[int][]generic.Date)}

	profiles, err := store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	for _, p := range profiles {
		pb := ProfileBackup{Profile: p}
		calendars, err := store.ListCalendars(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list calendars of %s: %w", p.ID, err)
		}
		for _, c := range calendars {
			entries, err := store.Entries(ctx, c.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load entries of %s: %w", c.ID, err)
			}
			pb.Calendars = append(pb.Calendars, CalendarBackup{Calendar: c, Entries: entries})
		}
		b.Profiles = append(b.Profiles, pb)
	}

	for _, year := range holidayYears {
		dates, configured, err := store.ManualHolidays(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("failed to load manual holidays for %d: %w", year, err)
		}
		if configured {
			b.ManualHolidays[year] = dates
		}
	}
	return b, nil
}

// Import writes b into store. A profile whose ID already exists is replaced
// together with its calendars and entries; other profiles are left alone.
// Entry durations are written as found in the document.
//
// On an overtime.TxStore the import is all or nothing: a failure leaves the
// store as it was and reports an empty result.
func (f *BackupFactory) Import(ctx context.Context, store overtime.Store, b *Backup) (ImportResult, error) {
	txStore, ok := store.(overtime.TxStore)
	if !ok {
		return f.importInto(ctx, store, b)
	}

	var res ImportResult
	err := txStore.WithTx(ctx, func(tx overtime.Store) error {
		var err error
		res, err = f.importInto(ctx, tx, b)
		return err
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

func (f *BackupFactory) importInto(ctx context.Context, store overtime.Store, b *Backup) (ImportResult, error) {
	var res ImportResult

	for _, pb := range b.Profiles {
		if _, err := store.GetProfile(ctx, pb.Profile.ID); err == nil {
			if err := store.DeleteProfile(ctx, pb.Profile.ID); err != nil {
				return res, fmt.Errorf("failed to replace profile %s: %w", pb.Profile.ID, err)
			}
		} else if !generic.IsNotFound(err) {
			return res, err
		}

		if err := store.CreateProfile(ctx, pb.Profile); err != nil {
			return res, fmt.Errorf("failed to import profile %s: %w", pb.Profile.ID, err)
		}
		res.Profiles++

		for _, cb := range pb.Calendars {
			if err := store.CreateCalendar(ctx, cb.Calendar); err != nil {
				return res, fmt.Errorf("failed to import calendar %s: %w", cb.Calendar.ID, err)
			}
			res.Calendars++
			for _, e := range cb.Entries {
				if _, err := store.SaveEntry(ctx, cb.Calendar.ID, e); err != nil {
					return res, fmt.Errorf("failed to import entry %s: %w", e.Date, err)
				}
				res.Entries++
			}
		}
	}

	for year, dates := range b.ManualHolidays {
		if err := store.SetManualHolidays(ctx, year, dates); err != nil {
			return res, fmt.Errorf("failed to import holidays for %d: %w", year, err)
		}
		res.HolidayYears++
	}
	return res, nil
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// ToJSON converts a Backup to its JSON representation.
func (f *BackupFactory) ToJSON(b *Backup) BackupJSON {
	bj := BackupJSON{
		Version:    BackupVersion,
		ExportedAt: f.now().UTC().Format(time.RFC3339),
		Profiles:   make([]ProfileJSON, 0, len(b.Profiles)),
	}

	for _, pb := range b.Profiles {
		pj := ProfileJSON{
			ID:        string(pb.Profile.ID),
			Name:      pb.Profile.Name,
			CreatedAt: formatTimestamp(pb.Profile.CreatedAt),
			Calendars: make([]CalendarJSON, 0, len(pb.Calendars)),
		}
		for _, cb := range pb.Calendars {
			cj := CalendarJSON{
				ID:        string(cb.Calendar.ID),
				Name:      cb.Calendar.Name,
				CreatedAt: formatTimestamp(cb.Calendar.CreatedAt),
				Entries:   make([]EntryJSON, 0, len(cb.Entries)),
			}
			for _, e := range cb.Entries {
				cj.Entries = append(cj.Entries, EntryToJSON(e))
			}
			pj.Calendars = append(pj.Calendars, cj)
		}
		bj.Profiles = append(bj.Profiles, pj)
	}

	if len(b.ManualHolidays) > 0 {
		bj.ManualHolidays = make(map[string][]string, len(b.ManualHolidays))
		years := make([]int, 0, len(b.ManualHolidays))
		for y := range b.ManualHolidays {
			years = append(years, y)
		}
		sort.Ints(years)
		for _, y := range years {
			list := make([]string, 0, len(b.ManualHolidays[y]))
			for _, d := range b.ManualHolidays[y] {
				list = append(list, d.String())
			}
			bj.ManualHolidays[strconv.Itoa(y)] = list
		}
	}
	return bj
}

// Marshal renders b as indented JSON.
func (f *BackupFactory) Marshal(b *Backup) ([]byte, error) {
	return json.MarshalIndent(f.ToJSON(b), "", "  ")
}

// EntryToJSON converts a single entry; the API reuses it for entry payloads.
func EntryToJSON(e overtime.DayEntry) EntryJSON {
	ej := EntryJSON{
		ID:     string(e.ID),
		Date:   e.Date.String(),
		Notes:  e.Notes,
		Shifts: make([]ShiftJSON, 0, len(e.Shifts)),
	}
	for _, s := range e.Shifts {
		ej.Shifts = append(ej.Shifts, ShiftJSON{
			Type:      s.Type.String(),
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Duration:  s.Duration.Float(),
		})
	}
	return ej
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
