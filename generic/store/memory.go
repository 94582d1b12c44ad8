// Package store provides an in-memory overtime.Store.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/overtime"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	txMu      sync.Mutex
	mu        sync.RWMutex
	profiles  map[generic.ProfileID]generic.Profile
	calendars map[generic.CalendarID]generic.Calendar
	entries   map[generic.CalendarID]map[string]overtime.DayEntry
	holidays  map[int][]generic.Date
}

var _ overtime.TxStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		profiles:  make(map[generic.ProfileID]generic.Profile),
		calendars: make(map[generic.CalendarID]generic.Calendar),
		entries:   make(map[generic.CalendarID]map[string]overtime.DayEntry),
		holidays:  make(map[int][]generic.Date),
	}
}

// =============================================================================
// PROFILES / CALENDARS
// =============================================================================

func (m *Memory) CreateProfile(_ context.Context, p generic.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; ok {
		return generic.ErrAlreadyExists
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.profiles[p.ID] = p
	return nil
}

func (m *Memory) GetProfile(_ context.Context, id generic.ProfileID) (generic.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return generic.Profile{}, generic.ErrProfileNotFound
	}
	return p, nil
}

func (m *Memory) ListProfiles(_ context.Context) ([]generic.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]generic.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) RenameProfile(_ context.Context, id generic.ProfileID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return generic.ErrProfileNotFound
	}
	p.Name = name
	m.profiles[id] = p
	return nil
}

func (m *Memory) DeleteProfile(_ context.Context, id generic.ProfileID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[id]; !ok {
		return generic.ErrProfileNotFound
	}
	for cid, c := range m.calendars {
		if c.ProfileID == id {
			delete(m.calendars, cid)
			delete(m.entries, cid)
		}
	}
	delete(m.profiles, id)
	return nil
}

func (m *Memory) CreateCalendar(_ context.Context, c generic.Calendar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[c.ProfileID]; !ok {
		return generic.ErrProfileNotFound
	}
	if _, ok := m.calendars[c.ID]; ok {
		return generic.ErrAlreadyExists
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.calendars[c.ID] = c
	return nil
}

func (m *Memory) GetCalendar(_ context.Context, id generic.CalendarID) (generic.Calendar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.calendars[id]
	if !ok {
		return generic.Calendar{}, generic.ErrCalendarNotFound
	}
	return c, nil
}

func (m *Memory) ListCalendars(_ context.Context, profileID generic.ProfileID) ([]generic.Calendar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.profiles[profileID]; !ok {
		return nil, generic.ErrProfileNotFound
	}
	var out []generic.Calendar
	for _, c := range m.calendars {
		if c.ProfileID == profileID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) RenameCalendar(_ context.Context, id generic.CalendarID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calendars[id]
	if !ok {
		return generic.ErrCalendarNotFound
	}
	c.Name = name
	m.calendars[id] = c
	return nil
}

func (m *Memory) DeleteCalendar(_ context.Context, id generic.CalendarID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.calendars[id]; !ok {
		return generic.ErrCalendarNotFound
	}
	delete(m.calendars, id)
	delete(m.entries, id)
	return nil
}

// =============================================================================
// ENTRIES
// =============================================================================

func (m *Memory) SaveEntry(_ context.Context, calendarID generic.CalendarID, e overtime.DayEntry) (overtime.DayEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.calendars[calendarID]; !ok {
		return overtime.DayEntry{}, generic.ErrCalendarNotFound
	}
	if e.ID == "" {
		e.ID = generic.EntryID(uuid.NewString())
	}
	if m.entries[calendarID] == nil {
		m.entries[calendarID] = make(map[string]overtime.DayEntry)
	}
	e.Shifts = append([]overtime.Shift(nil), e.Shifts...)
	m.entries[calendarID][e.Date.String()] = e
	return e, nil
}

func (m *Memory) GetEntry(_ context.Context, calendarID generic.CalendarID, date generic.Date) (overtime.DayEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.calendars[calendarID]; !ok {
		return overtime.DayEntry{}, generic.ErrCalendarNotFound
	}
	e, ok := m.entries[calendarID][date.String()]
	if !ok {
		return overtime.DayEntry{}, generic.ErrEntryNotFound
	}
	return e, nil
}

func (m *Memory) Entries(_ context.Context, calendarID generic.CalendarID) ([]overtime.DayEntry, error) {
	return m.filter(calendarID, func(generic.Date) bool { return true })
}

func (m *Memory) EntriesInMonth(_ context.Context, calendarID generic.CalendarID, month generic.Month) ([]overtime.DayEntry, error) {
	return m.filter(calendarID, month.Contains)
}

func (m *Memory) filter(calendarID generic.CalendarID, keep func(generic.Date) bool) ([]overtime.DayEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.calendars[calendarID]; !ok {
		return nil, generic.ErrCalendarNotFound
	}
	var out []overtime.DayEntry
	for _, e := range m.entries[calendarID] {
		if keep(e.Date) {
			e.Shifts = append([]overtime.Shift(nil), e.Shifts...)
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) DeleteEntry(_ context.Context, calendarID generic.CalendarID, date generic.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[calendarID][date.String()]; !ok {
		return generic.ErrEntryNotFound
	}
	delete(m.entries[calendarID], date.String())
	return nil
}

func (m *Memory) DeleteMonth(_ context.Context, calendarID generic.CalendarID, month generic.Month) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.calendars[calendarID]; !ok {
		return 0, generic.ErrCalendarNotFound
	}
	n := 0
	for key, e := range m.entries[calendarID] {
		if month.Contains(e.Date) {
			delete(m.entries[calendarID], key)
			n++
		}
	}
	return n, nil
}

// =============================================================================
// MANUAL HOLIDAYS
// =============================================================================

func (m *Memory) ManualHolidays(_ context.Context, year int) ([]generic.Date, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dates, ok := m.holidays[year]
	if !ok {
		return nil, false, nil
	}
	return append([]generic.Date(nil), dates...), true, nil
}

func (m *Memory) SetManualHolidays(_ context.Context, year int, dates []generic.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[year] = append([]generic.Date(nil), dates...)
	return nil
}

// Reset clears all data (for testing/demo).
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = make(map[generic.ProfileID]generic.Profile)
	m.calendars = make(map[generic.CalendarID]generic.Calendar)
	m.entries = make(map[generic.CalendarID]map[string]overtime.DayEntry)
	m.holidays = make(map[int][]generic.Date)
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

type memorySnapshot struct {
	profiles  map[generic.ProfileID]generic.Profile
	calendars map[generic.CalendarID]generic.Calendar
	entries   map[generic.CalendarID]map[string]overtime.DayEntry
	holidays  map[int][]generic.Date
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
// Transactions are serialized with each other but not with plain writes.
func (m *Memory) WithTx(_ context.Context, fn func(overtime.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snapshot := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *Memory) snapshot() memorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := memorySnapshot{
		profiles:  make(map[generic.ProfileID]generic.Profile, len(m.profiles)),
		calendars: make(map[generic.CalendarID]generic.Calendar, len(m.calendars)),
		entries:   make(map[generic.CalendarID]map[string]overtime.DayEntry, len(m.entries)),
		holidays:  make(map[int][]generic.Date, len(m.holidays)),
	}
	for k, v := range m.profiles {
		snap.profiles[k] = v
	}
	for k, v := range m.calendars {
		snap.calendars[k] = v
	}
	for cal, byDate := range m.entries {
		copied := make(map[string]overtime.DayEntry, len(byDate))
		for k, v := range byDate {
			copied[k] = v
		}
		snap.entries[cal] = copied
	}
	for k, v := range m.holidays {
		snap.holidays[k] = v
	}
	return snap
}

func (m *Memory) restore(snap memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = snap.profiles
	m.calendars = snap.calendars
	m.entries = snap.entries
	m.holidays = snap.holidays
}
