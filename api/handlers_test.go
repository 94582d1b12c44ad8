/*
handlers_test.go - HTTP round trips through the router

Tests for:
- Profile and calendar CRUD with status mapping (400/404/409)
- Saving entries by date, normalization and repeat preview
- Monthly, breakdown and yearly reports
- Manual holiday lists
- Backup export / import
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pontaj/factory"
	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/generic/store"
)

func newTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.CreateProfile(ctx, generic.Profile{ID: "p-1", Name: "Ana"}))
	require.NoError(t, mem.CreateCalendar(ctx, generic.Calendar{ID: "c-1", ProfileID: "p-1", Name: "Spital"}))

	h := NewHandler(mem, nil, nil, nil)
	return h, NewRouter(h)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func nightShift() []factory.ShiftJSON {
	return []factory.ShiftJSON{{Type: "night", StartTime: "18:45", EndTime: "07:15"}}
}

// =============================================================================
// PROFILES / CALENDARS
// =============================================================================

func TestProfiles_CRUDAndStatusCodes(t *testing.T) {
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/profiles", NameRequest{ID: "p-2", Name: "Bogdan"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Bogdan", decode[ProfileDTO](t, rec).Name)

	rec = do(t, router, http.MethodPost, "/api/profiles", NameRequest{ID: "p-2", Name: "Again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/profiles", NameRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/profiles/p-2", NameRequest{Name: "Bogdan I."})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bogdan I.", decode[ProfileDTO](t, rec).Name)

	rec = do(t, router, http.MethodGet, "/api/profiles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ProfileDTO](t, rec), 2)

	rec = do(t, router, http.MethodDelete, "/api/profiles/p-2", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/profiles/p-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Failed to delete profile", decode[ErrorResponse](t, rec).Error)
}

func TestCalendars_CreateRenameDelete(t *testing.T) {
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/profiles/p-1/calendars", NameRequest{Name: "Cabinet"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[CalendarDTO](t, rec)
	assert.NotEmpty(t, created.ID, "ID is generated when omitted")
	assert.Equal(t, "p-1", created.ProfileID)

	rec = do(t, router, http.MethodPost, "/api/profiles/missing/calendars", NameRequest{Name: "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/calendars/"+created.ID, NameRequest{Name: "Cabinet 2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cabinet 2", decode[CalendarDTO](t, rec).Name)

	rec = do(t, router, http.MethodGet, "/api/profiles/p-1/calendars", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]CalendarDTO](t, rec), 2)

	rec = do(t, router, http.MethodDelete, "/api/calendars/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestSaveEntry_NormalizesAndFeedsSummary(t *testing.T) {
	// GIVEN: A night shift saved on Saturday 2025-03-08 with times only
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPut, "/api/calendars/c-1/entries/2025-03-08", SaveEntryRequest{Shifts: nightShift(), Notes: "garda"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[SaveEntryResponse](t, rec)

	// THEN: The duration is derived from the times
	require.Len(t, saved.Entries, 1)
	assert.True(t, saved.Saved)
	assert.Equal(t, 750.0, saved.Entries[0].Shifts[0].Duration)
	assert.Equal(t, int64(750), saved.TotalMinutes)

	// WHEN: Reading the entry and the March summary
	rec = do(t, router, http.MethodGet, "/api/calendars/c-1/entries/2025-03-08", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "garda", decode[factory.EntryJSON](t, rec).Notes)

	rec = do(t, router, http.MethodGet, "/api/calendars/c-1/summary/2025/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[MonthSummaryDTO](t, rec)

	// THEN: Saturday into Sunday counts fully as weekend work
	assert.Equal(t, "2025-03", s.Month)
	assert.Equal(t, int64(750), s.TotalOL)
	assert.Equal(t, int64(750), s.TotalWeekend)
	assert.Equal(t, int64(21*480), s.TotalFTL)
	assert.Equal(t, int64(750-21*480), s.OSMonth)
}

func TestSaveEntry_Rejections(t *testing.T) {
	_, router := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   SaveEntryRequest
		status int
	}{
		{"unknown shift type", "/api/calendars/c-1/entries/2025-03-10", SaveEntryRequest{Shifts: []factory.ShiftJSON{{Type: "vacation"}}}, http.StatusBadRequest},
		{"negative duration", "/api/calendars/c-1/entries/2025-03-10", SaveEntryRequest{Shifts: []factory.ShiftJSON{{Type: "cs", Duration: -5}}}, http.StatusBadRequest},
		{"bad clock", "/api/calendars/c-1/entries/2025-03-10", SaveEntryRequest{Shifts: []factory.ShiftJSON{{Type: "day", StartTime: "25:00", EndTime: "07:00"}}}, http.StatusBadRequest},
		{"bad date", "/api/calendars/c-1/entries/10.03.2025", SaveEntryRequest{}, http.StatusBadRequest},
		{"unknown calendar", "/api/calendars/nope/entries/2025-03-10", SaveEntryRequest{}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestSaveEntry_RepeatPreviewThenSave(t *testing.T) {
	// GIVEN: A day shift repeated weekly from Monday 3 March to 17 March
	_, router := newTestServer(t)
	body := SaveEntryRequest{
		Shifts: []factory.ShiftJSON{{Type: "day", StartTime: "06:45", EndTime: "19:15"}},
		Repeat: &RepeatRequest{Until: "2025-03-17", IntervalDays: 7, Preview: true},
	}

	// WHEN: Previewing
	rec := do(t, router, http.MethodPut, "/api/calendars/c-1/entries/2025-03-03", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	preview := decode[SaveEntryResponse](t, rec)

	// THEN: Three dates are planned and nothing is stored
	assert.False(t, preview.Saved)
	assert.Equal(t, []string{"2025-03-03", "2025-03-10", "2025-03-17"}, preview.Counted)
	assert.Equal(t, int64(3*750), preview.TotalMinutes)
	rec = do(t, router, http.MethodGet, "/api/calendars/c-1/entries", nil)
	assert.Empty(t, decode[[]factory.EntryJSON](t, rec))

	// WHEN: Saving for real
	body.Repeat.Preview = false
	rec = do(t, router, http.MethodPut, "/api/calendars/c-1/entries/2025-03-03", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[SaveEntryResponse](t, rec).Saved)

	// THEN: The month lists three entries
	rec = do(t, router, http.MethodGet, "/api/calendars/c-1/entries?year=2025&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]factory.EntryJSON](t, rec), 3)

	// AND: A zero interval is rejected
	body.Repeat.IntervalDays = 0
	rec = do(t, router, http.MethodPut, "/api/calendars/c-1/entries/2025-03-03", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntries_ListFiltersAndDeletes(t *testing.T) {
	_, router := newTestServer(t)
	for _, d := range []string{"2024-12-30", "2025-03-10", "2025-03-11", "2025-04-01"} {
		rec := do(t, router, http.MethodPut, "/api/calendars/c-1/entries/"+d, SaveEntryRequest{Shifts: nightShift()})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, router, http.MethodGet, "/api/calendars/c-1/entries?year=2025", nil)
	assert.Len(t, decode[[]factory.EntryJSON](t, rec), 3)

	rec = do(t, router, http.MethodGet, "/api/calendars/c-1/entries?month=3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "month without year")

	rec = do(t, router, http.MethodDelete, "/api/calendars/c-1/entries/2025-04-01", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/calendars/c-1/entries/2025-04-01", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/calendars/c-1/months/2025/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int{"deleted": 2}, decode[map[string]int](t, rec))

	rec = do(t, router, http.MethodDelete, "/api/calendars/c-1/months/2025/13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestBreakdownAndYearSummary(t *testing.T) {
	_, router := newTestServer(t)
	for _, d := range []string{"2025-01-10", "2025-03-08"} {
		rec := do(t, router, http.MethodPut, "/api/calendars/c-1/entries/"+d, SaveEntryRequest{Shifts: nightShift()})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, router, http.MethodGet, "/api/calendars/c-1/breakdown/2025/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]MonthRecordDTO](t, rec)
	require.Len(t, records, 3)
	assert.Equal(t, "2025-01", records[0].Month)
	assert.Equal(t, int64(0), records[1].MonthOL, "February has no entries but is replayed")

	rec = do(t, router, http.MethodGet, "/api/calendars/c-1/years/2025/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	year := decode[YearSummaryDTO](t, rec)
	require.Len(t, year.Months, 12)
	assert.Equal(t, int64(750), year.Months[2].TotalOL)
	assert.Equal(t, MonthSummaryDTO{CalendarID: "c-1", Month: "2025-02"}, year.Months[1], "month without entries is all zero")

	rec = do(t, router, http.MethodGet, "/api/calendars/missing/summary/2025/3", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/calendars/c-1/summary/2025/0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidays_ManualListFallsBackAndOverrides(t *testing.T) {
	// GIVEN: A year that was never configured
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/api/holidays/2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[HolidaysDTO](t, rec)

	// THEN: The manual list starts as the official one
	assert.Contains(t, before.Official, "2025-01-01")
	assert.Equal(t, before.Official, before.Manual)

	// WHEN: Replacing the manual list with one extra workday holiday
	rec = do(t, router, http.MethodPut, "/api/holidays/2025", HolidaysRequest{Dates: []string{"2025-03-12"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"2025-03-12"}, decode[HolidaysDTO](t, rec).Manual)

	// THEN: A day shift on that Wednesday is weekend work and the baseline shrinks
	rec = do(t, router, http.MethodPut, "/api/calendars/c-1/entries/2025-03-12",
		SaveEntryRequest{Shifts: []factory.ShiftJSON{{Type: "day", StartTime: "06:45", EndTime: "19:15"}}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/calendars/c-1/summary/2025/3", nil)
	s := decode[MonthSummaryDTO](t, rec)
	assert.Equal(t, int64(750), s.TotalWeekend)
	assert.Equal(t, int64(20*480), s.TotalFTL)

	// AND: Dates outside the year are rejected
	rec = do(t, router, http.MethodPut, "/api/holidays/2025", HolidaysRequest{Dates: []string{"2026-01-01"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// BACKUP
// =============================================================================

func TestBackup_ExportThenImportIntoEmptyStore(t *testing.T) {
	// GIVEN: A calendar with one entry and a configured holiday year
	_, router := newTestServer(t)
	rec := do(t, router, http.MethodPut, "/api/calendars/c-1/entries/2025-03-08", SaveEntryRequest{Shifts: nightShift()})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPut, "/api/holidays/2025", HolidaysRequest{Dates: []string{"2025-12-24"}})
	require.Equal(t, http.StatusOK, rec.Code)

	// WHEN: Exporting
	rec = do(t, router, http.MethodGet, "/api/backup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "pontaj-backup-")
	doc := rec.Body.Bytes()

	// AND: Importing into a fresh server
	_, fresh := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/backup", bytes.NewReader(doc))
	out := httptest.NewRecorder()
	fresh.ServeHTTP(out, req)

	// THEN: The entry and the holiday list come back
	require.Equal(t, http.StatusOK, out.Code, out.Body.String())
	assert.Equal(t, factory.ImportResult{Profiles: 1, Calendars: 1, Entries: 1, HolidayYears: 1}, decode[factory.ImportResult](t, out))
	rec = do(t, fresh, http.MethodGet, "/api/calendars/c-1/entries/2025-03-08", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, fresh, http.MethodGet, "/api/holidays/2025", nil)
	assert.Equal(t, []string{"2025-12-24"}, decode[HolidaysDTO](t, rec).Manual)
}

func TestBackup_InvalidDocument(t *testing.T) {
	_, router := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/backup", bytes.NewBufferString(`{"profiles":[{"id":"p","name":""}]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "profiles[0].name")
}
