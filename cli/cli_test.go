package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pontaj/api"
	"github.com/warp/pontaj/cli"
	"github.com/warp/pontaj/config"
	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/generic/store"
	"github.com/warp/pontaj/overtime"
)

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.CreateProfile(ctx, generic.Profile{ID: "p-1", Name: "Ana"}))
	require.NoError(t, mem.CreateCalendar(ctx, generic.Calendar{ID: "c-1", ProfileID: "p-1", Name: "Spital"}))
	_, err := mem.SaveEntry(ctx, "c-1", overtime.DayEntry{
		ID:     "e-1",
		Date:   generic.MustParseDate("2025-03-08"),
		Shifts: []overtime.Shift{{Type: overtime.ShiftNight, StartTime: "18:45", EndTime: "07:15", Duration: generic.NewMinutes(750)}},
	})
	require.NoError(t, err)
	return mem
}

func run(t *testing.T, mem *store.Memory, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cfg := &config.Config{DBPath: "unused.db", TimeZone: "Europe/Bucharest", LogLevel: "error", LogFormat: "text"}
	deps := cli.Deps{
		Stdout: &stdout,
		Stderr: &stderr,
		OpenStore: func(string) (overtime.Store, func() error, error) {
			return mem, func() error { return nil }, nil
		},
	}
	cmd := cli.NewRootCmd(cfg, deps)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestSummary_TableAndJSON(t *testing.T) {
	mem := seededStore(t)

	out, err := run(t, mem, "summary", "-c", "c-1", "--year", "2025", "--month", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-03")
	assert.Contains(t, out, "168h 0m", "21 baseline days")
	assert.Regexp(t, `Weekend/holiday\s+12h 30m`, out)

	out, err = run(t, mem, "summary", "-c", "c-1", "--year", "2025", "--month", "3", "--json")
	require.NoError(t, err)
	var s api.MonthSummaryDTO
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, int64(750), s.TotalWeekend)
}

func TestSummary_Errors(t *testing.T) {
	mem := seededStore(t)

	_, err := run(t, mem, "summary", "-c", "missing", "--year", "2025", "--month", "3")
	assert.ErrorIs(t, err, generic.ErrCalendarNotFound)

	_, err = run(t, mem, "summary", "-c", "c-1", "--year", "2025", "--month", "13")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)

	_, err = run(t, mem, "summary")
	assert.Error(t, err, "calendar flag is required")
}

func TestBreakdown_OneLinePerMonth(t *testing.T) {
	mem := seededStore(t)

	out, err := run(t, mem, "breakdown", "-c", "c-1", "--year", "2025", "--month", "5")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, "header + March, April, May")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[1]), "2025-03"))
}

func TestExport_EntriesAndYear(t *testing.T) {
	mem := seededStore(t)

	out, err := run(t, mem, "export", "entries", "-c", "c-1", "--year", "2025")
	require.NoError(t, err)
	assert.Equal(t,
		"Date,ID,ShiftType,Start,End,Duration,OS,WeekendHours,Notes\n"+
			"2025-03-08,e-1,night,18:45,07:15,12h 30m,12h 30m,12h 30m,\n", out)

	out, err = run(t, mem, "export", "entries", "-c", "c-1", "--year", "2025", "--month", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "SUMMARY,,,,,12h 30m,168h 0m,12h 30m,OS Debt: 0h 0m", lines[2])

	out, err = run(t, mem, "export", "year", "-c", "c-1", "--year", "2025")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 13)
}

func TestHolidays_SetThenGet(t *testing.T) {
	mem := seededStore(t)

	out, err := run(t, mem, "holidays", "set", "2025", "2025-12-24", "2025-03-12")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 2 holidays for 2025")

	out, err = run(t, mem, "holidays", "get", "2025")
	require.NoError(t, err)
	manual := out[strings.Index(out, "Manual 2025:"):]
	assert.Contains(t, manual, "2025-03-12 Wednesday")
	assert.Contains(t, manual, "2025-12-24 Wednesday")
	assert.NotContains(t, manual, "2025-01-01")

	_, err = run(t, mem, "holidays", "set", "2025", "2026-01-01")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}

func TestImport_FromFile(t *testing.T) {
	mem := store.NewMemory()
	path := filepath.Join(t.TempDir(), "backup.json")
	doc := `{"version":1,"profiles":[{"id":"p-9","name":"Ioana","calendars":[{"id":"c-9","name":"ATI","entries":[
		{"id":"e-1","date":"2025-03-09T22:00:00.000Z","shifts":[{"type":"cs","duration":120}]}]}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	out, err := run(t, mem, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 profiles, 1 calendars, 1 entries, 0 holiday years")

	// The UTC timestamp is the local midnight of March 10
	_, err = mem.GetEntry(context.Background(), "c-9", generic.MustParseDate("2025-03-10"))
	assert.NoError(t, err)
}
