/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Entry payloads
  reuse the backup schema (factory.EntryJSON) so that what the API returns
  is exactly what an export contains.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Profiles / Calendars:
    ProfileDTO, CalendarDTO, NameRequest

  Entries:
    SaveEntryRequest, RepeatRequest, SaveEntryResponse

  Reports:
    MonthSummaryDTO, MonthRecordDTO, YearSummaryDTO

  Holidays:
    HolidaysDTO, HolidaysRequest

VALIDATION:
  Validation is done in handlers and the factory, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/backup.go: EntryJSON / ShiftJSON
*/
package api

import (
	"time"

	"github.com/warp/pontaj/factory"
	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/overtime"
)

// =============================================================================
// PROFILES / CALENDARS
// =============================================================================

type ProfileDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type CalendarDTO struct {
	ID        string `json:"id"`
	ProfileID string `json:"profileId"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// NameRequest creates or renames a profile or calendar. ID is optional on
// create and ignored on rename.
type NameRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// =============================================================================
// ENTRIES
// =============================================================================

// SaveEntryRequest is the body of PUT /entries/{date}. The date comes from
// the URL.
type SaveEntryRequest struct {
	Shifts []factory.ShiftJSON `json:"shifts"`
	Notes  string              `json:"notes,omitempty"`
	Repeat *RepeatRequest      `json:"repeat,omitempty"`
}

// RepeatRequest saves the same entry every IntervalDays up to Until.
// With Preview set nothing is written.
type RepeatRequest struct {
	Until        string `json:"until"`
	IntervalDays int    `json:"intervalDays"`
	Preview      bool   `json:"preview,omitempty"`
}

type SaveEntryResponse struct {
	Entries []factory.EntryJSON `json:"entries"`
	// Counted lists dates whose normalized entry is non-empty.
	Counted      []string `json:"counted,omitempty"`
	TotalMinutes int64    `json:"totalMinutes"`
	Saved        bool     `json:"saved"`
}

// =============================================================================
// REPORTS
// =============================================================================

type MonthSummaryDTO struct {
	CalendarID string `json:"calendarId"`
	Month      string `json:"month"`
	overtime.MonthSummary
}

// MonthRecordDTO is one row of the breakdown. Minutes are rounded.
type MonthRecordDTO struct {
	Month            string `json:"month"`
	MonthOL          int64  `json:"monthOL"`
	MonthFTL         int64  `json:"monthFTL"`
	MonthOS          int64  `json:"monthOS"`
	CSEntered        int64  `json:"csEntered"`
	CSApplied        int64  `json:"csApplied"`
	OSDebt90d        int64  `json:"osDebt90d"`
	OSTotalAfterDebt int64  `json:"osTotalAfterDebt"`
}

type YearSummaryDTO struct {
	CalendarID string            `json:"calendarId"`
	Year       int               `json:"year"`
	Months     []MonthSummaryDTO `json:"months"`
}

// =============================================================================
// HOLIDAYS / SCENARIOS / ERRORS
// =============================================================================

type HolidaysDTO struct {
	Year     int      `json:"year"`
	Official []string `json:"official"`
	Manual   []string `json:"manual"`
}

type HolidaysRequest struct {
	Dates []string `json:"dates"`
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenarioId"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toProfileDTO(p generic.Profile) ProfileDTO {
	return ProfileDTO{ID: string(p.ID), Name: p.Name, CreatedAt: formatTime(p.CreatedAt)}
}

func toCalendarDTO(c generic.Calendar) CalendarDTO {
	return CalendarDTO{
		ID:        string(c.ID),
		ProfileID: string(c.ProfileID),
		Name:      c.Name,
		CreatedAt: formatTime(c.CreatedAt),
	}
}

func toMonthRecordDTO(r overtime.MonthRecord) MonthRecordDTO {
	return MonthRecordDTO{
		Month:            r.Month.String(),
		MonthOL:          generic.RoundMinutes(r.MonthOL),
		MonthFTL:         generic.RoundMinutes(r.MonthFTL),
		MonthOS:          generic.RoundMinutes(r.MonthOS),
		CSEntered:        generic.RoundMinutes(r.CSEntered),
		CSApplied:        generic.RoundMinutes(r.CSApplied),
		OSDebt90d:        generic.RoundMinutes(r.OSDebt90d),
		OSTotalAfterDebt: generic.RoundMinutes(r.OSTotalAfterDebt),
	}
}

func toEntryDTOs(entries []overtime.DayEntry) []factory.EntryJSON {
	out := make([]factory.EntryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, factory.EntryToJSON(e))
	}
	return out
}

func dateStrings(dates []generic.Date) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.String())
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
