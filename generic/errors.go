/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place for consistency and discoverability.
  The overtime engine itself never fails; these errors come from the
  data-entry layer (normalization, import) and from the stores.

ERROR CATEGORIES:
  1. Lookup errors - Missing profile, calendar or entry
  2. Validation errors - Bad dates, unknown shift kinds, negative durations
  3. Import errors - Malformed backup documents

USAGE:
    if errors.Is(err, generic.ErrCalendarNotFound) {
        writeError(w, http.StatusNotFound, ...)
    }
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrCalendarNotFound = errors.New("calendar not found")
	ErrEntryNotFound    = errors.New("entry not found")

	// ErrInvalidDate is returned for anything that is not a YYYY-MM-DD date
	// or a month outside 1-12.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidShift covers unknown shift kinds, negative durations and
	// malformed HH:MM times.
	ErrInvalidShift = errors.New("invalid shift")

	// ErrInvalidImport is returned when a backup document cannot be loaded.
	ErrInvalidImport = errors.New("invalid import document")

	// ErrInvalidName is returned for empty profile or calendar names.
	ErrInvalidName = errors.New("name must not be empty")

	// ErrAlreadyExists is returned when a record ID is already taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidShiftError reports which shift of which date was rejected.
type InvalidShiftError struct {
	Date   Date
	Index  int
	Type   string
	Reason string
}

func (e *InvalidShiftError) Error() string {
	return fmt.Sprintf("invalid shift %d (%q) on %s: %s", e.Index, e.Type, e.Date, e.Reason)
}

func (e *InvalidShiftError) Unwrap() error { return ErrInvalidShift }

// ImportError points at the offending element of a backup document.
type ImportError struct {
	Path string // e.g. "profiles[0].calendars[1].entries[4].date"
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() []error { return []error{ErrInvalidImport, e.Err} }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrCalendarNotFound) ||
		errors.Is(err, ErrEntryNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidShift) ||
		errors.Is(err, ErrInvalidImport) ||
		errors.Is(err, ErrInvalidName)
}

// IsConflict returns true if the error is a duplicate record.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
