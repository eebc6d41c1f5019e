/*
errors.go - Error types shared by every engine entry point

PURPOSE:
  Two failure policies coexist in the engine and must not be conflated:
  - Soft-empty: malformed but well-typed ranges (end before start) and empty
    collections return a zeroed, structurally valid result. No error.
  - Hard-failure: structurally invalid input returns one of the typed errors
    below. The engine never recovers them; the host maps them to statuses.

ERROR CATEGORIES:
  1. InvalidArgument - the caller supplied a bad shape or value
  2. NotFound        - the caller referenced an entity absent from the input

USAGE:
  if errors.Is(err, finance.ErrNotFound) {
      // 404
  }

  var iae *finance.InvalidArgumentError
  if errors.As(err, &iae) {
      log.Printf("bad field %s", iae.Field)
  }

SEE ALSO:
  - api/handlers.go: maps these errors to HTTP status codes
*/
package finance

import (
	"errors"
	"fmt"
	"regexp"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidArgument is returned when the caller supplies bad input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a referenced entity is not in the input.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidArgumentError names the offending field. Error() is the message
// alone so that callers see exactly what the engine reported.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e *InvalidArgumentError) Error() string { return e.Message }

func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// InvalidArgument builds an InvalidArgumentError.
func InvalidArgument(field, format string, args ...any) error {
	return &InvalidArgumentError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity  string
	ID      string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// IDENTIFIER SHAPE
// =============================================================================

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateID rejects identifiers that could not have come from the store.
func ValidateID(field, id string) error {
	if !idPattern.MatchString(id) {
		return InvalidArgument(field, "%s: malformed identifier %q", field, id)
	}
	return nil
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
