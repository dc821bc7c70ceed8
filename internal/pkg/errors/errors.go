package errors

import "errors"

// Common application errors shared across services and handlers.
var (
	// ErrNotFound is returned when a record or resource does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for authentication failures (missing or invalid token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the acting user lacks rights for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for malformed or incomplete input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned for state conflicts (completing a finished session,
	// answering the same question twice).
	ErrConflict = errors.New("resource state conflict")
)
