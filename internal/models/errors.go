package models

import "errors"

// Errors returned by the ingestion entry points. Callers match them with errors.Is;
// returned errors usually wrap one of these with context.
var (
	ErrInvalidOven          = errors.New("invalid coke oven")
	ErrInvalidChamber       = errors.New("invalid chamber")
	ErrInvalidOperationKind = errors.New("invalid operation type: must be LOAD or PUSH")
	ErrInvalidTimeFormat    = errors.New("invalid time format")
	ErrDuplicateRecord      = errors.New("duplicate record")
	ErrNotInitialized       = errors.New("system not initialized")
	ErrLockUnavailable      = errors.New("system lock unavailable")
	ErrStorageFailure       = errors.New("storage failure")
)

// IsValidation reports whether err is caused by bad caller input rather than
// by the store or the system lifecycle.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidOven) ||
		errors.Is(err, ErrInvalidChamber) ||
		errors.Is(err, ErrInvalidOperationKind) ||
		errors.Is(err, ErrInvalidTimeFormat)
}
