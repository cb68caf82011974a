package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"coke_oven/internal/models"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// isUniqueViolation recognises a UNIQUE/PRIMARY KEY failure from the driver.
// The message check covers wrapped or non-modernc errors.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// insertError maps a failed INSERT to the error taxonomy.
func insertError(what string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("insert %s: %w", what, models.ErrDuplicateRecord)
	}
	return fmt.Errorf("insert %s: %w: %w", what, models.ErrStorageFailure, err)
}

// queryError wraps a failed read with ErrStorageFailure.
func queryError(what string, err error) error {
	return fmt.Errorf("%s: %w: %w", what, models.ErrStorageFailure, err)
}

func formatStoredTime(t time.Time) string {
	return t.UTC().Format(models.TimeLayout)
}

func parseStoredTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(models.TimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored time %q: %w", s, err)
	}
	return t, nil
}
