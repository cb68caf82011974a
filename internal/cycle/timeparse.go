package cycle

import (
	"fmt"
	"strings"
	"time"

	"coke_oven/internal/models"
)

// Accepted layouts, most specific first. A string is never parsed by a less
// specific layout when a more specific one matches, so "2025-06-18 08:16"
// cannot be read as a bare date.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime converts operator text into an instant. The result carries no
// zone information beyond UTC, which stands for "plant local".
func ParseTime(s string) (time.Time, error) {
	// time.Parse tolerates fractional seconds the layouts do not name.
	if !strings.ContainsAny(s, ".,") {
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD[ HH:MM[:SS]])", models.ErrInvalidTimeFormat, strings.TrimSpace(s))
}

// FormatTime renders an instant in the canonical stored form.
func FormatTime(t time.Time) string {
	return t.UTC().Format(models.TimeLayout)
}
