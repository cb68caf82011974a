package cycle

import (
	"fmt"
	"time"
)

// ElapsedMinutes is the whole number of minutes from start to end, floored.
// It is zero when end is not after start.
func ElapsedMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// FormatHHMM renders minutes as HH:MM. Hours are not wrapped at 24,
// so a 28.5 hour cycle reads "28:30".
func FormatHHMM(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
