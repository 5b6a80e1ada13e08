package server

import (
	"fmt"
	"time"
)

// parseClockOnDate parses an "HH:MM" wall-clock string against the given
// reference date, producing the time.Time the core packages require.
// This boundary is deliberately the only place "HH:MM" strings are
// parsed — conflict, resolver, route and realtime all take time.Time.
func parseClockOnDate(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing clock value %q: %w", hhmm, err)
	}
	year, month, day := date.Date()
	return time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// formatClock renders a time.Time back to "HH:MM" for API responses.
func formatClock(t time.Time) string {
	return t.Format("15:04")
}
