// Package biztime provides time utilities for subscription lifecycle math.
// All storage and comparisons use UTC; implicit local timezones are prohibited.
package biztime

import (
	"math"
	"time"
)

// Day is the canonical day length used for expiration and grace math.
const Day = 24 * time.Hour

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DaysUntilCeil returns the number of whole days from `from` to `to`,
// rounded up. Negative once `to` is in the past.
func DaysUntilCeil(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}

// FormatTimestamp formats a UTC time using RFC3339 for transport and metadata.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimestamp parses an RFC3339 timestamp into UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
