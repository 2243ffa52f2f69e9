package bloodsugar

import (
	"fmt"
	"time"
)

// StaleThreshold is how far a reading's timestamp may drift from the
// processing time before it's considered stale. The boundary itself is fresh.
const StaleThreshold = 360 * time.Second

// ParseServerTime parses an ISO-8601 dateString such as
// "2024-01-01T12:00:00.000Z" or "2024-01-01T13:00:00.123+01:00".
func ParseServerTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse server timestamp %q: %w", s, err)
	}
	return t, nil
}

// IsStale reports whether readingAt is more than StaleThreshold away from now,
// in either direction.
func IsStale(readingAt, now time.Time) bool {
	d := now.Sub(readingAt)
	if d < 0 {
		d = -d
	}
	return d > StaleThreshold
}

// StalenessSuffix returns "" for a fresh reading, otherwise " [HH:MM]" with
// the reading time rendered in loc on a 24-hour clock. A nil loc means local time.
func StalenessSuffix(readingAt, now time.Time, loc *time.Location) string {
	if !IsStale(readingAt, now) {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return " [" + readingAt.In(loc).Format("15:04") + "]"
}
