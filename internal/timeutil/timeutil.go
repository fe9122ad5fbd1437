package timeutil

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// OffsetLayout is the calendar document timestamp layout. The offset is
// always numeric ("+00:00"), never "Z".
const OffsetLayout = "2006-01-02T15:04:05-07:00"

// DateLayout is the all-day date layout.
const DateLayout = "2006-01-02"

var defaultLocation = time.UTC

// ResolveLocation returns the named location with a UTC fallback. The second
// return value reports whether the fallback was used.
func ResolveLocation(timezone string) (*time.Location, bool) {
	name := strings.TrimSpace(timezone)
	if name == "" {
		return defaultLocation, true
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return defaultLocation, true
	}
	return loc, false
}

// IsKnownZone reports whether timezone resolves without falling back.
func IsKnownZone(timezone string) bool {
	_, fallback := ResolveLocation(timezone)
	return !fallback
}

// FormatOffset formats t with OffsetLayout.
func FormatOffset(t time.Time) string {
	return t.Format(OffsetLayout)
}

// ParseOffset parses a timestamp in exactly OffsetLayout.
func ParseOffset(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("time value is required")
	}
	t, err := time.Parse(OffsetLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse time %q: %w", value, err)
	}
	return t, nil
}

// AtClock returns t's day at hour:minute with zero seconds.
func AtClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}
