package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocation(t *testing.T) {
	tests := []struct {
		name         string
		timezone     string
		wantName     string
		wantFallback bool
	}{
		{name: "empty falls back", timezone: "", wantName: "UTC", wantFallback: true},
		{name: "blank falls back", timezone: "   ", wantName: "UTC", wantFallback: true},
		{name: "unknown falls back", timezone: "Mars/Olympus_Mons", wantName: "UTC", wantFallback: true},
		{name: "known zone", timezone: "Asia/Jerusalem", wantName: "Asia/Jerusalem", wantFallback: false},
		{name: "utc", timezone: "UTC", wantName: "UTC", wantFallback: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, fallback := ResolveLocation(tt.timezone)
			require.NotNil(t, loc)
			assert.Equal(t, tt.wantName, loc.String())
			assert.Equal(t, tt.wantFallback, fallback)
		})
	}
}

func TestFormatOffset_UsesNumericOffset(t *testing.T) {
	utc := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01T10:00:00+00:00", FormatOffset(utc))

	loc, _ := ResolveLocation("Asia/Jerusalem")
	local := time.Date(2024, 1, 1, 10, 0, 0, 0, loc)
	assert.Equal(t, "2024-01-01T10:00:00+02:00", FormatOffset(local))
}

func TestParseOffset(t *testing.T) {
	parsed, err := ParseOffset("2024-01-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, parsed.UTC().Hour())

	_, err = ParseOffset("2024-01-01T10:00:00Z")
	assert.Error(t, err)

	_, err = ParseOffset("2024-13-01T10:00:00+00:00")
	assert.Error(t, err)

	_, err = ParseOffset("")
	assert.Error(t, err)
}

func TestAtClock(t *testing.T) {
	base := time.Date(2024, 1, 10, 9, 30, 45, 123, time.UTC)
	got := AtClock(base, 15, 5)
	assert.Equal(t, time.Date(2024, 1, 10, 15, 5, 0, 0, time.UTC), got)
}
