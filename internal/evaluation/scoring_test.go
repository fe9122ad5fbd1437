package evaluation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/omriShneor/whatsapp_eventer/internal/detector"
)

func timed(title string, confidence float64) detector.DetectedEvent {
	at := time.Date(2024, 1, 11, 15, 0, 0, 0, time.UTC)
	return detector.DetectedEvent{Title: title, Description: title, DateTime: &at, Confidence: confidence}
}

func untimed(title string, confidence float64) detector.DetectedEvent {
	return detector.DetectedEvent{Title: title, Description: title, Confidence: confidence}
}

func TestMatchPoints(t *testing.T) {
	meeting := ExpectedEvent{Title: "Meeting", HasDateTime: true, MinConfidence: 0.8}

	tests := []struct {
		name     string
		expected ExpectedEvent
		actual   detector.DetectedEvent
		want     int
	}{
		{name: "exact", expected: meeting, actual: timed("Meeting", 0.8), want: 100},
		{name: "case insensitive", expected: meeting, actual: timed("MEETING", 0.9), want: 100},
		{name: "actual contains expected", expected: meeting, actual: timed("Team meeting", 0.8), want: 100},
		{name: "expected contains actual", expected: ExpectedEvent{Title: "Team Meeting", HasDateTime: true}, actual: timed("meeting", 0.8), want: 100},
		{name: "title mismatch", expected: meeting, actual: timed("Dinner", 0.8), want: 60},
		{name: "missing date time", expected: meeting, actual: untimed("Meeting", 0.8), want: 70},
		{name: "low confidence", expected: meeting, actual: timed("Meeting", 0.6), want: 80},
		{name: "expected location missing", expected: ExpectedEvent{Title: "Meal", HasDateTime: true, HasLocation: true, MinConfidence: 0.7}, actual: timed("Meal", 0.8), want: 90},
		{name: "nothing matches", expected: ExpectedEvent{Title: "Travel", HasLocation: true, MinConfidence: 0.9}, actual: timed("Call", 0.6), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPoints(tt.expected, tt.actual))
			assert.InDelta(t, float64(tt.want)/100, MatchScore(tt.expected, tt.actual), 1e-9)
		})
	}
}

func TestEvaluate(t *testing.T) {
	meeting := ExpectedEvent{Title: "Meeting", HasDateTime: true, MinConfidence: 0.8}

	tests := []struct {
		name        string
		expected    []ExpectedEvent
		actual      []detector.DetectedEvent
		wantPassed  bool
		wantScore   float64
		wantDetails string
	}{
		{
			name:        "nothing expected nothing found",
			wantPassed:  true,
			wantScore:   1,
			wantDetails: "Correctly detected no events",
		},
		{
			name:        "false positive",
			actual:      []detector.DetectedEvent{timed("Event on next week", 0.7), timed("Call", 0.8)},
			wantDetails: "False positives detected: Event on next week, Call",
		},
		{
			name:        "missed",
			expected:    []ExpectedEvent{meeting, {Title: "Meal"}},
			wantDetails: "No events detected, expected: Meeting, Meal",
		},
		{
			name:        "perfect",
			expected:    []ExpectedEvent{meeting},
			actual:      []detector.DetectedEvent{timed("Meeting", 0.8)},
			wantPassed:  true,
			wantScore:   1,
			wantDetails: "Expected 'Meeting' matched 'Meeting' (score: 1.00)",
		},
		{
			name:        "exactly at threshold",
			expected:    []ExpectedEvent{meeting},
			actual:      []detector.DetectedEvent{untimed("Meeting", 0.9)},
			wantPassed:  true,
			wantScore:   0.7,
			wantDetails: "Expected 'Meeting' matched 'Meeting' (score: 0.70)",
		},
		{
			name:        "below threshold",
			expected:    []ExpectedEvent{meeting},
			actual:      []detector.DetectedEvent{timed("Dinner", 0.9)},
			wantScore:   0.6,
			wantDetails: "Expected 'Meeting' matched 'Dinner' (score: 0.60)",
		},
		{
			name:        "one actual satisfies several expected",
			expected:    []ExpectedEvent{meeting, meeting},
			actual:      []detector.DetectedEvent{timed("Meeting", 0.8)},
			wantPassed:  true,
			wantScore:   1,
			wantDetails: "Expected 'Meeting' matched 'Meeting' (score: 1.00); Expected 'Meeting' matched 'Meeting' (score: 1.00)",
		},
		{
			name:        "extra events fail a perfect score",
			expected:    []ExpectedEvent{meeting},
			actual:      []detector.DetectedEvent{timed("Meeting", 0.8), timed("Meeting", 0.8)},
			wantScore:   1,
			wantDetails: "Expected 'Meeting' matched 'Meeting' (score: 1.00); 1 extra events detected (false positives)",
		},
		{
			name:        "best match wins, first on ties",
			expected:    []ExpectedEvent{meeting},
			actual:      []detector.DetectedEvent{timed("Dinner", 0.8), untimed("Meeting", 0.9), timed("Meeting", 0.8)},
			wantScore:   1,
			wantDetails: "Expected 'Meeting' matched 'Meeting' (score: 1.00); 2 extra events detected (false positives)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(Case{Name: tt.name, Expected: tt.expected}, tt.actual)
			assert.Equal(t, tt.wantPassed, res.Passed)
			assert.InDelta(t, tt.wantScore, res.Score, 1e-9)
			assert.Equal(t, tt.wantDetails, res.Details)
			assert.Equal(t, tt.name, res.Case.Name)
		})
	}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name  string
		count int
		valid bool
		score float64
		want  float64
	}{
		{name: "no events", count: 0, valid: false, score: 0, want: 1},
		{name: "valid", count: 2, valid: true, score: 0.9, want: 0.9},
		{name: "invalid halves score", count: 1, valid: false, score: 0.8, want: 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Readiness(tt.count, tt.valid, tt.score), 1e-9)
		})
	}
}

func TestCountScore(t *testing.T) {
	tests := []struct {
		name     string
		expected int
		actual   int
		want     float64
	}{
		{name: "both empty", expected: 0, actual: 0, want: 1},
		{name: "false positives", expected: 0, actual: 2, want: 0},
		{name: "missed", expected: 3, actual: 0, want: 0},
		{name: "exact", expected: 2, actual: 2, want: 1},
		{name: "close enough", expected: 5, actual: 4, want: 1},
		{name: "partial", expected: 4, actual: 1, want: 0.25},
		{name: "some extra", expected: 2, actual: 4, want: 0.5},
		{name: "too many", expected: 1, actual: 3, want: 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CountScore(tt.expected, tt.actual), 1e-9)
		})
	}
}
