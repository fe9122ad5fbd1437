package evaluation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omriShneor/whatsapp_eventer/internal/calendar"
	"github.com/omriShneor/whatsapp_eventer/internal/detector"
	"github.com/omriShneor/whatsapp_eventer/internal/validator"
)

// stubDetector answers from a fixed table keyed by conversation.
type stubDetector map[string][]detector.DetectedEvent

func (s stubDetector) DetectEvents(conversation string) []detector.DetectedEvent {
	return s[conversation]
}

func (s stubDetector) Name() string { return "STUB" }

func (s stubDetector) ConfidenceThreshold() float64 { return 0.5 }

func stubCorpus(t *testing.T) *Corpus {
	t.Helper()
	c, err := NewCorpus([]Case{
		{Name: "meeting", Difficulty: Easy, Conversation: "m", Expected: []ExpectedEvent{{Title: "Meeting", HasDateTime: true, MinConfidence: 0.8}}},
		{Name: "quiet", Difficulty: Easy, Conversation: "q"},
		{Name: "missed_call", Difficulty: Hard, Conversation: "c", Expected: []ExpectedEvent{{Title: "Call", HasDateTime: true}}},
	})
	require.NoError(t, err)
	return c
}

func fixedClock(t *testing.T) (func() time.Time, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	now := time.Date(2024, 1, 10, 9, 30, 0, 0, loc)
	return func() time.Time { return now }, loc
}

func newCorpusRunner(t *testing.T) *Runner {
	t.Helper()
	now, loc := fixedClock(t)
	det := detector.New(detector.Options{Now: now, Location: loc})
	mapper := calendar.NewMapper(calendar.Options{Now: now, Location: loc})
	return NewRunner(det, MustLoadCorpus(), RunnerOptions{Mapper: mapper})
}

func TestRunner_Summary(t *testing.T) {
	det := stubDetector{"m": {timed("Meeting", 0.8)}}
	r := NewRunner(det, stubCorpus(t), RunnerOptions{})

	s := r.RunAll()
	assert.Equal(t, "STUB", s.Detector)
	assert.Equal(t, 3, s.TotalTests)
	assert.Equal(t, 2, s.PassedTests)
	assert.Equal(t, 1, s.FailedTests)
	assert.InDelta(t, 2.0/3, s.AverageScore, 1e-9)

	require.Len(t, s.Results, 3)
	assert.Equal(t, "meeting", s.Results[0].Case.Name)
	assert.Equal(t, "quiet", s.Results[1].Case.Name)
	assert.Equal(t, "missed_call", s.Results[2].Case.Name)

	assert.Equal(t, DifficultyScore{Difficulty: Easy, TotalTests: 2, PassedTests: 2, AverageScore: 1}, s.ByDifficulty[Easy])
	assert.Equal(t, DifficultyScore{Difficulty: Hard, TotalTests: 1}, s.ByDifficulty[Hard])
	assert.NotContains(t, s.ByDifficulty, Medium)
}

func TestRunner_ByDifficultyAndName(t *testing.T) {
	r := NewRunner(stubDetector{}, stubCorpus(t), RunnerOptions{})

	s := r.RunByDifficulty(Hard)
	assert.Equal(t, 1, s.TotalTests)
	assert.Equal(t, 0, s.PassedTests)

	empty := r.RunByDifficulty(Extreme)
	assert.Equal(t, 0, empty.TotalTests)
	assert.Zero(t, empty.AverageScore)

	res, ok := r.RunByName("quiet")
	require.True(t, ok)
	assert.True(t, res.Passed)

	_, ok = r.RunByName("unknown")
	assert.False(t, ok)
}

func TestRunner_CorpusCases(t *testing.T) {
	r := newCorpusRunner(t)
	assert.Equal(t, detector.DetectorName, r.DetectorName())
	assert.Equal(t, 46, r.Corpus().Len())

	tests := []struct {
		name       string
		wantPassed bool
		wantScore  float64
	}{
		{name: "meeting_at_time", wantPassed: true, wantScore: 1},
		{name: "explicit_time_activity", wantPassed: true, wantScore: 1},
		{name: "empty_string_test", wantPassed: true, wantScore: 1},
		{name: "hebrew_system_message", wantPassed: true, wantScore: 1},
		{name: "contextual_reference", wantPassed: false, wantScore: 0},
		{name: "dinner_with_location", wantPassed: false, wantScore: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := r.RunByName(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.wantPassed, res.Passed, res.Details)
			assert.InDelta(t, tt.wantScore, res.Score, 1e-9)
		})
	}
}

func TestRunner_RunAllCoversCorpus(t *testing.T) {
	r := newCorpusRunner(t)
	s := r.RunAll()
	assert.Equal(t, 46, s.TotalTests)
	assert.Equal(t, s.TotalTests, s.PassedTests+s.FailedTests)

	byTier := 0
	for _, ds := range s.ByDifficulty {
		byTier += ds.TotalTests
	}
	assert.Equal(t, 46, byTier)
	for i, tc := range r.Corpus().All() {
		assert.Equal(t, tc.Name, s.Results[i].Case.Name)
	}
}

func TestRunner_CalendarAllValid(t *testing.T) {
	r := newCorpusRunner(t)
	s := r.RunCalendarAll()

	assert.Equal(t, s.TotalTests, s.ValidJSON)
	assert.Zero(t, s.InvalidJSON)
	assert.Empty(t, s.ErrorBreakdown)
	for _, res := range s.Results {
		assert.True(t, res.Validation.IsValid, "%s: %v", res.Case.Name, res.Validation.Errors)
		assert.GreaterOrEqual(t, res.Validation.Score, 0.8, res.Case.Name)
	}
}

func TestRunner_CalendarCase(t *testing.T) {
	r := newCorpusRunner(t)

	res, ok := r.RunCalendarByName("meeting_at_time")
	require.True(t, ok)
	assert.True(t, res.Passed)
	assert.True(t, res.Validation.IsValid, res.Validation.Errors)
	assert.InDelta(t, 1.0, res.Readiness, 1e-9)
	assert.InDelta(t, 1.0, res.CountScore, 1e-9)
	assert.True(t, res.Ready)
	assert.Contains(t, res.Document, `"summary": "Meeting"`)
	assert.Contains(t, res.Document, `"dateTime": "2024-01-10T15:00:00+02:00"`)

	res, ok = r.RunCalendarByName("empty_string_test")
	require.True(t, ok)
	assert.Contains(t, res.Document, calendar.NoEventsMessage)
	assert.Equal(t, []string{"No events to validate"}, res.Validation.Warnings)
	assert.True(t, res.Ready)

	_, ok = r.RunCalendarByName("unknown")
	assert.False(t, ok)
}

func TestRunner_CalendarSummary(t *testing.T) {
	now, loc := fixedClock(t)
	det := stubDetector{"m": {timed("Meeting", 0.8)}}
	r := NewRunner(det, stubCorpus(t), RunnerOptions{
		Mapper:    calendar.NewMapper(calendar.Options{Now: now, Location: loc}),
		Validator: validator.New(validator.Options{}),
	})

	s := r.RunCalendarAll()
	assert.Equal(t, 3, s.TotalTests)
	assert.Equal(t, 3, s.ValidJSON)
	assert.Equal(t, 0, s.InvalidJSON)
	assert.Equal(t, 3, s.CalendarReady)
	assert.InDelta(t, 1.0, s.AverageReadiness, 1e-9)
	assert.Empty(t, s.ErrorBreakdown)

	hard := r.RunCalendarByDifficulty(Hard)
	assert.Equal(t, 1, hard.TotalTests)
	assert.Equal(t, 0, hard.PassedTests)
}

func TestSummarizeCalendar_ErrorBreakdown(t *testing.T) {
	r := NewRunner(stubDetector{}, stubCorpus(t), RunnerOptions{})
	events := []detector.DetectedEvent{timed("Meeting", 0.8)}

	invalid := CalendarResult{
		Result: Result{Case: Case{Name: "broken", Difficulty: Hard}, Events: events},
		Validation: validator.Result{Errors: []string{
			"Event 0: Invalid dateTime format: 'x'",
			"Event 1: Invalid dateTime format: 'y'",
			"Event 0: End time must be after start time",
		}, Score: 0.6},
	}
	invalid.Readiness = Readiness(1, false, 0.6)
	valid := CalendarResult{
		Result:     Result{Case: Case{Name: "fine", Difficulty: Easy}, Events: events, Passed: true, Score: 1},
		Validation: validator.Result{IsValid: true, Score: 1},
		Readiness:  1,
		Ready:      true,
	}

	s := r.summarizeCalendar([]CalendarResult{invalid, valid})
	assert.Equal(t, 1, s.ValidJSON)
	assert.Equal(t, 1, s.InvalidJSON)
	assert.Equal(t, 1, s.CalendarReady)
	assert.InDelta(t, 0.65, s.AverageReadiness, 1e-9)
	assert.Equal(t, map[string]int{CategoryDateTime: 2, CategoryOther: 1}, s.ErrorBreakdown)
	assert.Equal(t, []string{CategoryDateTime, CategoryOther}, SortedBreakdown(s.ErrorBreakdown))
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{message: "Event 0: Invalid start dateTime format", want: CategoryDateTime},
		{message: "Event 0: Missing timeZone for start", want: CategoryTimeZone},
		{message: "Event 0: Missing required 'summary' field", want: CategorySummary},
		{message: "Event 0: Invalid event duration", want: CategoryDuration},
		{message: "Invalid JSON structure: unexpected end", want: CategoryJSON},
		{message: "Event 0: Missing required 'start' field", want: CategoryMissing},
		{message: "End time must be after start time", want: CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeError(tt.message))
		})
	}
}

func TestSortedBreakdown_TiesByName(t *testing.T) {
	got := SortedBreakdown(map[string]int{"b": 1, "a": 1, "c": 3})
	assert.Equal(t, []string{"c", "a", "b"}, got)
}
