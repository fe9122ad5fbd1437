package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omriShneor/whatsapp_eventer/internal/database"
)

func TestNewDetectionRecord_RoundTrip(t *testing.T) {
	det := stubDetector{"m": {timed("Meeting", 0.8)}}
	s := NewRunner(det, stubCorpus(t), RunnerOptions{}).RunAll()

	run := NewDetectionRecord(s, "")
	assert.Equal(t, database.RunModeDetection, run.Mode)
	require.Len(t, run.Results, 3)
	assert.Equal(t, 1, run.Results[0].EventCount)
	assert.Nil(t, run.Results[0].Readiness)

	db := database.NewTestDB(t)
	require.NoError(t, db.SaveRun(run))

	got, err := db.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "STUB", got.Detector)
	assert.Equal(t, 2, got.PassedTests)
	require.Len(t, got.Results, 3)
	assert.Equal(t, "missed_call", got.Results[2].TestName)
	assert.Equal(t, "HARD", got.Results[2].Difficulty)
	assert.Equal(t, "No events detected, expected: Call", got.Results[2].Details)
}

func TestNewCalendarRecord(t *testing.T) {
	det := stubDetector{"m": {timed("Meeting", 0.8)}}
	s := NewRunner(det, stubCorpus(t), RunnerOptions{}).RunCalendarByDifficulty(Easy)

	run := NewCalendarRecord(s, "EASY")
	assert.Equal(t, database.RunModeCalendar, run.Mode)
	assert.Equal(t, "EASY", run.Filter)
	assert.Equal(t, 2, run.CalendarReady)
	require.Len(t, run.Results, 2)
	require.NotNil(t, run.Results[0].Readiness)
	assert.InDelta(t, 1.0, *run.Results[0].Readiness, 1e-9)
}
