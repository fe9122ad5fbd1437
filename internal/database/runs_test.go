package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omriShneor/whatsapp_eventer/internal/database/migrations"
)

func sampleRun(created time.Time) *EvaluationRun {
	return &EvaluationRun{
		Detector:         "NLP_REGEX_BASED",
		Mode:             RunModeCalendar,
		Filter:           "EASY",
		TotalTests:       2,
		PassedTests:      1,
		FailedTests:      1,
		AverageScore:     0.75,
		CalendarReady:    2,
		AverageReadiness: 0.9,
		CreatedAt:        created,
		Results: []EvaluationResult{
			{TestName: "meeting_at_time", Difficulty: "EASY", Passed: true, Score: 1, Readiness: Float64Ptr(1), EventCount: 1, Details: "Expected 'Meeting' matched 'Meeting' (score: 1.00)"},
			{TestName: "dinner_with_location", Difficulty: "EASY", Score: 0.5, Readiness: Float64Ptr(0.8), EventCount: 1},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	db := NewTestDB(t)
	created := time.Date(2024, 1, 10, 7, 30, 0, 0, time.UTC)

	run := sampleRun(created)
	require.NoError(t, db.SaveRun(run))
	require.NotEmpty(t, run.ID)

	got, err := db.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, RunModeCalendar, got.Mode)
	assert.Equal(t, "EASY", got.Filter)
	assert.Equal(t, 2, got.TotalTests)
	assert.InDelta(t, 0.75, got.AverageScore, 1e-9)
	assert.True(t, created.Equal(got.CreatedAt))

	require.Len(t, got.Results, 2)
	assert.Equal(t, "meeting_at_time", got.Results[0].TestName)
	assert.True(t, got.Results[0].Passed)
	require.NotNil(t, got.Results[1].Readiness)
	assert.InDelta(t, 0.8, *got.Results[1].Readiness, 1e-9)
	assert.Equal(t, "", got.Results[1].Details)
}

func TestSaveRun_DetectionResultsHaveNoReadiness(t *testing.T) {
	db := NewTestDB(t)
	run := &EvaluationRun{
		ID:       "fixed-id",
		Detector: "NLP_REGEX_BASED",
		Mode:     RunModeDetection,
		Results:  []EvaluationResult{{TestName: "empty_string_test", Difficulty: "EASY", Passed: true, Score: 1}},
	}
	require.NoError(t, db.SaveRun(run))
	assert.False(t, run.CreatedAt.IsZero())

	got, err := db.GetRun("fixed-id")
	require.NoError(t, err)
	require.Len(t, got.Results, 1)
	assert.Nil(t, got.Results[0].Readiness)

	assert.Error(t, db.SaveRun(&EvaluationRun{ID: "fixed-id", Detector: "x", Mode: RunModeDetection}), "duplicate id")
	assert.Error(t, db.SaveRun(&EvaluationRun{Detector: "x", Mode: "bogus"}), "mode is checked")
}

func TestGetRun_NotFound(t *testing.T) {
	db := NewTestDB(t)
	_, err := db.GetRun("missing")
	require.Error(t, err)
	assert.True(t, IsRunNotFound(err))
}

func TestListRuns(t *testing.T) {
	db := NewTestDB(t)
	base := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)
	for i := range 3 {
		require.NoError(t, db.SaveRun(sampleRun(base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := db.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
	assert.True(t, runs[1].CreatedAt.After(runs[2].CreatedAt))
	assert.Empty(t, runs[0].Results)

	runs, err = db.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestListRuns_Empty(t *testing.T) {
	db := NewTestDB(t)
	runs, err := db.ListRuns(5)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestDeleteRun_CascadesResults(t *testing.T) {
	db := NewTestDB(t)
	run := sampleRun(time.Now())
	require.NoError(t, db.SaveRun(run))

	require.NoError(t, db.DeleteRun(run.ID))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM evaluation_results WHERE run_id = ?`, run.ID).Scan(&count))
	assert.Zero(t, count)

	assert.True(t, IsRunNotFound(db.DeleteRun(run.ID)))
}

func TestMigrationsRecorded(t *testing.T) {
	db := NewTestDB(t)

	rows, err := db.Query(`SELECT version FROM schema_migrations ORDER BY version`)
	require.NoError(t, err)
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		require.NoError(t, rows.Scan(&v))
		versions = append(versions, v)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, migrations.Versions(), versions)
}
