package evaluation

import (
	"github.com/omriShneor/whatsapp_eventer/internal/database"
)

// NewDetectionRecord converts a detection summary into a storable run.
// filter names the tier or case the run was limited to, empty for all.
func NewDetectionRecord(s Summary, filter string) *database.EvaluationRun {
	run := &database.EvaluationRun{
		Detector:     s.Detector,
		Mode:         database.RunModeDetection,
		Filter:       filter,
		TotalTests:   s.TotalTests,
		PassedTests:  s.PassedTests,
		FailedTests:  s.FailedTests,
		AverageScore: s.AverageScore,
		Results:      make([]database.EvaluationResult, 0, len(s.Results)),
	}
	for _, res := range s.Results {
		run.Results = append(run.Results, resultRecord(res))
	}
	return run
}

// NewCalendarRecord converts a calendar summary into a storable run.
func NewCalendarRecord(s CalendarSummary, filter string) *database.EvaluationRun {
	run := &database.EvaluationRun{
		Detector:         s.Detector,
		Mode:             database.RunModeCalendar,
		Filter:           filter,
		TotalTests:       s.TotalTests,
		PassedTests:      s.PassedTests,
		FailedTests:      s.FailedTests,
		AverageScore:     s.AverageScore,
		CalendarReady:    s.CalendarReady,
		AverageReadiness: s.AverageReadiness,
		Results:          make([]database.EvaluationResult, 0, len(s.Results)),
	}
	for _, res := range s.Results {
		rec := resultRecord(res.Result)
		readiness := res.Readiness
		rec.Readiness = &readiness
		run.Results = append(run.Results, rec)
	}
	return run
}

func resultRecord(res Result) database.EvaluationResult {
	return database.EvaluationResult{
		TestName:   res.Case.Name,
		Difficulty: string(res.Case.Difficulty),
		Passed:     res.Passed,
		Score:      res.Score,
		EventCount: len(res.Events),
		Details:    res.Details,
	}
}
