package evaluation

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/omriShneor/whatsapp_eventer/internal/calendar"
	"github.com/omriShneor/whatsapp_eventer/internal/detector"
	"github.com/omriShneor/whatsapp_eventer/internal/validator"
)

// DifficultyScore aggregates the results of one tier.
type DifficultyScore struct {
	Difficulty   Difficulty `json:"difficulty"`
	TotalTests   int        `json:"total_tests"`
	PassedTests  int        `json:"passed_tests"`
	AverageScore float64    `json:"average_score"`
}

// Summary aggregates detection results.
type Summary struct {
	Detector     string                         `json:"detector"`
	Results      []Result                       `json:"results"`
	TotalTests   int                            `json:"total_tests"`
	PassedTests  int                            `json:"passed_tests"`
	FailedTests  int                            `json:"failed_tests"`
	AverageScore float64                        `json:"average_score"`
	ByDifficulty map[Difficulty]DifficultyScore `json:"by_difficulty"`
}

// CalendarResult is the calendar-readiness outcome of one case.
type CalendarResult struct {
	Result
	Document   string           `json:"document"`
	Validation validator.Result `json:"validation"`
	Readiness  float64          `json:"readiness"`
	Ready      bool             `json:"ready"`
	CountScore float64          `json:"count_score"`
}

// CalendarSummary aggregates calendar-readiness results.
type CalendarSummary struct {
	Detector         string                         `json:"detector"`
	Results          []CalendarResult               `json:"results"`
	TotalTests       int                            `json:"total_tests"`
	PassedTests      int                            `json:"passed_tests"`
	FailedTests      int                            `json:"failed_tests"`
	AverageScore     float64                        `json:"average_score"`
	ByDifficulty     map[Difficulty]DifficultyScore `json:"by_difficulty"`
	ValidJSON        int                            `json:"valid_json"`
	InvalidJSON      int                            `json:"invalid_json"`
	CalendarReady    int                            `json:"calendar_ready"`
	AverageReadiness float64                        `json:"average_readiness"`
	ErrorBreakdown   map[string]int                 `json:"error_breakdown"`
}

// RunnerOptions configures a Runner. A nil Mapper or Validator gets the
// package defaults; a nil Logger discards output.
type RunnerOptions struct {
	Mapper    *calendar.Mapper
	Validator *validator.Validator
	Logger    *slog.Logger
}

// Runner runs corpus cases through a detector. Cases are independent and
// run concurrently; results keep corpus order.
type Runner struct {
	detector  detector.EventDetector
	corpus    *Corpus
	mapper    *calendar.Mapper
	validator *validator.Validator
	logger    *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(det detector.EventDetector, corpus *Corpus, opts RunnerOptions) *Runner {
	r := &Runner{
		detector:  det,
		corpus:    corpus,
		mapper:    opts.Mapper,
		validator: opts.Validator,
		logger:    opts.Logger,
	}
	if r.mapper == nil {
		r.mapper = calendar.NewMapper(calendar.Options{})
	}
	if r.validator == nil {
		r.validator = validator.New(validator.Options{Logger: opts.Logger})
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Corpus returns the cases the runner draws from.
func (r *Runner) Corpus() *Corpus {
	return r.corpus
}

// DetectorName returns the name of the detector under test.
func (r *Runner) DetectorName() string {
	return r.detector.Name()
}

// RunAll evaluates every case.
func (r *Runner) RunAll() Summary {
	return r.RunCases(r.corpus.All())
}

// RunCases evaluates an arbitrary selection of cases.
func (r *Runner) RunCases(cases []Case) Summary {
	return r.summarize(r.runCases(cases))
}

// RunByDifficulty evaluates one tier.
func (r *Runner) RunByDifficulty(d Difficulty) Summary {
	return r.summarize(r.runCases(r.corpus.ByDifficulty(d)))
}

// RunByName evaluates a single case.
func (r *Runner) RunByName(name string) (Result, bool) {
	tc, ok := r.corpus.ByName(name)
	if !ok {
		return Result{}, false
	}
	return r.runCase(tc), true
}

// RunCalendarAll runs every case through detection, mapping and validation.
func (r *Runner) RunCalendarAll() CalendarSummary {
	return r.RunCalendarCases(r.corpus.All())
}

// RunCalendarCases is RunCalendarAll for an arbitrary selection of cases.
func (r *Runner) RunCalendarCases(cases []Case) CalendarSummary {
	return r.summarizeCalendar(r.runCalendarCases(cases))
}

// RunCalendarByDifficulty is RunCalendarAll for one tier.
func (r *Runner) RunCalendarByDifficulty(d Difficulty) CalendarSummary {
	return r.summarizeCalendar(r.runCalendarCases(r.corpus.ByDifficulty(d)))
}

// RunCalendarByName is RunCalendarAll for one case.
func (r *Runner) RunCalendarByName(name string) (CalendarResult, bool) {
	tc, ok := r.corpus.ByName(name)
	if !ok {
		return CalendarResult{}, false
	}
	return r.runCalendarCase(tc), true
}

func (r *Runner) runCase(tc Case) Result {
	events := r.detector.DetectEvents(tc.Conversation)
	result := Evaluate(tc, events)
	r.logger.Debug("evaluated case",
		"name", tc.Name,
		"difficulty", tc.Difficulty,
		"events", len(events),
		"passed", result.Passed,
		"score", result.Score,
	)
	return result
}

func (r *Runner) runCalendarCase(tc Case) CalendarResult {
	result := CalendarResult{Result: r.runCase(tc)}

	doc, err := r.mapper.ConvertToJSON(result.Events)
	if err != nil {
		result.Validation = validator.Result{
			Errors:   []string{"Invalid JSON structure: " + err.Error()},
			Warnings: []string{},
		}
	} else {
		result.Document = doc
		result.Validation = r.validator.Validate(doc)
	}

	result.Readiness = Readiness(len(result.Events), result.Validation.IsValid, result.Validation.Score)
	result.Ready = result.Readiness >= ReadyThreshold
	result.CountScore = CountScore(len(tc.Expected), len(result.Events))
	return result
}

func (r *Runner) runCases(cases []Case) []Result {
	results := make([]Result, len(cases))
	var wg sync.WaitGroup
	for i, tc := range cases {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.runCase(tc)
		}()
	}
	wg.Wait()
	return results
}

func (r *Runner) runCalendarCases(cases []Case) []CalendarResult {
	results := make([]CalendarResult, len(cases))
	var wg sync.WaitGroup
	for i, tc := range cases {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.runCalendarCase(tc)
		}()
	}
	wg.Wait()
	return results
}

func (r *Runner) summarize(results []Result) Summary {
	s := Summary{
		Detector:     r.detector.Name(),
		Results:      results,
		TotalTests:   len(results),
		ByDifficulty: make(map[Difficulty]DifficultyScore),
	}

	var total float64
	sums := make(map[Difficulty]float64)
	for _, res := range results {
		total += res.Score
		ds := s.ByDifficulty[res.Case.Difficulty]
		ds.Difficulty = res.Case.Difficulty
		ds.TotalTests++
		if res.Passed {
			s.PassedTests++
			ds.PassedTests++
		}
		sums[res.Case.Difficulty] += res.Score
		s.ByDifficulty[res.Case.Difficulty] = ds
	}
	for d, ds := range s.ByDifficulty {
		ds.AverageScore = sums[d] / float64(ds.TotalTests)
		s.ByDifficulty[d] = ds
	}

	s.FailedTests = s.TotalTests - s.PassedTests
	if len(results) > 0 {
		s.AverageScore = total / float64(len(results))
	}
	return s
}

func (r *Runner) summarizeCalendar(results []CalendarResult) CalendarSummary {
	detection := make([]Result, len(results))
	for i, res := range results {
		detection[i] = res.Result
	}
	base := r.summarize(detection)

	s := CalendarSummary{
		Detector:       base.Detector,
		Results:        results,
		TotalTests:     base.TotalTests,
		PassedTests:    base.PassedTests,
		FailedTests:    base.FailedTests,
		AverageScore:   base.AverageScore,
		ByDifficulty:   base.ByDifficulty,
		ErrorBreakdown: make(map[string]int),
	}

	var readiness float64
	for _, res := range results {
		readiness += res.Readiness
		if res.Ready {
			s.CalendarReady++
		}
		if res.Validation.IsValid {
			s.ValidJSON++
			continue
		}
		s.InvalidJSON++
		for _, e := range res.Validation.Errors {
			s.ErrorBreakdown[CategorizeError(e)]++
		}
	}
	if len(results) > 0 {
		s.AverageReadiness = readiness / float64(len(results))
	}
	return s
}

// Error categories used by the calendar error breakdown.
const (
	CategoryDateTime = "DateTime Format"
	CategoryTimeZone = "TimeZone"
	CategorySummary  = "Title/Summary"
	CategoryDuration = "Duration"
	CategoryJSON     = "JSON Structure"
	CategoryMissing  = "Missing Fields"
	CategoryOther    = "Other"
)

// CategorizeError buckets a validator error message. Checks run in order,
// so "Missing 'summary'" counts as a summary error.
func CategorizeError(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "datetime"):
		return CategoryDateTime
	case strings.Contains(lower, "timezone"):
		return CategoryTimeZone
	case strings.Contains(lower, "summary"):
		return CategorySummary
	case strings.Contains(lower, "duration"):
		return CategoryDuration
	case strings.Contains(lower, "json"):
		return CategoryJSON
	case strings.Contains(lower, "missing"):
		return CategoryMissing
	default:
		return CategoryOther
	}
}

// SortedBreakdown returns categories by descending count, then name.
func SortedBreakdown(breakdown map[string]int) []string {
	keys := make([]string, 0, len(breakdown))
	for k := range breakdown {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if breakdown[keys[i]] != breakdown[keys[j]] {
			return breakdown[keys[i]] > breakdown[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
