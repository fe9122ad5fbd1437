package evaluation

import (
	"fmt"
	"strings"
)

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return part * 100 / total
}

// Report renders a detection summary as text.
func Report(s Summary) string {
	var b strings.Builder
	fmt.Fprintln(&b, "=== EVENT DETECTION TEST RESULTS ===")
	fmt.Fprintf(&b, "Detector: %s\n\n", s.Detector)

	fmt.Fprintln(&b, "OVERALL PERFORMANCE:")
	fmt.Fprintf(&b, "  Total Tests: %d\n", s.TotalTests)
	fmt.Fprintf(&b, "  Passed: %d\n", s.PassedTests)
	fmt.Fprintf(&b, "  Failed: %d\n", s.FailedTests)
	fmt.Fprintf(&b, "  Success Rate: %d%%\n", percent(s.PassedTests, s.TotalTests))
	fmt.Fprintf(&b, "  Average Score: %.2f (pass at %.1f)\n\n", s.AverageScore, PassThreshold)

	fmt.Fprintln(&b, "PERFORMANCE BY DIFFICULTY:")
	for _, d := range Difficulties {
		ds, ok := s.ByDifficulty[d]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %s: %d%% (%d/%d) - Avg: %.2f\n",
			d, percent(ds.PassedTests, ds.TotalTests), ds.PassedTests, ds.TotalTests, ds.AverageScore)
	}

	fmt.Fprintln(&b, "\nRESULTS:")
	for _, res := range s.Results {
		writeResultLine(&b, res)
	}
	fmt.Fprint(&b, "===================================")
	return b.String()
}

func writeResultLine(b *strings.Builder, res Result) {
	status := "FAIL"
	if res.Passed {
		status = "PASS"
	}
	fmt.Fprintf(b, "  [%s] %s (%s) %.2f: %s\n", status, res.Case.Name, res.Case.Difficulty, res.Score, res.Details)
}

// CalendarReport renders a calendar-readiness summary as text.
func CalendarReport(s CalendarSummary) string {
	var b strings.Builder
	fmt.Fprintln(&b, "=== CALENDAR INTEGRATION TEST RESULTS ===")
	fmt.Fprintf(&b, "Detector: %s\n\n", s.Detector)

	fmt.Fprintln(&b, "OVERALL RESULTS:")
	fmt.Fprintf(&b, "  Total Tests: %d\n", s.TotalTests)
	fmt.Fprintf(&b, "  Passed: %d\n", s.PassedTests)
	fmt.Fprintf(&b, "  Failed: %d\n", s.FailedTests)
	fmt.Fprintf(&b, "  Success Rate: %d%%\n", percent(s.PassedTests, s.TotalTests))
	fmt.Fprintf(&b, "  Average Score: %.2f\n\n", s.AverageScore)

	fmt.Fprintln(&b, "JSON GENERATION:")
	fmt.Fprintf(&b, "  Valid JSON: %d/%d\n", s.ValidJSON, s.TotalTests)
	fmt.Fprintf(&b, "  Invalid JSON: %d/%d\n", s.InvalidJSON, s.TotalTests)
	fmt.Fprintf(&b, "  JSON Success Rate: %d%%\n\n", percent(s.ValidJSON, s.TotalTests))

	fmt.Fprintln(&b, "CALENDAR READINESS:")
	fmt.Fprintf(&b, "  Calendar-Ready Tests: %d/%d\n", s.CalendarReady, s.TotalTests)
	fmt.Fprintf(&b, "  Calendar Readiness Rate: %d%%\n", percent(s.CalendarReady, s.TotalTests))
	fmt.Fprintf(&b, "  Average Readiness: %.2f\n", s.AverageReadiness)
	fmt.Fprintf(&b, "  Threshold: %.1f\n", ReadyThreshold)

	if len(s.ErrorBreakdown) > 0 {
		fmt.Fprintln(&b, "\nERROR BREAKDOWN:")
		for _, category := range SortedBreakdown(s.ErrorBreakdown) {
			fmt.Fprintf(&b, "  %s: %d occurrences\n", category, s.ErrorBreakdown[category])
		}
	}
	fmt.Fprint(&b, "============================================")
	return b.String()
}

// CaseList renders the corpus grouped by difficulty.
func CaseList(c *Corpus) string {
	var b strings.Builder
	fmt.Fprintln(&b, "=== AVAILABLE TEST CASES ===")
	for _, d := range Difficulties {
		cases := c.ByDifficulty(d)
		if len(cases) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s TESTS:\n", d)
		for _, tc := range cases {
			fmt.Fprintf(&b, "  • %s: %s\n", tc.Name, tc.Description)
			fmt.Fprintf(&b, "    Input: %q\n", strings.ReplaceAll(tc.Conversation, "\n", " | "))
			fmt.Fprintf(&b, "    Expected: %d events\n", len(tc.Expected))
		}
	}
	fmt.Fprint(&b, "=============================")
	return b.String()
}
