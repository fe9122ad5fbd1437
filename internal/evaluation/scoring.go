package evaluation

import (
	"fmt"
	"strings"

	"github.com/omriShneor/whatsapp_eventer/internal/detector"
)

// Pairwise match weights, in points out of 100.
const (
	titlePoints      = 40
	dateTimePoints   = 30
	locationPoints   = 10
	confidencePoints = 20
	maxMatchPoints   = titlePoints + dateTimePoints + locationPoints + confidencePoints
)

const (
	// PassThreshold is the minimum test score for a pass.
	PassThreshold = 0.7
	// ReadyThreshold is the minimum readiness for a calendar-ready case.
	ReadyThreshold = 0.8
	// invalidPenalty scales the readiness of an invalid document.
	invalidPenalty = 0.5
)

// Result is the detection outcome of one case.
type Result struct {
	Case    Case                     `json:"case"`
	Events  []detector.DetectedEvent `json:"events"`
	Passed  bool                     `json:"passed"`
	Score   float64                  `json:"score"`
	Details string                   `json:"details"`
}

// MatchPoints scores one expected/actual pair out of 100.
func MatchPoints(expected ExpectedEvent, actual detector.DetectedEvent) int {
	points := 0

	actualTitle := strings.ToLower(actual.Title)
	expectedTitle := strings.ToLower(expected.Title)
	if strings.Contains(actualTitle, expectedTitle) || strings.Contains(expectedTitle, actualTitle) {
		points += titlePoints
	}

	if expected.HasDateTime == actual.HasDateTime() {
		points += dateTimePoints
	}

	// An expected location needs one; no expected location always scores.
	if !expected.HasLocation || actual.HasLocation() {
		points += locationPoints
	}

	if actual.Confidence >= expected.MinConfidence {
		points += confidencePoints
	}

	return points
}

// MatchScore is MatchPoints as a fraction.
func MatchScore(expected ExpectedEvent, actual detector.DetectedEvent) float64 {
	return float64(MatchPoints(expected, actual)) / maxMatchPoints
}

// bestMatch returns the index of the highest scoring actual event, first
// wins on ties. The same actual event may be best for several expected ones.
func bestMatch(expected ExpectedEvent, actual []detector.DetectedEvent) (int, int) {
	best, bestPoints := -1, -1
	for i, a := range actual {
		if p := MatchPoints(expected, a); p > bestPoints {
			best, bestPoints = i, p
		}
	}
	return best, bestPoints
}

// Evaluate grades detected events against a case's labels.
func Evaluate(tc Case, actual []detector.DetectedEvent) Result {
	result := Result{Case: tc, Events: actual}
	expectedCount, actualCount := len(tc.Expected), len(actual)

	switch {
	case expectedCount == 0 && actualCount == 0:
		result.Passed = true
		result.Score = 1
		result.Details = "Correctly detected no events"
		return result
	case expectedCount == 0:
		result.Details = "False positives detected: " + joinTitles(actual)
		return result
	case actualCount == 0:
		titles := make([]string, 0, expectedCount)
		for _, e := range tc.Expected {
			titles = append(titles, e.Title)
		}
		result.Details = "No events detected, expected: " + strings.Join(titles, ", ")
		return result
	}

	totalPoints := 0
	details := make([]string, 0, expectedCount+1)
	for _, expected := range tc.Expected {
		i, points := bestMatch(expected, actual)
		totalPoints += points
		details = append(details, fmt.Sprintf("Expected '%s' matched '%s' (score: %.2f)",
			expected.Title, actual[i].Title, float64(points)/maxMatchPoints))
	}

	extra := actualCount - expectedCount
	if extra > 0 {
		details = append(details, fmt.Sprintf("%d extra events detected (false positives)", extra))
	}

	result.Score = float64(totalPoints) / float64(expectedCount*maxMatchPoints)
	// Compared in points so 0.7 exactly passes.
	result.Passed = totalPoints*10 >= expectedCount*maxMatchPoints*7 && extra <= 0
	result.Details = strings.Join(details, "; ")
	return result
}

// Readiness grades a validation outcome: the validator score when valid,
// halved when not. No detected events is trivially ready.
func Readiness(eventCount int, valid bool, score float64) float64 {
	if eventCount == 0 {
		return 1
	}
	if valid {
		return score
	}
	return score * invalidPenalty
}

// CountScore grades how close the detected event count is to the expected
// one. It is diagnostic only and does not feed Readiness.
func CountScore(expected, actual int) float64 {
	switch {
	case expected == 0 && actual == 0:
		return 1
	case expected == 0 || actual == 0:
		return 0
	}
	ratio := float64(actual) / float64(expected)
	switch {
	case ratio > 2:
		return 0.2
	case ratio > 1.5:
		return 0.5
	case ratio >= 0.8:
		return 1
	default:
		return ratio
	}
}

func joinTitles(events []detector.DetectedEvent) string {
	titles := make([]string, 0, len(events))
	for _, e := range events {
		titles = append(titles, e.Title)
	}
	return strings.Join(titles, ", ")
}
