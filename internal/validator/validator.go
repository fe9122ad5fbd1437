// Package validator checks calendar documents against the calendar
// service insert schema and grades them.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/omriShneor/whatsapp_eventer/internal/timeutil"
)

const (
	minTitleLength       = 1
	maxTitleLength       = 1024
	maxDescriptionLength = 8192
	minEventDuration     = time.Minute
	maxEventDuration     = 30 * 24 * time.Hour
)

// Per-event score weights, in points out of 100.
const (
	titlePoints    = 30
	dateTimePoints = 30
	timeZonePoints = 20
	durationPoints = 20
	maxPoints      = titlePoints + dateTimePoints + timeZonePoints + durationPoints
)

var errNotObject = errors.New("top level must be a JSON object")

var (
	timeZonePattern = regexp.MustCompile(`^[A-Za-z_]+/[A-Za-z_/]+$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{2}:\d{2}$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Result is the outcome of validating a whole document.
type Result struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Score    float64  `json:"score"`
}

// EventResult is the outcome of validating one event.
type EventResult struct {
	IsValid          bool     `json:"isValid"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
	HasValidTitle    bool     `json:"hasValidTitle"`
	HasValidDateTime bool     `json:"hasValidDateTime"`
	HasValidTimeZone bool     `json:"hasValidTimeZone"`
	HasValidDuration bool     `json:"hasValidDuration"`
}

// Score is the weighted sum of the sub-checks.
func (r EventResult) Score() float64 {
	return float64(r.points()) / maxPoints
}

func (r EventResult) points() int {
	points := 0
	if r.HasValidTitle {
		points += titlePoints
	}
	if r.HasValidDateTime {
		points += dateTimePoints
	}
	if r.HasValidTimeZone {
		points += timeZonePoints
	}
	if r.HasValidDuration {
		points += durationPoints
	}
	return points
}

type rawEventTime struct {
	DateTime *string `json:"dateTime"`
	Date     *string `json:"date"`
	TimeZone *string `json:"timeZone"`
}

type rawEvent struct {
	Summary     *string         `json:"summary"`
	Description *string         `json:"description"`
	Start       *rawEventTime   `json:"start"`
	End         *rawEventTime   `json:"end"`
	Location    *string         `json:"location"`
	Confidence  json.RawMessage `json:"confidence"`
}

type rawDocument struct {
	Message     *string     `json:"message"`
	Events      *[]rawEvent `json:"events"`
	TotalEvents *int        `json:"total_events"`
	GeneratedAt *string     `json:"generated_at"`
}

// Options configures a Validator.
type Options struct {
	Logger *slog.Logger
}

// Validator grades calendar documents. The zero value is not usable; use New.
type Validator struct {
	logger *slog.Logger
}

// New creates a Validator. A nil logger discards output.
func New(opts Options) *Validator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Validator{logger: logger}
}

var defaultValidator = New(Options{})

// Validate checks a serialized document with a discarding logger.
func Validate(doc string) Result {
	return defaultValidator.Validate(doc)
}

// ValidateEvent checks one serialized event with a discarding logger.
func ValidateEvent(event []byte) EventResult {
	return defaultValidator.ValidateEvent(event)
}

// Validate checks a serialized document. It never fails: malformed input
// becomes an invalid result with a zero score.
func (v *Validator) Validate(doc string) Result {
	var raw rawDocument
	if !strings.HasPrefix(strings.TrimSpace(doc), "{") {
		return parseFailure(errNotObject)
	}
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		v.logger.Debug("calendar document does not parse", "error", err)
		return parseFailure(err)
	}

	errs := []string{}
	warnings := []string{}

	if raw.Events == nil {
		if raw.Message != nil {
			return Result{IsValid: true, Errors: errs, Warnings: []string{"No events to validate"}, Score: 1}
		}
		errs = append(errs, "Missing 'events' array in JSON")
	}

	var events []rawEvent
	if raw.Events != nil {
		events = *raw.Events
		if len(events) == 0 {
			return Result{IsValid: true, Errors: errs, Warnings: []string{"Events array is empty"}, Score: 1}
		}
	}

	totalPoints := 0
	for i, event := range events {
		result := v.validateEvent(event)
		prefix := fmt.Sprintf("Event %d: ", i)
		for _, e := range result.Errors {
			errs = append(errs, prefix+e)
		}
		for _, w := range result.Warnings {
			warnings = append(warnings, prefix+w)
		}
		totalPoints += result.points()
	}

	if raw.TotalEvents == nil {
		warnings = append(warnings, "Missing 'total_events' field")
	} else if *raw.TotalEvents != len(events) {
		errs = append(errs, fmt.Sprintf("total_events (%d) doesn't match actual events count (%d)", *raw.TotalEvents, len(events)))
	}

	if raw.GeneratedAt == nil {
		warnings = append(warnings, "Missing 'generated_at' timestamp")
	} else if _, err := timeutil.ParseOffset(*raw.GeneratedAt); err != nil {
		warnings = append(warnings, fmt.Sprintf("generated_at format unusual: '%s'", *raw.GeneratedAt))
	}

	score := 1.0
	if len(events) > 0 {
		score = float64(totalPoints) / float64(len(events)*maxPoints)
	}

	result := Result{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
		Score:    score,
	}
	v.logger.Debug("validated calendar document",
		"events", len(events),
		"valid", result.IsValid,
		"errors", len(errs),
		"warnings", len(warnings),
		"score", score,
	)
	return result
}

func parseFailure(err error) Result {
	return Result{
		IsValid:  false,
		Errors:   []string{"Invalid JSON structure: " + err.Error()},
		Warnings: []string{},
		Score:    0,
	}
}

// ValidateEvent checks one serialized event object.
func (v *Validator) ValidateEvent(event []byte) EventResult {
	var raw rawEvent
	if err := json.Unmarshal(event, &raw); err != nil {
		return EventResult{
			Errors:   []string{"Invalid JSON structure: " + err.Error()},
			Warnings: []string{},
		}
	}
	return v.validateEvent(raw)
}

func (v *Validator) validateEvent(event rawEvent) EventResult {
	result := EventResult{Errors: []string{}, Warnings: []string{}}

	switch {
	case event.Summary == nil:
		result.Errors = append(result.Errors, "Missing required 'summary' field")
	case strings.TrimSpace(*event.Summary) == "":
		result.Errors = append(result.Errors, "Summary cannot be blank")
	case utf8.RuneCountInString(*event.Summary) < minTitleLength:
		result.Errors = append(result.Errors, fmt.Sprintf("Summary too short (min %d chars)", minTitleLength))
	case utf8.RuneCountInString(*event.Summary) > maxTitleLength:
		result.Errors = append(result.Errors, fmt.Sprintf("Summary too long (max %d chars)", maxTitleLength))
	default:
		result.HasValidTitle = true
	}

	if event.Start == nil {
		result.Errors = append(result.Errors, "Missing required 'start' field")
	} else {
		errs, warnings := validateDateTimeField(*event.Start, "start")
		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warnings...)
		if len(errs) == 0 {
			result.HasValidDateTime = true
			result.HasValidTimeZone = true
		}
	}

	if event.End == nil {
		result.Errors = append(result.Errors, "Missing required 'end' field")
	} else {
		errs, warnings := validateDateTimeField(*event.End, "end")
		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warnings...)
	}

	if event.Start != nil && event.End != nil {
		errs, warnings := validateDuration(*event.Start, *event.End)
		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warnings...)
		result.HasValidDuration = len(errs) == 0
	}

	if event.Description != nil {
		if n := utf8.RuneCountInString(*event.Description); n > maxDescriptionLength {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Description very long (%d chars, max recommended %d)", n, maxDescriptionLength))
		}
	}

	if event.Location != nil && strings.TrimSpace(*event.Location) == "" {
		result.Warnings = append(result.Warnings, "Location field is empty")
	}

	if len(event.Confidence) > 0 {
		if confidence, err := parseConfidence(event.Confidence); err != nil {
			result.Warnings = append(result.Warnings, "Invalid confidence value: "+err.Error())
		} else if confidence < 0 || confidence > 1 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Confidence should be between 0.0 and 1.0, got %v", confidence))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func validateDateTimeField(field rawEventTime, name string) (errs, warnings []string) {
	hasDateTime := field.DateTime != nil
	hasDate := field.Date != nil

	if !hasDateTime && !hasDate {
		return []string{fmt.Sprintf("%s must have either 'dateTime' or 'date' field", name)}, nil
	}
	if hasDateTime && hasDate {
		warnings = append(warnings, fmt.Sprintf("%s has both 'dateTime' and 'date', 'dateTime' takes precedence", name))
	}

	if hasDateTime {
		value := *field.DateTime
		if !dateTimePattern.MatchString(value) {
			errs = append(errs, fmt.Sprintf("%s.dateTime format invalid. Expected ISO 8601 format (yyyy-MM-ddTHH:mm:ss±HH:mm), got: '%s'", name, value))
		} else if _, err := timeutil.ParseOffset(value); err != nil {
			errs = append(errs, fmt.Sprintf("%s.dateTime cannot be parsed: %v", name, err))
		}

		warnings = append(warnings, validateTimeZone(field.TimeZone, name)...)
	} else if !datePattern.MatchString(*field.Date) {
		errs = append(errs, fmt.Sprintf("%s.date format invalid. Expected yyyy-MM-dd format", name))
	}

	return errs, warnings
}

// validateTimeZone only warns; unknown zones resolve to a default downstream.
func validateTimeZone(tz *string, name string) []string {
	switch {
	case tz == nil:
		return []string{fmt.Sprintf("%s.timeZone is missing", name)}
	case strings.TrimSpace(*tz) == "":
		return []string{fmt.Sprintf("%s.timeZone is empty", name)}
	case !timeZonePattern.MatchString(*tz):
		return []string{fmt.Sprintf("%s.timeZone format unusual: %s", name, *tz)}
	case !timeutil.IsKnownZone(*tz):
		return []string{fmt.Sprintf("%s.timeZone not recognized: %s", name, *tz)}
	}
	return nil
}

func validateDuration(start, end rawEventTime) (errs, warnings []string) {
	// Date-only events are not checked.
	if start.DateTime == nil || end.DateTime == nil {
		return nil, nil
	}

	startTime, err := timeutil.ParseOffset(*start.DateTime)
	if err != nil {
		return nil, []string{"Could not validate event duration: " + err.Error()}
	}
	endTime, err := timeutil.ParseOffset(*end.DateTime)
	if err != nil {
		return nil, []string{"Could not validate event duration: " + err.Error()}
	}

	duration := endTime.Sub(startTime)
	switch {
	case duration <= 0:
		errs = append(errs, "End time must be after start time")
	case duration < minEventDuration:
		warnings = append(warnings, fmt.Sprintf("Very short event duration: %d minutes", int(duration.Minutes())))
	case duration > maxEventDuration:
		warnings = append(warnings, fmt.Sprintf("Very long event duration: %d hours", int(duration.Hours())))
	}
	return errs, warnings
}

// parseConfidence accepts a JSON number or a numeric string.
func parseConfidence(raw json.RawMessage) (float64, error) {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, fmt.Errorf("not a number: %s", string(raw))
	}
	return strconv.ParseFloat(strings.TrimSpace(text), 64)
}
