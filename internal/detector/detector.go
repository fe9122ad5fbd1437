// Package detector extracts candidate calendar events from chat
// conversations using English and Hebrew pattern rules.
package detector

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/omriShneor/whatsapp_eventer/internal/language"
	"github.com/omriShneor/whatsapp_eventer/internal/timeutil"
)

const (
	// DetectorName identifies this detector in reports.
	DetectorName = "NLP_REGEX_BASED"
	// DefaultConfidenceThreshold is advisory; DetectEvents does not filter on it.
	DefaultConfidenceThreshold = 0.6

	// activityWindow is the number of runes searched on each side of a time.
	activityWindow = 200
)

// Options configures a Detector. Zero values fall back to time.Now, UTC
// and a discarding logger.
type Options struct {
	Now      func() time.Time
	Location *time.Location
	Logger   *slog.Logger
}

// Detector is a rule-based EventDetector. It holds no mutable state and is
// safe for concurrent use.
type Detector struct {
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

var _ EventDetector = (*Detector)(nil)

// New creates a Detector.
func New(opts Options) *Detector {
	d := &Detector{
		now:    opts.Now,
		loc:    opts.Location,
		logger: opts.Logger,
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.loc == nil {
		d.loc = time.UTC
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	return d
}

// Name implements EventDetector.
func (d *Detector) Name() string {
	return DetectorName
}

// ConfidenceThreshold implements EventDetector.
func (d *Detector) ConfidenceThreshold() float64 {
	return DefaultConfidenceThreshold
}

// DetectEvents scans the conversation line by line and returns the
// deduplicated candidates in discovery order.
func (d *Detector) DetectEvents(conversation string) []DetectedEvent {
	now := d.now().In(d.loc).Truncate(time.Second)

	var events []DetectedEvent
	for _, line := range strings.Split(conversation, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isSystemMessage(line) {
			continue
		}
		events = append(events, d.analyzeLine(line, now)...)
	}

	unique := dedupe(events)
	d.logger.Debug("detected events",
		"lines", strings.Count(conversation, "\n")+1,
		"candidates", len(events),
		"events", len(unique),
	)
	return unique
}

func (d *Detector) analyzeLine(line string, now time.Time) []DetectedEvent {
	switch language.Detect(line) {
	case language.Hebrew:
		return d.detectWith(&hebrewRules, line, now)
	case language.Mixed:
		events := d.detectWith(&englishRules, line, now)
		return append(events, d.detectWith(&hebrewRules, line, now)...)
	default:
		return d.detectWith(&englishRules, line, now)
	}
}

// detectWith runs the time, day and activity strategies in order and stops
// at the first one that yields anything.
func (d *Detector) detectWith(rules *ruleSet, line string, now time.Time) []DetectedEvent {
	if events := d.timeBased(rules, line, now); len(events) > 0 {
		return events
	}
	if events := d.dayBased(rules, line, now); len(events) > 0 {
		return events
	}
	return d.activityBased(rules, line)
}

func (d *Detector) timeBased(rules *ruleSet, line string, now time.Time) []DetectedEvent {
	var events []DetectedEvent
	for _, rule := range rules.timeRules {
		for _, m := range rule.pattern.FindAllStringSubmatchIndex(line, -1) {
			hour, minute, ok := parseClock(group(line, m, rule.hour), group(line, m, rule.minute), group(line, m, rule.meridiem))
			if !ok {
				d.logger.Debug("skipping unparseable time", "rules", rules.name, "match", line[m[0]:m[1]])
				continue
			}
			hour = rules.shiftHour(line, hour)

			start, end := m[0], spanEnd(m, rule)
			title := rules.activityNear(line, start, end)
			if title == "" {
				if !rule.explicit {
					continue
				}
				title = GenericTitle
			}

			at := timeutil.AtClock(now, hour, minute)
			events = append(events, DetectedEvent{
				Title:       title,
				Description: line,
				DateTime:    &at,
				Confidence:  TimeBasedConfidence,
			})
		}
	}
	return events
}

func (d *Detector) dayBased(rules *ruleSet, line string, now time.Time) []DetectedEvent {
	var events []DetectedEvent
	for _, rule := range rules.dayRules {
		for _, m := range rule.pattern.FindAllStringSubmatchIndex(line, -1) {
			dayStr := group(line, m, 1)

			var at time.Time
			if rule.weekdays != nil {
				wd, ok := rule.lookupWeekday(dayStr)
				if !ok {
					continue
				}
				if at, ok = nextWeekday(now, wd); !ok {
					continue
				}
			} else {
				at = now.AddDate(0, 0, rule.offset)
			}

			title := rules.activityNear(line, m[0], m[1])
			if title == "" {
				title = "Event on " + dayStr
			}
			events = append(events, DetectedEvent{
				Title:       title,
				Description: line,
				DateTime:    &at,
				Confidence:  DayBasedConfidence,
			})
		}
	}
	return events
}

func (d *Detector) activityBased(rules *ruleSet, line string) []DetectedEvent {
	if !rules.hasTimeReference(line) {
		return nil
	}
	var events []DetectedEvent
	for _, rule := range rules.activityRules {
		for range rule.pattern.FindAllStringIndex(line, -1) {
			events = append(events, DetectedEvent{
				Title:       rule.title,
				Description: line,
				Confidence:  ActivityBasedConfidence,
			})
		}
	}
	return events
}

// shiftHour applies the evening/morning words to a 24-hour value.
func (rs *ruleSet) shiftHour(line string, hour int) int {
	if rs.eveningWord != "" && strings.Contains(line, rs.eveningWord) && hour < 12 {
		return hour + 12
	}
	if rs.morningWord != "" && strings.Contains(line, rs.morningWord) && hour > 12 {
		return hour - 12
	}
	return hour
}

// activityNear looks for a known activity keyword within the window around
// line[start:end], before the match first.
func (rs *ruleSet) activityNear(line string, start, end int) string {
	before := strings.ToLower(lastRunes(line[:start], activityWindow))
	after := strings.ToLower(firstRunes(line[end:], activityWindow))
	for _, kw := range rs.nearActivities {
		if kw.foundIn(before) || kw.foundIn(after) {
			return kw.title
		}
	}
	return ""
}

func dedupe(events []DetectedEvent) []DetectedEvent {
	type key struct{ title, description string }
	seen := make(map[key]struct{}, len(events))
	unique := make([]DetectedEvent, 0, len(events))
	for _, e := range events {
		k := key{strings.ToLower(e.Title), strings.ToLower(e.Description)}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, e)
	}
	return unique
}

// group returns submatch n, or "" when n is 0 or the group did not match.
func group(s string, m []int, n int) string {
	if n == 0 || 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return s[m[2*n]:m[2*n+1]]
}

// spanEnd is where the time mention ends: the last matched clock group.
// Trailing context the pattern consumed is left to the activity window.
func spanEnd(m []int, rule timeRule) int {
	end := -1
	for _, n := range []int{rule.hour, rule.minute, rule.meridiem} {
		if n > 0 && m[2*n+1] > end {
			end = m[2*n+1]
		}
	}
	if end < 0 {
		return m[1]
	}
	return end
}

func lastRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := len(s)
	for count := 0; count < n; count++ {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[i:]
}

func firstRunes(s string, n int) string {
	i := 0
	for count := 0; count < n && i < len(s); count++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}
