package detector

import (
	"regexp"
	"strings"
	"time"
)

// timeRule matches an explicit clock mention. Group indexes are 0 when the
// pattern has no such group.
type timeRule struct {
	pattern  *regexp.Regexp
	hour     int
	minute   int
	meridiem int
	// explicit rules ("at 3pm", "בשעה 3") emit a generic event when no
	// activity is found nearby.
	explicit bool
}

// dayRule matches a day reference in capture group 1. Weekday rules set
// weekdays and ignore offset.
type dayRule struct {
	pattern  *regexp.Regexp
	offset   int
	weekdays map[string]time.Weekday
}

type activityRule struct {
	pattern *regexp.Regexp
	title   string
}

// keyword is a nearby-activity word. When pattern is set it replaces the
// plain substring check on word.
type keyword struct {
	word    string
	pattern *regexp.Regexp
	title   string
}

func (k keyword) foundIn(text string) bool {
	if k.pattern != nil {
		return k.pattern.MatchString(text)
	}
	return strings.Contains(text, k.word)
}

func hebrewKeyword(alternatives, title string) keyword {
	return keyword{pattern: regexp.MustCompile(hebrewWord(alternatives)), title: title}
}

type ruleSet struct {
	name           string
	timeRules      []timeRule
	dayRules       []dayRule
	activityRules  []activityRule
	nearActivities []keyword
	timeReferences []string
	// eveningWord and morningWord drive the 12-hour shift. Empty disables it.
	eveningWord string
	morningWord string
}

// systemMessages are platform notices, matched case-insensitively.
var systemMessages = []string{
	"joined using this group's invite link",
	"left",
	"was added",
	"was removed",
	"created group",
	"changed the group description",
	"messages and calls are end-to-end encrypted",
	"הצטרף",
	"עזב",
	"נוסף",
	"הוסר",
	"יצר את הקבוצה",
	"מוצפנות מקצה לקצה",
}

var englishWeekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var hebrewWeekdays = map[string]time.Weekday{
	"ראשון": time.Sunday,
	"שני":   time.Monday,
	"שלישי": time.Tuesday,
	"רביעי": time.Wednesday,
	"חמישי": time.Thursday,
	"שישי":  time.Friday,
	"שבת":   time.Saturday,
}

var englishRules = ruleSet{
	name: "english",
	timeRules: []timeRule{
		{
			pattern:  regexp.MustCompile(`(?i)\bat\s+(\d{1,2}):?(\d{0,2})\s*([ap]m)\b`),
			hour:     1,
			minute:   2,
			meridiem: 3,
			explicit: true,
		},
		{
			// The trailing word is consumed but excluded from the match span.
			pattern:  regexp.MustCompile(`(?i)\b(\d{1,2}):?(\d{0,2})\s*([ap]m)\s*(?:for|to|we|let|i|meeting|dinner|lunch|call|appointment|party|movie)`),
			hour:     1,
			minute:   2,
			meridiem: 3,
		},
	},
	dayRules: []dayRule{
		{pattern: regexp.MustCompile(`(?i)\b(tomorrow)\b`), offset: 1},
		{pattern: regexp.MustCompile(`(?i)\b(today)\b`), offset: 0},
		{pattern: regexp.MustCompile(`(?i)\b(next\s+week)\b`), offset: 7},
		{pattern: regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`), weekdays: englishWeekdays},
		{pattern: regexp.MustCompile(`(?i)\b(this\s+week)\b`), offset: 3},
	},
	activityRules: []activityRule{
		{pattern: regexp.MustCompile(`(?i)\b(meeting|meet)\b`), title: "Meeting"},
		{pattern: regexp.MustCompile(`(?i)\b(dinner|lunch|breakfast)\b`), title: "Meal"},
		{pattern: regexp.MustCompile(`(?i)\b(appointment|appt)\b`), title: "Appointment"},
		{pattern: regexp.MustCompile(`(?i)\b(call|phone\s+call)\b`), title: "Call"},
		{pattern: regexp.MustCompile(`(?i)\b(party|celebration)\b`), title: "Party"},
		{pattern: regexp.MustCompile(`(?i)\b(movie|film)\b`), title: "Movie"},
		{pattern: regexp.MustCompile(`(?i)\b(conference|presentation)\b`), title: "Conference"},
		{pattern: regexp.MustCompile(`(?i)\b(interview)\b`), title: "Interview"},
		{pattern: regexp.MustCompile(`(?i)\b(vacation|holiday|trip)\b`), title: "Travel"},
	},
	nearActivities: []keyword{
		{word: "meeting", title: "Meeting"},
		{word: "dinner", title: "Dinner"},
		{word: "lunch", title: "Lunch"},
		{word: "call", title: "Call"},
		{word: "appointment", title: "Appointment"},
		{word: "party", title: "Party"},
		{word: "movie", title: "Movie"},
	},
	timeReferences: []string{
		"tomorrow", "today", "tonight", "morning", "afternoon", "evening",
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
		"next week", "this week", "later", "soon",
	},
}

// hebrewWord wraps alternatives with Hebrew-aware boundaries and allows the
// common one-letter prefixes (ו, ב, ל, ה, מ, ש). RE2's \b is ASCII-only.
func hebrewWord(alternatives string) string {
	return `(?:^|[^\p{Hebrew}])ו?[בלהמש]?(` + alternatives + `)(?:[^\p{Hebrew}]|$)`
}

var hebrewRules = ruleSet{
	name: "hebrew",
	timeRules: []timeRule{
		{
			pattern:  regexp.MustCompile(`בשעה\s*(\d{1,2})(?::(\d{2}))?`),
			hour:     1,
			minute:   2,
			explicit: true,
		},
		{
			pattern: regexp.MustCompile(`(?:^|[^\p{Hebrew}])ב-?(\d{1,2}):(\d{2})`),
			hour:    1,
			minute:  2,
		},
	},
	dayRules: []dayRule{
		{pattern: regexp.MustCompile(hebrewWord(`מחר`)), offset: 1},
		{pattern: regexp.MustCompile(hebrewWord(`מחרתיים`)), offset: 2},
		{pattern: regexp.MustCompile(hebrewWord(`היום`)), offset: 0},
		{pattern: regexp.MustCompile(hebrewWord(`שבוע\s+הבא`)), offset: 7},
		{pattern: regexp.MustCompile(hebrewWord(`יום\s+(?:ראשון|שני|שלישי|רביעי|חמישי|שישי|שבת)|שבת`)), weekdays: hebrewWeekdays},
		{pattern: regexp.MustCompile(hebrewWord(`השבוע`)), offset: 3},
	},
	activityRules: []activityRule{
		{pattern: regexp.MustCompile(hebrewWord(`פגישה|פגישת|להיפגש|ניפגש|נפגש`)), title: "פגישה"},
		{pattern: regexp.MustCompile(hebrewWord(`ארוחת\s+(?:ערב|צהריים|בוקר)|ארוחה`)), title: "ארוחה"},
		{pattern: regexp.MustCompile(hebrewWord(`תור`)), title: "תור"},
		{pattern: regexp.MustCompile(hebrewWord(`שיחה|שיחת|להתקשר|אתקשר`)), title: "שיחה"},
		{pattern: regexp.MustCompile(hebrewWord(`מסיבה|מסיבת|חגיגה`)), title: "מסיבה"},
		{pattern: regexp.MustCompile(hebrewWord(`סרט`)), title: "סרט"},
		{pattern: regexp.MustCompile(hebrewWord(`כנס|הרצאה|מצגת`)), title: "כנס"},
		{pattern: regexp.MustCompile(hebrewWord(`ראיון`)), title: "ראיון"},
		{pattern: regexp.MustCompile(hebrewWord(`טיול|חופשה|נסיעה`)), title: "טיול"},
	},
	nearActivities: []keyword{
		// Whole words only: a bare "תור" must not hit "תורה".
		hebrewKeyword(`פגיש(?:ה|ת|ות)`, "פגישה"),
		hebrewKeyword(`ארוחת\s+ערב`, "ארוחת ערב"),
		hebrewKeyword(`ארוחת\s+צהריים`, "ארוחת צהריים"),
		hebrewKeyword(`שיח(?:ה|ת)`, "שיחה"),
		hebrewKeyword(`תור`, "תור"),
		hebrewKeyword(`מסיב(?:ה|ת)`, "מסיבה"),
		hebrewKeyword(`סרט`, "סרט"),
	},
	timeReferences: []string{
		"מחר", "היום", "הערב", "בבוקר", "בצהריים", "בערב", "השבוע", "שבוע הבא",
		"ראשון", "שני", "שלישי", "רביעי", "חמישי", "שישי", "שבת",
		"אחר כך", "בקרוב", "מאוחר יותר",
	},
	eveningWord: "בערב",
	morningWord: "בבוקר",
}

func isSystemMessage(line string) bool {
	lower := strings.ToLower(line)
	for _, pattern := range systemMessages {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func (rs *ruleSet) hasTimeReference(line string) bool {
	lower := strings.ToLower(line)
	for _, ref := range rs.timeReferences {
		if strings.Contains(lower, ref) {
			return true
		}
	}
	return false
}

// lookupWeekday resolves a matched day string such as "Friday", "יום שישי"
// or "שבת" to a weekday.
func (r dayRule) lookupWeekday(dayStr string) (time.Weekday, bool) {
	fields := strings.Fields(strings.ToLower(dayStr))
	if len(fields) == 0 {
		return 0, false
	}
	word := fields[len(fields)-1]
	if wd, ok := r.weekdays[word]; ok {
		return wd, true
	}
	return 0, false
}
