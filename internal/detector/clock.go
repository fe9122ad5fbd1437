package detector

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Layouts are tried in order; the first successful parse wins.
var (
	meridiemLayouts = []string{"3:04pm", "3pm"}
	dayClockLayouts = []string{"15:04", "15"}
)

// parseClock turns captured hour/minute/meridiem strings into a wall-clock
// hour and minute. Out-of-range values such as 13pm or 25:99 fail.
func parseClock(hourStr, minuteStr, meridiem string) (hour, minute int, ok bool) {
	value := hourStr
	if minuteStr != "" {
		value += ":" + minuteStr
	}
	layouts := dayClockLayouts
	if meridiem != "" {
		layouts = meridiemLayouts
		value += strings.ToLower(meridiem)
	}

	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.Hour(), parsed.Minute(), true
		}
	}
	return 0, 0, false
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// nextWeekday returns the first occurrence of target strictly after today,
// keeping now's clock time. Naming today's weekday resolves to next week.
func nextWeekday(now time.Time, target time.Weekday) (time.Time, bool) {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   now.AddDate(0, 0, 1),
		Byweekday: []rrule.Weekday{rruleWeekdays[target]},
		Count:     1,
	})
	if err != nil {
		return time.Time{}, false
	}
	occurrences := rule.All()
	if len(occurrences) == 0 {
		return time.Time{}, false
	}
	return occurrences[0].In(now.Location()), true
}
