// Package gcal builds Google Calendar insert payloads from calendar
// documents. It never calls the Calendar API.
package gcal

import (
	"fmt"
	"strconv"
	"time"

	"google.golang.org/api/calendar/v3"

	eventcal "github.com/omriShneor/whatsapp_eventer/internal/calendar"
	"github.com/omriShneor/whatsapp_eventer/internal/timeutil"
)

// ConfidenceKey is the private extended property holding the detector
// confidence.
const ConfidenceKey = "confidence"

// ToGoogleEvent converts one entry into an events.insert body.
func ToGoogleEvent(entry eventcal.Entry) *calendar.Event {
	event := &calendar.Event{
		Summary:     entry.Summary,
		Description: entry.Description,
		Location:    entry.Location,
		Start:       toEventDateTime(entry.Start),
		End:         toEventDateTime(entry.End),
		Reminders: &calendar.EventReminders{
			UseDefault: true,
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				ConfidenceKey: strconv.FormatFloat(entry.Confidence, 'f', -1, 64),
			},
		},
	}
	if entry.Source != "" {
		event.Source = &calendar.EventSource{Title: entry.Source}
	}
	return event
}

// ToGoogleEvents converts the entries of a document in order. Entries the
// Calendar API would reject for their times are skipped.
func ToGoogleEvents(doc eventcal.Document) []*calendar.Event {
	events := make([]*calendar.Event, 0, len(doc.Events))
	for _, entry := range doc.Events {
		event := ToGoogleEvent(entry)
		if _, _, _, err := EventTimes(event, time.UTC); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events
}

func toEventDateTime(t eventcal.EventTime) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.DateTime,
		Date:     t.Date,
		TimeZone: t.TimeZone,
	}
}

// EventTimes parses the start and end of a Google event. All-day events
// use Date instead of DateTime and are resolved in loc.
func EventTimes(item *calendar.Event, loc *time.Location) (time.Time, time.Time, bool, error) {
	if item == nil || item.Start == nil || item.End == nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event is missing start or end")
	}

	if item.Start.Date != "" {
		startDate, err := time.ParseInLocation(timeutil.DateLayout, item.Start.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day start date: %w", err)
		}
		endDate, err := time.ParseInLocation(timeutil.DateLayout, item.End.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day end date: %w", err)
		}
		return startDate, endDate, true, nil
	}

	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event datetime is missing")
	}

	startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse start datetime: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse end datetime: %w", err)
	}
	if !endTime.After(startTime) {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event ends at or before its start")
	}

	return startTime, endTime, false, nil
}
