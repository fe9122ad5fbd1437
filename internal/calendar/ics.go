package calendar

import (
	"fmt"
	"strconv"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/omriShneor/whatsapp_eventer/internal/timeutil"
)

const (
	// ProductID identifies exported calendars.
	ProductID = "-//whatsapp_eventer//EN"

	// ConfidenceProperty carries the detector confidence on each VEVENT.
	ConfidenceProperty = "X-EVENTER-CONFIDENCE"
	// SourceProperty carries the source metadata field on each VEVENT.
	SourceProperty = "X-EVENTER-SOURCE"

	uidDomain = "whatsapp_eventer"
)

// uidNamespace scopes the name-based UUIDs used for VEVENT UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/omriShneor/whatsapp_eventer"))

// EventUID returns a stable UID for an entry, so re-exporting the same
// conversation updates rather than duplicates events in a client.
func EventUID(e Entry) string {
	name := e.Summary + "\x00" + e.Start.DateTime + "\x00" + e.Description
	return uuid.NewSHA1(uidNamespace, []byte(name)).String() + "@" + uidDomain
}

// ExportICS renders a document as an iCalendar stream with one VEVENT per
// entry. Entries whose start or end cannot be parsed are skipped.
func ExportICS(doc Document) (string, error) {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)

	if doc.IsEmpty() {
		return cal.Serialize(), nil
	}

	stamp, err := timeutil.ParseOffset(doc.GeneratedAt)
	if err != nil {
		return "", fmt.Errorf("failed to parse generated_at: %w", err)
	}

	for _, entry := range doc.Events {
		start, err := timeutil.ParseOffset(entry.Start.DateTime)
		if err != nil {
			continue
		}
		end, err := timeutil.ParseOffset(entry.End.DateTime)
		if err != nil {
			continue
		}

		event := cal.AddEvent(EventUID(entry))
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(entry.Summary)
		if entry.Description != "" {
			event.SetDescription(entry.Description)
		}
		if entry.Location != "" {
			event.SetLocation(entry.Location)
		}
		event.SetProperty(ical.ComponentProperty(SourceProperty), entry.Source)
		event.SetProperty(ical.ComponentProperty(ConfidenceProperty), strconv.FormatFloat(entry.Confidence, 'f', 2, 64))
	}

	return cal.Serialize(), nil
}
