// Package calendar maps detected events onto the calendar-service insert
// schema and exports them as JSON or iCalendar.
package calendar

import (
	"bytes"
	"encoding/json"
)

const (
	// NoEventsMessage is the only field of a document without events.
	NoEventsMessage = "No events detected"
	// PlaceholderSummary replaces an empty event title.
	PlaceholderSummary = "Event from WhatsApp"
	// DefaultSource is written into the source metadata field.
	DefaultSource = "WhatsAppEventer"
)

// EventTime is a start or end field. Exactly one of DateTime and Date is
// expected to be set.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Entry is one calendar event in the insert schema.
type Entry struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
	Location    string    `json:"location,omitempty"`
	Source      string    `json:"source"`
	Confidence  float64   `json:"confidence"`
}

// Document wraps the mapped entries.
type Document struct {
	Events      []Entry
	GeneratedAt string
}

// TotalEvents is the value written as total_events.
func (d Document) TotalEvents() int {
	return len(d.Events)
}

// IsEmpty reports whether the document serializes to the no-events shape.
func (d Document) IsEmpty() bool {
	return len(d.Events) == 0
}

type emptyDocument struct {
	Message string `json:"message"`
}

type eventsDocument struct {
	Events      []Entry `json:"events"`
	TotalEvents int     `json:"total_events"`
	GeneratedAt string  `json:"generated_at"`
}

// MarshalJSON emits {"message": ...} for an empty document and the
// events wrapper otherwise.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.IsEmpty() {
		return marshalRaw(emptyDocument{Message: NoEventsMessage})
	}
	return marshalRaw(eventsDocument{
		Events:      d.Events,
		TotalEvents: d.TotalEvents(),
		GeneratedAt: d.GeneratedAt,
	})
}

// marshalRaw is json.Marshal without HTML escaping. Marshaler output is
// compacted, not re-escaped, by the outer encoder.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
