package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/omriShneor/whatsapp_eventer/internal/detector"
	"github.com/omriShneor/whatsapp_eventer/internal/timeutil"
)

// DefaultDuration is applied to every entry; duration text is not parsed.
const DefaultDuration = time.Hour

// Options configures a Mapper. Zero values fall back to time.Now, UTC,
// DefaultSource and a discarding logger.
type Options struct {
	Now      func() time.Time
	Location *time.Location
	Source   string
	Logger   *slog.Logger
}

// Mapper converts detected events into calendar documents.
type Mapper struct {
	now    func() time.Time
	loc    *time.Location
	source string
	logger *slog.Logger
}

// NewMapper creates a Mapper.
func NewMapper(opts Options) *Mapper {
	m := &Mapper{
		now:    opts.Now,
		loc:    opts.Location,
		source: strings.TrimSpace(opts.Source),
		logger: opts.Logger,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.loc == nil {
		m.loc = time.UTC
	}
	if m.source == "" {
		m.source = DefaultSource
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	return m
}

// Location returns the zone written into every entry.
func (m *Mapper) Location() *time.Location {
	return m.loc
}

// Convert maps events in order. An empty slice yields an empty document.
func (m *Mapper) Convert(events []detector.DetectedEvent) Document {
	now := m.now().In(m.loc)
	if len(events) == 0 {
		return Document{}
	}

	entries := make([]Entry, 0, len(events))
	for _, e := range events {
		entries = append(entries, m.ToEntry(e, now))
	}
	m.logger.Debug("mapped calendar entries", "count", len(entries), "time_zone", m.loc.String())

	return Document{
		Events:      entries,
		GeneratedAt: timeutil.FormatOffset(now),
	}
}

// ToEntry maps one event. Events without a resolved time start at now.
func (m *Mapper) ToEntry(e detector.DetectedEvent, now time.Time) Entry {
	start := now
	if e.DateTime != nil {
		start = e.DateTime.In(m.loc)
	}
	end := start.Add(DefaultDuration)

	summary := e.Title
	if strings.TrimSpace(summary) == "" {
		summary = PlaceholderSummary
	}

	zone := m.loc.String()
	return Entry{
		Summary:     summary,
		Description: e.Description,
		Start:       EventTime{DateTime: timeutil.FormatOffset(start), TimeZone: zone},
		End:         EventTime{DateTime: timeutil.FormatOffset(end), TimeZone: zone},
		Location:    strings.TrimSpace(e.Location),
		Source:      m.source,
		Confidence:  e.Confidence,
	}
}

// ConvertToJSON maps events and renders the document with two-space
// indentation.
func (m *Mapper) ConvertToJSON(events []detector.DetectedEvent) (string, error) {
	return Marshal(m.Convert(events))
}

// Marshal renders a document with two-space indentation and without HTML
// escaping, so chat text round-trips as written.
func Marshal(doc Document) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to marshal calendar document: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
