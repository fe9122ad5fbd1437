package detector

import "time"

// Confidence assigned by each detection strategy.
const (
	TimeBasedConfidence     = 0.8
	DayBasedConfidence      = 0.7
	ActivityBasedConfidence = 0.6
)

// GenericTitle is used when an explicit time has no nearby activity.
const GenericTitle = "Event"

// DetectedEvent is a candidate calendar event extracted from one line.
type DetectedEvent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// DateTime is nil when no time could be resolved.
	DateTime *time.Time `json:"date_time,omitempty"`
	// Location is reserved; detection never fills it.
	Location   string  `json:"location,omitempty"`
	Confidence float64 `json:"confidence"`
}

// HasDateTime reports whether the event carries a resolved time.
func (e DetectedEvent) HasDateTime() bool {
	return e.DateTime != nil
}

// HasLocation reports whether the event carries a non-empty location.
func (e DetectedEvent) HasLocation() bool {
	return e.Location != ""
}

// EventDetector turns conversation text into candidate events.
type EventDetector interface {
	DetectEvents(conversation string) []DetectedEvent
	Name() string
	ConfidenceThreshold() float64
}
