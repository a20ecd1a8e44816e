package timeline

import (
	"time"

	"github.com/google/uuid"
)

// Depth controls how many events the model is asked for.
type Depth string

const (
	DepthBrief    Depth = "brief"
	DepthDetailed Depth = "detailed"
)

// EventCount is 10 for detailed and 5 for anything else.
func (d Depth) EventCount() int {
	if d == DepthDetailed {
		return 10
	}
	return 5
}

// Normalize maps unrecognized values to brief.
func (d Depth) Normalize() Depth {
	if d == DepthDetailed {
		return DepthDetailed
	}
	return DepthBrief
}

// Request is the inbound "generate timeline" payload.
type Request struct {
	Scenario string `json:"scenario"`
	Depth    Depth  `json:"depth,omitempty"`
}

// Event is a single dated step in an alternate timeline. Image fields are
// attached after parsing and never come from the model.
type Event struct {
	Year             int    `json:"year"`
	Date             string `json:"date"`
	Event            string `json:"event"`
	Impact           string `json:"impact"`
	Probability      string `json:"probability"`
	ImageURL         string `json:"image_url"`
	ImageDescription string `json:"image_description"`
}

// Timeline is the persisted result of one generation.
type Timeline struct {
	ID                uuid.UUID `json:"id"`
	OriginalScenario  string    `json:"original_scenario"`
	HistoricalContext []string  `json:"historical_context"`
	Events            []Event   `json:"timeline_events"`
	Summary           string    `json:"summary"`
	CreatedAt         time.Time `json:"created_at"`
}
