package timeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/timemachine/internal/era"
)

// ImageResolver picks an illustration for an event.
type ImageResolver interface {
	Resolve(text string, year int) era.Image
}

// Assemble packages a parse outcome into a new timeline with a fresh ID,
// creation time and an image on every event. CreatedAt is UTC at microsecond
// precision, the finest both stores keep.
func Assemble(scenario string, facts []string, out Outcome, images ImageResolver, now time.Time) *Timeline {
	history := make([]string, len(facts))
	copy(history, facts)

	events := make([]Event, len(out.Events))
	for i, ev := range out.Events {
		img := images.Resolve(ev.Event, ev.Year)
		ev.ImageURL = img.URL
		ev.ImageDescription = img.Description
		events[i] = ev
	}

	return &Timeline{
		ID:                uuid.New(),
		OriginalScenario:  scenario,
		HistoricalContext: history,
		Events:            events,
		Summary:           out.Summary,
		CreatedAt:         now.UTC().Truncate(time.Microsecond),
	}
}

// ParseResponse parses raw model text and assembles the timeline using the
// built-in image table. It always returns a usable timeline.
func ParseResponse(raw, scenario string, facts []string, now time.Time) *Timeline {
	return Assemble(scenario, facts, Parse(raw, now), era.NewResolver(nil), now)
}
