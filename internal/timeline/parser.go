package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedResponse marks model output that could not be parsed into
// timeline events.
var ErrMalformedResponse = errors.New("malformed model response")

const (
	defaultSummary  = "An alternate timeline exploring the consequences of this historical change."
	degradedSummary = "An alternate timeline exploring historical possibilities."
	degradedPrefix  = "In this alternate timeline: "
	degradedDate    = "Present Day"
	degradedImpact  = "The world would be fundamentally different today."
	degradedOdds    = "Speculative"
	excerptRunes    = 200
)

// Outcome is the result of parsing one model response: either the parsed
// events, or a single degraded event when the response was unusable.
type Outcome struct {
	Summary  string
	Events   []Event
	Degraded bool
	Err      error // why parsing failed; nil unless Degraded
}

type rawEvent struct {
	Year        json.RawMessage `json:"year"`
	Date        *string         `json:"date"`
	Event       *string         `json:"event"`
	Impact      *string         `json:"impact"`
	Probability *string         `json:"probability"`
}

type rawResponse struct {
	Summary string      `json:"summary"`
	Events  *[]rawEvent `json:"timeline_events"`
}

// Parse turns raw model text into events. It never fails: anything that is
// not a fully valid response yields a degraded outcome dated now.
func Parse(raw string, now time.Time) Outcome {
	events, summary, err := decode(raw)
	if err != nil {
		return degraded(raw, now, err)
	}
	if strings.TrimSpace(summary) == "" {
		summary = defaultSummary
	}
	return Outcome{Summary: summary, Events: events}
}

func decode(raw string) ([]Event, string, error) {
	body := stripFence(raw)

	var resp rawResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Events == nil {
		return nil, "", fmt.Errorf("%w: timeline_events missing", ErrMalformedResponse)
	}

	events := make([]Event, 0, len(*resp.Events))
	for i, re := range *resp.Events {
		ev, err := re.toEvent()
		if err != nil {
			return nil, "", fmt.Errorf("%w: event %d: %v", ErrMalformedResponse, i, err)
		}
		events = append(events, ev)
	}
	return events, resp.Summary, nil
}

func (re rawEvent) toEvent() (Event, error) {
	year, err := parseYear(re.Year)
	if err != nil {
		return Event{}, err
	}
	fields := []struct {
		name string
		v    *string
	}{
		{"date", re.Date},
		{"event", re.Event},
		{"impact", re.Impact},
		{"probability", re.Probability},
	}
	for _, f := range fields {
		if f.v == nil {
			return Event{}, fmt.Errorf("missing %s", f.name)
		}
	}
	return Event{
		Year:        year,
		Date:        *re.Date,
		Event:       *re.Event,
		Impact:      *re.Impact,
		Probability: *re.Probability,
	}, nil
}

// parseYear accepts only a JSON integer literal.
func parseYear(raw json.RawMessage) (int, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, errors.New("missing year")
	}
	n, err := strconv.ParseInt(s, 10, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("year %s is not an integer", s)
	}
	return int(n), nil
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func degraded(raw string, now time.Time, err error) Outcome {
	return Outcome{
		Summary: degradedSummary,
		Events: []Event{{
			Year:        now.Year(),
			Date:        degradedDate,
			Event:       degradedPrefix + excerpt(raw, excerptRunes) + "...",
			Impact:      degradedImpact,
			Probability: degradedOdds,
		}},
		Degraded: true,
		Err:      err,
	}
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
