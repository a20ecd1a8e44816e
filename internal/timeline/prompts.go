package timeline

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert historian and speculative fiction writer. You create plausible alternate history timelines based on hypothetical changes to real historical events.

When given a scenario:
1. Analyze the historical context provided
2. Build a believable chain of cause and effect
3. Produce specific events with dates, descriptions and impacts
4. Stay historically plausible while exploring the consequences

Respond with a single JSON object of this shape:
{
  "summary": "Brief overview of how this change would have affected history",
  "timeline_events": [
    {
      "year": 1947,
      "date": "August 15, 1947",
      "event": "Specific event description",
      "impact": "Immediate and long-term consequences",
      "probability": "High|Medium|Low"
    }
  ]
}

Rules:
- "year" is always an integer
- every event has all five keys: year, date, event, impact, probability
- list events in chronological order
- do NOT include image fields (image_url, image_description or similar); imagery is added later`

const userPromptTemplate = `SCENARIO: %s

HISTORICAL CONTEXT:
%s

Generate a %s alternate timeline with exactly %d key events showing how this change would have rippled through history. Focus on major political, social and technological consequences.

Return valid JSON only, with no markdown fences or surrounding text.`

// BuildPrompt returns the system instructions and user prompt for one
// generation. It performs no I/O.
func BuildPrompt(scenario string, facts []string, depth Depth) (system, user string) {
	depth = depth.Normalize()

	lines := make([]string, len(facts))
	for i, f := range facts {
		lines[i] = "- " + f
	}

	user = fmt.Sprintf(userPromptTemplate, scenario, strings.Join(lines, "\n"), depth, depth.EventCount())
	return systemPrompt, user
}
