package hermes

import (
	"encoding/json"
	"testing"
)

func TestTimelineRequestedParsing(t *testing.T) {
	raw := `{"scenario": "What if Rome never fell?", "depth": "detailed"}`

	var req TimelineRequested
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("failed to parse TimelineRequested: %v", err)
	}
	if req.Scenario != "What if Rome never fell?" {
		t.Errorf("expected scenario, got %q", req.Scenario)
	}
	if req.Depth != "detailed" {
		t.Errorf("expected depth detailed, got %q", req.Depth)
	}
}

func TestSubjects(t *testing.T) {
	if SubjectTimelineGenerated != "timemachine.timeline.generated" {
		t.Errorf("unexpected generated subject %q", SubjectTimelineGenerated)
	}
	if SubjectTimelineRequested != "timemachine.timeline.requested" {
		t.Errorf("unexpected requested subject %q", SubjectTimelineRequested)
	}
}
