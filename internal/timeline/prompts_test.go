package timeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepth_EventCount(t *testing.T) {
	assert.Equal(t, 10, DepthDetailed.EventCount())
	for _, d := range []Depth{DepthBrief, "", "DETAILED", "extensive", "detailed "} {
		assert.Equal(t, 5, d.EventCount(), "depth %q", d)
	}
}

func TestDepth_Normalize(t *testing.T) {
	assert.Equal(t, DepthDetailed, DepthDetailed.Normalize())
	assert.Equal(t, DepthBrief, Depth("whatever").Normalize())
	assert.Equal(t, DepthBrief, Depth("").Normalize())
}

func TestBuildPrompt_Brief(t *testing.T) {
	facts := []string{"Mahatma Gandhi: Indian lawyer...", "World War II: Global conflict..."}

	system, user := BuildPrompt("What if Gandhi lived longer?", facts, "")

	assert.Contains(t, system, `"timeline_events"`)
	assert.Contains(t, system, `"summary"`)
	assert.Contains(t, system, "do NOT include image fields")
	assert.Contains(t, user, "SCENARIO: What if Gandhi lived longer?")
	assert.Contains(t, user, "- Mahatma Gandhi: Indian lawyer...\n- World War II: Global conflict...")
	assert.Contains(t, user, "exactly 5 key events")
	assert.Contains(t, user, "brief alternate timeline")
	assert.Contains(t, user, "valid JSON only")
}

func TestBuildPrompt_Detailed(t *testing.T) {
	_, user := BuildPrompt("scenario", nil, DepthDetailed)

	assert.Contains(t, user, "exactly 10 key events")
	assert.Contains(t, user, "detailed alternate timeline")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	facts := []string{"a", "b"}
	s1, u1 := BuildPrompt("x", facts, DepthBrief)
	s2, u2 := BuildPrompt("x", facts, DepthBrief)

	assert.Equal(t, s1, s2)
	assert.Equal(t, u1, u2)
}

func TestBuildPrompt_NoFacts(t *testing.T) {
	_, user := BuildPrompt("", nil, DepthBrief)

	assert.False(t, strings.Contains(user, "\n- "), "expected no bullet lines, got %q", user)
}
