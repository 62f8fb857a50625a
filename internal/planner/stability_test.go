package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStabilityCost_ContinuityBreaksTies(t *testing.T) {
	params := DefaultStabilityParams()
	history := NewAssignmentHistory(0)
	history.Record("m1", map[string]string{"silva": "AMR"})

	stay := StabilityCost(history, "silva", "AMR", params)
	swap := StabilityCost(history, "silva", "AML", params)

	assert.Less(t, stay, swap, "continuity must be strictly cheaper than a switch")
	assert.Equal(t, -params.InertiaWeight*params.ContinuityBonus, stay)
	assert.Equal(t, params.InertiaWeight*params.BaseSwitchCost, swap)
}

func TestStabilityCost_NoHistoryNoPreference(t *testing.T) {
	params := DefaultStabilityParams()
	history := NewAssignmentHistory(0)

	assert.Equal(t, 0.0, StabilityCost(history, "debutant", "AMR", params))
	assert.Equal(t, 0.0, StabilityCost(history, "debutant", "GK", params))
}

func TestStabilityCost_AnchoringStacksWithInertia(t *testing.T) {
	params := DefaultStabilityParams()
	history := NewAssignmentHistory(0)
	for _, id := range []string{"m1", "m2", "m3"} {
		history.Record(id, map[string]string{"silva": "AMR"})
	}

	swap := StabilityCost(history, "silva", "AML", params)
	expected := params.InertiaWeight*params.BaseSwitchCost + params.AnchorMultiplier*params.BaseSwitchCost
	assert.Equal(t, expected, swap, "anchored players pay inertia plus the anchor surcharge to move")

	// The anchor slot itself keeps only the continuity discount.
	assert.Equal(t, -params.InertiaWeight*params.ContinuityBonus, StabilityCost(history, "silva", "AMR", params))
}

func TestStabilityCost_BrokenStreakDropsAnchor(t *testing.T) {
	params := DefaultStabilityParams()
	history := NewAssignmentHistory(0)
	history.Record("m1", map[string]string{"silva": "AMR"})
	history.Record("m2", map[string]string{"silva": "AMR"})
	history.Record("m3", map[string]string{"silva": "MC"})

	// Streak of 1 in MC: inertia only, no anchor surcharge on other slots.
	assert.Equal(t, params.InertiaWeight*params.BaseSwitchCost, StabilityCost(history, "silva", "AMR", params))
}

func TestAssignmentHistory_RetentionAndStreaks(t *testing.T) {
	h := NewAssignmentHistory(3)
	for _, id := range []string{"m1", "m2", "m3", "m4"} {
		h.Record(id, map[string]string{"silva": "AMR"})
	}

	entries := h.Entries("silva")
	assert.Len(t, entries, 3, "retention window bounds the log")
	assert.Equal(t, "m4", entries[0].MatchID, "most recent first")

	slot, count := h.ConsecutiveInSlot("silva")
	assert.Equal(t, "AMR", slot)
	assert.Equal(t, 3, count)

	anchor, ok := h.AnchoredSlot("silva", 3)
	assert.True(t, ok)
	assert.Equal(t, "AMR", anchor)

	_, ok = h.AnchoredSlot("silva", 4)
	assert.False(t, ok, "retention caps how long a streak can be observed")
}
