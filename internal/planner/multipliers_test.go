package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allImportances = []Importance{ImportanceLow, ImportanceMedium, ImportanceHigh, ImportanceSharpness}

func TestConditionMultiplier_MonotonicAndBounded(t *testing.T) {
	for _, imp := range allImportances {
		sc := NewScoringContext(imp, 0)
		alpha := sc.Condition.Alpha

		prev := -1.0
		for c := 0.0; c <= 100.0; c += 0.5 {
			m := sc.ConditionMultiplier(c)
			assert.GreaterOrEqual(t, m, alpha, "importance %s condition %.1f below floor", imp, c)
			assert.LessOrEqual(t, m, 1.0, "importance %s condition %.1f above 1.0", imp, c)
			assert.GreaterOrEqual(t, m, prev, "importance %s not monotonic at condition %.1f", imp, c)
			prev = m
		}
	}
}

func TestConditionMultiplier_HighImportanceParameters(t *testing.T) {
	sc := NewScoringContext(ImportanceHigh, 0)
	assert.Equal(t, 0.40, sc.Condition.Alpha)
	assert.Equal(t, 75.0, sc.Condition.Threshold)
	assert.Equal(t, 0.12, sc.Condition.Steepness)

	// At the threshold the logistic sits exactly halfway up its range.
	assert.InDelta(t, 0.70, sc.ConditionMultiplier(75), 1e-9)
}

func TestConditionMultiplier_FixtureDensityScaling(t *testing.T) {
	relaxed := NewScoringContext(ImportanceHigh, 7)
	congested := NewScoringContext(ImportanceHigh, 2)

	// Congestion pulls sub-threshold condition further toward the floor.
	assert.Less(t, congested.ConditionMultiplier(60), relaxed.ConditionMultiplier(60))
	// Above the threshold congestion is irrelevant.
	assert.Equal(t, relaxed.ConditionMultiplier(90), congested.ConditionMultiplier(90))
}

func TestSharpnessMultiplier_StandardDiminishingReturns(t *testing.T) {
	sc := NewScoringContext(ImportanceHigh, 0)

	low := sc.SharpnessMultiplier(0)
	mid := sc.SharpnessMultiplier(50)
	full := sc.SharpnessMultiplier(100)

	assert.InDelta(t, sc.Sharpness.Floor, low, 1e-9)
	assert.InDelta(t, sc.Sharpness.Floor+sc.Sharpness.Range, full, 1e-9)
	// Diminishing returns: the first half of the scale is worth more than the second.
	assert.Greater(t, mid-low, full-mid)
}

func TestSharpnessMultiplier_BuildMode(t *testing.T) {
	sc := NewScoringContext(ImportanceSharpness, 0)

	assert.Equal(t, 0.8, sc.SharpnessMultiplier(30))
	assert.Equal(t, 1.2, sc.SharpnessMultiplier(50))
	assert.Equal(t, 1.2, sc.SharpnessMultiplier(75))
	assert.Equal(t, 1.2, sc.SharpnessMultiplier(90))
	assert.Equal(t, 1.0, sc.SharpnessMultiplier(95))
}

func TestFamiliarityMultiplier_HighImportanceTrustsSpecialists(t *testing.T) {
	high := NewScoringContext(ImportanceHigh, 0)
	low := NewScoringContext(ImportanceLow, 0)

	// High importance has the lowest floor but demands higher familiarity.
	assert.Less(t, high.Familiarity.Alpha, low.Familiarity.Alpha)
	assert.Greater(t, high.Familiarity.Threshold, low.Familiarity.Threshold)

	// A makeshift option (familiarity 6) is punished harder when stakes are high.
	assert.Less(t, high.FamiliarityMultiplier(6), low.FamiliarityMultiplier(6))
}

func TestFatigueThreshold_Personalization(t *testing.T) {
	young := FatigueThreshold(21, PhysicalAttributes{NaturalFitness: 17, Stamina: 16, InjuryProneness: 5})
	old := FatigueThreshold(34, PhysicalAttributes{NaturalFitness: 8, Stamina: 8, InjuryProneness: 16})

	assert.Equal(t, 550.0, young) // 400+50+100+50, clamped at ceiling
	assert.Equal(t, 200.0, old)   // 400-100-50-50-150, clamped at floor
	assert.Equal(t, 400.0, FatigueThreshold(27, PhysicalAttributes{NaturalFitness: 12, Stamina: 12, InjuryProneness: 5}))
}

func TestFatigueMultiplier_ImportanceFloors(t *testing.T) {
	attrs := PhysicalAttributes{NaturalFitness: 12, Stamina: 12, InjuryProneness: 5}
	exhausted := PlayerState{Condition: 80, Sharpness: 8000, Fatigue: 600}

	high := NewScoringContext(ImportanceHigh, 0).FatigueMultiplier(exhausted, 27, attrs)
	low := NewScoringContext(ImportanceLow, 0).FatigueMultiplier(exhausted, 27, attrs)

	// High importance pushes players through fatigue; Low preserves them.
	assert.Greater(t, high, low)
	assert.GreaterOrEqual(t, high, 0.55)
	assert.GreaterOrEqual(t, low, 0.35)
}

func TestFatigueMultiplier_JadednessCollapse(t *testing.T) {
	attrs := PhysicalAttributes{NaturalFitness: 10, Stamina: 12, InjuryProneness: 5}
	jaded := PlayerState{Condition: 90, Sharpness: 9000, Fatigue: 100, Jaded: true}

	sc := NewScoringContext(ImportanceHigh, 0)
	assert.Equal(t, sc.Fatigue.Collapse, sc.FatigueMultiplier(jaded, 27, attrs))

	// Without the flag the same low fatigue scores near the top of the range.
	fresh := jaded
	fresh.Jaded = false
	assert.Greater(t, sc.FatigueMultiplier(fresh, 27, attrs), 0.9)
}

func TestSigmoid_OverflowClamp(t *testing.T) {
	assert.Equal(t, 1.0, sigmoid(25))
	assert.Equal(t, 0.0, sigmoid(-25))
	assert.InDelta(t, 0.5, sigmoid(0), 1e-12)
}
