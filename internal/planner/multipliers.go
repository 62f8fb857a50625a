package planner

import "math"

// logisticParams parameterize one bounded logistic multiplier:
// f(x) = Alpha + (1-Alpha) * sigmoid(Steepness * (x - Threshold)).
type logisticParams struct {
	Alpha     float64 // floor of the multiplier
	Threshold float64
	Steepness float64
}

// powerParams parameterize the standard sharpness curve:
// floor + range * (sharpness/100)^exponent.
type powerParams struct {
	Floor    float64
	Range    float64
	Exponent float64
}

// fatigueParams parameterize the inverted logistic on the fatigue ratio,
// plus the flat collapse value applied when a player is jaded.
type fatigueParams struct {
	Floor     float64
	Ratio     float64 // ratio trigger point
	Steepness float64
	Collapse  float64 // jadedness bypass value
}

// ScoringContext carries every importance-dependent numeric parameter
// consumed by the utility model. It is resolved once per match and never
// shared or mutated across matches.
type ScoringContext struct {
	Importance    Importance
	Condition     logisticParams
	Sharpness     powerParams
	SharpnessMode sharpnessMode
	Familiarity   logisticParams
	Fatigue       fatigueParams
	// Days until the following fixture, when known. <= 0 means unknown and
	// disables fixture-density scaling.
	DaysToNext int
}

type sharpnessMode int

const (
	sharpnessStandard sharpnessMode = iota
	// sharpnessBuild rewards the 50-90% band to funnel minutes toward
	// players who need them; used for development-priority fixtures.
	sharpnessBuild
)

var conditionTable = map[Importance]logisticParams{
	ImportanceLow:       {Alpha: 0.55, Threshold: 65, Steepness: 0.10},
	ImportanceMedium:    {Alpha: 0.45, Threshold: 70, Steepness: 0.11},
	ImportanceHigh:      {Alpha: 0.40, Threshold: 75, Steepness: 0.12},
	ImportanceSharpness: {Alpha: 0.60, Threshold: 60, Steepness: 0.08},
}

var sharpnessTable = map[Importance]powerParams{
	ImportanceLow:       {Floor: 0.70, Range: 0.30, Exponent: 0.50},
	ImportanceMedium:    {Floor: 0.65, Range: 0.35, Exponent: 0.60},
	ImportanceHigh:      {Floor: 0.60, Range: 0.40, Exponent: 0.70},
	ImportanceSharpness: {Floor: 0.60, Range: 0.40, Exponent: 0.70},
}

// High importance trusts specialists more: lowest floor, highest threshold.
var familiarityTable = map[Importance]logisticParams{
	ImportanceLow:       {Alpha: 0.55, Threshold: 10, Steepness: 0.45},
	ImportanceMedium:    {Alpha: 0.45, Threshold: 12, Steepness: 0.50},
	ImportanceHigh:      {Alpha: 0.35, Threshold: 14, Steepness: 0.60},
	ImportanceSharpness: {Alpha: 0.60, Threshold: 8, Steepness: 0.40},
}

// High importance pushes players through fatigue (higher floor, later
// trigger); Low importance preserves aggressively (lower floor, earlier
// trigger).
var fatigueTable = map[Importance]fatigueParams{
	ImportanceLow:       {Floor: 0.35, Ratio: 0.75, Steepness: 7.0, Collapse: 0.20},
	ImportanceMedium:    {Floor: 0.45, Ratio: 0.85, Steepness: 6.0, Collapse: 0.30},
	ImportanceHigh:      {Floor: 0.55, Ratio: 0.95, Steepness: 6.0, Collapse: 0.40},
	ImportanceSharpness: {Floor: 0.50, Ratio: 0.85, Steepness: 6.0, Collapse: 0.25},
}

// NewScoringContext resolves the importance-dependent parameter bundle for
// one match. daysToNext is the gap to the following fixture (<= 0 if none).
func NewScoringContext(importance Importance, daysToNext int) ScoringContext {
	mode := sharpnessStandard
	if importance == ImportanceSharpness {
		mode = sharpnessBuild
	}
	return ScoringContext{
		Importance:    importance,
		Condition:     conditionTable[importance],
		Sharpness:     sharpnessTable[importance],
		SharpnessMode: mode,
		Familiarity:   familiarityTable[importance],
		Fatigue:       fatigueTable[importance],
		DaysToNext:    daysToNext,
	}
}

// sigmoid is the standard logistic, clamped to avoid overflow for |z| > 20.
func sigmoid(z float64) float64 {
	if z > 20 {
		return 1.0
	}
	if z < -20 {
		return 0.0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func boundedLogistic(x float64, p logisticParams) float64 {
	return p.Alpha + (1.0-p.Alpha)*sigmoid(p.Steepness*(x-p.Threshold))
}

// ConditionMultiplier maps a condition percentage to [alpha, 1.0].
// When the gap to the next fixture is tight, congestion scaling pulls the
// multiplier further toward the floor for sub-threshold condition.
func (sc ScoringContext) ConditionMultiplier(conditionPct float64) float64 {
	m := boundedLogistic(conditionPct, sc.Condition)
	if sc.DaysToNext > 0 && sc.DaysToNext < 4 && conditionPct < sc.Condition.Threshold {
		density := 1.0 - 0.05*float64(4-sc.DaysToNext)
		m = sc.Condition.Alpha + (m-sc.Condition.Alpha)*density
	}
	return m
}

// SharpnessMultiplier maps sharpness (display 0-100 scale) to a multiplier.
// Standard mode is a diminishing-returns power curve; Build mode inverts the
// usual penalty to reward the 50-90% band.
func (sc ScoringContext) SharpnessMultiplier(sharpnessPct float64) float64 {
	if sc.SharpnessMode == sharpnessBuild {
		switch {
		case sharpnessPct < 50:
			return 0.8
		case sharpnessPct <= 90:
			return 1.2
		default:
			return 1.0
		}
	}
	s := clamp(sharpnessPct, 0, 100) / 100.0
	return sc.Sharpness.Floor + sc.Sharpness.Range*math.Pow(s, sc.Sharpness.Exponent)
}

// FamiliarityMultiplier maps a 1-20 positional familiarity to [alpha, 1.0].
func (sc ScoringContext) FamiliarityMultiplier(familiarity float64) float64 {
	return boundedLogistic(familiarity, sc.Familiarity)
}

// FatigueThreshold derives the personalized fatigue ceiling from age and
// physical attributes. Base 400, adjusted per factor, clamped to [200, 550].
func FatigueThreshold(age int, attrs PhysicalAttributes) float64 {
	threshold := 400.0
	switch {
	case age < 24:
		threshold += 50
	case age > 33:
		threshold -= 100
	case age > 30:
		threshold -= 50
	}
	switch {
	case attrs.NaturalFitness >= 16:
		threshold += 100
	case attrs.NaturalFitness >= 13:
		threshold += 50
	case attrs.NaturalFitness < 10:
		threshold -= 50
	}
	switch {
	case attrs.Stamina >= 15:
		threshold += 50
	case attrs.Stamina < 10:
		threshold -= 50
	}
	switch {
	case attrs.InjuryProneness >= 15:
		threshold -= 150
	case attrs.InjuryProneness >= 10:
		threshold -= 50
	}
	return clamp(threshold, 200, 550)
}

// FatigueMultiplier maps accumulated fatigue to a multiplier via an inverted
// bounded logistic on the ratio of fatigue to the personalized threshold.
// Jadedness bypasses the formula entirely and returns the collapse value.
func (sc ScoringContext) FatigueMultiplier(state PlayerState, age int, attrs PhysicalAttributes) float64 {
	if state.Jaded {
		return sc.Fatigue.Collapse
	}
	threshold := FatigueThreshold(age, attrs)
	ratio := state.Fatigue / threshold
	return sc.Fatigue.Floor + (1.0-sc.Fatigue.Floor)*(1.0-sigmoid(sc.Fatigue.Steepness*(ratio-sc.Fatigue.Ratio)))
}
