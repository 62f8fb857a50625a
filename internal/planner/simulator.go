package planner

import "strings"

// State-transition constants, tuned against observed season-long squads.
const (
	sharpnessGainRate  = 1500.0 // internal units per full match
	sharpnessDecayRate = 180.0  // internal units per rest day
	baseFatigueGain    = 40.0   // per full competitive match
	baseFatigueRecover = 22.0   // per rest day
	baseConditionGain  = 5.0    // per rest day before modifiers
	jadedFatigueLevel  = 420.0  // fixed threshold for the jadedness flag
	lowNaturalFitness  = 12.0   // below this, overload can tip into jadedness
)

// positionDrainRate returns the per-match condition drain for a familiarity
// position. Goalkeepers drain slowest; wide and forward roles fastest.
func positionDrainRate(position string) float64 {
	switch {
	case position == "GK":
		return 18
	case strings.HasPrefix(position, "DC"):
		return 26
	case strings.HasPrefix(position, "D"), strings.HasPrefix(position, "WB"):
		return 30
	case position == "DM" || strings.HasPrefix(position, "MC"):
		return 30
	case strings.HasPrefix(position, "AM"), position == "ML", position == "MR":
		return 34
	case strings.HasPrefix(position, "ST"):
		return 32
	default:
		return 30
	}
}

// positionFatigueMultiplier scales fatigue accumulation per position,
// proportional to drain.
func positionFatigueMultiplier(position string) float64 {
	if position == "GK" {
		return 0.5
	}
	return positionDrainRate(position) / 30.0
}

func matchTypeFactor(t MatchType) float64 {
	switch t {
	case MatchFriendly:
		return 0.7
	case MatchReserve:
		return 0.5
	default:
		return 1.0
	}
}

func intensityFactor(i Intensity) float64 {
	switch i {
	case IntensityHighPress:
		return 1.25
	case IntensityRotation:
		return 0.85
	default:
		return 1.0
	}
}

func ageFatigueModifier(age int) float64 {
	switch {
	case age < 24:
		return 0.9
	case age <= 30:
		return 1.0
	case age <= 33:
		return 1.15
	default:
		return 1.3
	}
}

// fitnessFatigueModifier: fitter players accumulate less fatigue.
func fitnessFatigueModifier(naturalFitness float64) float64 {
	return clamp(1.4-naturalFitness/40.0, 0.7, 1.4)
}

// TrainingRecoveryModifier maps club training intensity to a recovery scale.
// Unknown values fall back to normal.
func TrainingRecoveryModifier(intensity string) float64 {
	switch strings.ToLower(intensity) {
	case "light":
		return 1.15
	case "heavy":
		return 0.85
	default:
		return 1.0
	}
}

// SimulateMatchImpact projects a player's state through playing a match.
// Pure: the input state is not mutated. Zero minutes is a no-op.
func SimulateMatchImpact(state PlayerState, minutes float64, position string, matchType MatchType, intensity Intensity, age int, attrs PhysicalAttributes) PlayerState {
	if minutes <= 0 {
		return state
	}
	share := minutes / 90.0

	drain := share * positionDrainRate(position) * (1.0 - attrs.Stamina/200.0)
	state.Condition = clamp(state.Condition-drain, 0, 100)

	gain := share * sharpnessGainRate * matchTypeFactor(matchType) * (1.0 + attrs.NaturalFitness/400.0)
	state.Sharpness = clamp(state.Sharpness+gain, 0, 10000)

	state.Fatigue += share * baseFatigueGain * intensityFactor(intensity) *
		ageFatigueModifier(age) * fitnessFatigueModifier(attrs.NaturalFitness) *
		positionFatigueMultiplier(position)
	if state.Fatigue < 0 {
		state.Fatigue = 0
	}

	// Jadedness is sticky until explicitly cleared by sustained recovery.
	if state.Fatigue > jadedFatigueLevel && attrs.NaturalFitness < lowNaturalFitness {
		state.Jaded = true
	}

	return state
}

// SimulateRestRecovery projects a player's state through restDays of rest.
// Pure: the input state is not mutated.
func SimulateRestRecovery(state PlayerState, restDays int, trainingModifier float64, attrs PhysicalAttributes) PlayerState {
	if restDays <= 0 {
		return state
	}
	days := float64(restDays)
	if trainingModifier <= 0 {
		trainingModifier = 1.0
	}

	nfMod := 0.8 + attrs.NaturalFitness/50.0
	state.Condition = clamp(state.Condition+days*baseConditionGain*nfMod*trainingModifier, 0, 100)

	decay := days * sharpnessDecayRate * (1.0 - attrs.NaturalFitness/200.0)
	state.Sharpness = clamp(state.Sharpness-decay, 0, 10000)

	state.Fatigue -= days * baseFatigueRecover * (1.0 + attrs.NaturalFitness/100.0) * trainingModifier
	if state.Fatigue < 0 {
		state.Fatigue = 0
	}

	if state.Jaded && state.Fatigue < jadedFatigueLevel/2 {
		state.Jaded = false
	}

	return state
}

// postMatchCondition is the fixed post-match condition table keyed by
// natural-fitness tier.
func postMatchCondition(naturalFitness float64) float64 {
	switch {
	case naturalFitness >= 16:
		return 74
	case naturalFitness >= 12:
		return 70
	default:
		return 66
	}
}

// ProjectCondition estimates a player's condition daysUntil days from now
// given whether they play today, without running the full transition. It uses
// the coarse post-match and recovery-by-days tables and exists for cheap
// synchronous lookahead decisions.
func ProjectCondition(current float64, playsToday bool, daysUntil int, attrs PhysicalAttributes) float64 {
	if !playsToday {
		return clamp(current+float64(daysUntil)*2.5, 0, 100)
	}
	post := postMatchCondition(attrs.NaturalFitness)
	switch {
	case daysUntil >= 5:
		return 95
	case daysUntil == 4:
		return 92
	case daysUntil == 3:
		return 90
	case daysUntil == 2:
		return 83
	default:
		return post
	}
}
