package planner

// StabilityCost returns the inertia + anchoring cost of assigning the player
// to slot, given their assignment history. The optimizer prefers not to
// switch a polyvalent player's slot absent a meaningful utility gain, which
// prevents oscillation between equally-good alternatives.
func StabilityCost(history *AssignmentHistory, playerKey, slot string, params StabilityParams) float64 {
	last := history.LastSlot(playerKey)
	if last == "" {
		// Never assigned anywhere: no preference in either direction.
		return 0
	}

	var cost float64
	if slot == last {
		cost = -params.InertiaWeight * params.ContinuityBonus
	} else {
		cost = params.InertiaWeight * params.BaseSwitchCost
	}

	// Anchoring stacks with inertia: sustained single-slot occupancy raises
	// the price of every other slot further.
	if anchor, ok := history.AnchoredSlot(playerKey, params.AnchorThreshold); ok && slot != anchor {
		cost += params.AnchorMultiplier * params.BaseSwitchCost
	}

	return cost
}
