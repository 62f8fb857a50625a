package planner

// HarmonicMean combines the in-possession and out-of-possession role ratings.
// Unlike an arithmetic mean it punishes imbalance: a player brilliant in one
// phase but hopeless in the other scores far below a balanced player of equal
// average ability. Returns 0 whenever either input is <= 0.
func HarmonicMean(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return 2 * a * b / (a + b)
}

// MatchUtility scores one (player, slot) pairing for one match. The
// multiplicative combination is a design invariant: any single critical
// failure (near-zero condition, hopeless familiarity) collapses total utility
// regardless of raw talent. A full breakdown is produced on every call.
func MatchUtility(p *Player, slot FormationSlot, sc ScoringContext) UtilityBreakdown {
	rating := p.RoleRatings[slot.Position]
	base := HarmonicMean(rating.IP, rating.OOP)

	familiarity := p.Familiarity[slot.Position]

	b := UtilityBreakdown{
		BaseRating:      base,
		ConditionMult:   sc.ConditionMultiplier(p.State.Condition),
		SharpnessMult:   sc.SharpnessMultiplier(p.State.SharpnessPercent()),
		FamiliarityMult: sc.FamiliarityMultiplier(familiarity),
		FatigueMult:     sc.FatigueMultiplier(p.State, p.Age, p.Attributes),
	}
	b.Utility = b.BaseRating * b.ConditionMult * b.SharpnessMult * b.FamiliarityMult * b.FatigueMult
	return b
}
