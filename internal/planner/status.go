package planner

// Status flag thresholds.
const (
	flagFatigueRatio    = 0.80
	flagLowCondition    = 70.0
	flagPeakCondition   = 90.0
	flagPeakSharpness   = 90.0
	flagRotationStreak  = 4
	flagInjuryProneness = 14.0
)

// StatusFlags derives the human-readable condition flags shown alongside a
// selected player.
func StatusFlags(p *Player, consecutiveMatches int) []string {
	var flags []string

	if p.State.Fatigue/FatigueThreshold(p.Age, p.Attributes) >= flagFatigueRatio || p.State.Jaded {
		flags = append(flags, "Fatigued")
	}
	if p.State.Condition < flagLowCondition {
		flags = append(flags, "Low Condition")
	}
	if p.State.Condition >= flagPeakCondition && p.State.SharpnessPercent() >= flagPeakSharpness {
		flags = append(flags, "Peak Form")
	}
	if consecutiveMatches >= flagRotationStreak {
		flags = append(flags, "Rotation Risk")
	}
	if p.Attributes.InjuryProneness >= flagInjuryProneness {
		flags = append(flags, "Injury Prone")
	}
	if p.LoanStatus == LoanedIn {
		flags = append(flags, "Loaned In")
	}

	return flags
}
