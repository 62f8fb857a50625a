package planner

import (
	"math"
	"time"
)

// Per-importance weights making near-term, high-stakes fixtures dominate the
// shadow sum. Far-off or low-stakes matches contribute negligibly through the
// discount factor.
var shadowImportanceWeights = map[Importance]float64{
	ImportanceLow:       0.1,
	ImportanceMedium:    1.5,
	ImportanceHigh:      3.0,
	ImportanceSharpness: 0.5,
}

// ShadowPricer computes the opportunity cost of fielding a player at match
// index k instead of preserving them for the remaining horizon. The result is
// always >= 0: a resting day never makes a future match worse.
type ShadowPricer interface {
	Cost(p *Player, k int, matches []Match, cfg PlanConfig) float64
}

// keyPlayerMultiplier discounts the shadow cost for fringe players so the
// mechanism only actively protects first-team-quality players.
func keyPlayerMultiplier(p *Player, cfg PlanConfig) float64 {
	if p.CurrentAbility >= cfg.KeyPlayerCAThreshold {
		return 1.0
	}
	return 0.5
}

// bestPosition returns the position where the player's phase-balanced rating
// peaks, used to value hypothetical future appearances.
func bestPosition(p *Player) string {
	best, bestScore := "", -1.0
	for pos, r := range p.RoleRatings {
		if score := HarmonicMean(r.IP, r.OOP); score > bestScore {
			best, bestScore = pos, score
		}
	}
	return best
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// SimulationShadowPricer is the full-fidelity variant: it projects the
// player's state through both hypotheses (play now then recover, vs rest now)
// across every remaining match and scores the utility gap at each.
type SimulationShadowPricer struct {
	TrainingModifier float64
}

func (sp *SimulationShadowPricer) Cost(p *Player, k int, matches []Match, cfg PlanConfig) float64 {
	if k >= len(matches)-1 {
		return 0
	}
	pos := bestPosition(p)
	if pos == "" {
		return 0
	}
	trainMod := sp.TrainingModifier
	if trainMod <= 0 {
		trainMod = 1.0
	}

	slot := FormationSlot{Name: pos, Position: pos}
	statePlayed := SimulateMatchImpact(p.State, 90, pos, MatchCompetitive, IntensityNormal, p.Age, p.Attributes)
	stateRested := p.State

	total := 0.0
	prevDate := matches[k].Date
	for j := k + 1; j < len(matches); j++ {
		gap := daysBetween(prevDate, matches[j].Date)
		statePlayed = SimulateRestRecovery(statePlayed, gap, trainMod, p.Attributes)
		stateRested = SimulateRestRecovery(stateRested, gap, trainMod, p.Attributes)
		prevDate = matches[j].Date

		sc := NewScoringContext(matches[j].Importance, 0)
		played := *p
		played.State = statePlayed
		rested := *p
		rested.State = stateRested

		loss := math.Max(0, MatchUtility(&rested, slot, sc).Utility-MatchUtility(&played, slot, sc).Utility)
		total += math.Pow(cfg.ShadowDiscount, float64(j-k)) * shadowImportanceWeights[matches[j].Importance] * loss
	}

	return total * keyPlayerMultiplier(p, cfg)
}

// ProxyShadowPricer is the cheap constant-rating heuristic used when a full
// utility function is not wired up. It approximates the per-match utility gap
// from the coarse condition projector alone, trading fidelity for
// O(players x matches) speed.
type ProxyShadowPricer struct{}

// proxyRestEdge floors the rested projection above the played one. The coarse
// played and rested tables otherwise cross at short gaps for mid-condition
// players, and the projected gap reads as zero right where it matters.
const proxyRestEdge = 5.0

func (sp *ProxyShadowPricer) Cost(p *Player, k int, matches []Match, cfg PlanConfig) float64 {
	if k >= len(matches)-1 {
		return 0
	}
	pos := bestPosition(p)
	if pos == "" {
		return 0
	}
	base := HarmonicMean(p.RoleRatings[pos].IP, p.RoleRatings[pos].OOP)

	total := 0.0
	for j := k + 1; j < len(matches); j++ {
		gap := daysBetween(matches[k].Date, matches[j].Date)
		condPlayed := ProjectCondition(p.State.Condition, true, gap, p.Attributes)
		condRested := math.Max(
			ProjectCondition(p.State.Condition, false, gap, p.Attributes),
			math.Min(condPlayed+proxyRestEdge, 100))

		sc := NewScoringContext(matches[j].Importance, 0)
		loss := math.Max(0, base*(sc.ConditionMultiplier(condRested)-sc.ConditionMultiplier(condPlayed)))
		total += math.Pow(cfg.ShadowDiscount, float64(j-k)) * shadowImportanceWeights[matches[j].Importance] * loss
	}

	return total * keyPlayerMultiplier(p, cfg)
}

// newShadowPricer selects the pricer variant for a run.
func newShadowPricer(cfg PlanConfig) ShadowPricer {
	if cfg.UseProxyShadow {
		return &ProxyShadowPricer{}
	}
	return &SimulationShadowPricer{TrainingModifier: TrainingRecoveryModifier(cfg.TrainingIntensity)}
}
