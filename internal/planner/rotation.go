package planner

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/clubtools/rotation-planner/pkg/logger"
)

// matchPhase tracks the per-match processing state machine.
type matchPhase string

const (
	phasePending            matchPhase = "PENDING"
	phaseEligibilityFilter  matchPhase = "ELIGIBILITY_FILTERED"
	phaseScored             matchPhase = "SCORED"
	phaseSolved             matchPhase = "SOLVED"
	phaseOverridesApplied   matchPhase = "OVERRIDES_APPLIED"
	phaseRecorded           matchPhase = "RECORDED"
	lookAheadMaxGapDays                = 3
	assignedMatchMinutes               = 90.0
)

// Planner drives the multi-match rotation loop. It owns the per-run player
// state snapshot and the assignment history exclusively; the loop is
// inherently sequential because each match's rest derivation depends on the
// prior match's finalized lineup.
type Planner struct {
	squad   []*Player
	byKey   map[string]*Player
	slots   []FormationSlot
	tactic  *TacticConfig
	history *AssignmentHistory
	consec  map[string]int // consecutive-appearance counts per player key
	cfg     PlanConfig
	pricer  ShadowPricer
	log     *logrus.Entry
}

// NewPlanner builds a planner over a working copy of the squad. Player names
// must be unique under case/diacritic-insensitive normalization. history and
// consec may be nil for a fresh run.
func NewPlanner(squad []Player, slots []FormationSlot, tactic *TacticConfig, history *AssignmentHistory, consec map[string]int, cfg PlanConfig) (*Planner, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("no formation slots supplied")
	}
	if history == nil {
		history = NewAssignmentHistory(DefaultHistoryRetention)
	}
	if consec == nil {
		consec = make(map[string]int)
	}
	if tactic != nil && tactic.TrainingIntensity != "" {
		cfg.TrainingIntensity = tactic.TrainingIntensity
	}

	log := logger.WithService("rotation-planner")

	p := &Planner{
		slots:   applySlotMapping(slots, tactic),
		tactic:  tactic,
		history: history,
		consec:  consec,
		cfg:     cfg,
		pricer:  newShadowPricer(cfg),
		log:     log,
	}

	p.byKey = make(map[string]*Player, len(squad))
	for i := range squad {
		player := squad[i] // copy; run-local state is never persisted back
		if player.LoanStatus == LoanedOut {
			log.WithField("player", player.Name).Warn("Loaned-out player in snapshot, skipping")
			continue
		}
		player.State.Condition = NormalizePercent(player.State.Condition)
		player.State.Sharpness = NormalizeSharpness(player.State.Sharpness)
		if player.State.Fatigue < 0 {
			player.State.Fatigue = 0
		}
		key := player.Key()
		if _, dup := p.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate player name %q in squad (names must be unique)", player.Name)
		}
		p.byKey[key] = &player
		p.squad = append(p.squad, &player)
	}
	if len(p.squad) == 0 {
		return nil, fmt.Errorf("no selectable players in squad")
	}

	return p, nil
}

// applySlotMapping renames slots through the tactic's slot->slot mapping.
func applySlotMapping(slots []FormationSlot, tactic *TacticConfig) []FormationSlot {
	out := make([]FormationSlot, len(slots))
	copy(out, slots)
	if tactic == nil || len(tactic.Mapping) == 0 {
		return out
	}
	for i, s := range out {
		if mapped, ok := tactic.Mapping[s.Name]; ok {
			out[i].Name = mapped
		}
	}
	return out
}

// Plan runs the rotation loop over the matches in chronological order and
// returns one resolved lineup per match.
func (pl *Planner) Plan(matches []Match) (*PlanResult, error) {
	if len(matches) == 0 {
		return nil, fmt.Errorf("no matches supplied")
	}
	for _, m := range matches {
		if m.Date.IsZero() {
			return nil, fmt.Errorf("match %q has no parseable date; match ordering is foundational", m.ID)
		}
		if _, err := ParseImportance(string(m.Importance)); err != nil {
			return nil, fmt.Errorf("match %q: %w", m.ID, err)
		}
	}
	ordered := make([]Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	planID := uuid.New().String()
	runLog := logger.WithPlanContext(planID, len(ordered), len(pl.squad))
	runLog.Info("Starting rotation plan")

	trainMod := TrainingRecoveryModifier(pl.cfg.TrainingIntensity)
	result := &PlanResult{PlanID: planID, Matches: make([]MatchPlan, 0, len(ordered))}
	autoRest := make(map[string]bool)

	for k := range ordered {
		match := &ordered[k]
		phase := phasePending
		matchLog := logger.WithMatchContext(planID, match.ID, k)

		daysToNext := 0
		if k+1 < len(ordered) {
			daysToNext = daysBetween(match.Date, ordered[k+1].Date)
		}
		sc := NewScoringContext(match.Importance, daysToNext)

		// (a) eligibility filtering
		eligible, restedNow := pl.filterEligible(match, ordered, k, autoRest, matchLog)
		phase = phaseEligibilityFilter
		matchLog.WithFields(logrus.Fields{
			"phase":    phase,
			"eligible": len(eligible),
			"rested":   len(restedNow),
		}).Debug("Eligibility filtering complete")

		// active slots = formation minus slots satisfied by a manual override
		activeSlots, overrides := pl.resolveOverrides(match, matchLog)

		// (b)-(d) cost assembly: negated utility + shadow + stability
		costs, breakdowns, shadows := pl.buildCostMatrix(eligible, activeSlots, sc, ordered, k)
		phase = phaseScored
		matchLog.WithFields(logrus.Fields{
			"phase": phase,
			"rows":  len(eligible),
			"cols":  len(activeSlots),
		}).Debug("Cost matrix built")

		// (e) exact assignment solve
		solved := map[int]int{}
		if len(eligible) > 0 && len(activeSlots) > 0 {
			solved = FeasibleAssignments(costs, pl.cfg.BigM)
		}
		phase = phaseSolved

		// (f) apply overrides and record the finalized lineup
		plan, recorded := pl.composePlan(match, sc, eligible, activeSlots, solved, overrides, breakdowns, shadows, restedNow)
		phase = phaseOverridesApplied

		pl.history.Record(match.ID, recorded)
		pl.updateConsecutive(recorded)
		phase = phaseRecorded
		matchLog.WithFields(logrus.Fields{
			"phase":      phase,
			"selections": len(plan.Selections),
			"open_slots": len(plan.OpenSlots),
		}).Info("Match lineup recorded")

		result.Matches = append(result.Matches, plan)

		// (g) propagate state and derive the next iteration's auto-rest set
		pl.advanceState(recorded, daysToNext, trainMod)
		autoRest = pl.deriveAutoRest(ordered, k)
	}

	runLog.Info("Rotation plan complete")
	return result, nil
}

// filterEligible removes injured, banned, manually rejected, override-consumed
// and auto-rested players. The auto-rest carryover is discarded for High
// importance: rotation deference never applies to must-win fixtures. A
// look-ahead rule additionally pre-rests first-team players for a Low/Medium
// match when a High match follows within 3 days and their projected condition
// would fall below the safety floor.
func (pl *Planner) filterEligible(match *Match, matches []Match, k int, autoRest map[string]bool, log *logrus.Entry) (eligible []*Player, restedNow []string) {
	rejected := make(map[string]bool, len(match.Rejected))
	for _, name := range match.Rejected {
		rejected[NormalizeName(name)] = true
	}
	consumed := make(map[string]bool, len(match.Overrides))
	for _, name := range match.Overrides {
		consumed[NormalizeName(name)] = true
	}

	lookAhead := false
	gapToNext := 0
	if k+1 < len(matches) && (match.Importance == ImportanceLow || match.Importance == ImportanceMedium) {
		gapToNext = daysBetween(match.Date, matches[k+1].Date)
		lookAhead = matches[k+1].Importance == ImportanceHigh && gapToNext < lookAheadMaxGapDays
	}

	for _, p := range pl.squad {
		key := p.Key()
		switch {
		case p.Injured, p.Banned:
			continue
		case rejected[key], consumed[key]:
			continue
		case autoRest[key] && match.Importance != ImportanceHigh:
			restedNow = append(restedNow, p.Name)
			continue
		}
		if lookAhead && p.CurrentAbility >= pl.cfg.KeyPlayerCAThreshold {
			projected := ProjectCondition(p.State.Condition, true, gapToNext, p.Attributes)
			if projected < pl.cfg.SafetyCondition {
				log.WithFields(logrus.Fields{
					"player":              p.Name,
					"projected_condition": projected,
				}).Debug("Pre-resting key player ahead of high-importance fixture")
				restedNow = append(restedNow, p.Name)
				continue
			}
		}
		eligible = append(eligible, p)
	}
	return eligible, restedNow
}

// resolveOverrides splits the formation into solver-active slots and manually
// forced assignments. Overrides naming unknown players are logged and the
// slot is returned to the solver.
func (pl *Planner) resolveOverrides(match *Match, log *logrus.Entry) ([]FormationSlot, map[string]*Player) {
	overrides := make(map[string]*Player)
	overriddenSlots := make(map[string]bool)
	for slotName, playerName := range match.Overrides {
		p, ok := pl.byKey[NormalizeName(playerName)]
		if !ok {
			log.WithFields(logrus.Fields{
				"slot":   slotName,
				"player": playerName,
			}).Warn("Override references unknown player, slot returned to solver")
			continue
		}
		overrides[slotName] = p
		overriddenSlots[slotName] = true
	}

	active := make([]FormationSlot, 0, len(pl.slots))
	for _, s := range pl.slots {
		if !overriddenSlots[s.Name] {
			active = append(active, s)
		}
	}
	return active, overrides
}

// buildCostMatrix assembles the dense players x slots cost matrix: negated
// utility plus shadow cost plus stability cost, with Big-M for pairings the
// player cannot sensibly fill. Shadow cost is computed once per player.
func (pl *Planner) buildCostMatrix(eligible []*Player, slots []FormationSlot, sc ScoringContext, matches []Match, k int) (*mat.Dense, [][]UtilityBreakdown, []float64) {
	rows, cols := len(eligible), len(slots)
	shadows := make([]float64, rows)
	breakdowns := make([][]UtilityBreakdown, rows)
	if rows == 0 || cols == 0 {
		return mat.NewDense(1, 1, nil), breakdowns, shadows
	}

	stabilityScale := 1.0
	if pl.tactic != nil && pl.tactic.StabilityWeight > 0 {
		stabilityScale = pl.tactic.StabilityWeight
	}

	costs := mat.NewDense(rows, cols, nil)
	for i, p := range eligible {
		shadows[i] = pl.pricer.Cost(p, k, matches, pl.cfg)
		breakdowns[i] = make([]UtilityBreakdown, cols)
		for j, slot := range slots {
			b := MatchUtility(p, slot, sc)
			breakdowns[i][j] = b
			if b.BaseRating <= 0 || p.Familiarity[slot.Position] < 1 {
				// No role rating or no familiarity at all: forbidden, but
				// kept finite so the solver still completes the matching.
				costs.Set(i, j, pl.cfg.BigM)
				continue
			}
			cost := -b.Utility + shadows[i] + stabilityScale*StabilityCost(pl.history, p.Key(), slot.Name, pl.cfg.Stability)
			costs.Set(i, j, cost)
		}
	}
	return costs, breakdowns, shadows
}

// composePlan turns the solver output plus manual overrides into the
// user-facing match plan, and returns the playerKey -> slot map to record.
// Override selections are scored with the same context as solver selections
// so their breakdowns carry the fixture-density scaling too.
func (pl *Planner) composePlan(match *Match, sc ScoringContext, eligible []*Player, activeSlots []FormationSlot, solved map[int]int, overrides map[string]*Player, breakdowns [][]UtilityBreakdown, shadows []float64, restedNow []string) (MatchPlan, map[string]string) {
	plan := MatchPlan{
		MatchID:    match.ID,
		Date:       match.Date,
		Importance: match.Importance,
		Rested:     restedNow,
	}
	recorded := make(map[string]string)

	filled := make(map[string]bool)
	for row, col := range solved {
		p := eligible[row]
		slot := activeSlots[col]
		b := breakdowns[row][col]
		plan.Selections = append(plan.Selections, pl.newSelection(p, slot.Name, b, shadows[row]))
		recorded[p.Key()] = slot.Name
		filled[slot.Name] = true
	}

	for slotName, p := range overrides {
		slot := pl.slotByName(slotName)
		b := MatchUtility(p, slot, sc)
		plan.Selections = append(plan.Selections, pl.newSelection(p, slotName, b, 0))
		recorded[p.Key()] = slotName
		filled[slotName] = true
	}

	for _, s := range pl.slots {
		if !filled[s.Name] {
			plan.OpenSlots = append(plan.OpenSlots, s.Name)
		}
	}
	sort.Strings(plan.OpenSlots)
	sort.Slice(plan.Selections, func(i, j int) bool { return plan.Selections[i].Slot < plan.Selections[j].Slot })

	return plan, recorded
}

func (pl *Planner) slotByName(name string) FormationSlot {
	for _, s := range pl.slots {
		if s.Name == name {
			return s
		}
	}
	return FormationSlot{Name: name, Position: name}
}

func (pl *Planner) newSelection(p *Player, slotName string, b UtilityBreakdown, shadow float64) SlotSelection {
	return SlotSelection{
		Slot:       slotName,
		Player:     p.Name,
		Rating:     b.Utility,
		Condition:  p.State.Condition,
		Sharpness:  p.State.SharpnessPercent(),
		Fatigue:    p.State.Fatigue,
		ShadowCost: shadow,
		Age:        p.Age,
		Flags:      StatusFlags(p, pl.consec[p.Key()]+1),
		Breakdown:  b,
	}
}

// updateConsecutive increments the appearance streak for everyone who played
// and resets it for everyone who did not.
func (pl *Planner) updateConsecutive(recorded map[string]string) {
	for _, p := range pl.squad {
		if _, played := recorded[p.Key()]; played {
			pl.consec[p.Key()]++
		} else {
			pl.consec[p.Key()] = 0
		}
	}
}

// advanceState applies the play transition to everyone who was selected and
// then the rest transition for the gap to the next match to the whole squad.
func (pl *Planner) advanceState(recorded map[string]string, daysToNext int, trainMod float64) {
	for _, p := range pl.squad {
		if slotName, played := recorded[p.Key()]; played {
			pos := pl.slotByName(slotName).Position
			p.State = SimulateMatchImpact(p.State, assignedMatchMinutes, pos, MatchCompetitive, IntensityNormal, p.Age, p.Attributes)
		}
	}
	if daysToNext > 0 {
		for _, p := range pl.squad {
			p.State = SimulateRestRecovery(p.State, daysToNext, trainMod, p.Attributes)
		}
	}
}

// deriveAutoRest recomputes the proactive rest set after match k, scanning
// the full remaining schedule so a player can be rested several matches ahead
// of a distant but critical fixture.
func (pl *Planner) deriveAutoRest(matches []Match, k int) map[string]bool {
	rest := make(map[string]bool)
	if k+1 >= len(matches) {
		return rest
	}

	highUpcoming := false
	for j := k + 1; j < len(matches); j++ {
		if matches[j].Importance == ImportanceHigh {
			highUpcoming = true
			break
		}
	}

	for _, p := range pl.squad {
		ratio := p.State.Fatigue / FatigueThreshold(p.Age, p.Attributes)
		degraded := ratio > pl.cfg.RestFatigueRatio || p.State.Condition < pl.cfg.RestConditionFloor
		critical := p.State.Jaded || ratio > 1.0 || p.State.Condition < pl.cfg.RestConditionFloor-10

		// With a High fixture ahead, rest on the softer thresholds; without
		// one, only a critically degraded player sits out.
		if (highUpcoming && degraded) || critical {
			rest[p.Key()] = true
		}
	}
	return rest
}
