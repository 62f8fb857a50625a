package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rotationTestPlayer(name, position string, ip, oop, condition float64) Player {
	return Player{
		Name:           name,
		Age:            26,
		CurrentAbility: 130,
		Familiarity:    map[string]float64{position: 18},
		RoleRatings:    map[string]RoleRating{position: {IP: ip, OOP: oop}},
		State:          PlayerState{Condition: condition, Sharpness: 8500, Fatigue: 80},
		Attributes:     PhysicalAttributes{NaturalFitness: 14, Stamina: 14, InjuryProneness: 6},
	}
}

func findSelection(t *testing.T, plan MatchPlan, slot string) SlotSelection {
	t.Helper()
	for _, sel := range plan.Selections {
		if sel.Slot == slot {
			return sel
		}
	}
	t.Fatalf("slot %s not filled in match %s", slot, plan.MatchID)
	return SlotSelection{}
}

func TestPlan_FitKeeperGetsTheGloves(t *testing.T) {
	squad := []Player{
		rotationTestPlayer("Keeper", "GK", 140, 150, 95),
		rotationTestPlayer("Stopper", "DC", 145, 140, 92),
	}
	slots := []FormationSlot{
		{Name: "GK", Position: "GK"},
		{Name: "DC1", Position: "DC"},
	}

	pl, err := NewPlanner(squad, slots, nil, nil, nil, DefaultPlanConfig())
	require.NoError(t, err)

	result, err := pl.Plan([]Match{{ID: "m1", Date: day(0), Importance: ImportanceLow}})
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.NotEmpty(t, result.PlanID)

	plan := result.Matches[0]
	require.Len(t, plan.Selections, 2)
	assert.Empty(t, plan.OpenSlots)

	gk := findSelection(t, plan, "GK")
	assert.Equal(t, "Keeper", gk.Player)
	assert.Greater(t, gk.Rating, 0.0)
	assert.Equal(t, 95.0, gk.Condition)
}

func TestPlan_StabilityBreaksExactTies(t *testing.T) {
	winger := func(name string) Player {
		return Player{
			Name:           name,
			Age:            24,
			CurrentAbility: 135,
			Familiarity:    map[string]float64{"AMR": 18, "AML": 18},
			RoleRatings: map[string]RoleRating{
				"AMR": {IP: 150, OOP: 140},
				"AML": {IP: 150, OOP: 140},
			},
			State:      PlayerState{Condition: 93, Sharpness: 8800, Fatigue: 90},
			Attributes: PhysicalAttributes{NaturalFitness: 14, Stamina: 14, InjuryProneness: 6},
		}
	}
	squad := []Player{winger("Ayew"), winger("Bowen")}
	slots := []FormationSlot{
		{Name: "AMR", Position: "AMR"},
		{Name: "AML", Position: "AML"},
	}

	history := NewAssignmentHistory(0)
	history.Record("prev", map[string]string{"ayew": "AMR"})

	pl, err := NewPlanner(squad, slots, nil, history, nil, DefaultPlanConfig())
	require.NoError(t, err)

	result, err := pl.Plan([]Match{{ID: "m1", Date: day(0), Importance: ImportanceLow}})
	require.NoError(t, err)

	plan := result.Matches[0]
	assert.Equal(t, "Ayew", findSelection(t, plan, "AMR").Player, "incumbent keeps the slot on an otherwise exact tie")
	assert.Equal(t, "Bowen", findSelection(t, plan, "AML").Player)
}

func TestPlan_KeyPlayerPreRestedAheadOfHighFixture(t *testing.T) {
	star := rotationTestPlayer("Star", "ST", 160, 150, 95)
	star.CurrentAbility = 160
	backup := rotationTestPlayer("Backup", "ST", 120, 110, 95)
	backup.CurrentAbility = 120

	slots := []FormationSlot{{Name: "ST", Position: "ST"}}
	matches := []Match{
		{ID: "cup", Date: day(0), Importance: ImportanceLow},
		{ID: "derby", Date: day(2), Importance: ImportanceHigh},
	}

	pl, err := NewPlanner([]Player{star, backup}, slots, nil, nil, nil, DefaultPlanConfig())
	require.NoError(t, err)

	result, err := pl.Plan(matches)
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)

	cup := result.Matches[0]
	assert.Contains(t, cup.Rested, "Star", "playing the cup tie would leave the star short for the derby")
	assert.Equal(t, "Backup", findSelection(t, cup, "ST").Player)

	derby := result.Matches[1]
	assert.Equal(t, "Star", findSelection(t, derby, "ST").Player)
}

func TestPlan_AutoRestCarryover(t *testing.T) {
	weary := rotationTestPlayer("Weary", "DC", 145, 140, 65)
	weary.State.Fatigue = 500
	weary.State.Jaded = true
	fresh := rotationTestPlayer("Fresh", "DC", 145, 140, 95)

	slots := []FormationSlot{{Name: "DC1", Position: "DC"}}

	t.Run("low importance defers to rotation", func(t *testing.T) {
		pl, err := NewPlanner([]Player{weary, fresh}, slots, nil, nil, nil, DefaultPlanConfig())
		require.NoError(t, err)

		result, err := pl.Plan([]Match{
			{ID: "m1", Date: day(0), Importance: ImportanceLow},
			{ID: "m2", Date: day(3), Importance: ImportanceLow},
		})
		require.NoError(t, err)

		assert.Contains(t, result.Matches[1].Rested, "Weary")
		assert.Equal(t, "Fresh", findSelection(t, result.Matches[1], "DC1").Player)
	})

	t.Run("high importance discards the carryover", func(t *testing.T) {
		pl, err := NewPlanner([]Player{weary, fresh}, slots, nil, nil, nil, DefaultPlanConfig())
		require.NoError(t, err)

		result, err := pl.Plan([]Match{
			{ID: "m1", Date: day(0), Importance: ImportanceLow},
			{ID: "m2", Date: day(3), Importance: ImportanceHigh},
		})
		require.NoError(t, err)

		assert.NotContains(t, result.Matches[1].Rested, "Weary", "must-win fixtures pick from the full pool")
		assert.Equal(t, "Fresh", findSelection(t, result.Matches[1], "DC1").Player)
	})
}

func TestPlan_OverrideConsumesPlayerAndSlot(t *testing.T) {
	winger := Player{
		Name:           "Winger",
		Age:            25,
		CurrentAbility: 130,
		Familiarity:    map[string]float64{"AMR": 17, "ST": 14},
		RoleRatings: map[string]RoleRating{
			"AMR": {IP: 150, OOP: 140},
			"ST":  {IP: 130, OOP: 120},
		},
		State:      PlayerState{Condition: 94, Sharpness: 8500, Fatigue: 70},
		Attributes: PhysicalAttributes{NaturalFitness: 14, Stamina: 14, InjuryProneness: 6},
	}
	striker := rotationTestPlayer("Striker", "ST", 150, 140, 94)

	slots := []FormationSlot{
		{Name: "ST", Position: "ST"},
		{Name: "AMR", Position: "AMR"},
	}

	pl, err := NewPlanner([]Player{winger, striker}, slots, nil, nil, nil, DefaultPlanConfig())
	require.NoError(t, err)

	match := Match{
		ID:         "m1",
		Date:       day(0),
		Importance: ImportanceMedium,
		Overrides:  map[string]string{"ST": "Winger"},
	}
	result, err := pl.Plan([]Match{match})
	require.NoError(t, err)

	plan := result.Matches[0]
	require.Len(t, plan.Selections, 1)
	assert.Equal(t, "ST", plan.Selections[0].Slot)
	assert.Equal(t, "Winger", plan.Selections[0].Player)
	// The striker cannot cover the wing, so the freed slot stays open.
	assert.Equal(t, []string{"AMR"}, plan.OpenSlots)
}

func TestPlan_OverrideBreakdownUsesFixtureGap(t *testing.T) {
	target := rotationTestPlayer("Target", "ST", 150, 140, 60)
	slots := []FormationSlot{{Name: "ST", Position: "ST"}}

	pl, err := NewPlanner([]Player{target}, slots, nil, nil, nil, DefaultPlanConfig())
	require.NoError(t, err)

	result, err := pl.Plan([]Match{
		{ID: "m1", Date: day(0), Importance: ImportanceLow, Overrides: map[string]string{"ST": "Target"}},
		{ID: "m2", Date: day(2), Importance: ImportanceLow},
	})
	require.NoError(t, err)

	sel := findSelection(t, result.Matches[0], "ST")
	want := NewScoringContext(ImportanceLow, 2).ConditionMultiplier(60)
	assert.InDelta(t, want, sel.Breakdown.ConditionMult, 1e-9,
		"override breakdowns score with the match's fixture gap")
	assert.Less(t, sel.Breakdown.ConditionMult,
		NewScoringContext(ImportanceLow, 0).ConditionMultiplier(60))
}

func TestPlan_UnknownOverrideReturnsSlotToSolver(t *testing.T) {
	striker := rotationTestPlayer("Striker", "ST", 150, 140, 94)
	slots := []FormationSlot{{Name: "ST", Position: "ST"}}

	pl, err := NewPlanner([]Player{striker}, slots, nil, nil, nil, DefaultPlanConfig())
	require.NoError(t, err)

	match := Match{
		ID:         "m1",
		Date:       day(0),
		Importance: ImportanceLow,
		Overrides:  map[string]string{"ST": "Ghost"},
	}
	result, err := pl.Plan([]Match{match})
	require.NoError(t, err)

	assert.Equal(t, "Striker", findSelection(t, result.Matches[0], "ST").Player)
}

func TestPlan_InfeasibleSlotLeftOpen(t *testing.T) {
	squad := []Player{rotationTestPlayer("Stopper", "DC", 145, 140, 92)}
	slots := []FormationSlot{
		{Name: "GK", Position: "GK"},
		{Name: "DC1", Position: "DC"},
	}

	pl, err := NewPlanner(squad, slots, nil, nil, nil, DefaultPlanConfig())
	require.NoError(t, err)

	result, err := pl.Plan([]Match{{ID: "m1", Date: day(0), Importance: ImportanceLow}})
	require.NoError(t, err)

	plan := result.Matches[0]
	require.Len(t, plan.Selections, 1)
	assert.Equal(t, "DC1", plan.Selections[0].Slot)
	assert.Equal(t, []string{"GK"}, plan.OpenSlots)
}

func TestPlan_RejectedPlayersExcluded(t *testing.T) {
	first := rotationTestPlayer("First", "ST", 160, 150, 95)
	second := rotationTestPlayer("Second", "ST", 120, 110, 95)
	slots := []FormationSlot{{Name: "ST", Position: "ST"}}

	pl, err := NewPlanner([]Player{first, second}, slots, nil, nil, nil, DefaultPlanConfig())
	require.NoError(t, err)

	match := Match{ID: "m1", Date: day(0), Importance: ImportanceLow, Rejected: []string{"First"}}
	result, err := pl.Plan([]Match{match})
	require.NoError(t, err)

	assert.Equal(t, "Second", findSelection(t, result.Matches[0], "ST").Player)
}

func TestPlan_MatchesSortedChronologically(t *testing.T) {
	squad := []Player{rotationTestPlayer("Stopper", "DC", 145, 140, 92)}
	slots := []FormationSlot{{Name: "DC1", Position: "DC"}}

	pl, err := NewPlanner(squad, slots, nil, nil, nil, DefaultPlanConfig())
	require.NoError(t, err)

	result, err := pl.Plan([]Match{
		{ID: "later", Date: day(5), Importance: ImportanceLow},
		{ID: "sooner", Date: day(1), Importance: ImportanceLow},
	})
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, "sooner", result.Matches[0].MatchID)
	assert.Equal(t, "later", result.Matches[1].MatchID)
	assert.True(t, result.Matches[0].Date.Before(result.Matches[1].Date))
}

func TestPlan_HistoryRecordedPerMatch(t *testing.T) {
	squad := []Player{rotationTestPlayer("Stopper", "DC", 145, 140, 92)}
	slots := []FormationSlot{{Name: "DC1", Position: "DC"}}
	history := NewAssignmentHistory(0)

	pl, err := NewPlanner(squad, slots, nil, history, nil, DefaultPlanConfig())
	require.NoError(t, err)

	_, err = pl.Plan([]Match{
		{ID: "m1", Date: day(0), Importance: ImportanceLow},
		{ID: "m2", Date: day(4), Importance: ImportanceLow},
	})
	require.NoError(t, err)

	assert.Equal(t, "DC1", history.LastSlot("stopper"))
	assert.Len(t, history.Entries("stopper"), 2)
}

func TestPlan_ValidationErrors(t *testing.T) {
	squad := []Player{rotationTestPlayer("Stopper", "DC", 145, 140, 92)}
	slots := []FormationSlot{{Name: "DC1", Position: "DC"}}

	pl, err := NewPlanner(squad, slots, nil, nil, nil, DefaultPlanConfig())
	require.NoError(t, err)

	_, err = pl.Plan(nil)
	assert.Error(t, err, "empty schedule")

	_, err = pl.Plan([]Match{{ID: "m1", Importance: ImportanceLow}})
	assert.Error(t, err, "zero date must fail fast, not sort arbitrarily")

	_, err = pl.Plan([]Match{{ID: "m1", Date: time.Now(), Importance: Importance("Critical")}})
	assert.Error(t, err, "unknown importance tier")
}

func TestNewPlanner_DuplicateNormalizedNames(t *testing.T) {
	squad := []Player{
		rotationTestPlayer("Sørloth", "ST", 150, 140, 92),
		rotationTestPlayer("Sorloth", "ST", 130, 120, 90),
	}
	slots := []FormationSlot{{Name: "ST", Position: "ST"}}

	_, err := NewPlanner(squad, slots, nil, nil, nil, DefaultPlanConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewPlanner_SkipsLoanedOutPlayers(t *testing.T) {
	away := rotationTestPlayer("Away", "ST", 150, 140, 92)
	away.LoanStatus = LoanedOut

	_, err := NewPlanner([]Player{away}, []FormationSlot{{Name: "ST", Position: "ST"}}, nil, nil, nil, DefaultPlanConfig())
	assert.Error(t, err, "a squad of loaned-out players is not selectable")
}

func TestPlan_SlotMappingRenamesSlots(t *testing.T) {
	squad := []Player{rotationTestPlayer("Stopper", "DC", 145, 140, 92)}
	slots := []FormationSlot{{Name: "DC1", Position: "DC"}}
	tactic := &TacticConfig{Mapping: map[string]string{"DC1": "DCR"}}

	pl, err := NewPlanner(squad, slots, tactic, nil, nil, DefaultPlanConfig())
	require.NoError(t, err)

	result, err := pl.Plan([]Match{{ID: "m1", Date: day(0), Importance: ImportanceLow}})
	require.NoError(t, err)

	assert.Equal(t, "DCR", result.Matches[0].Selections[0].Slot)
}
