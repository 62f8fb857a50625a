package handlers

import (
	"fmt"
	"time"

	"github.com/clubtools/rotation-planner/internal/planner"
)

// ErrorResponse is the structured failure envelope. The API never lets a
// structural failure escape as a bare crash with no output.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// PlayerRequest is one squad member in a plan request. Condition and
// sharpness may arrive on either historical scale; the planner normalizes
// defensively.
type PlayerRequest struct {
	Name             string                        `json:"name" binding:"required"`
	Age              int                           `json:"age"`
	CurrentAbility   float64                       `json:"ca"`
	PotentialAbility float64                       `json:"pa"`
	Familiarity      map[string]float64            `json:"familiarity"`
	RoleRatings      map[string]planner.RoleRating `json:"role_ratings"`
	RoleScores       map[string]planner.RoleScore  `json:"role_scores,omitempty"`
	Condition        float64                       `json:"condition"`
	Sharpness        float64                       `json:"sharpness"`
	Fatigue          float64                       `json:"fatigue"`
	Jaded            bool                          `json:"jaded"`
	NaturalFitness   float64                       `json:"natural_fitness"`
	Stamina          float64                       `json:"stamina"`
	InjuryProneness  float64                       `json:"injury_proneness"`
	LoanStatus       string                        `json:"loan_status"`
	Injured          bool                          `json:"injured"`
	Banned           bool                          `json:"banned"`
}

// MatchRequest is one fixture in a plan request. Date must be ISO 8601
// YYYY-MM-DD; an unparseable date aborts the whole run.
type MatchRequest struct {
	ID         string            `json:"id" binding:"required"`
	Date       string            `json:"date" binding:"required"`
	Importance string            `json:"importance" binding:"required"`
	Opponent   string            `json:"opponent,omitempty"`
	Overrides  map[string]string `json:"manual_overrides,omitempty"`
	Rejected   []string          `json:"rejected,omitempty"`
}

// SlotRequest is one formation slot.
type SlotRequest struct {
	Name     string `json:"name" binding:"required"`
	Position string `json:"position" binding:"required"`
	Role     string `json:"role,omitempty"`
}

// PlanRequest is the full multi-match plan request body.
type PlanRequest struct {
	Squad   []PlayerRequest       `json:"squad" binding:"required"`
	Matches []MatchRequest        `json:"matches" binding:"required"`
	Slots   []SlotRequest         `json:"slots" binding:"required"`
	Tactic  *planner.TacticConfig `json:"tactic,omitempty"`
}

// ConfirmRequest confirms a lineup for one match so future runs treat it as
// played history.
type ConfirmRequest struct {
	MatchID     string            `json:"match_id" binding:"required"`
	Date        string            `json:"date" binding:"required"`
	Assignments map[string]string `json:"assignments" binding:"required"`
}

// toPlanner converts the request DTOs into planner inputs, failing fast on
// malformed dates or unknown importance tiers.
func (r *PlanRequest) toPlanner() ([]planner.Player, []planner.Match, []planner.FormationSlot, error) {
	squad := make([]planner.Player, 0, len(r.Squad))
	for _, p := range r.Squad {
		loan := planner.LoanStatus(p.LoanStatus)
		if loan == "" {
			loan = planner.LoanOwn
		}
		ratings := p.RoleRatings
		if len(ratings) == 0 && len(p.RoleScores) > 0 {
			ratings = planner.BuildRoleRatings(p.RoleScores, p.Familiarity)
		}
		squad = append(squad, planner.Player{
			Name:             p.Name,
			Age:              p.Age,
			CurrentAbility:   p.CurrentAbility,
			PotentialAbility: p.PotentialAbility,
			Familiarity:      p.Familiarity,
			RoleRatings:      ratings,
			State: planner.PlayerState{
				Condition: p.Condition,
				Sharpness: p.Sharpness,
				Fatigue:   p.Fatigue,
				Jaded:     p.Jaded,
			},
			Attributes: planner.PhysicalAttributes{
				NaturalFitness:  p.NaturalFitness,
				Stamina:         p.Stamina,
				InjuryProneness: p.InjuryProneness,
			},
			LoanStatus: loan,
			Injured:    p.Injured,
			Banned:     p.Banned,
		})
	}

	matches := make([]planner.Match, 0, len(r.Matches))
	for _, m := range r.Matches {
		date, err := time.Parse("2006-01-02", m.Date)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("match %q: unparseable date %q (expected YYYY-MM-DD)", m.ID, m.Date)
		}
		importance, err := planner.ParseImportance(m.Importance)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("match %q: %w", m.ID, err)
		}
		matches = append(matches, planner.Match{
			ID:         m.ID,
			Date:       date,
			Importance: importance,
			Opponent:   m.Opponent,
			Overrides:  m.Overrides,
			Rejected:   m.Rejected,
		})
	}

	slots := make([]planner.FormationSlot, 0, len(r.Slots))
	for _, s := range r.Slots {
		slots = append(slots, planner.FormationSlot{Name: s.Name, Position: s.Position, Role: s.Role})
	}

	return squad, matches, slots, nil
}
