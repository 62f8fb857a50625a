package planner

// Phase tags which tactical phase a role rating applies to.
type Phase string

const (
	PhaseIP  Phase = "IP"
	PhaseOOP Phase = "OOP"
)

// RoleRater is the contract for the external role-suitability calculator.
// It maps a player's attribute set to a [0,100] score for a (position, role,
// phase) triple; the planner scales the score x2 onto its 0-200 range at
// ingestion.
type RoleRater func(attributes map[string]float64, position, role string, phase Phase) float64

// ScaleRoleScore converts an external [0,100] role score onto the planner's
// 0-200 rating scale.
func ScaleRoleScore(score float64) float64 {
	return clamp(score, 0, 100) * 2
}

// RoleScore carries pre-computed [0,100] phase scores for one position, the
// shape produced by an external RoleRater run offline.
type RoleScore struct {
	IP  float64 `json:"ip"`
	OOP float64 `json:"oop"`
}

// RatingsFromRater evaluates the rater for both phases across the given
// position->role assignments and builds the planner's rating map, scaled onto
// the 0-200 range with the familiarity penalty applied.
func RatingsFromRater(rater RoleRater, attributes map[string]float64, roles map[string]string, familiarity map[string]float64) map[string]RoleRating {
	out := make(map[string]RoleRating, len(roles))
	for position, role := range roles {
		factor := 1.0 - FamiliarityPenalty(familiarity[position])
		out[position] = RoleRating{
			IP:  ScaleRoleScore(rater(attributes, position, role, PhaseIP)) * factor,
			OOP: ScaleRoleScore(rater(attributes, position, role, PhaseOOP)) * factor,
		}
	}
	return out
}

// BuildRoleRatings is the static-score RoleRater: it converts scores already
// computed per position into the rating map. Requests that carry role_scores
// instead of role_ratings come through here.
func BuildRoleRatings(scores map[string]RoleScore, familiarity map[string]float64) map[string]RoleRating {
	roles := make(map[string]string, len(scores))
	for position := range scores {
		roles[position] = ""
	}
	rater := func(_ map[string]float64, position, _ string, phase Phase) float64 {
		if phase == PhaseOOP {
			return scores[position].OOP
		}
		return scores[position].IP
	}
	return RatingsFromRater(rater, nil, roles, familiarity)
}

// FamiliarityPenalty maps a 1-20 positional familiarity to a tiered penalty
// fraction in [0, 0.40]. Natural in the position means no penalty.
func FamiliarityPenalty(familiarity float64) float64 {
	switch {
	case familiarity >= 18:
		return 0
	case familiarity >= 15:
		return 0.05
	case familiarity >= 12:
		return 0.12
	case familiarity >= 9:
		return 0.20
	case familiarity >= 5:
		return 0.30
	default:
		return 0.40
	}
}
