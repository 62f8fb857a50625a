package planner

import (
	"fmt"
	"time"
)

// Importance classifies how much a fixture matters for selection purposes.
// Sharpness is a special development mode, not part of the Low<Medium<High order.
type Importance string

const (
	ImportanceLow       Importance = "Low"
	ImportanceMedium    Importance = "Medium"
	ImportanceHigh      Importance = "High"
	ImportanceSharpness Importance = "Sharpness"
)

// ParseImportance validates an importance tier, failing fast on unknown values.
func ParseImportance(s string) (Importance, error) {
	switch Importance(s) {
	case ImportanceLow, ImportanceMedium, ImportanceHigh, ImportanceSharpness:
		return Importance(s), nil
	}
	return "", fmt.Errorf("unknown match importance %q (expected Low, Medium, High or Sharpness)", s)
}

// LoanStatus mirrors the snapshot's loan column. LoanedOut players are
// excluded upstream and never reach the planner.
type LoanStatus string

const (
	LoanOwn       LoanStatus = "Own"
	LoanedIn      LoanStatus = "LoanedIn"
	LoanedOut     LoanStatus = "LoanedOut"
)

// MatchType distinguishes how much a simulated appearance counts.
type MatchType string

const (
	MatchCompetitive MatchType = "competitive"
	MatchFriendly    MatchType = "friendly"
	MatchReserve     MatchType = "reserve"
)

// Intensity is the tactical intensity used for fatigue accumulation.
type Intensity string

const (
	IntensityNormal    Intensity = "normal"
	IntensityHighPress Intensity = "high_press"
	IntensityRotation  Intensity = "rotation"
)

// PhysicalAttributes are the fixed attributes that modulate how fast a
// player's physical state changes. All on the 1-20 snapshot scale.
type PhysicalAttributes struct {
	NaturalFitness  float64 `json:"natural_fitness"`
	Stamina         float64 `json:"stamina"`
	InjuryProneness float64 `json:"injury_proneness"`
}

// PlayerState is the mutable physical state of a player. Sharpness is kept
// on a finer 0-10000 internal scale for precision; divide by 100 for display.
type PlayerState struct {
	Condition float64 `json:"condition"` // 0-100
	Sharpness float64 `json:"sharpness"` // 0-10000 internal
	Fatigue   float64 `json:"fatigue"`   // >= 0, soft ceiling ~400-550
	Jaded     bool    `json:"jaded"`
}

// SharpnessPercent returns sharpness on the display 0-100 scale.
func (s PlayerState) SharpnessPercent() float64 {
	return s.Sharpness / 100.0
}

// RoleRating carries the in-possession / out-of-possession suitability
// scores for one position, on the 0-200 scale.
type RoleRating struct {
	IP  float64 `json:"ip"`
	OOP float64 `json:"oop"`
}

// Player is one squad member loaded from an attribute snapshot at the start
// of a planning run. State is mutated only through simulated projections and
// never written back.
type Player struct {
	Name             string                `json:"name"`
	Age              int                   `json:"age"`
	CurrentAbility   float64               `json:"current_ability"`
	PotentialAbility float64               `json:"potential_ability"`
	Familiarity      map[string]float64    `json:"familiarity"`  // position -> 1-20
	RoleRatings      map[string]RoleRating `json:"role_ratings"` // position -> 0-200
	State            PlayerState           `json:"state"`
	Attributes       PhysicalAttributes    `json:"attributes"`
	LoanStatus       LoanStatus            `json:"loan_status"`
	Injured          bool                  `json:"injured"`
	Banned           bool                  `json:"banned"`
}

// Key returns the case/diacritic-insensitive identity key for the player.
func (p *Player) Key() string {
	return NormalizeName(p.Name)
}

// Match is one scheduled fixture in the planning horizon.
type Match struct {
	ID         string            `json:"id"`
	Date       time.Time         `json:"date"`
	Importance Importance        `json:"importance"`
	Opponent   string            `json:"opponent,omitempty"`
	Overrides  map[string]string `json:"overrides,omitempty"` // slot -> player name
	Rejected   []string          `json:"rejected,omitempty"`  // player names barred from selection
}

// FormationSlot is a named position in the lineup mapped to the columns used
// to score candidates: a familiarity position and (optionally) a role name.
type FormationSlot struct {
	Name     string `json:"name"`     // e.g. "DC1", "AMR"
	Position string `json:"position"` // familiarity column, e.g. "DC"
	Role     string `json:"role,omitempty"`
}

// TacticConfig is the optional per-run tactic configuration supplied with a
// plan request.
type TacticConfig struct {
	IPPositions       map[string]string `json:"ip_positions,omitempty"`  // slot -> role
	OOPPositions      map[string]string `json:"oop_positions,omitempty"` // slot -> role
	Mapping           map[string]string `json:"mapping,omitempty"`       // slot -> slot
	StabilityWeight   float64           `json:"stability_weight,omitempty"`
	TrainingIntensity string            `json:"training_intensity,omitempty"` // light|normal|heavy
}

// StabilityParams are the externally configurable magnitudes of the
// inertia/anchoring cost model.
type StabilityParams struct {
	InertiaWeight    float64 `json:"inertia_weight"`
	BaseSwitchCost   float64 `json:"base_switch_cost"`
	ContinuityBonus  float64 `json:"continuity_bonus"`
	AnchorMultiplier float64 `json:"anchor_multiplier"`
	AnchorThreshold  int     `json:"anchor_threshold"`
}

// DefaultStabilityParams returns the tuned defaults for slot stickiness.
func DefaultStabilityParams() StabilityParams {
	return StabilityParams{
		InertiaWeight:    1.0,
		BaseSwitchCost:   4.0,
		ContinuityBonus:  2.0,
		AnchorMultiplier: 1.5,
		AnchorThreshold:  3,
	}
}

// PlanConfig carries every run-level tunable consumed by the planner.
type PlanConfig struct {
	Stability            StabilityParams `json:"stability"`
	ShadowDiscount       float64         `json:"shadow_discount"`
	KeyPlayerCAThreshold float64         `json:"key_player_ca_threshold"`
	BigM                 float64         `json:"big_m"`
	TrainingIntensity    string          `json:"training_intensity"`
	// Auto-rest thresholds used by the look-ahead rest derivation.
	RestFatigueRatio   float64 `json:"rest_fatigue_ratio"`
	RestConditionFloor float64 `json:"rest_condition_floor"`
	SafetyCondition    float64 `json:"safety_condition"`
	UseProxyShadow     bool    `json:"use_proxy_shadow"`
}

// DefaultPlanConfig returns the tuned default planner configuration.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		Stability:            DefaultStabilityParams(),
		ShadowDiscount:       0.80,
		KeyPlayerCAThreshold: 140,
		BigM:                 1e6,
		TrainingIntensity:    "normal",
		RestFatigueRatio:     0.85,
		RestConditionFloor:   70,
		SafetyCondition:      85,
	}
}

// HistoryEntry is one (match, slot) pair in a player's assignment log.
type HistoryEntry struct {
	MatchID string `json:"match_id"`
	Slot    string `json:"slot"`
}

// AssignmentHistory is an append-only, per-player log of slot assignments,
// most-recent-first, bounded to a retention window. Entries are written
// exactly once per match, after the lineup is finalized.
type AssignmentHistory struct {
	retention int
	entries   map[string][]HistoryEntry // player key -> most-recent-first
}

// DefaultHistoryRetention bounds how many past assignments are kept per player.
const DefaultHistoryRetention = 10

// NewAssignmentHistory creates an empty history with the given retention
// window; retention <= 0 uses the default.
func NewAssignmentHistory(retention int) *AssignmentHistory {
	if retention <= 0 {
		retention = DefaultHistoryRetention
	}
	return &AssignmentHistory{
		retention: retention,
		entries:   make(map[string][]HistoryEntry),
	}
}

// Record appends one finalized match's slot assignments. playerKey -> slot.
func (h *AssignmentHistory) Record(matchID string, assignments map[string]string) {
	for playerKey, slot := range assignments {
		log := append([]HistoryEntry{{MatchID: matchID, Slot: slot}}, h.entries[playerKey]...)
		if len(log) > h.retention {
			log = log[:h.retention]
		}
		h.entries[playerKey] = log
	}
}

// LastSlot returns the player's most recent slot, or "" if never assigned.
func (h *AssignmentHistory) LastSlot(playerKey string) string {
	log := h.entries[playerKey]
	if len(log) == 0 {
		return ""
	}
	return log[0].Slot
}

// ConsecutiveInSlot counts how many most-recent consecutive entries share the
// player's latest slot.
func (h *AssignmentHistory) ConsecutiveInSlot(playerKey string) (slot string, count int) {
	log := h.entries[playerKey]
	if len(log) == 0 {
		return "", 0
	}
	slot = log[0].Slot
	for _, e := range log {
		if e.Slot != slot {
			break
		}
		count++
	}
	return slot, count
}

// AnchoredSlot returns the slot the player is anchored to, if the player has
// held one slot for at least threshold consecutive recent matches.
func (h *AssignmentHistory) AnchoredSlot(playerKey string, threshold int) (string, bool) {
	slot, count := h.ConsecutiveInSlot(playerKey)
	if slot == "" || count < threshold {
		return "", false
	}
	return slot, true
}

// Entries returns a copy of the player's log, most-recent-first.
func (h *AssignmentHistory) Entries(playerKey string) []HistoryEntry {
	log := h.entries[playerKey]
	out := make([]HistoryEntry, len(log))
	copy(out, log)
	return out
}

// UtilityBreakdown records every multiplier behind a utility score so the
// result is explainable, not just a scalar.
type UtilityBreakdown struct {
	BaseRating      float64 `json:"base_rating"`
	ConditionMult   float64 `json:"condition_mult"`
	SharpnessMult   float64 `json:"sharpness_mult"`
	FamiliarityMult float64 `json:"familiarity_mult"`
	FatigueMult     float64 `json:"fatigue_mult"`
	Utility         float64 `json:"utility"`
}

// SlotSelection is one resolved slot in a match plan.
type SlotSelection struct {
	Slot       string           `json:"slot"`
	Player     string           `json:"player"`
	Rating     float64          `json:"rating"`
	Condition  float64          `json:"condition"`
	Sharpness  float64          `json:"sharpness"` // display 0-100 scale
	Fatigue    float64          `json:"fatigue"`
	ShadowCost float64          `json:"shadow_cost"`
	Age        int              `json:"age"`
	Flags      []string         `json:"flags,omitempty"`
	Breakdown  UtilityBreakdown `json:"breakdown"`
}

// MatchPlan is the resolved lineup for one match.
type MatchPlan struct {
	MatchID    string          `json:"match_id"`
	Date       time.Time       `json:"date"`
	Importance Importance      `json:"importance"`
	Selections []SlotSelection `json:"selections"`
	Rested     []string        `json:"rested,omitempty"`     // proactively rested players
	OpenSlots  []string        `json:"open_slots,omitempty"` // infeasible slots left for manual fill
}

// PlanResult is the full multi-match planning output.
type PlanResult struct {
	PlanID  string      `json:"plan_id"`
	Matches []MatchPlan `json:"matches"`
}
