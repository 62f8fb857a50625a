package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/clubtools/rotation-planner/internal/planner"
)

// ConfirmedLineup is one user-confirmed matchday lineup.
type ConfirmedLineup struct {
	MatchID     string            `json:"match_id"`
	Date        string            `json:"date"` // ISO 8601 YYYY-MM-DD
	Assignments map[string]string `json:"assignments"` // slot -> player name
}

// LineupStore persists confirmed lineups to a single JSON file. Reads at the
// start of a planning run reconstruct assignment history for matches strictly
// before the run's first date.
type LineupStore struct {
	path string
}

// NewLineupStore opens (or lazily creates) a store at path.
func NewLineupStore(path string) *LineupStore {
	return &LineupStore{path: path}
}

// Load returns all confirmed lineups, oldest first. A missing file is an
// empty store, not an error.
func (s *LineupStore) Load() ([]ConfirmedLineup, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading lineup store: %w", err)
	}
	var lineups []ConfirmedLineup
	if err := json.Unmarshal(b, &lineups); err != nil {
		return nil, fmt.Errorf("parsing lineup store: %w", err)
	}
	sort.SliceStable(lineups, func(i, j int) bool { return lineups[i].Date < lineups[j].Date })
	return lineups, nil
}

// Confirm appends (or replaces, by match ID) one confirmed lineup and writes
// the store atomically.
func (s *LineupStore) Confirm(lineup ConfirmedLineup) error {
	if _, err := time.Parse("2006-01-02", lineup.Date); err != nil {
		return fmt.Errorf("confirmed lineup %q has invalid date %q: %w", lineup.MatchID, lineup.Date, err)
	}
	lineups, err := s.Load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range lineups {
		if lineups[i].MatchID == lineup.MatchID {
			lineups[i] = lineup
			replaced = true
			break
		}
	}
	if !replaced {
		lineups = append(lineups, lineup)
	}
	return s.write(lineups)
}

func (s *LineupStore) write(lineups []ConfirmedLineup) error {
	sort.SliceStable(lineups, func(i, j int) bool { return lineups[i].Date < lineups[j].Date })
	b, err := json.MarshalIndent(lineups, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// HistoryBefore rebuilds assignment history and consecutive-appearance counts
// from confirmed lineups dated strictly before cutoff. Lineups with malformed
// dates are skipped; the date field is informational at read time.
func (s *LineupStore) HistoryBefore(cutoff time.Time) (*planner.AssignmentHistory, map[string]int, error) {
	lineups, err := s.Load()
	if err != nil {
		return nil, nil, err
	}

	history := planner.NewAssignmentHistory(planner.DefaultHistoryRetention)
	consec := make(map[string]int)

	for _, lineup := range lineups {
		date, err := time.Parse("2006-01-02", lineup.Date)
		if err != nil || !date.Before(cutoff) {
			continue
		}
		recorded := make(map[string]string, len(lineup.Assignments))
		played := make(map[string]bool, len(lineup.Assignments))
		for slot, name := range lineup.Assignments {
			key := planner.NormalizeName(name)
			recorded[key] = slot
			played[key] = true
		}
		history.Record(lineup.MatchID, recorded)
		for key := range played {
			consec[key]++
		}
		for key := range consec {
			if !played[key] {
				consec[key] = 0
			}
		}
	}

	return history, consec, nil
}
