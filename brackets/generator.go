package brackets

import "github.com/bracketlab/scoring-platform/models"

// SlotRef addresses the (match, position) pair a winner or loser is written
// into when a match completes. Position is 1 or 2.
type SlotRef struct {
	MatchNumber int `json:"match_number"`
	Position    int `json:"position"`
}

// BracketMatchSpec is the static topology description of one match,
// independent of actual players. Specs are generated once and never change.
type BracketMatchSpec struct {
	MatchNumber int                `json:"match_number"`
	Side        models.BracketSide `json:"bracket_side"`
	Round       string             `json:"round"`
	// DisplayPosition tags where the match is drawn, e.g. "W-QF-1".
	DisplayPosition string `json:"display_position"`

	// Seed ranks and pre-assigned entrants; set only for the four
	// first-round winners matches.
	Seed1      *int `json:"seed1,omitempty"`
	Seed2      *int `json:"seed2,omitempty"`
	Entrant1ID *int `json:"entrant1_id,omitempty"`
	Entrant2ID *int `json:"entrant2_id,omitempty"`

	WinnerTo *SlotRef `json:"winner_to,omitempty"`
	LoserTo  *SlotRef `json:"loser_to,omitempty"`
}

// BracketGenerator builds a fully wired bracket from an ordered seed list.
// Generators are pure: same seeds, same output, no randomness.
type BracketGenerator interface {
	GenerateBracket(seeds []RankedEntrant) ([]BracketMatchSpec, error)

	GetName() string
}
