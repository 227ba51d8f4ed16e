package models

import "time"

// BracketSide identifies which elimination track a match belongs to.
type BracketSide string

const (
	SideWinners    BracketSide = "winners"
	SideLosers     BracketSide = "losers"
	SideGrandFinal BracketSide = "grand_final"
)

// Match is one persisted bracket match. Player slots are nullable until the
// advancement engine fills them; they transition null -> filled only.
//
// The destination columns carry the static wiring computed once at bracket
// generation: the database id and slot (1 or 2) the winner and loser of this
// match are written into. Terminal matches leave them null.
type Match struct {
	ID           int         `json:"id"`
	TournamentID int         `json:"tournament_id"`
	MatchNumber  int         `json:"match_number"`
	Round        string      `json:"round"`
	BracketSide  BracketSide `json:"bracket_side"`
	Position     string      `json:"position"`

	Player1ID *int `json:"player1_id,omitempty"`
	Player2ID *int `json:"player2_id,omitempty"`
	Score1    *int `json:"score1,omitempty"`
	Score2    *int `json:"score2,omitempty"`
	Completed bool `json:"completed"`

	WinnerNextMatchID *int `json:"winner_next_match_id,omitempty"`
	WinnerNextSlot    *int `json:"winner_next_slot,omitempty"`
	LoserNextMatchID  *int `json:"loser_next_match_id,omitempty"`
	LoserNextSlot     *int `json:"loser_next_slot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
