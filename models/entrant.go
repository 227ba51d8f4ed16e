package models

import "time"

// Entrant is a competitor eligible for bracket seeding. The qualifying
// metrics are used only to order candidates when seeds are selected.
type Entrant struct {
	ID           int    `json:"id"`
	TournamentID int    `json:"tournament_id"`
	DisplayName  string `json:"display_name"`

	// Qualifying metrics, in tie-break order.
	QualifyingScore     int `json:"qualifying_score"`
	QualifyingPoints    int `json:"qualifying_points"`
	QualifyingRoundWins int `json:"qualifying_round_wins"`

	CreatedAt time.Time `json:"created_at"`
}
