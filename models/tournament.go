package models

import "time"

// TournamentStatus mirrors the status ENUM in the database.
type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

type Tournament struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	OrganizerID int              `json:"organizer_id"`
	Status      TournamentStatus `json:"status"`
	// BestOf controls the default win threshold for a match: a best-of-5
	// tournament requires 3 wins unless the caller supplies its own.
	BestOf     int       `json:"best_of"`
	ChampionID *int      `json:"champion_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	Entrants []Entrant `json:"entrants,omitempty"`
	Matches  []Match   `json:"matches,omitempty"`
}

// RequiredWins derives the win threshold from the best-of setting.
func (t *Tournament) RequiredWins() int {
	if t.BestOf <= 0 {
		return 1
	}
	return t.BestOf/2 + 1
}
