package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/bracketlab/scoring-platform/models"
)

// MatchStore is the persistence collaborator the advancement engine writes
// through. Implementations must serialize writes per match id (optimistic
// versioning or row locks); the engine itself does not make duplicate
// submissions idempotent.
type MatchStore interface {
	// GetMatch returns the match or a *NotFoundError.
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	// GetMatchByNumber looks a match up by its bracket number within one
	// tournament.
	GetMatchByNumber(ctx context.Context, tournamentID, matchNumber int) (*models.Match, error)
	// SaveResult persists the final score and marks the match completed.
	SaveResult(ctx context.Context, matchID, score1, score2 int) error
	// FillSlot writes an entrant into player slot 1 or 2. The write must be
	// guarded: a slot already holding a different entrant is left untouched
	// and reported with ErrSlotOccupied.
	FillSlot(ctx context.Context, matchID, slot, entrantID int) error
	// CountMatches reports how many bracket matches the tournament has.
	CountMatches(ctx context.Context, tournamentID int) (int, error)
}

// ErrSlotOccupied is returned by MatchStore.FillSlot when the target slot
// already holds a different entrant. Player slots only ever transition
// null -> filled.
var ErrSlotOccupied = fmt.Errorf("destination slot already holds a different entrant")

// Outcome is the result of applying one match-completion event.
type Outcome struct {
	WinnerID   int  `json:"winner_id"`
	LoserID    int  `json:"loser_id"`
	IsComplete bool `json:"is_complete"`
	ChampionID *int `json:"champion_id,omitempty"`
}

// AdvancementEngine applies match results to a statically wired bracket.
// One call fully resolves an event: score write, winner/loser propagation,
// completion check. Because each event only touches its own match row plus
// its two pre-wired destination slots, results may arrive in any order.
type AdvancementEngine struct {
	store MatchStore
}

func NewAdvancementEngine(store MatchStore) *AdvancementEngine {
	return &AdvancementEngine{store: store}
}

// RecordResult persists the score of one match and advances its winner and
// loser into their destination slots. requiredWins is the win threshold for
// the tournament's game mode (3 for best-of-5).
func (e *AdvancementEngine) RecordResult(ctx context.Context, matchID, score1, score2, requiredWins int) (*Outcome, error) {
	if requiredWins < 1 {
		return nil, validationErrorf("required wins must be positive, got %d", requiredWins)
	}
	if score1 < 0 || score2 < 0 {
		return nil, validationErrorf("scores must not be negative, got %d-%d", score1, score2)
	}

	match, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Player1ID == nil || match.Player2ID == nil {
		return nil, validationErrorf("match %d does not have both players assigned yet", match.MatchNumber)
	}

	// Exactly one side has to reach the threshold, otherwise the score
	// state identifies no winner.
	if (score1 >= requiredWins) == (score2 >= requiredWins) {
		return nil, validationErrorf("no winner: scores %d-%d with %d required wins", score1, score2, requiredWins)
	}

	winnerID, loserID := *match.Player1ID, *match.Player2ID
	if score2 >= requiredWins {
		winnerID, loserID = loserID, winnerID
	}

	if err := e.store.SaveResult(ctx, match.ID, score1, score2); err != nil {
		return nil, err
	}

	if match.MatchNumber == MatchNumberGrandFinal || match.MatchNumber == MatchNumberGrandFinalReset {
		return e.resolveGrandFinal(ctx, match, winnerID, loserID)
	}

	if err := e.propagate(ctx, match.WinnerNextMatchID, match.WinnerNextSlot, winnerID); err != nil {
		return nil, err
	}
	if err := e.propagate(ctx, match.LoserNextMatchID, match.LoserNextSlot, loserID); err != nil {
		return nil, err
	}

	return &Outcome{WinnerID: winnerID, LoserID: loserID}, nil
}

// propagate writes an entrant into a destination slot, if the match has one.
func (e *AdvancementEngine) propagate(ctx context.Context, destMatchID, destSlot *int, entrantID int) error {
	if destMatchID == nil || destSlot == nil {
		return nil
	}
	err := e.store.FillSlot(ctx, *destMatchID, *destSlot, entrantID)
	if err == nil {
		return nil
	}
	// Both a vanished destination row and an occupied slot mean the
	// persisted bracket no longer matches the generated topology.
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return structuralErrorf("destination match %d is missing", *destMatchID)
	}
	if errors.Is(err, ErrSlotOccupied) {
		return structuralErrorf("slot %d of match %d already holds a different entrant", *destSlot, *destMatchID)
	}
	return err
}
