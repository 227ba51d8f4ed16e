package brackets

import (
	"context"
	"errors"

	"github.com/bracketlab/scoring-platform/models"
)

// GrandFinalState is the explicit state of the grand-final pair. Modelling
// it as a tag keeps every transition independently testable instead of being
// inferred from match-number literals scattered through the code.
type GrandFinalState string

const (
	// GrandFinalNotPlayed: the grand final has no result yet.
	GrandFinalNotPlayed GrandFinalState = "NOT_PLAYED"
	// GrandFinalPlayed: the losers-bracket finalist won the grand final and
	// the reset match decides the title.
	GrandFinalPlayed GrandFinalState = "GRAND_FINAL_PLAYED"
	// GrandFinalResetPlayed: the reset match has a result.
	GrandFinalResetPlayed GrandFinalState = "RESET_PLAYED"
	// GrandFinalComplete: a champion exists.
	GrandFinalComplete GrandFinalState = "COMPLETE"
)

// GrandFinalStateOf derives the pair's state from the two persisted matches.
// The winners-bracket finalist is identified structurally: generation wires
// the winners final into position 1 of the grand final.
func GrandFinalStateOf(grandFinal, reset *models.Match) GrandFinalState {
	switch {
	case grandFinal == nil || !grandFinal.Completed:
		return GrandFinalNotPlayed
	case reset != nil && reset.Completed:
		return GrandFinalResetPlayed
	case grandFinalWonByPosition1(grandFinal):
		return GrandFinalComplete
	default:
		return GrandFinalPlayed
	}
}

func grandFinalWonByPosition1(m *models.Match) bool {
	if m.Score1 == nil || m.Score2 == nil {
		return false
	}
	return *m.Score1 > *m.Score2
}

// resolveGrandFinal handles completion of match 16 or 17.
//
// Grand final won by position 1 (the winners-bracket finalist, undefeated):
// the tournament is over and the reset stays unpopulated. Won by position 2:
// both finalists now have one loss each, so the reset match is seeded with
// the losers-bracket winner at position 1 and played for the title. The
// reset's winner is always champion; no further reset can exist.
func (e *AdvancementEngine) resolveGrandFinal(ctx context.Context, match *models.Match, winnerID, loserID int) (*Outcome, error) {
	total, err := e.store.CountMatches(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if total != TotalMatches {
		return nil, structuralErrorf("tournament %d has %d bracket matches, expected %d", match.TournamentID, total, TotalMatches)
	}

	outcome := &Outcome{WinnerID: winnerID, LoserID: loserID}

	if match.MatchNumber == MatchNumberGrandFinalReset {
		outcome.IsComplete = true
		outcome.ChampionID = &winnerID
		return outcome, nil
	}

	if winnerID == *match.Player1ID {
		// The winners-bracket finalist stayed undefeated.
		outcome.IsComplete = true
		outcome.ChampionID = &winnerID
		return outcome, nil
	}

	reset, err := e.store.GetMatchByNumber(ctx, match.TournamentID, MatchNumberGrandFinalReset)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, structuralErrorf("grand final reset match is missing from tournament %d", match.TournamentID)
		}
		return nil, err
	}
	slot1, slot2 := 1, 2
	if err := e.propagate(ctx, &reset.ID, &slot1, winnerID); err != nil {
		return nil, err
	}
	if err := e.propagate(ctx, &reset.ID, &slot2, loserID); err != nil {
		return nil, err
	}
	return outcome, nil
}
