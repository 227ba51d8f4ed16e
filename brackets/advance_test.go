package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketlab/scoring-platform/models"
)

// fakeMatchStore materializes a generated bracket in memory, with database
// ids equal to match numbers for readability.
type fakeMatchStore struct {
	matches map[int]*models.Match
}

func newFakeMatchStore(t *testing.T, tournamentID int) *fakeMatchStore {
	t.Helper()
	specs, err := NewDoubleEliminationGenerator().GenerateBracket(rankedSeeds())
	require.NoError(t, err)

	store := &fakeMatchStore{matches: make(map[int]*models.Match, len(specs))}
	for _, spec := range specs {
		m := &models.Match{
			ID:           spec.MatchNumber,
			TournamentID: tournamentID,
			MatchNumber:  spec.MatchNumber,
			Round:        spec.Round,
			BracketSide:  spec.Side,
			Position:     spec.DisplayPosition,
			Player1ID:    spec.Entrant1ID,
			Player2ID:    spec.Entrant2ID,
		}
		if spec.WinnerTo != nil {
			m.WinnerNextMatchID = intPtr(spec.WinnerTo.MatchNumber)
			m.WinnerNextSlot = intPtr(spec.WinnerTo.Position)
		}
		if spec.LoserTo != nil {
			m.LoserNextMatchID = intPtr(spec.LoserTo.MatchNumber)
			m.LoserNextSlot = intPtr(spec.LoserTo.Position)
		}
		store.matches[m.ID] = m
	}
	return store
}

func (s *fakeMatchStore) GetMatch(_ context.Context, matchID int) (*models.Match, error) {
	m, ok := s.matches[matchID]
	if !ok {
		return nil, &NotFoundError{Resource: "match", ID: matchID}
	}
	copied := *m
	return &copied, nil
}

func (s *fakeMatchStore) GetMatchByNumber(_ context.Context, tournamentID, matchNumber int) (*models.Match, error) {
	for _, m := range s.matches {
		if m.TournamentID == tournamentID && m.MatchNumber == matchNumber {
			copied := *m
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Resource: "match", ID: matchNumber}
}

func (s *fakeMatchStore) SaveResult(_ context.Context, matchID, score1, score2 int) error {
	m, ok := s.matches[matchID]
	if !ok {
		return &NotFoundError{Resource: "match", ID: matchID}
	}
	m.Score1 = intPtr(score1)
	m.Score2 = intPtr(score2)
	m.Completed = true
	return nil
}

func (s *fakeMatchStore) FillSlot(_ context.Context, matchID, slot, entrantID int) error {
	m, ok := s.matches[matchID]
	if !ok {
		return &NotFoundError{Resource: "match", ID: matchID}
	}
	target := &m.Player1ID
	if slot == 2 {
		target = &m.Player2ID
	}
	if *target != nil && **target != entrantID {
		return ErrSlotOccupied
	}
	*target = intPtr(entrantID)
	return nil
}

func (s *fakeMatchStore) CountMatches(_ context.Context, tournamentID int) (int, error) {
	count := 0
	for _, m := range s.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

// play submits a result and fails the test on error.
func play(t *testing.T, engine *AdvancementEngine, matchID, score1, score2 int) *Outcome {
	t.Helper()
	outcome, err := engine.RecordResult(context.Background(), matchID, score1, score2, 3)
	require.NoError(t, err)
	return outcome
}

func TestRecordResult_PropagatesWinnerAndLoser(t *testing.T) {
	store := newFakeMatchStore(t, 1)
	engine := NewAdvancementEngine(store)

	// QF1 hosts seed 1 (entrant 101) against seed 8 (entrant 108).
	outcome := play(t, engine, 1, 3, 1)
	assert.Equal(t, 101, outcome.WinnerID)
	assert.Equal(t, 108, outcome.LoserID)
	assert.False(t, outcome.IsComplete)
	assert.Nil(t, outcome.ChampionID)

	qf1 := store.matches[1]
	assert.True(t, qf1.Completed)
	assert.Equal(t, 3, *qf1.Score1)
	assert.Equal(t, 1, *qf1.Score2)

	// Winner into winners SF slot 1, loser into losers R1 slot 1.
	require.NotNil(t, store.matches[5].Player1ID)
	assert.Equal(t, 101, *store.matches[5].Player1ID)
	require.NotNil(t, store.matches[8].Player1ID)
	assert.Equal(t, 108, *store.matches[8].Player1ID)
}

func TestRecordResult_WinnerBySlotTwo(t *testing.T) {
	store := newFakeMatchStore(t, 1)
	engine := NewAdvancementEngine(store)

	// Seed 8 upsets seed 1.
	outcome := play(t, engine, 1, 0, 3)
	assert.Equal(t, 108, outcome.WinnerID)
	assert.Equal(t, 101, outcome.LoserID)
	assert.Equal(t, 108, *store.matches[5].Player1ID)
	assert.Equal(t, 101, *store.matches[8].Player1ID)
}

func TestRecordResult_OutOfOrderCompletions(t *testing.T) {
	store := newFakeMatchStore(t, 1)
	engine := NewAdvancementEngine(store)

	// Bottom half first; destinations are static so order cannot matter.
	play(t, engine, 4, 3, 2) // 103 beats 106
	play(t, engine, 3, 3, 0) // 102 beats 107
	play(t, engine, 1, 3, 1) // 101 beats 108
	play(t, engine, 2, 1, 3) // 105 beats 104

	assert.Equal(t, 102, *store.matches[6].Player1ID)
	assert.Equal(t, 103, *store.matches[6].Player2ID)
	assert.Equal(t, 107, *store.matches[9].Player1ID)
	assert.Equal(t, 106, *store.matches[9].Player2ID)
	assert.Equal(t, 101, *store.matches[5].Player1ID)
	assert.Equal(t, 105, *store.matches[5].Player2ID)
	assert.Equal(t, 108, *store.matches[8].Player1ID)
	assert.Equal(t, 104, *store.matches[8].Player2ID)
}

func TestRecordResult_Validation(t *testing.T) {
	tests := []struct {
		name           string
		score1, score2 int
		requiredWins   int
		wantReason     string
	}{
		{"draw below threshold", 2, 2, 3, "no winner"},
		{"neither side reaches threshold", 1, 2, 3, "no winner"},
		{"both sides reach threshold", 3, 3, 3, "no winner"},
		{"negative score", -1, 3, 3, "negative"},
		{"zero required wins", 3, 0, 0, "required wins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeMatchStore(t, 1)
			engine := NewAdvancementEngine(store)

			_, err := engine.RecordResult(context.Background(), 1, tt.score1, tt.score2, tt.requiredWins)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Reason, tt.wantReason)
			assert.False(t, store.matches[1].Completed, "invalid result must not persist")
		})
	}
}

func TestRecordResult_UnknownMatch(t *testing.T) {
	engine := NewAdvancementEngine(newFakeMatchStore(t, 1))

	_, err := engine.RecordResult(context.Background(), 999, 3, 0, 3)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 999, nf.ID)
}

func TestRecordResult_PlayersNotAssigned(t *testing.T) {
	engine := NewAdvancementEngine(newFakeMatchStore(t, 1))

	// The winners final has empty slots until both semifinals finish.
	_, err := engine.RecordResult(context.Background(), 7, 3, 0, 3)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "players")
}

func TestRecordResult_OccupiedSlotIsStructural(t *testing.T) {
	store := newFakeMatchStore(t, 1)
	engine := NewAdvancementEngine(store)

	play(t, engine, 1, 3, 1)
	// Corrupt the destination slot, then replay an adjacent result whose
	// winner routes into it.
	store.matches[5].Player2ID = intPtr(999)
	_, err := engine.RecordResult(context.Background(), 2, 3, 0, 3)
	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
}

func TestRecordResult_MissingDestinationIsStructural(t *testing.T) {
	store := newFakeMatchStore(t, 1)
	engine := NewAdvancementEngine(store)

	delete(store.matches, 8)
	_, err := engine.RecordResult(context.Background(), 1, 3, 1, 3)
	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Reason, "destination match")
}
