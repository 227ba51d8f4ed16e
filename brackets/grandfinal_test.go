package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketlab/scoring-platform/models"
)

// playToGrandFinal runs a full bracket up to (not including) the grand
// final, with higher seeds always winning 3-0. Returns the two finalists:
// entrant 101 undefeated from the winners side, 102 from the losers side.
func playToGrandFinal(t *testing.T, engine *AdvancementEngine, store *fakeMatchStore) (winnersFinalist, losersFinalist int) {
	t.Helper()

	play(t, engine, 1, 3, 0)  // 101 > 108
	play(t, engine, 2, 0, 3)  // 105 > 104
	play(t, engine, 3, 3, 0)  // 102 > 107
	play(t, engine, 4, 3, 0)  // 103 > 106
	play(t, engine, 5, 3, 0)  // WSF: 101 > 105
	play(t, engine, 6, 3, 0)  // WSF: 102 > 103
	play(t, engine, 8, 0, 3)  // LR1: 104 > 108
	play(t, engine, 9, 3, 0)  // LR1: 107 > 106
	play(t, engine, 10, 0, 3) // LR2: 104 > 103 (103 dropped from WSF2)
	play(t, engine, 11, 0, 3) // LR2: 107 > 105 (105 dropped from WSF1)
	play(t, engine, 12, 3, 0) // LSF: 104 > 107
	play(t, engine, 7, 3, 0)  // WF: 101 > 102, 102 drops to losers final
	play(t, engine, 13, 3, 0) // LF: 102 > 104

	gf := store.matches[MatchNumberGrandFinal]
	require.NotNil(t, gf.Player1ID)
	require.NotNil(t, gf.Player2ID)
	assert.Equal(t, 101, *gf.Player1ID, "winners-bracket finalist sits at position 1")
	assert.Equal(t, 102, *gf.Player2ID, "losers-bracket finalist sits at position 2")
	return *gf.Player1ID, *gf.Player2ID
}

func TestGrandFinal_WinnersFinalistWins(t *testing.T) {
	store := newFakeMatchStore(t, 1)
	engine := NewAdvancementEngine(store)
	winnersFinalist, losersFinalist := playToGrandFinal(t, engine, store)

	outcome := play(t, engine, MatchNumberGrandFinal, 3, 1)
	assert.True(t, outcome.IsComplete)
	require.NotNil(t, outcome.ChampionID)
	assert.Equal(t, winnersFinalist, *outcome.ChampionID)
	assert.Equal(t, losersFinalist, outcome.LoserID)

	// The reset is never populated when the undefeated finalist wins.
	reset := store.matches[MatchNumberGrandFinalReset]
	assert.Nil(t, reset.Player1ID)
	assert.Nil(t, reset.Player2ID)
	assert.False(t, reset.Completed)
}

func TestGrandFinal_LosersFinalistForcesReset(t *testing.T) {
	store := newFakeMatchStore(t, 1)
	engine := NewAdvancementEngine(store)
	winnersFinalist, losersFinalist := playToGrandFinal(t, engine, store)

	outcome := play(t, engine, MatchNumberGrandFinal, 1, 3)
	assert.False(t, outcome.IsComplete)
	assert.Nil(t, outcome.ChampionID)
	assert.Equal(t, losersFinalist, outcome.WinnerID)

	// Reset seats the losers-bracket winner at position 1.
	reset := store.matches[MatchNumberGrandFinalReset]
	require.NotNil(t, reset.Player1ID)
	require.NotNil(t, reset.Player2ID)
	assert.Equal(t, losersFinalist, *reset.Player1ID)
	assert.Equal(t, winnersFinalist, *reset.Player2ID)

	// Whoever wins the reset is champion.
	final := play(t, engine, MatchNumberGrandFinalReset, 2, 3)
	assert.True(t, final.IsComplete)
	require.NotNil(t, final.ChampionID)
	assert.Equal(t, winnersFinalist, *final.ChampionID)
}

func TestGrandFinal_IncompleteBracketIsStructural(t *testing.T) {
	store := newFakeMatchStore(t, 1)
	engine := NewAdvancementEngine(store)
	playToGrandFinal(t, engine, store)

	delete(store.matches, 12)
	_, err := engine.RecordResult(context.Background(), MatchNumberGrandFinal, 3, 0, 3)
	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Reason, "expected 15")
}

func TestGrandFinalStateOf(t *testing.T) {
	score := func(s1, s2 int) (*int, *int) { return intPtr(s1), intPtr(s2) }

	gf := &models.Match{MatchNumber: MatchNumberGrandFinal}
	reset := &models.Match{MatchNumber: MatchNumberGrandFinalReset}
	assert.Equal(t, GrandFinalNotPlayed, GrandFinalStateOf(gf, reset))
	assert.Equal(t, GrandFinalNotPlayed, GrandFinalStateOf(nil, nil))

	gf.Completed = true
	gf.Score1, gf.Score2 = score(3, 1)
	assert.Equal(t, GrandFinalComplete, GrandFinalStateOf(gf, reset))

	gf.Score1, gf.Score2 = score(1, 3)
	assert.Equal(t, GrandFinalPlayed, GrandFinalStateOf(gf, reset))

	reset.Completed = true
	reset.Score1, reset.Score2 = score(3, 2)
	assert.Equal(t, GrandFinalResetPlayed, GrandFinalStateOf(gf, reset))
}
