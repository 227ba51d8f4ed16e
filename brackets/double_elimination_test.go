package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketlab/scoring-platform/models"
)

func rankedSeeds() []RankedEntrant {
	seeds := make([]RankedEntrant, BracketSize)
	for i := range seeds {
		seeds[i] = RankedEntrant{
			EntrantID:   100 + i + 1,
			DisplayName: "seed",
			Rank:        i + 1,
		}
	}
	return seeds
}

func specByNumber(t *testing.T, specs []BracketMatchSpec, n int) BracketMatchSpec {
	t.Helper()
	for _, s := range specs {
		if s.MatchNumber == n {
			return s
		}
	}
	t.Fatalf("no spec with match number %d", n)
	return BracketMatchSpec{}
}

func TestGenerateBracket_ShapeAndNumbering(t *testing.T) {
	specs, err := NewDoubleEliminationGenerator().GenerateBracket(rankedSeeds())
	require.NoError(t, err)
	require.Len(t, specs, TotalMatches)

	seen := make(map[int]bool)
	for _, s := range specs {
		assert.False(t, seen[s.MatchNumber], "duplicate match number %d", s.MatchNumber)
		seen[s.MatchNumber] = true
		assert.GreaterOrEqual(t, s.MatchNumber, 1)
		assert.LessOrEqual(t, s.MatchNumber, MatchNumberGrandFinalReset)
	}
	for n := 1; n <= 13; n++ {
		assert.True(t, seen[n], "match number %d missing", n)
	}
	assert.True(t, seen[MatchNumberGrandFinal])
	assert.True(t, seen[MatchNumberGrandFinalReset])

	gf := specByNumber(t, specs, MatchNumberGrandFinal)
	assert.Equal(t, models.SideGrandFinal, gf.Side)
	assert.Equal(t, RoundGrandFinal, gf.Round)

	reset := specByNumber(t, specs, MatchNumberGrandFinalReset)
	assert.Equal(t, RoundGrandFinalReset, reset.Round)
	assert.Nil(t, reset.Entrant1ID, "reset is never pre-seeded")
	assert.Nil(t, reset.Entrant2ID)
	assert.Nil(t, reset.WinnerTo)
	assert.Nil(t, reset.LoserTo)
}

func TestGenerateBracket_DestinationInvariants(t *testing.T) {
	specs, err := NewDoubleEliminationGenerator().GenerateBracket(rankedSeeds())
	require.NoError(t, err)

	for _, s := range specs {
		if s.WinnerTo != nil {
			assert.NotEqual(t, s.MatchNumber, s.WinnerTo.MatchNumber,
				"match %d routes its winner to itself", s.MatchNumber)
		}
		if s.LoserTo != nil {
			assert.NotEqual(t, s.MatchNumber, s.LoserTo.MatchNumber,
				"match %d routes its loser to itself", s.MatchNumber)
			require.NotNil(t, s.WinnerTo)
			assert.NotEqual(t, *s.WinnerTo, *s.LoserTo,
				"match %d winner and loser destinations coincide", s.MatchNumber)
		}

		switch s.MatchNumber {
		case MatchNumberGrandFinal, MatchNumberGrandFinalReset:
			assert.Nil(t, s.WinnerTo)
			assert.Nil(t, s.LoserTo)
		default:
			require.NotNil(t, s.WinnerTo, "match %d has no winner destination", s.MatchNumber)
		}

		// Only winners-bracket matches drop their loser anywhere; a loss in
		// the losers bracket eliminates.
		if s.Side == models.SideLosers {
			assert.Nil(t, s.LoserTo, "losers match %d must eliminate its loser", s.MatchNumber)
		}
	}

	// Each destination slot is filled by exactly one source.
	sources := make(map[SlotRef]int)
	for _, s := range specs {
		if s.WinnerTo != nil {
			sources[*s.WinnerTo]++
		}
		if s.LoserTo != nil {
			sources[*s.LoserTo]++
		}
	}
	for ref, n := range sources {
		assert.Equal(t, 1, n, "slot %+v has %d feeders", ref, n)
	}

	// Finalists land in the grand final from both tracks.
	wf := specByNumber(t, specs, MatchNumberWinnersFinal)
	assert.Equal(t, &SlotRef{MatchNumber: MatchNumberGrandFinal, Position: 1}, wf.WinnerTo)
	assert.Equal(t, &SlotRef{MatchNumber: MatchNumberLosersFinal, Position: 1}, wf.LoserTo)
	lf := specByNumber(t, specs, MatchNumberLosersFinal)
	assert.Equal(t, &SlotRef{MatchNumber: MatchNumberGrandFinal, Position: 2}, lf.WinnerTo)
}

func TestGenerateBracket_SeedPairing(t *testing.T) {
	seeds := rankedSeeds()
	specs, err := NewDoubleEliminationGenerator().GenerateBracket(seeds)
	require.NoError(t, err)

	wantPairs := map[int][2]int{1: {1, 8}, 2: {4, 5}, 3: {2, 7}, 4: {3, 6}}
	for matchNumber, pair := range wantPairs {
		s := specByNumber(t, specs, matchNumber)
		require.NotNil(t, s.Seed1)
		require.NotNil(t, s.Seed2)
		assert.Equal(t, pair[0], *s.Seed1)
		assert.Equal(t, pair[1], *s.Seed2)
		assert.Equal(t, 100+pair[0], *s.Entrant1ID)
		assert.Equal(t, 100+pair[1], *s.Entrant2ID)
	}

	// Only the first round is pre-seeded.
	for _, s := range specs {
		if s.MatchNumber > 4 {
			assert.Nil(t, s.Entrant1ID, "match %d must not be pre-seeded", s.MatchNumber)
			assert.Nil(t, s.Entrant2ID, "match %d must not be pre-seeded", s.MatchNumber)
		}
	}
}

func TestGenerateBracket_Deterministic(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	first, err := gen.GenerateBracket(rankedSeeds())
	require.NoError(t, err)
	second, err := gen.GenerateBracket(rankedSeeds())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateBracket_SeedValidation(t *testing.T) {
	gen := NewDoubleEliminationGenerator()

	_, err := gen.GenerateBracket(rankedSeeds()[:6])
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	dup := rankedSeeds()
	dup[7].Rank = 1
	_, err = gen.GenerateBracket(dup)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "duplicate seed rank")
}
