package brackets

import (
	"strconv"

	"github.com/bracketlab/scoring-platform/models"
)

// Round labels used across the bracket. They describe structure only; the
// advancement engine never pattern-matches on them.
const (
	RoundWinnersQuarterfinal = "winners_quarterfinal"
	RoundWinnersSemifinal    = "winners_semifinal"
	RoundWinnersFinal        = "winners_final"
	RoundLosersRound1        = "losers_round_1"
	RoundLosersRound2        = "losers_round_2"
	RoundLosersSemifinal     = "losers_semifinal"
	RoundLosersFinal         = "losers_final"
	RoundGrandFinal          = "grand_final"
	RoundGrandFinalReset     = "grand_final_reset"
)

// Fixed match numbers. Winners bracket occupies 1-7, losers bracket 8-13;
// the decisive pair sits at 16 and 17 (14-15 stay unassigned so the grand
// final keeps its published number). An 8-entrant double elimination is 15
// matches: every entrant but the champion is eliminated by a second loss,
// which caps the number of playable games.
const (
	MatchNumberWinnersFinal    = 7
	MatchNumberLosersFinal     = 13
	MatchNumberGrandFinal      = 16
	MatchNumberGrandFinalReset = 17

	// TotalMatches is the number of specs generated per bracket.
	TotalMatches = 15
)

// seedPairs maps the four winners-QF matches to the seed ranks they host.
// Standard pairing keeps 1 and 2 in opposite halves: (1,8) and (4,5) feed
// the top semifinal, (2,7) and (3,6) the bottom one.
var seedPairs = [4][2]int{{1, 8}, {4, 5}, {2, 7}, {3, 6}}

// DoubleEliminationGenerator builds the fixed double-elimination graph for
// an eight-entrant field. The full wiring is static: each spec names the
// match and slot its winner and loser land in, so results can be applied in
// any order without scanning the bracket.
type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

func (g *DoubleEliminationGenerator) GenerateBracket(seeds []RankedEntrant) ([]BracketMatchSpec, error) {
	if len(seeds) != BracketSize {
		return nil, validationErrorf("double elimination requires exactly %d seeds, got %d", BracketSize, len(seeds))
	}
	byRank := make(map[int]RankedEntrant, BracketSize)
	for _, s := range seeds {
		if s.Rank < 1 || s.Rank > BracketSize {
			return nil, validationErrorf("seed rank %d out of range 1..%d", s.Rank, BracketSize)
		}
		if _, dup := byRank[s.Rank]; dup {
			return nil, validationErrorf("duplicate seed rank %d", s.Rank)
		}
		byRank[s.Rank] = s
	}

	specs := make([]BracketMatchSpec, 0, TotalMatches)

	// Winners quarterfinals, matches 1-4. Winners climb to the semifinals,
	// losers drop into losers round 1: QF1/QF2 losers meet in match 8,
	// QF3/QF4 losers in match 9.
	for i, pair := range seedPairs {
		matchNumber := i + 1
		seed1, seed2 := pair[0], pair[1]
		e1, e2 := byRank[seed1].EntrantID, byRank[seed2].EntrantID
		specs = append(specs, BracketMatchSpec{
			MatchNumber:     matchNumber,
			Side:            models.SideWinners,
			Round:           RoundWinnersQuarterfinal,
			DisplayPosition: displayTag("W-QF", i+1),
			Seed1:           intPtr(seed1),
			Seed2:           intPtr(seed2),
			Entrant1ID:      intPtr(e1),
			Entrant2ID:      intPtr(e2),
			WinnerTo:        &SlotRef{MatchNumber: 5 + i/2, Position: i%2 + 1},
			LoserTo:         &SlotRef{MatchNumber: 8 + i/2, Position: i%2 + 1},
		})
	}

	// Winners semifinals, matches 5-6. Losers cross into the opposite half
	// of losers round 2 so a quarterfinal rematch cannot happen there.
	specs = append(specs,
		BracketMatchSpec{
			MatchNumber:     5,
			Side:            models.SideWinners,
			Round:           RoundWinnersSemifinal,
			DisplayPosition: displayTag("W-SF", 1),
			WinnerTo:        &SlotRef{MatchNumber: MatchNumberWinnersFinal, Position: 1},
			LoserTo:         &SlotRef{MatchNumber: 11, Position: 1},
		},
		BracketMatchSpec{
			MatchNumber:     6,
			Side:            models.SideWinners,
			Round:           RoundWinnersSemifinal,
			DisplayPosition: displayTag("W-SF", 2),
			WinnerTo:        &SlotRef{MatchNumber: MatchNumberWinnersFinal, Position: 2},
			LoserTo:         &SlotRef{MatchNumber: 10, Position: 1},
		},
	)

	// Winners final, match 7. The winner is the winners-bracket finalist and
	// takes position 1 of the grand final; the loser gets a last chance in
	// the losers final.
	specs = append(specs, BracketMatchSpec{
		MatchNumber:     MatchNumberWinnersFinal,
		Side:            models.SideWinners,
		Round:           RoundWinnersFinal,
		DisplayPosition: displayTag("W-F", 1),
		WinnerTo:        &SlotRef{MatchNumber: MatchNumberGrandFinal, Position: 1},
		LoserTo:         &SlotRef{MatchNumber: MatchNumberLosersFinal, Position: 1},
	})

	// Losers round 1, matches 8-9: quarterfinal losers. Losing here is
	// elimination.
	specs = append(specs,
		BracketMatchSpec{
			MatchNumber:     8,
			Side:            models.SideLosers,
			Round:           RoundLosersRound1,
			DisplayPosition: displayTag("L-R1", 1),
			WinnerTo:        &SlotRef{MatchNumber: 10, Position: 2},
		},
		BracketMatchSpec{
			MatchNumber:     9,
			Side:            models.SideLosers,
			Round:           RoundLosersRound1,
			DisplayPosition: displayTag("L-R1", 2),
			WinnerTo:        &SlotRef{MatchNumber: 11, Position: 2},
		},
	)

	// Losers round 2, matches 10-11: round-1 survivors against the dropped
	// semifinalists.
	specs = append(specs,
		BracketMatchSpec{
			MatchNumber:     10,
			Side:            models.SideLosers,
			Round:           RoundLosersRound2,
			DisplayPosition: displayTag("L-R2", 1),
			WinnerTo:        &SlotRef{MatchNumber: 12, Position: 1},
		},
		BracketMatchSpec{
			MatchNumber:     11,
			Side:            models.SideLosers,
			Round:           RoundLosersRound2,
			DisplayPosition: displayTag("L-R2", 2),
			WinnerTo:        &SlotRef{MatchNumber: 12, Position: 2},
		},
	)

	// Losers semifinal, match 12.
	specs = append(specs, BracketMatchSpec{
		MatchNumber:     12,
		Side:            models.SideLosers,
		Round:           RoundLosersSemifinal,
		DisplayPosition: displayTag("L-SF", 1),
		WinnerTo:        &SlotRef{MatchNumber: MatchNumberLosersFinal, Position: 2},
	})

	// Losers final, match 13. The winner is the losers-bracket finalist and
	// takes position 2 of the grand final.
	specs = append(specs, BracketMatchSpec{
		MatchNumber:     MatchNumberLosersFinal,
		Side:            models.SideLosers,
		Round:           RoundLosersFinal,
		DisplayPosition: displayTag("L-F", 1),
		WinnerTo:        &SlotRef{MatchNumber: MatchNumberGrandFinal, Position: 2},
	})

	// Grand final and its reset. Neither carries destination wiring: the
	// completion detector resolves them. The reset is populated only when
	// the losers-bracket finalist wins the grand final.
	specs = append(specs,
		BracketMatchSpec{
			MatchNumber:     MatchNumberGrandFinal,
			Side:            models.SideGrandFinal,
			Round:           RoundGrandFinal,
			DisplayPosition: displayTag("GF", 1),
		},
		BracketMatchSpec{
			MatchNumber:     MatchNumberGrandFinalReset,
			Side:            models.SideGrandFinal,
			Round:           RoundGrandFinalReset,
			DisplayPosition: displayTag("GF", 2),
		},
	)

	return specs, nil
}

func displayTag(prefix string, n int) string {
	if n == 1 && (prefix == "W-F" || prefix == "L-SF" || prefix == "L-F") {
		return prefix
	}
	return prefix + "-" + strconv.Itoa(n)
}

func intPtr(v int) *int {
	return &v
}
