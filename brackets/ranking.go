package brackets

import (
	"sort"

	"github.com/bracketlab/scoring-platform/models"
)

// BracketSize is the only field size the double-elimination topology
// supports.
const BracketSize = 8

// RankedEntrant is one seed produced by RankEntrants, ordered best first.
type RankedEntrant struct {
	EntrantID           int    `json:"entrant_id"`
	DisplayName         string `json:"display_name"`
	Rank                int    `json:"rank"`
	QualifyingScore     int    `json:"qualifying_score"`
	QualifyingPoints    int    `json:"qualifying_points"`
	QualifyingRoundWins int    `json:"qualifying_round_wins"`
}

// RankEntrants orders candidates descending by qualifying score, breaking
// ties by points, then round wins, then input order. The sort is stable, so
// entrants tied on all three metrics keep their insertion order and ranking
// an already-sorted distinct set is a no-op.
//
// Only size-8 selection is supported; anything else is a ValidationError, as
// is a candidate pool smaller than the requested size.
func RankEntrants(candidates []models.Entrant, size int) ([]RankedEntrant, error) {
	if size != BracketSize {
		return nil, validationErrorf("unsupported bracket size %d, only %d is supported", size, BracketSize)
	}
	if len(candidates) < size {
		return nil, validationErrorf("not enough qualified entrants: required %d, found %d", size, len(candidates))
	}

	ordered := make([]models.Entrant, len(candidates))
	copy(ordered, candidates)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.QualifyingScore != b.QualifyingScore {
			return a.QualifyingScore > b.QualifyingScore
		}
		if a.QualifyingPoints != b.QualifyingPoints {
			return a.QualifyingPoints > b.QualifyingPoints
		}
		return a.QualifyingRoundWins > b.QualifyingRoundWins
	})

	ranked := make([]RankedEntrant, size)
	for i := 0; i < size; i++ {
		e := ordered[i]
		ranked[i] = RankedEntrant{
			EntrantID:           e.ID,
			DisplayName:         e.DisplayName,
			Rank:                i + 1,
			QualifyingScore:     e.QualifyingScore,
			QualifyingPoints:    e.QualifyingPoints,
			QualifyingRoundWins: e.QualifyingRoundWins,
		}
	}
	return ranked, nil
}
