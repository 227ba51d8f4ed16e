package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bracketlab/scoring-platform/brackets"
	"github.com/bracketlab/scoring-platform/models"
	"github.com/bracketlab/scoring-platform/storage"
)

// Placement is one row of the final standings.
type Placement struct {
	Place       int    `json:"place"`
	EntrantID   int    `json:"entrant_id"`
	DisplayName string `json:"display_name"`
}

type ExportService interface {
	// ExportStandings renders the final placements of a completed
	// tournament as CSV, uploads it and returns the public URL.
	ExportStandings(ctx context.Context, tournamentID int) (string, error)
	// Standings computes placements without exporting.
	Standings(ctx context.Context, tournamentID int) ([]Placement, error)
}

type exportService struct {
	bracketService BracketService
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewExportService(bracketService BracketService, uploader storage.FileUploader, logger *slog.Logger) ExportService {
	return &exportService{
		bracketService: bracketService,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *exportService) Standings(ctx context.Context, tournamentID int) ([]Placement, error) {
	view, err := s.bracketService.GetBracket(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if view.Tournament.Status != models.StatusCompleted || view.Tournament.ChampionID == nil {
		return nil, ErrTournamentNotCompleted
	}

	names := make(map[int]string, len(view.Tournament.Entrants))
	for _, e := range view.Tournament.Entrants {
		names[e.ID] = e.DisplayName
	}
	byNumber := make(map[int]*models.Match, len(view.Matches))
	for i := range view.Matches {
		byNumber[view.Matches[i].MatchNumber] = &view.Matches[i]
	}

	champion := *view.Tournament.ChampionID
	placements := []Placement{{Place: 1, EntrantID: champion, DisplayName: names[champion]}}

	// Placements fall out of the elimination structure: the decisive match
	// (reset if played, otherwise the grand final) yields the runner-up,
	// then each losers-bracket round eliminates progressively lower
	// finishers.
	if runnerUp, ok := loserExcluding(byNumber, champion,
		brackets.MatchNumberGrandFinalReset, brackets.MatchNumberGrandFinal); ok {
		placements = append(placements, Placement{Place: 2, EntrantID: runnerUp, DisplayName: names[runnerUp]})
	}
	appendLosers := func(place int, matchNumbers ...int) {
		for _, n := range matchNumbers {
			if loser, ok := loserOf(byNumber[n]); ok {
				placements = append(placements, Placement{Place: place, EntrantID: loser, DisplayName: names[loser]})
			}
		}
	}
	appendLosers(3, brackets.MatchNumberLosersFinal)
	appendLosers(4, 12)
	appendLosers(5, 10, 11)
	appendLosers(7, 8, 9)
	return placements, nil
}

func (s *exportService) ExportStandings(ctx context.Context, tournamentID int) (string, error) {
	placements, err := s.Standings(ctx, tournamentID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"place", "entrant_id", "display_name"})
	for _, p := range placements {
		_ = w.Write([]string{strconv.Itoa(p.Place), strconv.Itoa(p.EntrantID), p.DisplayName})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to render standings CSV: %w", err)
	}

	key := fmt.Sprintf("standings/tournament_%d.csv", tournamentID)
	result, err := s.uploader.Upload(ctx, key, "text/csv", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to upload standings for tournament %d: %w", tournamentID, err)
	}

	s.logger.InfoContext(ctx, "standings exported",
		slog.Int("tournament_id", tournamentID),
		slog.String("key", result.Key))
	return result.Location, nil
}

// loserOf resolves the loser of a completed match from its score.
func loserOf(m *models.Match) (int, bool) {
	if m == nil || !m.Completed || m.Player1ID == nil || m.Player2ID == nil ||
		m.Score1 == nil || m.Score2 == nil {
		return 0, false
	}
	if *m.Score1 > *m.Score2 {
		return *m.Player2ID, true
	}
	return *m.Player1ID, true
}

// loserExcluding returns the non-champion side of the first completed match
// in the list; for the grand-final pair that is the runner-up.
func loserExcluding(byNumber map[int]*models.Match, champion int, matchNumbers ...int) (int, bool) {
	for _, n := range matchNumbers {
		m := byNumber[n]
		if m == nil || !m.Completed || m.Player1ID == nil || m.Player2ID == nil {
			continue
		}
		if *m.Player1ID == champion {
			return *m.Player2ID, true
		}
		return *m.Player1ID, true
	}
	return 0, false
}
