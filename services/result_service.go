package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bracketlab/scoring-platform/brackets"
	"github.com/bracketlab/scoring-platform/models"
	"github.com/bracketlab/scoring-platform/repositories"
)

// RecordResultInput is one match-completion event. RequiredWins may be left
// zero to use the tournament default (best-of-5 plays to 3).
type RecordResultInput struct {
	Score1       int `json:"score1"`
	Score2       int `json:"score2"`
	RequiredWins int `json:"required_wins,omitempty"`
}

type ResultService interface {
	RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*brackets.Outcome, error)
}

type resultService struct {
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewResultService(
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		hub:            hub,
		logger:         logger,
	}
}

// RecordResult wraps the advancement engine with the Postgres-backed store,
// then applies the side effects the engine stays pure of: tournament status,
// champion, websocket notifications.
func (s *resultService) RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*brackets.Outcome, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, &brackets.NotFoundError{Resource: "match", ID: matchID}
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}

	requiredWins := input.RequiredWins
	if requiredWins == 0 {
		tournament, terr := s.tournamentRepo.GetByID(ctx, match.TournamentID)
		if terr != nil {
			return nil, fmt.Errorf("failed to load tournament %d: %w", match.TournamentID, terr)
		}
		requiredWins = tournament.RequiredWins()
	}

	engine := brackets.NewAdvancementEngine(&matchStoreAdapter{repo: s.matchRepo})
	outcome, err := engine.RecordResult(ctx, matchID, input.Score1, input.Score2, requiredWins)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "match result recorded",
		slog.Int("tournament_id", match.TournamentID),
		slog.Int("match_number", match.MatchNumber),
		slog.Int("winner_id", outcome.WinnerID))

	s.hub.BroadcastToTournament(match.TournamentID, brackets.EventMatchCompleted, map[string]interface{}{
		"match_id":     matchID,
		"match_number": match.MatchNumber,
		"outcome":      outcome,
	})

	if outcome.IsComplete && outcome.ChampionID != nil {
		if err := s.tournamentRepo.SetChampion(ctx, match.TournamentID, *outcome.ChampionID); err != nil {
			return nil, fmt.Errorf("failed to record champion for tournament %d: %w", match.TournamentID, err)
		}
		s.hub.BroadcastToTournament(match.TournamentID, brackets.EventTournamentCompleted, map[string]interface{}{
			"champion_id": *outcome.ChampionID,
		})
	}
	return outcome, nil
}

// matchStoreAdapter exposes the repository through the engine's MatchStore
// interface, translating repository sentinels into the engine's typed
// errors.
type matchStoreAdapter struct {
	repo repositories.MatchRepository
}

func (a *matchStoreAdapter) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := a.repo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, &brackets.NotFoundError{Resource: "match", ID: matchID}
		}
		return nil, err
	}
	return match, nil
}

func (a *matchStoreAdapter) GetMatchByNumber(ctx context.Context, tournamentID, matchNumber int) (*models.Match, error) {
	match, err := a.repo.GetByTournamentAndNumber(ctx, tournamentID, matchNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, &brackets.NotFoundError{Resource: "match", ID: matchNumber}
		}
		return nil, err
	}
	return match, nil
}

func (a *matchStoreAdapter) SaveResult(ctx context.Context, matchID, score1, score2 int) error {
	err := a.repo.SaveResult(ctx, matchID, score1, score2)
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return &brackets.NotFoundError{Resource: "match", ID: matchID}
	}
	return err
}

func (a *matchStoreAdapter) FillSlot(ctx context.Context, matchID, slot, entrantID int) error {
	err := a.repo.FillPlayerSlot(ctx, matchID, slot, entrantID)
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return &brackets.NotFoundError{Resource: "match", ID: matchID}
	case errors.Is(err, repositories.ErrMatchSlotOccupied):
		return brackets.ErrSlotOccupied
	}
	return err
}

func (a *matchStoreAdapter) CountMatches(ctx context.Context, tournamentID int) (int, error) {
	return a.repo.CountByTournament(ctx, tournamentID)
}
