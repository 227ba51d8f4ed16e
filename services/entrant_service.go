package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bracketlab/scoring-platform/brackets"
	"github.com/bracketlab/scoring-platform/models"
	"github.com/bracketlab/scoring-platform/repositories"
)

type RegisterEntrantInput struct {
	DisplayName         string `json:"display_name"`
	QualifyingScore     int    `json:"qualifying_score"`
	QualifyingPoints    int    `json:"qualifying_points"`
	QualifyingRoundWins int    `json:"qualifying_round_wins"`
}

type EntrantService interface {
	Register(ctx context.Context, tournamentID int, input RegisterEntrantInput) (*models.Entrant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Entrant, error)
	// RankPreview shows the deterministic top-8 selection that bracket
	// generation would use right now.
	RankPreview(ctx context.Context, tournamentID int) ([]brackets.RankedEntrant, error)
}

type entrantService struct {
	entrantRepo    repositories.EntrantRepository
	tournamentRepo repositories.TournamentRepository
}

func NewEntrantService(
	entrantRepo repositories.EntrantRepository,
	tournamentRepo repositories.TournamentRepository,
) EntrantService {
	return &entrantService{
		entrantRepo:    entrantRepo,
		tournamentRepo: tournamentRepo,
	}
}

func (s *entrantService) Register(ctx context.Context, tournamentID int, input RegisterEntrantInput) (*models.Entrant, error) {
	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		return nil, ErrEntrantRegistrationNameRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrTournamentRegistrationNotOpen
	}

	entrant := &models.Entrant{
		TournamentID:        tournamentID,
		DisplayName:         name,
		QualifyingScore:     input.QualifyingScore,
		QualifyingPoints:    input.QualifyingPoints,
		QualifyingRoundWins: input.QualifyingRoundWins,
	}
	if err := s.entrantRepo.Create(ctx, entrant); err != nil {
		if errors.Is(err, repositories.ErrEntrantNameConflict) {
			return nil, ErrEntrantNameTaken
		}
		return nil, fmt.Errorf("failed to register entrant: %w", err)
	}
	return entrant, nil
}

func (s *entrantService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Entrant, error) {
	entrants, err := s.entrantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entrants for tournament %d: %w", tournamentID, err)
	}
	return entrants, nil
}

func (s *entrantService) RankPreview(ctx context.Context, tournamentID int) ([]brackets.RankedEntrant, error) {
	entrants, err := s.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return brackets.RankEntrants(dereferenceEntrants(entrants), brackets.BracketSize)
}
