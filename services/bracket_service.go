package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/bracketlab/scoring-platform/brackets"
	"github.com/bracketlab/scoring-platform/models"
	"github.com/bracketlab/scoring-platform/repositories"
)

// BracketView is the full bracket as rendered to clients.
type BracketView struct {
	Tournament      *models.Tournament       `json:"tournament"`
	Seeds           []brackets.RankedEntrant `json:"seeds,omitempty"`
	Matches         []models.Match           `json:"matches"`
	GrandFinalState brackets.GrandFinalState `json:"grand_final_state"`
}

type BracketService interface {
	// GenerateAndSaveBracket ranks the tournament's qualifiers, generates
	// the double-elimination topology and persists it in one transaction.
	GenerateAndSaveBracket(ctx context.Context, tournamentID int) (*BracketView, error)
	// GetBracket loads the persisted bracket with its entrants.
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	entrantRepo    repositories.EntrantRepository
	matchRepo      repositories.MatchRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	entrantRepo repositories.EntrantRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		entrantRepo:    entrantRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *bracketService) GenerateAndSaveBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusRegistration {
		if tournament.Status == models.StatusActive || tournament.Status == models.StatusCompleted {
			return nil, ErrTournamentBracketExists
		}
		return nil, ErrTournamentStatusTransition
	}

	candidates, err := s.entrantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifiers for tournament %d: %w", tournamentID, err)
	}

	seeds, err := brackets.RankEntrants(dereferenceEntrants(candidates), brackets.BracketSize)
	if err != nil {
		return nil, err
	}

	generator := brackets.NewDoubleEliminationGenerator()
	specs, err := generator.GenerateBracket(seeds)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "generating bracket",
		slog.Int("tournament_id", tournamentID),
		slog.String("generator", generator.GetName()),
		slog.Int("matches", len(specs)))

	matches, err := s.persistBracket(ctx, tournament, specs)
	if err != nil {
		return nil, err
	}

	view := &BracketView{
		Tournament:      tournament,
		Seeds:           seeds,
		Matches:         matches,
		GrandFinalState: brackets.GrandFinalNotPlayed,
	}
	s.hub.BroadcastToTournament(tournamentID, brackets.EventBracketGenerated, view)
	return view, nil
}

// persistBracket inserts the generated specs as match rows and then stores
// the destination wiring, translated from match numbers to database ids, in
// a second pass. Everything runs in one transaction: a bracket is either
// fully wired or absent.
func (s *bracketService) persistBracket(ctx context.Context, tournament *models.Tournament, specs []brackets.BracketMatchSpec) ([]models.Match, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed after bracket persist error",
					slog.Int("tournament_id", tournament.ID), slog.Any("error", rbErr))
			}
		}
	}()

	matches := make([]models.Match, 0, len(specs))
	idByNumber := make(map[int]int, len(specs))
	for _, spec := range specs {
		match := models.Match{
			TournamentID: tournament.ID,
			MatchNumber:  spec.MatchNumber,
			Round:        spec.Round,
			BracketSide:  spec.Side,
			Position:     spec.DisplayPosition,
			Player1ID:    spec.Entrant1ID,
			Player2ID:    spec.Entrant2ID,
		}
		if err = s.matchRepo.Create(ctx, tx, &match); err != nil {
			return nil, fmt.Errorf("failed to insert match %d: %w", spec.MatchNumber, err)
		}
		idByNumber[match.MatchNumber] = match.ID
		matches = append(matches, match)
	}

	for i, spec := range specs {
		winnerNextID, winnerSlot := resolveDestination(spec.WinnerTo, idByNumber)
		loserNextID, loserSlot := resolveDestination(spec.LoserTo, idByNumber)
		if spec.WinnerTo == nil && spec.LoserTo == nil {
			continue
		}
		if err = s.matchRepo.UpdateDestinations(ctx, tx, matches[i].ID, winnerNextID, winnerSlot, loserNextID, loserSlot); err != nil {
			return nil, fmt.Errorf("failed to wire match %d: %w", spec.MatchNumber, err)
		}
		matches[i].WinnerNextMatchID = winnerNextID
		matches[i].WinnerNextSlot = winnerSlot
		matches[i].LoserNextMatchID = loserNextID
		matches[i].LoserNextSlot = loserSlot
	}

	if err = s.tournamentRepo.UpdateStatus(ctx, tx, tournament.ID, models.StatusActive); err != nil {
		return nil, fmt.Errorf("failed to activate tournament %d: %w", tournament.ID, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket for tournament %d: %w", tournament.ID, err)
	}
	tournament.Status = models.StatusActive
	return matches, nil
}

func resolveDestination(ref *brackets.SlotRef, idByNumber map[int]int) (*int, *int) {
	if ref == nil {
		return nil, nil
	}
	id := idByNumber[ref.MatchNumber]
	slot := ref.Position
	return &id, &slot
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	var (
		matches  []*models.Match
		entrants []*models.Entrant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var listErr error
		matches, listErr = s.matchRepo.ListByTournament(gctx, tournamentID)
		return listErr
	})
	g.Go(func() error {
		var listErr error
		entrants, listErr = s.entrantRepo.ListByTournament(gctx, tournamentID)
		return listErr
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load bracket for tournament %d: %w", tournamentID, err)
	}

	tournament.Entrants = dereferenceEntrants(entrants)

	view := &BracketView{Tournament: tournament, Matches: make([]models.Match, 0, len(matches))}
	var grandFinal, reset *models.Match
	for _, m := range matches {
		view.Matches = append(view.Matches, *m)
		switch m.MatchNumber {
		case brackets.MatchNumberGrandFinal:
			grandFinal = m
		case brackets.MatchNumberGrandFinalReset:
			reset = m
		}
	}
	view.GrandFinalState = brackets.GrandFinalStateOf(grandFinal, reset)
	return view, nil
}

func dereferenceEntrants(slice []*models.Entrant) []models.Entrant {
	result := make([]models.Entrant, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}
