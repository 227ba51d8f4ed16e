package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/bracketlab/scoring-platform/models"
)

var (
	ErrEntrantNotFound          = errors.New("entrant not found")
	ErrEntrantNameConflict      = errors.New("entrant display name already registered for this tournament")
	ErrEntrantTournamentInvalid = errors.New("entrant references an unknown tournament")
)

type EntrantRepository interface {
	Create(ctx context.Context, entrant *models.Entrant) error
	GetByID(ctx context.Context, id int) (*models.Entrant, error)
	// ListByTournament returns entrants in insertion order; the ranking
	// stage relies on that order as its final tie-breaker.
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Entrant, error)
}

type postgresEntrantRepository struct {
	db *sql.DB
}

func NewPostgresEntrantRepository(db *sql.DB) EntrantRepository {
	return &postgresEntrantRepository{db: db}
}

func (r *postgresEntrantRepository) Create(ctx context.Context, entrant *models.Entrant) error {
	query := `
		INSERT INTO entrants
			(tournament_id, display_name, qualifying_score, qualifying_points, qualifying_round_wins)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		entrant.TournamentID,
		entrant.DisplayName,
		entrant.QualifyingScore,
		entrant.QualifyingPoints,
		entrant.QualifyingRoundWins,
	).Scan(&entrant.ID, &entrant.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "entrants_tournament_id_display_name_key":
				return ErrEntrantNameConflict
			case "entrants_tournament_id_fkey":
				return ErrEntrantTournamentInvalid
			}
		}
		return fmt.Errorf("failed to create entrant: %w", err)
	}
	return nil
}

func (r *postgresEntrantRepository) GetByID(ctx context.Context, id int) (*models.Entrant, error) {
	query := `
		SELECT id, tournament_id, display_name,
		       qualifying_score, qualifying_points, qualifying_round_wins, created_at
		FROM entrants
		WHERE id = $1`

	entrant := &models.Entrant{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&entrant.ID,
		&entrant.TournamentID,
		&entrant.DisplayName,
		&entrant.QualifyingScore,
		&entrant.QualifyingPoints,
		&entrant.QualifyingRoundWins,
		&entrant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntrantNotFound
		}
		return nil, fmt.Errorf("failed to scan entrant %d: %w", id, err)
	}
	return entrant, nil
}

func (r *postgresEntrantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Entrant, error) {
	query := `
		SELECT id, tournament_id, display_name,
		       qualifying_score, qualifying_points, qualifying_round_wins, created_at
		FROM entrants
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entrants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	entrants := make([]*models.Entrant, 0)
	for rows.Next() {
		entrant := &models.Entrant{}
		if scanErr := rows.Scan(
			&entrant.ID,
			&entrant.TournamentID,
			&entrant.DisplayName,
			&entrant.QualifyingScore,
			&entrant.QualifyingPoints,
			&entrant.QualifyingRoundWins,
			&entrant.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan entrant row: %w", scanErr)
		}
		entrants = append(entrants, entrant)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during entrant rows iteration: %w", err)
	}
	return entrants, nil
}
