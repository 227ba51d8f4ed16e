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
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match references an unknown tournament")
	ErrMatchPlayerInvalid     = errors.New("match references an unknown entrant")
	ErrMatchSlotOccupied      = errors.New("match slot already holds a different entrant")
	ErrMatchSlotInvalid       = errors.New("match slot must be 1 or 2")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	GetByTournamentAndNumber(ctx context.Context, tournamentID, matchNumber int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	// UpdateDestinations stores the static wiring computed at generation.
	UpdateDestinations(ctx context.Context, exec SQLExecutor, matchID int, winnerNextID, winnerSlot, loserNextID, loserSlot *int) error
	// SaveResult persists the final score and flips the completed flag.
	SaveResult(ctx context.Context, matchID, score1, score2 int) error
	// FillPlayerSlot writes an entrant into an empty slot. The UPDATE is
	// guarded so a slot already holding a different entrant is never
	// overwritten; that case is reported as ErrMatchSlotOccupied.
	FillPlayerSlot(ctx context.Context, matchID, slot, entrantID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, match_number, round, bracket_side, position,
	player1_id, player2_id, score1, score2, completed,
	winner_next_match_id, winner_next_slot, loser_next_match_id, loser_next_slot,
	created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, match_number, round, bracket_side, position,
			 player1_id, player2_id, completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.MatchNumber,
		match.Round,
		match.BracketSide,
		match.Position,
		match.Player1ID,
		match.Player2ID,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *postgresMatchRepository) GetByTournamentAndNumber(ctx context.Context, tournamentID, matchNumber int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1 AND match_number = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, tournamentID, matchNumber), matchNumber)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY match_number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) UpdateDestinations(ctx context.Context, exec SQLExecutor, matchID int, winnerNextID, winnerSlot, loserNextID, loserSlot *int) error {
	query := `
		UPDATE matches
		SET winner_next_match_id = $1, winner_next_slot = $2,
		    loser_next_match_id = $3, loser_next_slot = $4
		WHERE id = $5`

	result, err := exec.ExecContext(ctx, query, winnerNextID, winnerSlot, loserNextID, loserSlot, matchID)
	if err != nil {
		return fmt.Errorf("failed to store destinations for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SaveResult(ctx context.Context, matchID, score1, score2 int) error {
	query := `UPDATE matches SET score1 = $1, score2 = $2, completed = true WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, score1, score2, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) FillPlayerSlot(ctx context.Context, matchID, slot, entrantID int) error {
	var query string
	switch slot {
	case 1:
		query = `UPDATE matches SET player1_id = $1
			WHERE id = $2 AND (player1_id IS NULL OR player1_id = $1)`
	case 2:
		query = `UPDATE matches SET player2_id = $1
			WHERE id = $2 AND (player2_id IS NULL OR player2_id = $1)`
	default:
		return ErrMatchSlotInvalid
	}

	result, err := r.db.ExecContext(ctx, query, entrantID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Zero rows means either the match is gone or the slot is taken.
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)`, matchID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to verify match %d: %w", matchID, err)
	}
	if !exists {
		return ErrMatchNotFound
	}
	return ErrMatchSlotOccupied
}

func (r *postgresMatchRepository) scanOne(row *sql.Row, id int) (*models.Match, error) {
	match, err := scanMatch(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func scanMatch(scan func(dest ...interface{}) error) (*models.Match, error) {
	match := &models.Match{}
	err := scan(
		&match.ID,
		&match.TournamentID,
		&match.MatchNumber,
		&match.Round,
		&match.BracketSide,
		&match.Position,
		&match.Player1ID,
		&match.Player2ID,
		&match.Score1,
		&match.Score2,
		&match.Completed,
		&match.WinnerNextMatchID,
		&match.WinnerNextSlot,
		&match.LoserNextMatchID,
		&match.LoserNextSlot,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_player1_id_fkey", "matches_player2_id_fkey":
			return ErrMatchPlayerInvalid
		case "matches_tournament_id_match_number_key":
			return fmt.Errorf("match number conflict: %w", err)
		}
	}
	return err
}
