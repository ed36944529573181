package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/draftroom/fantasyauction/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RosterRepository handles all database operations for Leagues, Rosters and
// RosterPlayers.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository creates a new RosterRepository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// GetLeague fetches a league by its primary key.
func (r *RosterRepository) GetLeague(ctx context.Context, id uuid.UUID) (*domain.League, error) {
	var l domain.League
	err := r.db.GetContext(ctx, &l, `SELECT * FROM leagues WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLeagueNotFound
		}
		return nil, fmt.Errorf("roster_repo.GetLeague: %w", err)
	}
	return &l, nil
}

// GetRoster fetches the roster a bidder owns in a league.
func (r *RosterRepository) GetRoster(ctx context.Context, leagueID, userID uuid.UUID) (*domain.Roster, error) {
	var ro domain.Roster
	err := r.db.GetContext(ctx, &ro,
		`SELECT * FROM rosters WHERE league_id = $1 AND user_id = $2`,
		leagueID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRosterNotFound
		}
		return nil, fmt.Errorf("roster_repo.GetRoster: %w", err)
	}
	return &ro, nil
}

// GetRosterForUpdate locks and fetches the roster row inside a transaction.
// The lock serializes cap checks against concurrent allocations.
func (r *RosterRepository) GetRosterForUpdate(ctx context.Context, tx *sqlx.Tx, leagueID, userID uuid.UUID) (*domain.Roster, error) {
	var ro domain.Roster
	err := tx.GetContext(ctx, &ro,
		`SELECT * FROM rosters WHERE league_id = $1 AND user_id = $2 FOR UPDATE`,
		leagueID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRosterNotFound
		}
		return nil, fmt.Errorf("roster_repo.GetRosterForUpdate: %w", err)
	}
	return &ro, nil
}

// ListRosters returns every roster of a league.
func (r *RosterRepository) ListRosters(ctx context.Context, leagueID uuid.UUID) ([]*domain.Roster, error) {
	var rosters []*domain.Roster
	err := r.db.SelectContext(ctx, &rosters,
		`SELECT * FROM rosters WHERE league_id = $1 ORDER BY created_at ASC`,
		leagueID)
	if err != nil {
		return nil, fmt.Errorf("roster_repo.ListRosters: %w", err)
	}
	return rosters, nil
}

// ListRosterPlayers returns a roster's players in acquisition order.
func (r *RosterRepository) ListRosterPlayers(ctx context.Context, rosterID uuid.UUID) ([]*domain.RosterPlayer, error) {
	var players []*domain.RosterPlayer
	err := r.db.SelectContext(ctx, &players,
		`SELECT * FROM roster_players WHERE roster_id = $1 ORDER BY created_at ASC`,
		rosterID)
	if err != nil {
		return nil, fmt.Errorf("roster_repo.ListRosterPlayers: %w", err)
	}
	return players, nil
}

// CountRosterPlayers returns the number of players on a roster.
func (r *RosterRepository) CountRosterPlayers(ctx context.Context, rosterID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM roster_players WHERE roster_id = $1`, rosterID)
	if err != nil {
		return 0, fmt.Errorf("roster_repo.CountRosterPlayers: %w", err)
	}
	return n, nil
}

// AddPlayer inserts a roster_players row inside a transaction. auction_id is
// unique, so re-allocating the same auction affects zero rows; inserted
// reports whether this call actually added the player.
func (r *RosterRepository) AddPlayer(ctx context.Context, tx *sqlx.Tx, rp *domain.RosterPlayer) (inserted bool, err error) {
	query := `
		INSERT INTO roster_players
			(id, roster_id, player_id, auction_id, salary, created_at)
		VALUES
			(:id, :roster_id, :player_id, :auction_id, :salary, :created_at)
		ON CONFLICT (auction_id) DO NOTHING`
	res, err := tx.NamedExecContext(ctx, query, rp)
	if err != nil {
		return false, fmt.Errorf("roster_repo.AddPlayer: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// AddSalary bumps the roster's denormalized total inside a transaction.
func (r *RosterRepository) AddSalary(ctx context.Context, tx *sqlx.Tx, rosterID uuid.UUID, salary int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE rosters SET total_salary = total_salary + $1 WHERE id = $2`,
		salary, rosterID)
	if err != nil {
		return fmt.Errorf("roster_repo.AddSalary: %w", err)
	}
	return nil
}
