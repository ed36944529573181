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

// PlayerRepository handles all database operations for the player catalog.
type PlayerRepository struct {
	db *sqlx.DB
}

// NewPlayerRepository creates a new PlayerRepository.
func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// GetByID fetches a player by its primary key.
func (r *PlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	var p domain.Player
	err := r.db.GetContext(ctx, &p,
		`SELECT id, name, team, position FROM players WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("player_repo.GetByID: %w", err)
	}
	return &p, nil
}

// List returns a paginated slice of the player catalog.
func (r *PlayerRepository) List(ctx context.Context, limit, offset int) ([]*domain.Player, error) {
	var players []*domain.Player
	err := r.db.SelectContext(ctx, &players,
		`SELECT id, name, team, position FROM players ORDER BY name ASC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("player_repo.List: %w", err)
	}
	return players, nil
}
