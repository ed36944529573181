package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/draftroom/fantasyauction/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AuctionRepository handles all database operations for Auctions.
type AuctionRepository struct {
	db *sqlx.DB
}

// NewAuctionRepository creates a new AuctionRepository.
func NewAuctionRepository(db *sqlx.DB) *AuctionRepository {
	return &AuctionRepository{db: db}
}

// Create inserts a new auction row.
func (r *AuctionRepository) Create(ctx context.Context, a *domain.Auction) error {
	query := `
		INSERT INTO auctions
			(id, league_id, season_id, player_id, phase, start_time, expiration_time,
			 high_bid_value, high_bidder_id, created_at, updated_at)
		VALUES
			(:id, :league_id, :season_id, :player_id, :phase, :start_time, :expiration_time,
			 :high_bid_value, :high_bidder_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("auction_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches an auction by its primary key.
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	var a domain.Auction
	err := r.db.GetContext(ctx, &a, `SELECT * FROM auctions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("auction_repo.GetByID: %w", err)
	}
	return &a, nil
}

// GetByIDForUpdate fetches an auction inside a transaction with a row lock,
// backing the per-auction serialization at the database tier.
func (r *AuctionRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.Auction, error) {
	var a domain.Auction
	err := tx.GetContext(ctx, &a, `SELECT * FROM auctions WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("auction_repo.GetByIDForUpdate: %w", err)
	}
	return &a, nil
}

// UpdatePhase persists a phase change. The WHERE guard keeps Completed
// terminal even if two processes race on the same transition.
func (r *AuctionRepository) UpdatePhase(ctx context.Context, id uuid.UUID, phase domain.Phase) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE auctions
		SET phase = $1, updated_at = now()
		WHERE id = $2 AND phase <> 'completed'`,
		string(phase), id)
	if err != nil {
		return fmt.Errorf("auction_repo.UpdatePhase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAuctionCompleted
	}
	return nil
}

// ApplySummary writes the denormalized high-bid fields inside a transaction.
func (r *AuctionRepository) ApplySummary(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, highBidValue int64, highBidderID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE auctions
		SET high_bid_value = $1, high_bidder_id = $2, updated_at = now()
		WHERE id = $3`,
		highBidValue, highBidderID, id)
	if err != nil {
		return fmt.Errorf("auction_repo.ApplySummary: %w", err)
	}
	return nil
}

// Complete flips the auction into the terminal phase inside a transaction.
// Returns ErrAuctionCompleted when it already was, so callers can treat a
// lost settlement race as the idempotent no-op it is.
func (r *AuctionRepository) Complete(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE auctions
		SET phase = 'completed', updated_at = now()
		WHERE id = $1 AND phase <> 'completed'`,
		id)
	if err != nil {
		return fmt.Errorf("auction_repo.Complete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAuctionCompleted
	}
	return nil
}

// List returns a paginated slice of auctions, optionally filtered by league
// and phase. Returns (auctions, totalCount, error).
func (r *AuctionRepository) List(ctx context.Context, leagueID *uuid.UUID, phase domain.Phase, limit, offset int) ([]*domain.Auction, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if leagueID != nil {
		args = append(args, *leagueID)
		where += fmt.Sprintf(" AND league_id = $%d", len(args))
	}
	if phase != "" {
		args = append(args, string(phase))
		where += fmt.Sprintf(" AND phase = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM auctions `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("auction_repo.List count: %w", err)
	}

	args = append(args, limit, offset)
	var auctions []*domain.Auction
	err := r.db.SelectContext(ctx, &auctions,
		fmt.Sprintf(`SELECT * FROM auctions %s ORDER BY start_time DESC LIMIT $%d OFFSET $%d`,
			where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("auction_repo.List select: %w", err)
	}
	return auctions, total, nil
}

// GetDueForStart returns upcoming auctions whose start time has passed.
func (r *AuctionRepository) GetDueForStart(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	var auctions []*domain.Auction
	err := r.db.SelectContext(ctx, &auctions,
		`SELECT * FROM auctions WHERE phase = 'upcoming' AND start_time <= $1 ORDER BY start_time ASC`,
		now)
	if err != nil {
		return nil, fmt.Errorf("auction_repo.GetDueForStart: %w", err)
	}
	return auctions, nil
}

// GetDueForExpiry returns live auctions whose expiration time has passed.
func (r *AuctionRepository) GetDueForExpiry(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	var auctions []*domain.Auction
	err := r.db.SelectContext(ctx, &auctions,
		`SELECT * FROM auctions WHERE phase = 'live' AND expiration_time <= $1 ORDER BY expiration_time ASC`,
		now)
	if err != nil {
		return nil, fmt.Errorf("auction_repo.GetDueForExpiry: %w", err)
	}
	return auctions, nil
}

// GetDueForSettlement returns pending auctions whose owner-action window has
// elapsed (expiration_time + grace <= now).
func (r *AuctionRepository) GetDueForSettlement(ctx context.Context, now time.Time, grace time.Duration) ([]*domain.Auction, error) {
	var auctions []*domain.Auction
	err := r.db.SelectContext(ctx, &auctions,
		`SELECT * FROM auctions WHERE phase = 'pending' AND expiration_time <= $1 ORDER BY expiration_time ASC`,
		now.Add(-grace))
	if err != nil {
		return nil, fmt.Errorf("auction_repo.GetDueForSettlement: %w", err)
	}
	return auctions, nil
}
