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

// BidRepository handles all database operations for Bids.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository creates a new BidRepository.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create inserts a new bid inside an existing transaction.
func (r *BidRepository) Create(ctx context.Context, tx *sqlx.Tx, b *domain.Bid) error {
	query := `
		INSERT INTO bids
			(id, auction_id, bidder_id, max_value, current_value, current_high_bid,
			 winning_bid, placed_at, updated_at)
		VALUES
			(:id, :auction_id, :bidder_id, :max_value, :current_value, :current_high_bid,
			 :winning_bid, :placed_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("bid_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a bid by its primary key.
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	var b domain.Bid
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bids WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}
		return nil, fmt.Errorf("bid_repo.GetByID: %w", err)
	}
	return &b, nil
}

// GetHighBid returns the unique bid flagged current_high_bid for an auction.
// Returns ErrNoHighBid when no bid has been accepted yet.
func (r *BidRepository) GetHighBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	var b domain.Bid
	err := r.db.GetContext(ctx, &b,
		`SELECT * FROM bids WHERE auction_id = $1 AND current_high_bid = true`,
		auctionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoHighBid
		}
		return nil, fmt.Errorf("bid_repo.GetHighBid: %w", err)
	}
	return &b, nil
}

// GetHighBidForUpdate is GetHighBid with a row lock, for use inside the
// resolution or settlement transaction.
func (r *BidRepository) GetHighBidForUpdate(ctx context.Context, tx *sqlx.Tx, auctionID uuid.UUID) (*domain.Bid, error) {
	var b domain.Bid
	err := tx.GetContext(ctx, &b,
		`SELECT * FROM bids WHERE auction_id = $1 AND current_high_bid = true FOR UPDATE`,
		auctionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoHighBid
		}
		return nil, fmt.Errorf("bid_repo.GetHighBidForUpdate: %w", err)
	}
	return &b, nil
}

// ListByAuction returns all bids of an auction in submission order.
func (r *BidRepository) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := r.db.SelectContext(ctx, &bids,
		`SELECT * FROM bids WHERE auction_id = $1 ORDER BY placed_at ASC, id ASC`,
		auctionID)
	if err != nil {
		return nil, fmt.Errorf("bid_repo.ListByAuction: %w", err)
	}
	return bids, nil
}

// ListByBidder returns a bidder's bid history, paginated.
func (r *BidRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := r.db.SelectContext(ctx, &bids,
		`SELECT * FROM bids WHERE bidder_id = $1 ORDER BY placed_at DESC LIMIT $2 OFFSET $3`,
		bidderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bid_repo.ListByBidder: %w", err)
	}
	return bids, nil
}

// applyUpdate writes one resolution bid mutation. current_value may only move
// up; the WHERE guard makes a decreasing write a hard failure instead of a
// silent corruption.
func (r *BidRepository) applyUpdate(ctx context.Context, tx *sqlx.Tx, u domain.BidUpdate) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE bids
		SET current_value    = $1,
		    current_high_bid = $2,
		    updated_at       = now()
		WHERE id = $3
		  AND (current_value IS NULL OR current_value <= $1)`,
		u.CurrentValue, u.CurrentHigh, u.BidID)
	if err != nil {
		return fmt.Errorf("bid_repo.applyUpdate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bid_repo.applyUpdate: bid %s: visible price would decrease", u.BidID)
	}
	return nil
}

// ApplyResolution persists both bid mutations of a resolution inside the
// caller's transaction. The prior bid (when present) is written first so the
// single-high-bid unique index never sees two flagged rows.
func (r *BidRepository) ApplyResolution(ctx context.Context, tx *sqlx.Tx, res *domain.Resolution) error {
	if res.Prior != nil {
		if err := r.applyUpdate(ctx, tx, *res.Prior); err != nil {
			return err
		}
	}
	return r.applyUpdate(ctx, tx, res.Incoming)
}

// MarkWinning flags the settled high bid inside a transaction. Idempotent:
// re-flagging an already-winning bid affects no rows and is not an error.
func (r *BidRepository) MarkWinning(ctx context.Context, tx *sqlx.Tx, bidID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bids
		SET winning_bid = true, updated_at = now()
		WHERE id = $1 AND winning_bid = false`,
		bidID)
	if err != nil {
		return fmt.Errorf("bid_repo.MarkWinning: %w", err)
	}
	return nil
}
