package service

import (
	"context"
	"fmt"
	"time"

	"github.com/draftroom/fantasyauction/internal/domain"
	"github.com/draftroom/fantasyauction/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SettlementStore is the persistence surface settlement needs, narrowed to an
// interface so tests can substitute an in-memory fake. The production
// implementation wraps the sqlx repositories and owns the finalize
// transaction.
type SettlementStore interface {
	GetAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error)
	GetHighBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error)
	// FinalizeWinner flags the winning bid and completes the auction in one
	// transaction.
	FinalizeWinner(ctx context.Context, auctionID, bidID uuid.UUID) error
	// CompleteNoWinner completes an auction that never received a bid.
	CompleteNoWinner(ctx context.Context, auctionID uuid.UUID) error
	DueForSettlement(ctx context.Context, now time.Time, grace time.Duration) ([]*domain.Auction, error)
}

type sqlSettlementStore struct {
	db          *sqlx.DB
	auctionRepo *repository.AuctionRepository
	bidRepo     *repository.BidRepository
}

// NewSettlementStore builds the production SettlementStore over the shared
// sqlx handle and repositories.
func NewSettlementStore(
	db *sqlx.DB,
	auctionRepo *repository.AuctionRepository,
	bidRepo *repository.BidRepository,
) SettlementStore {
	return &sqlSettlementStore{db: db, auctionRepo: auctionRepo, bidRepo: bidRepo}
}

func (st *sqlSettlementStore) GetAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	return st.auctionRepo.GetByID(ctx, id)
}

func (st *sqlSettlementStore) GetHighBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	return st.bidRepo.GetHighBid(ctx, auctionID)
}

func (st *sqlSettlementStore) FinalizeWinner(ctx context.Context, auctionID, bidID uuid.UUID) error {
	tx, txErr := st.db.BeginTxx(ctx, nil)
	if txErr != nil {
		return fmt.Errorf("settlement_store.FinalizeWinner: begin tx: %w", txErr)
	}
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if txErr = st.bidRepo.MarkWinning(ctx, tx, bidID); txErr != nil {
		return fmt.Errorf("settlement_store.FinalizeWinner: mark winning: %w", txErr)
	}
	if txErr = st.auctionRepo.Complete(ctx, tx, auctionID); txErr != nil {
		return fmt.Errorf("settlement_store.FinalizeWinner: complete: %w", txErr)
	}
	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("settlement_store.FinalizeWinner: commit: %w", txErr)
	}
	return nil
}

func (st *sqlSettlementStore) CompleteNoWinner(ctx context.Context, auctionID uuid.UUID) error {
	tx, txErr := st.db.BeginTxx(ctx, nil)
	if txErr != nil {
		return fmt.Errorf("settlement_store.CompleteNoWinner: begin tx: %w", txErr)
	}
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if txErr = st.auctionRepo.Complete(ctx, tx, auctionID); txErr != nil {
		return fmt.Errorf("settlement_store.CompleteNoWinner: %w", txErr)
	}
	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("settlement_store.CompleteNoWinner: commit: %w", txErr)
	}
	return nil
}

func (st *sqlSettlementStore) DueForSettlement(ctx context.Context, now time.Time, grace time.Duration) ([]*domain.Auction, error) {
	return st.auctionRepo.GetDueForSettlement(ctx, now, grace)
}
