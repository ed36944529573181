package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/draftroom/fantasyauction/internal/config"
	"github.com/draftroom/fantasyauction/internal/domain"
	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Allocator interface — implemented by RosterService
// Declared here to break the import cycle between settlement and roster code.
// ──────────────────────────────────────────────────────────────────────────────

// Allocator is the external collaborator settlement calls exactly once per
// auction. Implementations must be safe to call again for the same
// Allocation.AuctionID without double-charging.
type Allocator interface {
	Allocate(ctx context.Context, alloc domain.Allocation) error
}

// SettlementBroadcaster is the minimal interface SettlementService needs from
// the WS hub.
type SettlementBroadcaster interface {
	BroadcastAuctionSettled(summary *domain.AuctionSummary)
}

// ──────────────────────────────────────────────────────────────────────────────
// SettlementService
// ──────────────────────────────────────────────────────────────────────────────

// SettlementService finalizes auctions: it trusts the resolution invariant
// that the flagged high bid carries the final price, issues the one roster
// allocation, flags the winning bid and completes the auction.
type SettlementService struct {
	store       SettlementStore
	cfg         *config.Config
	locks       *keyedMutex
	allocator   Allocator             // injected after RosterService is built
	broadcaster SettlementBroadcaster // injected after the WS hub is built
	logger      *slog.Logger
}

// NewSettlementService builds a SettlementService. locks must be the same
// keyed mutex the AuctionService uses, so settlement and bid resolution for
// one auction never interleave.
func NewSettlementService(
	store SettlementStore,
	locks *keyedMutex,
	cfg *config.Config,
	logger *slog.Logger,
) *SettlementService {
	return &SettlementService{
		store:  store,
		cfg:    cfg,
		locks:  locks,
		logger: logger,
	}
}

// SetAllocator injects the RosterService dependency post-construction.
func (s *SettlementService) SetAllocator(a Allocator) { s.allocator = a }

// SetBroadcaster injects the WS hub dependency post-construction.
func (s *SettlementService) SetBroadcaster(b SettlementBroadcaster) { s.broadcaster = b }

// ──────────────────────────────────────────────────────────────────────────────
// Settle
// ──────────────────────────────────────────────────────────────────────────────

// Settle finalizes one auction. Idempotent: an already-completed auction is a
// no-op. When a high bidder exists the allocation call is issued before the
// auction is completed, so a failed allocation leaves the auction in
// PhasePending and Settle can simply be retried; the allocator deduplicates
// on auction id, which makes the retry safe even if the first call partially
// succeeded.
func (s *SettlementService) Settle(ctx context.Context, auctionID uuid.UUID) error {
	s.locks.Lock(auctionID)
	defer s.locks.Unlock(auctionID)

	a, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("settlement_service.Settle: %w", err)
	}
	if a.IsCompleted() {
		return nil
	}

	// No bids were ever accepted: complete with no allocation call.
	if !a.HasHighBid() {
		return s.completeWithoutWinner(ctx, a)
	}

	high, err := s.store.GetHighBid(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("settlement_service.Settle: high bid: %w", err)
	}

	// Allocation first. The final price is the invariant-maintained visible
	// price; settlement never recomputes it.
	alloc := domain.Allocation{
		AuctionID: a.ID,
		LeagueID:  a.LeagueID,
		BidderID:  high.BidderID,
		PlayerID:  a.PlayerID,
		Price:     *a.HighBidValue,
	}
	if err := s.allocator.Allocate(ctx, alloc); err != nil {
		return fmt.Errorf("settlement_service.Settle: %w: %w", domain.ErrAllocationFailed, err)
	}

	// Allocation is durably recorded; now flag the winner and complete.
	if err := s.store.FinalizeWinner(ctx, a.ID, high.ID); err != nil {
		return fmt.Errorf("settlement_service.Settle: %w", err)
	}

	a.Phase = domain.PhaseCompleted
	s.logger.Info("auction settled",
		"auction", a.ID, "winner", high.BidderID, "price", *a.HighBidValue)

	if s.broadcaster != nil {
		summary := a.ToSummary()
		go s.broadcaster.BroadcastAuctionSettled(&summary)
	}
	return nil
}

// completeWithoutWinner finishes an auction that received no bids.
func (s *SettlementService) completeWithoutWinner(ctx context.Context, a *domain.Auction) error {
	if err := s.store.CompleteNoWinner(ctx, a.ID); err != nil {
		return fmt.Errorf("settlement_service.completeWithoutWinner: %w", err)
	}

	a.Phase = domain.PhaseCompleted
	s.logger.Info("auction settled without bids", "auction", a.ID)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// SettleDue — called by the scheduler every tick
// ──────────────────────────────────────────────────────────────────────────────

// SettleDue settles every pending auction whose owner-action window has
// elapsed. A single failing auction does NOT abort the others; it stays
// pending and is retried next tick.
func (s *SettlementService) SettleDue(ctx context.Context, now time.Time) error {
	due, err := s.store.DueForSettlement(ctx, now, s.cfg.Auction.PendingGrace)
	if err != nil {
		return fmt.Errorf("settlement_service.SettleDue: fetch: %w", err)
	}

	for _, a := range due {
		if err := s.Settle(ctx, a.ID); err != nil {
			s.logger.Error("settlement failed, will retry", "auction", a.ID, "err", err)
		}
	}
	return nil
}
