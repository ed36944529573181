package service

import (
	"context"
	"fmt"
	"time"

	"github.com/draftroom/fantasyauction/internal/config"
	"github.com/draftroom/fantasyauction/internal/domain"
	"github.com/draftroom/fantasyauction/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ──────────────────────────────────────────────────────────────────────────────
// Interfaces injected into AuctionService to avoid import cycles
// ──────────────────────────────────────────────────────────────────────────────

// Broadcaster is the minimal interface AuctionService needs from the WS hub.
// Implemented by ws.Hub.
type Broadcaster interface {
	BroadcastBidAccepted(summary *domain.AuctionSummary)
	BroadcastAuctionLive(summary *domain.AuctionSummary)
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionService
// ──────────────────────────────────────────────────────────────────────────────

// AuctionService owns the auction lifecycle and the bid-resolution entry
// point. Every mutation of one auction runs under that auction's keyed mutex,
// so resolution is the sequential fold over bids the invariants require;
// different auctions proceed without contention.
type AuctionService struct {
	db          *sqlx.DB
	auctionRepo *repository.AuctionRepository
	bidRepo     *repository.BidRepository
	playerRepo  *repository.PlayerRepository
	locks       *keyedMutex
	rules       domain.Rules
	broadcaster Broadcaster // injected after the WS hub is built
}

// NewAuctionService creates an AuctionService. locks must be the process-wide
// keyed mutex shared with SettlementService.
func NewAuctionService(
	db *sqlx.DB,
	auctionRepo *repository.AuctionRepository,
	bidRepo *repository.BidRepository,
	playerRepo *repository.PlayerRepository,
	locks *keyedMutex,
	cfg *config.Config,
) *AuctionService {
	return &AuctionService{
		db:          db,
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		playerRepo:  playerRepo,
		locks:       locks,
		rules: domain.Rules{
			MinBidValue:     cfg.Auction.MinBidValue,
			MinBidIncrement: cfg.Auction.MinBidIncrement,
		},
	}
}

// SetBroadcaster injects the WS hub dependency post-construction.
func (s *AuctionService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// SharedLocks builds the keyed mutex passed to the services at wiring time.
func SharedLocks() *keyedMutex { return newKeyedMutex() }

// ──────────────────────────────────────────────────────────────────────────────
// CreateAuction
// ──────────────────────────────────────────────────────────────────────────────

// CreateAuctionRequest carries the validated inputs for scheduling an auction.
type CreateAuctionRequest struct {
	LeagueID       uuid.UUID
	SeasonID       *uuid.UUID
	PlayerID       uuid.UUID
	StartTime      time.Time
	ExpirationTime time.Time
}

// CreateAuction schedules the sale of one player. The auction starts in
// PhaseUpcoming; the scheduler (or an explicit TransitionTo call) takes it
// live at StartTime.
func (s *AuctionService) CreateAuction(ctx context.Context, req CreateAuctionRequest) (*domain.Auction, error) {
	if !req.ExpirationTime.After(req.StartTime) {
		return nil, fmt.Errorf("auction_service.CreateAuction: expiration %s is not after start %s",
			req.ExpirationTime.Format(time.RFC3339), req.StartTime.Format(time.RFC3339))
	}
	if _, err := s.playerRepo.GetByID(ctx, req.PlayerID); err != nil {
		return nil, fmt.Errorf("auction_service.CreateAuction: player: %w", err)
	}

	now := time.Now().UTC()
	a := &domain.Auction{
		ID:             uuid.New(),
		LeagueID:       req.LeagueID,
		SeasonID:       req.SeasonID,
		PlayerID:       req.PlayerID,
		Phase:          domain.PhaseUpcoming,
		StartTime:      req.StartTime.UTC(),
		ExpirationTime: req.ExpirationTime.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.auctionRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("auction_service.CreateAuction: db: %w", err)
	}
	return a, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// TransitionTo
// ──────────────────────────────────────────────────────────────────────────────

// TransitionTo records a phase change requested by the scheduler or the
// application layer. Setting the current phase again is a no-op and is not
// re-persisted. Leaving PhaseCompleted is rejected with ErrAuctionCompleted.
// The core does not second-guess sequencing beyond that; timing is the
// caller's job.
func (s *AuctionService) TransitionTo(ctx context.Context, auctionID uuid.UUID, phase domain.Phase) (*domain.Auction, error) {
	s.locks.Lock(auctionID)
	defer s.locks.Unlock(auctionID)

	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction_service.TransitionTo: %w", err)
	}

	changed, err := a.Transition(phase)
	if err != nil {
		return nil, fmt.Errorf("auction_service.TransitionTo: %w", err)
	}
	if !changed {
		return a, nil
	}

	if err := s.auctionRepo.UpdatePhase(ctx, auctionID, phase); err != nil {
		return nil, fmt.Errorf("auction_service.TransitionTo: persist: %w", err)
	}

	if phase == domain.PhaseLive && s.broadcaster != nil {
		summary := a.ToSummary()
		go s.broadcaster.BroadcastAuctionLive(&summary)
	}
	return a, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// SubmitBid
// ──────────────────────────────────────────────────────────────────────────────

// SubmitBid runs the proxy-bid resolution for one incoming bid and applies
// its outcome — the bid-record mutations and the auction's denormalized
// summary — inside a single transaction.
//
// The keyed mutex makes the read-resolve-write window exclusive per auction;
// the row locks inside the transaction back the same guarantee at the
// database tier for multi-process deployments. No external I/O happens under
// the lock.
func (s *AuctionService) SubmitBid(ctx context.Context, req domain.SubmitBidRequest) (*domain.Bid, error) {
	placedAt := req.Time
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}

	s.locks.Lock(req.AuctionID)
	defer s.locks.Unlock(req.AuctionID)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("auction_service.SubmitBid: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Load the auction with a row lock and gate on phase.
	a, err := s.auctionRepo.GetByIDForUpdate(ctx, tx, req.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("auction_service.SubmitBid: %w", err)
	}
	if !a.IsLive() {
		err = domain.ErrAuctionNotLive
		return nil, err
	}

	// Load the standing high bid, if any.
	var prior *domain.Bid
	if a.HasHighBid() {
		prior, err = s.bidRepo.GetHighBidForUpdate(ctx, tx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("auction_service.SubmitBid: high bid: %w", err)
		}
	}

	incoming := &domain.Bid{
		ID:        uuid.New(),
		AuctionID: a.ID,
		BidderID:  req.BidderID,
		MaxValue:  req.MaxValue,
		PlacedAt:  placedAt,
		UpdatedAt: placedAt,
	}

	res, err := domain.ResolveBid(a, prior, incoming, s.rules)
	if err != nil {
		// Invalid submissions are rejected before anything is written.
		return nil, err
	}

	// Persist the new bid record, then fold the resolution over it and the
	// displaced bid, then mirror the summary onto the auction row.
	if err = s.bidRepo.Create(ctx, tx, incoming); err != nil {
		return nil, fmt.Errorf("auction_service.SubmitBid: create bid: %w", err)
	}
	if err = s.bidRepo.ApplyResolution(ctx, tx, res); err != nil {
		return nil, fmt.Errorf("auction_service.SubmitBid: apply: %w", err)
	}
	if err = s.auctionRepo.ApplySummary(ctx, tx, a.ID, res.HighBidValue, res.HighBidderID); err != nil {
		return nil, fmt.Errorf("auction_service.SubmitBid: summary: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("auction_service.SubmitBid: commit: %w", err)
	}

	// Reflect the resolution on the returned bid and the in-memory auction.
	v := res.Incoming.CurrentValue
	incoming.CurrentValue = &v
	incoming.CurrentHighBid = res.Incoming.CurrentHigh
	a.Apply(res)

	if s.broadcaster != nil {
		summary := a.ToSummary()
		go s.broadcaster.BroadcastBidAccepted(&summary)
	}
	return incoming, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Due-time sweeps — called by the scheduler
// ──────────────────────────────────────────────────────────────────────────────

// StartDue moves every upcoming auction whose start time has passed into the
// live phase. One failing auction does not block the rest of the sweep.
func (s *AuctionService) StartDue(ctx context.Context, now time.Time) error {
	due, err := s.auctionRepo.GetDueForStart(ctx, now)
	if err != nil {
		return fmt.Errorf("auction_service.StartDue: %w", err)
	}
	var lastErr error
	for _, a := range due {
		if _, err := s.TransitionTo(ctx, a.ID, domain.PhaseLive); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// ExpireDue moves every live auction whose expiration time has passed into
// the pending phase, where it waits for settlement.
func (s *AuctionService) ExpireDue(ctx context.Context, now time.Time) error {
	due, err := s.auctionRepo.GetDueForExpiry(ctx, now)
	if err != nil {
		return fmt.Errorf("auction_service.ExpireDue: %w", err)
	}
	var lastErr error
	for _, a := range due {
		if _, err := s.TransitionTo(ctx, a.ID, domain.PhasePending); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// ──────────────────────────────────────────────────────────────────────────────
// Query helpers
// ──────────────────────────────────────────────────────────────────────────────

// GetAuction fetches one auction by id.
func (s *AuctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*domain.Auction, error) {
	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction_service.GetAuction: %w", err)
	}
	return a, nil
}

// GetHighBid returns the auction's standing high bid, or ErrNoHighBid.
func (s *AuctionService) GetHighBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	b, err := s.bidRepo.GetHighBid(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction_service.GetHighBid: %w", err)
	}
	return b, nil
}

// ListAuctions returns paginated auctions filtered by optional league and phase.
func (s *AuctionService) ListAuctions(ctx context.Context, leagueID *uuid.UUID, phase domain.Phase, limit, offset int) ([]*domain.Auction, int, error) {
	auctions, total, err := s.auctionRepo.List(ctx, leagueID, phase, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("auction_service.ListAuctions: %w", err)
	}
	return auctions, total, nil
}

// ListBidderBids returns one bidder's bid history across auctions, newest
// first.
func (s *AuctionService) ListBidderBids(ctx context.Context, bidderID uuid.UUID, limit, offset int) ([]*domain.Bid, error) {
	bids, err := s.bidRepo.ListByBidder(ctx, bidderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("auction_service.ListBidderBids: %w", err)
	}
	return bids, nil
}

// ListBids returns an auction's full bid history in submission order.
func (s *AuctionService) ListBids(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	if _, err := s.auctionRepo.GetByID(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("auction_service.ListBids: %w", err)
	}
	bids, err := s.bidRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction_service.ListBids: %w", err)
	}
	return bids, nil
}
