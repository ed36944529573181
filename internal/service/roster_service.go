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

// RosterService owns league rosters and their salary-cap bookkeeping. It
// implements the Allocator interface consumed by SettlementService.
type RosterService struct {
	db         *sqlx.DB
	rosterRepo *repository.RosterRepository
	playerRepo *repository.PlayerRepository
}

// NewRosterService creates a RosterService.
func NewRosterService(
	db *sqlx.DB,
	rosterRepo *repository.RosterRepository,
	playerRepo *repository.PlayerRepository,
) *RosterService {
	return &RosterService{
		db:         db,
		rosterRepo: rosterRepo,
		playerRepo: playerRepo,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Allocate — the settlement boundary
// ──────────────────────────────────────────────────────────────────────────────

// Allocate adds the won player to the bidder's roster at salary = price and
// debits the roster budget, inside one transaction. Deduplicated on
// alloc.AuctionID: repeating the call for an auction that already allocated
// returns nil without touching the budget, which is what lets settlement
// retry safely after a partial failure.
func (s *RosterService) Allocate(ctx context.Context, alloc domain.Allocation) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("roster_service.Allocate: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock the roster row so the cap check and the debit are one atomic step.
	roster, err := s.rosterRepo.GetRosterForUpdate(ctx, tx, alloc.LeagueID, alloc.BidderID)
	if err != nil {
		return fmt.Errorf("roster_service.Allocate: roster: %w", err)
	}
	if !roster.CanAfford(alloc.Price) {
		err = domain.ErrSalaryCapExceeded
		return err
	}

	rp := &domain.RosterPlayer{
		ID:        uuid.New(),
		RosterID:  roster.ID,
		PlayerID:  alloc.PlayerID,
		AuctionID: alloc.AuctionID,
		Salary:    alloc.Price,
		CreatedAt: time.Now().UTC(),
	}
	inserted, err := s.rosterRepo.AddPlayer(ctx, tx, rp)
	if err != nil {
		return fmt.Errorf("roster_service.Allocate: add player: %w", err)
	}
	if !inserted {
		// This auction already allocated; nothing further to charge.
		err = tx.Commit()
		if err != nil {
			return fmt.Errorf("roster_service.Allocate: commit: %w", err)
		}
		return nil
	}

	if err = s.rosterRepo.AddSalary(ctx, tx, roster.ID, alloc.Price); err != nil {
		return fmt.Errorf("roster_service.Allocate: debit: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("roster_service.Allocate: commit: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Query helpers
// ──────────────────────────────────────────────────────────────────────────────

// GetRoster returns a bidder's roster with its players.
func (s *RosterService) GetRoster(ctx context.Context, leagueID, userID uuid.UUID) (*domain.Roster, []*domain.RosterPlayer, error) {
	roster, err := s.rosterRepo.GetRoster(ctx, leagueID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("roster_service.GetRoster: %w", err)
	}
	players, err := s.rosterRepo.ListRosterPlayers(ctx, roster.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("roster_service.GetRoster: players: %w", err)
	}
	return roster, players, nil
}

// GetLeagueSummary returns the league with a cap-utilization summary per
// roster, ordered as the rosters were created.
func (s *RosterService) GetLeagueSummary(ctx context.Context, leagueID uuid.UUID) (*domain.League, []domain.RosterSummary, error) {
	league, err := s.rosterRepo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, nil, fmt.Errorf("roster_service.GetLeagueSummary: %w", err)
	}

	rosters, err := s.rosterRepo.ListRosters(ctx, leagueID)
	if err != nil {
		return nil, nil, fmt.Errorf("roster_service.GetLeagueSummary: rosters: %w", err)
	}

	summaries := make([]domain.RosterSummary, 0, len(rosters))
	for _, r := range rosters {
		count, err := s.rosterRepo.CountRosterPlayers(ctx, r.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("roster_service.GetLeagueSummary: count: %w", err)
		}
		summaries = append(summaries, r.ToSummary(count))
	}
	return league, summaries, nil
}

// GetPlayer returns one catalog player.
func (s *RosterService) GetPlayer(ctx context.Context, playerID uuid.UUID) (*domain.Player, error) {
	p, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("roster_service.GetPlayer: %w", err)
	}
	return p, nil
}

// ListPlayers returns a page of the player catalog.
func (s *RosterService) ListPlayers(ctx context.Context, limit, offset int) ([]*domain.Player, error) {
	players, err := s.playerRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("roster_service.ListPlayers: %w", err)
	}
	return players, nil
}
