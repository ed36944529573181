// Package scheduler manages the three background goroutines that drive the
// auction lifecycle:
//  1. startLoop  – opens upcoming auctions whose start time has passed.
//  2. expireLoop – moves live auctions past their expiration into pending.
//  3. settleLoop – settles pending auctions once the grace window elapses.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/draftroom/fantasyauction/internal/config"
	"github.com/draftroom/fantasyauction/internal/service"
)

// ──────────────────────────────────────────────────────────────────────────────
// Scheduler
// ──────────────────────────────────────────────────────────────────────────────

// Scheduler wires together the services and runs the auction lifecycle
// goroutines.  Call Start(ctx) once from main(); cancel the context to shut
// it down gracefully.
type Scheduler struct {
	auctionSvc    *service.AuctionService
	settlementSvc *service.SettlementService
	cfg           *config.Config
	logger        *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(
	auctionSvc *service.AuctionService,
	settlementSvc *service.SettlementService,
	cfg *config.Config,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		auctionSvc:    auctionSvc,
		settlementSvc: settlementSvc,
		cfg:           cfg,
		logger:        logger,
	}
}

// Start launches the three background goroutines.  It returns immediately;
// all loops run until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.startLoop(ctx)
	go s.expireLoop(ctx)
	go s.settleLoop(ctx)
	s.logger.Info("scheduler started", "tick", s.cfg.Auction.TickInterval)
}

// ──────────────────────────────────────────────────────────────────────────────
// startLoop
// ──────────────────────────────────────────────────────────────────────────────

// startLoop promotes upcoming auctions to live on every tick.
func (s *Scheduler) startLoop(ctx context.Context) {
	defer s.recoverAndLog("startLoop")

	ticker := time.NewTicker(s.cfg.Auction.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("startLoop: shutting down")
			return
		case <-ticker.C:
			if err := s.auctionSvc.StartDue(ctx, time.Now().UTC()); err != nil {
				s.logger.Error("startLoop: StartDue", "err", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// expireLoop
// ──────────────────────────────────────────────────────────────────────────────

// expireLoop moves live auctions past their expiration into pending.
func (s *Scheduler) expireLoop(ctx context.Context) {
	defer s.recoverAndLog("expireLoop")

	ticker := time.NewTicker(s.cfg.Auction.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expireLoop: shutting down")
			return
		case <-ticker.C:
			if err := s.auctionSvc.ExpireDue(ctx, time.Now().UTC()); err != nil {
				s.logger.Error("expireLoop: ExpireDue", "err", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// settleLoop
// ──────────────────────────────────────────────────────────────────────────────

// settleLoop settles pending auctions whose grace window has elapsed.
// Settlement is idempotent, so a failed sweep is simply retried next tick.
func (s *Scheduler) settleLoop(ctx context.Context) {
	defer s.recoverAndLog("settleLoop")

	ticker := time.NewTicker(s.cfg.Auction.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("settleLoop: shutting down")
			return
		case <-ticker.C:
			if err := s.settlementSvc.SettleDue(ctx, time.Now().UTC()); err != nil {
				s.logger.Error("settleLoop: SettleDue", "err", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Panic recovery
// ──────────────────────────────────────────────────────────────────────────────

// recoverAndLog is deferred inside each goroutine to catch unexpected panics,
// log them, and allow the scheduler to continue running.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop",
			"loop", loop, "panic", r)
	}
}
