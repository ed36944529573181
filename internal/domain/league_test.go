package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/draftroom/fantasyauction/internal/domain"
)

// ── Roster cap bookkeeping ────────────────────────────────────────────────────

func TestRoster_Remaining(t *testing.T) {
	r := &domain.Roster{SalaryCap: 200, TotalSalary: 120}
	if got := r.Remaining(); got != 80 {
		t.Errorf("Remaining() = %d, want 80", got)
	}
}

func TestRoster_CanAfford(t *testing.T) {
	r := &domain.Roster{SalaryCap: 200, TotalSalary: 150}
	if !r.CanAfford(50) {
		t.Error("50 fills the cap exactly and should be affordable")
	}
	if r.CanAfford(51) {
		t.Error("51 exceeds the cap and should not be affordable")
	}
}

func TestRoster_CapUtilization(t *testing.T) {
	r := &domain.Roster{SalaryCap: 200, TotalSalary: 50}
	want := decimal.NewFromInt(25)
	if got := r.CapUtilization(); !got.Equal(want) {
		t.Errorf("CapUtilization() = %s, want %s", got, want)
	}
}

func TestRoster_CapUtilization_ZeroCap(t *testing.T) {
	r := &domain.Roster{SalaryCap: 0, TotalSalary: 0}
	// Should not panic / divide by zero.
	if got := r.CapUtilization(); !got.IsZero() {
		t.Errorf("zero cap should report zero utilization, got %s", got)
	}
}

func TestRoster_ToSummary(t *testing.T) {
	r := &domain.Roster{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		SalaryCap:   200,
		TotalSalary: 60,
	}
	s := r.ToSummary(4)
	if s.PlayerCount != 4 {
		t.Errorf("PlayerCount = %d, want 4", s.PlayerCount)
	}
	if s.Remaining != 140 {
		t.Errorf("Remaining = %d, want 140", s.Remaining)
	}
	if !s.CapUtilization.Equal(decimal.NewFromInt(30)) {
		t.Errorf("CapUtilization = %s, want 30", s.CapUtilization)
	}
}

// ── Error predicates ──────────────────────────────────────────────────────────

func TestErrorPredicates(t *testing.T) {
	if !domain.IsNotFound(domain.ErrAuctionNotFound) {
		t.Error("ErrAuctionNotFound should satisfy IsNotFound")
	}
	if !domain.IsInvalidBid(domain.ErrBidTooLow) {
		t.Error("ErrBidTooLow should satisfy IsInvalidBid")
	}
	if !domain.IsConflict(domain.ErrAuctionCompleted) {
		t.Error("ErrAuctionCompleted should satisfy IsConflict")
	}
	if domain.IsNotFound(domain.ErrBidTooLow) {
		t.Error("ErrBidTooLow should not satisfy IsNotFound")
	}
}
