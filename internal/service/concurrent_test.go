package service_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/draftroom/fantasyauction/internal/domain"
)

// TestConcurrentBidResolution runs 50 goroutines submitting escalating proxy
// bids against one auction under a shared mutex, the same shape SubmitBid
// uses with its keyed lock.  The invariants that must hold afterwards: the
// visible price never decreased during the run, exactly one bid holds the
// high-bid flag, and the auction summary mirrors it.
//
// In the real AuctionService the DB row-level FOR UPDATE lock backs this
// guarantee.  Here we replicate the same guard with sync primitives so the
// race detector can confirm the pattern is sound.
func TestConcurrentBidResolution(t *testing.T) {
	const workers = 50

	a := &domain.Auction{
		ID:       uuid.New(),
		LeagueID: uuid.New(),
		PlayerID: uuid.New(),
		Phase:    domain.PhaseLive,
	}

	var (
		mu        sync.Mutex
		high      *domain.Bid
		bids      []*domain.Bid
		lastPrice int64
		rejected  int64
	)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			incoming := &domain.Bid{
				ID:        uuid.New(),
				AuctionID: a.ID,
				BidderID:  uuid.New(),
				MaxValue:  int64(id + 1),
			}

			mu.Lock()
			defer mu.Unlock()

			res, err := domain.ResolveBid(a, high, incoming, domain.DefaultRules)
			if err != nil {
				// Low ceilings lose to whatever price the auction has reached.
				atomic.AddInt64(&rejected, 1)
				return
			}
			if res.HighBidValue < lastPrice {
				t.Errorf("visible price decreased: %d -> %d", lastPrice, res.HighBidValue)
			}
			lastPrice = res.HighBidValue

			v := res.Incoming.CurrentValue
			incoming.CurrentValue = &v
			incoming.CurrentHighBid = res.Incoming.CurrentHigh
			if res.Prior != nil && high != nil {
				pv := res.Prior.CurrentValue
				high.CurrentValue = &pv
				high.CurrentHighBid = res.Prior.CurrentHigh
			}
			a.Apply(res)
			bids = append(bids, incoming)
			if incoming.CurrentHighBid {
				high = incoming
			}
		}(i)
	}
	wg.Wait()

	flagged := 0
	for _, b := range bids {
		if b.CurrentHighBid {
			flagged++
		}
	}
	if flagged != 1 {
		t.Errorf("exactly one bid should hold the high-bid flag, got %d", flagged)
	}
	if high == nil || a.HighBidderID == nil || *a.HighBidderID != high.BidderID {
		t.Error("auction summary should mirror the flagged high bid")
	}
	if int(rejected)+len(bids) != workers {
		t.Errorf("accepted %d + rejected %d should cover all %d workers",
			len(bids), rejected, workers)
	}
}

// TestConcurrentSettlementGuard verifies the settle-once protection under
// concurrent access: only one of N goroutines performs the allocation, the
// rest observe the completed phase and return without side effects.
func TestConcurrentSettlementGuard(t *testing.T) {
	const workers = 20

	a := &domain.Auction{
		ID:    uuid.New(),
		Phase: domain.PhasePending,
	}

	var (
		mu          sync.Mutex
		allocations int64
		noops       int64
		wg          sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			mu.Lock()
			defer mu.Unlock()

			if a.IsCompleted() {
				atomic.AddInt64(&noops, 1)
				return
			}
			// Allocate, then complete; the ordering SettlementService uses.
			atomic.AddInt64(&allocations, 1)
			if _, err := a.Transition(domain.PhaseCompleted); err != nil {
				t.Errorf("pending -> completed: %v", err)
			}
		}()
	}
	wg.Wait()

	if allocations != 1 {
		t.Errorf("exactly 1 goroutine should have allocated, got %d", allocations)
	}
	if noops != workers-1 {
		t.Errorf("expected %d idempotent no-ops, got %d", workers-1, noops)
	}
}
