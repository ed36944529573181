package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/draftroom/fantasyauction/internal/domain"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func liveAuction() *domain.Auction {
	now := time.Now().UTC()
	return &domain.Auction{
		ID:             uuid.New(),
		LeagueID:       uuid.New(),
		PlayerID:       uuid.New(),
		Phase:          domain.PhaseLive,
		StartTime:      now.Add(-time.Hour),
		ExpirationTime: now.Add(time.Hour),
	}
}

func bidFor(a *domain.Auction, bidder uuid.UUID, max int64) *domain.Bid {
	return &domain.Bid{
		ID:        uuid.New(),
		AuctionID: a.ID,
		BidderID:  bidder,
		MaxValue:  max,
		PlacedAt:  time.Now().UTC(),
	}
}

// applyResolution mirrors what the service persists: bid-record mutations plus
// the auction's denormalized summary. Returns the new high bid record.
func applyResolution(a *domain.Auction, prior, incoming *domain.Bid, res *domain.Resolution) *domain.Bid {
	v := res.Incoming.CurrentValue
	incoming.CurrentValue = &v
	incoming.CurrentHighBid = res.Incoming.CurrentHigh
	if res.Prior != nil && prior != nil {
		pv := res.Prior.CurrentValue
		prior.CurrentValue = &pv
		prior.CurrentHighBid = res.Prior.CurrentHigh
	}
	a.Apply(res)
	if incoming.CurrentHighBid {
		return incoming
	}
	return prior
}

// ── Resolution case 1: first bid ─────────────────────────────────────────────

func TestResolveBid_FirstBid(t *testing.T) {
	a := liveAuction()
	b := bidFor(a, uuid.New(), 50)

	res, err := domain.ResolveBid(a, nil, b, domain.DefaultRules)
	if err != nil {
		t.Fatalf("ResolveBid() error = %v", err)
	}
	if res.HighBidValue != 1 {
		t.Errorf("first bid should open at the minimum, got %d", res.HighBidValue)
	}
	if res.HighBidderID != b.BidderID {
		t.Errorf("first bidder should win: got %s want %s", res.HighBidderID, b.BidderID)
	}
	if !res.Incoming.CurrentHigh {
		t.Error("first bid should carry the high-bid flag")
	}
	if res.Prior != nil {
		t.Error("first bid resolution should not touch a prior bid")
	}
}

func TestResolveBid_FirstBid_BelowMinimum(t *testing.T) {
	a := liveAuction()
	b := bidFor(a, uuid.New(), 0)

	if _, err := domain.ResolveBid(a, nil, b, domain.DefaultRules); !errors.Is(err, domain.ErrBidTooLow) {
		t.Errorf("max_value below minimum should be ErrBidTooLow, got %v", err)
	}
}

// ── Resolution case 2: same bidder raises their ceiling ──────────────────────

func TestResolveBid_SameBidderRaisesCeiling(t *testing.T) {
	a := liveAuction()
	bidder := uuid.New()

	first := bidFor(a, bidder, 30)
	res, err := domain.ResolveBid(a, nil, first, domain.DefaultRules)
	if err != nil {
		t.Fatalf("first bid: %v", err)
	}
	high := applyResolution(a, nil, first, res)

	raise := bidFor(a, bidder, 60)
	res, err = domain.ResolveBid(a, high, raise, domain.DefaultRules)
	if err != nil {
		t.Fatalf("raise: %v", err)
	}
	if res.HighBidValue != 1 {
		t.Errorf("raising your own ceiling must not move the visible price, got %d", res.HighBidValue)
	}
	if res.HighBidderID != bidder {
		t.Error("winner should be unchanged after a self-raise")
	}
	if !res.Incoming.CurrentHigh {
		t.Error("the raise should now carry the high-bid flag")
	}
	if res.Prior == nil || res.Prior.CurrentHigh {
		t.Error("the original bid should lose the high-bid flag")
	}
}

func TestResolveBid_SameBidderMustRaise(t *testing.T) {
	a := liveAuction()
	bidder := uuid.New()

	first := bidFor(a, bidder, 30)
	res, _ := domain.ResolveBid(a, nil, first, domain.DefaultRules)
	high := applyResolution(a, nil, first, res)

	for _, max := range []int64{30, 20} {
		again := bidFor(a, bidder, max)
		if _, err := domain.ResolveBid(a, high, again, domain.DefaultRules); !errors.Is(err, domain.ErrBidNotRaised) {
			t.Errorf("self-bid with max_value=%d should be ErrBidNotRaised, got %v", max, err)
		}
	}
}

// ── Resolution case 3: challenger beats the ceiling ──────────────────────────

func TestResolveBid_ChallengerBeatsCeiling(t *testing.T) {
	a := liveAuction()
	alice, bob := uuid.New(), uuid.New()

	first := bidFor(a, alice, 30)
	res, _ := domain.ResolveBid(a, nil, first, domain.DefaultRules)
	high := applyResolution(a, nil, first, res)

	challenge := bidFor(a, bob, 100)
	res, err := domain.ResolveBid(a, high, challenge, domain.DefaultRules)
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	// The new winner pays one increment over the displaced ceiling, never
	// their full max_value.
	if res.HighBidValue != 31 {
		t.Errorf("winner should pay displaced ceiling + 1 = 31, got %d", res.HighBidValue)
	}
	if res.HighBidderID != bob {
		t.Error("challenger should be the new winner")
	}
	if res.Prior == nil {
		t.Fatal("resolution should finalize the displaced bid")
	}
	if res.Prior.CurrentValue != 30 {
		t.Errorf("displaced bid should finalize at its own ceiling 30, got %d", res.Prior.CurrentValue)
	}
	if res.Prior.CurrentHigh {
		t.Error("displaced bid should lose the high-bid flag")
	}
}

// ── Resolution case 4: challenger under the ceiling ──────────────────────────

func TestResolveBid_ChallengerUnderCeiling(t *testing.T) {
	a := liveAuction()
	alice, bob := uuid.New(), uuid.New()

	first := bidFor(a, alice, 100)
	res, _ := domain.ResolveBid(a, nil, first, domain.DefaultRules)
	high := applyResolution(a, nil, first, res)

	challenge := bidFor(a, bob, 40)
	res, err := domain.ResolveBid(a, high, challenge, domain.DefaultRules)
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if res.HighBidderID != alice {
		t.Error("the standing winner should hold against an under-ceiling challenge")
	}
	if res.HighBidValue != 40 {
		t.Errorf("visible price should rise to the challenger's ceiling 40, got %d", res.HighBidValue)
	}
	if res.Incoming.CurrentHigh {
		t.Error("losing challenger must not carry the high-bid flag")
	}
	if res.Incoming.CurrentValue != 40 {
		t.Errorf("loser should finalize at its own ceiling 40, got %d", res.Incoming.CurrentValue)
	}
	if res.Prior == nil || !res.Prior.CurrentHigh {
		t.Error("standing winner should keep the high-bid flag")
	}
}

func TestResolveBid_TieGoesToStandingWinner(t *testing.T) {
	a := liveAuction()
	alice, bob := uuid.New(), uuid.New()

	first := bidFor(a, alice, 50)
	res, _ := domain.ResolveBid(a, nil, first, domain.DefaultRules)
	high := applyResolution(a, nil, first, res)

	tie := bidFor(a, bob, 50)
	res, err := domain.ResolveBid(a, high, tie, domain.DefaultRules)
	if err != nil {
		t.Fatalf("tie: %v", err)
	}
	if res.HighBidderID != alice {
		t.Error("an equal ceiling should not displace the earlier bidder")
	}
	if res.HighBidValue != 50 {
		t.Errorf("visible price should rise to the tied ceiling 50, got %d", res.HighBidValue)
	}
}

// ── Resolution case 5: rejection ─────────────────────────────────────────────

func TestResolveBid_TooLowRejected(t *testing.T) {
	a := liveAuction()
	alice, bob := uuid.New(), uuid.New()

	first := bidFor(a, alice, 100)
	res, _ := domain.ResolveBid(a, nil, first, domain.DefaultRules)
	high := applyResolution(a, nil, first, res)

	// Raise the visible price to 40 with an under-ceiling challenge.
	challenge := bidFor(a, bob, 40)
	res, _ = domain.ResolveBid(a, high, challenge, domain.DefaultRules)
	high = applyResolution(a, high, challenge, res)

	// 35 does not beat the visible price 40; rejected, nothing written.
	low := bidFor(a, uuid.New(), 35)
	if _, err := domain.ResolveBid(a, high, low, domain.DefaultRules); !errors.Is(err, domain.ErrBidTooLow) {
		t.Errorf("bid under the visible price should be ErrBidTooLow, got %v", err)
	}
	if *a.HighBidValue != 40 {
		t.Errorf("rejected bid must not move the price, got %d", *a.HighBidValue)
	}
}

func TestResolveBid_NotLive(t *testing.T) {
	a := liveAuction()
	b := bidFor(a, uuid.New(), 10)

	for _, phase := range []domain.Phase{domain.PhaseUpcoming, domain.PhasePending, domain.PhaseCompleted} {
		a.Phase = phase
		if _, err := domain.ResolveBid(a, nil, b, domain.DefaultRules); !errors.Is(err, domain.ErrAuctionNotLive) {
			t.Errorf("phase %s should reject bids with ErrAuctionNotLive, got %v", phase, err)
		}
	}
}

func TestResolveBid_WrongAuction(t *testing.T) {
	a := liveAuction()
	other := liveAuction()
	b := bidFor(other, uuid.New(), 10)

	if _, err := domain.ResolveBid(a, nil, b, domain.DefaultRules); !errors.Is(err, domain.ErrBidWrongAuction) {
		t.Errorf("bid against the wrong auction should be ErrBidWrongAuction, got %v", err)
	}
}

// ── Invariants across a bid sequence ─────────────────────────────────────────

func TestResolveBid_PriceMonotonic(t *testing.T) {
	a := liveAuction()
	var high *domain.Bid
	lastPrice := int64(0)

	// A mix of beats, under-ceiling challenges, and self-raises.
	steps := []struct {
		bidder int
		max    int64
	}{
		{1, 20}, {2, 10}, {1, 40}, {3, 25}, {2, 100}, {2, 120},
	}
	bidders := map[int]uuid.UUID{1: uuid.New(), 2: uuid.New(), 3: uuid.New()}

	for i, step := range steps {
		b := bidFor(a, bidders[step.bidder], step.max)
		res, err := domain.ResolveBid(a, high, b, domain.DefaultRules)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if res.HighBidValue < lastPrice {
			t.Errorf("step %d: visible price decreased %d -> %d", i, lastPrice, res.HighBidValue)
		}
		lastPrice = res.HighBidValue
		high = applyResolution(a, high, b, res)

		if !high.CurrentHighBid {
			t.Fatalf("step %d: tracked high bid lost its flag", i)
		}
		if *a.HighBidValue != lastPrice || *a.HighBidderID != high.BidderID {
			t.Errorf("step %d: auction summary out of sync with the high bid", i)
		}
	}
}

// ── Phase machine ────────────────────────────────────────────────────────────

func TestAuction_Transition(t *testing.T) {
	a := liveAuction()
	a.Phase = domain.PhaseUpcoming

	changed, err := a.Transition(domain.PhaseLive)
	if err != nil || !changed {
		t.Fatalf("upcoming -> live: changed=%v err=%v", changed, err)
	}

	// Same-phase transition is an idempotent no-op.
	changed, err = a.Transition(domain.PhaseLive)
	if err != nil {
		t.Fatalf("live -> live: %v", err)
	}
	if changed {
		t.Error("same-phase transition must report changed=false")
	}

	if _, err = a.Transition(domain.Phase("paused")); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Errorf("unknown phase should be ErrInvalidPhase, got %v", err)
	}
}

func TestAuction_CompletedIsTerminal(t *testing.T) {
	a := liveAuction()
	a.Phase = domain.PhaseCompleted

	for _, target := range []domain.Phase{domain.PhaseUpcoming, domain.PhaseLive, domain.PhasePending} {
		if _, err := a.Transition(target); !errors.Is(err, domain.ErrAuctionCompleted) {
			t.Errorf("completed -> %s should be ErrAuctionCompleted, got %v", target, err)
		}
	}

	// Re-completing is fine and changes nothing.
	changed, err := a.Transition(domain.PhaseCompleted)
	if err != nil || changed {
		t.Errorf("completed -> completed: changed=%v err=%v", changed, err)
	}
}

// ── Summary helpers ──────────────────────────────────────────────────────────

func TestAuction_TimeLeft(t *testing.T) {
	a := liveAuction()
	a.ExpirationTime = time.Now().UTC().Add(2 * time.Minute)

	tl := a.TimeLeft()
	if tl <= 0 || tl > 2*time.Minute+time.Second {
		t.Errorf("TimeLeft() = %v, expected ~2m0s", tl)
	}

	a.ExpirationTime = time.Now().UTC().Add(-time.Minute)
	if a.TimeLeft() != 0 {
		t.Error("TimeLeft() after expiry should be 0")
	}
}

func TestBid_OwnerResponseKeepsCeiling(t *testing.T) {
	a := liveAuction()
	b := bidFor(a, uuid.New(), 75)

	owner := b.ToOwnerResponse()
	if owner.MaxValue != 75 {
		t.Errorf("owner view should include the ceiling, got %d", owner.MaxValue)
	}
	// The public view carries no MaxValue field at all; check the shared part.
	pub := b.ToResponse()
	if pub.BidderID != b.BidderID || pub.AuctionID != a.ID {
		t.Error("public view should mirror the bid identity")
	}
}
