// Package domain defines the core business entities and types for the
// fantasy league proxy-bidding auction system.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// Phase represents the lifecycle state of an auction.
type Phase string

const (
	PhaseNone      Phase = "none"      // created but not yet scheduled
	PhaseUpcoming  Phase = "upcoming"  // scheduled, bidding not yet open
	PhaseLive      Phase = "live"      // accepting bids
	PhasePending   Phase = "pending"   // bidding closed, awaiting owner actions
	PhaseCompleted Phase = "completed" // settled; terminal
)

// IsValid returns true if the phase is a recognised lifecycle state.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseNone, PhaseUpcoming, PhaseLive, PhasePending, PhaseCompleted:
		return true
	}
	return false
}

// Rules carries the fixed bidding policy values. They are configuration
// constants consumed by the resolution algorithm, never derived at runtime.
type Rules struct {
	MinBidValue     int64 // lowest max_value accepted on any bid
	MinBidIncrement int64 // amount a new winner pays above the displaced ceiling
}

// DefaultRules is the stock policy: 1 / 1.
var DefaultRules = Rules{MinBidValue: 1, MinBidIncrement: 1}

// ──────────────────────────────────────────────────────────────────────────────
// Auction
// ──────────────────────────────────────────────────────────────────────────────

// Auction represents the sale of a single player to one league's bidders.
// HighBidValue and HighBidderID are denormalized mirrors of the unique Bid
// flagged current_high_bid; both are nil until the first bid is accepted.
type Auction struct {
	ID             uuid.UUID  `json:"id"              db:"id"`
	LeagueID       uuid.UUID  `json:"league_id"       db:"league_id"`
	SeasonID       *uuid.UUID `json:"season_id"       db:"season_id"`
	PlayerID       uuid.UUID  `json:"player_id"       db:"player_id"`
	Phase          Phase      `json:"phase"           db:"phase"`
	StartTime      time.Time  `json:"start_time"      db:"start_time"`
	ExpirationTime time.Time  `json:"expiration_time" db:"expiration_time"`
	HighBidValue   *int64     `json:"high_bid_value"  db:"high_bid_value"`
	HighBidderID   *uuid.UUID `json:"high_bidder_id"  db:"high_bidder_id"`
	CreatedAt      time.Time  `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"      db:"updated_at"`
}

// IsLive returns true while the auction accepts bids.
func (a *Auction) IsLive() bool {
	return a.Phase == PhaseLive
}

// IsCompleted returns true once the auction has settled. Completed is terminal.
func (a *Auction) IsCompleted() bool {
	return a.Phase == PhaseCompleted
}

// HasHighBid reports whether any bid has been accepted yet.
func (a *Auction) HasHighBid() bool {
	return a.HighBidderID != nil
}

// TimeLeft returns the duration remaining until bidding closes.
// Returns 0 if the expiration time has already passed.
func (a *Auction) TimeLeft() time.Duration {
	remaining := time.Until(a.ExpirationTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Transition moves the auction to target. Setting the current phase again is
// an idempotent no-op: changed is false and the caller must not re-persist.
// No transition may leave PhaseCompleted. Sequencing beyond that is the
// scheduler's responsibility, not enforced here.
func (a *Auction) Transition(target Phase) (changed bool, err error) {
	if !target.IsValid() {
		return false, ErrInvalidPhase
	}
	if target == a.Phase {
		return false, nil
	}
	if a.Phase == PhaseCompleted {
		return false, ErrAuctionCompleted
	}
	a.Phase = target
	return true, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Bid resolution
// ──────────────────────────────────────────────────────────────────────────────

// BidUpdate is one bid-record mutation produced by ResolveBid.
type BidUpdate struct {
	BidID        uuid.UUID
	CurrentValue int64
	CurrentHigh  bool
}

// Resolution is the outcome of folding one incoming proxy bid into an
// auction: the new denormalized summary plus the mutations to apply to the
// incoming bid and (when present) the prior high bid. The caller persists
// all of it atomically.
type Resolution struct {
	HighBidValue int64     // new visible winning price
	HighBidderID uuid.UUID // new winning bidder
	Incoming     BidUpdate
	Prior        *BidUpdate // nil when the auction had no prior high bid
}

// ResolveBid computes the effect of an incoming proxy bid given the auction's
// current summary and prior high bid. It is pure: no persistence, no clock.
//
// Cases:
//  1. No prior winner: incoming becomes the high bid at rules.MinBidValue.
//  2. Same bidder raises their own ceiling: the flag moves to the incoming
//     bid, the visible price stays where it was. The ceiling must actually
//     increase, otherwise ErrBidNotRaised.
//  3. Different bidder beats the prior ceiling: prior finalizes at its own
//     ceiling, incoming wins at that ceiling plus one increment. Never more,
//     however high the new ceiling is.
//  4. Different bidder under the ceiling but over the visible price: the
//     standing winner's visible price rises to match the challenger; the
//     challenger loses at its own ceiling.
//  5. Anything else is ErrBidTooLow. The accepting surface should have
//     filtered these already; they are never written through.
//
// prior may be nil only when the auction has no high bidder.
func ResolveBid(a *Auction, prior *Bid, incoming *Bid, rules Rules) (*Resolution, error) {
	if !a.IsLive() {
		return nil, ErrAuctionNotLive
	}
	if incoming == nil || incoming.AuctionID != a.ID {
		return nil, ErrBidWrongAuction
	}
	if incoming.MaxValue < rules.MinBidValue {
		return nil, ErrBidTooLow
	}

	// Case 1: first accepted bid.
	if !a.HasHighBid() {
		return &Resolution{
			HighBidValue: rules.MinBidValue,
			HighBidderID: incoming.BidderID,
			Incoming: BidUpdate{
				BidID:        incoming.ID,
				CurrentValue: rules.MinBidValue,
				CurrentHigh:  true,
			},
		}, nil
	}

	if prior == nil || !prior.CurrentHighBid || prior.CurrentValue == nil {
		return nil, ErrHighBidMissing
	}
	priorValue := *prior.CurrentValue

	// Case 2: the standing winner raises their own ceiling. The visible price
	// does not move because no competitor forced it up.
	if incoming.BidderID == prior.BidderID {
		if incoming.MaxValue <= prior.MaxValue {
			return nil, ErrBidNotRaised
		}
		return &Resolution{
			HighBidValue: priorValue,
			HighBidderID: incoming.BidderID,
			Incoming: BidUpdate{
				BidID:        incoming.ID,
				CurrentValue: priorValue,
				CurrentHigh:  true,
			},
			Prior: &BidUpdate{
				BidID:        prior.ID,
				CurrentValue: priorValue,
				CurrentHigh:  false,
			},
		}, nil
	}

	// Case 3: the prior ceiling is beaten. The displaced bid finalizes at its
	// ceiling; the winner pays one increment above it.
	if incoming.MaxValue > prior.MaxValue {
		return &Resolution{
			HighBidValue: prior.MaxValue + rules.MinBidIncrement,
			HighBidderID: incoming.BidderID,
			Incoming: BidUpdate{
				BidID:        incoming.ID,
				CurrentValue: prior.MaxValue + rules.MinBidIncrement,
				CurrentHigh:  true,
			},
			Prior: &BidUpdate{
				BidID:        prior.ID,
				CurrentValue: prior.MaxValue,
				CurrentHigh:  false,
			},
		}, nil
	}

	// Case 4: under the ceiling but over the visible price. The winner keeps
	// winning, visibly matched to the challenger's ceiling.
	if incoming.MaxValue > priorValue {
		return &Resolution{
			HighBidValue: incoming.MaxValue,
			HighBidderID: prior.BidderID,
			Incoming: BidUpdate{
				BidID:        incoming.ID,
				CurrentValue: incoming.MaxValue,
				CurrentHigh:  false,
			},
			Prior: &BidUpdate{
				BidID:        prior.ID,
				CurrentValue: incoming.MaxValue,
				CurrentHigh:  true,
			},
		}, nil
	}

	// Case 5: does not beat the visible price.
	return nil, ErrBidTooLow
}

// Apply writes a resolution back onto the auction's denormalized summary.
func (a *Auction) Apply(res *Resolution) {
	v := res.HighBidValue
	b := res.HighBidderID
	a.HighBidValue = &v
	a.HighBidderID = &b
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionSummary — read model for WS broadcasts and list endpoints
// ──────────────────────────────────────────────────────────────────────────────

// AuctionSummary is a derived, read-only view of an Auction for broadcasting.
type AuctionSummary struct {
	ID             uuid.UUID  `json:"id"`
	LeagueID       uuid.UUID  `json:"league_id"`
	PlayerID       uuid.UUID  `json:"player_id"`
	Phase          Phase      `json:"phase"`
	HighBidValue   *int64     `json:"high_bid_value"`
	HighBidderID   *uuid.UUID `json:"high_bidder_id"`
	ExpirationTime time.Time  `json:"expiration_time"`
	TimeLeftSec    int64      `json:"time_left_sec"`
}

// ToSummary builds an AuctionSummary from the auction's current state.
func (a *Auction) ToSummary() AuctionSummary {
	return AuctionSummary{
		ID:             a.ID,
		LeagueID:       a.LeagueID,
		PlayerID:       a.PlayerID,
		Phase:          a.Phase,
		HighBidValue:   a.HighBidValue,
		HighBidderID:   a.HighBidderID,
		ExpirationTime: a.ExpirationTime,
		TimeLeftSec:    int64(a.TimeLeft().Seconds()),
	}
}
