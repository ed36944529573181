package domain

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Bid
// ──────────────────────────────────────────────────────────────────────────────

// Bid represents a single proxy bid inside an Auction.
//
// MaxValue is the bidder's private ceiling and is never mutated after the bid
// is processed. CurrentValue is the visible price attributed to this bid at
// the last resolution; it is nil until the bid has been processed and never
// decreases once set. At most one bid per auction carries CurrentHighBid.
// WinningBid flips true on the high bid at settlement and is immutable after.
type Bid struct {
	ID             uuid.UUID `json:"id"               db:"id"`
	AuctionID      uuid.UUID `json:"auction_id"       db:"auction_id"`
	BidderID       uuid.UUID `json:"bidder_id"        db:"bidder_id"`
	MaxValue       int64     `json:"max_value"        db:"max_value"`
	CurrentValue   *int64    `json:"current_value"    db:"current_value"`
	CurrentHighBid bool      `json:"current_high_bid" db:"current_high_bid"`
	WinningBid     bool      `json:"winning_bid"      db:"winning_bid"`
	PlacedAt       time.Time `json:"placed_at"        db:"placed_at"`
	UpdatedAt      time.Time `json:"updated_at"       db:"updated_at"`
}

// IsHigh returns true while this bid is the auction's standing winner.
func (b *Bid) IsHigh() bool {
	return b.CurrentHighBid
}

// ──────────────────────────────────────────────────────────────────────────────
// SubmitBidRequest — value object used by AuctionService
// ──────────────────────────────────────────────────────────────────────────────

// SubmitBidRequest carries the validated inputs for submitting a proxy bid.
type SubmitBidRequest struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	MaxValue  int64
	Time      time.Time // submission timestamp; zero means "now"
}

// BidResponse is the API-safe view of a bid. MaxValue is deliberately
// omitted: a bidder's private ceiling is only ever shown to themselves.
type BidResponse struct {
	ID             uuid.UUID `json:"id"`
	AuctionID      uuid.UUID `json:"auction_id"`
	BidderID       uuid.UUID `json:"bidder_id"`
	CurrentValue   *int64    `json:"current_value"`
	CurrentHighBid bool      `json:"current_high_bid"`
	WinningBid     bool      `json:"winning_bid"`
	PlacedAt       time.Time `json:"placed_at"`
}

// ToResponse converts a Bid to its public API form.
func (b *Bid) ToResponse() BidResponse {
	return BidResponse{
		ID:             b.ID,
		AuctionID:      b.AuctionID,
		BidderID:       b.BidderID,
		CurrentValue:   b.CurrentValue,
		CurrentHighBid: b.CurrentHighBid,
		WinningBid:     b.WinningBid,
		PlacedAt:       b.PlacedAt,
	}
}

// OwnerResponse is the view returned to the bid's own submitter; it includes
// the private ceiling.
type OwnerBidResponse struct {
	BidResponse
	MaxValue int64 `json:"max_value"`
}

// ToOwnerResponse converts a Bid to the owner-only API form.
func (b *Bid) ToOwnerResponse() OwnerBidResponse {
	return OwnerBidResponse{BidResponse: b.ToResponse(), MaxValue: b.MaxValue}
}
