package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Auction errors
var (
	// ErrAuctionNotFound is returned when no auction matches the given id.
	ErrAuctionNotFound = errors.New("auction not found")

	// ErrAuctionNotLive is returned when a bid is submitted while the auction
	// is not in PhaseLive.
	ErrAuctionNotLive = errors.New("auction is not live")

	// ErrAuctionCompleted is returned when a phase transition is attempted out
	// of PhaseCompleted. Completed is terminal.
	ErrAuctionCompleted = errors.New("auction is already completed")

	// ErrInvalidPhase is returned when a transition names an unknown phase.
	ErrInvalidPhase = errors.New("invalid auction phase")

	// ErrHighBidMissing is returned when the auction summary records a high
	// bidder but no flagged high bid could be loaded. It indicates corrupted
	// state and is never produced by normal operation.
	ErrHighBidMissing = errors.New("auction high bid record is missing")
)

// Bid errors
var (
	// ErrBidNotFound is returned when no bid matches the given id.
	ErrBidNotFound = errors.New("bid not found")

	// ErrNoHighBid is returned when an auction has no accepted bids yet.
	ErrNoHighBid = errors.New("auction has no high bid")

	// ErrBidTooLow is returned when a bid's ceiling is below the minimum bid
	// value, or does not beat the case-appropriate threshold against the
	// standing high bid.
	ErrBidTooLow = errors.New("bid does not meet the required threshold")

	// ErrBidNotRaised is returned when the standing winner submits a
	// replacement bid that does not increase their own ceiling.
	ErrBidNotRaised = errors.New("replacement bid must raise the ceiling")

	// ErrBidWrongAuction is returned when a bid references a different auction
	// than the one it was submitted to.
	ErrBidWrongAuction = errors.New("bid does not belong to this auction")
)

// League / roster errors
var (
	// ErrLeagueNotFound is returned when no league matches the given id.
	ErrLeagueNotFound = errors.New("league not found")

	// ErrRosterNotFound is returned when a bidder has no roster in the league.
	ErrRosterNotFound = errors.New("roster not found")

	// ErrPlayerNotFound is returned when no player matches the given id.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrSalaryCapExceeded is returned when adding a player at the winning
	// price would push the roster past its salary cap.
	ErrSalaryCapExceeded = errors.New("salary cap exceeded")

	// ErrAllocationFailed wraps a failure of the roster allocation call during
	// settlement. The auction stays in PhasePending so Settle can be retried.
	ErrAllocationFailed = errors.New("roster allocation failed")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinels so IsNotFound
// stays in sync automatically.
var notFoundErrors = []error{
	ErrAuctionNotFound,
	ErrBidNotFound,
	ErrNoHighBid,
	ErrLeagueNotFound,
	ErrRosterNotFound,
	ErrPlayerNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors. Use this instead of comparing error values
// directly when translating domain errors to HTTP 404 responses.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsInvalidBid returns true for errors that mean the submitted bid itself was
// unacceptable (the caller should re-prompt, not retry).
func IsInvalidBid(err error) bool {
	invalidErrors := []error{
		ErrBidTooLow,
		ErrBidNotRaised,
		ErrBidWrongAuction,
	}
	for _, target := range invalidErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for errors that represent a lifecycle/state conflict.
func IsConflict(err error) bool {
	conflictErrors := []error{
		ErrAuctionNotLive,
		ErrAuctionCompleted,
		ErrSalaryCapExceeded,
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
