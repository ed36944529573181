// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs broadcast to connected clients.
package ws

import (
	"time"

	"github.com/google/uuid"

	"github.com/draftroom/fantasyauction/internal/domain"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypeAuctionLive    MsgType = "auction_live"
	MsgTypeBidAccepted    MsgType = "bid_accepted"
	MsgTypeAuctionSettled MsgType = "auction_settled"
	MsgTypeError          MsgType = "error"
)

// AuctionLiveMessage announces that bidding has opened on an auction.
type AuctionLiveMessage struct {
	Type           MsgType   `json:"type"`
	AuctionID      uuid.UUID `json:"auction_id"`
	LeagueID       uuid.UUID `json:"league_id"`
	PlayerID       uuid.UUID `json:"player_id"`
	ExpirationTime time.Time `json:"expiration_time"`
	Timestamp      time.Time `json:"timestamp"`
}

// BidAcceptedMessage notifies all clients that the visible price moved.
// It carries only public state; bidder ceilings are never broadcast.
type BidAcceptedMessage struct {
	Type         MsgType    `json:"type"`
	AuctionID    uuid.UUID  `json:"auction_id"`
	PlayerID     uuid.UUID  `json:"player_id"`
	HighBidValue *int64     `json:"high_bid_value"`
	HighBidderID *uuid.UUID `json:"high_bidder_id"`
	TimeLeftSec  int64      `json:"time_left_sec"`
	Timestamp    time.Time  `json:"timestamp"`
}

// AuctionSettledMessage tells clients who won and at what price.
// HighBidderID is nil when the auction closed without a bid.
type AuctionSettledMessage struct {
	Type         MsgType    `json:"type"`
	AuctionID    uuid.UUID  `json:"auction_id"`
	PlayerID     uuid.UUID  `json:"player_id"`
	HighBidValue *int64     `json:"high_bid_value"`
	HighBidderID *uuid.UUID `json:"high_bidder_id"`
	Timestamp    time.Time  `json:"timestamp"`
}

// ErrorMessage is sent directly to one client (not broadcast).
type ErrorMessage struct {
	Type    MsgType `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
}

func liveMessage(s *domain.AuctionSummary) AuctionLiveMessage {
	return AuctionLiveMessage{
		Type:           MsgTypeAuctionLive,
		AuctionID:      s.ID,
		LeagueID:       s.LeagueID,
		PlayerID:       s.PlayerID,
		ExpirationTime: s.ExpirationTime,
		Timestamp:      time.Now().UTC(),
	}
}

func bidMessage(s *domain.AuctionSummary) BidAcceptedMessage {
	return BidAcceptedMessage{
		Type:         MsgTypeBidAccepted,
		AuctionID:    s.ID,
		PlayerID:     s.PlayerID,
		HighBidValue: s.HighBidValue,
		HighBidderID: s.HighBidderID,
		TimeLeftSec:  s.TimeLeftSec,
		Timestamp:    time.Now().UTC(),
	}
}

func settledMessage(s *domain.AuctionSummary) AuctionSettledMessage {
	return AuctionSettledMessage{
		Type:         MsgTypeAuctionSettled,
		AuctionID:    s.ID,
		PlayerID:     s.PlayerID,
		HighBidValue: s.HighBidValue,
		HighBidderID: s.HighBidderID,
		Timestamp:    time.Now().UTC(),
	}
}
