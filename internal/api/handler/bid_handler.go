package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/draftroom/fantasyauction/internal/domain"
	"github.com/draftroom/fantasyauction/internal/service"
)

// BidHandler serves bid submission and bid history endpoints.
type BidHandler struct {
	auctionSvc *service.AuctionService
}

// NewBidHandler creates a BidHandler.
func NewBidHandler(auctionSvc *service.AuctionService) *BidHandler {
	return &BidHandler{auctionSvc: auctionSvc}
}

// Submit godoc
// POST /api/auctions/:id/bids
// Body: {"bidder_id":"uuid","max_value":42}
//
// The response is the owner view of the accepted bid, ceiling included. All
// other read paths strip the ceiling.
func (h *BidHandler) Submit(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	var body struct {
		BidderID string `json:"bidder_id" binding:"required"`
		MaxValue int64  `json:"max_value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	bidderID, err := uuid.Parse(body.BidderID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_BIDDER_ID", "invalid bidder_id format")
		return
	}
	if body.MaxValue < 1 {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_MAX_VALUE", "max_value must be a positive integer")
		return
	}

	bid, err := h.auctionSvc.SubmitBid(c.Request.Context(), domain.SubmitBidRequest{
		AuctionID: auctionID,
		BidderID:  bidderID,
		MaxValue:  body.MaxValue,
		Time:      time.Now().UTC(),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuctionNotFound):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
		case errors.Is(err, domain.ErrAuctionNotLive):
			respondError(c, http.StatusConflict, "ERR_AUCTION_NOT_LIVE", domain.ErrAuctionNotLive.Error())
		case errors.Is(err, domain.ErrBidTooLow):
			respondError(c, http.StatusUnprocessableEntity, "ERR_BID_TOO_LOW", domain.ErrBidTooLow.Error())
		case errors.Is(err, domain.ErrBidNotRaised):
			respondError(c, http.StatusUnprocessableEntity, "ERR_BID_NOT_RAISED", domain.ErrBidNotRaised.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not submit bid")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, bid.ToOwnerResponse())
}

// ListForAuction godoc
// GET /api/auctions/:id/bids
//
// Returns the auction's bid history in submission order, with private
// ceilings stripped.
func (h *BidHandler) ListForAuction(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	bids, err := h.auctionSvc.ListBids(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bids")
		return
	}

	out := make([]domain.BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, b.ToResponse())
	}
	respondSuccess(c, http.StatusOK, out)
}

// HighBid godoc
// GET /api/auctions/:id/bids/high
func (h *BidHandler) HighBid(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	bid, err := h.auctionSvc.GetHighBid(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrNoHighBid) {
			respondError(c, http.StatusNotFound, "ERR_NO_HIGH_BID", domain.ErrNoHighBid.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch high bid")
		return
	}
	respondSuccess(c, http.StatusOK, bid.ToResponse())
}

// ListForBidder godoc
// GET /api/bidders/:id/bids?page=1&limit=20
//
// A bidder's own history, so the owner view with ceilings is returned.
func (h *BidHandler) ListForBidder(c *gin.Context) {
	bidderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_BIDDER_ID", "invalid bidder id")
		return
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	bids, err := h.auctionSvc.ListBidderBids(c.Request.Context(), bidderID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bids")
		return
	}

	out := make([]domain.OwnerBidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, b.ToOwnerResponse())
	}
	respondList(c, out, len(out), page, limit)
}
