package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/draftroom/fantasyauction/internal/domain"
	"github.com/draftroom/fantasyauction/internal/service"
)

// AuctionHandler serves auction lifecycle and query endpoints.
type AuctionHandler struct {
	auctionSvc    *service.AuctionService
	settlementSvc *service.SettlementService
}

// NewAuctionHandler creates an AuctionHandler.
func NewAuctionHandler(auctionSvc *service.AuctionService, settlementSvc *service.SettlementService) *AuctionHandler {
	return &AuctionHandler{auctionSvc: auctionSvc, settlementSvc: settlementSvc}
}

// Create godoc
// POST /api/auctions
// Body: {"league_id":"uuid","player_id":"uuid","start_time":"RFC3339","expiration_time":"RFC3339"}
func (h *AuctionHandler) Create(c *gin.Context) {
	var body struct {
		LeagueID       string `json:"league_id"       binding:"required"`
		SeasonID       string `json:"season_id"`
		PlayerID       string `json:"player_id"       binding:"required"`
		StartTime      string `json:"start_time"      binding:"required"`
		ExpirationTime string `json:"expiration_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	leagueID, err := uuid.Parse(body.LeagueID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_LEAGUE_ID", "invalid league_id format")
		return
	}
	playerID, err := uuid.Parse(body.PlayerID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_PLAYER_ID", "invalid player_id format")
		return
	}
	var seasonID *uuid.UUID
	if body.SeasonID != "" {
		id, err := uuid.Parse(body.SeasonID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_SEASON_ID", "invalid season_id format")
			return
		}
		seasonID = &id
	}
	start, err := time.Parse(time.RFC3339, body.StartTime)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_TIME", "start_time must be RFC3339")
		return
	}
	expiration, err := time.Parse(time.RFC3339, body.ExpirationTime)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_TIME", "expiration_time must be RFC3339")
		return
	}

	a, err := h.auctionSvc.CreateAuction(c.Request.Context(), service.CreateAuctionRequest{
		LeagueID:       leagueID,
		SeasonID:       seasonID,
		PlayerID:       playerID,
		StartTime:      start,
		ExpirationTime: expiration,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPlayerNotFound):
			respondError(c, http.StatusNotFound, "ERR_PLAYER_NOT_FOUND", domain.ErrPlayerNotFound.Error())
		case errors.Is(err, domain.ErrInvalidPhase):
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not create auction")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, a)
}

// List godoc
// GET /api/auctions?league_id=uuid&phase=live&page=1&limit=20
func (h *AuctionHandler) List(c *gin.Context) {
	var leagueID *uuid.UUID
	if raw := c.Query("league_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_LEAGUE_ID", "invalid league_id format")
			return
		}
		leagueID = &id
	}

	phase := domain.Phase(c.Query("phase"))
	if phase != "" && !phase.IsValid() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_PHASE", "unknown phase filter")
		return
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	auctions, total, err := h.auctionSvc.ListAuctions(c.Request.Context(), leagueID, phase, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list auctions")
		return
	}
	respondList(c, auctions, total, page, limit)
}

// GetByID godoc
// GET /api/auctions/:id
func (h *AuctionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	a, err := h.auctionSvc.GetAuction(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch auction")
		return
	}
	respondSuccess(c, http.StatusOK, a)
}

// Transition godoc
// POST /api/auctions/:id/phase
// Body: {"phase":"live"}
func (h *AuctionHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	var body struct {
		Phase string `json:"phase" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	phase := domain.Phase(body.Phase)
	if !phase.IsValid() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_PHASE", "unknown phase")
		return
	}

	a, err := h.auctionSvc.TransitionTo(c.Request.Context(), id, phase)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuctionNotFound):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
		case errors.Is(err, domain.ErrAuctionCompleted):
			respondError(c, http.StatusConflict, "ERR_AUCTION_COMPLETED", domain.ErrAuctionCompleted.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not update phase")
		}
		return
	}
	respondSuccess(c, http.StatusOK, a)
}

// Settle godoc
// POST /api/auctions/:id/settle
//
// Settlement is idempotent; settling an already-completed auction returns the
// completed auction unchanged.
func (h *AuctionHandler) Settle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	if err := h.settlementSvc.Settle(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrAuctionNotFound):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrAuctionNotFound.Error())
		case errors.Is(err, domain.ErrSalaryCapExceeded):
			respondError(c, http.StatusConflict, "ERR_SALARY_CAP", domain.ErrSalaryCapExceeded.Error())
		case errors.Is(err, domain.ErrAllocationFailed):
			respondError(c, http.StatusBadGateway, "ERR_ALLOCATION_FAILED", "roster allocation failed; settlement will be retried")
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not settle auction")
		}
		return
	}

	a, err := h.auctionSvc.GetAuction(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch auction")
		return
	}
	respondSuccess(c, http.StatusOK, a)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return
}
