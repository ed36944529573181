package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/draftroom/fantasyauction/internal/domain"
	"github.com/draftroom/fantasyauction/internal/service"
)

// LeagueHandler serves league, roster, and player catalog endpoints.
type LeagueHandler struct {
	rosterSvc *service.RosterService
}

// NewLeagueHandler creates a LeagueHandler.
func NewLeagueHandler(rosterSvc *service.RosterService) *LeagueHandler {
	return &LeagueHandler{rosterSvc: rosterSvc}
}

// GetLeague godoc
// GET /api/leagues/:id
//
// Returns the league plus a per-roster summary including salary committed
// and cap utilization.
func (h *LeagueHandler) GetLeague(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid league id")
		return
	}

	league, rosters, err := h.rosterSvc.GetLeagueSummary(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLeagueNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrLeagueNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch league")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"league":  league,
		"rosters": rosters,
	})
}

// GetRoster godoc
// GET /api/leagues/:id/rosters/:user_id
func (h *LeagueHandler) GetRoster(c *gin.Context) {
	leagueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid league id")
		return
	}
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_USER_ID", "invalid user id")
		return
	}

	roster, players, err := h.rosterSvc.GetRoster(c.Request.Context(), leagueID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRosterNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrRosterNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch roster")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"roster":  roster,
		"players": players,
	})
}

// ListPlayers godoc
// GET /api/players?page=1&limit=20
func (h *LeagueHandler) ListPlayers(c *gin.Context) {
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	players, err := h.rosterSvc.ListPlayers(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list players")
		return
	}
	respondList(c, players, len(players), page, limit)
}

// GetPlayer godoc
// GET /api/players/:id
func (h *LeagueHandler) GetPlayer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid player id")
		return
	}

	player, err := h.rosterSvc.GetPlayer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrPlayerNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch player")
		return
	}
	respondSuccess(c, http.StatusOK, player)
}
