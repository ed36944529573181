package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/draftroom/fantasyauction/internal/api/handler"
	"github.com/draftroom/fantasyauction/internal/api/middleware"
	"github.com/draftroom/fantasyauction/internal/config"
	"github.com/draftroom/fantasyauction/internal/service"
	"github.com/draftroom/fantasyauction/internal/ws"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	AuctionSvc    *service.AuctionService
	SettlementSvc *service.SettlementService
	RosterSvc     *service.RosterService
	Hub           *ws.Hub
	Cfg           *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware, CORS, and rate limiting rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	auctionH := handler.NewAuctionHandler(deps.AuctionSvc, deps.SettlementSvc)
	bidH := handler.NewBidHandler(deps.AuctionSvc)
	leagueH := handler.NewLeagueHandler(deps.RosterSvc)

	// ── Rate limiters ─────────────────────────────────────────────────────────
	bidRL := middleware.RateLimitMiddleware(30)   // 30 req/s per IP for bid submission
	adminRL := middleware.RateLimitMiddleware(10) // 10 req/s per IP for lifecycle endpoints

	api := r.Group("/api")
	{
		// ── Auctions ─────────────────────────────────────────────────────────
		auctions := api.Group("/auctions")
		{
			auctions.GET("", auctionH.List)
			auctions.GET("/:id", auctionH.GetByID)
			auctions.GET("/:id/bids", bidH.ListForAuction)
			auctions.GET("/:id/bids/high", bidH.HighBid)

			auctions.POST("", adminRL, auctionH.Create)
			auctions.POST("/:id/phase", adminRL, auctionH.Transition)
			auctions.POST("/:id/settle", adminRL, auctionH.Settle)
			auctions.POST("/:id/bids", bidRL, bidH.Submit)
		}

		// ── Bidders ──────────────────────────────────────────────────────────
		api.GET("/bidders/:id/bids", bidH.ListForBidder)

		// ── Leagues and rosters ──────────────────────────────────────────────
		leagues := api.Group("/leagues")
		{
			leagues.GET("/:id", leagueH.GetLeague)
			leagues.GET("/:id/rosters/:user_id", leagueH.GetRoster)
		}

		// ── Player catalog ───────────────────────────────────────────────────
		players := api.Group("/players")
		{
			players.GET("", leagueH.ListPlayers)
			players.GET("/:id", leagueH.GetPlayer)
		}
	}

	// ── WebSocket ─────────────────────────────────────────────────────────────
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// Outside production all origins are allowed; in production only the
// configured origins.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, o := range strings.Split(cfg.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
