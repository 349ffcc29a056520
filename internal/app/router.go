package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/yeeuneey/GogoTaxi-back/internal/handler"
	"github.com/yeeuneey/GogoTaxi-back/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler       *handler.UserHandler
	RoomHandler       *handler.RoomHandler
	RideHandler       *handler.RideHandler
	WalletHandler     *handler.WalletHandler
	SettlementHandler *handler.SettlementHandler
	FeedbackHandler   *handler.FeedbackHandler
	WSHandler         *handler.WSHandler
	RedisClient       *redis.Client
	NewRelicApp       *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Room realtime channel.
	router.GET("/ws/rooms/:id", deps.WSHandler.SubscribeRoom)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("/:id", deps.UserHandler.GetUser)
		}

		// Room routes.
		rooms := v1.Group("/rooms")
		{
			rooms.POST("", deps.RoomHandler.CreateRoom)
			rooms.GET("", deps.RoomHandler.ListRooms)
			rooms.GET("/mine", deps.RoomHandler.ListMyRooms)
			rooms.POST("/match", deps.RoomHandler.MatchRooms)
			rooms.GET("/:id", deps.RoomHandler.GetRoom)
			rooms.PATCH("/:id", deps.RoomHandler.UpdateRoom)
			rooms.POST("/:id/join", deps.RoomHandler.JoinRoom)
			rooms.POST("/:id/leave", deps.RoomHandler.LeaveRoom)
			rooms.POST("/:id/close", deps.RoomHandler.CloseRoom)

			// Dispatch state machine.
			rooms.GET("/:id/ride", deps.RideHandler.GetRideState)
			rooms.POST("/:id/ride/request", deps.RideHandler.RequestRide)
			rooms.POST("/:id/ride/stage", deps.RideHandler.UpdateStage)
			rooms.POST("/:id/ride/driver", deps.RideHandler.PromoteDriverAssigned)

			// Settlement.
			rooms.GET("/:id/settlement", deps.SettlementHandler.ListSettlements)
			rooms.POST("/:id/settlement/hold", deps.SettlementHandler.HoldDeposit)
			rooms.POST("/:id/settlement/finalize", deps.SettlementHandler.Finalize)
			rooms.POST("/:id/settlement/no-show", deps.SettlementHandler.MarkNoShow)

			// Per-room feedback.
			rooms.GET("/:id/reviews", deps.FeedbackHandler.ListRoomReviews)
			rooms.GET("/:id/reports", deps.FeedbackHandler.ListRoomReports)
		}

		// Reviews and moderation reports.
		reviews := v1.Group("/reviews")
		{
			reviews.POST("", deps.FeedbackHandler.CreateReview)
			reviews.GET("/mine", deps.FeedbackHandler.ListMyReviews)
		}
		reports := v1.Group("/reports")
		{
			reports.POST("", deps.FeedbackHandler.CreateReport)
			reports.GET("/mine", deps.FeedbackHandler.ListMyReports)
		}

		// Wallet routes.
		wallet := v1.Group("/wallet")
		{
			wallet.GET("/balance", deps.WalletHandler.GetBalance)
			wallet.POST("/topup", deps.WalletHandler.TopUp)
			wallet.POST("/charge", deps.WalletHandler.Charge)
			wallet.GET("/transactions", deps.WalletHandler.ListTransactions)
			wallet.GET("/audit", deps.WalletHandler.AuditBalance)
		}

		// Settled ride history.
		v1.GET("/history", deps.SettlementHandler.ListHistory)
	}

	return router
}
