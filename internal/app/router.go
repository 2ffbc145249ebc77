package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"cabshare/internal/handler"
	"cabshare/internal/middleware"
	"cabshare/internal/repository"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler     *handler.UserHandler
	RideHandler     *handler.RideHandler
	GroupHandler    *handler.GroupHandler
	PaymentHandler  *handler.PaymentHandler
	TrackingHandler *handler.TrackingHandler
	AdminHandler    *handler.AdminHandler
	UserRepo        repository.UserRepository
	JWTSecret       string
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check and metrics.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.AuthMiddleware(deps.JWTSecret, deps.UserRepo)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("/profile", auth, deps.UserHandler.GetProfile)
		}

		// Ride routes.
		rides := v1.Group("/rides", auth)
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("/myrides", deps.RideHandler.GetMyRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/suggest-groups", deps.RideHandler.SuggestGroups)
		}

		// Group routes.
		groups := v1.Group("/groups", auth)
		{
			groups.GET("/:id", deps.GroupHandler.GetGroup)
			groups.POST("/:id/join", deps.GroupHandler.JoinGroup)
			groups.DELETE("/:id/leave", deps.GroupHandler.LeaveGroup)
			groups.POST("/:id/chat", deps.GroupHandler.SendChat)
		}

		// Payment routes.
		payments := v1.Group("/payments", auth)
		{
			payments.POST("/initiate", deps.PaymentHandler.InitiatePayment)
			payments.POST("/verify", deps.PaymentHandler.VerifyPayment)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
		}

		// External ride-tracking routes. Link traversal is public.
		external := v1.Group("/external")
		{
			external.GET("/track/:token", deps.TrackingHandler.Track)
			external.POST("/create-link", auth, deps.TrackingHandler.CreateLink)
			external.POST("/upload-proof", auth, deps.TrackingHandler.UploadProof)
			external.GET("/my-tracking", auth, deps.TrackingHandler.GetMyTracking)
			external.GET("/tracking/:token", auth, deps.TrackingHandler.GetTracking)
		}

		// Admin routes.
		admin := v1.Group("/admin", auth, middleware.RequireAdmin())
		{
			admin.GET("/stats", deps.AdminHandler.GetStats)
			admin.GET("/users", deps.AdminHandler.ListUsers)
			admin.GET("/rides", deps.AdminHandler.ListRides)
			admin.GET("/groups", deps.AdminHandler.ListGroups)
			admin.GET("/payments", deps.AdminHandler.ListPayments)
			admin.PUT("/users/:id/ban", deps.AdminHandler.BanUser)
			admin.PUT("/users/:id/unban", deps.AdminHandler.UnbanUser)
		}
	}

	return router
}
