package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"gopay/internal/handler"
	"gopay/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	DriverHandler   *handler.DriverHandler
	PaymentHandler  *handler.PaymentHandler
	CallbackHandler *handler.CallbackHandler
	StatsHandler    *handler.StatsHandler
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

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// QR landing page data.
	router.GET("/pay/:id", deps.DriverHandler.PayPage)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:id", deps.DriverHandler.Get)
			drivers.GET("/:id/transactions", deps.DriverHandler.Transactions)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.RequestPayment)
			payments.GET("/:id", deps.PaymentHandler.GetTransaction)
			payments.POST("/:id/check", deps.PaymentHandler.CheckStatus)
		}

		// Gateway callback routes.
		callbacks := v1.Group("/callbacks")
		{
			callbacks.POST("/mpesa", deps.CallbackHandler.Mpesa)
		}

		// Admin routes.
		admin := v1.Group("/admin")
		{
			admin.GET("/stats", deps.StatsHandler.GetStats)
			admin.GET("/transactions", deps.StatsHandler.GetTransactions)
		}
	}

	return router
}
