package api

import (
	"flaggate/internal/metrics"
	"flaggate/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(flagHandler *FlagHandler, overrideHandler *OverrideHandler, serviceToken string, rdb *redis.Client, requestsPerSecond int) *gin.Engine {
	r := gin.New()

	// Global Middleware
	r.Use(
		middleware.CorsMiddleware(),
		middleware.RequestID(),
		middleware.GinZapLogger(),
		middleware.GinZapRecovery(),
		middleware.HttpMiddleware(),
	)
	r.SetTrustedProxies(nil)

	// Public Routes
	r.GET("/health", flagHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Rate Limiter for Write Operations
	writeLimiter := middleware.RateLimitMiddleware(rdb, requestsPerSecond)

	// Flag Routes (Protected by the shared service token)
	flags := r.Group("/flags")
	flags.Use(middleware.ServiceAuthMiddleware(serviceToken))
	{
		flags.POST("", writeLimiter, flagHandler.CreateFlag)
		flags.GET("/evaluate", flagHandler.Evaluate)
		flags.POST("/override", writeLimiter, overrideHandler.UpsertOverride)
		flags.DELETE("/override", writeLimiter, overrideHandler.DeleteOverride)
	}

	return r
}
