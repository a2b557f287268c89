package api

import (
	"github.com/askwhyharsh/scamcheck/internal/ratelimit"
	"github.com/askwhyharsh/scamcheck/pkg/logger"

	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	AllowedOrigins []string
	Logger         logger.Logger
}

func SetupRoutes(r *gin.Engine, handler *Handler, wsHandler WebSocketHandler, rlMiddleware *ratelimit.Middleware, opts RouterOptions) {
	// Apply global middleware
	r.Use(RequestTimeMiddleware(handler.Now))
	r.Use(RecoveryMiddleware(opts.Logger))
	r.Use(LoggingMiddleware(opts.Logger))
	r.Use(CORSMiddleware(opts.AllowedOrigins))

	// API routes
	api := r.Group("/api")
	{
		// Health check (no rate limit)
		api.GET("/health", handler.Health)

		limited := api.Group("", rlMiddleware.IPRateLimit())

		analyze := limited.Group("/analyze", rlMiddleware.AnalysisRateLimit())
		{
			analyze.POST("", handler.Analyze)
			analyze.POST("/text", handler.AnalyzeText)
			analyze.POST("/url", handler.AnalyzeURL)
			analyze.POST("/batch", handler.AnalyzeBatch)
		}

		limited.POST("/extract", handler.Extract)
		limited.GET("/demo", handler.Demo)
		limited.GET("/stats", handler.Stats)

		hist := limited.Group("/history", rlMiddleware.ClientID())
		{
			hist.GET("", handler.GetHistory)
			hist.DELETE("", handler.ClearHistory)
		}
	}

	// WebSocket route
	r.GET("/ws", rlMiddleware.IPRateLimit(), wsHandler.HandleWebSocket)
}

type WebSocketHandler interface {
	HandleWebSocket(c *gin.Context)
}
