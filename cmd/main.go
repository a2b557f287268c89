package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/askwhyharsh/scamcheck/internal/api"
	"github.com/askwhyharsh/scamcheck/internal/config"
	"github.com/askwhyharsh/scamcheck/internal/history"
	"github.com/askwhyharsh/scamcheck/internal/janitor"
	"github.com/askwhyharsh/scamcheck/internal/ratelimit"
	"github.com/askwhyharsh/scamcheck/internal/rules"
	"github.com/askwhyharsh/scamcheck/internal/scam"
	"github.com/askwhyharsh/scamcheck/internal/storage"
	"github.com/askwhyharsh/scamcheck/internal/websocket"
	"github.com/askwhyharsh/scamcheck/pkg/logger"
	"github.com/askwhyharsh/scamcheck/pkg/validator"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewLogger(cfg.Server.Env, cfg.Monitoring.LogLevel)
	defer func() {
		if z, ok := appLogger.(*logger.ZapLogger); ok {
			_ = z.Sync()
		}
	}()
	appLogger.Info("Starting ScamCheck server...")

	// Load rules
	ruleSet, err := loadRules(cfg.Engine.RulesPath, appLogger)
	if err != nil {
		appLogger.Error("Failed to load rules", "path", cfg.Engine.RulesPath, "error", err)
		os.Exit(1)
	}

	agePolicy := rules.ParseAgePolicy(cfg.Engine.UnknownAgePolicy)
	detector := scam.NewDetector(ruleSet, scam.Options{
		MaxTextLength:  cfg.Engine.MaxTextLength,
		MaxRuleMatches: cfg.Engine.MaxRuleMatches,
		AgePolicy:      agePolicy,
	}, appLogger)

	textRules, urlRules := detector.RuleCounts()
	appLogger.Info("Detector ready", "text_rules", textRules, "url_rules", urlRules, "age_policy", agePolicy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	val := validator.NewValidator()
	limiterConfig := ratelimit.NewConfig(cfg.RateLimit)

	var (
		historyStore history.Store
		rateLimiter  ratelimit.RateLimiter
		redisClient  storage.RedisClient
	)

	// Initialize Redis, falling back to in-process state
	if cfg.Redis.Enabled {
		redisClient, err = storage.NewRedisClient(cfg)
		if err != nil {
			appLogger.Warn("Failed to connect to Redis, using in-memory state", "address", cfg.RedisAddr(), "error", err)
			redisClient = nil
		}
	}

	if redisClient != nil {
		defer redisClient.Close()
		appLogger.Info("Connected to Redis", "address", cfg.RedisAddr())

		historyStore = history.NewRedisStore(redisClient, cfg.History.MaxItems, cfg.HistoryTTL(), appLogger)
		rateLimiter = ratelimit.NewLimiter(redisClient, limiterConfig)
	} else {
		memStore := history.NewMemoryStore(cfg.History.MaxItems, cfg.HistoryTTL())
		memLimiter := ratelimit.NewMemoryLimiter(limiterConfig)

		go janitor.New("history", memStore, time.Minute, appLogger).Start(ctx)
		go janitor.New("ratelimit", memLimiter, limiterConfig.Window, appLogger).Start(ctx)

		historyStore = memStore
		rateLimiter = memLimiter
	}

	// Initialize optional statistics database
	var statsStore api.StatsStore
	var pgClient *storage.PostgresClient
	if cfg.Database.URL != "" {
		pgClient, err = storage.NewPostgresClient(cfg.Database.URL)
		if err != nil {
			appLogger.Warn("Failed to connect to Postgres, statistics disabled", "error", err)
		} else {
			defer pgClient.Close()
			statsStore = pgClient
			appLogger.Info("Connected to Postgres")
		}
	}

	rateLimitMiddleware := ratelimit.NewMiddleware(rateLimiter, val, appLogger)

	// Initialize WebSocket hub
	hub := websocket.NewHub(appLogger)
	go hub.Run(ctx)

	wsHandler := websocket.NewHandler(hub, detector, rateLimiter, val, appLogger, cfg.Server.AllowedOrigins)

	// Initialize API handler
	apiHandler := api.NewHandler(detector, historyStore, statsStore, val, appLogger)
	if redisClient != nil {
		apiHandler.WithHealthCheck("redis", redisClient)
	}
	if statsStore != nil {
		apiHandler.WithHealthCheck("postgres", pgClient)
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	api.SetupRoutes(router, apiHandler, wsHandler, rateLimitMiddleware, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         appLogger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("Server starting", "address", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", "error", err)
			cancel()
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...")

	// Cancel context to stop background services and close websockets
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server stopped")
}

func loadRules(path string, log logger.Logger) (*rules.Set, error) {
	if path == "" {
		log.Info("Using embedded rule set")
		return rules.Default(log)
	}

	log.Info("Loading rule set", "path", path)
	return rules.LoadFile(path, log)
}
