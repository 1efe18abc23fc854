package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tangle-social/backend/internal/auth"
	"github.com/tangle-social/backend/internal/cache"
	"github.com/tangle-social/backend/internal/database"
	"github.com/tangle-social/backend/internal/engagement"
	"github.com/tangle-social/backend/internal/handlers"
	"github.com/tangle-social/backend/internal/logger"
	"github.com/tangle-social/backend/internal/metrics"
	"github.com/tangle-social/backend/internal/middleware"
	"github.com/tangle-social/backend/internal/notify"
	"github.com/tangle-social/backend/internal/social"
	"github.com/tangle-social/backend/internal/stories"
	"github.com/tangle-social/backend/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		// No .env is fine, system environment wins either way
	}

	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Info("Tangle server starting")

	// Initialize database
	if err := database.Initialize(); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional: without it the projection cache and live
	// notification delivery are disabled, the relational paths still work.
	var redisClient *cache.RedisClient
	if os.Getenv("REDIS_HOST") != "" {
		rc, err := cache.NewRedisClient(
			os.Getenv("REDIS_HOST"),
			os.Getenv("REDIS_PORT"),
			os.Getenv("REDIS_PASSWORD"),
		)
		if err != nil {
			logger.WarnErr("Redis unavailable, continuing without projection cache", err)
		} else {
			redisClient = rc
			defer redisClient.Close()
		}
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logger.Fatal("JWT_SECRET environment variable is required", nil)
	}

	metrics.Initialize()

	// Notification fan-out runs async in the server: the worker drains the
	// event queue so engagement and relationship writes never wait on it.
	notifier := notify.NewService(database.DB, redisClient, true)
	defer notifier.Close()

	socialSvc := social.NewService(database.DB, notifier, redisClient)
	engagementSvc := engagement.NewService(database.DB, notifier)

	h := handlers.NewHandlers(socialSvc, engagementSvc, notifier)

	// Expired stories are swept hourly.
	storyCleanup := stories.NewCleanupService(database.DB, time.Hour)
	storyCleanup.Start()
	defer storyCleanup.Stop()

	// Setup Gin router
	if os.Getenv("ENVIRONMENT") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{getEnvOrDefault("CORS_ORIGIN", "*")}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(auth.Middleware(jwtSecret))
	h.Register(api)

	// Live notification stream; authenticates its own token since
	// browsers cannot set headers on websocket dials.
	wsHandler := websocket.NewHandler(redisClient, jwtSecret)
	r.GET("/ws/notifications", wsHandler.HandleNotifications)

	port := getEnvOrDefault("PORT", "8080")
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("Listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorErr("Forced shutdown", err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
