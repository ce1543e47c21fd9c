package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/surveylens/surveylens/internal/aggregate"
	"github.com/surveylens/surveylens/internal/errors"
	"github.com/surveylens/surveylens/internal/monitoring"
	"github.com/surveylens/surveylens/internal/ratelimit"
	"github.com/surveylens/surveylens/internal/survey"
)

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	port := getEnvOrDefault("PORT", "8080")
	allowedOrigins := getEnvOrDefault("ALLOWED_ORIGINS", "*")
	storeTTL := getEnvIntOrDefault("STORE_TTL_MINUTES", 120)
	rateLimitPerMin := getEnvIntOrDefault("RATE_LIMIT_PER_MIN", 60)
	uploadLimitPerMin := getEnvIntOrDefault("UPLOAD_LIMIT_PER_MIN", 10)
	maxUploadBytes := int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 32<<20))

	store := survey.NewStore(time.Duration(storeTTL) * time.Minute)
	engine := aggregate.NewEngine(aggregate.NewRandomSampler())

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	limiter := ratelimit.NewRateLimiter(ratelimit.Config{
		IPLimitPerMin:   rateLimitPerMin,
		BurstMultiplier: 2,
	}, appMetrics)

	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	if allowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	r.Use(limiter.IPRateLimitMiddleware())

	srvHandlers := NewServer(store, engine, appMetrics, appLogger, maxUploadBytes)

	// Uploads are the expensive path; give them a tighter limit.
	srvHandlers.RegisterRoutes(r, limiter.EndpointRateLimitMiddleware("upload", uploadLimitPerMin))

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("Invalid integer in environment, using default", "key", key, "default", defaultValue)
	}
	return defaultValue
}
