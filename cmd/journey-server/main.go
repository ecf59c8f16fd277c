package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/emr/journey/internal/config"
	"github.com/emr/journey/internal/domain/journey"
	"github.com/emr/journey/internal/domain/timeline"
	"github.com/emr/journey/internal/platform/auth"
	"github.com/emr/journey/internal/platform/cache"
	"github.com/emr/journey/internal/platform/middleware"
	"github.com/emr/journey/internal/records"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "journey-server",
		Short: "Encounter journey and patient timeline API server",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the journey API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Records API client
	client := records.NewClient(cfg.RecordsAPIURL, cfg.RecordsAPITimeout, logger)
	logger.Info().Str("records_api", cfg.RecordsAPIURL).Msg("records client ready")

	// Snapshot cache, only when a redis URL is configured
	var kv cache.KVStore
	if cfg.CacheEnabled() {
		store, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		kv = store
		logger.Info().Dur("ttl", cfg.CacheTTL).Msg("snapshot cache enabled")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// API group
	apiV1 := e.Group("/api/v1")
	apiV1.Use(auth.BearerToken())

	// Journey
	builder := journey.NewBuilder(client, logger)
	builder.SetSearchPageSize(cfg.SearchPageSize)
	journeyHandler := journey.NewHandler(builder, logger)
	if kv != nil {
		journeyHandler.SetCache(kv, cfg.CacheTTL)
	}
	journeyHandler.RegisterRoutes(apiV1)

	// Timeline
	timelineHandler := timeline.NewHandler(client, logger)
	if kv != nil {
		timelineHandler.SetCache(kv, cfg.CacheTTL)
	}
	timelineHandler.RegisterRoutes(apiV1)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
