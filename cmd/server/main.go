package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mizuhara-san/city-ai/internal/ai"
	"github.com/mizuhara-san/city-ai/internal/config"
	"github.com/mizuhara-san/city-ai/internal/db"
	httpapi "github.com/mizuhara-san/city-ai/internal/http"
	"github.com/mizuhara-san/city-ai/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "city-ai").Logger()

	ctx := context.Background()

	var store db.Store
	if cfg.DatabaseURL == "" {
		store = db.NewMemory()
		logger.Info().Msg("using in-memory ticket store")
	} else {
		pg, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		if cfg.RunMigrations {
			if err := pg.RunMigrations(ctx, logger); err != nil {
				logger.Fatal().Err(err).Msg("failed to run migrations")
			}
		}
		store = pg
	}
	if cfg.RedisAddr != "" {
		store = db.NewCached(store, cfg.RedisAddr, cfg.RedisPassword, logger)
	}
	defer store.Close()

	var client ai.Client
	if cfg.GeminiAPIKey == "" {
		client = ai.MockClient{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock AI client")
	} else {
		client = ai.GeminiClient{
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			APIKey:  cfg.GeminiAPIKey,
		}
	}

	pipeline := &service.Pipeline{Store: store, AI: client, Logger: logger}
	router := httpapi.Router(cfg, store, pipeline, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
