package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/prygl-status-service/internal/adapter/blob"
	httpadapter "github.com/couchcryptid/prygl-status-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/prygl-status-service/internal/adapter/kafka"
	"github.com/couchcryptid/prygl-status-service/internal/adapter/openrouter"
	"github.com/couchcryptid/prygl-status-service/internal/adapter/prygl"
	"github.com/couchcryptid/prygl-status-service/internal/cache"
	"github.com/couchcryptid/prygl-status-service/internal/config"
	"github.com/couchcryptid/prygl-status-service/internal/generator"
	"github.com/couchcryptid/prygl-status-service/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	model := openrouter.NewClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterTimeout, metrics, logger)
	page := prygl.NewFetcher(cfg.SourcePageURL, cfg.SourceFetchTimeout, metrics, logger)
	gen := generator.New(model, page, cfg.SourcePageURL, metrics, logger)

	status := &httpadapter.StatusHandler{
		Generator: gen,
		Metrics:   metrics,
		Logger:    logger,
	}

	// Durable cache (feature-flagged via BLOB_STORE_URL / CACHE_ENABLED).
	if cfg.CacheEnabled {
		store := blob.NewClient(cfg.BlobStoreURL, cfg.BlobToken, logger)
		status.Cache = cache.New(store, cfg.CacheMaxAge, nil, metrics, logger)
		logger.Info("durable report cache enabled", "max_age", cfg.CacheMaxAge)
	} else {
		logger.Info("durable report cache disabled, every request regenerates")
	}

	// Report event publishing (feature-flagged via KAFKA_ENABLED).
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		status.Publisher = publisher
		logger.Info("report event publishing enabled", "topic", cfg.KafkaTopic)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, status, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
