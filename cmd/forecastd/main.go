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

	httpadapter "github.com/couchcryptid/forecast-enrichment-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/forecast-enrichment-service/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-enrichment-service/internal/adapter/owm"
	"github.com/couchcryptid/forecast-enrichment-service/internal/adapter/snapshot"
	"github.com/couchcryptid/forecast-enrichment-service/internal/adapter/source"
	"github.com/couchcryptid/forecast-enrichment-service/internal/config"
	"github.com/couchcryptid/forecast-enrichment-service/internal/observability"
	"github.com/couchcryptid/forecast-enrichment-service/internal/pipeline"
	"github.com/couchcryptid/forecast-enrichment-service/internal/store"
)

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Source selection: snapshot-only when the live API is disabled,
	// live-with-snapshot-fallback otherwise.
	snapshotReader := snapshot.NewReader(cfg.SnapshotDir, cfg.City, logger)
	var forecastSource pipeline.ForecastSource = snapshotReader
	if cfg.LiveEnabled {
		liveClient := owm.NewClient(cfg, logger)
		forecastSource = source.New(liveClient, snapshotReader, logger)
		logger.Info("live forecast source enabled", "base_url", cfg.LiveBaseURL, "city", cfg.City)
	} else {
		logger.Info("live forecast source disabled, serving snapshots only", "dir", cfg.SnapshotDir)
	}

	memStore := store.NewMemoryStore(cfg.HistorySize)
	loaders := []pipeline.DatasetLoader{memStore}

	if cfg.LiveEnabled {
		// Live refreshes are persisted back to disk so the fallback stays
		// current across restarts and outages.
		loaders = append(loaders, snapshot.NewWriter(cfg.SnapshotDir, logger))
	}

	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, kafkaWriter)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka sink disabled")
	}

	transformer := pipeline.NewTransformer(logger)
	p := pipeline.New(forecastSource, transformer, logger, metrics, cfg.RefreshInterval, loaders...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, memStore, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
