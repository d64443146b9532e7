package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/accident-dashboard-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/accident-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/accident-dashboard-service/internal/adapter/mapbox"
	"github.com/couchcryptid/accident-dashboard-service/internal/config"
	"github.com/couchcryptid/accident-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/accident-dashboard-service/internal/dataset"
	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/couchcryptid/accident-dashboard-service/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var (
		publisher dashboard.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("snapshot publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSnapshotTopic)
	}

	loader := dataset.NewFileLoader(cfg.DatasetPath, dataset.Options{
		DateColumn: cfg.DateColumn,
		Sheet:      cfg.DatasetSheet,
	}, logger)

	svc := dashboard.New(loader, publisher, geocoder, dashboard.Config{
		Summary: domain.SummaryOptions{
			SampleSize:    cfg.SampleSize,
			MapPointLimit: cfg.MapPointLimit,
			WeatherTopN:   cfg.WeatherTopN,
			Seed:          cfg.SampleSeed,
		},
		CacheSize:   cfg.SummaryCacheSize,
		MarkerLimit: cfg.MarkerLimit,
		Region:      cfg.MapboxRegion,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Initial load; /readyz stays unready until it succeeds.
	go func() {
		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("initial dataset load error", "error", err)
		}
	}()

	if cfg.DatasetReloadSchedule != "" {
		reloader, err := svc.StartReloader(ctx, cfg.DatasetReloadSchedule)
		if err != nil {
			logger.Error("failed to start reloader", "error", err)
		} else {
			defer reloader.Stop()
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
