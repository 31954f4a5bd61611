package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rescuedecisions/sarsat-msg-etl/internal/adapter/httpapi"
	kafkaadapter "github.com/rescuedecisions/sarsat-msg-etl/internal/adapter/kafka"
	"github.com/rescuedecisions/sarsat-msg-etl/internal/adapter/ndbc"
	"github.com/rescuedecisions/sarsat-msg-etl/internal/config"
	"github.com/rescuedecisions/sarsat-msg-etl/internal/domain"
	"github.com/rescuedecisions/sarsat-msg-etl/internal/observability"
	"github.com/rescuedecisions/sarsat-msg-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogFormat, cfg.LogLevel)
	metrics := observability.NewMetrics()

	fieldCfg, err := config.LoadFieldConfig(cfg.FieldConfigPath)
	if err != nil {
		logger.Error("failed to load field config", "error", err)
		os.Exit(1)
	}

	// Initialize weather provider (feature-flagged via WEATHER_ENABLED).
	var weather domain.WeatherProvider
	if cfg.WeatherEnabled {
		client := ndbc.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, logger, metrics)
		weather = ndbc.NewCachedProvider(client, cfg.WeatherCacheSize, metrics)
		metrics.WeatherEnabled.Set(1)
		logger.Info("ndbc weather enrichment enabled", "cache_size", cfg.WeatherCacheSize, "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("ndbc weather enrichment disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(fieldCfg, weather, logger, metrics, cfg.WeatherBaseURL, cfg.WeatherTimeout, cfg.ShoreDistanceKm)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpapi.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
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
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
