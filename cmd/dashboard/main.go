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
	"github.com/jonboulle/clockwork"

	"github.com/jdalain/teq-dashboard/internal/adapter/afad"
	httpadapter "github.com/jdalain/teq-dashboard/internal/adapter/http"
	kafkaadapter "github.com/jdalain/teq-dashboard/internal/adapter/kafka"
	"github.com/jdalain/teq-dashboard/internal/config"
	"github.com/jdalain/teq-dashboard/internal/dashboard"
	"github.com/jdalain/teq-dashboard/internal/domain"
	"github.com/jdalain/teq-dashboard/internal/observability"
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
	clock := clockwork.NewRealClock()

	client := afad.NewClient(cfg.AFADBaseURL, cfg.FetchTimeout, metrics, logger)
	cache := dashboard.NewCache(cfg.CacheSize, cfg.CacheTTL, clock)
	normalizer := domain.NewNormalizer(cfg.TargetCountry, cfg.LocalTimeOffset)

	// Event sink (feature-flagged via KAFKA_ENABLED).
	var publisher dashboard.EventPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		publisher = kafkaPublisher
		metrics.KafkaEnabled.Set(1)
		logger.Info("kafka event sink enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka event sink disabled")
	}

	svc := dashboard.NewService(client, normalizer, publisher, cache, clock, logger, metrics)

	defaults := httpadapter.Defaults{
		StartDate:  cfg.DefaultStartDate,
		Magnitudes: domain.MagnitudeRange{Min: cfg.DefaultMagMin, Max: cfg.DefaultMagMax},
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, defaults, clock, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the cache and the readiness flag with the default window.
	go func() {
		params := dashboard.Params{
			Dates:      domain.DateRange{Start: cfg.DefaultStartDate, End: clock.Now().UTC()},
			Magnitudes: defaults.Magnitudes,
		}
		if _, err := svc.Render(ctx, params); err != nil {
			logger.Warn("initial render failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
