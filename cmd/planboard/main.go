package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"planboard/internal/config"
	"planboard/internal/dataapi"
	"planboard/internal/geometry"
	"planboard/internal/metrics"
	"planboard/internal/models"
	"planboard/internal/planner"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("PLANBOARD_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Service.BaseURL == "" {
		logger.Fatal().Msg("set service.base_url in config")
	}

	client := dataapi.NewClient(cfg.Service.BaseURL, cfg.Service.APIKey)
	writeRate, writeBurst := cfg.WriteRate()
	client.UseWriteLimit(writeRate, writeBurst)

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		client.UseRedisCache(rdb, cfg.CacheTTL())
	}

	mapper := geometry.Mapper{
		WindowStart: models.DateOnly(time.Now()),
		VisibleDays: cfg.Planner.VisibleDays,
		BaseCellW:   cfg.Planner.BaseCellWidth,
		BaseRowH:    cfg.Planner.BaseRowHeight,
		ZoomPercent: cfg.Planner.ZoomPercent,
	}
	board := planner.New(client, mapper, nil, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := board.Refresh(ctx); err != nil {
		logger.Fatal().Err(err).Msg("initial refresh failed")
	}

	// Display settings follow the config file without a restart.
	err = config.Watch(ctx, os.Getenv("PLANBOARD_CONFIG_PATH"), 30*time.Second, func(updated *config.Config) {
		board.SetZoom(updated.Planner.ZoomPercent)
		board.SetWindow(board.Mapper().WindowStart, updated.Planner.VisibleDays)
	})
	if err != nil {
		logger.Warn().Err(err).Msg("config watch disabled")
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Msg("planboard started")

	ticker := time.NewTicker(cfg.RefreshInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("planboard stopped")
			return
		case <-ticker.C:
			if err := board.Refresh(ctx); err != nil {
				logger.Error().Err(err).Msg("periodic refresh failed")
				continue
			}
			today := models.DateOnly(time.Now())
			logger.Info().
				Int("free_today", board.AvailableOn(today)).
				Int("free_tomorrow", board.AvailableOn(today.AddDate(0, 0, 1))).
				Msg("availability")
		}
	}
}

func startHealthServer(ctx context.Context, port int, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if rdb != nil {
			ctxPing, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
