package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campaignstack/ai-gateway/internal/gateway"
	"github.com/campaignstack/ai-gateway/internal/gateway/cache"
	"github.com/campaignstack/ai-gateway/internal/gateway/handlers"
	"github.com/campaignstack/ai-gateway/internal/gateway/pricing"
	"github.com/campaignstack/ai-gateway/internal/gateway/providers"
	"github.com/campaignstack/ai-gateway/internal/gateway/ratelimit"
	"github.com/campaignstack/ai-gateway/internal/gateway/usage"
	"github.com/campaignstack/ai-gateway/internal/shared/config"
	"github.com/campaignstack/ai-gateway/internal/shared/database"
	"github.com/campaignstack/ai-gateway/internal/shared/redis"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("starting ai-gateway", "port", cfg.Port, "env", cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	redisClient, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	pricingTable, err := pricing.LoadTable(cfg.PricingFile)
	if err != nil {
		logger.Error("failed to load pricing table", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.VendorTimeoutSeconds) * time.Second}

	orchestrator := gateway.New(gateway.Config{
		Configs:  db,
		Policies: db,
		Cache:    cache.New(redisClient),
		Limiter: ratelimit.New(redisClient, ratelimit.Defaults{
			MaxRequestsPerHour: int64(cfg.DefaultMaxRequestsPerHour),
			MaxTokensPerDay:    int64(cfg.DefaultMaxTokensPerDay),
			MaxCostPerMonth:    cfg.DefaultMaxCostPerMonth,
		}),
		Usage:    usage.New(db.Conn()),
		Adapters: providers.NewRegistry(httpClient),
		Pricing:  pricingTable,
		CacheTTL: time.Duration(cfg.CacheTTLSeconds) * time.Second,
		Logger:   logger,
	})

	generateHandler := handlers.NewGenerateHandler(orchestrator)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(90 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(handlers.TenantMiddleware)
		r.Post("/generate", generateHandler.HandleGenerate)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  90 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
