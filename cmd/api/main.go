package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/config"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/delivery/http/middleware"
	v1 "github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/delivery/http/v1"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/infrastructure/cache"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/remote"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/repository/postgres"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/usecase"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Local order mirror (PostgreSQL via pgx)
	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := postgres.EnsureSchema(context.Background(), pgxPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	store := postgres.NewOrderStore(pgxPool)

	// In-memory cache for single-order remote lookups
	memCache := cache.NewMemoryCache(cfg.OrderCacheTTL, 2*cfg.OrderCacheTTL)

	// Remote order API client
	client := remote.NewClient(cfg, memCache, cfg.OrderCacheTTL)

	// Sync engine + background poller
	engine := usecase.NewEngine(store, client, cfg, cfg.OrderPageSize, cfg.RefreshMinInterval)
	poller := usecase.NewPoller(engine, store, cfg.PollInterval)

	pollCtx, stopPoller := context.WithCancel(context.Background())
	go poller.Run(pollCtx)

	// Set up Router
	mux := http.NewServeMux()

	orderHandler := v1.NewOrderHandler(engine, store)
	systemHandler := v1.NewSystemHandler(engine)

	// Orders
	mux.HandleFunc("GET /api/v1/orders", orderHandler.ListOrders)
	mux.HandleFunc("POST /api/v1/orders/refresh", orderHandler.RefreshOrders)
	mux.HandleFunc("GET /api/v1/orders/unread", orderHandler.UnreadOrders)
	mux.HandleFunc("POST /api/v1/orders/read", orderHandler.MarkManyRead)
	mux.HandleFunc("POST /api/v1/orders/read-all", orderHandler.MarkAllRead)
	mux.HandleFunc("GET /api/v1/orders/{id}", orderHandler.GetOrder)
	mux.HandleFunc("PATCH /api/v1/orders/{id}/status", orderHandler.UpdateStatus)
	mux.HandleFunc("POST /api/v1/orders/{id}/print", orderHandler.MarkPrinted)
	mux.HandleFunc("DELETE /api/v1/orders/{id}/print", orderHandler.MarkUnprinted)
	mux.HandleFunc("POST /api/v1/orders/{id}/read", orderHandler.MarkRead)

	// System
	mux.HandleFunc("GET /api/v1/system/connection", systemHandler.TestConnection)
	mux.HandleFunc("GET /api/v1/statuses", systemHandler.Statuses)

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "db": "connected"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Per-IP rate limiter with lifecycle management
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// Apply CORS (with config injection), Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	stopPoller()
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	log.Info().Msg("Server exited properly")
}
