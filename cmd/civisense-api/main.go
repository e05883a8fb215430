package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"civisense/internal/api"
	"civisense/internal/civic"
	"civisense/internal/config"
	"civisense/internal/dashboard"
	"civisense/internal/pubsub"
	"civisense/internal/schema"
	"civisense/internal/service"
	"civisense/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional Redis fan-out between gateway instances
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
	}

	// Pub/sub bus
	bus := pubsub.New(rdb, cfg.RedisChannel, logger)

	// Classification service client
	client := civic.NewClient(cfg.ServiceBaseURL, civic.NewHTTPClient(cfg.HTTPTimeout), logger)

	// Dashboard snapshot pipeline
	store := dashboard.NewStore()
	builder := dashboard.NewBuilder(dashboard.NewDecodeCache(cfg.DecodeCacheSize, cfg.DecodeCacheTTL))
	scheduler := dashboard.NewScheduler(client, builder, store, bus, cfg.RefreshInterval, logger)

	// Complaint lifecycle
	complaintSvc, err := service.NewComplaintService(ctx, client, schema.NewCompilerWithCache(16), scheduler, bus, logger)
	if err != nil {
		logger.Fatal("Failed to initialize complaint service", zap.Error(err))
	}

	// WebSocket hub
	hub := ws.NewHub(store, cfg.PageSize, logger)
	hub.SetCommandHandler(ws.NewCommandHandler(complaintSvc, logger))
	bus.SetWSHub(hub)

	var wg sync.WaitGroup
	for _, run := range []func(context.Context){hub.Run, bus.Listen, scheduler.Run} {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(ctx)
		}(run)
	}

	// HTTP router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Timeout middleware - skip for WebSocket upgrades
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, req)
				return
			}
			middleware.Timeout(cfg.HTTPTimeout+5*time.Second)(next).ServeHTTP(w, req)
		})
	})

	// Mount API routes
	r.Mount("/v1", api.Routes(api.Dependencies{
		Complaints: complaintSvc,
		Snapshots:  store,
		Hub:        hub,
		Log:        logger,
		PageSize:   cfg.PageSize,
	}))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	// Start server
	logger.Info("Starting server",
		zap.String("addr", cfg.Addr),
		zap.String("service", cfg.ServiceBaseURL),
		zap.Duration("refresh", cfg.RefreshInterval),
		zap.Bool("redis", rdb != nil),
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	wg.Wait()

	logger.Info("Server stopped")
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
