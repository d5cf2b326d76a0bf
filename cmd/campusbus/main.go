package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"campusbus/internal/adapter"
	"campusbus/internal/aggregator"
	"campusbus/internal/cache"
	"campusbus/internal/config"
	"campusbus/internal/handler"
	"campusbus/internal/hub"
	"campusbus/internal/ingestor"
	"campusbus/internal/middleware"
	"campusbus/internal/store"
	"campusbus/pkg/iettapi"
	"campusbus/pkg/shuttleapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("starting campusbus server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"route_code", cfg.RouteCode,
		"redis_enabled", cfg.RedisEnabled,
	)

	iettClient := iettapi.New(cfg.IettBaseURL, cfg.IettUsername, cfg.IettPassword)
	shuttleClient := shuttleapi.New(cfg.ShuttleBaseURL)

	authority := adapter.NewAuthority(iettClient, cfg.RouteCode, cfg.VariantMarker, logger)
	shuttle := adapter.NewShuttle(shuttleClient, logger)
	agg := aggregator.New(authority, shuttle, logger)

	scheduleStore := store.New()
	poller := ingestor.New(agg, scheduleStore, cfg.PollInterval, cfg.FetchTimeout, logger)
	wsHub := hub.NewHub(logger)
	announcer := hub.NewAnnouncer(wsHub, scheduleStore, cfg.AnnounceInterval, logger)

	var redisCache *cache.RedisCache
	if cfg.RedisEnabled {
		redisCache, err = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Error("redis unavailable, continuing without cache", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	scheduleHandler := handler.NewScheduleHandler(agg, authority, scheduleStore, redisCache, cfg.CacheTTL, cfg.VariantMarker, logger)
	wsHandler := handler.NewWSHandler(wsHub, scheduleStore, logger)
	healthHandler := handler.NewHealthHandler(poller, scheduleStore)
	statsHandler := handler.NewStatsHandler(scheduleStore, wsHub)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/schedules", scheduleHandler.ListSchedules)
	mux.HandleFunc("GET /v1/schedules/next", scheduleHandler.NextDepartures)
	mux.HandleFunc("GET /v1/routes/{code}/schedules", scheduleHandler.RouteVariantSchedules)
	mux.HandleFunc("/v1/ws", wsHandler.ServeWS)

	mux.HandleFunc("GET /v1/stats", statsHandler.GetStats)
	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.HandleFunc("GET /readyz", healthHandler.Readyz)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerWindow, cfg.RateLimitWindow, cfg.RateLimitWhitelist, logger)
	rateLimiter.Blocked = handler.ServerStats.IncRateLimitBlocked

	var root http.Handler = mux
	root = handler.CountingMiddleware(root)
	root = rateLimiter.Middleware(root)
	root = handler.GzipMiddleware(root)
	root = handler.CORSMiddleware(root)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      root,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go wsHub.Run(ctx)
	go poller.Run(ctx)
	go announcer.Run(ctx)

	if redisCache != nil && cfg.CacheWarmOnStart {
		warmer := cache.NewCacheWarmer(redisCache, scheduleStore, cfg.CacheTTL, logger)
		go warmer.WarmAll(ctx)
	}

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
