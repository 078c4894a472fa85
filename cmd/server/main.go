// Adolai - adolescent health chatbot backend
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/adolai/internal/api"
	"github.com/ashureev/adolai/internal/cache"
	"github.com/ashureev/adolai/internal/chat"
	"github.com/ashureev/adolai/internal/chatapi"
	"github.com/ashureev/adolai/internal/config"
	"github.com/ashureev/adolai/internal/history"
	"github.com/ashureev/adolai/internal/identity"
	"github.com/ashureev/adolai/internal/middleware"
	"github.com/ashureev/adolai/internal/socket"
	"github.com/ashureev/adolai/internal/store"
	"github.com/ashureev/adolai/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "upstream", cfg.Upstream.BaseURL)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	upstream, err := chatapi.New(chatapi.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
		Logger:  logger,
	})
	if err != nil {
		slog.Error("Failed to initialize chat API client", "error", err)
		os.Exit(1)
	}

	// Initialize services.
	replyCache := cache.New(cache.Options{
		MaxSize: cfg.Cache.MaxSize,
		TTL:     cfg.Cache.TTL,
	})
	historyStore := history.New(repo, history.Options{
		MaxSessions: cfg.History.MaxSessions,
		Logger:      logger,
	})
	controller := chat.NewController(upstream, replyCache, historyStore, chat.Options{
		ChatTimeout: cfg.Upstream.ChatTimeout,
		Logger:      logger,
	})
	limiter := api.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	sm := socket.NewSessionManager()

	// Initialize handlers.
	apiHandler := api.NewHandler(controller, historyStore, limiter)
	wsHandler := socket.NewHandler(controller, sm, cfg.AllowedOrigins, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(cfg.IsDevelopment()))

		apiHandler.RegisterRoutes(r)

		// WebSocket endpoint.
		r.With(limiter.Middleware).Get("/ws/chat", wsHandler.ServeHTTP)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler(web.Dist()))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websocket connections are long lived
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background workers.
	cache.StartSweeper(ctx, replyCache, cfg.Cache.SweepInterval)
	limiter.StartEviction(ctx, 10*time.Minute)
	slog.Info("Background workers started", "cache_sweep_interval", cfg.Cache.SweepInterval)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if n := sm.CloseAll(); n > 0 {
		slog.Info("Closed chat sockets", "count", n)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
