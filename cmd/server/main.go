package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/mama-respira/internal/api"
	"github.com/dom/mama-respira/internal/auth"
	"github.com/dom/mama-respira/internal/completion"
	"github.com/dom/mama-respira/internal/config"
	"github.com/dom/mama-respira/internal/logger"
	"github.com/dom/mama-respira/internal/service"
	"github.com/dom/mama-respira/internal/storage"
	"github.com/dom/mama-respira/internal/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL())
	if err != nil {
		zlog.Fatal("invalid token configuration", zap.Error(err))
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// Initialize storage
	repos, closeStore, err := storage.Open(startCtx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open store", zap.Error(err))
	}

	// Initialize WebSocket hub, fanned out through Redis when configured
	var hubOpts []websocket.HubOption
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zlog.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(startCtx).Err(); err != nil {
			zlog.Fatal("failed to reach redis", zap.Error(err))
		}
		hubOpts = append(hubOpts, websocket.WithBroker(websocket.NewRedisBroker(rdb, websocket.DefaultChannel, zlog.Named("broker"))))
		zlog.Info("realtime events shared through redis")
	}
	hub := websocket.NewHub(zlog.Named("hub"), hubOpts...)
	go hub.Run()

	completer := completion.New(completion.Config{
		APIKey:  cfg.AnthropicAPIKey,
		Model:   cfg.AnthropicModel,
		BaseURL: cfg.AnthropicBaseURL,
		Timeout: cfg.AnthropicTimeout,
	})
	if cfg.AnthropicAPIKey == "" {
		zlog.Warn("ANTHROPIC_API_KEY not set, bitácora summaries use the fallback text")
	}

	// Initialize services
	services := service.NewServices(repos, cfg, tokens, hub, completer, zlog)

	// Initialize router
	router := api.NewRouter(services, hub, cfg, zlog)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	hub.Stop()
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			zlog.Warn("close redis", zap.Error(err))
		}
	}
	if err := closeStore(ctx); err != nil {
		zlog.Warn("close store", zap.Error(err))
	}

	zlog.Info("server stopped")
}
