package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"archmap/backend/internal/api"
	"archmap/backend/internal/drawing"
	"archmap/backend/internal/graph"
	"archmap/backend/internal/metrics"
	"archmap/backend/internal/services"
	"archmap/backend/internal/state"
	"archmap/backend/pkg/config"
	"archmap/backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	sessionSweepInterval = 10 * time.Minute
	shutdownTimeout      = 5 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...", zap.String("env", cfg.Env))

	ctx := context.Background()

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector("archmap")
	}

	// The Neo4j driver connects on first use, so a missing database does not
	// stop the drawing editor from serving.
	repo, neo := graph.Open(cfg, collector)
	if err := neo.Verify(ctx); err != nil {
		log.Warn("Neo4j not reachable at startup", zap.Error(err))
	}

	drawings, err := drawing.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open drawing store", zap.Error(err))
	}
	log.Info("Drawing store ready", zap.String("backend", cfg.DrawingsBackend))

	sessions := state.NewSessionStore(state.DefaultSessionTTL)

	manager := services.NewServiceManager(logger.Named("services"))
	if err := manager.Start("session-sweeper", func(ctx context.Context) {
		sessions.Run(ctx, sessionSweepInterval)
	}); err != nil {
		log.Fatal("Failed to start session sweeper", zap.Error(err))
	}
	manager.OnStop("neo4j", neo.Close)
	manager.OnStop("drawings", func(context.Context) error {
		drawings.Close()
		return nil
	})

	server := api.NewServer(api.Deps{
		Repository:   repo,
		Drawings:     drawings,
		Sessions:     sessions,
		Collector:    collector,
		QueryTimeout: cfg.QueryTimeout,
		Production:   cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router(),
	}
	manager.OnStop("http", srv.Shutdown)

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	manager.StopAll(shutdownTimeout)
	log.Info("Server exited")
}
