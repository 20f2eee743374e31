package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jwebster45206/masquerade/internal/config"
	"github.com/jwebster45206/masquerade/internal/handlers"
	"github.com/jwebster45206/masquerade/internal/logger"
	"github.com/jwebster45206/masquerade/internal/middleware"
	"github.com/jwebster45206/masquerade/internal/observe"
	"github.com/jwebster45206/masquerade/internal/services/events"
	"github.com/jwebster45206/masquerade/internal/services/queue"
	"github.com/jwebster45206/masquerade/internal/session"
	"github.com/jwebster45206/masquerade/internal/storage"
	"github.com/jwebster45206/masquerade/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	game, err := config.LoadGame(cfg.TuningFile, cfg)
	if err != nil {
		log.Error("Invalid tuning", "error", err, "file", cfg.TuningFile)
		os.Exit(1)
	}

	log.Info("Starting Masquerade API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"tick_interval", cfg.TickInterval,
		"tier_scheme", game.Generator.TierScheme,
		"failure_level", game.Progression.FailureLevel)

	rdb, err := storage.Connect(cfg.RedisURL)
	if err != nil {
		log.Error("Failed to configure Redis", "error", err)
		os.Exit(1)
	}
	store := storage.NewRedisStorage(rdb, cfg.SessionTTL, log)

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	eventQueue := queue.NewEventQueue(queue.NewClientFromRedis(rdb, log), log)
	broadcaster := events.NewBroadcaster(rdb, log)
	sessions := session.NewManager(game, cfg.Seed, log)
	loop := worker.New(sessions, eventQueue, broadcaster, store, cfg.TickInterval, log, "")

	telemetry, err := observe.InitProvider("masquerade-api", "")
	if err != nil {
		log.Error("Failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	metrics, err := observe.NewMetrics(telemetry.MeterProvider)
	if err != nil {
		log.Error("Failed to create metric instruments", "error", err)
		os.Exit(1)
	}
	if _, err := observe.RegisterSessionGauge(telemetry.MeterProvider, sessions.Len); err != nil {
		log.Error("Failed to register session gauge", "error", err)
		os.Exit(1)
	}
	loop.SetMetrics(metrics)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, sessions, log))
	mux.Handle("/metrics", telemetry.Handler())

	sessionsHandler := handlers.NewSessionsHandler(log, sessions, store, eventQueue)
	mux.Handle("/v1/sessions", sessionsHandler)
	mux.Handle("/v1/sessions/", sessionsHandler)
	mux.Handle("/v1/events/sessions/", handlers.NewEventsHandler(rdb, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, middleware.Metrics(metrics, mux)),
		ReadTimeout: 15 * time.Second,
		// WriteTimeout removed to enable streaming - streaming endpoints handle their own timeouts
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(loop.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Server is shutting down...")

		loop.Stop()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", "error", err)
	}

	telemetryCtx, telemetryCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer telemetryCancel()
	if err := telemetry.Shutdown(telemetryCtx); err != nil {
		log.Error("Error shutting down metrics", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	log.Info("Server exited")
}

