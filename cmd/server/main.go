package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/srosato/doctran/internal/api"
	"github.com/srosato/doctran/internal/config"
	"github.com/srosato/doctran/internal/pipeline"
	"github.com/srosato/doctran/internal/schema"
	"github.com/srosato/doctran/internal/store"
	"github.com/srosato/doctran/internal/telemetry"
)

func main() {
	cfg, err := config.Load(os.Getenv("DOCTRAN_CONFIG"))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build the schema/transform registry. New or changed schema and
	// transform files only take effect after a restart.
	registry, err := schema.Load(cfg.SchemaDir, log)
	if err != nil {
		log.Error("failed to load schema registry", "error", err)
		os.Exit(1)
	}

	// Initialize clients and telemetry.
	st := store.NewClient(cfg.Store.URL, cfg.Store.APIKey)
	metrics := telemetry.New()
	stats := telemetry.NewTransformStats(time.Hour)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, registry, st, metrics, stats, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, registry, metrics, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		st.Close()
	}()

	log.Info("starting doctran", "port", cfg.Port, "types", len(registry.Types()))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
