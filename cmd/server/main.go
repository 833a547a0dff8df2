// GSC Hearing - conversational hearing server for the Global Startup Campus
// initiative.
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

	"github.com/daisukegoma-max/gsc-hearing-app/internal/config"
	"github.com/daisukegoma-max/gsc-hearing-app/internal/export"
	"github.com/daisukegoma-max/gsc-hearing-app/internal/hearing"
	"github.com/daisukegoma-max/gsc-hearing-app/internal/identity"
	"github.com/daisukegoma-max/gsc-hearing-app/internal/llm"
	"github.com/daisukegoma-max/gsc-hearing-app/internal/middleware"
	"github.com/daisukegoma-max/gsc-hearing-app/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
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

	slog.Info("Starting server", "port", cfg.Port, "model", cfg.Model, "dev", cfg.IsDevelopment())

	// Completion boundary.
	completer := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxTokens)

	// Export boundary (optional in development).
	var exporter hearing.Exporter
	if cfg.ExportURL != "" {
		exporter = export.NewClient(cfg.ExportURL, cfg.ExportAuthToken)
		slog.Info("Transcript export enabled", "delay", cfg.ExportDelay)
	} else {
		exporter = export.Disabled{}
		slog.Warn("EXPORT_URL not set, transcript export disabled")
	}

	// Diagnostic transcript log.
	recorder, err := hearing.NewTranscriptLogger(hearing.TranscriptLogConfig{
		Enabled:       cfg.TranscriptLog.Enabled,
		Dir:           cfg.TranscriptLog.Dir,
		GlobalEnabled: cfg.TranscriptLog.GlobalEnabled,
		GlobalPath:    cfg.TranscriptLog.GlobalPath,
		QueueSize:     cfg.TranscriptLog.QueueSize,
	})
	if err != nil {
		slog.Error("Failed to initialize transcript logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := recorder.Close(); closeErr != nil {
			slog.Error("Failed to close transcript logger", "error", closeErr)
		}
	}()

	// Conversation controller.
	manager := hearing.NewManager()
	processor := hearing.NewProcessor(completer, exporter, cfg.ExportDelay, recorder)
	hearingHandler := hearing.NewHandler(manager, processor, cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	hearingHandler.RegisterRoutes(r)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Note: no WriteTimeout — a completion call can hold a turn open for as
	// long as the model takes, and only that turn blocks on it.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Idle-session janitor.
	manager.StartEviction(ctx, cfg.SessionTTL)
	slog.Info("Session eviction worker started", "session_ttl", cfg.SessionTTL)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
