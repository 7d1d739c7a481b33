package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/opalia-labs/palmares/internal/analyst"
	"github.com/opalia-labs/palmares/internal/api"
	"github.com/opalia-labs/palmares/internal/checks"
	"github.com/opalia-labs/palmares/internal/composer"
	"github.com/opalia-labs/palmares/internal/config"
	"github.com/opalia-labs/palmares/internal/events"
	"github.com/opalia-labs/palmares/internal/openai"
	"github.com/opalia-labs/palmares/internal/pipeline"
	"github.com/opalia-labs/palmares/internal/ranking"
	"github.com/opalia-labs/palmares/internal/session"
	"github.com/opalia-labs/palmares/internal/store"
	"github.com/opalia-labs/palmares/internal/vocab"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// No .env file is the normal case outside local development.
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("palmares starting", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Vocabulary
	voc, err := vocab.Load()
	if err != nil {
		slog.Error("failed to load vocabulary", "error", err)
		os.Exit(1)
	}

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Model client
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	llm := openai.NewClient(cfg.OpenAIAPIKey, cfg.Model)
	slog.Info("model client ready", "model", cfg.Model)

	// Audit events (optional: the assistant works without NATS, just no
	// audit stream)
	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		publisher, err = events.Connect(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, running without audit events")
	}

	// Sessions
	sessions := session.NewStore(cfg.SessionTTL, db, slog.Default())
	if publisher != nil {
		sessions.OnExpire(func(id string) {
			if err := publisher.SessionExpired(id); err != nil {
				slog.Warn("session expiry event publish failed", "session_id", id, "error", err)
			}
		})
	}
	go sessions.Run(ctx, cfg.SweepInterval)

	// Pipeline stages
	chain := checks.Default(llm, cfg.MaxMessageLen, cfg.MaxTurns, slog.Default())
	an := analyst.New(llm, voc, slog.Default())
	fetcher := ranking.NewFetcher(db, voc, slog.Default())
	comp := composer.New(llm, slog.Default())

	pipe := pipeline.New(chain, an, fetcher, comp, sessions, publisher, cfg.ResultCount, slog.Default())

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, pipe, slog.Default())

	slog.Info("palmares ready", "port", cfg.Port)

	if err := srv.Start(ctx); err != nil {
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	}

	slog.Info("palmares stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
