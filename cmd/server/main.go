package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mosgamer/promptplay/internal/api"
	"github.com/mosgamer/promptplay/internal/config"
	"github.com/mosgamer/promptplay/internal/engine"
	"github.com/mosgamer/promptplay/internal/producer"
	"github.com/mosgamer/promptplay/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file", "error", err)
	}
	cfg := config.Load()

	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("open db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	s, err := store.New(db)
	if err != nil {
		slog.Error("init store", "error", err)
		os.Exit(1)
	}

	// Recompute derived fields on rows written before those columns existed.
	if err := engine.Backfill(context.Background(), s); err != nil {
		slog.Warn("backfill failed", "error", err)
	}

	var prod producer.Producer
	if cfg.UseStub() {
		slog.Warn("ANTHROPIC_API_KEY not set, using stub producer")
		prod = &producer.StubProducer{}
	} else {
		prod = producer.NewAnthropicClient(cfg.AnthropicKey, producer.WithModel(cfg.AnthropicModel))
	}

	controller := engine.NewController(s, prod,
		engine.WithMaxTokens(cfg.MaxTokens),
		engine.WithSuggestMaxTokens(cfg.SuggestMaxTokens),
	)

	srv := api.New(s, controller, cfg.CORSOrigin, !cfg.UseStub())
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Handler(),
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down...")
		httpServer.Shutdown(context.Background())
	}()

	slog.Info("promptplay server listening", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
