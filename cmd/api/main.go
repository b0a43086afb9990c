package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-rag/internal/app"
	"resume-rag/internal/config"
	"resume-rag/internal/http"
	"resume-rag/internal/service"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API ranks markdown resumes against a free-text query and summarizes the best candidates.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Resume RAG API
//   description: |
//     Hybrid lexical and semantic resume search with cross-encoder reranking
//     and LLM-written candidate summaries.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(cfg.NewLogger())
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	a, err := app.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		_ = a.Close()
	}()

	ctx := context.Background()

	// The corpus is loaded once; re-ingested resumes are served after a restart.
	corpus, model, err := a.LoadCorpus(ctx)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	if corpus.Len() == 0 {
		slog.Warn("Corpus is empty, searches will fail until resumes are ingested", "dir", cfg.MarkdownDir)
	}

	engine, err := a.NewEngine(ctx, corpus, model)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	deps := &http.Deps{
		SearchService: service.NewSearchService(engine, a.EngineOptions()),
	}
	if a.Qdrant != nil {
		deps.VectorHealth = a.Qdrant
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting API server", "addr", addr)
		slog.Debug("LLM configuration", "provider", cfg.LLMProvider, "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
