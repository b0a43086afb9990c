// Package app wires configuration, storage and model clients into the
// search engine and the ingestion pipeline shared by the binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"resume-rag/internal/config"
	"resume-rag/internal/contextutil"
	"resume-rag/internal/evidence"
	"resume-rag/internal/ingest"
	"resume-rag/internal/llm"
	"resume-rag/internal/rag"
	"resume-rag/internal/retrieval"
	"resume-rag/internal/storage"
	"resume-rag/internal/vectorstore"
)

// App holds the long-lived resources opened from a Config.
type App struct {
	Config *config.Config
	DB     *sql.DB
	// Qdrant is nil when QDRANT_URL is not set.
	Qdrant *vectorstore.QdrantStore

	resumes   *storage.ResumeRepo
	fragments *storage.FragmentRepo
	meta      *storage.MetaRepo
	embedder  *llm.EmbeddingsClient
}

// Open opens the database, runs migrations and connects to Qdrant when configured.
func Open(cfg *config.Config) (*App, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	a := &App{
		Config:    cfg,
		DB:        db,
		resumes:   storage.NewResumeRepo(db),
		fragments: storage.NewFragmentRepo(db),
		meta:      storage.NewMetaRepo(db),
		embedder:  llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingVectorSize),
	}

	if cfg.QdrantURL != "" {
		qdrant, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
		}
		a.Qdrant = qdrant
	}
	return a, nil
}

// Close releases the database and the Qdrant connection.
func (a *App) Close() error {
	if a.Qdrant != nil {
		_ = a.Qdrant.Close()
	}
	return a.DB.Close()
}

// vectorStore returns the mirror target, or a nil interface when Qdrant is off.
func (a *App) vectorStore() vectorstore.VectorStore {
	if a.Qdrant == nil {
		return nil
	}
	return a.Qdrant
}

// LoadCorpus reads the corpus from the configured source. The returned model
// falls back to the configured embedding model when none was recorded.
func (a *App) LoadCorpus(ctx context.Context) (*retrieval.Corpus, string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var (
		corpus *retrieval.Corpus
		model  string
		err    error
	)
	switch a.Config.CorpusSource {
	case config.CorpusSourceQdrant:
		corpus, model, err = vectorstore.LoadCorpus(ctx, a.Qdrant, a.Config.QdrantCollection)
	default:
		corpus, model, err = storage.LoadCorpus(ctx, a.fragments, a.meta)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load corpus from %s: %w", a.Config.CorpusSource, err)
	}

	if model == "" {
		model = a.Config.EmbeddingModelName
	} else if model != a.Config.EmbeddingModelName {
		logger.WarnContext(ctx, "corpus was embedded with a different model, using it for queries",
			"corpus_model", model, "configured_model", a.Config.EmbeddingModelName)
	}

	logger.InfoContext(ctx, "corpus loaded",
		"source", a.Config.CorpusSource,
		"fragments", corpus.Len(),
		"dimension", corpus.Dim(),
		"model", model)
	return corpus, model, nil
}

// EngineOptions maps the configuration onto the pipeline settings.
func (a *App) EngineOptions() rag.Options {
	cfg := a.Config
	return rag.Options{
		TopKRetrieve:  cfg.TopKRetrieve,
		TopKRerank:    cfg.TopKRerank,
		TopKSummarize: cfg.TopKSummarize,
		RRFK:          cfg.RRFK,
		Weights: retrieval.Weights{
			Lexical:  cfg.RRFWeightLexical,
			Semantic: cfg.RRFWeightSemantic,
		},
		MaxResumeChars:  cfg.MaxResumeChars,
		MaxContextChars: cfg.MaxContextChars,
		RerankBatchSize: cfg.RerankBatchSize,
	}
}

// NewSummarizer builds the summary client for the configured provider.
func (a *App) NewSummarizer() (evidence.Summarizer, error) {
	cfg := a.Config
	if cfg.LLMProvider == config.ProviderLangchain {
		completer, err := llm.NewLangchainCompleter(cfg.LLMBaseURL+"/v1", cfg.LLMAPIKey, cfg.LLMModelName)
		if err != nil {
			return nil, err
		}
		return completer, nil
	}
	return llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName), nil
}

// NewEngine builds the search engine over corpus.
func (a *App) NewEngine(ctx context.Context, corpus *retrieval.Corpus, model string) (rag.Engine, error) {
	cfg := a.Config

	if cfg.PreloadModels {
		a.preloadModels(ctx)
	}

	summarizer, err := a.NewSummarizer()
	if err != nil {
		return nil, err
	}

	engine, err := rag.NewEngine(
		corpus,
		model,
		llm.NewCachedEmbedder(a.embedder, cfg.EmbeddingCacheSize),
		llm.NewRerankClient(cfg.RerankBaseURL, cfg.RerankAPIKey, cfg.RerankModelName),
		summarizer,
		a.EngineOptions(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create RAG engine: %w", err)
	}
	slog.Info("RAG engine initialized", "provider", cfg.LLMProvider, "llm_model", cfg.LLMModelName, "rerank_model", cfg.RerankModelName)
	return engine, nil
}

// preloadModels asks each llama.cpp router to load its model. Failures are
// logged; the first request then pays the load latency instead.
func (a *App) preloadModels(ctx context.Context) {
	logger := contextutil.LoggerFromContext(ctx)
	cfg := a.Config

	targets := []struct{ baseURL, model string }{
		{cfg.EmbeddingBaseURL, cfg.EmbeddingModelName},
		{cfg.RerankBaseURL, cfg.RerankModelName},
		{cfg.LLMBaseURL, cfg.LLMModelName},
	}
	for _, t := range targets {
		if err := llm.NewModelLoader(t.baseURL).EnsureLoaded(ctx, t.model); err != nil {
			logger.WarnContext(ctx, "failed to preload model", "base_url", t.baseURL, "model", t.model, "error", err)
			continue
		}
		logger.InfoContext(ctx, "model ready", "model", t.model)
	}
}

// NewIngestPipeline builds the ingestion pipeline. Points are mirrored to
// Qdrant when it is configured. Call Release on the result when done.
func (a *App) NewIngestPipeline() (*ingest.Pipeline, error) {
	cfg := a.Config
	return ingest.NewPipeline(
		a.resumes,
		a.fragments,
		a.meta,
		a.embedder,
		a.vectorStore(),
		ingest.Options{
			EmbeddingModel: cfg.EmbeddingModelName,
			BatchSize:      cfg.IngestBatchSize,
			Workers:        cfg.IngestWorkers,
			Collection:     cfg.QdrantCollection,
		},
	)
}
