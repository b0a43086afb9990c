package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks resume-rag/internal/rag Engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"resume-rag/internal/contextutil"
	"resume-rag/internal/evidence"
	"resume-rag/internal/rerank"
	"resume-rag/internal/retrieval"
)

// debugCandidateLimit caps the reranked records returned in debug mode.
const debugCandidateLimit = 50

// ErrEmptyCorpus is returned when searching a corpus with no fragments.
var ErrEmptyCorpus = errors.New("corpus is empty")

// Engine ranks resumes against a query.
type Engine interface {
	// Search runs retrieval, fusion, reranking and summarization for a query.
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
	// Corpus returns the corpus the engine searches.
	Corpus() *retrieval.Corpus
	// EmbeddingModel returns the model queries are embedded with.
	EmbeddingModel() string
}

// Options holds the pipeline defaults and tuning.
type Options struct {
	TopKRetrieve    int
	TopKRerank      int
	TopKSummarize   int
	RRFK            int
	Weights         retrieval.Weights
	MaxResumeChars  int
	MaxContextChars int
	RerankBatchSize int
}

// DefaultOptions returns the standard pipeline settings.
func DefaultOptions() Options {
	assemble := evidence.DefaultAssembleOptions()
	return Options{
		TopKRetrieve:    200,
		TopKRerank:      180,
		TopKSummarize:   assemble.TopN,
		RRFK:            retrieval.DefaultRRFK,
		Weights:         retrieval.DefaultWeights(),
		MaxResumeChars:  assemble.MaxResumeChars,
		MaxContextChars: assemble.MaxContextChars,
		RerankBatchSize: rerank.DefaultBatchSize,
	}
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	corpus    *retrieval.Corpus
	lexical   *retrieval.LexicalRetriever
	semantic  *retrieval.SemanticRetriever
	reranker  *rerank.Reranker
	assembler *evidence.Assembler
	opts      Options
}

// NewEngine fits both retrievers over corpus and wires the downstream stages.
// model is the embedding model the corpus vectors were produced with.
func NewEngine(
	corpus *retrieval.Corpus,
	model string,
	embedder retrieval.QueryEmbedder,
	scorer rerank.RelevanceScorer,
	summarizer evidence.Summarizer,
	opts Options,
) (Engine, error) {
	if opts.Weights == (retrieval.Weights{}) {
		opts.Weights = retrieval.DefaultWeights()
	}

	lexical := retrieval.NewLexicalRetriever()
	lexical.Fit(corpus)

	semantic := retrieval.NewSemanticRetriever(embedder)
	if err := semantic.Fit(corpus, model); err != nil {
		return nil, fmt.Errorf("failed to fit semantic retriever: %w", err)
	}

	return &ragEngine{
		corpus:    corpus,
		lexical:   lexical,
		semantic:  semantic,
		reranker:  rerank.NewReranker(scorer, opts.RerankBatchSize),
		assembler: evidence.NewAssembler(summarizer),
		opts:      opts,
	}, nil
}

func (e *ragEngine) Corpus() *retrieval.Corpus { return e.corpus }

func (e *ragEngine) EmbeddingModel() string { return e.semantic.Model() }

// withDefaults fills unset limits from the engine options.
func (e *ragEngine) withDefaults(req SearchRequest) SearchRequest {
	if req.TopKRetrieve <= 0 {
		req.TopKRetrieve = e.opts.TopKRetrieve
	}
	if req.TopKRerank <= 0 {
		req.TopKRerank = e.opts.TopKRerank
	}
	if req.TopKSummarize <= 0 {
		req.TopKSummarize = e.opts.TopKSummarize
	}
	return req
}

// Search ranks resumes for the query.
func (e *ragEngine) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	req = e.withDefaults(req)

	if e.corpus.Len() == 0 {
		return SearchResponse{}, ErrEmptyCorpus
	}

	logger.InfoContext(ctx, "search started",
		"query", req.Query,
		"top_k_retrieve", req.TopKRetrieve,
		"top_k_rerank", req.TopKRerank,
		"top_k_summarize", req.TopKSummarize,
	)
	start := time.Now()

	// Each retriever writes its own slot; fusion folds lexical first no
	// matter which finishes first.
	var lexicalHits, semanticHits []retrieval.RetrievalHit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := e.lexical.Search(gctx, req.Query, req.TopKRetrieve)
		if err != nil {
			return fmt.Errorf("lexical retrieval failed: %w", err)
		}
		lexicalHits = hits
		return nil
	})
	g.Go(func() error {
		hits, err := e.semantic.Search(gctx, req.Query, req.TopKRetrieve)
		if err != nil {
			return fmt.Errorf("semantic retrieval failed: %w", err)
		}
		semanticHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return SearchResponse{}, err
	}
	retrieved := time.Now()

	fused := retrieval.Fuse(lexicalHits, semanticHits, retrieval.FusionOptions{
		K:       e.opts.RRFK,
		TopK:    req.TopKRerank,
		Weights: e.opts.Weights,
	})
	fusedAt := time.Now()
	logger.DebugContext(ctx, "fusion completed",
		"lexical_hits", len(lexicalHits),
		"semantic_hits", len(semanticHits),
		"fused", len(fused),
	)

	reranked, err := e.reranker.Rerank(ctx, req.Query, fused, e.corpus, req.TopKRerank)
	if err != nil {
		logger.ErrorContext(ctx, "rerank failed", "error", err)
		return SearchResponse{}, err
	}
	rerankedAt := time.Now()

	results, err := e.assembler.Assemble(ctx, req.Query, reranked, e.corpus, evidence.AssembleOptions{
		TopN:            req.TopKSummarize,
		MaxResumeChars:  e.opts.MaxResumeChars,
		MaxContextChars: e.opts.MaxContextChars,
	})
	if err != nil {
		return SearchResponse{}, err
	}
	done := time.Now()

	logger.InfoContext(ctx, "search completed",
		"results", len(results),
		"candidates", len(reranked),
		"duration_ms", done.Sub(start).Milliseconds(),
	)

	resp := SearchResponse{Results: results}
	if req.Debug {
		resp.Debug = &DebugInfo{
			LexicalHits:  len(lexicalHits),
			SemanticHits: len(semanticHits),
			FusedCount:   len(fused),
			Candidates:   reranked[:min(len(reranked), debugCandidateLimit)],
			Timings: Timings{
				Retrieve:  retrieved.Sub(start).Milliseconds(),
				Fuse:      fusedAt.Sub(retrieved).Milliseconds(),
				Rerank:    rerankedAt.Sub(fusedAt).Milliseconds(),
				Summarize: done.Sub(rerankedAt).Milliseconds(),
				Total:     done.Sub(start).Milliseconds(),
			},
		}
	}
	return resp, nil
}
