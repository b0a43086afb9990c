package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_search_service.go -package=mocks -mock_names=SearchService=MockSearchService resume-rag/internal/service SearchService

import (
	"context"
	"errors"
	"strings"

	"resume-rag/internal/contextutil"
	"resume-rag/internal/ingest"
	"resume-rag/internal/rag"
	"resume-rag/internal/retrieval"
)

const (
	maxTopKRetrieve  = 1000
	maxTopKSummarize = 20
)

// SearchService validates search requests and runs them against the engine.
type SearchService interface {
	// Search validates the request, applies defaults and limits, and ranks resumes.
	Search(ctx context.Context, req rag.SearchRequest) (rag.SearchResponse, error)
	// Stats describes the corpus being searched.
	Stats(ctx context.Context) ingest.CorpusStats
}

// searchService implements SearchService.
type searchService struct {
	engine   rag.Engine
	defaults rag.Options
}

// NewSearchService creates a new SearchService. Zero top-k values in a request
// are replaced with the ones in defaults.
func NewSearchService(engine rag.Engine, defaults rag.Options) SearchService {
	return &searchService{
		engine:   engine,
		defaults: defaults,
	}
}

// Search processes a search request.
func (s *searchService) Search(ctx context.Context, req rag.SearchRequest) (rag.SearchResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req, err := s.normalize(req)
	if err != nil {
		logger.WarnContext(ctx, "invalid search request", "error", err)
		return rag.SearchResponse{}, err
	}

	resp, err := s.engine.Search(ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, rag.ErrEmptyCorpus), errors.Is(err, retrieval.ErrNotReady):
		return rag.SearchResponse{}, WrapError(ErrNotReady, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, retrieval.ErrDimensionMismatch):
		return rag.SearchResponse{}, WrapError(err, "search failed")
	default:
		logger.ErrorContext(ctx, "search failed", "error", err)
		return rag.SearchResponse{}, wrapExternal(err, "search failed")
	}

	logger.InfoContext(ctx, "search request processed successfully", "query_length", len(req.Query), "results", len(resp.Results))
	return resp, nil
}

// normalize trims the query, rejects negative limits, fills zero limits from
// the defaults and clamps the rest.
func (s *searchService) normalize(req rag.SearchRequest) (rag.SearchRequest, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return req, &ValidationError{Field: "query", Message: "cannot be empty"}
	}

	limits := []struct {
		field string
		value *int
		def   int
	}{
		{"top_k_retrieve", &req.TopKRetrieve, s.defaults.TopKRetrieve},
		{"top_k_rerank", &req.TopKRerank, s.defaults.TopKRerank},
		{"top_k_summarize", &req.TopKSummarize, s.defaults.TopKSummarize},
	}
	for _, l := range limits {
		if *l.value < 0 {
			return req, &ValidationError{Field: l.field, Message: "must not be negative"}
		}
		if *l.value == 0 {
			*l.value = l.def
		}
	}

	req.TopKRetrieve = min(req.TopKRetrieve, maxTopKRetrieve)
	// Fusion can produce at most one record per hit from each retriever.
	req.TopKRerank = min(req.TopKRerank, req.TopKRetrieve*2)
	req.TopKSummarize = min(req.TopKSummarize, maxTopKSummarize)
	return req, nil
}

// Stats describes the corpus being searched.
func (s *searchService) Stats(ctx context.Context) ingest.CorpusStats {
	return ingest.Stats(s.engine.Corpus(), s.engine.EmbeddingModel())
}
