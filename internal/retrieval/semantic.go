package retrieval

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_query_embedder.go -package=mocks resume-rag/internal/retrieval QueryEmbedder

import (
	"context"
	"fmt"
	"math"
	"sync"

	"resume-rag/internal/contextutil"
)

// normEpsilon keeps normalization defined for all-zero rows.
const normEpsilon = 1e-12

// QueryEmbedder turns a query into a vector with a named embedding model.
type QueryEmbedder interface {
	EmbedText(ctx context.Context, text, model string) ([]float32, error)
}

// SemanticRetriever ranks fragments by cosine similarity between the query
// embedding and the corpus embedding matrix.
type SemanticRetriever struct {
	embedder QueryEmbedder

	mu     sync.RWMutex
	corpus *Corpus
	rows   [][]float64
	model  string
}

// NewSemanticRetriever creates a retriever that embeds queries with embedder.
func NewSemanticRetriever(embedder QueryEmbedder) *SemanticRetriever {
	return &SemanticRetriever{embedder: embedder}
}

// Fit validates the corpus matrix, stores its L2-normalized rows and records
// the model used to embed queries.
func (s *SemanticRetriever) Fit(corpus *Corpus, model string) error {
	if _, err := checkMatrix(corpus.Len(), corpus.Vectors()); err != nil {
		return err
	}
	if corpus.Len() > 0 && !corpus.HasVectors() {
		return fmt.Errorf("%w: corpus has no embedding matrix", ErrDimensionMismatch)
	}

	rows := make([][]float64, corpus.Len())
	for i, v := range corpus.Vectors() {
		rows[i] = normalize(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpus = corpus
	s.rows = rows
	s.model = model
	return nil
}

// Model returns the embedding model recorded at Fit time.
func (s *SemanticRetriever) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Ready reports whether Fit has been called.
func (s *SemanticRetriever) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus != nil
}

// Search embeds the query and returns the topK most similar fragments with ranks 1..n.
func (s *SemanticRetriever) Search(ctx context.Context, query string, topK int) ([]RetrievalHit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	s.mu.RLock()
	corpus, rows, model := s.corpus, s.rows, s.model
	s.mu.RUnlock()
	if corpus == nil {
		return nil, ErrNotReady
	}

	vec, err := s.embedder.EmbedText(ctx, query, model)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if corpus.Len() > 0 && len(vec) != corpus.Dim() {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, corpus has %d", ErrDimensionMismatch, len(vec), corpus.Dim())
	}
	q := normalize(vec)

	sims := make([]float64, len(rows))
	for i, row := range rows {
		sims[i] = dot(row, q)
	}

	order := rankIndices(sims)
	if topK < len(order) {
		order = order[:max(topK, 0)]
	}

	hits := make([]RetrievalHit, len(order))
	for rank, i := range order {
		f := corpus.Fragment(i)
		hits[rank] = RetrievalHit{
			Rank:     rank + 1,
			Score:    sims[i],
			ResumeID: f.ResumeID,
			ChunkID:  f.ChunkID,
			Preview:  preview(f.Text, PreviewLength),
		}
	}

	logger.DebugContext(ctx, "semantic search completed", "model", model, "top_k", topK, "hits", len(hits))
	return hits, nil
}

func normalize(v []float32) []float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum) + normEpsilon
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x) / norm
	}
	return out
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
