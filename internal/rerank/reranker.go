package rerank

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_relevance_scorer.go -package=mocks resume-rag/internal/rerank RelevanceScorer

import (
	"context"
	"fmt"
	"sort"

	"resume-rag/internal/contextutil"
	"resume-rag/internal/retrieval"
)

// DefaultBatchSize is the number of pairs sent to the scorer per call.
const DefaultBatchSize = 32

// Pair is one (query, fragment text) input to a relevance model.
type Pair struct {
	Query string
	Text  string
}

// RelevanceScorer scores query/text pairs. Scores are returned in input order.
type RelevanceScorer interface {
	Score(ctx context.Context, pairs []Pair) ([]float64, error)
}

// RerankedRecord is a fused record with its pairwise relevance score.
type RerankedRecord struct {
	retrieval.FusedRecord
	CEScore        float64 `json:"ce_score"`
	RerankPosition int     `json:"rerank_position"`
}

// Reranker reorders fused candidates with a pairwise relevance model.
type Reranker struct {
	scorer    RelevanceScorer
	batchSize int
}

// NewReranker creates a reranker. A non-positive batchSize uses DefaultBatchSize.
func NewReranker(scorer RelevanceScorer, batchSize int) *Reranker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Reranker{scorer: scorer, batchSize: batchSize}
}

// Rerank resolves each fused record to its fragment text, scores the pairs and
// returns the topK records by descending score with positions 1..n.
// Records whose fragment is not in the corpus are dropped. A non-positive
// topK keeps every scored record.
func (r *Reranker) Rerank(ctx context.Context, query string, fused []retrieval.FusedRecord, corpus *retrieval.Corpus, topK int) ([]RerankedRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	kept := make([]RerankedRecord, 0, len(fused))
	pairs := make([]Pair, 0, len(fused))
	for _, rec := range fused {
		frag, ok := corpus.Lookup(rec.ResumeID, rec.ChunkID)
		if !ok {
			continue
		}
		kept = append(kept, RerankedRecord{FusedRecord: rec})
		pairs = append(pairs, Pair{Query: query, Text: frag.Text})
	}
	if dropped := len(fused) - len(kept); dropped > 0 {
		logger.DebugContext(ctx, "dropped fused records without a matching fragment", "dropped", dropped)
	}
	if len(kept) == 0 {
		return []RerankedRecord{}, nil
	}

	for start := 0; start < len(pairs); start += r.batchSize {
		end := min(start+r.batchSize, len(pairs))
		scores, err := r.scorer.Score(ctx, pairs[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to score pairs: %w", err)
		}
		if len(scores) != end-start {
			return nil, fmt.Errorf("scorer returned %d scores for %d pairs", len(scores), end-start)
		}
		for i, s := range scores {
			kept[start+i].CEScore = s
		}
	}

	sort.SliceStable(kept, func(a, b int) bool {
		return kept[a].CEScore > kept[b].CEScore
	})
	if topK > 0 && topK < len(kept) {
		kept = kept[:topK]
	}
	for i := range kept {
		kept[i].RerankPosition = i + 1
	}

	logger.InfoContext(ctx, "rerank completed", "candidates", len(fused), "scored", len(pairs), "returned", len(kept))
	return kept, nil
}
