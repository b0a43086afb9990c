package retrieval

import (
	"context"
	"math"
	"sort"
	"sync"

	"resume-rag/internal/contextutil"
)

// Okapi BM25 parameters.
const (
	DefaultK1      = 1.5
	DefaultB       = 0.75
	DefaultEpsilon = 0.25
)

// LexicalRetriever ranks fragments by Okapi BM25 over Tokenize output.
// Negative IDF values are replaced by Epsilon times the mean IDF.
type LexicalRetriever struct {
	K1      float64
	B       float64
	Epsilon float64

	mu       sync.RWMutex
	corpus   *Corpus
	termFreq []map[string]int
	docLen   []float64
	avgDocLn float64
	idf      map[string]float64
}

// NewLexicalRetriever returns a retriever with the standard BM25 parameters.
func NewLexicalRetriever() *LexicalRetriever {
	return &LexicalRetriever{K1: DefaultK1, B: DefaultB, Epsilon: DefaultEpsilon}
}

// Fit tokenizes every fragment and builds the BM25 statistics.
func (r *LexicalRetriever) Fit(corpus *Corpus) {
	n := corpus.Len()
	termFreq := make([]map[string]int, n)
	docLen := make([]float64, n)
	docFreq := make(map[string]int)

	var total float64
	for i, f := range corpus.Fragments() {
		tokens := Tokenize(f.Text)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for tok := range tf {
			docFreq[tok]++
		}
		termFreq[i] = tf
		docLen[i] = float64(len(tokens))
		total += float64(len(tokens))
	}

	var avg float64
	if n > 0 {
		avg = total / float64(n)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.corpus = corpus
	r.termFreq = termFreq
	r.docLen = docLen
	r.avgDocLn = avg
	r.idf = r.computeIDF(n, docFreq)
}

func (r *LexicalRetriever) computeIDF(n int, docFreq map[string]int) map[string]float64 {
	idf := make(map[string]float64, len(docFreq))
	if len(docFreq) == 0 {
		return idf
	}

	var sum float64
	var negative []string
	for term, freq := range docFreq {
		v := math.Log(float64(n)-float64(freq)+0.5) - math.Log(float64(freq)+0.5)
		idf[term] = v
		sum += v
		if v < 0 {
			negative = append(negative, term)
		}
	}
	floor := r.Epsilon * (sum / float64(len(idf)))
	for _, term := range negative {
		idf[term] = floor
	}
	return idf
}

// Ready reports whether Fit has been called.
func (r *LexicalRetriever) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.corpus != nil
}

// Scores returns the BM25 score of every fragment for the query, in corpus order.
func (r *LexicalRetriever) Scores(query string) ([]float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.corpus == nil {
		return nil, ErrNotReady
	}
	return r.scoresLocked(Tokenize(query)), nil
}

func (r *LexicalRetriever) scoresLocked(queryTokens []string) []float64 {
	scores := make([]float64, len(r.termFreq))
	if r.avgDocLn == 0 {
		return scores
	}
	// Repeated query tokens count once per occurrence.
	for _, q := range queryTokens {
		idf := r.idf[q]
		if idf == 0 {
			continue
		}
		for i, tf := range r.termFreq {
			freq := float64(tf[q])
			if freq == 0 {
				continue
			}
			norm := r.K1 * (1 - r.B + r.B*r.docLen[i]/r.avgDocLn)
			scores[i] += idf * (freq * (r.K1 + 1)) / (freq + norm)
		}
	}
	return scores
}

// Search returns the topK fragments by descending BM25 score with ranks 1..n.
// Equal scores keep corpus order.
func (r *LexicalRetriever) Search(ctx context.Context, query string, topK int) ([]RetrievalHit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.corpus == nil {
		return nil, ErrNotReady
	}

	scores := r.scoresLocked(Tokenize(query))
	order := rankIndices(scores)
	if topK < len(order) {
		order = order[:max(topK, 0)]
	}

	hits := make([]RetrievalHit, len(order))
	for rank, i := range order {
		f := r.corpus.Fragment(i)
		hits[rank] = RetrievalHit{
			Rank:     rank + 1,
			Score:    scores[i],
			ResumeID: f.ResumeID,
			ChunkID:  f.ChunkID,
			Preview:  preview(f.Text, PreviewLength),
		}
	}

	logger.DebugContext(ctx, "lexical search completed", "top_k", topK, "hits", len(hits))
	return hits, nil
}

// rankIndices returns corpus positions ordered by descending score.
// Ties keep ascending position.
func rankIndices(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}
