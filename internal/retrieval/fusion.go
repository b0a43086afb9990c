package retrieval

import "sort"

// DefaultRRFK is the rank offset used when FusionOptions.K is not positive.
const DefaultRRFK = 60

// Weights scales each source's reciprocal rank contribution.
type Weights struct {
	Lexical  float64
	Semantic float64
}

// DefaultWeights favours lexical matches two to one.
func DefaultWeights() Weights {
	return Weights{Lexical: 2.0, Semantic: 1.0}
}

// FusionOptions configures Fuse.
type FusionOptions struct {
	K       int
	TopK    int
	Weights Weights
}

// Fuse merges lexical and semantic hits with weighted reciprocal rank fusion.
//
// Each hit adds weight/(K+rank) to the record for its fragment; hits with a
// rank below 1 add nothing. Lexical hits are folded in before semantic hits,
// and the final stable sort keeps that first-seen order among equal scores.
// The first rank and score seen from a source are the ones retained.
func Fuse(lexical, semantic []RetrievalHit, opts FusionOptions) []FusedRecord {
	k := opts.K
	if k <= 0 {
		k = DefaultRRFK
	}

	pool := make([]*FusedRecord, 0, len(lexical)+len(semantic))
	index := make(map[FusionKey]int, len(lexical)+len(semantic))

	fold := func(hits []RetrievalHit, weight float64, lexicalSource bool) {
		for _, h := range hits {
			key := h.Key()
			pos, ok := index[key]
			if !ok {
				pos = len(pool)
				index[key] = pos
				pool = append(pool, &FusedRecord{
					ResumeID: h.ResumeID,
					ChunkID:  h.ChunkID,
					Preview:  h.Preview,
				})
			}
			rec := pool[pos]

			if h.Rank >= 1 {
				rec.RRFScore += weight / float64(k+h.Rank)
			}

			rank, score := h.Rank, h.Score
			if lexicalSource {
				if rec.LexicalRank == nil {
					rec.LexicalRank = &rank
					rec.LexicalScore = &score
				}
			} else if rec.SemanticRank == nil {
				rec.SemanticRank = &rank
				rec.SemanticScore = &score
			}
		}
	}

	fold(lexical, opts.Weights.Lexical, true)
	fold(semantic, opts.Weights.Semantic, false)

	sort.SliceStable(pool, func(a, b int) bool {
		return pool[a].RRFScore > pool[b].RRFScore
	})

	n := min(len(pool), max(opts.TopK, 0))
	out := make([]FusedRecord, n)
	for i := 0; i < n; i++ {
		out[i] = *pool[i]
		out[i].Rank = i + 1
	}
	return out
}
