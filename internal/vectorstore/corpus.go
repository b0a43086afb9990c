package vectorstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"resume-rag/internal/retrieval"
)

// FragmentPoint builds the point mirrored for one stored fragment.
func FragmentPoint(f retrieval.Fragment, seq int64, vec []float32, model string) Point {
	return Point{
		ID:  PointID(f.ResumeID, f.ChunkID),
		Vec: vec,
		Meta: map[string]any{
			PayloadResumeID:       f.ResumeID,
			PayloadChunkID:        f.ChunkID,
			PayloadSeq:            seq,
			PayloadText:           f.Text,
			PayloadEmbeddingModel: model,
		},
	}
}

type scrolledFragment struct {
	seq      int64
	fragment retrieval.Fragment
	vec      []float32
}

// LoadCorpus rebuilds the corpus from a collection, ordered by the seq payload.
// It returns the corpus and the embedding model recorded on the points.
func LoadCorpus(ctx context.Context, store VectorStore, collection string) (*retrieval.Corpus, string, error) {
	points, err := store.ScrollAll(ctx, collection)
	if err != nil {
		return nil, "", err
	}

	var model string
	items := make([]scrolledFragment, 0, len(points))
	for _, p := range points {
		resumeID, ok := p.Meta[PayloadResumeID].(string)
		if !ok {
			return nil, "", fmt.Errorf("point %s: missing %s payload", p.ID, PayloadResumeID)
		}
		chunkID, ok := asInt64(p.Meta[PayloadChunkID])
		if !ok {
			return nil, "", fmt.Errorf("point %s: missing %s payload", p.ID, PayloadChunkID)
		}
		seq, ok := asInt64(p.Meta[PayloadSeq])
		if !ok {
			return nil, "", fmt.Errorf("point %s: missing %s payload", p.ID, PayloadSeq)
		}
		text, _ := p.Meta[PayloadText].(string)
		if m, _ := p.Meta[PayloadEmbeddingModel].(string); m != "" && model == "" {
			model = m
		}

		items = append(items, scrolledFragment{
			seq:      seq,
			fragment: retrieval.Fragment{ResumeID: resumeID, ChunkID: int(chunkID), Text: text},
			vec:      p.Vec,
		})
	}

	slices.SortStableFunc(items, func(a, b scrolledFragment) int {
		return cmp.Compare(a.seq, b.seq)
	})

	fragments := make([]retrieval.Fragment, len(items))
	vectors := make([][]float32, len(items))
	for i, it := range items {
		fragments[i] = it.fragment
		vectors[i] = it.vec
	}

	corpus, err := retrieval.NewCorpus(fragments, vectors)
	if err != nil {
		return nil, "", fmt.Errorf("collection %s is inconsistent: %w", collection, err)
	}
	return corpus, model, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
