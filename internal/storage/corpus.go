package storage

import (
	"context"
	"errors"
	"fmt"

	"resume-rag/internal/retrieval"
)

// LoadCorpus builds the in-memory corpus from stored fragments in corpus order.
// It returns the corpus and the embedding model recorded at ingest time.
func LoadCorpus(ctx context.Context, fragments FragmentStore, meta *MetaRepo) (*retrieval.Corpus, string, error) {
	records, err := fragments.ListAll(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list fragments: %w", err)
	}

	var model string
	m, err := meta.Get(ctx)
	switch {
	case err == nil:
		model = m.EmbeddingModel
	case errors.Is(err, ErrNotFound):
	default:
		return nil, "", fmt.Errorf("failed to read corpus meta: %w", err)
	}

	frags := make([]retrieval.Fragment, len(records))
	var vectors [][]float32
	for i, rec := range records {
		frags[i] = retrieval.Fragment{ResumeID: rec.ResumeID, ChunkID: rec.ChunkID, Text: rec.Text}
		if rec.Vector != nil {
			if vectors == nil {
				vectors = make([][]float32, len(records))
			}
			vectors[i] = rec.Vector
		}
	}

	corpus, err := retrieval.NewCorpus(frags, vectors)
	if err != nil {
		return nil, "", fmt.Errorf("stored corpus is inconsistent: %w", err)
	}
	return corpus, model, nil
}
