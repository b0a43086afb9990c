package retrieval

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vec       []float32
	err       error
	gotModel  string
	gotQuery  string
	callCount int
}

func (s *stubEmbedder) EmbedText(_ context.Context, text, model string) ([]float32, error) {
	s.callCount++
	s.gotQuery = text
	s.gotModel = model
	return s.vec, s.err
}

func semanticCorpus(t *testing.T) *Corpus {
	t.Helper()
	c, err := NewCorpus(
		[]Fragment{
			{ResumeID: "a", ChunkID: 0, Text: "go"},
			{ResumeID: "b", ChunkID: 0, Text: "rust"},
			{ResumeID: "c", ChunkID: 0, Text: "go and rust"},
		},
		[][]float32{{2, 0}, {0, 3}, {1, 1}},
	)
	require.NoError(t, err)
	return c
}

func TestSemanticRetriever_NotReady(t *testing.T) {
	s := NewSemanticRetriever(&stubEmbedder{})
	_, err := s.Search(context.Background(), "go", 3)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestSemanticRetriever_FitRequiresMatrix(t *testing.T) {
	c, err := NewCorpus([]Fragment{{ResumeID: "a", Text: "x"}}, nil)
	require.NoError(t, err)

	s := NewSemanticRetriever(&stubEmbedder{})
	assert.ErrorIs(t, s.Fit(c, "m"), ErrDimensionMismatch)
	assert.False(t, s.Ready())
}

func TestSemanticRetriever_Search(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{5, 0}}
	s := NewSemanticRetriever(emb)
	require.NoError(t, s.Fit(semanticCorpus(t), "text-embedding-3-small"))

	hits, err := s.Search(context.Background(), "golang", 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "text-embedding-3-small", emb.gotModel)
	assert.Equal(t, "golang", emb.gotQuery)

	assert.Equal(t, "a", hits[0].ResumeID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "c", hits[1].ResumeID)
	assert.InDelta(t, 1/math.Sqrt2, hits[1].Score, 1e-6)
	assert.Equal(t, "b", hits[2].ResumeID)
	assert.InDelta(t, 0.0, hits[2].Score, 1e-9)

	for i, h := range hits {
		assert.Equal(t, i+1, h.Rank)
	}
}

func TestSemanticRetriever_TopK(t *testing.T) {
	s := NewSemanticRetriever(&stubEmbedder{vec: []float32{0, 1}})
	require.NoError(t, s.Fit(semanticCorpus(t), "m"))

	hits, err := s.Search(context.Background(), "q", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].ResumeID)
}

func TestSemanticRetriever_QueryDimensionMismatch(t *testing.T) {
	s := NewSemanticRetriever(&stubEmbedder{vec: []float32{1, 0, 0}})
	require.NoError(t, s.Fit(semanticCorpus(t), "m"))

	_, err := s.Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSemanticRetriever_EmbedderError(t *testing.T) {
	boom := errors.New("embedding service down")
	s := NewSemanticRetriever(&stubEmbedder{err: boom})
	require.NoError(t, s.Fit(semanticCorpus(t), "m"))

	_, err := s.Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, boom)
}

func TestSemanticRetriever_ZeroRowStaysFinite(t *testing.T) {
	c, err := NewCorpus(
		[]Fragment{{ResumeID: "a", Text: "x"}, {ResumeID: "b", Text: "y"}},
		[][]float32{{0, 0}, {1, 0}},
	)
	require.NoError(t, err)

	s := NewSemanticRetriever(&stubEmbedder{vec: []float32{1, 0}})
	require.NoError(t, s.Fit(c, "m"))

	hits, err := s.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "b", hits[0].ResumeID)
	assert.False(t, math.IsNaN(hits[1].Score))
	assert.Zero(t, hits[1].Score)
}
