package rag_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	evidencemocks "resume-rag/internal/evidence/mocks"
	"resume-rag/internal/rag"
	"resume-rag/internal/rerank"
	rerankmocks "resume-rag/internal/rerank/mocks"
	"resume-rag/internal/retrieval"
	retrievalmocks "resume-rag/internal/retrieval/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testCorpus(t *testing.T) *retrieval.Corpus {
	t.Helper()
	c, err := retrieval.NewCorpus([]retrieval.Fragment{
		{ResumeID: "alice", ChunkID: 0, Text: "## Summary\ngo kubernetes engineer"},
		{ResumeID: "alice", ChunkID: 1, Text: "## Skills\npython scripting"},
		{ResumeID: "bob", ChunkID: 0, Text: "## Summary\ngo developer"},
	}, [][]float32{{1, 0}, {0, 1}, {1, 1}})
	require.NoError(t, err)
	return c
}

// scoreByText gives kubernetes fragments the best relevance.
func scoreByText(_ context.Context, pairs []rerank.Pair) ([]float64, error) {
	scores := make([]float64, len(pairs))
	for i, p := range pairs {
		switch {
		case strings.Contains(p.Text, "kubernetes"):
			scores[i] = 0.9
		case strings.Contains(p.Text, "developer"):
			scores[i] = 0.5
		default:
			scores[i] = 0.1
		}
	}
	return scores, nil
}

type fixture struct {
	embedder   *retrievalmocks.MockQueryEmbedder
	scorer     *rerankmocks.MockRelevanceScorer
	summarizer *evidencemocks.MockSummarizer
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	return fixture{
		embedder:   retrievalmocks.NewMockQueryEmbedder(ctrl),
		scorer:     rerankmocks.NewMockRelevanceScorer(ctrl),
		summarizer: evidencemocks.NewMockSummarizer(ctrl),
	}
}

func (f fixture) engine(t *testing.T, corpus *retrieval.Corpus) rag.Engine {
	t.Helper()
	e, err := rag.NewEngine(corpus, "test-model", f.embedder, f.scorer, f.summarizer, rag.DefaultOptions())
	require.NoError(t, err)
	return e
}

func TestEngine_Search(t *testing.T) {
	f := newFixture(t)
	f.embedder.EXPECT().EmbedText(gomock.Any(), "go engineer", "test-model").Return([]float32{1, 0}, nil)
	f.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).DoAndReturn(scoreByText)
	f.summarizer.EXPECT().Complete(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "Resume ID: alice") {
				return "alice summary", nil
			}
			return "bob summary", nil
		},
	).Times(2)

	e := f.engine(t, testCorpus(t))
	resp, err := e.Search(context.Background(), rag.SearchRequest{Query: "go engineer"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	assert.Equal(t, "alice", resp.Results[0].ResumeID)
	assert.Equal(t, "alice summary", resp.Results[0].Summary)
	assert.InDelta(t, 0.9, resp.Results[0].CEScore, 1e-9)
	assert.Equal(t, 2, resp.Results[0].MatchedSections)
	assert.Equal(t, "bob", resp.Results[1].ResumeID)
	assert.Greater(t, resp.Results[0].RRFScore, 0.0)
	assert.Nil(t, resp.Debug)
}

func TestEngine_Search_Debug(t *testing.T) {
	f := newFixture(t)
	f.embedder.EXPECT().EmbedText(gomock.Any(), gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil)
	f.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).DoAndReturn(scoreByText)
	f.summarizer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("summary", nil)

	e := f.engine(t, testCorpus(t))
	resp, err := e.Search(context.Background(), rag.SearchRequest{
		Query:         "go",
		TopKRetrieve:  2,
		TopKRerank:    2,
		TopKSummarize: 1,
		Debug:         true,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Debug)

	assert.Equal(t, 2, resp.Debug.LexicalHits)
	assert.Equal(t, 2, resp.Debug.SemanticHits)
	assert.Equal(t, 2, resp.Debug.FusedCount)
	require.Len(t, resp.Debug.Candidates, 2)
	assert.Equal(t, 1, resp.Debug.Candidates[0].RerankPosition)
	assert.GreaterOrEqual(t, resp.Debug.Candidates[0].CEScore, resp.Debug.Candidates[1].CEScore)
	assert.Len(t, resp.Results, 1)
}

func TestEngine_Search_Errors(t *testing.T) {
	t.Run("embedding fails", func(t *testing.T) {
		f := newFixture(t)
		upstream := errors.New("embedding service down")
		f.embedder.EXPECT().EmbedText(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, upstream)

		_, err := f.engine(t, testCorpus(t)).Search(context.Background(), rag.SearchRequest{Query: "go"})
		require.Error(t, err)
		assert.ErrorIs(t, err, upstream)
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		f := newFixture(t)
		f.embedder.EXPECT().EmbedText(gomock.Any(), gomock.Any(), gomock.Any()).Return([]float32{1, 0, 0}, nil)

		_, err := f.engine(t, testCorpus(t)).Search(context.Background(), rag.SearchRequest{Query: "go"})
		assert.ErrorIs(t, err, retrieval.ErrDimensionMismatch)
	})

	t.Run("rerank fails", func(t *testing.T) {
		f := newFixture(t)
		upstream := errors.New("reranker down")
		f.embedder.EXPECT().EmbedText(gomock.Any(), gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil)
		f.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).Return(nil, upstream)

		_, err := f.engine(t, testCorpus(t)).Search(context.Background(), rag.SearchRequest{Query: "go"})
		assert.ErrorIs(t, err, upstream)
	})

	t.Run("summarize fails", func(t *testing.T) {
		f := newFixture(t)
		upstream := errors.New("llm down")
		f.embedder.EXPECT().EmbedText(gomock.Any(), gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil)
		f.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).DoAndReturn(scoreByText)
		f.summarizer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("", upstream)

		_, err := f.engine(t, testCorpus(t)).Search(context.Background(), rag.SearchRequest{Query: "go"})
		assert.ErrorIs(t, err, upstream)
	})

	t.Run("empty corpus", func(t *testing.T) {
		f := newFixture(t)
		empty, err := retrieval.NewCorpus(nil, nil)
		require.NoError(t, err)

		_, err = f.engine(t, empty).Search(context.Background(), rag.SearchRequest{Query: "go"})
		assert.ErrorIs(t, err, rag.ErrEmptyCorpus)
	})
}

func TestNewEngine_MissingVectors(t *testing.T) {
	f := newFixture(t)
	c, err := retrieval.NewCorpus([]retrieval.Fragment{{ResumeID: "a", ChunkID: 0, Text: "go"}}, nil)
	require.NoError(t, err)

	_, err = rag.NewEngine(c, "m", f.embedder, f.scorer, f.summarizer, rag.DefaultOptions())
	assert.ErrorIs(t, err, retrieval.ErrDimensionMismatch)
}

func TestEngine_Accessors(t *testing.T) {
	f := newFixture(t)
	c := testCorpus(t)
	e := f.engine(t, c)

	assert.Same(t, c, e.Corpus())
	assert.Equal(t, "test-model", e.EmbeddingModel())
}
