package llm

import (
	"context"
	"fmt"
	"net/http"

	"resume-rag/internal/rerank"
)

// RerankClient scores query/document pairs with a cross-encoder served over
// the /v1/rerank API (llama.cpp, Jina and Cohere share this shape).
type RerankClient struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewRerankClient creates a new rerank client.
func NewRerankClient(baseURL, apiKey, model string) *RerankClient {
	return &RerankClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  http.DefaultClient,
	}
}

// RerankRequest represents the request payload for the rerank API.
type RerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

// RerankResult is one scored document.
type RerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// RerankResponse represents the response from the rerank API.
type RerankResponse struct {
	Results []RerankResult `json:"results"`
}

// Score implements rerank.RelevanceScorer. Consecutive pairs that share a
// query are sent in one request; scores come back in input order.
func (c *RerankClient) Score(ctx context.Context, pairs []rerank.Pair) ([]float64, error) {
	scores := make([]float64, len(pairs))
	for start := 0; start < len(pairs); {
		end := start + 1
		for end < len(pairs) && pairs[end].Query == pairs[start].Query {
			end++
		}

		docs := make([]string, end-start)
		for i, p := range pairs[start:end] {
			docs[i] = p.Text
		}
		group, err := c.rerank(ctx, pairs[start].Query, docs)
		if err != nil {
			return nil, err
		}
		copy(scores[start:end], group)
		start = end
	}
	return scores, nil
}

func (c *RerankClient) rerank(ctx context.Context, query string, docs []string) ([]float64, error) {
	payload := RerankRequest{
		Model:     c.Model,
		Query:     query,
		Documents: docs,
		TopN:      len(docs),
	}
	var rerankResp RerankResponse
	if err := doJSON(ctx, c.client, http.MethodPost, c.BaseURL+"/v1/rerank", c.APIKey, payload, &rerankResp); err != nil {
		return nil, err
	}

	if len(rerankResp.Results) != len(docs) {
		return nil, fmt.Errorf("expected %d rerank results, got %d", len(docs), len(rerankResp.Results))
	}

	scores := make([]float64, len(docs))
	seen := make([]bool, len(docs))
	for _, r := range rerankResp.Results {
		if r.Index < 0 || r.Index >= len(docs) || seen[r.Index] {
			return nil, fmt.Errorf("invalid rerank result index %d", r.Index)
		}
		seen[r.Index] = true
		scores[r.Index] = r.RelevanceScore
	}
	return scores, nil
}
