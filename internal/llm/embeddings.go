package llm

import (
	"context"
	"fmt"
	"net/http"
)

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API.
type EmbeddingsClient struct {
	BaseURL string
	APIKey  string
	// Model is used when a call does not name one.
	Model string
	// ExpectedSize is the vector width to validate against. Zero disables the check.
	ExpectedSize int
	client       *http.Client
}

// NewEmbeddingsClient creates a new embeddings client.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize int) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		client:       http.DefaultClient,
	}
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// EmbedText embeds a single text with the named model.
func (c *EmbeddingsClient) EmbedText(ctx context.Context, text, model string) ([]float32, error) {
	vecs, err := c.EmbedTexts(ctx, []string{text}, model)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedTexts generates embeddings for the given texts, one vector per input in
// input order. An empty model uses the client default.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string, model string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}
	if model == "" {
		model = c.Model
	}

	var embeddingsResp EmbeddingsResponse
	payload := EmbeddingsRequest{Model: model, Input: texts}
	if err := doJSON(ctx, c.client, http.MethodPost, c.BaseURL+"/v1/embeddings", c.APIKey, payload, &embeddingsResp); err != nil {
		return nil, err
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddingsResp.Data))
	}

	// Servers may return data out of order; the index field is authoritative
	// when it is in range and unique.
	result := make([][]float32, len(texts))
	for i, data := range embeddingsResp.Data {
		if c.ExpectedSize > 0 && len(data.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.ExpectedSize)
		}

		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}

		slot := i
		if data.Index >= 0 && data.Index < len(result) && result[data.Index] == nil {
			slot = data.Index
		}
		if result[slot] != nil {
			return nil, fmt.Errorf("duplicate embedding index %d", data.Index)
		}
		result[slot] = vec
	}

	return result, nil
}
