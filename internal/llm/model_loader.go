package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ModelLoader asks a llama.cpp router to load models before the first query,
// so the first search does not pay the model load latency.
type ModelLoader struct {
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	maxAttempts  int
}

// NewModelLoader creates a new model loader for the server at baseURL.
func NewModelLoader(baseURL string) *ModelLoader {
	return &ModelLoader{
		baseURL:      baseURL,
		client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: time.Second,
		maxAttempts:  30,
	}
}

// LoadModelRequest represents the request payload for loading a model.
type LoadModelRequest struct {
	Model string `json:"model"`
}

// LoadModelResponse represents the response from the load model endpoint.
type LoadModelResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ModelStatus represents the status of a model from the /models endpoint.
type ModelStatus struct {
	ID      string `json:"id"`
	InCache bool   `json:"in_cache"`
	Status  struct {
		Value    string `json:"value"`
		ExitCode *int   `json:"exit_code,omitempty"`
		Failed   *bool  `json:"failed,omitempty"`
	} `json:"status"`
}

// ModelsResponse represents the response from the /models endpoint.
type ModelsResponse struct {
	Data []ModelStatus `json:"data"`
}

// status returns the server's view of modelName, or nil when it is not listed.
func (ml *ModelLoader) status(ctx context.Context, modelName string) (*ModelStatus, error) {
	var modelsResp ModelsResponse
	if err := doJSON(ctx, ml.client, http.MethodGet, ml.baseURL+"/models", "", nil, &modelsResp); err != nil {
		return nil, fmt.Errorf("failed to check model status: %w", err)
	}

	for i := range modelsResp.Data {
		if modelsResp.Data[i].ID == modelName {
			return &modelsResp.Data[i], nil
		}
	}
	return nil, nil
}

// IsModelLoaded checks if a model is already loaded (in cache).
func (ml *ModelLoader) IsModelLoaded(ctx context.Context, modelName string) (bool, error) {
	st, err := ml.status(ctx, modelName)
	if err != nil {
		return false, err
	}
	return st != nil && st.InCache, nil
}

// EnsureLoaded loads modelName unless it is already in cache, then polls
// until the server reports it loaded, failed, or the attempts run out.
func (ml *ModelLoader) EnsureLoaded(ctx context.Context, modelName string) error {
	if loaded, err := ml.IsModelLoaded(ctx, modelName); err == nil && loaded {
		return nil
	}

	var loadResp LoadModelResponse
	if err := doJSON(ctx, ml.client, http.MethodPost, ml.baseURL+"/models/load", "", LoadModelRequest{Model: modelName}, &loadResp); err != nil {
		return err
	}
	if !loadResp.Success {
		return fmt.Errorf("model load failed: %s", loadResp.Error)
	}

	// /models/load returns before loading finishes.
	for i := 0; i < ml.maxAttempts; i++ {
		st, err := ml.status(ctx, modelName)
		if err == nil && st != nil {
			if st.InCache {
				return nil
			}
			if st.Status.Failed != nil && *st.Status.Failed {
				exitCode := 0
				if st.Status.ExitCode != nil {
					exitCode = *st.Status.ExitCode
				}
				return fmt.Errorf("model load failed with exit code %d", exitCode)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ml.pollInterval):
		}
	}

	return fmt.Errorf("model %s did not load within timeout period", modelName)
}
