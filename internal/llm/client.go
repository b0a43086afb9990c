package llm

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
)

// Summary generation parameters.
const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 400
)

// Client is a client for an OpenAI-compatible chat completions API.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewClient creates a new LLM client.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  http.DefaultClient,
	}
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams overrides per-request generation settings. Zero values leave
// the client model and the server defaults in place.
type ChatParams struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// ChatRequest represents the request payload for chat completions.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatChoice represents a single choice in the chat response.
type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatResponse represents the response from the chat completions API.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []ChatChoice `json:"choices"`
}

// Complete sends prompt as a single user message with the summary parameters.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.ChatWithMessages(ctx, []Message{{Role: "user", Content: prompt}}, ChatParams{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	})
}

// ChatWithMessages sends a chat completion request and returns the first choice.
func (c *Client) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	payload := ChatRequest{
		Model:     cmp.Or(params.Model, c.Model),
		Messages:  messages,
		MaxTokens: params.MaxTokens,
	}
	if params.Temperature != 0 {
		temp := params.Temperature
		payload.Temperature = &temp
	}

	var chatResp ChatResponse
	if err := doJSON(ctx, c.client, http.MethodPost, c.BaseURL+"/v1/chat/completions", c.APIKey, payload, &chatResp); err != nil {
		return "", err
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return chatResp.Choices[0].Message.Content, nil
}
