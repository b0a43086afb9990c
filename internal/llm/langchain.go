package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangchainCompleter generates summaries through langchaingo's OpenAI model.
type LangchainCompleter struct {
	model llms.Model
}

// NewLangchainCompleter builds an OpenAI-compatible langchaingo client.
// baseURL must include the API version path, e.g. https://api.openai.com/v1.
func NewLangchainCompleter(baseURL, apiKey, model string) (*LangchainCompleter, error) {
	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create langchaingo client: %w", err)
	}
	return &LangchainCompleter{model: client}, nil
}

// Complete sends prompt as a single human message with the summary parameters.
func (c *LangchainCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	resp, err := c.model.GenerateContent(ctx, content,
		llms.WithTemperature(DefaultTemperature),
		llms.WithMaxTokens(DefaultMaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Content, nil
}
