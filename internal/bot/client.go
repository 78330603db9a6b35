// Package bot implements the Brain capability behind AI participants: an
// LLM-backed decision maker with lenient response parsing and inert
// fallbacks, so a misbehaving model can never wedge the game loop.
package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL points at OpenRouter, which fronts all supported models
// behind an OpenAI-compatible API.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Completer produces one completion for one prompt. The single method
// keeps tests trivial to fake.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// OpenRouterClient is a Completer over an OpenAI-compatible chat endpoint.
type OpenRouterClient struct {
	client openai.Client
	model  string
}

// NewOpenRouterClient builds a client for the given model. An empty
// baseURL falls back to OpenRouter.
func NewOpenRouterClient(apiKey, model, baseURL string) (*OpenRouterClient, error) {
	if apiKey == "" {
		return nil, errors.New("api key not configured")
	}
	if model == "" {
		return nil, errors.New("model not configured")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenRouterClient{
		client: openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL)),
		model:  model,
	}, nil
}

// Complete sends the prompt as a single user message and returns the model
// text.
func (c *OpenRouterClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
