package openai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Rrens/nl2sql/internal/config"
	"github.com/Rrens/nl2sql/internal/llm"
	goopenai "github.com/sashabaranov/go-openai"
)

// Backend implements llm.TextPredictor and llm.ChatResponder against an OpenAI-compatible endpoint
type Backend struct {
	client *goopenai.Client
}

// NewBackend creates a new OpenAI-compatible backend
func NewBackend(cfg config.OpenAIConfig) (*Backend, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openai backend is not configured (missing base URL)")
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &Backend{client: goopenai.NewClientWithConfig(clientConfig)}, nil
}

// temperature keeps an explicit 0 in the request; go-openai omits a zero value
// and the endpoint would then apply its own default.
func temperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// Predict runs a text completion
func (b *Backend) Predict(ctx context.Context, model, prompt string, cfg llm.GenerationConfig) (*llm.Prediction, error) {
	resp, err := b.client.CreateCompletion(ctx, goopenai.CompletionRequest{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   int(cfg.MaxOutputTokens),
		Temperature: temperature(cfg.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.Prediction{Text: resp.Choices[0].Text}, nil
}

// SendMessage sends the prompt as a single user message
func (b *Backend) SendMessage(ctx context.Context, model, prompt string, cfg llm.GenerationConfig) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   int(cfg.MaxOutputTokens),
		Temperature: temperature(cfg.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
