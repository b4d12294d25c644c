package anthropic

import (
	"context"
	"fmt"

	"github.com/Rrens/nl2sql/internal/config"
	"github.com/Rrens/nl2sql/internal/llm"
	goanthropic "github.com/liushuangls/go-anthropic/v2"
)

// Backend implements llm.ChatResponder for the Anthropic messages API
type Backend struct {
	client *goanthropic.Client
}

// NewBackend creates a new Anthropic backend
func NewBackend(cfg config.AnthropicConfig) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic backend is not configured (missing API key)")
	}

	var opts []goanthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, goanthropic.WithBaseURL(cfg.BaseURL))
	}

	return &Backend{client: goanthropic.NewClient(cfg.APIKey, opts...)}, nil
}

// SendMessage sends the prompt as a single user message
func (b *Backend) SendMessage(ctx context.Context, model, prompt string, cfg llm.GenerationConfig) (string, error) {
	temperature := cfg.Temperature
	resp, err := b.client.CreateMessages(ctx, goanthropic.MessagesRequest{
		Model:       goanthropic.Model(model),
		MaxTokens:   int(cfg.MaxOutputTokens),
		Temperature: &temperature,
		Messages: []goanthropic.Message{
			goanthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages request failed: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text, nil
		}
	}

	return "", llm.ErrEmptyResponse
}
