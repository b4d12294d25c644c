package gemini

import (
	"context"
	"fmt"

	"github.com/Rrens/nl2sql/internal/config"
	"github.com/Rrens/nl2sql/internal/llm"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Backend implements llm.ContentGenerator for Gemini models
type Backend struct {
	client *genai.Client
}

// NewBackend creates a Gemini backend sharing one client for every model
func NewBackend(ctx context.Context, cfg config.GeminiConfig) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini backend is not configured (missing API key)")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Backend{client: client}, nil
}

// Close releases the underlying client
func (b *Backend) Close() error {
	return b.client.Close()
}

// GenerateContent runs a single-turn generation and returns the text parts of each candidate
func (b *Backend) GenerateContent(ctx context.Context, model, prompt string, cfg llm.GenerationConfig) (*llm.ContentResponse, error) {
	generativeModel := b.client.GenerativeModel(model)
	generativeModel.SetTemperature(cfg.Temperature)
	generativeModel.SetMaxOutputTokens(cfg.MaxOutputTokens)

	resp, err := generativeModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	return toContentResponse(resp), nil
}

// toContentResponse keeps the text parts of every candidate; other part kinds are dropped
func toContentResponse(resp *genai.GenerateContentResponse) *llm.ContentResponse {
	out := &llm.ContentResponse{}
	if resp == nil {
		return out
	}
	for _, candidate := range resp.Candidates {
		var c llm.Candidate
		if candidate != nil && candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					c.Parts = append(c.Parts, string(text))
				}
			}
		}
		out.Candidates = append(out.Candidates, c)
	}
	return out
}
