package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/nl2sql/internal/observability"
	"github.com/rs/zerolog"
)

// Cache stores deterministic generations
type Cache interface {
	Get(ctx context.Context, modelID, prompt string) (string, bool)
	Set(ctx context.Context, modelID, prompt, text string) error
}

// Invoker dispatches prompts to the backend matching a model's family
type Invoker struct {
	backends Backends
	cache    Cache
	logger   zerolog.Logger
}

// InvokerOption configures an Invoker
type InvokerOption func(*Invoker)

// WithCache caches temperature-0 generations
func WithCache(cache Cache) InvokerOption {
	return func(i *Invoker) {
		i.cache = cache
	}
}

// NewInvoker creates a new generation invoker over the registry's backends
func NewInvoker(registry *Registry, logger zerolog.Logger, opts ...InvokerOption) *Invoker {
	i := &Invoker{
		backends: registry.Backends(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Generate sends the prompt to the model and returns its sanitized text.
// Backend failures are returned as is; there is no retry at this layer.
func (i *Invoker) Generate(ctx context.Context, model *Model, prompt string, temperature float32) (string, error) {
	cacheable := i.cache != nil && temperature == 0
	if cacheable {
		if text, ok := i.cache.Get(ctx, model.ID, prompt); ok {
			i.logger.Debug().Str("model", model.ID).Msg("Generation served from cache")
			observability.ObserveGeneration(string(model.Family), observability.OutcomeCached, 0)
			return text, nil
		}
	}

	cfg := GenerationConfig{
		MaxOutputTokens: model.MaxOutputTokens,
		Temperature:     temperature,
	}

	start := time.Now()
	raw, err := i.invoke(ctx, model, prompt, cfg)
	elapsed := time.Since(start)
	if err != nil {
		observability.ObserveGeneration(string(model.Family), observability.OutcomeError, elapsed)
		return "", fmt.Errorf("failed to generate with model %s: %w", model.ID, err)
	}
	observability.ObserveGeneration(string(model.Family), observability.OutcomeOK, elapsed)

	text := Clean(raw)

	if cacheable {
		if err := i.cache.Set(ctx, model.ID, prompt, text); err != nil {
			i.logger.Warn().Err(err).Str("model", model.ID).Msg("failed to cache generation")
		}
	}

	return text, nil
}

func (i *Invoker) invoke(ctx context.Context, model *Model, prompt string, cfg GenerationConfig) (string, error) {
	switch model.Family {
	case FamilyContent:
		if i.backends.Content == nil {
			return "", ErrBackendNotConfigured
		}
		resp, err := i.backends.Content.GenerateContent(ctx, model.Name, prompt, cfg)
		if err != nil {
			return "", err
		}
		if resp == nil || len(resp.Candidates) == 0 || len(resp.Candidates[0].Parts) == 0 {
			return "", ErrEmptyResponse
		}
		return resp.Candidates[0].Parts[0], nil

	case FamilyCompletion:
		if i.backends.Completion == nil {
			return "", ErrBackendNotConfigured
		}
		pred, err := i.backends.Completion.Predict(ctx, model.Name, prompt, cfg)
		if err != nil {
			return "", err
		}
		if pred == nil {
			return "", ErrEmptyResponse
		}
		return pred.Text, nil

	case FamilyChat:
		if i.backends.Chat == nil {
			return "", ErrBackendNotConfigured
		}
		return i.backends.Chat.SendMessage(ctx, model.Name, prompt, cfg)

	case FamilyCodeChat:
		if i.backends.CodeChat == nil {
			return "", ErrBackendNotConfigured
		}
		return i.backends.CodeChat.SendMessage(ctx, model.Name, prompt, cfg)
	}

	return "", fmt.Errorf("%w: family %q", ErrUnsupportedModel, model.Family)
}
