// Package app wires the model backends, registry and services from configuration.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/Rrens/nl2sql/internal/config"
	"github.com/Rrens/nl2sql/internal/llm"
	"github.com/Rrens/nl2sql/internal/llm/anthropic"
	"github.com/Rrens/nl2sql/internal/llm/gemini"
	"github.com/Rrens/nl2sql/internal/llm/openai"
	"github.com/Rrens/nl2sql/internal/logging"
	"github.com/Rrens/nl2sql/internal/security"
	"github.com/Rrens/nl2sql/internal/service"
	"github.com/Rrens/nl2sql/internal/worker"
	"github.com/rs/zerolog"
)

// App holds the components shared by the server and the CLI
type App struct {
	Registry   *llm.Registry
	Models     *llm.Models
	Invoker    *llm.Invoker
	Pool       *worker.Pool
	SQLService *service.SQLService

	closers []io.Closer
}

// New builds the backends, creates every role model and the SQL service.
// A cache, when given, stores temperature-0 generations.
func New(ctx context.Context, cfg *config.Config, cache llm.Cache) (*App, error) {
	backends, closers, err := NewBackends(ctx, cfg.Providers, logging.Component("llm"))
	if err != nil {
		return nil, err
	}
	a := &App{closers: closers}

	a.Registry = llm.NewRegistry(backends, cfg.Generation.MaxOutputTokens, logging.Component("registry"))
	a.Models, err = llm.NewModels(a.Registry, llm.ModelIDs{
		FastSQL:    cfg.Models.FastSQLGeneration,
		FineSQL:    cfg.Models.FineSQLGeneration,
		Validation: cfg.Models.Validation,
		Correction: cfg.Models.SQLCorrection,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create models: %w", err)
	}

	var opts []llm.InvokerOption
	if cache != nil {
		opts = append(opts, llm.WithCache(cache))
	}
	a.Invoker = llm.NewInvoker(a.Registry, logging.Component("invoker"), opts...)
	a.Pool = worker.NewPool(cfg.Workers.MaxConcurrent, logging.Component("worker"))
	a.SQLService = service.NewSQLService(a.Invoker, a.Models, cfg.Prompt.Guidelines, a.Pool, logging.Component("sql"),
		service.WithQueryChecker(security.NewQueryGuard()))

	return a, nil
}

// NewBackends creates a backend for every provider that has credentials.
// The OpenAI-compatible endpoint serves text completion and chat; Anthropic serves
// code chat and falls back to the OpenAI-compatible endpoint when not configured.
func NewBackends(ctx context.Context, cfg config.ProvidersConfig, logger zerolog.Logger) (llm.Backends, []io.Closer, error) {
	var backends llm.Backends
	var closers []io.Closer

	if cfg.Gemini.APIKey != "" {
		b, err := gemini.NewBackend(ctx, cfg.Gemini)
		if err != nil {
			return llm.Backends{}, nil, fmt.Errorf("failed to create gemini backend: %w", err)
		}
		backends.Content = b
		closers = append(closers, b)
		logger.Info().Str("family", string(llm.FamilyContent)).Msg("Registered gemini backend")
	} else {
		logger.Warn().Msg("Gemini API key is empty, content-generation models are unavailable")
	}

	if cfg.OpenAI.BaseURL != "" {
		b, err := openai.NewBackend(cfg.OpenAI)
		if err != nil {
			return llm.Backends{}, nil, fmt.Errorf("failed to create openai backend: %w", err)
		}
		backends.Completion = b
		backends.Chat = b
		backends.CodeChat = b
		logger.Info().Str("base_url", cfg.OpenAI.BaseURL).Msg("Registered OpenAI-compatible backend")
	}

	if cfg.Anthropic.APIKey != "" {
		b, err := anthropic.NewBackend(cfg.Anthropic)
		if err != nil {
			return llm.Backends{}, nil, fmt.Errorf("failed to create anthropic backend: %w", err)
		}
		backends.CodeChat = b
		logger.Info().Str("family", string(llm.FamilyCodeChat)).Msg("Registered anthropic backend")
	}

	return backends, closers, nil
}

// Close releases backend clients
func (a *App) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}
