package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/Rrens/nl2sql/internal/llm"
	"github.com/Rrens/nl2sql/internal/observability"
	"github.com/Rrens/nl2sql/internal/worker"
	"github.com/rs/zerolog"
)

// Generator sends a prompt to a model and returns sanitized text
type Generator interface {
	Generate(ctx context.Context, model *llm.Model, prompt string, temperature float32) (string, error)
}

// QueryChecker flags generated SQL that must not be run as is
type QueryChecker interface {
	Validate(sql string) error
}

// SQLService turns questions into SQL and checks generated SQL by reflection
type SQLService struct {
	generator  Generator
	models     *llm.Models
	guidelines string
	pool       *worker.Pool
	checker    QueryChecker
	logger     zerolog.Logger
}

// SQLServiceOption configures a SQLService
type SQLServiceOption func(*SQLService)

// WithQueryChecker reports checker violations on generated queries
func WithQueryChecker(checker QueryChecker) SQLServiceOption {
	return func(s *SQLService) {
		s.checker = checker
	}
}

// NewSQLService creates a new SQL service
func NewSQLService(generator Generator, models *llm.Models, guidelines string, pool *worker.Pool, logger zerolog.Logger, opts ...SQLServiceOption) *SQLService {
	s := &SQLService{
		generator:  generator,
		models:     models,
		guidelines: guidelines,
		pool:       pool,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectGenerationModel picks the fast model when similar questions exist, the fine model otherwise
func (s *SQLService) SelectGenerationModel(similar []domain.SimilarQuestion) (domain.ModelTier, *llm.Model) {
	if len(similar) > 0 {
		return domain.TierFast, s.models.FastSQL
	}
	return domain.TierFine, s.models.FineSQL
}

// GenerateSQL generates a single-line SQL query answering the question
func (s *SQLService) GenerateSQL(ctx context.Context, question, tableSchema string, similar []domain.SimilarQuestion) (*domain.GenerationResult, error) {
	tier, model := s.SelectGenerationModel(similar)
	if tier == domain.TierFast {
		s.logger.Info().Str("model", model.ID).Msg("Similar question found, using fast model to generate SQL query")
	} else {
		s.logger.Info().Str("model", model.ID).Msg("No similar question found, using fine model to generate SQL query")
	}
	observability.ObserveModelSelection(string(tier))

	prompt := llm.BuildGenerationPrompt(question, tableSchema, similar, s.guidelines)
	s.logger.Debug().Str("prompt", prompt).Msg("SQL generation prompt")

	raw, err := s.generator.Generate(ctx, model, prompt, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to generate SQL: %w", err)
	}
	s.logger.Info().Str("sql", raw).Msg("SQL query generated")

	result := &domain.GenerationResult{
		SQL:   strings.TrimSpace(llm.Flatten(raw)),
		Tier:  tier,
		Model: model.ID,
	}
	if s.checker != nil {
		if err := s.checker.Validate(result.SQL); err != nil {
			s.logger.Warn().Err(err).Str("sql", result.SQL).Msg("Generated SQL is not a read-only query")
			result.Violation = err.Error()
		}
	}
	return result, nil
}

// ExplainSQL infers the question a query answers and compares it with the original question.
// Malformed model replies yield a non-matching explanation instead of an error.
func (s *SQLService) ExplainSQL(ctx context.Context, question, generatedSQL, tableSchema string, similar []domain.SimilarQuestion) (domain.SQLExplanation, error) {
	s.logger.Info().Msg("Starting SQL explanation")

	prompt := llm.BuildReflectionPrompt(question, generatedSQL, tableSchema, similar)
	s.logger.Debug().Str("prompt", prompt).Msg("Validation question generation prompt")

	raw, err := s.generator.Generate(ctx, s.models.Validation, prompt, 0)
	if err != nil {
		return domain.SQLExplanation{}, fmt.Errorf("failed to generate SQL explanation: %w", err)
	}
	s.logger.Info().Str("reply", raw).Msg("Validation completed")

	explanation, err := llm.DecodeReflection(raw)
	switch {
	case errors.Is(err, llm.ErrMalformedReply):
		s.logger.Error().Err(err).Msg("Validation reply does not match the expected JSON object")
		observability.ObserveReflection("malformed")
		return llm.DegradedExplanation(), nil
	case err != nil:
		s.logger.Error().Err(err).Msg("Invalid validation reply schema")
		return domain.SQLExplanation{}, err
	}

	if explanation.IsMatching {
		observability.ObserveReflection("matching")
	} else {
		observability.ObserveReflection("mismatch")
	}

	s.logger.Info().
		Str("reversed_question", explanation.ReversedQuestion).
		Bool("is_matching", explanation.IsMatching).
		Str("mismatch_details", explanation.MismatchDetails).
		Msg("Validation reply analysed")

	return explanation, nil
}

// GenerateBatch runs independent generations on the worker pool, preserving request order
func (s *SQLService) GenerateBatch(ctx context.Context, reqs []domain.GenerateRequest) []domain.BatchGenerateItem {
	tasks := make([]worker.Task[*domain.GenerationResult], len(reqs))
	for i, req := range reqs {
		req := req
		tasks[i] = worker.Task[*domain.GenerationResult]{
			ID: i,
			Execute: func(ctx context.Context) (*domain.GenerationResult, error) {
				return s.GenerateSQL(ctx, req.Question, req.TableSchema, req.SimilarQuestions)
			},
		}
	}

	results := worker.Run(ctx, s.pool, tasks)

	items := make([]domain.BatchGenerateItem, len(results))
	for i, r := range results {
		items[i] = domain.BatchGenerateItem{Index: r.ID, Result: r.Value}
		if r.Err != nil {
			items[i].Error = r.Err.Error()
		}
	}
	return items
}

// NewCorrectionSession opens a correction dialogue for one failing query using the correction model
func (s *SQLService) NewCorrectionSession(tableSchema, question string, similar []domain.SimilarQuestion, opts ...SessionOption) *CorrectionSession {
	return newCorrectionSession(s.generator, s.models.Correction, s.guidelines, tableSchema, question, similar, s.logger, opts...)
}
