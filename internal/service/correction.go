package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/Rrens/nl2sql/internal/llm"
	"github.com/Rrens/nl2sql/internal/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrAttemptsExhausted is returned when a session has used all of its attempts
var ErrAttemptsExhausted = errors.New("correction attempts exhausted")

const (
	bigQueryErrorLabel   = "- Syntax error returned from BigQuery: "
	validationErrorLabel = "- Semantics errors returned from SQL Validator: "
	errorSeparator       = "\n  "
)

// AttemptRecorder persists correction attempts
type AttemptRecorder interface {
	Create(ctx context.Context, attempt *domain.CorrectionAttempt) error
}

// CorrectionSession accumulates failed queries for one question and asks the
// correction model for fixes. It is not safe for concurrent use: calls must be
// made one at a time since every call appends to the history.
type CorrectionSession struct {
	id          uuid.UUID
	tableSchema string
	question    string
	similar     []domain.SimilarQuestion
	guidelines  string
	model       *llm.Model
	generator   Generator
	maxAttempts int
	recorder    AttemptRecorder
	logger      zerolog.Logger
	createdAt   time.Time

	history []domain.Iteration
}

// SessionOption configures a CorrectionSession
type SessionOption func(*CorrectionSession)

// WithMaxAttempts bounds the number of correction calls; 0 leaves it to the caller
func WithMaxAttempts(n int) SessionOption {
	return func(cs *CorrectionSession) {
		cs.maxAttempts = n
	}
}

// WithRecorder persists every attempt
func WithRecorder(recorder AttemptRecorder) SessionOption {
	return func(cs *CorrectionSession) {
		cs.recorder = recorder
	}
}

// WithSessionID overrides the generated session ID
func WithSessionID(id uuid.UUID) SessionOption {
	return func(cs *CorrectionSession) {
		cs.id = id
	}
}

func newCorrectionSession(
	generator Generator,
	model *llm.Model,
	guidelines string,
	tableSchema string,
	question string,
	similar []domain.SimilarQuestion,
	logger zerolog.Logger,
	opts ...SessionOption,
) *CorrectionSession {
	cs := &CorrectionSession{
		id:          uuid.New(),
		tableSchema: tableSchema,
		question:    question,
		similar:     append([]domain.SimilarQuestion(nil), similar...),
		guidelines:  guidelines,
		model:       model,
		generator:   generator,
		createdAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(cs)
	}
	cs.logger = logger.With().Str("correction_session", cs.id.String()).Logger()
	return cs
}

// ComposeErrors joins the BigQuery and validator errors, each labelled; empty messages are skipped
func ComposeErrors(bigQueryErr, validationErr string) string {
	var b strings.Builder
	if bigQueryErr != "" {
		b.WriteString(bigQueryErrorLabel + bigQueryErr + errorSeparator)
	}
	if validationErr != "" {
		b.WriteString(validationErrorLabel + validationErr + errorSeparator)
	}
	return b.String()
}

// GetCorrectedSQL records the failed query with its errors and returns a new candidate.
// The candidate itself is not recorded; feed it back in if it fails too.
func (cs *CorrectionSession) GetCorrectedSQL(ctx context.Context, sql, bigQueryErr, validationErr string) (string, error) {
	if cs.maxAttempts > 0 && len(cs.history) >= cs.maxAttempts {
		return "", fmt.Errorf("%w: %d of %d used", ErrAttemptsExhausted, len(cs.history), cs.maxAttempts)
	}

	errorsText := ComposeErrors(bigQueryErr, validationErr)
	cs.history = append(cs.history, domain.Iteration{SQL: sql, Errors: errorsText})
	attempt := len(cs.history)

	prompt := llm.BuildCorrectionPrompt(llm.CorrectionInput{
		Guidelines:       cs.guidelines,
		TableSchema:      cs.tableSchema,
		Question:         cs.question,
		SimilarQuestions: cs.similar,
		History:          cs.history,
	})

	cs.logger.Info().Int("attempt", attempt).Msg("Sending correction prompt")
	cs.logger.Debug().Str("prompt", prompt).Msg("SQL correction prompt")
	observability.IncrementCorrectionAttempts()

	raw, err := cs.generator.Generate(ctx, cs.model, prompt, 0)
	if err != nil {
		return "", fmt.Errorf("failed to correct SQL: %w", err)
	}
	cs.logger.Info().Str("sql", raw).Msg("Received corrected SQL query")

	candidate := strings.TrimSpace(llm.Flatten(raw))
	cs.record(ctx, attempt, sql, errorsText, candidate)

	return candidate, nil
}

func (cs *CorrectionSession) record(ctx context.Context, attempt int, sql, errorsText, candidate string) {
	if cs.recorder == nil {
		return
	}
	err := cs.recorder.Create(ctx, &domain.CorrectionAttempt{
		ID:        uuid.New(),
		SessionID: cs.id,
		Number:    attempt,
		Question:  cs.question,
		SQL:       sql,
		Errors:    errorsText,
		Candidate: candidate,
		Model:     cs.model.ID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		cs.logger.Error().Err(err).Int("attempt", attempt).Msg("failed to record correction attempt")
	}
}

// History returns a copy of every recorded iteration in call order
func (cs *CorrectionSession) History() []domain.Iteration {
	return append([]domain.Iteration(nil), cs.history...)
}

// Attempts returns the number of recorded iterations
func (cs *CorrectionSession) Attempts() int {
	return len(cs.history)
}

func (cs *CorrectionSession) ID() uuid.UUID {
	return cs.id
}

func (cs *CorrectionSession) Question() string {
	return cs.question
}

func (cs *CorrectionSession) MaxAttempts() int {
	return cs.maxAttempts
}

func (cs *CorrectionSession) CreatedAt() time.Time {
	return cs.createdAt
}

// Info returns a snapshot of the session
func (cs *CorrectionSession) Info() domain.CorrectionSessionInfo {
	return domain.CorrectionSessionInfo{
		ID:          cs.id,
		Question:    cs.question,
		Attempts:    len(cs.history),
		MaxAttempts: cs.maxAttempts,
		History:     cs.History(),
		CreatedAt:   cs.createdAt,
	}
}
