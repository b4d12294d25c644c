package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerateRequest represents a question-to-SQL generation request
type GenerateRequest struct {
	Question         string            `json:"question" validate:"required,max=2000"`
	TableSchema      string            `json:"table_schema" validate:"required"`
	SimilarQuestions []SimilarQuestion `json:"similar_questions" validate:"dive"`
}

// BatchGenerateRequest fans several independent generations out at once
type BatchGenerateRequest struct {
	Requests []GenerateRequest `json:"requests" validate:"required,min=1,max=20,dive"`
}

// BatchGenerateItem is the outcome of one generation inside a batch
type BatchGenerateItem struct {
	Index  int               `json:"index"`
	Result *GenerationResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// ExplainRequest asks whether a SQL query answers a question
type ExplainRequest struct {
	Question         string            `json:"question" validate:"required,max=2000"`
	SQL              string            `json:"sql" validate:"required"`
	TableSchema      string            `json:"table_schema" validate:"required"`
	SimilarQuestions []SimilarQuestion `json:"similar_questions" validate:"dive"`
}

// CreateCorrectionRequest opens a correction session for one failing query
type CreateCorrectionRequest struct {
	Question         string            `json:"question" validate:"required,max=2000"`
	TableSchema      string            `json:"table_schema" validate:"required"`
	SimilarQuestions []SimilarQuestion `json:"similar_questions" validate:"dive"`
}

// CorrectionAttemptRequest submits a failed query and its errors to a session
type CorrectionAttemptRequest struct {
	SQL             string `json:"sql" validate:"required"`
	BigQueryError   string `json:"bigquery_error"`
	ValidationError string `json:"validation_error"`
}

// CorrectionSessionInfo describes a correction session
type CorrectionSessionInfo struct {
	ID          uuid.UUID   `json:"id"`
	Question    string      `json:"question"`
	Attempts    int         `json:"attempts"`
	MaxAttempts int         `json:"max_attempts,omitempty"`
	History     []Iteration `json:"history"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CorrectionAttemptResponse carries the candidate returned by the correction model
type CorrectionAttemptResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Attempt   int       `json:"attempt"`
	SQL       string    `json:"sql"`
}
