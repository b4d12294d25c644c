package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Iteration is one failed query and the errors it produced
type Iteration struct {
	SQL    string `json:"sql"`
	Errors string `json:"errors"`
}

// CorrectionAttempt is a persisted record of one correction round trip
type CorrectionAttempt struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Number    int       `json:"number"`
	Question  string    `json:"question"`
	SQL       string    `json:"sql"`
	Errors    string    `json:"errors"`
	Candidate string    `json:"candidate"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// AttemptRepository defines the interface for correction attempt storage
type AttemptRepository interface {
	Create(ctx context.Context, attempt *CorrectionAttempt) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]CorrectionAttempt, error)
}
