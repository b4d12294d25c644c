package postgres

import (
	"context"
	"fmt"

	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepository implements domain.AttemptRepository
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new correction attempt repository
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a correction attempt
func (r *AttemptRepository) Create(ctx context.Context, attempt *domain.CorrectionAttempt) error {
	query := `
		INSERT INTO correction_attempts (id, session_id, attempt_number, question, sql, errors, candidate, model_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		attempt.ID,
		attempt.SessionID,
		attempt.Number,
		attempt.Question,
		attempt.SQL,
		attempt.Errors,
		attempt.Candidate,
		attempt.Model,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create correction attempt: %w", err)
	}

	return nil
}

// ListBySession retrieves the attempts of a session in call order
func (r *AttemptRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CorrectionAttempt, error) {
	query := `
		SELECT id, session_id, attempt_number, question, sql, errors, candidate, model_id, created_at
		FROM correction_attempts
		WHERE session_id = $1
		ORDER BY attempt_number ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list correction attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]domain.CorrectionAttempt, 0)
	for rows.Next() {
		var a domain.CorrectionAttempt
		if err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.Number,
			&a.Question,
			&a.SQL,
			&a.Errors,
			&a.Candidate,
			&a.Model,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan correction attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate correction attempts: %w", err)
	}

	return attempts, nil
}
