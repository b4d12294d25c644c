package service

import (
	"context"
	"errors"

	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/google/uuid"
)

// ErrAttemptLogDisabled is returned when attempts are not persisted
var ErrAttemptLogDisabled = errors.New("correction attempt log is not enabled")

// CorrectionService manages correction sessions on behalf of remote callers
type CorrectionService struct {
	sqlService  *SQLService
	store       *CorrectionStore
	attemptRepo domain.AttemptRepository
	maxAttempts int
}

// NewCorrectionService creates a new correction service; attemptRepo may be nil
func NewCorrectionService(sqlService *SQLService, store *CorrectionStore, attemptRepo domain.AttemptRepository, maxAttempts int) *CorrectionService {
	return &CorrectionService{
		sqlService:  sqlService,
		store:       store,
		attemptRepo: attemptRepo,
		maxAttempts: maxAttempts,
	}
}

// Open creates and stores a new correction session
func (s *CorrectionService) Open(req domain.CreateCorrectionRequest) domain.CorrectionSessionInfo {
	opts := []SessionOption{WithMaxAttempts(s.maxAttempts)}
	if s.attemptRepo != nil {
		opts = append(opts, WithRecorder(s.attemptRepo))
	}

	session := s.sqlService.NewCorrectionSession(req.TableSchema, req.Question, req.SimilarQuestions, opts...)
	s.store.Add(session)
	return session.Info()
}

// Attempt submits a failed query to a stored session
func (s *CorrectionService) Attempt(ctx context.Context, id uuid.UUID, req domain.CorrectionAttemptRequest) (*domain.CorrectionAttemptResponse, error) {
	var resp *domain.CorrectionAttemptResponse
	err := s.store.Do(id, func(cs *CorrectionSession) error {
		sql, err := cs.GetCorrectedSQL(ctx, req.SQL, req.BigQueryError, req.ValidationError)
		if err != nil {
			return err
		}
		resp = &domain.CorrectionAttemptResponse{
			SessionID: cs.ID(),
			Attempt:   cs.Attempts(),
			SQL:       sql,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Get returns a snapshot of a stored session
func (s *CorrectionService) Get(id uuid.UUID) (domain.CorrectionSessionInfo, error) {
	return s.store.Info(id)
}

// Close removes a stored session
func (s *CorrectionService) Close(id uuid.UUID) error {
	return s.store.Delete(id)
}

// ListAttempts returns the persisted attempts of a session
func (s *CorrectionService) ListAttempts(ctx context.Context, id uuid.UUID) ([]domain.CorrectionAttempt, error) {
	if s.attemptRepo == nil {
		return nil, ErrAttemptLogDisabled
	}
	attempts, err := s.attemptRepo.ListBySession(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []domain.CorrectionAttempt{}
	}
	return attempts, nil
}
