package service

import (
	"context"

	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/Rrens/nl2sql/internal/llm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGenerator mocks the Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, model *llm.Model, prompt string, temperature float32) (string, error) {
	args := m.Called(ctx, model, prompt, temperature)
	return args.String(0), args.Error(1)
}

// MockAttemptRepository mocks the AttemptRepository interface
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *domain.CorrectionAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CorrectionAttempt, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CorrectionAttempt), args.Error(1)
}

func testModels() *llm.Models {
	return &llm.Models{
		FastSQL:    &llm.Model{ID: "gemini-1.5-flash", Name: "gemini-1.5-flash", Family: llm.FamilyContent, MaxOutputTokens: 1024},
		FineSQL:    &llm.Model{ID: "text-unicorn", Name: "text-unicorn@001", Family: llm.FamilyCompletion, MaxOutputTokens: 1024},
		Validation: &llm.Model{ID: "gemini-pro", Name: "gemini-pro", Family: llm.FamilyContent, MaxOutputTokens: 1024},
		Correction: &llm.Model{ID: "codechat-bison-32k", Name: "codechat-bison-32k", Family: llm.FamilyCodeChat, MaxOutputTokens: 1024},
	}
}
