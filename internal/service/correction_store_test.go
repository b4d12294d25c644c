package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCorrectionStore_Expiry(t *testing.T) {
	svc := newTestSQLService(new(MockGenerator))
	store := NewCorrectionStore(time.Minute)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	session := svc.NewCorrectionSession(testSchema, "q", nil)
	store.Add(session)
	assert.Equal(t, 1, store.Len())

	now = now.Add(30 * time.Second)
	_, err := store.Info(session.ID())
	require.NoError(t, err)

	// lookup refreshed the session
	now = now.Add(45 * time.Second)
	assert.Equal(t, 0, store.Sweep())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Len())

	_, err = store.Info(session.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCorrectionStore_Delete(t *testing.T) {
	svc := newTestSQLService(new(MockGenerator))
	store := NewCorrectionStore(0)

	session := svc.NewCorrectionSession(testSchema, "q", nil)
	store.Add(session)

	require.NoError(t, store.Delete(session.ID()))
	assert.ErrorIs(t, store.Delete(session.ID()), ErrSessionNotFound)
}

func TestCorrectionService(t *testing.T) {
	ctx := context.Background()
	gen := new(MockGenerator)
	repo := new(MockAttemptRepository)
	sqlSvc := newTestSQLService(gen)
	svc := NewCorrectionService(sqlSvc, NewCorrectionStore(time.Hour), repo, 2)

	info := svc.Open(domain.CreateCorrectionRequest{Question: "total sales", TableSchema: testSchema})
	assert.Equal(t, "total sales", info.Question)
	assert.Equal(t, 2, info.MaxAttempts)
	assert.Equal(t, 0, info.Attempts)

	gen.On("Generate", ctx, sqlSvc.models.Correction, mock.Anything, float32(0)).Return("SELECT SUM(amount) FROM sales", nil)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.CorrectionAttempt")).Return(nil)

	t.Run("attempt", func(t *testing.T) {
		resp, err := svc.Attempt(ctx, info.ID, domain.CorrectionAttemptRequest{SQL: "SELECT SUM(amt) FROM sales", BigQueryError: "Unrecognized name: amt"})
		require.NoError(t, err)
		assert.Equal(t, info.ID, resp.SessionID)
		assert.Equal(t, 1, resp.Attempt)
		assert.Equal(t, "SELECT SUM(amount) FROM sales", resp.SQL)
	})

	t.Run("get", func(t *testing.T) {
		got, err := svc.Get(info.ID)
		require.NoError(t, err)
		require.Len(t, got.History, 1)
		assert.Equal(t, "SELECT SUM(amt) FROM sales", got.History[0].SQL)
	})

	t.Run("exhausted", func(t *testing.T) {
		_, err := svc.Attempt(ctx, info.ID, domain.CorrectionAttemptRequest{SQL: "S2", BigQueryError: "E2"})
		require.NoError(t, err)
		_, err = svc.Attempt(ctx, info.ID, domain.CorrectionAttemptRequest{SQL: "S3", BigQueryError: "E3"})
		assert.ErrorIs(t, err, ErrAttemptsExhausted)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.Attempt(ctx, uuid.New(), domain.CorrectionAttemptRequest{SQL: "S"})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("list attempts", func(t *testing.T) {
		repo.On("ListBySession", ctx, info.ID).Return([]domain.CorrectionAttempt{{SessionID: info.ID, Number: 1}}, nil).Once()
		attempts, err := svc.ListAttempts(ctx, info.ID)
		require.NoError(t, err)
		assert.Len(t, attempts, 1)
	})

	t.Run("close", func(t *testing.T) {
		require.NoError(t, svc.Close(info.ID))
		_, err := svc.Get(info.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestCorrectionService_ListAttemptsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAttemptRepository)
	svc := NewCorrectionService(newTestSQLService(new(MockGenerator)), NewCorrectionStore(time.Hour), repo, 0)
	id := uuid.New()

	repo.On("ListBySession", ctx, id).Return(nil, nil).Once()

	attempts, err := svc.ListAttempts(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, attempts)

	body, err := json.Marshal(attempts)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(body))
	repo.AssertExpectations(t)
}

func TestCorrectionService_ListAttemptsDisabled(t *testing.T) {
	svc := NewCorrectionService(newTestSQLService(new(MockGenerator)), NewCorrectionStore(time.Hour), nil, 0)

	_, err := svc.ListAttempts(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAttemptLogDisabled)
}
