package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PreservesSubmissionOrder(t *testing.T) {
	pool := NewPool(3, zerolog.Nop())

	tasks := make([]Task[int], 10)
	for i := range tasks {
		i := i
		tasks[i] = Task[int]{
			ID: i,
			Execute: func(ctx context.Context) (int, error) {
				time.Sleep(time.Duration(10-i) * time.Millisecond)
				return i * i, nil
			},
		}
	}

	results := Run(context.Background(), pool, tasks)
	require.Len(t, results, 10)
	for i, r := range results {
		assert.Equal(t, i, r.ID)
		assert.Equal(t, i*i, r.Value)
		assert.NoError(t, r.Err)
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	pool := NewPool(2, zerolog.Nop())

	var running, peak int32
	tasks := make([]Task[struct{}], 8)
	for i := range tasks {
		tasks[i] = Task[struct{}]{
			ID: i,
			Execute: func(ctx context.Context) (struct{}, error) {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return struct{}{}, nil
			},
		}
	}

	Run(context.Background(), pool, tasks)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRun_FailuresDoNotStopOthers(t *testing.T) {
	pool := NewPool(0, zerolog.Nop())
	assert.Equal(t, DefaultMaxConcurrent, pool.MaxConcurrent())

	boom := errors.New("boom")
	tasks := []Task[string]{
		{ID: 0, Execute: func(ctx context.Context) (string, error) { return "", boom }},
		{ID: 1, Execute: func(ctx context.Context) (string, error) { return "ok", nil }},
	}

	results := Run(context.Background(), pool, tasks)
	assert.ErrorIs(t, results[0].Err, boom)
	assert.Equal(t, "ok", results[1].Value)
}

func TestRun_Empty(t *testing.T) {
	assert.Nil(t, Run[int](context.Background(), NewPool(1, zerolog.Nop()), nil))
}
