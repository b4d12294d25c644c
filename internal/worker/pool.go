// Package worker runs independent tasks with bounded parallelism.
package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultMaxConcurrent is the pool size when none is configured
const DefaultMaxConcurrent = 5

// Pool bounds the number of tasks running at once.
// Tasks must not share mutable state; each owns whatever it mutates.
type Pool struct {
	maxConcurrent int
	logger        zerolog.Logger
}

// NewPool creates a new worker pool
func NewPool(maxConcurrent int, logger zerolog.Logger) *Pool {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Pool{
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// MaxConcurrent returns the pool size
func (p *Pool) MaxConcurrent() int {
	return p.maxConcurrent
}

// Task is a unit of work submitted to the pool
type Task[T any] struct {
	ID      int
	Execute func(ctx context.Context) (T, error)
}

// Result is the outcome of a task
type Result[T any] struct {
	ID    int
	Value T
	Err   error
}

// Run executes every task and returns the results in submission order.
// A failing task does not stop the others.
func Run[T any](ctx context.Context, pool *Pool, tasks []Task[T]) []Result[T] {
	if len(tasks) == 0 {
		return nil
	}

	results := make([]Result[T], len(tasks))
	sem := make(chan struct{}, pool.maxConcurrent)

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = Result[T]{ID: task.ID, Err: ctx.Err()}
				return
			}

			value, err := task.Execute(ctx)
			if err != nil {
				pool.logger.Debug().Err(err).Int("task", task.ID).Msg("task failed")
			}
			results[i] = Result[T]{ID: task.ID, Value: value, Err: err}
		}(i, task)
	}
	wg.Wait()

	return results
}
