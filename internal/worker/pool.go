// Package worker provides a bounded worker pool for running batches of
// independent tasks. Workers are stateless functions; a batch's results are
// fully joined before Run returns, so callers never observe partial output.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonesrussell/newsfuse/internal/logger"
)

const (
	// DefaultPoolSize is the default number of concurrent workers.
	DefaultPoolSize = 4

	// MinPoolSize is the minimum allowed pool size.
	MinPoolSize = 1

	// MaxPoolSize is the maximum allowed pool size.
	MaxPoolSize = 64
)

// Task is a unit of work executed by the pool.
type Task func(ctx context.Context) error

// Pool runs tasks with bounded concurrency.
type Pool struct {
	size   int
	logger logger.Interface

	tasksRun    atomic.Int64
	tasksFailed atomic.Int64
}

// NewPool creates a new worker pool.
func NewPool(size int, log logger.Interface) (*Pool, error) {
	if size < MinPoolSize || size > MaxPoolSize {
		return nil, fmt.Errorf("pool size %d out of range [%d, %d]", size, MinPoolSize, MaxPoolSize)
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Pool{
		size:   size,
		logger: log.WithComponent("worker"),
	}, nil
}

// Run executes every task in the batch with at most Size workers running at
// once, then joins all results. Individual task errors are collected; the
// batch keeps going so one failed task never cancels its siblings. A
// cancelled context stops dispatching new tasks.
func (p *Pool) Run(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	sem := make(chan struct{}, p.size)
	var wg sync.WaitGroup

	errMu := sync.Mutex{}
	var taskErrs []error

	for _, task := range tasks {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(task Task) {
			defer func() {
				<-sem
				wg.Done()
			}()

			p.tasksRun.Add(1)
			if err := task(ctx); err != nil {
				p.tasksFailed.Add(1)
				errMu.Lock()
				taskErrs = append(taskErrs, err)
				errMu.Unlock()
			}
		}(task)
	}

	wg.Wait()
	return errors.Join(taskErrs...)
}

// Size returns the pool size.
func (p *Pool) Size() int {
	return p.size
}

// Stats returns pool statistics.
func (p *Pool) Stats() Stats {
	return Stats{
		PoolSize:    p.size,
		TasksRun:    p.tasksRun.Load(),
		TasksFailed: p.tasksFailed.Load(),
	}
}

// Stats holds statistics for the pool.
type Stats struct {
	PoolSize    int
	TasksRun    int64
	TasksFailed int64
}

// SuccessRate returns the success rate as a fraction.
func (s Stats) SuccessRate() float64 {
	if s.TasksRun == 0 {
		return 0
	}
	return float64(s.TasksRun-s.TasksFailed) / float64(s.TasksRun)
}
