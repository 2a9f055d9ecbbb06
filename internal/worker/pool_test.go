package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsfuse/internal/worker"
)

func TestNewPoolValidatesSize(t *testing.T) {
	_, err := worker.NewPool(0, nil)
	assert.Error(t, err)

	_, err = worker.NewPool(worker.MaxPoolSize+1, nil)
	assert.Error(t, err)

	pool, err := worker.NewPool(worker.DefaultPoolSize, nil)
	require.NoError(t, err)
	assert.Equal(t, worker.DefaultPoolSize, pool.Size())
}

func TestRunExecutesAllTasks(t *testing.T) {
	pool, err := worker.NewPool(4, nil)
	require.NoError(t, err)

	var ran atomic.Int64
	tasks := make([]worker.Task, 50)
	for i := range tasks {
		tasks[i] = func(context.Context) error {
			ran.Add(1)
			return nil
		}
	}

	require.NoError(t, pool.Run(context.Background(), tasks))
	assert.Equal(t, int64(50), ran.Load())
	assert.Equal(t, int64(50), pool.Stats().TasksRun)
}

func TestRunCollectsErrorsWithoutCancellingSiblings(t *testing.T) {
	pool, err := worker.NewPool(2, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	var ran atomic.Int64
	tasks := []worker.Task{
		func(context.Context) error { ran.Add(1); return boom },
		func(context.Context) error { ran.Add(1); return nil },
		func(context.Context) error { ran.Add(1); return boom },
	}

	err = pool.Run(context.Background(), tasks)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(3), ran.Load())
	assert.Equal(t, int64(2), pool.Stats().TasksFailed)
}

func TestRunEmptyBatch(t *testing.T) {
	pool, err := worker.NewPool(1, nil)
	require.NoError(t, err)
	assert.NoError(t, pool.Run(context.Background(), nil))
}

func TestRunCancelledContextStopsDispatch(t *testing.T) {
	pool, err := worker.NewPool(1, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int64
	tasks := []worker.Task{
		func(context.Context) error { ran.Add(1); return nil },
	}

	runErr := pool.Run(ctx, tasks)
	if runErr != nil {
		assert.ErrorIs(t, runErr, context.Canceled)
	}
}

func TestStatsSuccessRate(t *testing.T) {
	stats := worker.Stats{TasksRun: 10, TasksFailed: 2}
	assert.InDelta(t, 0.8, stats.SuccessRate(), 1e-9)
	assert.Zero(t, worker.Stats{}.SuccessRate())
}
