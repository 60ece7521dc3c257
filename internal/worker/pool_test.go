package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	_, l := logger.NewTestLogger()
	q := NewQueue(1, l)

	pool := NewPool(q, PoolConfig{WorkerCount: 5}, l)
	assert.Equal(t, 5, pool.config.WorkerCount)

	pool = NewPool(q, PoolConfig{WorkerCount: -5}, l)
	assert.Equal(t, 1, pool.config.WorkerCount)
}

func TestPool_ProcessesAndDrains(t *testing.T) {
	_, l := logger.NewTestLogger()
	q := NewQueue(50, l)
	pool := NewPool(q, PoolConfig{WorkerCount: 3}, l)

	var ran atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, q.Enqueue(Func{JobName: "count", Fn: func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}

	pool.Start()
	pool.Start()
	q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pool.Wait(ctx))
	assert.Equal(t, int32(20), ran.Load())
}

func TestPool_ErrorsAndPanicsAreHandled(t *testing.T) {
	_, l := logger.NewTestLogger()
	q := NewQueue(10, l)
	pool := NewPool(q, PoolConfig{WorkerCount: 1, JobTimeout: time.Second}, l)

	var mu sync.Mutex
	var failed []string
	pool.SetErrorHandler(func(job Job, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, job.Name())
	})

	var after atomic.Bool
	require.NoError(t, q.Enqueue(Func{JobName: "fails", Fn: func(ctx context.Context) error {
		return errors.New("boom")
	}}))
	require.NoError(t, q.Enqueue(Func{JobName: "panics", Fn: func(ctx context.Context) error {
		panic("oops")
	}}))
	require.NoError(t, q.Enqueue(Func{JobName: "ok", Fn: func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		after.Store(hasDeadline)
		return nil
	}}))

	pool.Start()
	q.Close()
	require.NoError(t, pool.Wait(context.Background()))

	assert.Equal(t, []string{"fails", "panics"}, failed)
	assert.True(t, after.Load(), "the worker survives and applies the job timeout")
}

func TestPool_WaitTimesOut(t *testing.T) {
	_, l := logger.NewTestLogger()
	q := NewQueue(1, l)
	pool := NewPool(q, PoolConfig{WorkerCount: 1}, l)
	pool.Start()
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, pool.Wait(ctx))
}
