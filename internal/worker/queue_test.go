package worker

import (
	"context"
	"testing"

	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopJob(name string) Job {
	return Func{JobName: name, Fn: func(ctx context.Context) error { return nil }}
}

func TestQueue_Enqueue(t *testing.T) {
	_, l := logger.NewTestLogger()
	q := NewQueue(2, l)

	require.NoError(t, q.Enqueue(noopJob("a")))
	require.NoError(t, q.Enqueue(noopJob("b")))

	err := q.Enqueue(noopJob("c"))
	assert.ErrorIs(t, err, ErrQueueFull)

	job := <-q.Jobs()
	assert.Equal(t, "a", job.Name())
}

func TestQueue_Close(t *testing.T) {
	_, l := logger.NewTestLogger()
	q := NewQueue(2, l)
	require.NoError(t, q.Enqueue(noopJob("a")))

	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Enqueue(noopJob("b")), ErrQueueClosed)

	// Queued jobs survive Close.
	job, ok := <-q.Jobs()
	require.True(t, ok)
	assert.Equal(t, "a", job.Name())
	_, ok = <-q.Jobs()
	assert.False(t, ok)
}
