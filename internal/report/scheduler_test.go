package report

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobFunc func(ctx context.Context) (*Result, error)

func (f jobFunc) SendDaily(ctx context.Context) (*Result, error) { return f(ctx) }

func TestScheduler_FiresImmediately(t *testing.T) {
	var calls atomic.Int32
	first := make(chan struct{})
	job := jobFunc(func(ctx context.Context) (*Result, error) {
		if calls.Add(1) == 1 {
			close(first)
		}
		return &Result{}, nil
	})
	_, l := logger.NewTestLogger()
	s, err := NewScheduler(job, time.Hour, l)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("first tick did not fire at start")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_SurvivesFailingTicks(t *testing.T) {
	var calls atomic.Int32
	reached := make(chan struct{})
	job := jobFunc(func(ctx context.Context) (*Result, error) {
		n := calls.Add(1)
		switch n {
		case 1:
			panic("boom")
		case 2:
			return nil, errors.New("db down")
		case 3:
			close(reached)
		}
		return &Result{}, nil
	})
	buf, l := logger.NewTestLogger()
	s, err := NewScheduler(job, 10*time.Millisecond, l)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	select {
	case <-reached:
	case <-time.After(5 * time.Second):
		t.Fatalf("scheduler stopped ticking after %d calls", calls.Load())
	}
	assert.Contains(t, buf.String(), "report tick panicked")
	assert.Contains(t, buf.String(), "report tick failed")
}

func TestNewScheduler(t *testing.T) {
	_, err := NewScheduler(nil, time.Hour, nil)
	assert.Error(t, err)

	s, err := NewScheduler(jobFunc(func(ctx context.Context) (*Result, error) { return nil, nil }), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultInterval, s.interval)
}
