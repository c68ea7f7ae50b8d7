package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_RunsJobRepeatedly(t *testing.T) {
	s, err := New(time.UTC, zap.NewNop())
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.Every("count", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	defer func() { _ = s.Shutdown() }()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_FailingJobKeepsRunning(t *testing.T) {
	s, err := New(nil, zap.NewNop())
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.Every("flaky", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("db unavailable")
	}))

	s.Start()
	defer func() { _ = s.Shutdown() }()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s, err := New(time.UTC, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	assert.Error(t, s.Every("never", 0, func(ctx context.Context) error { return nil }))
}
