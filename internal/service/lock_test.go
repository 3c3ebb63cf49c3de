package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/season-stats-service/internal/service"
)

func TestStatsLock_TimeoutThenRecovers(t *testing.T) {
	lock := service.NewStatsLock(50 * time.Millisecond)
	ctx := context.Background()

	unlock, err := lock.Lock(ctx)
	require.NoError(t, err)

	_, err = lock.RLock(ctx)
	require.ErrorIs(t, err, service.ErrLockTimeout)
	_, err = lock.Lock(ctx)
	require.ErrorIs(t, err, service.ErrLockTimeout)

	unlock()

	// Abandoned acquisitions must not leak a held lock.
	require.Eventually(t, func() bool {
		u, err := lock.Lock(ctx)
		if err != nil {
			return false
		}
		u()
		return true
	}, time.Second, 10*time.Millisecond)
}

func TestStatsLock_ContextCanceled(t *testing.T) {
	lock := service.NewStatsLock(time.Minute)
	unlock, err := lock.Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = lock.RLock(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStatsLock_SharedReaders(t *testing.T) {
	lock := service.NewStatsLock(100 * time.Millisecond)
	ctx := context.Background()

	u1, err := lock.RLock(ctx)
	require.NoError(t, err)
	u2, err := lock.RLock(ctx)
	require.NoError(t, err)

	_, err = lock.Lock(ctx)
	assert.ErrorIs(t, err, service.ErrLockTimeout)

	u1()
	u2()
}

func TestStatsLock_NoTimeoutBlocksUntilReleased(t *testing.T) {
	lock := service.NewStatsLock(0)
	ctx := context.Background()
	unlock, err := lock.Lock(ctx)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		u, err := lock.RLock(ctx)
		if err == nil {
			u()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("reader acquired while writer held the lock")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("reader never acquired")
	}
}
