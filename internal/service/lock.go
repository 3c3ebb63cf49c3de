package service

import (
	"context"
	"sync"
	"time"
)

// StatsLock is the reader-writer lock shared by every operation touching stat rows or season
// aggregates. Stat writes hold it exclusively through persistence and cache invalidation; aggregate
// reads and stat listings hold it shared. Construct one per process and pass it to both services.
type StatsLock struct {
	mu      sync.RWMutex
	timeout time.Duration
}

// NewStatsLock returns a lock whose acquisitions give up after timeout with ErrLockTimeout.
// A zero timeout waits indefinitely.
func NewStatsLock(timeout time.Duration) *StatsLock {
	return &StatsLock{timeout: timeout}
}

// Lock acquires exclusive access. The returned func releases it.
func (l *StatsLock) Lock(ctx context.Context) (func(), error) {
	return l.acquire(ctx, l.mu.Lock, l.mu.Unlock)
}

// RLock acquires shared access. The returned func releases it.
func (l *StatsLock) RLock(ctx context.Context) (func(), error) {
	return l.acquire(ctx, l.mu.RLock, l.mu.RUnlock)
}

func (l *StatsLock) acquire(ctx context.Context, lock, unlock func()) (func(), error) {
	if l.timeout <= 0 {
		lock()
		return unlock, nil
	}

	// Waiting in a goroutine keeps sync.RWMutex's writer preference; a TryLock loop would starve writers.
	acquired := make(chan struct{})
	go func() {
		lock()
		close(acquired)
	}()

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	var err error
	select {
	case <-acquired:
		return unlock, nil
	case <-timer.C:
		err = ErrLockTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}

	// The waiter still owns a pending acquisition; release it as soon as it lands.
	go func() {
		<-acquired
		unlock()
	}()
	return nil, err
}
