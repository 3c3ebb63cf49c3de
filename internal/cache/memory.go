package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type memEntry struct {
	val     []byte
	expires time.Time // zero means no expiry
}

// MemoryStore is a process-local Store guarded by a RWMutex.
type MemoryStore struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	regions map[Region]map[string]memEntry
}

// NewMemoryStore returns an empty store. A nil clock uses the real clock.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{clock: clock, regions: make(map[Region]map[string]memEntry)}
}

func (m *MemoryStore) Get(_ context.Context, region Region, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.regions[region][key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.clock.Now().Before(e.expires) {
		return nil, false, nil
	}
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, true, nil
}

func (m *MemoryStore) Set(_ context.Context, region Region, key string, val []byte, ttl time.Duration) error {
	e := memEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expires = m.clock.Now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.regions[region]
	if !ok {
		r = make(map[string]memEntry)
		m.regions[region] = r
	}
	r[key] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, region Region, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.regions[region], key)
	return nil
}

func (m *MemoryStore) DeleteRegion(_ context.Context, region Region) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.regions, region)
	return nil
}

func (m *MemoryStore) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions = make(map[Region]map[string]memEntry)
	return nil
}

// Len returns the number of live and expired entries in region.
func (m *MemoryStore) Len(region Region) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.regions[region])
}

var _ Store = (*MemoryStore)(nil)
