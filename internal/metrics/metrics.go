// Package metrics records cache, write-path and HTTP counters.
// The Recorder keeps in-memory tallies for tests and forwards to OpenTelemetry when configured.
package metrics

import (
	"sync"
	"time"
)

// Attribute keys shared by the OpenTelemetry instruments.
const (
	AttrRegion = "region"
	AttrResult = "result"
	AttrOp     = "op"
	AttrMethod = "method"
	AttrRoute  = "route"
	AttrStatus = "status"
)

type regionStats struct {
	hits   int
	misses int
	errors int
}

// Recorder is safe for concurrent use. A nil *Recorder is a valid no-op.
type Recorder struct {
	mu            sync.Mutex
	regions       map[string]*regionStats
	invalidations int
	writesOK      int
	writesFailed  int
	requests      int
	otel          *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		regions: make(map[string]*regionStats),
		otel:    otel,
	}
}

// RecordCacheLookup counts a hit or a miss for a region.
func (r *Recorder) RecordCacheLookup(region string, hit bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	st := r.ensureRegion(region)
	if hit {
		st.hits++
	} else {
		st.misses++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCacheLookup(region, hit)
	}
}

// RecordCacheError counts a swallowed cache failure.
func (r *Recorder) RecordCacheError(region, op string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.ensureRegion(region).errors++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCacheError(region, op)
	}
}

// RecordInvalidation counts one targeted invalidation (player + team + all-teams).
func (r *Recorder) RecordInvalidation() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.invalidations++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordInvalidation()
	}
}

// RecordStatsWrite counts a stat row write attempt.
func (r *Recorder) RecordStatsWrite(err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	if err != nil {
		r.writesFailed++
	} else {
		r.writesOK++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordStatsWrite(err)
	}
}

// RecordHTTPRequest counts a served request and its latency.
func (r *Recorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.requests++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordHTTPRequest(method, route, status, duration)
	}
}

// CacheSnapshot is a copy of the tallies for one region.
type CacheSnapshot struct {
	Hits   int
	Misses int
	Errors int
}

// Cache returns the tallies recorded for region.
func (r *Recorder) Cache(region string) CacheSnapshot {
	if r == nil {
		return CacheSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.regions[region]
	if !ok {
		return CacheSnapshot{}
	}
	return CacheSnapshot{Hits: st.hits, Misses: st.misses, Errors: st.errors}
}

// Invalidations returns how many targeted invalidations were recorded.
func (r *Recorder) Invalidations() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invalidations
}

// StatsWrites returns successful and failed write counts.
func (r *Recorder) StatsWrites() (ok, failed int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writesOK, r.writesFailed
}

// Requests returns the number of HTTP requests recorded.
func (r *Recorder) Requests() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests
}

func (r *Recorder) ensureRegion(region string) *regionStats {
	st, ok := r.regions[region]
	if !ok {
		st = &regionStats{}
		r.regions[region] = st
	}
	return st
}
