// Package cache stores computed season aggregates and invalidates them on writes.
//
// The Layer is the only entry point the services use. It serializes values as JSON, talks to a
// Store (Redis or in-memory) and never returns an error: a failing store is logged, counted and
// treated as a miss so reads fall through to recomputation from storage.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/season-stats-service/internal/metrics"
)

// Region is an independent key space.
type Region string

const (
	PlayerSeasonStats  Region = "playerSeasonStats"
	TeamSeasonStats    Region = "teamSeasonStats"
	AllTeamSeasonStats Region = "allTeamSeasonStats"
)

// AllTeamsKey is the single key used in AllTeamSeasonStats.
const AllTeamsKey = "all"

// Regions lists every region the service writes to.
func Regions() []Region {
	return []Region{PlayerSeasonStats, TeamSeasonStats, AllTeamSeasonStats}
}

// Store is the raw key-value backend. Get reports a miss with ok=false and a nil error.
// Delete of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, region Region, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, region Region, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, region Region, key string) error
	DeleteRegion(ctx context.Context, region Region) error
	Flush(ctx context.Context) error
}

// Layer wraps a Store with JSON encoding, logging and metrics.
type Layer struct {
	store Store
	ttl   time.Duration
	log   zerolog.Logger
	rec   *metrics.Recorder
}

// New builds a Layer. A zero ttl stores entries without expiry; correctness relies on
// explicit invalidation only.
func New(store Store, ttl time.Duration, logger zerolog.Logger, rec *metrics.Recorder) *Layer {
	l := logger.With().Str("module", "cache").Logger()
	return &Layer{store: store, ttl: ttl, log: l, rec: rec}
}

// Key formats a numeric subject id as a cache key.
func Key(id int64) string { return strconv.FormatInt(id, 10) }

// Get decodes the entry at (region, key) into dst and reports whether it was a hit.
// Store failures and undecodable entries are reported as misses.
func (l *Layer) Get(ctx context.Context, region Region, key string, dst any) bool {
	raw, ok, err := l.store.Get(ctx, region, key)
	if err != nil {
		l.fail(region, key, "get", err)
		l.rec.RecordCacheLookup(string(region), false)
		return false
	}
	if !ok {
		l.rec.RecordCacheLookup(string(region), false)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		l.fail(region, key, "decode", err)
		l.rec.RecordCacheLookup(string(region), false)
		return false
	}
	l.rec.RecordCacheLookup(string(region), true)
	return true
}

// Put stores v at (region, key). Failures are logged and dropped.
func (l *Layer) Put(ctx context.Context, region Region, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		l.fail(region, key, "encode", err)
		return
	}
	if err := l.store.Set(ctx, region, key, raw, l.ttl); err != nil {
		l.fail(region, key, "put", err)
	}
}

// Evict removes a single entry. Evicting an absent key is a no-op.
func (l *Layer) Evict(ctx context.Context, region Region, key string) {
	if err := l.store.Delete(ctx, region, key); err != nil {
		l.fail(region, key, "evict", err)
	}
}

// ClearRegion removes every entry of region.
func (l *Layer) ClearRegion(ctx context.Context, region Region) {
	if err := l.store.DeleteRegion(ctx, region); err != nil {
		l.fail(region, "*", "clear_region", err)
	}
}

// ClearAll removes every entry in every region. Administrative use only.
func (l *Layer) ClearAll(ctx context.Context) {
	l.log.Info().Msg("clearing all cache regions")
	if err := l.store.Flush(ctx); err != nil {
		l.fail("*", "*", "clear_all", err)
	}
}

// InvalidateStatsCache is the single invalidation path for a stat write: it evicts the
// player's and the team's aggregates and clears the all-teams listing.
func (l *Layer) InvalidateStatsCache(ctx context.Context, playerID, teamID int64) {
	l.log.Debug().Int64("player_id", playerID).Int64("team_id", teamID).Msg("invalidating stats cache")
	l.Evict(ctx, PlayerSeasonStats, Key(playerID))
	l.Evict(ctx, TeamSeasonStats, Key(teamID))
	l.ClearRegion(ctx, AllTeamSeasonStats)
	l.rec.RecordInvalidation()
}

func (l *Layer) fail(region Region, key, op string, err error) {
	l.log.Warn().Err(err).Str("region", string(region)).Str("key", key).Str("op", op).Msg("cache operation failed")
	l.rec.RecordCacheError(string(region), op)
}
