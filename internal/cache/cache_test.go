package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/season-stats-service/internal/cache"
	"github.com/maxviazov/season-stats-service/internal/metrics"
	"github.com/maxviazov/season-stats-service/internal/model"
)

func newRedisStore(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisStore(client, "test"), mr
}

// stores runs fn against both backends.
func stores(t *testing.T, fn func(t *testing.T, s cache.Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, cache.NewMemoryStore(nil)) })
	t.Run("redis", func(t *testing.T) {
		s, _ := newRedisStore(t)
		fn(t, s)
	})
}

func TestLayer_PutGetRoundTrip(t *testing.T) {
	stores(t, func(t *testing.T, s cache.Store) {
		ctx := context.Background()
		rec := metrics.NewRecorder()
		l := cache.New(s, 0, zerolog.Nop(), rec)

		want := model.PlayerAggregateStats{PlayerID: 7, FirstName: "Ann", GamesPlayed: 2, AveragePoints: 27}
		l.Put(ctx, cache.PlayerSeasonStats, cache.Key(7), want)

		var got model.PlayerAggregateStats
		require.True(t, l.Get(ctx, cache.PlayerSeasonStats, cache.Key(7), &got))
		assert.Equal(t, want, got)

		var other model.PlayerAggregateStats
		assert.False(t, l.Get(ctx, cache.TeamSeasonStats, cache.Key(7), &other), "regions are independent")

		snap := rec.Cache(string(cache.PlayerSeasonStats))
		assert.Equal(t, 1, snap.Hits)
		assert.Equal(t, 0, snap.Misses)
	})
}

func TestLayer_InvalidateStatsCache(t *testing.T) {
	stores(t, func(t *testing.T, s cache.Store) {
		ctx := context.Background()
		rec := metrics.NewRecorder()
		l := cache.New(s, 0, zerolog.Nop(), rec)

		l.Put(ctx, cache.PlayerSeasonStats, cache.Key(1), model.PlayerAggregateStats{PlayerID: 1})
		l.Put(ctx, cache.PlayerSeasonStats, cache.Key(2), model.PlayerAggregateStats{PlayerID: 2})
		l.Put(ctx, cache.TeamSeasonStats, cache.Key(10), model.TeamAggregateStats{TeamID: 10})
		l.Put(ctx, cache.TeamSeasonStats, cache.Key(20), model.TeamAggregateStats{TeamID: 20})
		l.Put(ctx, cache.AllTeamSeasonStats, cache.AllTeamsKey, []model.TeamAggregateStats{{TeamID: 10}})

		l.InvalidateStatsCache(ctx, 1, 10)

		var p model.PlayerAggregateStats
		var tm model.TeamAggregateStats
		var all []model.TeamAggregateStats
		assert.False(t, l.Get(ctx, cache.PlayerSeasonStats, cache.Key(1), &p))
		assert.False(t, l.Get(ctx, cache.TeamSeasonStats, cache.Key(10), &tm))
		assert.False(t, l.Get(ctx, cache.AllTeamSeasonStats, cache.AllTeamsKey, &all))

		assert.True(t, l.Get(ctx, cache.PlayerSeasonStats, cache.Key(2), &p), "other players keep their entries")
		assert.True(t, l.Get(ctx, cache.TeamSeasonStats, cache.Key(20), &tm), "other teams keep their entries")
		assert.Equal(t, 1, rec.Invalidations())
	})
}

func TestLayer_EvictIsIdempotent(t *testing.T) {
	stores(t, func(t *testing.T, s cache.Store) {
		ctx := context.Background()
		rec := metrics.NewRecorder()
		l := cache.New(s, 0, zerolog.Nop(), rec)

		l.Evict(ctx, cache.PlayerSeasonStats, cache.Key(99))
		l.Evict(ctx, cache.PlayerSeasonStats, cache.Key(99))
		l.ClearRegion(ctx, cache.AllTeamSeasonStats)
		l.InvalidateStatsCache(ctx, 99, 98)
		l.InvalidateStatsCache(ctx, 99, 98)

		for _, r := range cache.Regions() {
			assert.Zero(t, rec.Cache(string(r)).Errors)
		}
	})
}

func TestLayer_ClearAll(t *testing.T) {
	stores(t, func(t *testing.T, s cache.Store) {
		ctx := context.Background()
		l := cache.New(s, 0, zerolog.Nop(), nil)

		l.Put(ctx, cache.PlayerSeasonStats, cache.Key(1), model.PlayerAggregateStats{PlayerID: 1})
		l.Put(ctx, cache.TeamSeasonStats, cache.Key(1), model.TeamAggregateStats{TeamID: 1})
		l.Put(ctx, cache.AllTeamSeasonStats, cache.AllTeamsKey, []model.TeamAggregateStats{})

		l.ClearAll(ctx)

		var v any
		for _, r := range cache.Regions() {
			key := cache.Key(1)
			if r == cache.AllTeamSeasonStats {
				key = cache.AllTeamsKey
			}
			assert.False(t, l.Get(ctx, r, key, &v), "region %s", r)
		}
	})
}

func TestRedisStore_FlushLeavesForeignKeys(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("other:key", "x"))
	require.NoError(t, s.Set(ctx, cache.PlayerSeasonStats, "1", []byte("{}"), 0))

	require.NoError(t, s.Flush(ctx))

	assert.True(t, mr.Exists("other:key"))
	assert.False(t, mr.Exists("test:playerSeasonStats:1"))
}

func TestRedisStore_PrefixWithGlobCharacters(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := cache.NewRedisStore(client, "st*[a]")
	ctx := context.Background()

	require.NoError(t, mr.Set("stats:playerSeasonStats:1", "x"))
	require.NoError(t, mr.Set("sta:teamSeasonStats:1", "x"))
	require.NoError(t, s.Set(ctx, cache.PlayerSeasonStats, "1", []byte("{}"), 0))
	require.NoError(t, s.Set(ctx, cache.TeamSeasonStats, "1", []byte("{}"), 0))

	require.NoError(t, s.DeleteRegion(ctx, cache.PlayerSeasonStats))
	assert.True(t, mr.Exists("stats:playerSeasonStats:1"))
	assert.False(t, mr.Exists("st*[a]:playerSeasonStats:1"))

	require.NoError(t, s.Flush(ctx))
	assert.True(t, mr.Exists("sta:teamSeasonStats:1"))
	assert.False(t, mr.Exists("st*[a]:teamSeasonStats:1"))
}

func TestRedisStore_TTL(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, cache.TeamSeasonStats, "3", []byte("{}"), time.Minute))

	_, ok, err := s.Get(ctx, cache.TeamSeasonStats, "3")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Get(ctx, cache.TeamSeasonStats, "3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_TTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := cache.NewMemoryStore(clock)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, cache.PlayerSeasonStats, "1", []byte("{}"), time.Minute))

	_, ok, _ := s.Get(ctx, cache.PlayerSeasonStats, "1")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok, _ = s.Get(ctx, cache.PlayerSeasonStats, "1")
	assert.False(t, ok)
}

func TestLayer_StoreFailureIsAMiss(t *testing.T) {
	s, mr := newRedisStore(t)
	rec := metrics.NewRecorder()
	l := cache.New(s, 0, zerolog.Nop(), rec)
	ctx := context.Background()

	var v model.PlayerAggregateStats
	l.Put(ctx, cache.TeamSeasonStats, cache.Key(5), v)
	mr.SetError("down")

	assert.False(t, l.Get(ctx, cache.PlayerSeasonStats, cache.Key(1), &v))
	l.Put(ctx, cache.PlayerSeasonStats, cache.Key(1), v)
	l.InvalidateStatsCache(ctx, 1, 1)

	assert.Equal(t, 3, rec.Cache(string(cache.PlayerSeasonStats)).Errors)
	assert.Equal(t, 1, rec.Cache(string(cache.TeamSeasonStats)).Errors)
	assert.Equal(t, 1, rec.Cache(string(cache.AllTeamSeasonStats)).Errors)
}

type brokenStore struct{ cache.MemoryStore }

func (*brokenStore) Get(context.Context, cache.Region, string) ([]byte, bool, error) {
	return []byte("not json"), true, nil
}

func TestLayer_UndecodableEntryIsAMiss(t *testing.T) {
	rec := metrics.NewRecorder()
	l := cache.New(&brokenStore{}, 0, zerolog.Nop(), rec)
	var v model.PlayerAggregateStats
	assert.False(t, l.Get(context.Background(), cache.PlayerSeasonStats, "1", &v))
	assert.Equal(t, 1, rec.Cache(string(cache.PlayerSeasonStats)).Errors)
	assert.Equal(t, 1, rec.Cache(string(cache.PlayerSeasonStats)).Misses)
}
