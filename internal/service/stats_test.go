package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/season-stats-service/internal/cache"
	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
	"github.com/maxviazov/season-stats-service/internal/service"
)

func TestStatsService_LogStats_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(in *service.StatsInput)
		field  string
	}{
		{"fouls above six", func(in *service.StatsInput) { in.Fouls = ptr(7) }, "fouls"},
		{"negative points", func(in *service.StatsInput) { in.Points = ptr(-1) }, "points"},
		{"negative turnovers", func(in *service.StatsInput) { in.Turnovers = ptr(-2) }, "turnovers"},
		{"minutes above 48", func(in *service.StatsInput) { in.MinutesPlayed = ptr(48.5) }, "minutes_played"},
		{"negative minutes", func(in *service.StatsInput) { in.MinutesPlayed = ptr(-0.1) }, "minutes_played"},
		{"missing rebounds", func(in *service.StatsInput) { in.Rebounds = nil }, "rebounds"},
		{"missing player", func(in *service.StatsInput) { in.PlayerID = nil }, "player_id"},
		{"zero game id", func(in *service.StatsInput) { in.GameID = ptr(int64(0)) }, "game_id"},
		{"non-positive replace id", func(in *service.StatsInput) { in.ID = ptr(int64(-3)) }, "id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := input(1, 2, 10)
			tc.mutate(&in)
			_, err := e.stats.LogStats(ctx, in)
			require.ErrorIs(t, err, service.ErrInvalidInput)
			assert.True(t, hasField(err, tc.field), "missing field error %s in %v", tc.field, service.FieldErrors(err))
		})
	}

	// Rejected before any lookup.
	assert.Zero(t, e.players.lookups.Load())
	assert.Zero(t, e.games.lookups.Load())
}

func TestStatsService_LogStats_BoundaryValuesAccepted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tm := e.team(t, "Lakers")
	other := e.team(t, "Celtics")
	p := e.player(t, tm.ID, "James")
	g := e.game(t, tm.ID, other.ID, today)

	in := input(p.ID, g.ID, 0)
	in.Fouls = ptr(6)
	in.MinutesPlayed = ptr(48.0)
	out, err := e.stats.LogStats(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, out.ID)
	assert.Equal(t, 6, out.Fouls)
	require.NotNil(t, out.Player)
	require.NotNil(t, out.Game)
	assert.Equal(t, g.ID, out.Game.ID)
}

func TestStatsService_LogStats_NotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tm := e.team(t, "Lakers")
	other := e.team(t, "Celtics")
	p := e.player(t, tm.ID, "James")
	g := e.game(t, tm.ID, other.ID, today)

	_, err := e.stats.LogStats(ctx, input(999, g.ID, 10))
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, err.Error(), "player 999")

	_, err = e.stats.LogStats(ctx, input(p.ID, 999, 10))
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, err.Error(), "game 999")

	replace := input(p.ID, g.ID, 10)
	replace.ID = ptr(int64(12345))
	_, err = e.stats.LogStats(ctx, replace)
	require.ErrorIs(t, err, repository.ErrNotFound)

	ok, failed := e.rec.StatsWrites()
	assert.Equal(t, 0, ok)
	assert.Equal(t, 3, failed)
	assert.Zero(t, e.rec.Invalidations())
}

func TestStatsService_LogStats_DuplicateRow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tm := e.team(t, "Lakers")
	other := e.team(t, "Celtics")
	p := e.player(t, tm.ID, "James")
	g := e.game(t, tm.ID, other.ID, today)

	_, err := e.stats.LogStats(ctx, input(p.ID, g.ID, 10))
	require.NoError(t, err)
	_, err = e.stats.LogStats(ctx, input(p.ID, g.ID, 12))
	require.ErrorIs(t, err, repository.ErrAlreadyExists)
	assert.Equal(t, 1, e.rec.Invalidations())
}

func TestStatsService_LogStats_InvalidatesBeforeReturn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.currentSeason(t)
	tm := e.team(t, "Lakers")
	other := e.team(t, "Celtics")
	p := e.player(t, tm.ID, "James")
	g1 := e.game(t, tm.ID, other.ID, today.AddDate(0, 0, -2))
	g2 := e.game(t, other.ID, tm.ID, today.AddDate(0, 0, -1))

	_, err := e.stats.LogStats(ctx, input(p.ID, g1.ID, 30))
	require.NoError(t, err)

	// Warm every region.
	ps, err := e.seasonStats.GetPlayerSeasonStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, ps.AveragePoints)
	ts, err := e.seasonStats.GetTeamSeasonStats(ctx, tm.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, ts.AveragePoints)
	all, err := e.seasonStats.GetAllTeamSeasonStats(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = e.stats.LogStats(ctx, input(p.ID, g2.ID, 24))
	require.NoError(t, err)

	ps, err = e.seasonStats.GetPlayerSeasonStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 27.0, ps.AveragePoints)
	assert.Equal(t, 2, ps.GamesPlayed)

	ts, err = e.seasonStats.GetTeamSeasonStats(ctx, tm.ID)
	require.NoError(t, err)
	assert.Equal(t, 27.0, ts.AveragePoints)
	assert.Equal(t, 2, ts.GamesPlayed)

	all, err = e.seasonStats.GetAllTeamSeasonStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 27.0, all[0].AveragePoints)
}

func TestStatsService_LogStats_CanceledContextStillInvalidates(t *testing.T) {
	e := newEnv(t)
	e.currentSeason(t)
	tm := e.team(t, "Lakers")
	other := e.team(t, "Celtics")
	p := e.player(t, tm.ID, "James")
	g := e.game(t, tm.ID, other.ID, today)

	_, err := e.seasonStats.GetPlayerSeasonStats(context.Background(), p.ID)
	require.NoError(t, err)

	// Canceled contexts only matter to the lock wait and the store, neither of which watches ctx here.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.stats.LogStats(ctx, input(p.ID, g.ID, 18))
	if err != nil {
		require.True(t, errors.Is(err, context.Canceled), "unexpected error: %v", err)
		return
	}
	var cached model.PlayerAggregateStats
	assert.False(t, e.cache.Get(context.Background(), cache.PlayerSeasonStats, cache.Key(p.ID), &cached))
}

func TestStatsService_LogStats_ReplaceMovesRowToAnotherPlayer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.currentSeason(t)
	lakers := e.team(t, "Lakers")
	celtics := e.team(t, "Celtics")
	james := e.player(t, lakers.ID, "James")
	tatum := e.player(t, celtics.ID, "Tatum")
	g := e.game(t, lakers.ID, celtics.ID, today)

	row, err := e.stats.LogStats(ctx, input(james.ID, g.ID, 30))
	require.NoError(t, err)

	before, err := e.seasonStats.GetPlayerSeasonStats(ctx, james.ID)
	require.NoError(t, err)
	require.Equal(t, 1, before.GamesPlayed)
	_, err = e.seasonStats.GetTeamSeasonStats(ctx, lakers.ID)
	require.NoError(t, err)

	moved := input(tatum.ID, g.ID, 30)
	moved.ID = ptr(row.ID)
	out, err := e.stats.LogStats(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, row.ID, out.ID)

	after, err := e.seasonStats.GetPlayerSeasonStats(ctx, james.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.GamesPlayed)

	lakersAfter, err := e.seasonStats.GetTeamSeasonStats(ctx, lakers.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, lakersAfter.NumberOfPlayers)

	tatumStats, err := e.seasonStats.GetPlayerSeasonStats(ctx, tatum.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tatumStats.GamesPlayed)
}

func TestStatsService_LogBatchStats_IndependentEntries(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tm := e.team(t, "Lakers")
	other := e.team(t, "Celtics")
	p1 := e.player(t, tm.ID, "James")
	p2 := e.player(t, tm.ID, "Davis")
	g := e.game(t, tm.ID, other.ID, today)

	bad := input(p2.ID, g.ID, 5)
	bad.Fouls = ptr(9)
	entries := []service.StatsInput{
		input(p1.ID, 777, 20), // game id is taken from the batch, not the entry
		bad,
		input(999, 0, 5),
	}
	res := e.stats.LogBatchStats(ctx, g.ID, entries)
	require.Len(t, res, 3)

	require.NoError(t, res[0].Err)
	assert.Equal(t, g.ID, res[0].Stats.GameID)
	assert.Equal(t, 0, res[0].Index)

	require.ErrorIs(t, res[1].Err, service.ErrInvalidInput)
	assert.Equal(t, 1, res[1].Index)

	require.ErrorIs(t, res[2].Err, repository.ErrNotFound)

	rows, err := e.stats.ListStatsByGame(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, p1.ID, rows[0].PlayerID)
}

func TestStatsService_Listings(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tm := e.team(t, "Lakers")
	other := e.team(t, "Celtics")
	p := e.player(t, tm.ID, "James")
	g1 := e.game(t, tm.ID, other.ID, today.AddDate(0, 0, -3))
	g2 := e.game(t, tm.ID, other.ID, today.AddDate(0, 0, -1))

	for _, g := range []model.Game{g1, g2} {
		_, err := e.stats.LogStats(ctx, input(p.ID, g.ID, 11))
		require.NoError(t, err)
	}

	byPlayer, err := e.stats.ListStatsByPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, byPlayer, 2)

	byGame, err := e.stats.ListStatsByGame(ctx, g2.ID)
	require.NoError(t, err)
	assert.Len(t, byGame, 1)

	_, err = e.stats.ListStatsByPlayer(ctx, 4242)
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = e.stats.ListStatsByGame(ctx, 4242)
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = e.stats.ListStatsByGame(ctx, 0)
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestStatsService_LogStats_LockTimeout(t *testing.T) {
	e := newEnv(t)
	tm := e.team(t, "Lakers")
	other := e.team(t, "Celtics")
	p := e.player(t, tm.ID, "James")
	g := e.game(t, tm.ID, other.ID, today)

	unlock, err := e.lock.RLock(context.Background())
	require.NoError(t, err)
	defer unlock()

	start := time.Now()
	_, err = e.stats.LogStats(context.Background(), input(p.ID, g.ID, 10))
	require.ErrorIs(t, err, service.ErrLockTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)
}
