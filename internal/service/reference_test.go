package service_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/season-stats-service/internal/repository"
	"github.com/maxviazov/season-stats-service/internal/service"
)

func TestTeamService_CreateTeam_Validation(t *testing.T) {
	e := newEnv(t)

	cases := []struct {
		name      string
		input     string
		city      string
		wantErr   bool
		wantField string
	}{
		{"empty", "", "", true, "name"},
		{"spaces", "   ", "", true, "name"},
		{"too short", "A", "", true, "name"},
		{"too long", strings.Repeat("x", 51), "", true, "name"},
		{"city too long", "Lakers", strings.Repeat("y", 51), true, "city"},
		{"ok", "Lakers", "Los Angeles", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := e.teamsSvc.CreateTeam(context.Background(), tc.input, tc.city)
			if !tc.wantErr {
				require.NoError(t, err)
				assert.NotZero(t, out.ID)
				return
			}
			require.ErrorIs(t, err, service.ErrInvalidInput)
			assert.True(t, hasField(err, tc.wantField), "fields: %+v", service.FieldErrors(err))
		})
	}
}

func TestTeamService_DuplicatePropagates(t *testing.T) {
	e := newEnv(t)
	_, err := e.teamsSvc.CreateTeam(context.Background(), "Lakers", "LA")
	require.NoError(t, err)
	_, err = e.teamsSvc.CreateTeam(context.Background(), "Lakers", "LA")
	require.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestTeamService_GetAndListPlayers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tm := e.team(t, "Lakers")
	e.player(t, tm.ID, "James")
	e.player(t, tm.ID, "Davis")

	got, err := e.teamsSvc.GetTeam(ctx, tm.ID)
	require.NoError(t, err)
	assert.Equal(t, tm, got)

	_, err = e.teamsSvc.GetTeam(ctx, 0)
	require.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = e.teamsSvc.GetTeam(ctx, 404)
	require.ErrorIs(t, err, repository.ErrNotFound)

	res, err := e.teamsSvc.ListPlayers(ctx, tm.ID, repository.Page{Limit: -5, Offset: -10})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Items, 2)

	_, err = e.teamsSvc.ListPlayers(ctx, 404, repository.Page{})
	require.ErrorIs(t, err, repository.ErrNotFound)

	teams, err := e.teamsSvc.ListTeams(ctx, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, teams.Total)
}

func TestPlayerService_CreatePlayer_Validation(t *testing.T) {
	e := newEnv(t)
	svc := service.NewPlayerService(e.store.Players(), e.store.Teams(), zerolog.New(io.Discard))
	tm := e.team(t, "Lakers")

	cases := []struct {
		name      string
		teamID    int64
		first     string
		last      string
		pos       string
		wantField string
	}{
		{"bad team id", 0, "LeBron", "James", "SF", "team_id"},
		{"missing team", 999, "LeBron", "James", "SF", "team_id"},
		{"empty first", tm.ID, " ", "James", "SF", "first_name"},
		{"long last", tm.ID, "LeBron", strings.Repeat("z", 51), "SF", "last_name"},
		{"bad position", tm.ID, "LeBron", "James", "QB", "position"},
		{"ok", tm.ID, "LeBron", "James", " sf ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := svc.CreatePlayer(context.Background(), tc.teamID, tc.first, tc.last, tc.pos)
			if tc.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "SF", out.Position)
				require.NotNil(t, out.Team)
				assert.Equal(t, "Lakers", out.Team.Name)
				return
			}
			require.ErrorIs(t, err, service.ErrInvalidInput)
			assert.True(t, hasField(err, tc.wantField), "fields: %+v", service.FieldErrors(err))
		})
	}

	_, err := svc.GetPlayer(context.Background(), 12345)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGameService_CreateGame_Validation(t *testing.T) {
	e := newEnv(t)
	svc := service.NewGameService(e.store.Games(), e.store.Teams(), e.store.TxManager(), zerolog.New(io.Discard))
	home := e.team(t, "Lakers")
	away := e.team(t, "Celtics")

	cases := []struct {
		name      string
		date      time.Time
		home      int64
		away      int64
		homeScore int
		wantField string
	}{
		{"same teams", today, home.ID, home.ID, 0, "teams"},
		{"zero date", time.Time{}, home.ID, away.ID, 0, "date"},
		{"bad home id", today, 0, away.ID, 0, "home_team_id"},
		{"missing away team", today, home.ID, 999, 0, "away_team_id"},
		{"negative score", today, home.ID, away.ID, -1, "home_score"},
		{"ok", today, home.ID, away.ID, 101, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := svc.CreateGame(context.Background(), tc.date, tc.home, tc.away, tc.homeScore, 99)
			if tc.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), out.Date)
				return
			}
			require.ErrorIs(t, err, service.ErrInvalidInput)
			assert.True(t, hasField(err, tc.wantField), "fields: %+v", service.FieldErrors(err))
		})
	}

	games, err := svc.ListGames(context.Background(), repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, games.Total)
}

func TestSeasonService_CreateRunsRefreshHook(t *testing.T) {
	e := newEnv(t)
	calls := 0
	hook := func(context.Context) (bool, error) {
		calls++
		return true, nil
	}
	svc := service.NewSeasonService(e.store.Seasons(), clockwork.NewFakeClockAt(today), hook, zerolog.New(io.Discard))
	ctx := context.Background()

	_, err := svc.CreateSeason(ctx, 2024, today.AddDate(0, 0, 1), today)
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Zero(t, calls)

	_, err = svc.CurrentSeason(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	s, err := svc.CreateSeason(ctx, 2024, today.AddDate(0, -3, 0), today.AddDate(0, 5, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	cur, err := svc.CurrentSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.ID, cur.ID)

	all, err := svc.ListSeasons(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.CreateSeason(ctx, 2024, today, today)
	require.ErrorIs(t, err, repository.ErrAlreadyExists)
}
