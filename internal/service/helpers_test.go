package service_test

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/season-stats-service/internal/cache"
	"github.com/maxviazov/season-stats-service/internal/metrics"
	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
	"github.com/maxviazov/season-stats-service/internal/repository/memory"
	"github.com/maxviazov/season-stats-service/internal/service"
)

var today = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

// countingPlayers and countingGames count lookups so tests can assert none happened.
type countingPlayers struct {
	repository.PlayerRepository
	lookups atomic.Int64
}

func (c *countingPlayers) GetByID(ctx context.Context, id int64) (model.Player, error) {
	c.lookups.Add(1)
	return c.PlayerRepository.GetByID(ctx, id)
}

type countingGames struct {
	repository.GameRepository
	lookups atomic.Int64
}

func (c *countingGames) GetByID(ctx context.Context, id int64) (model.Game, error) {
	c.lookups.Add(1)
	return c.GameRepository.GetByID(ctx, id)
}

type env struct {
	store   *memory.Store
	players *countingPlayers
	games   *countingGames
	clock   clockwork.FakeClock
	lock    *service.StatsLock
	cache   *cache.Layer
	rec     *metrics.Recorder

	stats       service.StatsService
	seasonStats service.SeasonStatsService
	teamsSvc    service.TeamService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zerolog.New(io.Discard)
	store := memory.NewStore()
	clock := clockwork.NewFakeClockAt(today)
	rec := metrics.NewRecorder()
	layer := cache.New(cache.NewMemoryStore(clock), 0, logger, rec)
	lock := service.NewStatsLock(time.Second)

	e := &env{
		store:   store,
		players: &countingPlayers{PlayerRepository: store.Players()},
		games:   &countingGames{GameRepository: store.Games()},
		clock:   clock,
		lock:    lock,
		cache:   layer,
		rec:     rec,
	}
	e.stats = service.NewStatsService(service.StatsDeps{
		Stats:   store.Stats(),
		Players: e.players,
		Games:   e.games,
		Tx:      store.TxManager(),
		Lock:    lock,
		Cache:   layer,
		Metrics: rec,
	}, logger)
	e.seasonStats = service.NewSeasonStatsService(service.SeasonStatsDeps{
		Teams:   store.Teams(),
		Players: store.Players(),
		Seasons: store.Seasons(),
		Stats:   store.Stats(),
		Lock:    lock,
		Cache:   layer,
		Clock:   clock,
	}, logger)
	e.teamsSvc = service.NewTeamService(store.Teams(), store.Players(), lock, layer, logger)
	return e
}

func (e *env) season(t *testing.T, year int, start, end time.Time) model.Season {
	t.Helper()
	s, err := e.store.Seasons().Create(context.Background(), model.Season{Year: year, StartDate: start, EndDate: end})
	require.NoError(t, err)
	return s
}

// currentSeason registers the 2023-24 season, which contains today.
func (e *env) currentSeason(t *testing.T) model.Season {
	return e.season(t, 2024,
		time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC))
}

func (e *env) team(t *testing.T, name string) model.Team {
	t.Helper()
	tm, err := e.store.Teams().Create(context.Background(), model.Team{Name: name, City: name + " City"})
	require.NoError(t, err)
	return tm
}

func (e *env) player(t *testing.T, teamID int64, last string) model.Player {
	t.Helper()
	p, err := e.store.Players().Create(context.Background(), model.Player{TeamID: teamID, FirstName: "Test", LastName: last, Position: "SF"})
	require.NoError(t, err)
	return p
}

func (e *env) game(t *testing.T, home, away int64, date time.Time) model.Game {
	t.Helper()
	g, err := e.store.Games().Create(context.Background(), model.Game{Date: date, HomeTeamID: home, AwayTeamID: away})
	require.NoError(t, err)
	return g
}

func ptr[T any](v T) *T { return &v }

// input builds a valid submission with the given points and zero elsewhere.
func input(playerID, gameID int64, points int) service.StatsInput {
	return service.StatsInput{
		PlayerID:      ptr(playerID),
		GameID:        ptr(gameID),
		Points:        ptr(points),
		Rebounds:      ptr(0),
		Assists:       ptr(0),
		Steals:        ptr(0),
		Blocks:        ptr(0),
		Fouls:         ptr(0),
		Turnovers:     ptr(0),
		MinutesPlayed: ptr(30.0),
	}
}

func hasField(err error, field string) bool {
	for _, fe := range service.FieldErrors(err) {
		if fe.Field == field {
			return true
		}
	}
	return false
}
