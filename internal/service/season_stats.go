package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/maxviazov/season-stats-service/internal/aggregate"
	"github.com/maxviazov/season-stats-service/internal/cache"
	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
)

// noSeason marks "no current season" in RefreshSeason bookkeeping.
const noSeason int64 = 0

// SeasonStatsDeps groups the collaborators of the season-stats read service.
type SeasonStatsDeps struct {
	Teams   repository.TeamRepository
	Players repository.PlayerRepository
	Seasons repository.SeasonRepository
	Stats   repository.StatsRepository
	Lock    *StatsLock
	Cache   *cache.Layer
	Clock   clockwork.Clock
}

type seasonStatsService struct {
	teams   repository.TeamRepository
	players repository.PlayerRepository
	seasons repository.SeasonRepository
	stats   repository.StatsRepository
	lock    *StatsLock
	cache   *cache.Layer
	clock   clockwork.Clock
	group   singleflight.Group
	log     zerolog.Logger

	mu       sync.Mutex
	lastSeen int64
	seenOnce bool
}

func NewSeasonStatsService(d SeasonStatsDeps, logger zerolog.Logger) SeasonStatsService {
	l := logger.With().Str("module", "service").Str("component", "season_stats").Logger()
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &seasonStatsService{
		teams:   d.Teams,
		players: d.Players,
		seasons: d.Seasons,
		stats:   d.Stats,
		lock:    d.Lock,
		cache:   d.Cache,
		clock:   clock,
		log:     l,
	}
}

func (s *seasonStatsService) GetPlayerSeasonStats(ctx context.Context, playerID int64) (model.PlayerAggregateStats, error) {
	if playerID <= 0 {
		return model.PlayerAggregateStats{}, NewInvalidInputError([]FieldError{{Field: "player_id", Message: "must be > 0"}})
	}
	unlock, err := s.lock.RLock(ctx)
	if err != nil {
		return model.PlayerAggregateStats{}, err
	}

	key := cache.Key(playerID)
	var out model.PlayerAggregateStats
	if s.cache.Get(ctx, cache.PlayerSeasonStats, key, &out) {
		unlock()
		return out, nil
	}

	v, err := s.flight(ctx, "player:"+key, unlock, func(ctx context.Context) (any, error) {
		player, err := s.players.GetByID(ctx, playerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFound("player", playerID)
			}
			return nil, err
		}
		season, err := currentSeason(ctx, s.seasons, s.clock)
		if err != nil {
			return nil, err
		}
		rows, err := s.stats.FindByPlayerInRange(ctx, playerID, season.StartDate, season.EndDate)
		if err != nil {
			return nil, err
		}
		agg := aggregate.PlayerAverages(player, rows)
		s.cache.Put(ctx, cache.PlayerSeasonStats, key, agg)
		s.log.Debug().Int64("player_id", playerID).Int("games", agg.GamesPlayed).Msg("player season stats computed")
		return agg, nil
	})
	if err != nil {
		return model.PlayerAggregateStats{}, err
	}
	return v.(model.PlayerAggregateStats), nil
}

func (s *seasonStatsService) GetTeamSeasonStats(ctx context.Context, teamID int64) (model.TeamAggregateStats, error) {
	if teamID <= 0 {
		return model.TeamAggregateStats{}, NewInvalidInputError([]FieldError{{Field: "team_id", Message: "must be > 0"}})
	}
	unlock, err := s.lock.RLock(ctx)
	if err != nil {
		return model.TeamAggregateStats{}, err
	}
	return s.teamSeasonStats(ctx, teamID, nil, unlock)
}

// teamSeasonStats runs under the shared lock and calls unlock once it no longer needs it.
// A nil team is resolved by id.
func (s *seasonStatsService) teamSeasonStats(ctx context.Context, teamID int64, team *model.Team, unlock func()) (model.TeamAggregateStats, error) {
	key := cache.Key(teamID)
	var out model.TeamAggregateStats
	if s.cache.Get(ctx, cache.TeamSeasonStats, key, &out) {
		unlock()
		return out, nil
	}

	v, err := s.flight(ctx, "team:"+key, unlock, func(ctx context.Context) (any, error) {
		var t model.Team
		if team != nil {
			t = *team
		} else {
			found, err := s.teams.GetByID(ctx, teamID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, notFound("team", teamID)
				}
				return nil, err
			}
			t = found
		}
		season, err := currentSeason(ctx, s.seasons, s.clock)
		if err != nil {
			return nil, err
		}
		rows, err := s.stats.FindByTeamInRange(ctx, teamID, season.StartDate, season.EndDate)
		if err != nil {
			return nil, err
		}
		agg := aggregate.TeamAverages(t, rows)
		s.cache.Put(ctx, cache.TeamSeasonStats, key, agg)
		s.log.Debug().Int64("team_id", teamID).Int("players", agg.NumberOfPlayers).Msg("team season stats computed")
		return agg, nil
	})
	if err != nil {
		return model.TeamAggregateStats{}, err
	}
	return v.(model.TeamAggregateStats), nil
}

// GetAllTeamSeasonStats returns one entry per team in team listing order. Per-team entries are
// cached as a side effect of building the list.
func (s *seasonStatsService) GetAllTeamSeasonStats(ctx context.Context) ([]model.TeamAggregateStats, error) {
	unlock, err := s.lock.RLock(ctx)
	if err != nil {
		return nil, err
	}

	var out []model.TeamAggregateStats
	if s.cache.Get(ctx, cache.AllTeamSeasonStats, cache.AllTeamsKey, &out) {
		unlock()
		return out, nil
	}

	v, err := s.flight(ctx, "all", unlock, func(ctx context.Context) (any, error) {
		teams, err := s.teams.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		list := make([]model.TeamAggregateStats, 0, len(teams))
		for i := range teams {
			agg, err := s.teamSeasonStats(ctx, teams[i].ID, &teams[i], func() {})
			if err != nil {
				return nil, fmt.Errorf("team %d: %w", teams[i].ID, err)
			}
			list = append(list, agg)
		}
		s.cache.Put(ctx, cache.AllTeamSeasonStats, cache.AllTeamsKey, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.TeamAggregateStats), nil
}

// flight computes fn once per key across concurrent callers. fn runs detached from any single
// caller's cancellation, and each caller waits on its own ctx. The shared lock stays held until
// fn returns, even when the caller gives up early, so a write cannot slip in between the
// computation and its cache fill.
func (s *seasonStatsService) flight(ctx context.Context, key string, unlock func(), fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) { return fn(detached) })
	select {
	case res := <-ch:
		unlock()
		return res.Val, res.Err
	case <-ctx.Done():
		go func() {
			<-ch
			unlock()
		}()
		return nil, ctx.Err()
	}
}

// RefreshSeason flushes every region when the current season changed since the previous call.
// The first call always counts as a change.
func (s *seasonStatsService) RefreshSeason(ctx context.Context) (bool, error) {
	unlock, err := s.lock.Lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	id := noSeason
	season, err := s.seasons.FindByDate(ctx, s.clock.Now())
	switch {
	case err == nil:
		id = season.ID
	case errors.Is(err, repository.ErrNotFound):
	default:
		return false, err
	}

	s.mu.Lock()
	changed := !s.seenOnce || s.lastSeen != id
	s.lastSeen, s.seenOnce = id, true
	s.mu.Unlock()

	if !changed {
		return false, nil
	}
	s.cache.ClearAll(context.WithoutCancel(ctx))
	s.log.Info().Int64("season_id", id).Msg("current season changed, aggregates flushed")
	return true, nil
}

func (s *seasonStatsService) ClearCache(ctx context.Context) error {
	unlock, err := s.lock.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	s.cache.ClearAll(context.WithoutCancel(ctx))
	return nil
}

// currentSeason resolves the season whose window contains today's date on clock.
func currentSeason(ctx context.Context, seasons repository.SeasonRepository, clock clockwork.Clock) (model.Season, error) {
	now := clock.Now()
	season, err := seasons.FindByDate(ctx, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Season{}, fmt.Errorf("current season for %s: %w", now.Format("2006-01-02"), repository.ErrNotFound)
		}
		return model.Season{}, err
	}
	return season, nil
}
