package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/season-stats-service/internal/cache"
	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
)

// teamService holds team use-case logic: validation + orchestration, no transport / SQL details.
type teamService struct {
	teams   repository.TeamRepository
	players repository.PlayerRepository
	lock    *StatsLock
	cache   *cache.Layer
	log     zerolog.Logger
}

func NewTeamService(teams repository.TeamRepository, players repository.PlayerRepository, lock *StatsLock, c *cache.Layer, logger zerolog.Logger) TeamService {
	l := logger.With().Str("module", "service").Str("component", "team").Logger()
	return &teamService{teams: teams, players: players, lock: lock, cache: c, log: l}
}

// CreateTeam adds a team. A new team changes the all-teams listing, so that entry is dropped
// under the exclusive lock like any other aggregate-affecting write.
func (s *teamService) CreateTeam(ctx context.Context, name, city string) (model.Team, error) {
	start := time.Now()
	original := name
	name = strings.TrimSpace(name)
	city = strings.TrimSpace(city)

	var ferrs []FieldError
	if name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	} else if ln := len([]rune(name)); ln < 2 || ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "length must be between 2 and 50"})
	}
	if ln := len([]rune(city)); ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "city", Message: "length must be <= 50"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Str("name_raw", original).Interface("field_errors", ferrs).Msg("team validation failed")
		return model.Team{}, err
	}

	unlock, err := s.lock.Lock(ctx)
	if err != nil {
		return model.Team{}, err
	}
	defer unlock()

	out, err := s.teams.Create(ctx, model.Team{Name: name, City: city})
	if err != nil {
		// Repository surfaces domain-level errors already, do not wrap.
		s.log.Error().Err(err).Str("name", name).Msg("create team failed")
		return model.Team{}, err
	}
	s.cache.ClearRegion(context.WithoutCancel(ctx), cache.AllTeamSeasonStats)
	s.log.Info().Dur("took", time.Since(start)).Int64("team_id", out.ID).Msg("team created")
	return out, nil
}

func (s *teamService) GetTeam(ctx context.Context, id int64) (model.Team, error) {
	if id <= 0 {
		return model.Team{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	t, err := s.teams.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Team{}, notFound("team", id)
	}
	return t, err
}

func (s *teamService) ListTeams(ctx context.Context, page repository.Page) (repository.PageResult[model.Team], error) {
	p := normalizePage(page)
	res, err := s.teams.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list teams failed")
		return repository.PageResult[model.Team]{}, err
	}
	return res, nil
}

func (s *teamService) ListPlayers(ctx context.Context, teamID int64, page repository.Page) (repository.PageResult[model.Player], error) {
	if teamID <= 0 {
		return repository.PageResult[model.Player]{}, NewInvalidInputError([]FieldError{{Field: "team_id", Message: "must be > 0"}})
	}
	ok, err := s.teams.Exists(ctx, teamID)
	if err != nil {
		return repository.PageResult[model.Player]{}, err
	}
	if !ok {
		return repository.PageResult[model.Player]{}, notFound("team", teamID)
	}
	p := normalizePage(page)
	res, err := s.players.ListByTeam(ctx, teamID, p)
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", teamID).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list players failed")
		return repository.PageResult[model.Player]{}, err
	}
	return res, nil
}
