package service

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
)

// SeasonCreatedHook runs after a season is persisted. Wiring passes SeasonStatsService.RefreshSeason
// so a new season covering today takes effect without waiting for the scheduler.
type SeasonCreatedHook func(ctx context.Context) (bool, error)

type seasonService struct {
	seasons repository.SeasonRepository
	clock   clockwork.Clock
	onNew   SeasonCreatedHook
	log     zerolog.Logger
}

func NewSeasonService(seasons repository.SeasonRepository, clock clockwork.Clock, onNew SeasonCreatedHook, logger zerolog.Logger) SeasonService {
	l := logger.With().Str("module", "service").Str("component", "season").Logger()
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &seasonService{seasons: seasons, clock: clock, onNew: onNew, log: l}
}

func (s *seasonService) CreateSeason(ctx context.Context, year int, start, end time.Time) (model.Season, error) {
	var ferrs []FieldError
	if year < 1900 || year > 2200 {
		ferrs = append(ferrs, FieldError{Field: "year", Message: "must be between 1900 and 2200"})
	}
	if start.IsZero() {
		ferrs = append(ferrs, FieldError{Field: "start_date", Message: "must be set"})
	}
	if end.IsZero() {
		ferrs = append(ferrs, FieldError{Field: "end_date", Message: "must be set"})
	}
	if !start.IsZero() && !end.IsZero() && model.DateOf(end).Before(model.DateOf(start)) {
		ferrs = append(ferrs, FieldError{Field: "end_date", Message: "must not be before start_date"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("season validation failed")
		return model.Season{}, err
	}

	out, err := s.seasons.Create(ctx, model.Season{Year: year, StartDate: model.DateOf(start), EndDate: model.DateOf(end)})
	if err != nil {
		s.log.Error().Err(err).Int("year", year).Msg("create season failed")
		return model.Season{}, err
	}
	s.log.Info().Int64("season_id", out.ID).Int("year", year).Msg("season created")

	if s.onNew != nil {
		// The season is already stored; a failed refresh is left to the scheduler.
		if _, err := s.onNew(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Int64("season_id", out.ID).Msg("season refresh after create failed")
		}
	}
	return out, nil
}

func (s *seasonService) ListSeasons(ctx context.Context) ([]model.Season, error) {
	out, err := s.seasons.FindAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list seasons failed")
		return nil, err
	}
	return out, nil
}

func (s *seasonService) CurrentSeason(ctx context.Context) (model.Season, error) {
	return currentSeason(ctx, s.seasons, s.clock)
}
