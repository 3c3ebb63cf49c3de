package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
)

type gameService struct {
	games repository.GameRepository
	teams repository.TeamRepository
	tx    repository.TxManager
	log   zerolog.Logger
}

func NewGameService(games repository.GameRepository, teams repository.TeamRepository, tx repository.TxManager, logger zerolog.Logger) GameService {
	l := logger.With().Str("module", "service").Str("component", "game").Logger()
	return &gameService{games: games, teams: teams, tx: tx, log: l}
}

func (s *gameService) CreateGame(ctx context.Context, date time.Time, homeID, awayID int64, homeScore, awayScore int) (model.Game, error) {
	var ferrs []FieldError
	if homeID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "home_team_id", Message: "must be > 0"})
	}
	if awayID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "away_team_id", Message: "must be > 0"})
	}
	if homeID > 0 && awayID > 0 && homeID == awayID {
		ferrs = append(ferrs, FieldError{Field: "teams", Message: "home and away must differ"})
	}
	if date.IsZero() {
		ferrs = append(ferrs, FieldError{Field: "date", Message: "must be set"})
	}
	if homeScore < 0 {
		ferrs = append(ferrs, FieldError{Field: "home_score", Message: "must be >= 0"})
	}
	if awayScore < 0 {
		ferrs = append(ferrs, FieldError{Field: "away_score", Message: "must be >= 0"})
	}

	// Early exit if basic structure is invalid – do not touch the database.
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("game validation failed (structure)")
		return model.Game{}, err
	}

	var out model.Game
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var existenceErrs []FieldError
		for _, ref := range []struct {
			field string
			id    int64
		}{{"home_team_id", homeID}, {"away_team_id", awayID}} {
			ok, err := s.teams.Exists(ctx, ref.id)
			if err != nil {
				return err
			}
			if !ok {
				existenceErrs = append(existenceErrs, FieldError{Field: ref.field, Message: "team does not exist"})
			}
		}
		if err := NewInvalidInputError(existenceErrs); err != nil {
			s.log.Debug().Interface("field_errors", existenceErrs).Msg("game validation failed (existence)")
			return err
		}

		created, err := s.games.Create(ctx, model.Game{
			Date:       model.DateOf(date),
			HomeTeamID: homeID,
			AwayTeamID: awayID,
			HomeScore:  homeScore,
			AwayScore:  awayScore,
		})
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidInput) {
			s.log.Error().Err(err).Int64("home_id", homeID).Int64("away_id", awayID).Msg("create game failed")
		}
		return model.Game{}, err
	}
	s.log.Info().Int64("game_id", out.ID).Time("date", out.Date).Msg("game created")
	return out, nil
}

func (s *gameService) GetGame(ctx context.Context, id int64) (model.Game, error) {
	if id <= 0 {
		return model.Game{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	g, err := s.games.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Game{}, notFound("game", id)
	}
	return g, err
}

func (s *gameService) ListGames(ctx context.Context, page repository.Page) (repository.PageResult[model.Game], error) {
	p := normalizePage(page)
	res, err := s.games.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list games failed")
		return repository.PageResult[model.Game]{}, err
	}
	return res, nil
}
