package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/maxviazov/season-stats-service/internal/cache"
	"github.com/maxviazov/season-stats-service/internal/metrics"
	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
)

// StatsInput is one box-score submission. Pointer fields distinguish "absent" from zero.
// A set ID replaces the existing row with that id instead of inserting.
type StatsInput struct {
	ID            *int64   `json:"id,omitempty" validate:"omitempty,gt=0"`
	PlayerID      *int64   `json:"player_id" validate:"required,gt=0"`
	GameID        *int64   `json:"game_id" validate:"required,gt=0"`
	Points        *int     `json:"points" validate:"required,gte=0"`
	Rebounds      *int     `json:"rebounds" validate:"required,gte=0"`
	Assists       *int     `json:"assists" validate:"required,gte=0"`
	Steals        *int     `json:"steals" validate:"required,gte=0"`
	Blocks        *int     `json:"blocks" validate:"required,gte=0"`
	Fouls         *int     `json:"fouls" validate:"required,gte=0,lte=6"`
	Turnovers     *int     `json:"turnovers" validate:"required,gte=0"`
	MinutesPlayed *float64 `json:"minutes_played" validate:"required,gte=0,lte=48"`
}

// row copies a validated input into a stat row. Only call after validation succeeded.
func (in StatsInput) row() model.PlayerGameStats {
	r := model.PlayerGameStats{
		PlayerID:      *in.PlayerID,
		GameID:        *in.GameID,
		Points:        *in.Points,
		Rebounds:      *in.Rebounds,
		Assists:       *in.Assists,
		Steals:        *in.Steals,
		Blocks:        *in.Blocks,
		Fouls:         *in.Fouls,
		Turnovers:     *in.Turnovers,
		MinutesPlayed: *in.MinutesPlayed,
	}
	if in.ID != nil {
		r.ID = *in.ID
	}
	return r
}

// BatchResult is the independent outcome of one entry of a batch submission.
type BatchResult struct {
	Index int
	Stats model.PlayerGameStats
	Err   error
}

type statsService struct {
	stats    repository.StatsRepository
	players  repository.PlayerRepository
	games    repository.GameRepository
	tx       repository.TxManager
	lock     *StatsLock
	cache    *cache.Layer
	rec      *metrics.Recorder
	validate *validator.Validate
	log      zerolog.Logger
}

// StatsDeps groups the collaborators of the stats write service.
type StatsDeps struct {
	Stats   repository.StatsRepository
	Players repository.PlayerRepository
	Games   repository.GameRepository
	Tx      repository.TxManager
	Lock    *StatsLock
	Cache   *cache.Layer
	Metrics *metrics.Recorder
}

func NewStatsService(d StatsDeps, logger zerolog.Logger) StatsService {
	l := logger.With().Str("module", "service").Str("component", "stats").Logger()
	return &statsService{
		stats:    d.Stats,
		players:  d.Players,
		games:    d.Games,
		tx:       d.Tx,
		lock:     d.Lock,
		cache:    d.Cache,
		rec:      d.Metrics,
		validate: newValidator(),
		log:      l,
	}
}

// LogStats validates, persists and invalidates the affected aggregates as one unit under the
// exclusive stats lock. Invalid input is rejected before any lookup; invalidation happens only
// after the row is committed and before the lock is released.
func (s *statsService) LogStats(ctx context.Context, in StatsInput) (model.PlayerGameStats, error) {
	if err := validateStruct(s.validate, in); err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("stats validation failed")
		return model.PlayerGameStats{}, err
	}
	row := in.row()

	unlock, err := s.lock.Lock(ctx)
	if err != nil {
		return model.PlayerGameStats{}, err
	}
	defer unlock()

	start := time.Now()
	var (
		out      model.PlayerGameStats
		player   model.Player
		previous *model.PlayerGameStats
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.players.GetByID(ctx, row.PlayerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("player", row.PlayerID)
			}
			return err
		}
		g, err := s.games.GetByID(ctx, row.GameID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("game", row.GameID)
			}
			return err
		}
		if row.ID != 0 {
			old, err := s.stats.FindByID(ctx, row.ID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return notFound("stats", row.ID)
				}
				return err
			}
			previous = &old
		}
		saved, err := s.stats.Save(ctx, row)
		if err != nil {
			return err
		}
		saved.Player, saved.Game = &p, &g
		out, player = saved, p
		return nil
	})
	s.rec.RecordStatsWrite(err)
	if err != nil {
		if !repository.IsDomainError(err) {
			s.log.Error().Err(err).Int64("player_id", row.PlayerID).Int64("game_id", row.GameID).Msg("log stats failed")
		}
		return model.PlayerGameStats{}, err
	}

	// The row is committed; invalidation must not be skipped because the caller went away.
	invCtx := context.WithoutCancel(ctx)
	s.cache.InvalidateStatsCache(invCtx, player.ID, player.TeamID)
	if previous != nil && previous.PlayerID != player.ID {
		if err := s.invalidateFormerOwner(invCtx, previous.PlayerID); err != nil {
			s.log.Warn().Err(err).Int64("player_id", previous.PlayerID).Msg("resolving former row owner failed")
		}
	}

	s.log.Info().
		Int64("stats_id", out.ID).
		Int64("player_id", player.ID).
		Int64("team_id", player.TeamID).
		Int64("game_id", out.GameID).
		Dur("took", time.Since(start)).
		Msg("stats logged")
	return out, nil
}

// invalidateFormerOwner covers a replace-by-id that moved a row to another player.
func (s *statsService) invalidateFormerOwner(ctx context.Context, playerID int64) error {
	p, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return err
	}
	s.cache.InvalidateStatsCache(ctx, p.ID, p.TeamID)
	return nil
}

// LogBatchStats logs each entry for gameID independently; one failure does not affect the others.
func (s *statsService) LogBatchStats(ctx context.Context, gameID int64, in []StatsInput) []BatchResult {
	results := make([]BatchResult, 0, len(in))
	for i, entry := range in {
		gid := gameID
		entry.GameID = &gid
		saved, err := s.LogStats(ctx, entry)
		results = append(results, BatchResult{Index: i, Stats: saved, Err: err})
	}
	return results
}

func (s *statsService) ListStatsByGame(ctx context.Context, gameID int64) ([]model.PlayerGameStats, error) {
	if gameID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "game_id", Message: "must be > 0"}})
	}
	unlock, err := s.lock.RLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("game", gameID)
		}
		return nil, err
	}
	return s.stats.FindByGame(ctx, gameID)
}

func (s *statsService) ListStatsByPlayer(ctx context.Context, playerID int64) ([]model.PlayerGameStats, error) {
	if playerID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "player_id", Message: "must be > 0"}})
	}
	unlock, err := s.lock.RLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("player", playerID)
		}
		return nil, err
	}
	return s.stats.FindByPlayer(ctx, playerID)
}
