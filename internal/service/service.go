// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
// Season aggregates and stat writes additionally share one StatsLock and one cache.Layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrLockTimeout is returned when the stats lock could not be acquired within the configured wait.
var ErrLockTimeout = errors.New("stats lock wait timed out")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error if any field errors are present.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	var v *invalidInputError
	if errors.As(err, &v) {
		return v.Fields()
	}
	return nil
}

// notFound wraps repository.ErrNotFound with the entity that was missing.
func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, repository.ErrNotFound)
}

// TeamService defines team-oriented use cases.
type TeamService interface {
	CreateTeam(ctx context.Context, name, city string) (model.Team, error)
	GetTeam(ctx context.Context, id int64) (model.Team, error)
	ListTeams(ctx context.Context, page repository.Page) (repository.PageResult[model.Team], error)
	ListPlayers(ctx context.Context, teamID int64, page repository.Page) (repository.PageResult[model.Player], error)
}

// PlayerService defines player-oriented use cases.
type PlayerService interface {
	CreatePlayer(ctx context.Context, teamID int64, firstName, lastName, position string) (model.Player, error)
	GetPlayer(ctx context.Context, id int64) (model.Player, error)
}

// GameService defines game-oriented use cases.
type GameService interface {
	CreateGame(ctx context.Context, date time.Time, homeID, awayID int64, homeScore, awayScore int) (model.Game, error)
	GetGame(ctx context.Context, id int64) (model.Game, error)
	ListGames(ctx context.Context, page repository.Page) (repository.PageResult[model.Game], error)
}

// SeasonService defines season reference-data use cases.
type SeasonService interface {
	CreateSeason(ctx context.Context, year int, start, end time.Time) (model.Season, error)
	ListSeasons(ctx context.Context) ([]model.Season, error)
	CurrentSeason(ctx context.Context) (model.Season, error)
}

// StatsService records per-game stat rows and lists them.
type StatsService interface {
	LogStats(ctx context.Context, in StatsInput) (model.PlayerGameStats, error)
	LogBatchStats(ctx context.Context, gameID int64, in []StatsInput) []BatchResult
	ListStatsByGame(ctx context.Context, gameID int64) ([]model.PlayerGameStats, error)
	ListStatsByPlayer(ctx context.Context, playerID int64) ([]model.PlayerGameStats, error)
}

// SeasonStatsService serves cached current-season averages.
type SeasonStatsService interface {
	GetPlayerSeasonStats(ctx context.Context, playerID int64) (model.PlayerAggregateStats, error)
	GetTeamSeasonStats(ctx context.Context, teamID int64) (model.TeamAggregateStats, error)
	GetAllTeamSeasonStats(ctx context.Context) ([]model.TeamAggregateStats, error)
	// RefreshSeason clears every cache region when the current season differs from the last one seen.
	RefreshSeason(ctx context.Context) (bool, error)
	ClearCache(ctx context.Context) error
}
