package repository

import (
	"context"
	"time"

	"github.com/maxviazov/season-stats-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// TeamRepository declares persistence operations for teams.
// I return domain models and surface domain errors from errors.go rather than PG codes.
type TeamRepository interface {
	Create(ctx context.Context, t model.Team) (model.Team, error)
	GetByID(ctx context.Context, id int64) (model.Team, error)
	// FindAll returns every team ordered by id; the all-teams aggregate follows this order.
	FindAll(ctx context.Context) ([]model.Team, error)
	List(ctx context.Context, p Page) (PageResult[model.Team], error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// PlayerRepository declares persistence operations for players.
// GetByID resolves the player's team so callers can read its name without a second lookup.
type PlayerRepository interface {
	Create(ctx context.Context, p model.Player) (model.Player, error)
	GetByID(ctx context.Context, id int64) (model.Player, error)
	ListByTeam(ctx context.Context, teamID int64, p Page) (PageResult[model.Player], error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// GameRepository declares persistence operations for games.
type GameRepository interface {
	Create(ctx context.Context, g model.Game) (model.Game, error)
	GetByID(ctx context.Context, id int64) (model.Game, error)
	List(ctx context.Context, p Page) (PageResult[model.Game], error)
}

// SeasonRepository declares persistence operations for seasons.
type SeasonRepository interface {
	Create(ctx context.Context, s model.Season) (model.Season, error)
	FindAll(ctx context.Context) ([]model.Season, error)
	// FindByDate returns the first season (lowest id) whose window contains d, or ErrNotFound.
	FindByDate(ctx context.Context, d time.Time) (model.Season, error)
}

// StatsRepository declares operations for per-game player stat rows.
// Range lookups are inclusive on both ends and compare game dates, not timestamps.
type StatsRepository interface {
	// Save inserts s when s.ID is zero and replaces the row with that id otherwise.
	// Replacing a missing id yields ErrNotFound; a second row for the same (player, game) yields ErrAlreadyExists.
	Save(ctx context.Context, s model.PlayerGameStats) (model.PlayerGameStats, error)
	FindByID(ctx context.Context, id int64) (model.PlayerGameStats, error)
	FindByGame(ctx context.Context, gameID int64) ([]model.PlayerGameStats, error)
	FindByPlayer(ctx context.Context, playerID int64) ([]model.PlayerGameStats, error)
	FindByTeam(ctx context.Context, teamID int64) ([]model.PlayerGameStats, error)
	FindByPlayerInRange(ctx context.Context, playerID int64, from, to time.Time) ([]model.PlayerGameStats, error)
	FindByTeamInRange(ctx context.Context, teamID int64, from, to time.Time) ([]model.PlayerGameStats, error)
	// DeleteAll removes every stat row. Administrative and test use only.
	DeleteAll(ctx context.Context) error
}
