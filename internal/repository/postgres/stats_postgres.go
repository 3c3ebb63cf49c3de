package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
)

type statsRepository struct{ pool *pgxpool.Pool }

func NewStatsRepository(pool *pgxpool.Pool) repository.StatsRepository {
	return &statsRepository{pool: pool}
}

const statsColumns = `s.id, s.player_id, s.game_id, s.points, s.rebounds, s.assists, s.steals, s.blocks, s.fouls, s.turnovers, s.minutes_played`

func scanStats(row pgx.Row) (model.PlayerGameStats, error) {
	var it model.PlayerGameStats
	err := row.Scan(&it.ID, &it.PlayerID, &it.GameID, &it.Points, &it.Rebounds, &it.Assists,
		&it.Steals, &it.Blocks, &it.Fouls, &it.Turnovers, &it.MinutesPlayed)
	return it, err
}

// Save inserts when s.ID is zero and otherwise replaces the row in place.
func (r *statsRepository) Save(ctx context.Context, s model.PlayerGameStats) (model.PlayerGameStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerGameStats{}, err
	}
	exec := getQ(ctx, r.pool)
	var row pgx.Row
	if s.ID == 0 {
		row = exec.QueryRow(ctx,
			`INSERT INTO player_game_stats AS s (
				player_id, game_id, points, rebounds, assists, steals, blocks, fouls, turnovers, minutes_played
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING `+statsColumns,
			s.PlayerID, s.GameID, s.Points, s.Rebounds, s.Assists, s.Steals, s.Blocks, s.Fouls, s.Turnovers, s.MinutesPlayed,
		)
	} else {
		row = exec.QueryRow(ctx,
			`UPDATE player_game_stats AS s SET
				player_id = $2, game_id = $3, points = $4, rebounds = $5, assists = $6,
				steals = $7, blocks = $8, fouls = $9, turnovers = $10, minutes_played = $11
			WHERE s.id = $1
			RETURNING `+statsColumns,
			s.ID, s.PlayerID, s.GameID, s.Points, s.Rebounds, s.Assists, s.Steals, s.Blocks, s.Fouls, s.Turnovers, s.MinutesPlayed,
		)
	}
	out, err := scanStats(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PlayerGameStats{}, repository.ErrNotFound
		}
		return model.PlayerGameStats{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *statsRepository) FindByID(ctx context.Context, id int64) (model.PlayerGameStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerGameStats{}, err
	}
	out, err := scanStats(getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT `+statsColumns+` FROM player_game_stats s WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PlayerGameStats{}, repository.ErrNotFound
		}
		return model.PlayerGameStats{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *statsRepository) FindByGame(ctx context.Context, gameID int64) ([]model.PlayerGameStats, error) {
	return r.query(ctx,
		`SELECT `+statsColumns+` FROM player_game_stats s WHERE s.game_id = $1 ORDER BY s.id`, gameID)
}

func (r *statsRepository) FindByPlayer(ctx context.Context, playerID int64) ([]model.PlayerGameStats, error) {
	return r.query(ctx,
		`SELECT `+statsColumns+` FROM player_game_stats s WHERE s.player_id = $1 ORDER BY s.id`, playerID)
}

// FindByTeam follows the player's current team, not the team at game time.
func (r *statsRepository) FindByTeam(ctx context.Context, teamID int64) ([]model.PlayerGameStats, error) {
	return r.query(ctx,
		`SELECT `+statsColumns+`
		 FROM player_game_stats s
		 JOIN players p ON p.id = s.player_id
		 WHERE p.team_id = $1
		 ORDER BY s.id`, teamID)
}

func (r *statsRepository) FindByPlayerInRange(ctx context.Context, playerID int64, from, to time.Time) ([]model.PlayerGameStats, error) {
	return r.query(ctx,
		`SELECT `+statsColumns+`
		 FROM player_game_stats s
		 JOIN games g ON g.id = s.game_id
		 WHERE s.player_id = $1 AND g.date BETWEEN $2::date AND $3::date
		 ORDER BY g.date, s.id`,
		playerID, model.DateOf(from), model.DateOf(to))
}

func (r *statsRepository) FindByTeamInRange(ctx context.Context, teamID int64, from, to time.Time) ([]model.PlayerGameStats, error) {
	return r.query(ctx,
		`SELECT `+statsColumns+`
		 FROM player_game_stats s
		 JOIN players p ON p.id = s.player_id
		 JOIN games g ON g.id = s.game_id
		 WHERE p.team_id = $1 AND g.date BETWEEN $2::date AND $3::date
		 ORDER BY g.date, s.id`,
		teamID, model.DateOf(from), model.DateOf(to))
}

func (r *statsRepository) DeleteAll(ctx context.Context) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	_, err := getQ(ctx, r.pool).Exec(ctx, `DELETE FROM player_game_stats`)
	return repository.MapPgError(err)
}

func (r *statsRepository) query(ctx context.Context, sql string, args ...any) ([]model.PlayerGameStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.PlayerGameStats, 0, 8)
	for rows.Next() {
		it, err := scanStats(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, repository.MapPgError(rows.Err())
}

var _ repository.StatsRepository = (*statsRepository)(nil)
