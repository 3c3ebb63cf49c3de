package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
)

type gameRepository struct{ pool *pgxpool.Pool }

func NewGameRepository(pool *pgxpool.Pool) repository.GameRepository {
	return &gameRepository{pool: pool}
}

const gameColumns = `id, date, home_team_id, away_team_id, home_score, away_score`

func scanGame(row pgx.Row, extra ...any) (model.Game, error) {
	var g model.Game
	dest := append([]any{&g.ID, &g.Date, &g.HomeTeamID, &g.AwayTeamID, &g.HomeScore, &g.AwayScore}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Game{}, err
	}
	g.Date = model.DateOf(g.Date)
	return g, nil
}

func (r *gameRepository) Create(ctx context.Context, g model.Game) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO games (date, home_team_id, away_team_id, home_score, away_score)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+gameColumns,
		model.DateOf(g.Date), g.HomeTeamID, g.AwayTeamID, g.HomeScore, g.AwayScore,
	)
	out, err := scanGame(row)
	if err != nil {
		return model.Game{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *gameRepository) GetByID(ctx context.Context, id int64) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	exec := getQ(ctx, r.pool)
	out, err := scanGame(exec.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Game{}, repository.ErrNotFound
		}
		return model.Game{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *gameRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Game], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Game]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+gameColumns+`, COUNT(*) OVER() AS total
		 FROM games
		 ORDER BY date DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Game]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Game]{Items: make([]model.Game, 0, limit)}
	for rows.Next() {
		var total int
		it, err := scanGame(rows, &total)
		if err != nil {
			return repository.PageResult[model.Game]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, it)
		res.Total = total
	}
	return res, repository.MapPgError(rows.Err())
}

var _ repository.GameRepository = (*gameRepository)(nil)
