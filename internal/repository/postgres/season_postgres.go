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

type seasonRepository struct{ pool *pgxpool.Pool }

func NewSeasonRepository(pool *pgxpool.Pool) repository.SeasonRepository {
	return &seasonRepository{pool: pool}
}

func scanSeason(row pgx.Row) (model.Season, error) {
	var s model.Season
	if err := row.Scan(&s.ID, &s.Year, &s.StartDate, &s.EndDate); err != nil {
		return model.Season{}, err
	}
	s.StartDate = model.DateOf(s.StartDate)
	s.EndDate = model.DateOf(s.EndDate)
	return s, nil
}

func (r *seasonRepository) Create(ctx context.Context, s model.Season) (model.Season, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Season{}, err
	}
	exec := getQ(ctx, r.pool)
	out, err := scanSeason(exec.QueryRow(ctx,
		`INSERT INTO seasons (year, start_date, end_date) VALUES ($1, $2, $3)
		 RETURNING id, year, start_date, end_date`,
		s.Year, model.DateOf(s.StartDate), model.DateOf(s.EndDate),
	))
	if err != nil {
		return model.Season{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *seasonRepository) FindAll(ctx context.Context) ([]model.Season, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT id, year, start_date, end_date FROM seasons ORDER BY start_date, id`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	out := make([]model.Season, 0, 8)
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, s)
	}
	return out, repository.MapPgError(rows.Err())
}

// FindByDate takes the lowest id when windows overlap; seasons are curated not to.
func (r *seasonRepository) FindByDate(ctx context.Context, d time.Time) (model.Season, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Season{}, err
	}
	exec := getQ(ctx, r.pool)
	out, err := scanSeason(exec.QueryRow(ctx,
		`SELECT id, year, start_date, end_date FROM seasons
		 WHERE $1::date BETWEEN start_date AND end_date
		 ORDER BY id
		 LIMIT 1`,
		model.DateOf(d),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Season{}, repository.ErrNotFound
		}
		return model.Season{}, repository.MapPgError(err)
	}
	return out, nil
}

var _ repository.SeasonRepository = (*seasonRepository)(nil)
