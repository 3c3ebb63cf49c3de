package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/season-stats-service/internal/repository"
)

const pingTimeout = 2 * time.Second

type pinger struct{ pool *pgxpool.Pool }

// NewPinger adapts pgxpool to the repository.Pinger interface used by /ready.
func NewPinger(pool *pgxpool.Pool) repository.Pinger { return &pinger{pool: pool} }

// Ping never waits longer than pingTimeout so a wedged database fails readiness instead of hanging it.
func (p *pinger) Ping(ctx context.Context) error {
	if err := ensurePool(p.pool); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.pool.Ping(ctx)
}
