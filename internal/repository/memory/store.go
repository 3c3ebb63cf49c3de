// Package memory implements the repository contracts on process memory.
// It backs local runs without Postgres and the service tests; behavior matches the postgres
// package as pinned down by the contract suites.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
)

type tables struct {
	teams   map[int64]model.Team
	players map[int64]model.Player
	games   map[int64]model.Game
	seasons map[int64]model.Season
	stats   map[int64]model.PlayerGameStats
	nextID  int64
}

func newTables() tables {
	return tables{
		teams:   make(map[int64]model.Team),
		players: make(map[int64]model.Player),
		games:   make(map[int64]model.Game),
		seasons: make(map[int64]model.Season),
		stats:   make(map[int64]model.PlayerGameStats),
	}
}

// Store holds every table behind one RWMutex. Ids come from a single sequence, so they are
// unique across tables, which Postgres does not promise; nothing relies on either behavior.
type Store struct {
	mu sync.RWMutex
	t  tables

	// txMu serializes transactions. Writes outside a transaction do not take it.
	txMu sync.Mutex
}

func NewStore() *Store { return &Store{t: newTables()} }

func (s *Store) id() int64 {
	s.t.nextID++
	return s.t.nextID
}

// Teams, Players, Games, Seasons and Stats expose the store through the repository interfaces.
func (s *Store) Teams() repository.TeamRepository     { return teamRepo{s} }
func (s *Store) Players() repository.PlayerRepository { return playerRepo{s} }
func (s *Store) Games() repository.GameRepository     { return gameRepo{s} }
func (s *Store) Seasons() repository.SeasonRepository { return seasonRepo{s} }
func (s *Store) Stats() repository.StatsRepository    { return statsRepo{s} }
func (s *Store) TxManager() repository.TxManager      { return txManager{s} }

// Ping always succeeds; it lets the memory store stand in for readiness checks.
func (s *Store) Ping(context.Context) error { return nil }

type txKey struct{}

// txLog collects the inverse of every write made through a transaction's context.
// Rollback replays it backwards, so writes made outside the transaction survive.
type txLog struct {
	undo []func(*tables)
}

// record must be called with s.mu held for writing.
func (s *Store) record(ctx context.Context, undo func(*tables)) {
	if log, ok := ctx.Value(txKey{}).(*txLog); ok {
		log.undo = append(log.undo, undo)
	}
}

type txManager struct{ s *Store }

// WithinTx runs fn with a transaction log in ctx. A nested call joins the outer transaction.
func (m txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if _, ok := ctx.Value(txKey{}).(*txLog); ok {
		return fn(ctx)
	}
	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	log := &txLog{}
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		m.s.mu.Lock()
		for i := len(log.undo) - 1; i >= 0; i-- {
			log.undo[i](&m.s.t)
		}
		m.s.mu.Unlock()
		return err
	}
	return nil
}

func page[T any](items []T, p repository.Page) repository.PageResult[T] {
	limit, offset := p.Limit, p.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	res := repository.PageResult[T]{Total: len(items), Items: []T{}}
	if offset >= len(items) {
		return res
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	res.Items = append(res.Items, items[offset:end]...)
	return res
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func inRange(d, from, to time.Time) bool {
	day := model.DateOf(d)
	return !day.Before(model.DateOf(from)) && !day.After(model.DateOf(to))
}

var (
	_ repository.Pinger    = (*Store)(nil)
	_ repository.TxManager = txManager{}
)
