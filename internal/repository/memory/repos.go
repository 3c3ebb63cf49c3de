package memory

import (
	"context"
	"sort"
	"time"

	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
)

type teamRepo struct{ s *Store }

func (r teamRepo) Create(ctx context.Context, t model.Team) (model.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.t.teams {
		if existing.Name == t.Name {
			return model.Team{}, repository.ErrAlreadyExists
		}
	}
	t.ID = r.s.id()
	r.s.t.teams[t.ID] = t
	id := t.ID
	r.s.record(ctx, func(tb *tables) { delete(tb.teams, id) })
	return t, nil
}

func (r teamRepo) GetByID(_ context.Context, id int64) (model.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.t.teams[id]
	if !ok {
		return model.Team{}, repository.ErrNotFound
	}
	return t, nil
}

func (r teamRepo) FindAll(_ context.Context) ([]model.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Team, 0, len(r.s.t.teams))
	for _, id := range sortedKeys(r.s.t.teams) {
		out = append(out, r.s.t.teams[id])
	}
	return out, nil
}

func (r teamRepo) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Team], error) {
	all, _ := r.FindAll(ctx)
	return page(all, p), nil
}

func (r teamRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.t.teams[id]
	return ok, nil
}

type playerRepo struct{ s *Store }

func (r playerRepo) Create(ctx context.Context, p model.Player) (model.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.teams[p.TeamID]; !ok {
		return model.Player{}, repository.ErrConflict
	}
	p.ID = r.s.id()
	p.Team = nil
	r.s.t.players[p.ID] = p
	id := p.ID
	r.s.record(ctx, func(tb *tables) { delete(tb.players, id) })
	return p, nil
}

func (r playerRepo) GetByID(_ context.Context, id int64) (model.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.t.players[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	team := r.s.t.teams[p.TeamID]
	p.Team = &team
	return p, nil
}

func (r playerRepo) ListByTeam(_ context.Context, teamID int64, pg repository.Page) (repository.PageResult[model.Player], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.Player
	for _, id := range sortedKeys(r.s.t.players) {
		if p := r.s.t.players[id]; p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return page(out, pg), nil
}

func (r playerRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.t.players[id]
	return ok, nil
}

type gameRepo struct{ s *Store }

func (r gameRepo) Create(ctx context.Context, g model.Game) (model.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, homeOK := r.s.t.teams[g.HomeTeamID]
	_, awayOK := r.s.t.teams[g.AwayTeamID]
	if !homeOK || !awayOK {
		return model.Game{}, repository.ErrConflict
	}
	g.ID = r.s.id()
	g.Date = model.DateOf(g.Date)
	r.s.t.games[g.ID] = g
	id := g.ID
	r.s.record(ctx, func(tb *tables) { delete(tb.games, id) })
	return g, nil
}

func (r gameRepo) GetByID(_ context.Context, id int64) (model.Game, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.t.games[id]
	if !ok {
		return model.Game{}, repository.ErrNotFound
	}
	return g, nil
}

// List orders newest first, matching the postgres implementation.
func (r gameRepo) List(_ context.Context, p repository.Page) (repository.PageResult[model.Game], error) {
	r.s.mu.RLock()
	all := make([]model.Game, 0, len(r.s.t.games))
	for _, id := range sortedKeys(r.s.t.games) {
		all = append(all, r.s.t.games[id])
	}
	r.s.mu.RUnlock()
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].ID > all[j].ID
	})
	return page(all, p), nil
}

type seasonRepo struct{ s *Store }

func (r seasonRepo) Create(ctx context.Context, season model.Season) (model.Season, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if model.DateOf(season.StartDate).After(model.DateOf(season.EndDate)) {
		return model.Season{}, repository.ErrConflict
	}
	for _, existing := range r.s.t.seasons {
		if existing.Year == season.Year {
			return model.Season{}, repository.ErrAlreadyExists
		}
	}
	season.ID = r.s.id()
	season.StartDate = model.DateOf(season.StartDate)
	season.EndDate = model.DateOf(season.EndDate)
	r.s.t.seasons[season.ID] = season
	id := season.ID
	r.s.record(ctx, func(tb *tables) { delete(tb.seasons, id) })
	return season, nil
}

func (r seasonRepo) FindAll(_ context.Context) ([]model.Season, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Season, 0, len(r.s.t.seasons))
	for _, id := range sortedKeys(r.s.t.seasons) {
		out = append(out, r.s.t.seasons[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r seasonRepo) FindByDate(_ context.Context, d time.Time) (model.Season, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range sortedKeys(r.s.t.seasons) {
		if s := r.s.t.seasons[id]; s.IncludesDate(d) {
			return s, nil
		}
	}
	return model.Season{}, repository.ErrNotFound
}

type statsRepo struct{ s *Store }

func (r statsRepo) Save(ctx context.Context, row model.PlayerGameStats) (model.PlayerGameStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.players[row.PlayerID]; !ok {
		return model.PlayerGameStats{}, repository.ErrConflict
	}
	if _, ok := r.s.t.games[row.GameID]; !ok {
		return model.PlayerGameStats{}, repository.ErrConflict
	}
	if row.ID != 0 {
		if _, ok := r.s.t.stats[row.ID]; !ok {
			return model.PlayerGameStats{}, repository.ErrNotFound
		}
	}
	for id, existing := range r.s.t.stats {
		if id != row.ID && existing.PlayerID == row.PlayerID && existing.GameID == row.GameID {
			return model.PlayerGameStats{}, repository.ErrAlreadyExists
		}
	}
	if row.ID == 0 {
		row.ID = r.s.id()
	}
	row.Player, row.Game = nil, nil
	prev, replaced := r.s.t.stats[row.ID]
	r.s.t.stats[row.ID] = row
	id := row.ID
	r.s.record(ctx, func(tb *tables) {
		if replaced {
			tb.stats[id] = prev
		} else {
			delete(tb.stats, id)
		}
	})
	return row, nil
}

func (r statsRepo) FindByID(_ context.Context, id int64) (model.PlayerGameStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.t.stats[id]
	if !ok {
		return model.PlayerGameStats{}, repository.ErrNotFound
	}
	return row, nil
}

func (r statsRepo) FindByGame(_ context.Context, gameID int64) ([]model.PlayerGameStats, error) {
	return r.filter(func(row model.PlayerGameStats) bool { return row.GameID == gameID }), nil
}

func (r statsRepo) FindByPlayer(_ context.Context, playerID int64) ([]model.PlayerGameStats, error) {
	return r.filter(func(row model.PlayerGameStats) bool { return row.PlayerID == playerID }), nil
}

func (r statsRepo) FindByTeam(_ context.Context, teamID int64) ([]model.PlayerGameStats, error) {
	return r.filter(func(row model.PlayerGameStats) bool {
		return r.s.t.players[row.PlayerID].TeamID == teamID
	}), nil
}

func (r statsRepo) FindByPlayerInRange(_ context.Context, playerID int64, from, to time.Time) ([]model.PlayerGameStats, error) {
	return r.filter(func(row model.PlayerGameStats) bool {
		return row.PlayerID == playerID && inRange(r.s.t.games[row.GameID].Date, from, to)
	}), nil
}

func (r statsRepo) FindByTeamInRange(_ context.Context, teamID int64, from, to time.Time) ([]model.PlayerGameStats, error) {
	return r.filter(func(row model.PlayerGameStats) bool {
		return r.s.t.players[row.PlayerID].TeamID == teamID && inRange(r.s.t.games[row.GameID].Date, from, to)
	}), nil
}

func (r statsRepo) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old := r.s.t.stats
	r.s.t.stats = make(map[int64]model.PlayerGameStats)
	r.s.record(ctx, func(tb *tables) {
		for id, row := range old {
			tb.stats[id] = row
		}
	})
	return nil
}

// filter runs keep under the read lock, so keep may read the other tables directly.
func (r statsRepo) filter(keep func(model.PlayerGameStats) bool) []model.PlayerGameStats {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.PlayerGameStats, 0, 8)
	for _, id := range sortedKeys(r.s.t.stats) {
		if row := r.s.t.stats[id]; keep(row) {
			out = append(out, row)
		}
	}
	return out
}

var (
	_ repository.TeamRepository   = teamRepo{}
	_ repository.PlayerRepository = playerRepo{}
	_ repository.GameRepository   = gameRepo{}
	_ repository.SeasonRepository = seasonRepo{}
	_ repository.StatsRepository  = statsRepo{}
)
