// Package contract holds behavioral test suites every repository implementation must pass.
// The postgres and memory packages wire their own factories into the same suites.
package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/repository"
)

type TeamFactory func(t *testing.T) (repository.TeamRepository, func())

type PlayerFactory func(t *testing.T) (repo repository.PlayerRepository, createTeam func(ctx context.Context, name string) (int64, error), cleanup func())

type GameFactory func(t *testing.T) (repo repository.GameRepository, createTeam func(ctx context.Context, name string) (int64, error), cleanup func())

type SeasonFactory func(t *testing.T) (repository.SeasonRepository, func())

// StatsFixture bundles the stats repository with seeders for the rows it references.
type StatsFixture struct {
	Repo       repository.StatsRepository
	MakeTeam   func(ctx context.Context, name string) (int64, error)
	MakePlayer func(ctx context.Context, teamID int64) (int64, error)
	MakeGame   func(ctx context.Context, date time.Time) (int64, error)
}

type StatsFactory func(t *testing.T) (StatsFixture, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, teams repository.TeamRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func RunTeamRepositoryContract(t *testing.T, makeRepo TeamFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.Team{Name: "Warriors", City: "San Francisco"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if created.ID == 0 {
			t.Fatalf("expected id to be assigned")
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got != created {
			t.Fatalf("mismatch: %+v vs %+v", got, created)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 999999)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("find_all_ordered_by_id", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var ids []int64
		for _, name := range []string{"Zephyrs", "Aces", "Miners"} {
			tm, err := repo.Create(ctx, model.Team{Name: name})
			if err != nil {
				t.Fatalf("seed: %v", err)
			}
			ids = append(ids, tm.ID)
		}
		all, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 teams, got %d", len(all))
		}
		for i := range ids {
			if all[i].ID != ids[i] {
				t.Fatalf("unexpected order at %d: %d != %d", i, all[i].ID, ids[i])
			}
		}
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			name := "T-" + string(rune('A'+i))
			if _, err := repo.Create(ctx, model.Team{Name: name}); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		res, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		res2, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 6})
		if err != nil {
			t.Fatalf("list2: %v", err)
		}
		if len(res2.Items) != 1 || res2.Total != 7 {
			t.Fatalf("unexpected page2: len=%d total=%d", len(res2.Items), res2.Total)
		}
	})

	t.Run("exists", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		tm, err := repo.Create(ctx, model.Team{Name: "Exists"})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		if ok, err := repo.Exists(ctx, tm.ID); err != nil || !ok {
			t.Fatalf("expected team to exist: ok=%v err=%v", ok, err)
		}
		if ok, err := repo.Exists(ctx, tm.ID+1000); err != nil || ok {
			t.Fatalf("expected team to be absent: ok=%v err=%v", ok, err)
		}
	})

	t.Run("create_duplicate_name_conflict", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Create(ctx, model.Team{Name: "Dup"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err := repo.Create(ctx, model.Team{Name: "Dup"})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func RunPlayerRepositoryContract(t *testing.T, makeRepo PlayerFactory) {
	t.Helper()

	t.Run("create_and_get_resolves_team", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, err := mkTeam(ctx, "Bulls")
		if err != nil {
			t.Fatalf("seed team: %v", err)
		}
		created, err := repo.Create(ctx, model.Player{TeamID: teamID, FirstName: "Michael", LastName: "Jordan", Position: "SG"})
		if err != nil {
			t.Fatalf("create player: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != created.ID || got.TeamID != teamID {
			t.Fatalf("mismatch: %+v", got)
		}
		if got.Team == nil || got.Team.ID != teamID || got.Team.Name != "Bulls" {
			t.Fatalf("team not resolved: %+v", got.Team)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 42424242)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_by_team_pagination", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, err := mkTeam(ctx, "Lakers")
		if err != nil {
			t.Fatalf("seed team: %v", err)
		}
		otherID, err := mkTeam(ctx, "Celtics")
		if err != nil {
			t.Fatalf("seed team: %v", err)
		}
		for i := 0; i < 5; i++ {
			p := model.Player{TeamID: teamID, FirstName: "P", LastName: string(rune('A' + i)), Position: "SF"}
			if _, err := repo.Create(ctx, p); err != nil {
				t.Fatalf("seed player %d: %v", i, err)
			}
		}
		if _, err := repo.Create(ctx, model.Player{TeamID: otherID, FirstName: "O", LastName: "X", Position: "C"}); err != nil {
			t.Fatalf("seed other: %v", err)
		}
		res, err := repo.ListByTeam(ctx, teamID, repository.Page{Limit: 2, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 2 || res.Total != 5 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
	})

	t.Run("create_fk_violation_conflict", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Create(context.Background(), model.Player{TeamID: 9999999, FirstName: "X", LastName: "Y", Position: "PG"})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict on FK violation, got %v", err)
		}
	})
}

func RunGameRepositoryContract(t *testing.T, makeRepo GameFactory) {
	t.Helper()

	t.Run("create_get_list", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		homeID, _ := mkTeam(ctx, "Home")
		awayID, _ := mkTeam(ctx, "Away")
		g, err := repo.Create(ctx, model.Game{Date: day(2025, time.January, 15), HomeTeamID: homeID, AwayTeamID: awayID, HomeScore: 101, AwayScore: 99})
		if err != nil {
			t.Fatalf("create game: %v", err)
		}
		got, err := repo.GetByID(ctx, g.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != g.ID || got.HomeTeamID != homeID || got.AwayTeamID != awayID || got.HomeScore != 101 {
			t.Fatalf("mismatch: %+v", got)
		}
		if !got.Date.Equal(day(2025, time.January, 15)) {
			t.Fatalf("date not preserved: %v", got.Date)
		}
		page, err := repo.List(ctx, repository.Page{Limit: 10, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(page.Items) != 1 || page.Total != 1 {
			t.Fatalf("unexpected list: %#v", page)
		}
	})

	t.Run("create_unknown_team_conflict", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		homeID, _ := mkTeam(ctx, "Home")
		_, err := repo.Create(ctx, model.Game{Date: day(2025, time.January, 1), HomeTeamID: homeID, AwayTeamID: 8888888})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 7777777)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func RunSeasonRepositoryContract(t *testing.T, makeRepo SeasonFactory) {
	t.Helper()

	t.Run("find_by_date_inclusive_bounds", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		s, err := repo.Create(ctx, model.Season{Year: 2025, StartDate: day(2024, time.October, 1), EndDate: day(2025, time.June, 30)})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		for _, d := range []time.Time{day(2024, time.October, 1), day(2025, time.June, 30), time.Date(2025, time.June, 30, 23, 59, 0, 0, time.UTC)} {
			got, err := repo.FindByDate(ctx, d)
			if err != nil {
				t.Fatalf("find %v: %v", d, err)
			}
			if got.ID != s.ID {
				t.Fatalf("unexpected season for %v: %+v", d, got)
			}
		}
		for _, d := range []time.Time{day(2024, time.September, 30), day(2025, time.July, 1)} {
			if _, err := repo.FindByDate(ctx, d); !errors.Is(err, repository.ErrNotFound) {
				t.Fatalf("expected ErrNotFound for %v, got %v", d, err)
			}
		}
	})

	t.Run("find_all", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for y := 2023; y <= 2025; y++ {
			if _, err := repo.Create(ctx, model.Season{Year: y, StartDate: day(y-1, time.October, 1), EndDate: day(y, time.June, 30)}); err != nil {
				t.Fatalf("seed %d: %v", y, err)
			}
		}
		all, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		if len(all) != 3 || all[0].Year != 2023 || all[2].Year != 2025 {
			t.Fatalf("unexpected seasons: %+v", all)
		}
	})

	t.Run("duplicate_year", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		s := model.Season{Year: 2030, StartDate: day(2029, time.October, 1), EndDate: day(2030, time.June, 30)}
		if _, err := repo.Create(ctx, s); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, err := repo.Create(ctx, s); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func RunStatsRepositoryContract(t *testing.T, makeRepo StatsFactory) {
	t.Helper()

	seed := func(t *testing.T, f StatsFixture, teamName string, date time.Time) (playerID, gameID, teamID int64) {
		t.Helper()
		ctx := context.Background()
		var err error
		if teamID, err = f.MakeTeam(ctx, teamName); err != nil {
			t.Fatalf("mkTeam: %v", err)
		}
		if playerID, err = f.MakePlayer(ctx, teamID); err != nil {
			t.Fatalf("mkPlayer: %v", err)
		}
		if gameID, err = f.MakeGame(ctx, date); err != nil {
			t.Fatalf("mkGame: %v", err)
		}
		return playerID, gameID, teamID
	}

	t.Run("insert_then_replace_by_id", func(t *testing.T) {
		f, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		pid, gid, _ := seed(t, f, "Insert", day(2025, time.January, 10))

		row := model.PlayerGameStats{PlayerID: pid, GameID: gid, Points: 10, Fouls: 2, MinutesPlayed: 31.5}
		saved, err := f.Repo.Save(ctx, row)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if saved.ID == 0 || saved.Points != 10 || saved.MinutesPlayed != 31.5 {
			t.Fatalf("unexpected insert result: %+v", saved)
		}
		saved.Points = 22
		updated, err := f.Repo.Save(ctx, saved)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.ID != saved.ID || updated.Points != 22 {
			t.Fatalf("update did not replace in place: %+v", updated)
		}
		byID, err := f.Repo.FindByID(ctx, saved.ID)
		if err != nil || byID.Points != 22 {
			t.Fatalf("find by id: %+v err=%v", byID, err)
		}
		if _, err := f.Repo.FindByID(ctx, saved.ID+100000); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
		}
		list, err := f.Repo.FindByGame(ctx, gid)
		if err != nil {
			t.Fatalf("find by game: %v", err)
		}
		if len(list) != 1 || list[0].Points != 22 {
			t.Fatalf("expected one replaced row, got %+v", list)
		}
	})

	t.Run("replace_missing_id_not_found", func(t *testing.T) {
		f, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		pid, gid, _ := seed(t, f, "Missing", day(2025, time.January, 10))
		_, err := f.Repo.Save(context.Background(), model.PlayerGameStats{ID: 5555555, PlayerID: pid, GameID: gid})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate_player_game_rejected", func(t *testing.T) {
		f, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		pid, gid, _ := seed(t, f, "Dup", day(2025, time.January, 10))
		if _, err := f.Repo.Save(ctx, model.PlayerGameStats{PlayerID: pid, GameID: gid, Points: 1}); err != nil {
			t.Fatalf("first: %v", err)
		}
		_, err := f.Repo.Save(ctx, model.PlayerGameStats{PlayerID: pid, GameID: gid, Points: 2})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("unknown_references_conflict", func(t *testing.T) {
		f, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := f.Repo.Save(context.Background(), model.PlayerGameStats{PlayerID: 9191919, GameID: 9292929})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("find_by_player_team_and_ranges", func(t *testing.T) {
		f, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		teamID, err := f.MakeTeam(ctx, "Range")
		if err != nil {
			t.Fatalf("mkTeam: %v", err)
		}
		p1, _ := f.MakePlayer(ctx, teamID)
		p2, _ := f.MakePlayer(ctx, teamID)
		otherPlayer, otherGame, _ := seed(t, f, "Elsewhere", day(2025, time.January, 2))

		gBefore, _ := f.MakeGame(ctx, day(2024, time.September, 30))
		gStart, _ := f.MakeGame(ctx, day(2024, time.October, 1))
		gEnd, _ := f.MakeGame(ctx, day(2025, time.June, 30))

		for _, row := range []model.PlayerGameStats{
			{PlayerID: p1, GameID: gBefore, Points: 1},
			{PlayerID: p1, GameID: gStart, Points: 2},
			{PlayerID: p1, GameID: gEnd, Points: 3},
			{PlayerID: p2, GameID: gStart, Points: 4},
			{PlayerID: otherPlayer, GameID: otherGame, Points: 5},
		} {
			if _, err := f.Repo.Save(ctx, row); err != nil {
				t.Fatalf("seed row %+v: %v", row, err)
			}
		}

		from, to := day(2024, time.October, 1), day(2025, time.June, 30)
		assertPoints(t, "player all", mustRows(t)(f.Repo.FindByPlayer(ctx, p1)), 1, 2, 3)
		assertPoints(t, "player range", mustRows(t)(f.Repo.FindByPlayerInRange(ctx, p1, from, to)), 2, 3)
		assertPoints(t, "team all", mustRows(t)(f.Repo.FindByTeam(ctx, teamID)), 1, 2, 3, 4)
		assertPoints(t, "team range", mustRows(t)(f.Repo.FindByTeamInRange(ctx, teamID, from, to)), 2, 3, 4)
		assertPoints(t, "game", mustRows(t)(f.Repo.FindByGame(ctx, gStart)), 2, 4)
		assertPoints(t, "empty range", mustRows(t)(f.Repo.FindByPlayerInRange(ctx, p2, day(2030, time.January, 1), day(2030, time.December, 31))))
	})

	t.Run("delete_all", func(t *testing.T) {
		f, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		pid, gid, _ := seed(t, f, "Delete", day(2025, time.January, 10))
		if _, err := f.Repo.Save(ctx, model.PlayerGameStats{PlayerID: pid, GameID: gid}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := f.Repo.DeleteAll(ctx); err != nil {
			t.Fatalf("delete all: %v", err)
		}
		list, err := f.Repo.FindByGame(ctx, gid)
		if err != nil || len(list) != 0 {
			t.Fatalf("expected empty after delete: len=%d err=%v", len(list), err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, teams, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := teams.Create(ctx, model.Team{Name: "TxCommit"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := teams.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, teams, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := teams.Create(ctx, model.Team{Name: "TxRollback"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := teams.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}

func mustRows(t *testing.T) func([]model.PlayerGameStats, error) []model.PlayerGameStats {
	return func(rows []model.PlayerGameStats, err error) []model.PlayerGameStats {
		t.Helper()
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		return rows
	}
}

// assertPoints compares the multiset of points, ignoring row order.
func assertPoints(t *testing.T, label string, rows []model.PlayerGameStats, want ...int) {
	t.Helper()
	count := make(map[int]int, len(want))
	for _, w := range want {
		count[w]++
	}
	for _, r := range rows {
		count[r.Points]--
	}
	for p, c := range count {
		if c != 0 {
			t.Fatalf("%s: points %d off by %d (rows=%s)", label, p, c, describe(rows))
		}
	}
	if len(rows) != len(want) {
		t.Fatalf("%s: expected %d rows, got %d", label, len(want), len(rows))
	}
}

func describe(rows []model.PlayerGameStats) string {
	s := ""
	for _, r := range rows {
		s += fmt.Sprintf("[p=%d g=%d pts=%d]", r.PlayerID, r.GameID, r.Points)
	}
	return s
}
