package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/maxviazov/season-stats-service/internal/cache"
	"github.com/maxviazov/season-stats-service/internal/config"
	"github.com/maxviazov/season-stats-service/internal/handler"
	"github.com/maxviazov/season-stats-service/internal/logger"
	"github.com/maxviazov/season-stats-service/internal/metrics"
	"github.com/maxviazov/season-stats-service/internal/repository"
	"github.com/maxviazov/season-stats-service/internal/repository/memory"
	"github.com/maxviazov/season-stats-service/internal/repository/postgres"
	"github.com/maxviazov/season-stats-service/internal/scheduler"
	"github.com/maxviazov/season-stats-service/internal/service"
)

const shutdownTimeout = 15 * time.Second

// repos is the storage backend selected by storage.driver.
type repos struct {
	teams   repository.TeamRepository
	players repository.PlayerRepository
	games   repository.GameRepository
	seasons repository.SeasonRepository
	stats   repository.StatsRepository
	tx      repository.TxManager
	pinger  repository.Pinger
	close   func()
}

func main() {
	path := os.Getenv("APP_CONFIG")
	if path == "" {
		path = "config.yaml"
	}

	// Load application config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("service stopped with error")
	}
	appLogger.Info().Msg("👋 Service stopped")
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	store, err := openStorage(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer store.close()

	rec, metricsHandler, shutdownMetrics, err := metrics.Setup(ctx, metrics.TelemetryConfig{
		Enabled:      cfg.Telemetry.Enabled,
		ServiceName:  cfg.App.Name,
		OtlpEndpoint: cfg.Telemetry.OtlpEndpoint,
		OtlpInsecure: cfg.Telemetry.OtlpInsecure,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownMetrics(sctx); err != nil {
			appLogger.Warn().Err(err).Msg("metrics shutdown failed")
		}
	}()

	clock := clockwork.NewRealClock()
	cacheStore, closeCache, err := openCache(ctx, cfg, clock)
	if err != nil {
		return err
	}
	defer closeCache()
	layer := cache.New(cacheStore, time.Duration(cfg.Cache.TTLSeconds)*time.Second, appLogger, rec)
	appLogger.Info().Str("backend", cfg.Cache.Backend).Int("ttl_seconds", cfg.Cache.TTLSeconds).Msg("✅ Cache ready")

	// One lock shared by the write and read paths.
	lock := service.NewStatsLock(time.Duration(cfg.Stats.LockTimeoutMs) * time.Millisecond)

	seasonStats := service.NewSeasonStatsService(service.SeasonStatsDeps{
		Teams:   store.teams,
		Players: store.players,
		Seasons: store.seasons,
		Stats:   store.stats,
		Lock:    lock,
		Cache:   layer,
		Clock:   clock,
	}, appLogger)
	statsSvc := service.NewStatsService(service.StatsDeps{
		Stats:   store.stats,
		Players: store.players,
		Games:   store.games,
		Tx:      store.tx,
		Lock:    lock,
		Cache:   layer,
		Metrics: rec,
	}, appLogger)

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler.SeasonCheckSpec, seasonStats, clock, appLogger)
		if err != nil {
			return err
		}
		sched.Start(ctx)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			sched.Stop(sctx)
		}()
	}

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	handler.Register(engine, handler.Deps{
		Pinger:         store.pinger,
		Teams:          service.NewTeamService(store.teams, store.players, lock, layer, appLogger),
		Players:        service.NewPlayerService(store.players, store.teams, appLogger),
		Games:          service.NewGameService(store.games, store.teams, store.tx, appLogger),
		Seasons:        service.NewSeasonService(store.seasons, clock, seasonStats.RefreshSeason, appLogger),
		Stats:          statsSvc,
		SeasonStats:    seasonStats,
		Metrics:        rec,
		MetricsHandler: metricsHandler,
		RequestTimeout: time.Duration(cfg.App.RequestTimeoutMs) * time.Millisecond,
		Logger:         appLogger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Str("addr", srv.Addr).Str("env", cfg.App.Env).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func openStorage(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) (repos, error) {
	if cfg.Storage.Driver == "memory" {
		appLogger.Warn().Msg("using in-memory storage; data is lost on restart")
		s := memory.NewStore()
		return repos{
			teams: s.Teams(), players: s.Players(), games: s.Games(), seasons: s.Seasons(), stats: s.Stats(),
			tx: s.TxManager(), pinger: s, close: func() {},
		}, nil
	}

	db, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		return repos{}, fmt.Errorf("postgres: %w", err)
	}
	if cfg.Postgres.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return repos{}, fmt.Errorf("migrate: %w", err)
		}
	}
	pool := db.Pool()
	return repos{
		teams:   postgres.NewTeamRepository(pool),
		players: postgres.NewPlayerRepository(pool),
		games:   postgres.NewGameRepository(pool),
		seasons: postgres.NewSeasonRepository(pool),
		stats:   postgres.NewStatsRepository(pool),
		tx:      postgres.NewTxManager(pool),
		pinger:  postgres.NewPinger(pool),
		close:   db.Close,
	}, nil
}

func openCache(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (cache.Store, func(), error) {
	if cfg.Cache.Backend != "redis" {
		return cache.NewMemoryStore(clock), func() {}, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return cache.NewRedisStore(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
}
