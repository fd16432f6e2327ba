package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"habitledger/internal/cache"
	"habitledger/internal/config"
	"habitledger/internal/progress"
	"habitledger/internal/repository"
	"habitledger/pkg/circuitbreaker"
	"habitledger/pkg/db"
	"habitledger/pkg/lock"
	"habitledger/pkg/outbox"
	redisclient "habitledger/pkg/redis"
)

// App holds the long-lived dependencies shared by the server and the CLI.
type App struct {
	Config   *config.Config
	DB       *pgxpool.Pool
	Redis    *goredis.Client // nil when redis.addr is empty
	Outbox   *outbox.Repository
	Routines *repository.RoutineRepository
	Service  *progress.Service
	Breaker  *circuitbreaker.CircuitBreaker

	logger *zap.Logger
}

// New connects to PostgreSQL (required) and Redis (optional) and assembles
// the progress service. Without Redis the service uses an in-process lock
// and no stats cache.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Progress.Location()
	if err != nil {
		return nil, err
	}

	log.Info("Initializing database connection...")
	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}

	a := &App{
		Config:  cfg,
		DB:      pool,
		Outbox:  outbox.NewRepository(pool),
		Breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:  log,
	}
	a.Routines = repository.NewRoutineRepository(pool, log)

	ledger := repository.NewGuardedLedger(repository.NewCompletionRepository(pool, a.Outbox, log), a.Breaker)
	directory := repository.NewGuardedDirectory(a.Routines, a.Breaker)

	a.Service = progress.NewService(ledger, directory, log).WithLocation(loc)

	if cfg.Redis.Addr != "" {
		rdb, err := redisclient.Connect(cfg.Redis, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.Redis = rdb
		a.Service.
			WithLocker(lock.NewRedisLocker(rdb, cfg.Progress.LockTTL, log)).
			WithCache(cache.NewStatsCache(rdb, cfg.Progress.CacheTTL))
		log.Info("Using Redis lock and stats cache", zap.Duration("cache_ttl", cfg.Progress.CacheTTL))
	} else {
		log.Warn("Redis not configured, using in-process lock without stats cache")
	}

	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	a.DB.Close()
}
