package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/twelve-week-sync/internal/adapters/cache"
	"github.com/comitanigiacomo/twelve-week-sync/internal/adapters/repository"
	"github.com/comitanigiacomo/twelve-week-sync/internal/config"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
)

// Backend is the gateway chosen by configuration plus the handles behind it.
// DB and Redis are nil when the backend does not use them.
type Backend struct {
	Gateway domain.Gateway
	DB      *sqlx.DB
	Redis   *redis.Client
	Kind    string
}

// OpenBackend connects the configured backend and runs migrations for SQL stores.
// The redis read cache only wraps SQL backends.
func OpenBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Backend{Kind: cfg.Backend}
	switch cfg.Backend {
	case config.BackendLocal:
		snap, err := repository.OpenSnapshot(cfg.SnapshotPath, cfg.User, time.Now())
		if err != nil {
			return nil, fmt.Errorf("open local snapshot: %w", err)
		}
		b.Gateway = snap
		return b, nil

	case config.BackendSQLite:
		db, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.DB = db

	case config.BackendPostgres:
		log.Println("Connecting to database...")
		db, err := repository.OpenPostgres(cfg.DB.Driver, cfg.DSN())
		if err != nil {
			return nil, err
		}
		b.DB = db
		log.Println("Database connected successfully.")
	}

	if err := repository.Migrate(ctx, b.DB); err != nil {
		b.Close()
		return nil, err
	}
	b.Gateway = repository.NewSQLGateway(b.DB)

	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Printf("[CACHE] Redis unavailable, serving without cache: %v", err)
			return b, nil
		}
		b.Redis = rdb
		b.Gateway = repository.NewCachedGateway(b.Gateway, rdb, cfg.Redis.CacheTTL)
	}
	return b, nil
}

func (b *Backend) Close() {
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	if b.DB != nil {
		_ = b.DB.Close()
	}
}
