package config

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartengine/internal/port"
	"github.com/nikolayk812/cartengine/internal/repository"
	"github.com/redis/go-redis/v9"
)

// OpenSlots connects the configured slot store, migrating the postgres schema
// first. The returned func releases it.
func OpenSlots(ctx context.Context, cfg Config) (port.SlotStore, func(), error) {
	switch cfg.Storage {
	case StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis.Ping: %w", err)
		}
		return repository.NewRedisSlots(client), func() { _ = client.Close() }, nil

	case StoragePostgres:
		if err := repository.RunMigrations(cfg.PostgresDSN); err != nil {
			return nil, nil, fmt.Errorf("repository.RunMigrations: %w", err)
		}

		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("pool.Ping: %w", err)
		}
		return repository.NewPostgresSlots(pool), pool.Close, nil

	default:
		return repository.NewMemorySlots(), func() {}, nil
	}
}
