package factory

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/social-custody-go/pkg/config"
	"github.com/Layr-Labs/social-custody-go/pkg/persistence"
	"github.com/Layr-Labs/social-custody-go/pkg/persistence/badger"
	"github.com/Layr-Labs/social-custody-go/pkg/persistence/memory"
	"github.com/Layr-Labs/social-custody-go/pkg/persistence/postgres"
	"github.com/Layr-Labs/social-custody-go/pkg/persistence/redis"
	"go.uber.org/zap"
)

// NewWalletPersistence opens the configured wallet store and verifies it is healthy.
func NewWalletPersistence(ctx context.Context, cfg *config.PersistenceConfig, l *zap.Logger) (persistence.IWalletPersistence, error) {
	var (
		store persistence.IWalletPersistence
		err   error
	)

	switch cfg.Type {
	case config.PersistenceType_Memory:
		store = memory.NewMemoryPersistence(l)
	case config.PersistenceType_Badger:
		store, err = badger.NewBadgerPersistence(cfg.BadgerPath, l)
	case config.PersistenceType_Redis:
		store, err = redis.NewRedisPersistence(&redis.RedisConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
		}, l)
	case config.PersistenceType_Postgres:
		store, err = postgres.NewPostgresPersistence(ctx, &postgres.PostgresConfig{DSN: cfg.PostgresDSN}, l)
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s persistence: %w", cfg.Type, err)
	}

	if err := store.HealthCheck(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s persistence health check failed: %w", cfg.Type, err)
	}
	return store, nil
}
