package factory

import (
	"context"
	"testing"

	"github.com/Layr-Labs/social-custody-go/pkg/config"
	"github.com/Layr-Labs/social-custody-go/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewWalletPersistence(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)
	ctx := context.Background()

	for _, cfg := range []*config.PersistenceConfig{
		{Type: config.PersistenceType_Memory},
		{Type: config.PersistenceType_Badger, BadgerPath: t.TempDir()},
		{Type: config.PersistenceType_Redis, RedisAddress: miniredis.RunT(t).Addr()},
	} {
		t.Run(string(cfg.Type), func(t *testing.T) {
			store, err := NewWalletPersistence(ctx, cfg, l)
			require.NoError(t, err)
			assert.NoError(t, store.HealthCheck())
			assert.NoError(t, store.Close())
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := NewWalletPersistence(ctx, &config.PersistenceConfig{Type: "sqlite"}, l)
		assert.Error(t, err)
	})
}
