// Package persistenceTest holds the behaviour every IWalletPersistence
// backend must share.
package persistenceTest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Layr-Labs/social-custody-go/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func NewWallet(id string) *persistence.WalletRecord {
	return &persistence.WalletRecord{
		Id:        id,
		Key:       "env1:local,kms:" + id,
		Address:   "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// RunWalletPersistenceSuite runs the shared contract against a fresh store
// produced by newStore for each subtest.
func RunWalletPersistenceSuite(t *testing.T, newStore func(t *testing.T) persistence.IWalletPersistence) {
	ctx := context.Background()

	t.Run("Should save and load a wallet", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		wallet := NewWallet("user-1")
		require.NoError(t, store.SaveWallet(ctx, wallet))

		loaded, err := store.GetWallet(ctx, "user-1")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, wallet.Id, loaded.Id)
		assert.Equal(t, wallet.Key, loaded.Key)
		assert.Equal(t, wallet.Address, loaded.Address)
		assert.True(t, wallet.CreatedAt.Equal(loaded.CreatedAt))

		key, err := store.GetEncryptedKey(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, wallet.Key, key)
	})

	t.Run("Should report a missing wallet", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		loaded, err := store.GetWallet(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, loaded)

		_, err = store.GetEncryptedKey(ctx, "nobody")
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})

	t.Run("Should never overwrite a wallet", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.SaveWallet(ctx, NewWallet("user-1")))

		replacement := NewWallet("user-1")
		replacement.Key = "env1:local,kms:replacement"
		assert.ErrorIs(t, store.SaveWallet(ctx, replacement), persistence.ErrWalletExists)

		key, err := store.GetEncryptedKey(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "env1:local,kms:user-1", key)
	})

	t.Run("Should reject invalid records", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		assert.Error(t, store.SaveWallet(ctx, nil))
		assert.Error(t, store.SaveWallet(ctx, &persistence.WalletRecord{Id: "user-1"}))
	})

	t.Run("Should isolate stored records from callers", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		wallet := NewWallet("user-1")
		require.NoError(t, store.SaveWallet(ctx, wallet))
		wallet.Key = "mutated"

		loaded, err := store.GetWallet(ctx, "user-1")
		require.NoError(t, err)
		loaded.Key = "mutated again"

		key, err := store.GetEncryptedKey(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "env1:local,kms:user-1", key)
	})

	t.Run("Should allow exactly one concurrent create per id", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		const workers = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				w := NewWallet("contended")
				w.Key = fmt.Sprintf("env1:local,kms:%d", i)
				if err := store.SaveWallet(ctx, w); err == nil {
					mu.Lock()
					created++
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, persistence.ErrWalletExists)
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 1, created)
	})

	t.Run("Should fail after close", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.HealthCheck())
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		assert.Error(t, store.HealthCheck())
		assert.Error(t, store.SaveWallet(ctx, NewWallet("user-1")))
		_, err := store.GetWallet(ctx, "user-1")
		assert.Error(t, err)
	})
}
