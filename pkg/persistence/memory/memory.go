package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Layr-Labs/social-custody-go/pkg/persistence"
	"go.uber.org/zap"
)

// MemoryPersistence is an in-memory implementation of IWalletPersistence.
// This implementation is intended for TESTING ONLY.
//
// All data is stored in memory and will be lost when the process exits.
// Records are copied on the way in and out to prevent external mutation.
type MemoryPersistence struct {
	mu      sync.RWMutex
	wallets map[string]*persistence.WalletRecord
	closed  bool
}

// NewMemoryPersistence creates a new in-memory persistence layer.
// Logs a loud warning since this should only be used for testing.
func NewMemoryPersistence(logger *zap.Logger) *MemoryPersistence {
	if logger != nil {
		logger.Sugar().Warnw("Using in-memory persistence - ALL WALLETS WILL BE LOST ON RESTART",
			"hint", "set CUSTODY_PERSISTENCE_TYPE=badger, redis or postgres for anything but tests",
		)
	}

	return &MemoryPersistence{
		wallets: make(map[string]*persistence.WalletRecord),
	}
}

func (m *MemoryPersistence) SaveWallet(ctx context.Context, wallet *persistence.WalletRecord) error {
	if err := wallet.Validate(); err != nil {
		return fmt.Errorf("cannot save wallet: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	if _, exists := m.wallets[wallet.Id]; exists {
		return persistence.ErrWalletExists
	}
	m.wallets[wallet.Id] = wallet.Copy()
	return nil
}

func (m *MemoryPersistence) GetWallet(ctx context.Context, userId string) (*persistence.WalletRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	return m.wallets[userId].Copy(), nil
}

func (m *MemoryPersistence) GetEncryptedKey(ctx context.Context, userId string) (string, error) {
	return persistence.GetEncryptedKey(ctx, m, userId)
}

// Count returns the number of stored wallets.
func (m *MemoryPersistence) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.wallets)
}

func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.wallets = nil
	return nil
}

func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return persistence.ErrClosed
	}
	return nil
}
