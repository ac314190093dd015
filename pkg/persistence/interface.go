package persistence

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by GetEncryptedKey when no wallet exists for the user.
	ErrNotFound = errors.New("wallet not found")

	// ErrWalletExists is returned by SaveWallet when a record already exists for the id.
	ErrWalletExists = errors.New("wallet already exists")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("persistence layer is closed")
)

// IWalletPersistence stores custodial wallet records keyed by user id.
// All implementations must be thread-safe.
//
// The stored key is always the sealed envelope, never plaintext.
type IWalletPersistence interface {
	// SaveWallet creates the record for wallet.Id. Records are never
	// overwritten; an existing id fails with ErrWalletExists.
	SaveWallet(ctx context.Context, wallet *WalletRecord) error

	// GetWallet returns nil if no record exists, error only on storage failure.
	GetWallet(ctx context.Context, userId string) (*WalletRecord, error)

	// GetEncryptedKey returns the sealed key for the user, or ErrNotFound.
	GetEncryptedKey(ctx context.Context, userId string) (string, error)

	// Close cleanly shuts down the persistence layer.
	// Idempotent - safe to call multiple times.
	Close() error

	// HealthCheck verifies the persistence layer is operational.
	HealthCheck() error
}

// GetEncryptedKey implements the shared lookup semantics on top of GetWallet.
func GetEncryptedKey(ctx context.Context, p IWalletPersistence, userId string) (string, error) {
	wallet, err := p.GetWallet(ctx, userId)
	if err != nil {
		return "", err
	}
	if wallet == nil || wallet.Key == "" {
		return "", ErrNotFound
	}
	return wallet.Key, nil
}
