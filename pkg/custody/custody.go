// Package custody generates, seals and recovers custodial wallet keys.
//
// Keys are sealed through an envelope chain (local passphrase layer, then the
// managed key service) before they reach the key store, and recovered only
// for the duration of a single signing request.
package custody

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Layr-Labs/crypto-libs/pkg/ecdsa"
	"github.com/Layr-Labs/social-custody-go/internal/keyGenerator"
	"github.com/Layr-Labs/social-custody-go/pkg/envelope"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/Layr-Labs/social-custody-go/pkg/persistence"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type GeneratedWallet struct {
	EncryptedKey string
	Address      string
}

type Service struct {
	generator keyGenerator.IKeyGenerator
	chain     *envelope.Chain
	store     persistence.IWalletPersistence
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(
	generator keyGenerator.IKeyGenerator,
	chain *envelope.Chain,
	store persistence.IWalletPersistence,
	logger *zap.Logger,
) *Service {
	return &Service{
		generator: generator,
		chain:     chain,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateWallet creates a key and seals it. The plaintext never leaves this call.
func (s *Service) GenerateWallet(ctx context.Context) (*GeneratedWallet, error) {
	key, err := s.generator.GenerateKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate wallet key: %w", err)
	}
	defer key.Destroy()

	sealed, err := s.chain.Seal(ctx, key.PrivateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to seal wallet key: %w", err)
	}

	return &GeneratedWallet{
		EncryptedKey: sealed,
		Address:      key.Address,
	}, nil
}

// RecoverKey opens a sealed key. Any layer that cannot open its input is Forbidden.
func (s *Service) RecoverKey(ctx context.Context, ciphertext string) (*SignerKey, error) {
	plaintext, err := s.chain.Open(ctx, ciphertext)
	if err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(plaintext, "0x"))
	if err != nil {
		return nil, failures.Forbidden("recovered key material is not hex")
	}
	signer, err := NewSignerKey(raw)
	if err != nil {
		return nil, failures.Forbidden("recovered key material is not a signing key")
	}
	return signer, nil
}

// ProvisionWallet creates and stores the user's wallet. A user that already
// has one keeps it.
func (s *Service) ProvisionWallet(ctx context.Context, userId string) (*persistence.WalletRecord, error) {
	if strings.TrimSpace(userId) == "" {
		return nil, failures.UserInput("user id is required")
	}

	existing, err := s.store.GetWallet(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to look up wallet: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	generated, err := s.GenerateWallet(ctx)
	if err != nil {
		return nil, err
	}

	record := &persistence.WalletRecord{
		Id:        userId,
		Key:       generated.EncryptedKey,
		Address:   generated.Address,
		CreatedAt: s.now().UTC(),
	}
	err = s.store.SaveWallet(ctx, record)
	if errors.Is(err, persistence.ErrWalletExists) {
		// lost a race with another request for the same user
		return s.store.GetWallet(ctx, userId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store wallet: %w", err)
	}

	s.logger.Sugar().Infow("Provisioned custodial wallet",
		"userId", userId,
		"address", record.Address,
	)
	return record, nil
}

// SignerKeyForUser recovers the user's key and checks it still derives the
// address recorded at creation.
func (s *Service) SignerKeyForUser(ctx context.Context, userId string) (*SignerKey, error) {
	sealed, err := s.store.GetEncryptedKey(ctx, userId)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, failures.Forbidden("no custodial wallet for user %s", userId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up wallet key: %w", err)
	}

	signer, err := s.RecoverKey(ctx, sealed)
	if err != nil {
		s.logger.Sugar().Warnw("Failed to recover custodial key", "userId", userId, "error", err)
		return nil, err
	}

	address, err := s.AddressForUser(ctx, userId)
	if err != nil {
		signer.Destroy()
		return nil, err
	}
	if err := verifyAddress(signer, address.Hex()); err != nil {
		signer.Destroy()
		s.logger.Sugar().Errorw("Recovered key does not match stored address",
			"userId", userId,
			"address", address.Hex(),
		)
		return nil, err
	}
	return signer, nil
}

// AddressForUser returns the stored address without touching key material.
func (s *Service) AddressForUser(ctx context.Context, userId string) (common.Address, error) {
	wallet, err := s.store.GetWallet(ctx, userId)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to look up wallet: %w", err)
	}
	if wallet == nil {
		return common.Address{}, failures.Forbidden("no custodial wallet for user %s", userId)
	}
	return common.HexToAddress(wallet.Address), nil
}

func verifyAddress(signer *SignerKey, recorded string) error {
	pk, err := ecdsa.NewPrivateKeyFromBytes(signer.raw)
	if err != nil {
		return failures.Forbidden("recovered key material is not a signing key")
	}
	derived, err := pk.DeriveAddress()
	if err != nil {
		return failures.Forbidden("failed to derive address from recovered key")
	}
	derivedAddress := common.HexToAddress(derived.String())
	if derivedAddress != common.HexToAddress(recorded) || derivedAddress != signer.Address() {
		return failures.Forbidden("recovered key does not match wallet address %s", recorded)
	}
	return nil
}
