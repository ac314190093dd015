package localKeyGenerator

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"github.com/Layr-Labs/social-custody-go/internal/keyGenerator"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// LocalKeyGenerator creates secp256k1 wallet keys in-process from crypto/rand.
type LocalKeyGenerator struct {
	logger    *zap.Logger
	generated atomic.Uint64
}

func NewLocalKeyGenerator(logger *zap.Logger) *LocalKeyGenerator {
	return &LocalKeyGenerator{
		logger: logger,
	}
}

func (l *LocalKeyGenerator) GenerateKey(ctx context.Context) (*keyGenerator.GeneratedKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secp256k1 key: %w", err)
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey)
	l.generated.Add(1)

	l.logger.Debug("Generated wallet key",
		zap.String("address", address.Hex()),
	)

	return &keyGenerator.GeneratedKey{
		PrivateKeyHex: hex.EncodeToString(crypto.FromECDSA(privateKey)),
		Address:       address.Hex(),
	}, nil
}

// GetGeneratedCount returns how many keys this generator has produced.
func (l *LocalKeyGenerator) GetGeneratedCount() uint64 {
	return l.generated.Load()
}
