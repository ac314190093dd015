package localKms

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/Layr-Labs/social-custody-go/pkg/clients/keyService"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"go.uber.org/zap"
)

// LocalKMSClient holds the master key in process memory. It mirrors the
// remote service contract for development chains and tests.
type LocalKMSClient struct {
	logger  *zap.Logger
	keyPath keyService.KeyResourcePath
	aead    cipher.AEAD
}

var _ keyService.IRemoteKeyService = (*LocalKMSClient)(nil)

// NewLocalKMSClient takes a 32-byte master key as hex, with or without 0x.
func NewLocalKMSClient(keyPath keyService.KeyResourcePath, masterKeyHex string, logger *zap.Logger) (*LocalKMSClient, error) {
	masterKey, err := hex.DecodeString(strings.TrimPrefix(masterKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("master key must be hex: %w", err)
	}
	if len(masterKey) != 32 {
		return nil, fmt.Errorf("master key must be 32 bytes, got %d", len(masterKey))
	}

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	logger.Sugar().Warnw("Using in-process master key, do not use in production",
		"keyPath", keyPath.String(),
	)

	return &LocalKMSClient{
		logger:  logger,
		keyPath: keyPath,
		aead:    aead,
	}, nil
}

func (l *LocalKMSClient) KeyPath() keyService.KeyResourcePath {
	return l.keyPath
}

func (l *LocalKMSClient) Encrypt(ctx context.Context, plaintext []byte) (string, error) {
	if err := l.admit(ctx); err != nil {
		return "", err
	}
	nonce := make([]byte, l.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	// the key path is bound as associated data so blobs cannot move between keys
	sealed := l.aead.Seal(nonce, nonce, plaintext, []byte(l.keyPath.String()))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (l *LocalKMSClient) Decrypt(ctx context.Context, ciphertext string) ([]byte, error) {
	if err := l.admit(ctx); err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) < l.aead.NonceSize()+l.aead.Overhead() {
		return nil, nil
	}
	nonce, sealed := raw[:l.aead.NonceSize()], raw[l.aead.NonceSize():]
	plaintext, err := l.aead.Open(nil, nonce, sealed, []byte(l.keyPath.String()))
	if err != nil {
		l.logger.Sugar().Debugw("Ciphertext was not produced under this master key", "keyPath", l.keyPath.String())
		return nil, nil
	}
	return plaintext, nil
}

func (l *LocalKMSClient) admit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return failures.Wrap(failures.KindKeyServiceUnavailable, err, "key service request not admitted")
	}
	return nil
}
