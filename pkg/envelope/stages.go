package envelope

import (
	"context"

	"github.com/Layr-Labs/social-custody-go/pkg/clients/keyService"
	"github.com/Layr-Labs/social-custody-go/pkg/encryption"
)

const (
	StageLocal  = "local"
	StageRemote = "kms"
)

type localStage struct {
	enc *encryption.PassphraseEncryption
}

// NewLocalStage wraps the passphrase layer.
func NewLocalStage(enc *encryption.PassphraseEncryption) Stage {
	return &localStage{enc: enc}
}

func (l *localStage) Name() string { return StageLocal }

func (l *localStage) Seal(_ context.Context, plaintext string) (string, error) {
	return l.enc.Encrypt(plaintext)
}

func (l *localStage) Open(_ context.Context, ciphertext string) (string, error) {
	value, ok := l.enc.Decrypt(ciphertext).Value()
	if !ok {
		return "", nil
	}
	return value, nil
}

type remoteStage struct {
	kms keyService.IRemoteKeyService
}

// NewRemoteStage wraps a managed key service.
func NewRemoteStage(kms keyService.IRemoteKeyService) Stage {
	return &remoteStage{kms: kms}
}

func (r *remoteStage) Name() string { return StageRemote }

func (r *remoteStage) Seal(ctx context.Context, plaintext string) (string, error) {
	return r.kms.Encrypt(ctx, []byte(plaintext))
}

func (r *remoteStage) Open(ctx context.Context, ciphertext string) (string, error) {
	out, err := r.kms.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
