package awsKms

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Layr-Labs/social-custody-go/pkg/clients/keyService"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/Layr-Labs/social-custody-go/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubKMS seals by prefixing the key alias, so blobs from another alias are rejected
type stubKMS struct {
	mu          sync.Mutex
	aliases     map[string]string
	rotation    map[string]int32
	createCalls int
	failWith    error
}

func newStubKMS() *stubKMS {
	return &stubKMS{aliases: map[string]string{}, rotation: map[string]int32{}}
}

func (s *stubKMS) Encrypt(_ context.Context, in *kms.EncryptInput, _ ...func(*kms.Options)) (*kms.EncryptOutput, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	blob := append([]byte(*in.KeyId+"|"), in.Plaintext...)
	return &kms.EncryptOutput{CiphertextBlob: blob, KeyId: in.KeyId}, nil
}

func (s *stubKMS) Decrypt(_ context.Context, in *kms.DecryptInput, _ ...func(*kms.Options)) (*kms.DecryptOutput, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	prefix := []byte(*in.KeyId + "|")
	if !bytes.HasPrefix(in.CiphertextBlob, prefix) {
		return nil, &types.IncorrectKeyException{Message: aws.String("wrong key")}
	}
	return &kms.DecryptOutput{Plaintext: in.CiphertextBlob[len(prefix):]}, nil
}

func (s *stubKMS) DescribeKey(_ context.Context, in *kms.DescribeKeyInput, _ ...func(*kms.Options)) (*kms.DescribeKeyOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keyId, ok := s.aliases[*in.KeyId]
	if !ok {
		return nil, &types.NotFoundException{Message: aws.String("alias not found")}
	}
	return &kms.DescribeKeyOutput{KeyMetadata: &types.KeyMetadata{KeyId: aws.String(keyId)}}, nil
}

func (s *stubKMS) CreateKey(_ context.Context, in *kms.CreateKeyInput, _ ...func(*kms.Options)) (*kms.CreateKeyOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if in.KeySpec != types.KeySpecSymmetricDefault || in.KeyUsage != types.KeyUsageTypeEncryptDecrypt {
		return nil, errors.New("unexpected key spec")
	}
	return &kms.CreateKeyOutput{KeyMetadata: &types.KeyMetadata{KeyId: aws.String("1234abcd-key")}}, nil
}

func (s *stubKMS) CreateAlias(_ context.Context, in *kms.CreateAliasInput, _ ...func(*kms.Options)) (*kms.CreateAliasOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases[*in.AliasName] = *in.TargetKeyId
	return &kms.CreateAliasOutput{}, nil
}

func (s *stubKMS) EnableKeyRotation(_ context.Context, in *kms.EnableKeyRotationInput, _ ...func(*kms.Options)) (*kms.EnableKeyRotationOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation[*in.KeyId] = *in.RotationPeriodInDays
	return &kms.EnableKeyRotationOutput{}, nil
}

func testKeyPath(key string) keyService.KeyResourcePath {
	return keyService.KeyResourcePath{Project: "social", Location: "us-east-1", KeyRing: "wallets", Key: key}
}

func newTestClient(t *testing.T, api KMSAPI, key string) *AWSKMSClient {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)
	c, err := NewAWSKMSClientWithAPI(api, &AWSKMSClientConfig{KeyPath: testKeyPath(key)}, l)
	require.NoError(t, err)
	return c
}

func Test_AWSKMSClient(t *testing.T) {
	ctx := context.Background()

	t.Run("Should round trip through the alias", func(t *testing.T) {
		c := newTestClient(t, newStubKMS(), "custody")
		ct, err := c.Encrypt(ctx, []byte("layer-one"))
		require.NoError(t, err)

		pt, err := c.Decrypt(ctx, ct)
		require.NoError(t, err)
		assert.Equal(t, "layer-one", string(pt))
	})

	t.Run("Should return empty output for a different master key", func(t *testing.T) {
		stub := newStubKMS()
		ct, err := newTestClient(t, stub, "custody").Encrypt(ctx, []byte("layer-one"))
		require.NoError(t, err)

		pt, err := newTestClient(t, stub, "other").Decrypt(ctx, ct)
		require.NoError(t, err)
		assert.Empty(t, pt)
	})

	t.Run("Should return empty output for malformed ciphertext", func(t *testing.T) {
		pt, err := newTestClient(t, newStubKMS(), "custody").Decrypt(ctx, "%%%")
		require.NoError(t, err)
		assert.Empty(t, pt)
	})

	t.Run("Should surface transport failures as unavailable", func(t *testing.T) {
		stub := newStubKMS()
		stub.failWith = errors.New("dial tcp: i/o timeout")
		c := newTestClient(t, stub, "custody")

		_, err := c.Encrypt(ctx, []byte("x"))
		assert.ErrorIs(t, err, failures.ErrKeyServiceUnavailable)

		_, err = c.Decrypt(ctx, "c29tZXRoaW5n")
		assert.ErrorIs(t, err, failures.ErrKeyServiceUnavailable)
	})

	t.Run("Should surface a cancelled rate limit wait as unavailable", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := newTestClient(t, newStubKMS(), "custody").Encrypt(cctx, []byte("x"))
		assert.ErrorIs(t, err, failures.ErrKeyServiceUnavailable)
	})

	t.Run("Should reject an incomplete key path", func(t *testing.T) {
		_, err := NewAWSKMSClientWithAPI(newStubKMS(), &AWSKMSClientConfig{KeyPath: keyService.KeyResourcePath{Project: "social"}}, nil)
		assert.Error(t, err)
	})
}

func Test_ProvisionKey(t *testing.T) {
	ctx := context.Background()
	stub := newStubKMS()
	c := newTestClient(t, stub, "custody")

	first, err := c.ProvisionKey(ctx, 0)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "alias/social/wallets/custody", first.AliasName)
	assert.Equal(t, int32(DefaultRotationDays), stub.rotation[first.KeyId])

	second, err := c.ProvisionKey(ctx, 180)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.KeyId, second.KeyId)
	assert.Equal(t, int32(180), stub.rotation[first.KeyId])
	assert.Equal(t, 1, stub.createCalls)
}
