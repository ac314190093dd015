package awsKms

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/Layr-Labs/social-custody-go/pkg/clients/keyService"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	pkgErrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// shared cryptographic operation quota is 5,500/s in most regions
	defaultRequestsPerSecond = 100
	defaultBurst             = 20
	DefaultRotationDays      = 90
)

// KMSAPI is the subset of *kms.Client used by the custody service.
type KMSAPI interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
	DescribeKey(ctx context.Context, params *kms.DescribeKeyInput, optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
	CreateKey(ctx context.Context, params *kms.CreateKeyInput, optFns ...func(*kms.Options)) (*kms.CreateKeyOutput, error)
	CreateAlias(ctx context.Context, params *kms.CreateAliasInput, optFns ...func(*kms.Options)) (*kms.CreateAliasOutput, error)
	EnableKeyRotation(ctx context.Context, params *kms.EnableKeyRotationInput, optFns ...func(*kms.Options)) (*kms.EnableKeyRotationOutput, error)
}

type AWSKMSClientConfig struct {
	KeyPath           keyService.KeyResourcePath
	RequestsPerSecond float64
	Burst             int
}

type AWSKMSClient struct {
	logger    *zap.Logger
	kmsClient KMSAPI
	keyPath   keyService.KeyResourcePath
	limiter   *rate.Limiter
}

var _ keyService.IRemoteKeyService = (*AWSKMSClient)(nil)

func NewAWSKMSClient(awsCfg aws.Config, cfg *AWSKMSClientConfig, logger *zap.Logger) (*AWSKMSClient, error) {
	return NewAWSKMSClientWithAPI(kms.NewFromConfig(awsCfg), cfg, logger)
}

func NewAWSKMSClientWithAPI(api KMSAPI, cfg *AWSKMSClientConfig, logger *zap.Logger) (*AWSKMSClient, error) {
	if err := cfg.KeyPath.Validate(); err != nil {
		return nil, err
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	return &AWSKMSClient{
		logger:    logger,
		kmsClient: api,
		keyPath:   cfg.KeyPath,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

func (a *AWSKMSClient) KeyPath() keyService.KeyResourcePath {
	return a.keyPath
}

func (a *AWSKMSClient) Encrypt(ctx context.Context, plaintext []byte) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}

	out, err := a.kmsClient.Encrypt(ctx, &kms.EncryptInput{
		KeyId:     aws.String(a.keyPath.AliasName()),
		Plaintext: plaintext,
	})
	if err != nil {
		return "", failures.Wrap(failures.KindKeyServiceUnavailable, err,
			"failed to encrypt with key %s", a.keyPath.String())
	}
	return base64.StdEncoding.EncodeToString(out.CiphertextBlob), nil
}

func (a *AWSKMSClient) Decrypt(ctx context.Context, ciphertext string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(blob) == 0 {
		a.logger.Sugar().Warnw("Ciphertext is not valid base64", "keyPath", a.keyPath.String())
		return nil, nil
	}

	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	out, err := a.kmsClient.Decrypt(ctx, &kms.DecryptInput{
		KeyId:          aws.String(a.keyPath.AliasName()),
		CiphertextBlob: blob,
	})
	if err != nil {
		if isWrongKeyError(err) {
			a.logger.Sugar().Warnw("Ciphertext was not produced under this master key",
				"keyPath", a.keyPath.String(),
				"error", err,
			)
			return nil, nil
		}
		return nil, failures.Wrap(failures.KindKeyServiceUnavailable, err,
			"failed to decrypt with key %s", a.keyPath.String())
	}
	return out.Plaintext, nil
}

func (a *AWSKMSClient) wait(ctx context.Context) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return failures.Wrap(failures.KindKeyServiceUnavailable, err, "key service request not admitted")
	}
	return nil
}

func isWrongKeyError(err error) bool {
	var invalidCiphertext *types.InvalidCiphertextException
	var incorrectKey *types.IncorrectKeyException
	return errors.As(err, &invalidCiphertext) || errors.As(err, &incorrectKey)
}

type ProvisionedKey struct {
	KeyId        string
	AliasName    string
	Created      bool
	RotationDays int32
}

// ProvisionKey makes sure a symmetric master key exists behind the configured
// alias and has automatic rotation enabled. It is safe to run repeatedly.
func (a *AWSKMSClient) ProvisionKey(ctx context.Context, rotationDays int32) (*ProvisionedKey, error) {
	if rotationDays == 0 {
		rotationDays = DefaultRotationDays
	}
	aliasName := a.keyPath.AliasName()

	keyId, err := a.describeKey(ctx, aliasName)
	if err != nil {
		return nil, pkgErrors.Wrapf(err, "failed to describe key %s in region %s", aliasName, a.keyPath.Location)
	}

	created := false
	if keyId == "" {
		res, err := a.createEncryptionKey(ctx)
		if err != nil {
			return nil, pkgErrors.Wrapf(err, "failed to create key %s in region %s", a.keyPath.String(), a.keyPath.Location)
		}
		keyId = *res.KeyMetadata.KeyId

		if err := a.createKeyAlias(ctx, keyId, aliasName); err != nil {
			return nil, pkgErrors.Wrapf(err, "failed to create alias %s for key %s in region %s", aliasName, keyId, a.keyPath.Location)
		}
		created = true
	}

	_, err = a.kmsClient.EnableKeyRotation(ctx, &kms.EnableKeyRotationInput{
		KeyId:                aws.String(keyId),
		RotationPeriodInDays: aws.Int32(rotationDays),
	})
	if err != nil {
		return nil, pkgErrors.Wrapf(err, "failed to enable rotation for key %s in region %s", keyId, a.keyPath.Location)
	}

	a.logger.Sugar().Infow("Provisioned master key",
		"keyId", keyId,
		"alias", aliasName,
		"created", created,
		"rotationDays", rotationDays,
	)

	return &ProvisionedKey{
		KeyId:        keyId,
		AliasName:    aliasName,
		Created:      created,
		RotationDays: rotationDays,
	}, nil
}

// describeKey returns the key id behind the alias, or "" if it does not exist.
func (a *AWSKMSClient) describeKey(ctx context.Context, aliasName string) (string, error) {
	out, err := a.kmsClient.DescribeKey(ctx, &kms.DescribeKeyInput{
		KeyId: aws.String(aliasName),
	})
	if err != nil {
		var notFound *types.NotFoundException
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", err
	}
	if out.KeyMetadata == nil || out.KeyMetadata.KeyId == nil {
		return "", fmt.Errorf("key metadata missing for %s", aliasName)
	}
	return *out.KeyMetadata.KeyId, nil
}

func (a *AWSKMSClient) createEncryptionKey(ctx context.Context) (*kms.CreateKeyOutput, error) {
	input := &kms.CreateKeyInput{
		KeyUsage:    types.KeyUsageTypeEncryptDecrypt,
		KeySpec:     types.KeySpecSymmetricDefault,
		Description: aws.String(fmt.Sprintf("Custodial wallet envelope key - %s", a.keyPath.String())),
		Tags: []types.Tag{
			{
				TagKey:   aws.String("Project"),
				TagValue: aws.String(a.keyPath.Project),
			},
			{
				TagKey:   aws.String("KeyRing"),
				TagValue: aws.String(a.keyPath.KeyRing),
			},
			{
				TagKey:   aws.String("Purpose"),
				TagValue: aws.String("wallet-envelope"),
			},
		},
	}

	result, err := a.kmsClient.CreateKey(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create KMS key: %w", err)
	}
	if result.KeyMetadata == nil || result.KeyMetadata.KeyId == nil {
		return nil, fmt.Errorf("KMS returned no key metadata")
	}
	return result, nil
}

func (a *AWSKMSClient) createKeyAlias(ctx context.Context, keyId, aliasName string) error {
	_, err := a.kmsClient.CreateAlias(ctx, &kms.CreateAliasInput{
		AliasName:   aws.String(aliasName),
		TargetKeyId: aws.String(keyId),
	})
	if err != nil {
		return fmt.Errorf("failed to create key alias: %w", err)
	}
	return nil
}
