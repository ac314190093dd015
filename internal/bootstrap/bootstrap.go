// Package bootstrap assembles the custody and social services from a
// validated CustodyConfig.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/social-custody-go/internal/aws"
	"github.com/Layr-Labs/social-custody-go/internal/keyGenerator/localKeyGenerator"
	"github.com/Layr-Labs/social-custody-go/pkg/clients/awsKms"
	"github.com/Layr-Labs/social-custody-go/pkg/clients/keyService"
	"github.com/Layr-Labs/social-custody-go/pkg/clients/localKms"
	"github.com/Layr-Labs/social-custody-go/pkg/config"
	"github.com/Layr-Labs/social-custody-go/pkg/contractCaller/caller"
	"github.com/Layr-Labs/social-custody-go/pkg/contracts"
	"github.com/Layr-Labs/social-custody-go/pkg/custody"
	"github.com/Layr-Labs/social-custody-go/pkg/encryption"
	"github.com/Layr-Labs/social-custody-go/pkg/envelope"
	"github.com/Layr-Labs/social-custody-go/pkg/ledger"
	"github.com/Layr-Labs/social-custody-go/pkg/persistence"
	"github.com/Layr-Labs/social-custody-go/pkg/persistence/factory"
	"github.com/Layr-Labs/social-custody-go/pkg/social"
	"go.uber.org/zap"
)

func KeyPath(cfg *config.KeyServiceConfig) keyService.KeyResourcePath {
	return keyService.KeyResourcePath{
		Project:  cfg.Project,
		Location: cfg.Location,
		KeyRing:  cfg.KeyRing,
		Key:      cfg.Key,
	}
}

// NewAWSKeyService returns the concrete AWS client, for commands that
// provision keys.
func NewAWSKeyService(ctx context.Context, cfg *config.KeyServiceConfig, l *zap.Logger) (*awsKms.AWSKMSClient, error) {
	awsCfg, err := aws.LoadAWSConfig(ctx, cfg.Location)
	if err != nil {
		return nil, err
	}
	return awsKms.NewAWSKMSClient(awsCfg, &awsKms.AWSKMSClientConfig{KeyPath: KeyPath(cfg)}, l)
}

func NewRemoteKeyService(ctx context.Context, cfg *config.KeyServiceConfig, l *zap.Logger) (keyService.IRemoteKeyService, error) {
	switch cfg.Backend {
	case config.KMSBackend_Local:
		return localKms.NewLocalKMSClient(KeyPath(cfg), cfg.LocalMasterKey, l)
	case config.KMSBackend_AWS:
		return NewAWSKeyService(ctx, cfg, l)
	}
	return nil, fmt.Errorf("unsupported KMS backend: %s", cfg.Backend)
}

// NewEnvelope builds the local-then-remote sealing chain.
func NewEnvelope(secret string, remote keyService.IRemoteKeyService) (*envelope.Chain, error) {
	enc, err := encryption.NewPassphraseEncryption(secret)
	if err != nil {
		return nil, err
	}
	return envelope.NewChain(envelope.NewLocalStage(enc), envelope.NewRemoteStage(remote))
}

type Custody struct {
	Service *custody.Service
	Store   persistence.IWalletPersistence
}

func (c *Custody) Close() error {
	return c.Store.Close()
}

func NewCustody(ctx context.Context, cfg *config.CustodyConfig, l *zap.Logger) (*Custody, error) {
	remote, err := NewRemoteKeyService(ctx, &cfg.KeyService, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create key service client: %w", err)
	}
	chain, err := NewEnvelope(cfg.EncryptionSecret, remote)
	if err != nil {
		return nil, fmt.Errorf("failed to create envelope: %w", err)
	}
	store, err := factory.NewWalletPersistence(ctx, &cfg.Persistence, l)
	if err != nil {
		return nil, err
	}

	l.Sugar().Infow("Custody service ready",
		"kmsBackend", cfg.KeyService.Backend,
		"keyPath", KeyPath(&cfg.KeyService).String(),
		"persistence", cfg.Persistence.Type,
		"stages", chain.StageNames(),
	)
	return &Custody{
		Service: custody.NewService(localKeyGenerator.NewLocalKeyGenerator(l), chain, store, l),
		Store:   store,
	}, nil
}

type Social struct {
	Chain      *config.ChainConfig
	Factory    *ledger.Factory
	Deployment *contracts.Deployment
	Caller     *caller.ContractCaller
	Service    *social.Service
}

// NewSocial dials the environment's chain and wires the social service onto keys.
func NewSocial(ctx context.Context, cfg *config.CustodyConfig, keys social.KeyCustody, l *zap.Logger) (*Social, error) {
	chain, err := cfg.ResolveChain()
	if err != nil {
		return nil, err
	}
	deployment, err := contracts.NewDeployment(chain.Contracts)
	if err != nil {
		return nil, err
	}
	f, err := ledger.NewFactory(ctx, chain, l)
	if err != nil {
		return nil, err
	}
	return newSocial(chain, f, deployment, keys, l), nil
}

func newSocial(chain *config.ChainConfig, f *ledger.Factory, deployment *contracts.Deployment, keys social.KeyCustody, l *zap.Logger) *Social {
	cc := caller.NewContractCaller(l)
	return &Social{
		Chain:      chain,
		Factory:    f,
		Deployment: deployment,
		Caller:     cc,
		Service:    social.NewService(keys, f, cc, deployment, l),
	}
}
