package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Layr-Labs/social-custody-go/internal/aws"
	"github.com/Layr-Labs/social-custody-go/internal/bootstrap"
	"github.com/Layr-Labs/social-custody-go/pkg/config"
	"github.com/Layr-Labs/social-custody-go/pkg/contractCaller/caller"
	"github.com/Layr-Labs/social-custody-go/pkg/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// session holds everything a command needs; close releases the key store.
type session struct {
	cfg     *config.CustodyConfig
	logger  *zap.Logger
	custody *bootstrap.Custody
}

func (s *session) close() {
	if s.custody != nil {
		if err := s.custody.Close(); err != nil {
			s.logger.Sugar().Warnw("Failed to close wallet store", "error", err)
		}
	}
	_ = s.logger.Sync()
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}

func openSession(c *cli.Context) (*session, error) {
	cfg := parseCustodyConfig(c)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	l, err := newLogger(c)
	if err != nil {
		return nil, err
	}
	cust, err := bootstrap.NewCustody(c.Context, cfg, l)
	if err != nil {
		_ = l.Sync()
		return nil, err
	}
	return &session{cfg: cfg, logger: l, custody: cust}, nil
}

func (s *session) social(ctx context.Context) (*bootstrap.Social, error) {
	return bootstrap.NewSocial(ctx, s.cfg, s.custody.Service, s.logger)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func walletCreateCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	userId := c.String("user-id")
	if userId == "" {
		userId = uuid.New().String()
	}
	record, err := s.custody.Service.ProvisionWallet(c.Context, userId)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"userId":    record.Id,
		"address":   record.Address,
		"createdAt": record.CreatedAt,
	})
}

func walletAddressCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	address, err := s.custody.Service.AddressForUser(c.Context, c.String("user-id"))
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"userId":  c.String("user-id"),
		"address": address.Hex(),
	})
}

func walletBalanceCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	address, err := s.custody.Service.AddressForUser(c.Context, c.String("user-id"))
	if err != nil {
		return err
	}
	soc, err := s.social(c.Context)
	if err != nil {
		return err
	}
	balance, err := soc.Factory.Balance(c.Context, address)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"address": address.Hex(),
		"wei":     balance.String(),
		"balance": caller.FormatEther(balance),
	})
}

// awsCommandConfig skips full validation; the kms commands never touch
// wallet storage.
func awsCommandConfig(c *cli.Context) (*config.CustodyConfig, *zap.Logger, error) {
	cfg := parseCustodyConfig(c)
	if cfg.KeyService.Backend != config.KMSBackend_AWS {
		return nil, nil, fmt.Errorf("command requires the %s key service backend", config.KMSBackend_AWS)
	}
	if cfg.KeyService.Location == "" {
		return nil, nil, fmt.Errorf("kms-location (AWS region) is required")
	}
	l, err := newLogger(c)
	if err != nil {
		return nil, nil, err
	}
	return cfg, l, nil
}

func kmsProvisionCommand(c *cli.Context) error {
	cfg, l, err := awsCommandConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	client, err := bootstrap.NewAWSKeyService(c.Context, &cfg.KeyService, l)
	if err != nil {
		return err
	}
	key, err := client.ProvisionKey(c.Context, cfg.KeyService.RotationDays)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"keyId":        key.KeyId,
		"alias":        key.AliasName,
		"created":      key.Created,
		"rotationDays": key.RotationDays,
	})
}

func kmsWhoamiCommand(c *cli.Context) error {
	cfg, l, err := awsCommandConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	awsCfg, err := aws.LoadAWSConfig(c.Context, cfg.KeyService.Location)
	if err != nil {
		return err
	}
	identity, err := aws.GetCallerIdentity(c.Context, awsCfg)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"account": identity.Account,
		"arn":     identity.Arn,
		"userId":  identity.UserId,
	})
}

func roleCheckCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	address := c.String("address")
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid address: %s", address)
	}
	soc, err := s.social(c.Context)
	if err != nil {
		return err
	}
	contract, err := soc.Deployment.ByName(c.String("contract"))
	if err != nil {
		return err
	}
	h, err := soc.Factory.ReadHandle(contract)
	if err != nil {
		return err
	}
	ok, err := soc.Caller.HasRole(c.Context, h, c.String("role"), common.HexToAddress(address))
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"contract": contract.Name,
		"role":     c.String("role"),
		"address":  common.HexToAddress(address).Hex(),
		"hasRole":  ok,
	})
}

func profileCreateCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	soc, err := s.social(c.Context)
	if err != nil {
		return err
	}
	userId, handle, imageURI := c.String("user-id"), c.String("handle"), c.String("image-uri")

	if c.Bool("estimate") {
		estimate, err := soc.Service.EstimateCreateProfileGas(c.Context, userId, handle, imageURI)
		if err != nil {
			return err
		}
		return printJSON(map[string]string{
			"gasUnits": fmt.Sprintf("%d", estimate.GasUnits),
			"gasPrice": estimate.GasPrice.String(),
			"feeWei":   estimate.FeeWei.String(),
			"fee":      estimate.Fee,
		})
	}

	token, err := soc.Service.CreateProfile(c.Context, userId, handle, imageURI)
	if err != nil {
		return err
	}
	return printJSON(token)
}

func likeToggleCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	soc, err := s.social(c.Context)
	if err != nil {
		return err
	}
	token, err := soc.Service.ToggleLike(c.Context, c.String("user-id"), c.Uint64("publish-id"), c.Uint64("profile-id"))
	if err != nil {
		return err
	}
	return printJSON(token)
}
