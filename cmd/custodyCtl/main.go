package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Layr-Labs/social-custody-go/pkg/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "custody-ctl",
		Usage: "Custodial wallet and social action tooling",
		Description: `Operates the custodial key service and the social contracts it signs for.

This tool can:
- Provision custodial wallets and show their addresses
- Provision the managed master key and its rotation policy
- Check on-chain roles
- Create profiles and toggle likes on behalf of a user`,
		Version: "1.0.0",
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			{
				Name:  "wallet",
				Usage: "Custodial wallet operations",
				Subcommands: []*cli.Command{
					{
						Name:   "create",
						Usage:  "Provision a wallet for a user",
						Flags:  []cli.Flag{userIdFlag(false)},
						Action: walletCreateCommand,
					},
					{
						Name:   "address",
						Usage:  "Show the address of a user's wallet",
						Flags:  []cli.Flag{userIdFlag(true)},
						Action: walletAddressCommand,
					},
					{
						Name:   "balance",
						Usage:  "Show the native balance of a user's wallet",
						Flags:  []cli.Flag{userIdFlag(true)},
						Action: walletBalanceCommand,
					},
				},
			},
			{
				Name:  "kms",
				Usage: "Managed key service operations (aws backend)",
				Subcommands: []*cli.Command{
					{
						Name:   "provision",
						Usage:  "Create the master key and alias if missing and enable rotation",
						Action: kmsProvisionCommand,
					},
					{
						Name:   "whoami",
						Usage:  "Show the AWS identity in use",
						Action: kmsWhoamiCommand,
					},
				},
			},
			{
				Name:  "role",
				Usage: "Access control queries",
				Subcommands: []*cli.Command{
					{
						Name:  "check",
						Usage: "Check whether an address holds a role on a contract",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "contract",
								Usage:    "Contract name: Profile, Publish, Follow, Like or Comment",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "role",
								Usage: "Role name; empty or DEFAULT_ADMIN_ROLE for the default admin role",
								Value: "",
							},
							&cli.StringFlag{
								Name:     "address",
								Usage:    "Account address",
								Required: true,
							},
						},
						Action: roleCheckCommand,
					},
				},
			},
			{
				Name:  "profile",
				Usage: "Profile actions",
				Subcommands: []*cli.Command{
					{
						Name:  "create",
						Usage: "Create a profile for a user",
						Flags: []cli.Flag{
							userIdFlag(true),
							&cli.StringFlag{
								Name:     "handle",
								Usage:    "Profile handle",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "image-uri",
								Usage: "Profile image URI",
							},
							&cli.BoolFlag{
								Name:  "estimate",
								Usage: "Only estimate the fee; nothing is submitted",
							},
						},
						Action: profileCreateCommand,
					},
				},
			},
			{
				Name:  "like",
				Usage: "Like actions",
				Subcommands: []*cli.Command{
					{
						Name:  "toggle",
						Usage: "Like a publish, or remove an existing like",
						Flags: []cli.Flag{
							userIdFlag(true),
							&cli.Uint64Flag{
								Name:     "publish-id",
								Usage:    "Publish token id",
								Required: true,
							},
							&cli.Uint64Flag{
								Name:     "profile-id",
								Usage:    "Liking profile token id",
								Required: true,
							},
						},
						Action: likeToggleCommand,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func userIdFlag(required bool) cli.Flag {
	usage := "User identifier"
	if !required {
		usage = "User identifier (a random one is generated if empty)"
	}
	return &cli.StringFlag{
		Name:     "user-id",
		Aliases:  []string{"u"},
		Usage:    usage,
		Required: required,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "environment",
			Aliases: []string{"env"},
			Usage:   fmt.Sprintf("Deployment environment: %s", config.GetSupportedEnvironmentsString()),
			Value:   string(config.Environment_Development),
			EnvVars: []string{config.EnvCustodyEnvironment},
		},
		&cli.StringFlag{
			Name:    "rpc-url",
			Aliases: []string{"rpc"},
			Usage:   "RPC endpoint URL (defaults per environment)",
			EnvVars: []string{config.EnvCustodyRPCURL},
		},
		&cli.StringFlag{
			Name:    "encryption-secret",
			Usage:   "Passphrase for the local envelope layer",
			EnvVars: []string{config.EnvCustodyEncryptionSecret},
		},
		&cli.StringFlag{
			Name:    "kms-backend",
			Usage:   "Key service backend: aws or local",
			Value:   string(config.KMSBackend_AWS),
			EnvVars: []string{config.EnvCustodyKMSBackend},
		},
		&cli.StringFlag{
			Name:    "kms-project",
			Value:   "social",
			EnvVars: []string{config.EnvCustodyKMSProject},
		},
		&cli.StringFlag{
			Name:    "kms-location",
			Usage:   "Key location; the AWS region for the aws backend",
			EnvVars: []string{config.EnvCustodyKMSLocation},
		},
		&cli.StringFlag{
			Name:    "kms-key-ring",
			Value:   "wallets",
			EnvVars: []string{config.EnvCustodyKMSKeyRing},
		},
		&cli.StringFlag{
			Name:    "kms-key",
			Value:   "custody",
			EnvVars: []string{config.EnvCustodyKMSKey},
		},
		&cli.StringFlag{
			Name:    "kms-local-master-key",
			Usage:   "32-byte hex master key for the local backend",
			EnvVars: []string{config.EnvCustodyKMSLocalMasterKey},
		},
		&cli.IntFlag{
			Name:    "kms-rotation-days",
			Usage:   "Automatic rotation period for provisioned keys",
			Value:   config.DefaultKeyRotationDays,
			EnvVars: []string{config.EnvCustodyKMSRotationDays},
		},
		&cli.StringFlag{
			Name:    "persistence",
			Usage:   "Wallet store: memory, badger, redis or postgres",
			Value:   string(config.PersistenceType_Badger),
			EnvVars: []string{config.EnvCustodyPersistenceType},
		},
		&cli.StringFlag{
			Name:    "badger-path",
			Value:   "./custody-data",
			EnvVars: []string{config.EnvCustodyBadgerPath},
		},
		&cli.StringFlag{
			Name:    "redis-address",
			EnvVars: []string{config.EnvCustodyRedisAddress},
		},
		&cli.StringFlag{
			Name:    "redis-password",
			EnvVars: []string{config.EnvCustodyRedisPassword},
		},
		&cli.StringFlag{
			Name:    "postgres-dsn",
			EnvVars: []string{config.EnvCustodyPostgresDSN},
		},
		&cli.DurationFlag{
			Name:    "confirmation-timeout",
			Usage:   "How long to wait for a transaction to be included",
			Value:   config.DefaultConfirmationTimeout,
			EnvVars: []string{config.EnvCustodyConfirmationTimeout},
		},
		&cli.StringFlag{Name: "profile-contract", EnvVars: []string{config.EnvCustodyProfileContract}},
		&cli.StringFlag{Name: "publish-contract", EnvVars: []string{config.EnvCustodyPublishContract}},
		&cli.StringFlag{Name: "follow-contract", EnvVars: []string{config.EnvCustodyFollowContract}},
		&cli.StringFlag{Name: "like-contract", EnvVars: []string{config.EnvCustodyLikeContract}},
		&cli.StringFlag{Name: "comment-contract", EnvVars: []string{config.EnvCustodyCommentContract}},
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "Enable verbose logging",
			EnvVars: []string{config.EnvCustodyVerbose},
		},
	}
}

func parseCustodyConfig(c *cli.Context) *config.CustodyConfig {
	return &config.CustodyConfig{
		Environment:      config.Environment(c.String("environment")),
		RpcUrl:           c.String("rpc-url"),
		EncryptionSecret: c.String("encryption-secret"),
		KeyService: config.KeyServiceConfig{
			Backend:        config.KMSBackend(c.String("kms-backend")),
			Project:        c.String("kms-project"),
			Location:       c.String("kms-location"),
			KeyRing:        c.String("kms-key-ring"),
			Key:            c.String("kms-key"),
			LocalMasterKey: c.String("kms-local-master-key"),
			RotationDays:   int32(c.Int("kms-rotation-days")),
		},
		Persistence: config.PersistenceConfig{
			Type:          config.PersistenceType(c.String("persistence")),
			BadgerPath:    c.String("badger-path"),
			RedisAddress:  c.String("redis-address"),
			RedisPassword: c.String("redis-password"),
			PostgresDSN:   c.String("postgres-dsn"),
		},
		ConfirmationTimeout: c.Duration("confirmation-timeout"),
		ContractOverrides: &config.ContractAddresses{
			Profile: c.String("profile-contract"),
			Publish: c.String("publish-contract"),
			Follow:  c.String("follow-contract"),
			Like:    c.String("like-contract"),
			Comment: c.String("comment-contract"),
		},
		Debug: c.Bool("verbose"),
	}
}
