package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/ethereum/go-ethereum/common"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for custody service configuration
const (
	EnvCustodyEnvironment         = "CUSTODY_ENVIRONMENT"
	EnvCustodyRPCURL              = "CUSTODY_RPC_URL"
	EnvCustodyEncryptionSecret    = "CUSTODY_ENCRYPTION_SECRET"
	EnvCustodyKMSBackend          = "CUSTODY_KMS_BACKEND"
	EnvCustodyKMSProject          = "CUSTODY_KMS_PROJECT"
	EnvCustodyKMSLocation         = "CUSTODY_KMS_LOCATION"
	EnvCustodyKMSKeyRing          = "CUSTODY_KMS_KEY_RING"
	EnvCustodyKMSKey              = "CUSTODY_KMS_KEY"
	EnvCustodyKMSLocalMasterKey   = "CUSTODY_KMS_LOCAL_MASTER_KEY"
	EnvCustodyKMSRotationDays     = "CUSTODY_KMS_ROTATION_DAYS"
	EnvCustodyPersistenceType     = "CUSTODY_PERSISTENCE_TYPE"
	EnvCustodyBadgerPath          = "CUSTODY_BADGER_PATH"
	EnvCustodyRedisAddress        = "CUSTODY_REDIS_ADDRESS"
	EnvCustodyRedisPassword       = "CUSTODY_REDIS_PASSWORD"
	EnvCustodyPostgresDSN         = "CUSTODY_POSTGRES_DSN"
	EnvCustodyConfirmationTimeout = "CUSTODY_CONFIRMATION_TIMEOUT"
	EnvCustodyProfileContract     = "CUSTODY_PROFILE_CONTRACT"
	EnvCustodyPublishContract     = "CUSTODY_PUBLISH_CONTRACT"
	EnvCustodyFollowContract      = "CUSTODY_FOLLOW_CONTRACT"
	EnvCustodyLikeContract        = "CUSTODY_LIKE_CONTRACT"
	EnvCustodyCommentContract     = "CUSTODY_COMMENT_CONTRACT"
	EnvCustodyVerbose             = "CUSTODY_VERBOSE"
)

type Environment string

const (
	Environment_Development Environment = "development"
	Environment_Staging     Environment = "staging"
	Environment_Production  Environment = "production"
)

func (e Environment) String() string {
	return string(e)
}

type ChainId uint

const (
	ChainId_EthereumAnvil  ChainId = 31337
	ChainId_PolygonAmoy    ChainId = 80002
	ChainId_PolygonMainnet ChainId = 137
)

type ChainName string

const (
	ChainName_EthereumAnvil  ChainName = "devnet"
	ChainName_PolygonAmoy    ChainName = "amoy"
	ChainName_PolygonMainnet ChainName = "polygon"
)

var ChainIdToName = map[ChainId]ChainName{
	ChainId_EthereumAnvil:  ChainName_EthereumAnvil,
	ChainId_PolygonAmoy:    ChainName_PolygonAmoy,
	ChainId_PolygonMainnet: ChainName_PolygonMainnet,
}

var EnvironmentToChainId = map[Environment]ChainId{
	Environment_Development: ChainId_EthereumAnvil,
	Environment_Staging:     ChainId_PolygonAmoy,
	Environment_Production:  ChainId_PolygonMainnet,
}

// DefaultRpcUrls are only populated where a public endpoint is safe to assume.
// Staging and production must be configured explicitly.
var DefaultRpcUrls = map[Environment]string{
	Environment_Development: "http://localhost:8545",
}

type ContractAddresses struct {
	Profile string `json:"profile"`
	Publish string `json:"publish"`
	Follow  string `json:"follow"`
	Like    string `json:"like"`
	Comment string `json:"comment"`
}

var (
	// anvil deploys from the first dev account at nonces 0..4
	devnetContracts = &ContractAddresses{
		Profile: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		Publish: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
		Follow:  "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0",
		Like:    "0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9",
		Comment: "0xDc64a140Aa3E981100a9becA4E685f962f0cF6C9",
	}

	DeploymentContracts = map[Environment]*ContractAddresses{
		Environment_Development: devnetContracts,
		Environment_Staging:     {},
		Environment_Production:  {},
	}
)

func GetContractsForEnvironment(env Environment) (*ContractAddresses, error) {
	contracts, ok := DeploymentContracts[env]
	if !ok {
		return nil, fmt.Errorf("unsupported environment: %s", env)
	}
	c := *contracts
	return &c, nil
}

// Merge overlays every non-empty address from other onto a copy of c.
func (c *ContractAddresses) Merge(other *ContractAddresses) *ContractAddresses {
	merged := *c
	if other == nil {
		return &merged
	}
	if other.Profile != "" {
		merged.Profile = other.Profile
	}
	if other.Publish != "" {
		merged.Publish = other.Publish
	}
	if other.Follow != "" {
		merged.Follow = other.Follow
	}
	if other.Like != "" {
		merged.Like = other.Like
	}
	if other.Comment != "" {
		merged.Comment = other.Comment
	}
	return &merged
}

func (c *ContractAddresses) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	check := func(name, value string) {
		p := path.Child(name)
		if value == "" {
			allErrors = append(allErrors, field.Required(p, "contract address is required"))
			return
		}
		if !common.IsHexAddress(value) {
			allErrors = append(allErrors, field.Invalid(p, value, "must be a hex address"))
		}
	}
	check("profile", c.Profile)
	check("publish", c.Publish)
	check("follow", c.Follow)
	check("like", c.Like)
	check("comment", c.Comment)
	return allErrors
}

type KMSBackend string

const (
	KMSBackend_AWS   KMSBackend = "aws"
	KMSBackend_Local KMSBackend = "local"
)

type PersistenceType string

const (
	PersistenceType_Memory   PersistenceType = "memory"
	PersistenceType_Badger   PersistenceType = "badger"
	PersistenceType_Redis    PersistenceType = "redis"
	PersistenceType_Postgres PersistenceType = "postgres"
)

const (
	DefaultConfirmationTimeout = 2 * time.Minute
	DefaultKeyRotationDays     = 90
	minKeyRotationDays         = 90
	maxKeyRotationDays         = 2560
)

// KeyServiceConfig identifies the remote master key by its hierarchical
// resource path project/location/keyring/key.
type KeyServiceConfig struct {
	Backend        KMSBackend `json:"backend"`
	Project        string     `json:"project"`
	Location       string     `json:"location"`
	KeyRing        string     `json:"key_ring"`
	Key            string     `json:"key"`
	LocalMasterKey string     `json:"-"`
	RotationDays   int32      `json:"rotation_days"`
}

type PersistenceConfig struct {
	Type          PersistenceType `json:"type"`
	BadgerPath    string          `json:"badger_path"`
	RedisAddress  string          `json:"redis_address"`
	RedisPassword string          `json:"-"`
	PostgresDSN   string          `json:"-"`
}

// CustodyConfig is the complete, flag/env derived configuration. It is
// validated once at startup and resolved into a ChainConfig.
type CustodyConfig struct {
	Environment Environment `json:"environment"`
	RpcUrl      string      `json:"rpc_url"`

	// EncryptionSecret is the local envelope layer passphrase.
	EncryptionSecret string `json:"-"`

	KeyService  KeyServiceConfig  `json:"key_service"`
	Persistence PersistenceConfig `json:"persistence"`

	ConfirmationTimeout time.Duration `json:"confirmation_timeout"`

	// ContractOverrides replace the environment's default addresses field by field.
	ContractOverrides *ContractAddresses `json:"contract_overrides,omitempty"`

	Debug bool `json:"debug"`
}

// ChainConfig is the environment-keyed chain selection injected into the
// ledger client factory.
type ChainConfig struct {
	Environment         Environment
	ChainID             ChainId
	ChainName           ChainName
	RpcUrl              string
	Contracts           *ContractAddresses
	ConfirmationTimeout time.Duration
}

// Validate validates the custody configuration
func (c *CustodyConfig) Validate() error {
	var allErrors field.ErrorList

	if _, ok := EnvironmentToChainId[c.Environment]; !ok {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("environment"), c.Environment,
			[]string{string(Environment_Development), string(Environment_Staging), string(Environment_Production)}))
	}

	if strings.TrimSpace(c.EncryptionSecret) == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("encryptionSecret"), "encryption secret is required"))
	}

	allErrors = append(allErrors, c.KeyService.validate(field.NewPath("keyService"))...)
	allErrors = append(allErrors, c.Persistence.validate(field.NewPath("persistence"))...)

	if c.ConfirmationTimeout < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("confirmationTimeout"), c.ConfirmationTimeout.String(), "must not be negative"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (k *KeyServiceConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	switch k.Backend {
	case KMSBackend_AWS, KMSBackend_Local:
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("backend"), k.Backend,
			[]string{string(KMSBackend_AWS), string(KMSBackend_Local)}))
	}
	if k.Project == "" {
		allErrors = append(allErrors, field.Required(path.Child("project"), "project is required"))
	}
	if k.KeyRing == "" {
		allErrors = append(allErrors, field.Required(path.Child("keyRing"), "key ring is required"))
	}
	if k.Key == "" {
		allErrors = append(allErrors, field.Required(path.Child("key"), "key is required"))
	}
	if k.Backend == KMSBackend_AWS && k.Location == "" {
		allErrors = append(allErrors, field.Required(path.Child("location"), "location (AWS region) is required"))
	}
	if k.Backend == KMSBackend_Local && k.LocalMasterKey == "" {
		allErrors = append(allErrors, field.Required(path.Child("localMasterKey"), "local master key is required for the local backend"))
	}
	if k.RotationDays != 0 && (k.RotationDays < minKeyRotationDays || k.RotationDays > maxKeyRotationDays) {
		allErrors = append(allErrors, field.Invalid(path.Child("rotationDays"), k.RotationDays,
			fmt.Sprintf("must be between %d and %d", minKeyRotationDays, maxKeyRotationDays)))
	}
	return allErrors
}

func (p *PersistenceConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	switch p.Type {
	case PersistenceType_Memory:
	case PersistenceType_Badger:
		if p.BadgerPath == "" {
			allErrors = append(allErrors, field.Required(path.Child("badgerPath"), "badger path is required"))
		}
	case PersistenceType_Redis:
		if p.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(path.Child("redisAddress"), "redis address is required"))
		}
	case PersistenceType_Postgres:
		if p.PostgresDSN == "" {
			allErrors = append(allErrors, field.Required(path.Child("postgresDSN"), "postgres DSN is required"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), p.Type,
			[]string{string(PersistenceType_Memory), string(PersistenceType_Badger), string(PersistenceType_Redis), string(PersistenceType_Postgres)}))
	}
	return allErrors
}

// ResolveChain selects the chain, endpoint and contract addresses for the
// configured environment. It fails if no RPC endpoint can be resolved.
func (c *CustodyConfig) ResolveChain() (*ChainConfig, error) {
	chainId, ok := EnvironmentToChainId[c.Environment]
	if !ok {
		return nil, fmt.Errorf("unsupported environment: %s", c.Environment)
	}

	rpcUrl := c.RpcUrl
	if rpcUrl == "" {
		rpcUrl = DefaultRpcUrls[c.Environment]
	}
	if rpcUrl == "" {
		return nil, failures.New(failures.KindChainUnavailable, "no RPC endpoint configured for environment %s (set %s)", c.Environment, EnvCustodyRPCURL)
	}

	defaults, err := GetContractsForEnvironment(c.Environment)
	if err != nil {
		return nil, err
	}
	contracts := defaults.Merge(c.ContractOverrides)
	if errs := contracts.validate(field.NewPath("contracts")); len(errs) > 0 {
		return nil, fmt.Errorf("invalid contracts for environment %s: %w", c.Environment, errs.ToAggregate())
	}

	timeout := c.ConfirmationTimeout
	if timeout == 0 {
		timeout = DefaultConfirmationTimeout
	}

	return &ChainConfig{
		Environment:         c.Environment,
		ChainID:             chainId,
		ChainName:           ChainIdToName[chainId],
		RpcUrl:              rpcUrl,
		Contracts:           contracts,
		ConfirmationTimeout: timeout,
	}, nil
}

// GetSupportedEnvironmentsString returns supported environments for CLI help
func GetSupportedEnvironmentsString() string {
	return fmt.Sprintf("%s (chain %d), %s (chain %d), %s (chain %d)",
		Environment_Development, ChainId_EthereumAnvil,
		Environment_Staging, ChainId_PolygonAmoy,
		Environment_Production, ChainId_PolygonMainnet)
}
