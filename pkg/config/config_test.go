package config

import (
	"errors"
	"testing"
	"time"

	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *CustodyConfig {
	return &CustodyConfig{
		Environment:      Environment_Development,
		EncryptionSecret: "local-secret",
		KeyService: KeyServiceConfig{
			Backend:        KMSBackend_Local,
			Project:        "social",
			Location:       "us-east-1",
			KeyRing:        "wallets",
			Key:            "custody",
			LocalMasterKey: "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
		},
		Persistence: PersistenceConfig{Type: PersistenceType_Memory},
	}
}

func Test_Validate(t *testing.T) {
	t.Run("Should accept a complete development config", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	tests := []struct {
		name   string
		mutate func(c *CustodyConfig)
		expect string
	}{
		{"unknown environment", func(c *CustodyConfig) { c.Environment = "qa" }, "environment"},
		{"empty secret", func(c *CustodyConfig) { c.EncryptionSecret = "  " }, "encryptionSecret"},
		{"unknown kms backend", func(c *CustodyConfig) { c.KeyService.Backend = "vault" }, "keyService.backend"},
		{"aws without region", func(c *CustodyConfig) {
			c.KeyService.Backend = KMSBackend_AWS
			c.KeyService.Location = ""
		}, "keyService.location"},
		{"local without master key", func(c *CustodyConfig) { c.KeyService.LocalMasterKey = "" }, "keyService.localMasterKey"},
		{"rotation below minimum", func(c *CustodyConfig) { c.KeyService.RotationDays = 10 }, "keyService.rotationDays"},
		{"badger without path", func(c *CustodyConfig) { c.Persistence.Type = PersistenceType_Badger }, "persistence.badgerPath"},
		{"redis without address", func(c *CustodyConfig) { c.Persistence.Type = PersistenceType_Redis }, "persistence.redisAddress"},
		{"postgres without dsn", func(c *CustodyConfig) { c.Persistence.Type = PersistenceType_Postgres }, "persistence.postgresDSN"},
		{"negative timeout", func(c *CustodyConfig) { c.ConfirmationTimeout = -time.Second }, "confirmationTimeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expect)
		})
	}
}

func Test_ResolveChain(t *testing.T) {
	t.Run("Should resolve development defaults", func(t *testing.T) {
		chain, err := validConfig().ResolveChain()
		require.NoError(t, err)
		assert.Equal(t, ChainId_EthereumAnvil, chain.ChainID)
		assert.Equal(t, ChainName_EthereumAnvil, chain.ChainName)
		assert.Equal(t, "http://localhost:8545", chain.RpcUrl)
		assert.Equal(t, DefaultConfirmationTimeout, chain.ConfirmationTimeout)
		assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", chain.Contracts.Profile)
	})

	t.Run("Should apply contract overrides without touching defaults", func(t *testing.T) {
		c := validConfig()
		c.ContractOverrides = &ContractAddresses{Like: "0x000000000000000000000000000000000000dEaD"}
		chain, err := c.ResolveChain()
		require.NoError(t, err)
		assert.Equal(t, "0x000000000000000000000000000000000000dEaD", chain.Contracts.Like)
		assert.Equal(t, "0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9", DeploymentContracts[Environment_Development].Like)
	})

	t.Run("Should fail without an RPC endpoint", func(t *testing.T) {
		c := validConfig()
		c.Environment = Environment_Staging
		_, err := c.ResolveChain()
		require.Error(t, err)
		assert.True(t, errors.Is(err, failures.ErrChainUnavailable))
		assert.Contains(t, err.Error(), EnvCustodyRPCURL)
	})

	t.Run("Should fail when staging addresses are missing", func(t *testing.T) {
		c := validConfig()
		c.Environment = Environment_Staging
		c.RpcUrl = "https://rpc-amoy.polygon.technology"
		_, err := c.ResolveChain()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "contracts.profile")
	})

	t.Run("Should keep an explicit confirmation timeout", func(t *testing.T) {
		c := validConfig()
		c.ConfirmationTimeout = 30 * time.Second
		chain, err := c.ResolveChain()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, chain.ConfirmationTimeout)
	})
}
