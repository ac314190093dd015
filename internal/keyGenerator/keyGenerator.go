package keyGenerator

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// GeneratedKey is a freshly created secp256k1 signing key. PrivateKeyHex is
// the 32-byte scalar without a 0x prefix and must never be logged.
type GeneratedKey struct {
	PrivateKeyHex string
	Address       string
}

// GetAddress returns the checksummed address derived from the key
func (gk *GeneratedKey) GetAddress() (common.Address, error) {
	if !common.IsHexAddress(gk.Address) {
		return common.Address{}, fmt.Errorf("invalid address %q", gk.Address)
	}
	return common.HexToAddress(gk.Address), nil
}

// Destroy drops the reference to the private key material.
func (gk *GeneratedKey) Destroy() {
	gk.PrivateKeyHex = ""
}

type IKeyGenerator interface {
	GenerateKey(ctx context.Context) (*GeneratedKey, error)
}
