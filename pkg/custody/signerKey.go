package custody

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignerKey is a recovered private key scoped to a single request. Call
// Destroy when the request is done; it must never be cached.
type SignerKey struct {
	raw     []byte
	address common.Address
}

// NewSignerKey takes ownership of raw; Destroy zeroes it.
func NewSignerKey(raw []byte) (*SignerKey, error) {
	pk, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("not a secp256k1 private key: %w", err)
	}
	return &SignerKey{
		raw:     raw,
		address: crypto.PubkeyToAddress(pk.PublicKey),
	}, nil
}

func (s *SignerKey) Address() common.Address {
	return s.address
}

// PrivateKey returns the key for signing. It fails once the key is destroyed.
func (s *SignerKey) PrivateKey() (*ecdsa.PrivateKey, error) {
	if s == nil || s.raw == nil {
		return nil, fmt.Errorf("signer key has been destroyed")
	}
	return crypto.ToECDSA(s.raw)
}

func (s *SignerKey) Destroyed() bool {
	return s == nil || s.raw == nil
}

// Destroy zeroes the key bytes.
func (s *SignerKey) Destroy() {
	if s == nil {
		return
	}
	for i := range s.raw {
		s.raw[i] = 0
	}
	s.raw = nil
}
