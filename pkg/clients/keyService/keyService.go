package keyService

import (
	"context"
	"fmt"
	"strings"
)

// KeyResourcePath is the hierarchical name of a remote master key:
// project/location/keyring/key.
type KeyResourcePath struct {
	Project  string
	Location string
	KeyRing  string
	Key      string
}

func (k KeyResourcePath) String() string {
	return strings.Join([]string{k.Project, k.Location, k.KeyRing, k.Key}, "/")
}

// AliasName renders the path as a KMS alias. Location is carried separately
// as the region the alias lives in.
func (k KeyResourcePath) AliasName() string {
	return fmt.Sprintf("alias/%s/%s/%s", k.Project, k.KeyRing, k.Key)
}

func (k KeyResourcePath) Validate() error {
	if k.Project == "" || k.KeyRing == "" || k.Key == "" {
		return fmt.Errorf("key resource path %q is incomplete", k.String())
	}
	return nil
}

// IRemoteKeyService wraps and unwraps data under a master key that never
// leaves the service.
//
// Decrypt returns empty output and a nil error when the ciphertext was not
// produced under this master key or is corrupted. Errors are reserved for the
// service being unreachable or refusing the caller.
type IRemoteKeyService interface {
	Encrypt(ctx context.Context, plaintext []byte) (string, error)
	Decrypt(ctx context.Context, ciphertext string) ([]byte, error)
	KeyPath() KeyResourcePath
}
