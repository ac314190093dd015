package caller

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/social-custody-go/pkg/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	DefaultAdminRole = "DEFAULT_ADMIN_ROLE"
	RoleAdmin        = "ADMIN_ROLE"
)

// RoleID encodes a role name for the access-control contract. The default
// admin role is 32 zero bytes; every other role is keccak256 of its name.
func RoleID(role string) [32]byte {
	if role == "" || role == DefaultAdminRole {
		return [32]byte{}
	}
	return crypto.Keccak256Hash([]byte(role))
}

func (cc *ContractCaller) HasRole(ctx context.Context, h *ledger.Handle, role string, account common.Address) (bool, error) {
	out, err := cc.Call(ctx, h, "hasRole", RoleID(role), account)
	if err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("hasRole returned %d values", len(out))
	}
	granted, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("hasRole returned %T", out[0])
	}
	return granted, nil
}
