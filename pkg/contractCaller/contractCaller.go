package contractCaller

import (
	"context"

	"github.com/Layr-Labs/social-custody-go/pkg/ledger"
	"github.com/ethereum/go-ethereum/common"
)

type IContractCaller interface {
	// Invoke submits method on the handle's contract, waits for inclusion and
	// returns the first expectedEvent emitted by that contract, or nil if none was.
	Invoke(ctx context.Context, h *ledger.Handle, method string, expectedEvent string, args ...any) (*Event, error)

	// EstimateGas prices method without submitting it.
	EstimateGas(ctx context.Context, h *ledger.Handle, method string, args ...any) (*GasEstimate, error)

	// Call runs a view method and returns its outputs.
	Call(ctx context.Context, h *ledger.Handle, method string, args ...any) ([]any, error)

	HasRole(ctx context.Context, h *ledger.Handle, role string, account common.Address) (bool, error)
}
