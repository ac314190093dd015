package caller

import (
	"context"

	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/Layr-Labs/social-custody-go/pkg/ledger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// Call runs a view method against the latest block.
func (cc *ContractCaller) Call(ctx context.Context, h *ledger.Handle, method string, args ...any) ([]any, error) {
	if h == nil {
		return nil, failures.UserInput("contract handle is required")
	}
	m, err := requireMethod(h, method, args...)
	if err != nil {
		return nil, err
	}
	if !m.IsConstant() {
		return nil, failures.UserInput("%s.%s is not a view method", h.Name(), method)
	}

	var out []any
	if err := h.Contract().Call(&bind.CallOpts{Context: ctx, From: h.From()}, &out, method, args...); err != nil {
		return nil, failures.Chain(err, "failed to call %s.%s", h.Name(), method)
	}
	return out, nil
}
