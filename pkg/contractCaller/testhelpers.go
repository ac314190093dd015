package contractCaller

import (
	"context"
	"sync"

	"github.com/Layr-Labs/social-custody-go/pkg/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// StubCall records one call made through MockContractCallerStub.
type StubCall struct {
	Op     string
	Method string
	Event  string
	From   common.Address
	Args   []any
}

// MockContractCallerStub provides a scriptable implementation of IContractCaller for testing
type MockContractCallerStub struct {
	mu    sync.Mutex
	calls []StubCall

	InvokeFn      func(h *ledger.Handle, method, event string, args []any) (*Event, error)
	CallFn        func(h *ledger.Handle, method string, args []any) ([]any, error)
	EstimateGasFn func(h *ledger.Handle, method string, args []any) (*GasEstimate, error)
	HasRoleFn     func(h *ledger.Handle, role string, account common.Address) (bool, error)
}

var _ IContractCaller = (*MockContractCallerStub)(nil)

func (m *MockContractCallerStub) record(c StubCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *MockContractCallerStub) Calls() []StubCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]StubCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockContractCallerStub) Invoke(ctx context.Context, h *ledger.Handle, method string, expectedEvent string, args ...any) (*Event, error) {
	m.record(StubCall{Op: "invoke", Method: method, Event: expectedEvent, From: h.From(), Args: args})
	if m.InvokeFn == nil {
		return nil, nil
	}
	return m.InvokeFn(h, method, expectedEvent, args)
}

func (m *MockContractCallerStub) EstimateGas(ctx context.Context, h *ledger.Handle, method string, args ...any) (*GasEstimate, error) {
	m.record(StubCall{Op: "estimate", Method: method, From: h.From(), Args: args})
	if m.EstimateGasFn == nil {
		return &GasEstimate{Fee: "0.0"}, nil
	}
	return m.EstimateGasFn(h, method, args)
}

func (m *MockContractCallerStub) Call(ctx context.Context, h *ledger.Handle, method string, args ...any) ([]any, error) {
	m.record(StubCall{Op: "call", Method: method, From: h.From(), Args: args})
	if m.CallFn == nil {
		return nil, nil
	}
	return m.CallFn(h, method, args)
}

func (m *MockContractCallerStub) HasRole(ctx context.Context, h *ledger.Handle, role string, account common.Address) (bool, error) {
	m.record(StubCall{Op: "hasRole", Method: "hasRole", From: h.From(), Args: []any{role, account}})
	if m.HasRoleFn == nil {
		return false, nil
	}
	return m.HasRoleFn(h, role, account)
}
