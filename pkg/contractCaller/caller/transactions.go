package caller

import (
	"context"

	"github.com/Layr-Labs/social-custody-go/pkg/contractCaller"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/Layr-Labs/social-custody-go/pkg/ledger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Invoke submits method and returns the decoded expectedEvent, or nil if the
// receipt carries no such event from the handle's contract.
func (cc *ContractCaller) Invoke(ctx context.Context, h *ledger.Handle, method string, expectedEvent string, args ...any) (*contractCaller.Event, error) {
	if h == nil {
		return nil, failures.UserInput("contract handle is required")
	}
	if !h.IsWritable() {
		return nil, failures.UserInput("contract %s handle is read-only", h.Name())
	}
	if _, err := requireMethod(h, method, args...); err != nil {
		return nil, err
	}
	if _, ok := h.ABI().Events[expectedEvent]; !ok {
		return nil, failures.UserInput("contract %s has no event %q", h.Name(), expectedEvent)
	}

	unlock := cc.locks.lock(h.From())
	defer unlock()

	opts, err := cc.buildTransactionOpts(ctx, h)
	if err != nil {
		return nil, err
	}

	tx, err := h.Contract().Transact(opts, method, args...)
	if err != nil {
		return nil, failures.Chain(err, "failed to build %s transaction", method)
	}

	receipt, err := cc.signAndSendTransaction(ctx, h, tx, method)
	if err != nil {
		return nil, err
	}

	event, err := decodeEvent(h, receipt, expectedEvent)
	if err != nil {
		return nil, err
	}
	if event == nil {
		cc.logger.Sugar().Warnw("Expected event not emitted",
			zap.String("contract", string(h.Name())),
			zap.String("method", method),
			zap.String("event", expectedEvent),
			zap.String("txHash", receipt.TxHash.Hex()),
		)
	}
	return event, nil
}

func requireMethod(h *ledger.Handle, method string, args ...any) (abi.Method, error) {
	m, ok := h.ABI().Methods[method]
	if !ok {
		return abi.Method{}, failures.UserInput("contract %s has no method %q", h.Name(), method)
	}
	if _, err := h.ABI().Pack(method, args...); err != nil {
		return abi.Method{}, failures.UserInput("invalid arguments for %s.%s: %v", h.Name(), method, err)
	}
	return m, nil
}

func (cc *ContractCaller) buildTransactionOpts(ctx context.Context, h *ledger.Handle) (*bind.TransactOpts, error) {
	return h.TransactOpts(ctx)
}

func (cc *ContractCaller) signAndSendTransaction(ctx context.Context, h *ledger.Handle, tx *ethereumTypes.Transaction, operation string) (*ethereumTypes.Receipt, error) {
	cc.logger.Sugar().Infow("Signing and sending transaction",
		zap.String("operation", operation),
		zap.String("from", h.From().Hex()),
		zap.String("to", tx.To().Hex()),
	)

	return h.Signer().SignAndSendTransaction(ctx, tx)
}
