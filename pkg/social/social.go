// Package social runs the profile, publish, follow, like and comment actions
// on behalf of custodial users. Every action validates its input, recovers
// the user's key for the one request, submits through the contract caller
// and turns the emitted event into a token.
package social

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/Layr-Labs/social-custody-go/pkg/contractCaller"
	"github.com/Layr-Labs/social-custody-go/pkg/contracts"
	"github.com/Layr-Labs/social-custody-go/pkg/custody"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/Layr-Labs/social-custody-go/pkg/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KeyCustody is the part of the custody service actions need.
type KeyCustody interface {
	SignerKeyForUser(ctx context.Context, userId string) (*custody.SignerKey, error)
	AddressForUser(ctx context.Context, userId string) (common.Address, error)
}

// HandleFactory builds contract handles. *ledger.Factory satisfies it.
type HandleFactory interface {
	ReadHandle(contract *contracts.ContractDescriptor) (*ledger.Handle, error)
	ReadHandleAs(contract *contracts.ContractDescriptor, from common.Address) (*ledger.Handle, error)
	WriteHandle(contract *contracts.ContractDescriptor, key *custody.SignerKey) (*ledger.Handle, error)
}

type Service struct {
	keys       KeyCustody
	handles    HandleFactory
	caller     contractCaller.IContractCaller
	deployment *contracts.Deployment
	logger     *zap.Logger
}

func NewService(
	keys KeyCustody,
	handles HandleFactory,
	caller contractCaller.IContractCaller,
	deployment *contracts.Deployment,
	logger *zap.Logger,
) *Service {
	return &Service{
		keys:       keys,
		handles:    handles,
		caller:     caller,
		deployment: deployment,
		logger:     logger,
	}
}

type action struct {
	userId   string
	contract *contracts.ContractDescriptor
	method   string
	event    string
	failure  string
	args     []any
}

// execute signs and submits a as its user. A confirmed transaction without
// the expected event is OperationFailed with a.failure.
func (s *Service) execute(ctx context.Context, a action) (*contractCaller.Event, error) {
	requestId := uuid.NewString()

	key, err := s.keys.SignerKeyForUser(ctx, a.userId)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	handle, err := s.handles.WriteHandle(a.contract, key)
	if err != nil {
		return nil, err
	}

	s.logger.Sugar().Debugw("Submitting social action",
		"requestId", requestId,
		"userId", a.userId,
		"contract", a.contract.Name,
		"method", a.method,
	)

	event, err := s.caller.Invoke(ctx, handle, a.method, a.event, a.args...)
	if err != nil {
		s.logger.Sugar().Warnw("Social action failed",
			"requestId", requestId,
			"userId", a.userId,
			"method", a.method,
			"error", err,
		)
		return nil, err
	}
	if event == nil {
		return nil, failures.OperationFailed(a.failure)
	}

	s.logger.Sugar().Infow("Social action confirmed",
		"requestId", requestId,
		"userId", a.userId,
		"method", a.method,
		"event", event.Name,
		"txHash", event.TxHash.Hex(),
	)
	return event, nil
}

// query runs a view method on contract.
func (s *Service) query(ctx context.Context, contract *contracts.ContractDescriptor, method string, args ...any) ([]any, error) {
	handle, err := s.handles.ReadHandle(contract)
	if err != nil {
		return nil, err
	}
	return s.caller.Call(ctx, handle, method, args...)
}

func (s *Service) queryBool(ctx context.Context, contract *contracts.ContractDescriptor, method string, args ...any) (bool, error) {
	out, err := s.query(ctx, contract, method, args...)
	if err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("%s returned %d values", method, len(out))
	}
	b, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("%s returned %T", method, out[0])
	}
	return b, nil
}

func requireUser(userId string) error {
	if strings.TrimSpace(userId) == "" {
		return failures.UserInput("user id is required")
	}
	return nil
}

func requireId(name string, id uint64) error {
	if id == 0 {
		return failures.UserInput("%s is required", name)
	}
	return nil
}

func requireText(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return failures.UserInput("%s is required", name)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func u256(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// decoder reads event fields, keeping the first error.
type decoder struct {
	ev  *contractCaller.Event
	err error
}

func (d *decoder) id(name string) uint64 {
	if d.err != nil {
		return 0
	}
	v, err := d.ev.Uint64(name)
	d.err = err
	return v
}

func (d *decoder) amount(name string) *big.Int {
	if d.err != nil {
		return nil
	}
	v, err := d.ev.BigInt(name)
	d.err = err
	return v
}

func (d *decoder) addr(name string) string {
	if d.err != nil {
		return ""
	}
	v, err := d.ev.Address(name)
	d.err = err
	return v.Hex()
}

func (d *decoder) str(name string) string {
	if d.err != nil {
		return ""
	}
	v, err := d.ev.String(name)
	d.err = err
	return v
}

func (d *decoder) done() error {
	if d.err != nil {
		return fmt.Errorf("failed to decode %s: %w", d.ev.Name, d.err)
	}
	return nil
}
