package testutil

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PackEvent builds a log for the named event with args in ABI input order.
func PackEvent(contractABI *abi.ABI, name string, args ...any) (*types.Log, error) {
	event, ok := contractABI.Events[name]
	if !ok {
		return nil, fmt.Errorf("event %s not found", name)
	}
	if len(args) != len(event.Inputs) {
		return nil, fmt.Errorf("event %s takes %d args, got %d", name, len(event.Inputs), len(args))
	}

	topics := []common.Hash{event.ID}
	var data []any
	for i, input := range event.Inputs {
		if !input.Indexed {
			data = append(data, args[i])
			continue
		}
		encoded, err := abi.MakeTopics([]any{args[i]})
		if err != nil {
			return nil, fmt.Errorf("failed to encode topic %s: %w", input.Name, err)
		}
		topics = append(topics, encoded[0][0])
	}

	packed, err := event.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s data: %w", name, err)
	}
	return &types.Log{Topics: topics, Data: packed}, nil
}

// MethodOf returns the method whose selector prefixes calldata.
func MethodOf(contractABI *abi.ABI, calldata []byte) (*abi.Method, []any, error) {
	if len(calldata) < 4 {
		return nil, nil, fmt.Errorf("calldata too short")
	}
	method, err := contractABI.MethodById(calldata[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(calldata[4:])
	if err != nil {
		return nil, nil, err
	}
	return method, args, nil
}

// PackReturn encodes the outputs of a view method.
func PackReturn(contractABI *abi.ABI, method string, values ...any) ([]byte, error) {
	m, ok := contractABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %s not found", method)
	}
	return m.Outputs.Pack(values...)
}
