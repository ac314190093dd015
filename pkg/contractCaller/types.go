package contractCaller

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type EventArg struct {
	Name  string
	Value any
}

// Event is a decoded log. Args are in ABI declaration order.
type Event struct {
	Name        string
	TxHash      common.Hash
	BlockNumber uint64
	Args        []EventArg
}

// Arg returns the i-th argument value.
func (e *Event) Arg(i int) (any, bool) {
	if i < 0 || i >= len(e.Args) {
		return nil, false
	}
	return e.Args[i].Value, true
}

func (e *Event) Get(name string) (any, bool) {
	for _, a := range e.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

func (e *Event) lookup(name string) (any, error) {
	v, ok := e.Get(name)
	if !ok {
		return nil, fmt.Errorf("event %s has no argument %s", e.Name, name)
	}
	return v, nil
}

func (e *Event) BigInt(name string) (*big.Int, error) {
	v, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	b, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("event %s argument %s is %T, not an integer", e.Name, name, v)
	}
	return b, nil
}

func (e *Event) Uint64(name string) (uint64, error) {
	b, err := e.BigInt(name)
	if err != nil {
		return 0, err
	}
	if !b.IsUint64() {
		return 0, fmt.Errorf("event %s argument %s overflows uint64: %s", e.Name, name, b.String())
	}
	return b.Uint64(), nil
}

func (e *Event) Address(name string) (common.Address, error) {
	v, err := e.lookup(name)
	if err != nil {
		return common.Address{}, err
	}
	a, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("event %s argument %s is %T, not an address", e.Name, name, v)
	}
	return a, nil
}

func (e *Event) String(name string) (string, error) {
	v, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("event %s argument %s is %T, not a string", e.Name, name, v)
	}
	return s, nil
}

func (e *Event) Bool(name string) (bool, error) {
	v, err := e.lookup(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("event %s argument %s is %T, not a bool", e.Name, name, v)
	}
	return b, nil
}

// Record flattens the arguments into a plain map. Integers that fit become
// uint64, larger ones decimal strings; addresses and hashes become hex.
func (e *Event) Record() map[string]any {
	out := make(map[string]any, len(e.Args))
	for _, a := range e.Args {
		out[a.Name] = normalize(a.Value)
	}
	return out
}

func normalize(v any) any {
	switch t := v.(type) {
	case *big.Int:
		if t.IsUint64() {
			return t.Uint64()
		}
		return t.String()
	case common.Address:
		return t.Hex()
	case common.Hash:
		return t.Hex()
	case [32]byte:
		return common.Hash(t).Hex()
	case uint8:
		return uint64(t)
	case uint16:
		return uint64(t)
	case uint32:
		return uint64(t)
	}
	return v
}

// GasEstimate is the projected cost of a call. Fee is FeeWei as a decimal
// ether string.
type GasEstimate struct {
	GasUnits uint64
	GasPrice *big.Int
	FeeWei   *big.Int
	Fee      string
}
