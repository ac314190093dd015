package caller

import (
	"fmt"

	"github.com/Layr-Labs/social-custody-go/pkg/contractCaller"
	"github.com/Layr-Labs/social-custody-go/pkg/ledger"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
)

// decodeEvent returns the first log in receipt that is eventName emitted by
// the handle's contract. Logs from other contracts are ignored even when
// their signature matches.
func decodeEvent(h *ledger.Handle, receipt *ethereumTypes.Receipt, eventName string) (*contractCaller.Event, error) {
	event := h.ABI().Events[eventName]

	for _, log := range receipt.Logs {
		if log == nil || log.Address != h.Address() {
			continue
		}
		if len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}

		values := make(map[string]any, len(event.Inputs))
		if err := h.Contract().UnpackLogIntoMap(values, eventName, *log); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", eventName, err)
		}

		args := make([]contractCaller.EventArg, 0, len(event.Inputs))
		for _, input := range event.Inputs {
			args = append(args, contractCaller.EventArg{Name: input.Name, Value: values[input.Name]})
		}

		blockNumber := log.BlockNumber
		if receipt.BlockNumber != nil {
			blockNumber = receipt.BlockNumber.Uint64()
		}
		return &contractCaller.Event{
			Name:        eventName,
			TxHash:      receipt.TxHash,
			BlockNumber: blockNumber,
			Args:        args,
		}, nil
	}
	return nil, nil
}
