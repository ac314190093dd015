package persistence

import (
	"encoding/json"
	"fmt"
)

// MarshalWalletRecord serializes a WalletRecord to JSON bytes.
func MarshalWalletRecord(w *WalletRecord) ([]byte, error) {
	if w == nil {
		return nil, fmt.Errorf("cannot marshal nil WalletRecord")
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal WalletRecord to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalWalletRecord deserializes a WalletRecord from JSON bytes.
func UnmarshalWalletRecord(data []byte) (*WalletRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var w WalletRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to WalletRecord: %w", err)
	}

	return &w, nil
}
