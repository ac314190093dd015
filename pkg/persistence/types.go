package persistence

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// WalletRecord is the custodial key store entry for one user.
type WalletRecord struct {
	// Id is the user id the wallet belongs to.
	Id string `json:"id"`

	// Key is the envelope-sealed private key.
	Key string `json:"key"`

	// Address is the checksummed address derived from the key at creation.
	Address string `json:"address"`

	CreatedAt time.Time `json:"createdAt"`
}

func (w *WalletRecord) Validate() error {
	if w == nil {
		return fmt.Errorf("wallet record is nil")
	}
	if w.Id == "" {
		return fmt.Errorf("wallet id is required")
	}
	if w.Key == "" {
		return fmt.Errorf("wallet key is required")
	}
	if !common.IsHexAddress(w.Address) {
		return fmt.Errorf("wallet address %q is not a hex address", w.Address)
	}
	return nil
}

// Copy returns a detached copy so stores never share records with callers.
func (w *WalletRecord) Copy() *WalletRecord {
	if w == nil {
		return nil
	}
	c := *w
	return &c
}
