package caller

import (
	"context"
	"math/big"
	"strings"

	"github.com/Layr-Labs/social-custody-go/pkg/contractCaller"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/Layr-Labs/social-custody-go/pkg/ledger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/params"
)

const etherDecimals = 18

// EstimateGas prices method at the current suggested gas price. Nothing is submitted.
func (cc *ContractCaller) EstimateGas(ctx context.Context, h *ledger.Handle, method string, args ...any) (*contractCaller.GasEstimate, error) {
	if h == nil {
		return nil, failures.UserInput("contract handle is required")
	}
	if _, err := requireMethod(h, method, args...); err != nil {
		return nil, err
	}
	data, err := h.ABI().Pack(method, args...)
	if err != nil {
		return nil, failures.UserInput("invalid arguments for %s.%s: %v", h.Name(), method, err)
	}

	to := h.Address()
	gasUnits, err := h.Backend().EstimateGas(ctx, ethereum.CallMsg{
		From: h.From(),
		To:   &to,
		Data: data,
	})
	if err != nil {
		return nil, failures.Chain(err, "failed to estimate gas for %s", method)
	}

	gasPrice, err := h.Backend().SuggestGasPrice(ctx)
	if err != nil {
		return nil, failures.Chain(err, "failed to suggest gas price")
	}

	feeWei := new(big.Int).Mul(new(big.Int).SetUint64(gasUnits), gasPrice)
	return &contractCaller.GasEstimate{
		GasUnits: gasUnits,
		GasPrice: gasPrice,
		FeeWei:   feeWei,
		Fee:      FormatEther(feeWei),
	}, nil
}

// FormatEther renders wei as a decimal ether string with trailing zeros
// trimmed and at least one fractional digit.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}
	sign := ""
	abs := new(big.Int).Set(wei)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}

	whole, frac := new(big.Int).QuoRem(abs, big.NewInt(params.Ether), new(big.Int))
	fracDigits := frac.String()
	fracDigits = strings.Repeat("0", etherDecimals-len(fracDigits)) + fracDigits
	fracDigits = strings.TrimRight(fracDigits, "0")
	if fracDigits == "" {
		fracDigits = "0"
	}
	return sign + whole.String() + "." + fracDigits
}
