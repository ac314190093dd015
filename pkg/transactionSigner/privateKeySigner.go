package transactionSigner

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Layr-Labs/social-custody-go/pkg/config"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

type SignerConfig struct {
	ChainID             *big.Int
	ConfirmationTimeout time.Duration
}

// PrivateKeySigner signs with a key held in memory for the duration of one request.
type PrivateKeySigner struct {
	backend             Backend
	logger              *zap.Logger
	chainID             *big.Int
	privateKey          *ecdsa.PrivateKey
	fromAddress         common.Address
	confirmationTimeout time.Duration
}

func NewPrivateKeySigner(privateKey *ecdsa.PrivateKey, cfg *SignerConfig, backend Backend, logger *zap.Logger) (*PrivateKeySigner, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key cannot be empty")
	}
	if cfg == nil || cfg.ChainID == nil {
		return nil, fmt.Errorf("chain id is required")
	}
	timeout := cfg.ConfirmationTimeout
	if timeout <= 0 {
		timeout = config.DefaultConfirmationTimeout
	}
	return &PrivateKeySigner{
		backend:             backend,
		logger:              logger,
		chainID:             new(big.Int).Set(cfg.ChainID),
		privateKey:          privateKey,
		fromAddress:         crypto.PubkeyToAddress(privateKey.PublicKey),
		confirmationTimeout: timeout,
	}, nil
}

// GetTransactOpts returns transaction options for creating signed, unsent transactions
func (s *PrivateKeySigner) GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.privateKey, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	opts.NoSend = true
	return opts, nil
}

func (s *PrivateKeySigner) sign(tx *types.Transaction) (*types.Transaction, error) {
	v, r, sig := tx.RawSignatureValues()
	if v.Sign() != 0 || r.Sign() != 0 || sig.Sign() != 0 {
		return tx, nil
	}
	return types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.privateKey)
}

// SignAndSendTransaction signs a transaction and sends it to the network
func (s *PrivateKeySigner) SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	signedTx, err := s.sign(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sender, err := types.Sender(types.LatestSignerForChainID(s.chainID), signedTx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover transaction sender: %w", err)
	}
	if sender != s.fromAddress {
		return nil, failures.Forbidden("transaction signed by %s, expected %s", sender.Hex(), s.fromAddress.Hex())
	}

	s.logger.Info("SignAndSendTransaction: sending transaction",
		zap.String("from", s.fromAddress.Hex()),
		zap.String("to", toHex(signedTx.To())),
		zap.Uint64("gasLimit", signedTx.Gas()),
		zap.Uint64("nonce", signedTx.Nonce()),
	)

	if err := s.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, failures.Chain(err, "failed to send transaction")
	}

	s.logger.Info("SignAndSendTransaction: transaction sent",
		zap.String("txHash", signedTx.Hash().Hex()),
	)

	waitCtx, cancel := context.WithTimeout(ctx, s.confirmationTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, s.backend, signedTx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("SignAndSendTransaction: confirmation timed out",
				zap.String("txHash", signedTx.Hash().Hex()),
				zap.Duration("timeout", s.confirmationTimeout),
			)
			return nil, failures.Wrap(failures.KindTimeout, err, "transaction %s not confirmed within %s", signedTx.Hash().Hex(), s.confirmationTimeout)
		}
		return nil, failures.Wrap(failures.KindUnconfirmed, err, "failed to wait for transaction %s", signedTx.Hash().Hex())
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		s.logger.Error("SignAndSendTransaction: transaction failed",
			zap.String("txHash", receipt.TxHash.Hex()),
			zap.Uint64("status", receipt.Status),
			zap.Uint64("gasUsed", receipt.GasUsed),
		)
		return nil, failures.New(failures.KindUnconfirmed, "transaction %s failed with status %d", receipt.TxHash.Hex(), receipt.Status)
	}

	s.logger.Info("SignAndSendTransaction: transaction succeeded",
		zap.String("txHash", receipt.TxHash.Hex()),
		zap.Uint64("gasUsed", receipt.GasUsed),
		zap.Uint64("blockNumber", blockNumber(receipt)),
	)

	return receipt, nil
}

// GetFromAddress returns the address that will be used for signing
func (s *PrivateKeySigner) GetFromAddress() common.Address {
	return s.fromAddress
}

// EstimateGasPriceAndLimit estimates gas price and limit for a transaction
func (s *PrivateKeySigner) EstimateGasPriceAndLimit(ctx context.Context, tx *types.Transaction) (*big.Int, uint64, error) {
	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, 0, failures.Chain(err, "failed to suggest gas price")
	}
	gasLimit, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  s.fromAddress,
		To:    tx.To(),
		Value: tx.Value(),
		Data:  tx.Data(),
	})
	if err != nil {
		return nil, 0, failures.Chain(err, "failed to estimate gas")
	}
	return gasPrice, gasLimit, nil
}

func toHex(addr *common.Address) string {
	if addr == nil {
		return ""
	}
	return addr.Hex()
}

func blockNumber(r *types.Receipt) uint64 {
	if r.BlockNumber == nil {
		return 0
	}
	return r.BlockNumber.Uint64()
}
