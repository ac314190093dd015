// Package ledger builds per-request handles onto the social contracts. A
// read handle serves queries and estimates; a write handle carries a signer
// for one user's key and is discarded with the request.
package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Layr-Labs/chain-indexer/pkg/clients/ethereum"
	"github.com/Layr-Labs/social-custody-go/pkg/config"
	"github.com/Layr-Labs/social-custody-go/pkg/contracts"
	"github.com/Layr-Labs/social-custody-go/pkg/custody"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/Layr-Labs/social-custody-go/pkg/transactionSigner"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type Backend interface {
	transactionSigner.Backend
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

type Factory struct {
	chain   *config.ChainConfig
	backend Backend
	chainID *big.Int
	logger  *zap.Logger
}

// NewFactory dials the chain's RPC endpoint.
func NewFactory(ctx context.Context, chain *config.ChainConfig, logger *zap.Logger) (*Factory, error) {
	if chain == nil || chain.RpcUrl == "" {
		return nil, failures.New(failures.KindChainUnavailable, "no RPC endpoint configured")
	}

	client := ethereum.NewEthereumClient(&ethereum.EthereumClientConfig{
		BaseUrl:   chain.RpcUrl,
		BlockType: ethereum.BlockType_Latest,
	}, logger)

	ethClient, err := client.GetEthereumContractCaller()
	if err != nil {
		return nil, failures.Wrap(failures.KindChainUnavailable, err, "failed to connect to %s", chain.RpcUrl)
	}
	return NewFactoryWithBackend(ctx, chain, ethClient, logger)
}

// NewFactoryWithBackend builds a factory over an existing backend and caches
// its chain id, which must match the configured chain.
func NewFactoryWithBackend(ctx context.Context, chain *config.ChainConfig, backend Backend, logger *zap.Logger) (*Factory, error) {
	if chain == nil {
		return nil, fmt.Errorf("chain config is required")
	}
	if backend == nil {
		return nil, failures.New(failures.KindChainUnavailable, "no RPC backend")
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, failures.Chain(err, "failed to get chain ID")
	}
	if chainID.Uint64() != uint64(chain.ChainID) {
		return nil, failures.New(failures.KindChainUnavailable, "endpoint reports chain %s, environment %s expects %d", chainID.String(), chain.Environment, chain.ChainID)
	}

	logger.Sugar().Infow("Ledger client factory ready",
		"environment", chain.Environment,
		"chainId", chainID.Uint64(),
		"chainName", chain.ChainName,
	)

	return &Factory{
		chain:   chain,
		backend: backend,
		chainID: chainID,
		logger:  logger,
	}, nil
}

func (f *Factory) ChainID() *big.Int {
	return new(big.Int).Set(f.chainID)
}

func (f *Factory) Chain() *config.ChainConfig {
	return f.chain
}

func (f *Factory) Backend() Backend {
	return f.backend
}

// ReadHandle returns a handle without a signer.
func (f *Factory) ReadHandle(contract *contracts.ContractDescriptor) (*Handle, error) {
	if contract == nil {
		return nil, failures.UserInput("contract is required")
	}
	return &Handle{
		contract: contract,
		bound:    bind.NewBoundContract(contract.Address, *contract.ABI, f.backend, f.backend, f.backend),
		backend:  f.backend,
	}, nil
}

// ReadHandleAs returns a read handle whose calls and estimates originate from
// from. No key is involved.
func (f *Factory) ReadHandleAs(contract *contracts.ContractDescriptor, from common.Address) (*Handle, error) {
	h, err := f.ReadHandle(contract)
	if err != nil {
		return nil, err
	}
	h.from = from
	return h, nil
}

// WriteHandle returns a handle that signs with key. The handle does not own
// the key; the caller destroys it when the request finishes.
func (f *Factory) WriteHandle(contract *contracts.ContractDescriptor, key *custody.SignerKey) (*Handle, error) {
	h, err := f.ReadHandle(contract)
	if err != nil {
		return nil, err
	}
	if key.Destroyed() {
		return nil, failures.Forbidden("signer key is not available")
	}
	pk, err := key.PrivateKey()
	if err != nil {
		return nil, failures.Forbidden("signer key is not available")
	}

	signer, err := transactionSigner.NewPrivateKeySigner(pk, &transactionSigner.SignerConfig{
		ChainID:             f.chainID,
		ConfirmationTimeout: f.chain.ConfirmationTimeout,
	}, f.backend, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction signer: %w", err)
	}
	h.signer = signer
	return h, nil
}

// Balance returns the native balance of address in wei.
func (f *Factory) Balance(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := f.backend.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, failures.Chain(err, "failed to get balance of %s", address.Hex())
	}
	return balance, nil
}

type Handle struct {
	from     common.Address
	contract *contracts.ContractDescriptor
	bound    *bind.BoundContract
	backend  Backend
	signer   transactionSigner.ITransactionSigner
}

func (h *Handle) Address() common.Address {
	return h.contract.Address
}

func (h *Handle) Name() contracts.ContractName {
	return h.contract.Name
}

func (h *Handle) ABI() *abi.ABI {
	return h.contract.ABI
}

func (h *Handle) Contract() *bind.BoundContract {
	return h.bound
}

func (h *Handle) Backend() Backend {
	return h.backend
}

func (h *Handle) Signer() transactionSigner.ITransactionSigner {
	return h.signer
}

func (h *Handle) IsWritable() bool {
	return h.signer != nil
}

// From returns the signer address. Read handles report the address they were
// built for, or the zero address.
func (h *Handle) From() common.Address {
	if h.signer == nil {
		return h.from
	}
	return h.signer.GetFromAddress()
}

func (h *Handle) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if h.signer == nil {
		return nil, failures.UserInput("contract %s handle is read-only", h.contract.Name)
	}
	return h.signer.GetTransactOpts(ctx)
}
