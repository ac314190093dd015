package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Submission is a transaction as seen by the fake chain.
type Submission struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Nonce uint64
	Tx    *types.Transaction
}

// Outcome is what a transact handler wants mined for a submission.
type Outcome struct {
	Logs     []*types.Log
	Reverted bool
}

type TransactHandler func(sub *Submission) (*Outcome, error)

type CallHandler func(msg ethereum.CallMsg) ([]byte, error)

// FakeBackend is an in-memory chain that mines every accepted transaction
// immediately into its own block. Nonces are enforced per sender.
type FakeBackend struct {
	mu sync.Mutex

	chainID  *big.Int
	block    uint64
	code     map[common.Address]bool
	nonces   map[common.Address]uint64
	balances map[common.Address]*big.Int
	receipts map[common.Hash]*types.Receipt
	txs      []*Submission

	transactHandlers map[common.Address]TransactHandler
	callHandlers     map[common.Address]CallHandler

	GasLimit  uint64
	GasPrice  *big.Int
	NeverMine bool
	SendErr   error
	CallErr   error
}

func NewFakeBackend(chainID int64) *FakeBackend {
	return &FakeBackend{
		chainID:          big.NewInt(chainID),
		block:            1,
		code:             make(map[common.Address]bool),
		nonces:           make(map[common.Address]uint64),
		balances:         make(map[common.Address]*big.Int),
		receipts:         make(map[common.Hash]*types.Receipt),
		transactHandlers: make(map[common.Address]TransactHandler),
		callHandlers:     make(map[common.Address]CallHandler),
		GasLimit:         100_000,
		GasPrice:         big.NewInt(1_000_000_000),
	}
}

// Deploy marks addr as holding contract code.
func (f *FakeBackend) Deploy(addr common.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.code[addr] = true
}

func (f *FakeBackend) OnTransact(addr common.Address, fn TransactHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.code[addr] = true
	f.transactHandlers[addr] = fn
}

func (f *FakeBackend) OnCall(addr common.Address, fn CallHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.code[addr] = true
	f.callHandlers[addr] = fn
}

func (f *FakeBackend) SetBalance(addr common.Address, wei *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[addr] = new(big.Int).Set(wei)
}

// Submissions returns every accepted transaction in submission order.
func (f *FakeBackend) Submissions() []*Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Submission, len(f.txs))
	copy(out, f.txs)
	return out
}

func (f *FakeBackend) codeAt(addr common.Address) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.code[addr] {
		return []byte{0x60, 0x80}
	}
	return nil
}

func (f *FakeBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return f.codeAt(contract), nil
}

func (f *FakeBackend) CodeAtHash(ctx context.Context, contract common.Address, blockHash common.Hash) ([]byte, error) {
	return f.codeAt(contract), nil
}

func (f *FakeBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return f.codeAt(account), nil
}

func (f *FakeBackend) call(msg ethereum.CallMsg) ([]byte, error) {
	f.mu.Lock()
	callErr := f.CallErr
	var fn CallHandler
	if msg.To != nil {
		fn = f.callHandlers[*msg.To]
	}
	f.mu.Unlock()

	if callErr != nil {
		return nil, callErr
	}
	if fn == nil {
		return nil, nil
	}
	return fn(msg)
}

func (f *FakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return f.call(call)
}

func (f *FakeBackend) CallContractAtHash(ctx context.Context, call ethereum.CallMsg, blockHash common.Hash) ([]byte, error) {
	return f.call(call)
}

func (f *FakeBackend) PendingCallContract(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
	return f.call(call)
}

func (f *FakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonces[account], nil
}

func (f *FakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return 0, f.CallErr
	}
	return f.GasLimit, nil
}

func (f *FakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.GasPrice), nil
}

func (f *FakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return f.SuggestGasPrice(ctx)
}

// HeaderByNumber reports no base fee so bound contracts build legacy transactions.
func (f *FakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &types.Header{Number: new(big.Int).SetUint64(f.block)}, nil
}

func (f *FakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	from, err := types.Sender(types.LatestSignerForChainID(f.chainID), tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if tx.To() == nil {
		return errors.New("contract creation is not supported")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.SendErr != nil {
		return f.SendErr
	}
	if expected := f.nonces[from]; tx.Nonce() != expected {
		return fmt.Errorf("nonce too low: address %s, tx: %d state: %d", from.Hex(), tx.Nonce(), expected)
	}
	f.nonces[from]++

	sub := &Submission{From: from, To: *tx.To(), Data: tx.Data(), Nonce: tx.Nonce(), Tx: tx}
	f.txs = append(f.txs, sub)

	outcome := &Outcome{}
	if fn := f.transactHandlers[sub.To]; fn != nil {
		o, err := fn(sub)
		if err != nil {
			return err
		}
		if o != nil {
			outcome = o
		}
	}

	if f.NeverMine {
		return nil
	}

	f.block++
	receipt := &types.Receipt{
		Type:        tx.Type(),
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		GasUsed:     tx.Gas() / 2,
		BlockNumber: new(big.Int).SetUint64(f.block),
	}
	if outcome.Reverted {
		receipt.Status = types.ReceiptStatusFailed
	} else {
		for i, l := range outcome.Logs {
			if l.Address == (common.Address{}) {
				l.Address = sub.To
			}
			l.TxHash = tx.Hash()
			l.BlockNumber = f.block
			l.Index = uint(i)
			receipt.Logs = append(receipt.Logs, l)
		}
	}
	f.receipts[tx.Hash()] = receipt
	return nil
}

func (f *FakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (f *FakeBackend) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (f *FakeBackend) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("subscriptions are not supported")
}

func (f *FakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.chainID), nil
}

func (f *FakeBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.balances[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}
