package transactionSigner

import (
	"context"
	"errors"
	"math/big"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/Layr-Labs/social-custody-go/pkg/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var target = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func newSigner(t *testing.T, backend *testutil.FakeBackend, timeout time.Duration) *PrivateKeySigner {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := NewPrivateKeySigner(key, &SignerConfig{ChainID: big.NewInt(31337), ConfirmationTimeout: timeout}, backend, zap.NewNop())
	require.NoError(t, err)
	return s
}

func unsignedTx(nonce uint64) *types.Transaction {
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &target,
		Gas:      50_000,
		GasPrice: big.NewInt(1_000_000_000),
		Data:     []byte{0xde, 0xad, 0xbe, 0xef},
	})
}

func Test_PrivateKeySigner(t *testing.T) {
	ctx := context.Background()

	t.Run("Should sign send and confirm", func(t *testing.T) {
		backend := testutil.NewFakeBackend(31337)
		backend.Deploy(target)
		s := newSigner(t, backend, time.Second)

		receipt, err := s.SignAndSendTransaction(ctx, unsignedTx(0))
		require.NoError(t, err)
		assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

		subs := backend.Submissions()
		require.Len(t, subs, 1)
		assert.Equal(t, s.GetFromAddress(), subs[0].From)
	})

	t.Run("Should produce transact opts that do not send", func(t *testing.T) {
		s := newSigner(t, testutil.NewFakeBackend(31337), time.Second)
		opts, err := s.GetTransactOpts(ctx)
		require.NoError(t, err)
		assert.True(t, opts.NoSend)
		assert.Equal(t, s.GetFromAddress(), opts.From)

		signed, err := opts.Signer(opts.From, unsignedTx(3))
		require.NoError(t, err)
		sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), signed)
		require.NoError(t, err)
		assert.Equal(t, s.GetFromAddress(), sender)
	})

	t.Run("Should reject a transaction signed by another key", func(t *testing.T) {
		backend := testutil.NewFakeBackend(31337)
		s := newSigner(t, backend, time.Second)
		other := newSigner(t, backend, time.Second)

		tx, err := other.sign(unsignedTx(0))
		require.NoError(t, err)
		_, err = s.SignAndSendTransaction(ctx, tx)
		assert.True(t, errors.Is(err, failures.ErrForbidden))
		assert.Empty(t, backend.Submissions())
	})

	t.Run("Should time out when never mined", func(t *testing.T) {
		backend := testutil.NewFakeBackend(31337)
		backend.NeverMine = true
		s := newSigner(t, backend, 50*time.Millisecond)

		_, err := s.SignAndSendTransaction(ctx, unsignedTx(0))
		assert.True(t, errors.Is(err, failures.ErrTimeout))
		assert.False(t, errors.Is(err, failures.ErrUnconfirmed))
	})

	t.Run("Should report reverted receipts as unconfirmed", func(t *testing.T) {
		backend := testutil.NewFakeBackend(31337)
		backend.OnTransact(target, func(sub *testutil.Submission) (*testutil.Outcome, error) {
			return &testutil.Outcome{Reverted: true}, nil
		})
		s := newSigner(t, backend, time.Second)

		_, err := s.SignAndSendTransaction(ctx, unsignedTx(0))
		assert.True(t, errors.Is(err, failures.ErrUnconfirmed))
	})

	t.Run("Should classify unreachable endpoints", func(t *testing.T) {
		backend := testutil.NewFakeBackend(31337)
		backend.SendErr = &url.Error{Op: "Post", URL: "http://localhost:8545", Err: syscall.ECONNREFUSED}
		s := newSigner(t, backend, time.Second)

		_, err := s.SignAndSendTransaction(ctx, unsignedTx(0))
		assert.True(t, errors.Is(err, failures.ErrChainUnavailable))
	})

	t.Run("Should estimate price and limit", func(t *testing.T) {
		backend := testutil.NewFakeBackend(31337)
		backend.GasLimit = 42_000
		s := newSigner(t, backend, time.Second)

		price, limit, err := s.EstimateGasPriceAndLimit(ctx, unsignedTx(0))
		require.NoError(t, err)
		assert.Equal(t, uint64(42_000), limit)
		assert.Equal(t, big.NewInt(1_000_000_000), price)
	})

	t.Run("Should require a key and chain id", func(t *testing.T) {
		_, err := NewPrivateKeySigner(nil, &SignerConfig{ChainID: big.NewInt(1)}, nil, zap.NewNop())
		assert.Error(t, err)
		key, _ := crypto.GenerateKey()
		_, err = NewPrivateKeySigner(key, &SignerConfig{}, nil, zap.NewNop())
		assert.Error(t, err)
	})
}
