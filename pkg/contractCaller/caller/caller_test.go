package caller

import (
	"context"
	"errors"
	"math/big"
	"net/url"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/Layr-Labs/social-custody-go/pkg/config"
	"github.com/Layr-Labs/social-custody-go/pkg/contracts"
	"github.com/Layr-Labs/social-custody-go/pkg/custody"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/Layr-Labs/social-custody-go/pkg/ledger"
	"github.com/Layr-Labs/social-custody-go/pkg/testutil"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	backend    *testutil.FakeBackend
	factory    *ledger.Factory
	deployment *contracts.Deployment
	caller     *ContractCaller
}

func newHarness(t *testing.T, timeout time.Duration) *harness {
	t.Helper()
	cfg := &config.CustodyConfig{Environment: config.Environment_Development, ConfirmationTimeout: timeout}
	chain, err := cfg.ResolveChain()
	require.NoError(t, err)

	deployment, err := contracts.NewDeployment(chain.Contracts)
	require.NoError(t, err)

	backend := testutil.NewFakeBackend(int64(chain.ChainID))
	factory, err := ledger.NewFactoryWithBackend(context.Background(), chain, backend, zap.NewNop())
	require.NoError(t, err)

	return &harness{
		backend:    backend,
		factory:    factory,
		deployment: deployment,
		caller:     NewContractCaller(zap.NewNop()),
	}
}

func (h *harness) writeHandle(t *testing.T, desc *contracts.ContractDescriptor) *ledger.Handle {
	t.Helper()
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)
	key, err := custody.NewSignerKey(crypto.FromECDSA(pk))
	require.NoError(t, err)
	t.Cleanup(key.Destroy)

	handle, err := h.factory.WriteHandle(desc, key)
	require.NoError(t, err)
	return handle
}

// emitProfileCreated mints token ids in submission order.
func (h *harness) emitProfileCreated(t *testing.T) {
	var next int64
	profileABI := h.deployment.Profile.ABI
	h.backend.OnTransact(h.deployment.Profile.Address, func(sub *testutil.Submission) (*testutil.Outcome, error) {
		method, args, err := testutil.MethodOf(profileABI, sub.Data)
		if err != nil {
			return nil, err
		}
		if method.Name != "createProfile" {
			return &testutil.Outcome{}, nil
		}
		next++
		log, err := testutil.PackEvent(profileABI, "ProfileCreated", big.NewInt(next), sub.From, args[0], args[1])
		if err != nil {
			return nil, err
		}
		return &testutil.Outcome{Logs: []*ethTypes.Log{log}}, nil
	})
}

func Test_Invoke(t *testing.T) {
	ctx := context.Background()

	t.Run("Should decode the expected event", func(t *testing.T) {
		h := newHarness(t, time.Second)
		h.emitProfileCreated(t)
		handle := h.writeHandle(t, h.deployment.Profile)

		ev, err := h.caller.Invoke(ctx, handle, "createProfile", "ProfileCreated", "alice", "")
		require.NoError(t, err)
		require.NotNil(t, ev)

		assert.Equal(t, "ProfileCreated", ev.Name)
		assert.Equal(t, map[string]any{
			"tokenId":  uint64(1),
			"owner":    handle.From().Hex(),
			"handle":   "alice",
			"imageURI": "",
		}, ev.Record())

		owner, ok := ev.Arg(1)
		require.True(t, ok)
		assert.Equal(t, handle.From(), owner)
		assert.NotZero(t, ev.BlockNumber)
		assert.Equal(t, h.backend.Submissions()[0].Tx.Hash(), ev.TxHash)
	})

	t.Run("Should return nil when the event is absent", func(t *testing.T) {
		h := newHarness(t, time.Second)
		h.backend.OnTransact(h.deployment.Like.Address, func(sub *testutil.Submission) (*testutil.Outcome, error) {
			return &testutil.Outcome{}, nil
		})
		handle := h.writeHandle(t, h.deployment.Like)

		ev, err := h.caller.Invoke(ctx, handle, "like", "Like", big.NewInt(7), big.NewInt(1))
		require.NoError(t, err)
		assert.Nil(t, ev)
		assert.Len(t, h.backend.Submissions(), 1)
	})

	t.Run("Should ignore matching events from other contracts", func(t *testing.T) {
		h := newHarness(t, time.Second)
		likeABI := h.deployment.Like.ABI
		h.backend.OnTransact(h.deployment.Like.Address, func(sub *testutil.Submission) (*testutil.Outcome, error) {
			log, err := testutil.PackEvent(likeABI, "Like", big.NewInt(1), big.NewInt(7), big.NewInt(1), sub.From, big.NewInt(0))
			if err != nil {
				return nil, err
			}
			log.Address = h.deployment.Comment.Address
			return &testutil.Outcome{Logs: []*ethTypes.Log{log}}, nil
		})
		handle := h.writeHandle(t, h.deployment.Like)

		ev, err := h.caller.Invoke(ctx, handle, "like", "Like", big.NewInt(7), big.NewInt(1))
		require.NoError(t, err)
		assert.Nil(t, ev)
	})

	t.Run("Should reject bad requests before submitting", func(t *testing.T) {
		h := newHarness(t, time.Second)
		h.emitProfileCreated(t)
		write := h.writeHandle(t, h.deployment.Profile)
		read, err := h.factory.ReadHandle(h.deployment.Profile)
		require.NoError(t, err)

		cases := []struct {
			name   string
			handle *ledger.Handle
			method string
			event  string
			args   []any
		}{
			{"read-only handle", read, "createProfile", "ProfileCreated", []any{"alice", ""}},
			{"nil handle", nil, "createProfile", "ProfileCreated", []any{"alice", ""}},
			{"unknown method", write, "mint", "ProfileCreated", nil},
			{"unknown event", write, "createProfile", "Minted", []any{"alice", ""}},
			{"wrong argument type", write, "createProfile", "ProfileCreated", []any{big.NewInt(1), ""}},
			{"missing argument", write, "createProfile", "ProfileCreated", []any{"alice"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := h.caller.Invoke(ctx, tc.handle, tc.method, tc.event, tc.args...)
				assert.True(t, errors.Is(err, failures.ErrUserInput), err)
			})
		}
		assert.Empty(t, h.backend.Submissions())
	})

	t.Run("Should time out waiting for inclusion", func(t *testing.T) {
		h := newHarness(t, 50*time.Millisecond)
		h.backend.NeverMine = true
		h.backend.Deploy(h.deployment.Follow.Address)
		handle := h.writeHandle(t, h.deployment.Follow)

		_, err := h.caller.Invoke(ctx, handle, "follow", "Follow", big.NewInt(1), big.NewInt(2))
		assert.True(t, errors.Is(err, failures.ErrTimeout))
	})

	t.Run("Should surface reverts as unconfirmed", func(t *testing.T) {
		h := newHarness(t, time.Second)
		h.backend.OnTransact(h.deployment.Follow.Address, func(sub *testutil.Submission) (*testutil.Outcome, error) {
			return &testutil.Outcome{Reverted: true}, nil
		})
		handle := h.writeHandle(t, h.deployment.Follow)

		_, err := h.caller.Invoke(ctx, handle, "follow", "Follow", big.NewInt(1), big.NewInt(2))
		assert.True(t, errors.Is(err, failures.ErrUnconfirmed))
	})
}

func Test_Invoke_Concurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("Should run follows from different users independently", func(t *testing.T) {
		h := newHarness(t, time.Second)
		followABI := h.deployment.Follow.ABI
		h.backend.OnTransact(h.deployment.Follow.Address, func(sub *testutil.Submission) (*testutil.Outcome, error) {
			_, args, err := testutil.MethodOf(followABI, sub.Data)
			if err != nil {
				return nil, err
			}
			log, err := testutil.PackEvent(followABI, "Follow", args[0], args[1], big.NewInt(1700000000))
			if err != nil {
				return nil, err
			}
			return &testutil.Outcome{Logs: []*ethTypes.Log{log}}, nil
		})

		alice := h.writeHandle(t, h.deployment.Follow)
		bob := h.writeHandle(t, h.deployment.Follow)

		var wg sync.WaitGroup
		results := make([]map[string]any, 2)
		errs := make([]error, 2)
		for i, tc := range []struct {
			handle   *ledger.Handle
			follower int64
			followee int64
		}{{alice, 1, 10}, {bob, 2, 20}} {
			wg.Add(1)
			go func(i int, handle *ledger.Handle, follower, followee int64) {
				defer wg.Done()
				ev, err := h.caller.Invoke(ctx, handle, "follow", "Follow", big.NewInt(follower), big.NewInt(followee))
				errs[i] = err
				if ev != nil {
					results[i] = ev.Record()
				}
			}(i, tc.handle, tc.follower, tc.followee)
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		assert.Equal(t, uint64(10), results[0]["followeeId"])
		assert.Equal(t, uint64(20), results[1]["followeeId"])

		senders := map[common.Address]uint64{}
		for _, sub := range h.backend.Submissions() {
			senders[sub.From] = sub.Nonce
		}
		assert.Equal(t, map[common.Address]uint64{alice.From(): 0, bob.From(): 0}, senders)
	})

	t.Run("Should serialize submissions from one signer", func(t *testing.T) {
		h := newHarness(t, time.Second)
		h.emitProfileCreated(t)
		handle := h.writeHandle(t, h.deployment.Profile)

		const n = 5
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = h.caller.Invoke(ctx, handle, "createProfile", "ProfileCreated", "user", "")
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		nonces := map[uint64]bool{}
		for _, sub := range h.backend.Submissions() {
			nonces[sub.Nonce] = true
		}
		assert.Len(t, nonces, n)
		assert.Equal(t, 0, h.caller.locks.size())
	})
}

func Test_EstimateGas(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Second)
	h.backend.Deploy(h.deployment.Profile.Address)
	h.backend.GasLimit = 50_000
	h.backend.GasPrice = big.NewInt(2_000_000_000)

	from := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	handle, err := h.factory.ReadHandleAs(h.deployment.Profile, from)
	require.NoError(t, err)

	estimate, err := h.caller.EstimateGas(ctx, handle, "createProfile", "alice", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(50_000), estimate.GasUnits)
	assert.Equal(t, big.NewInt(100_000_000_000_000), estimate.FeeWei)
	assert.Equal(t, "0.0001", estimate.Fee)
	assert.Empty(t, h.backend.Submissions())

	again, err := h.caller.EstimateGas(ctx, handle, "createProfile", "alice", "")
	require.NoError(t, err)
	assert.Equal(t, estimate.Fee, again.Fee)

	_, err = h.caller.EstimateGas(ctx, handle, "nope")
	assert.True(t, errors.Is(err, failures.ErrUserInput))
}

func Test_FormatEther(t *testing.T) {
	oneEther := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	tests := []struct {
		wei  *big.Int
		want string
	}{
		{nil, "0.0"},
		{big.NewInt(0), "0.0"},
		{big.NewInt(1), "0.000000000000000001"},
		{oneEther, "1.0"},
		{new(big.Int).Mul(oneEther, big.NewInt(12)), "12.0"},
		{new(big.Int).Add(oneEther, new(big.Int).Div(oneEther, big.NewInt(2))), "1.5"},
		{big.NewInt(21_000_000_000_000), "0.000021"},
		{big.NewInt(-1_000_000_000_000_000), "-0.001"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatEther(tc.wei))
	}
}

func Test_Roles(t *testing.T) {
	ctx := context.Background()

	t.Run("Should encode the default role as zero bytes", func(t *testing.T) {
		assert.Equal(t, [32]byte{}, RoleID(""))
		assert.Equal(t, [32]byte{}, RoleID(DefaultAdminRole))
	})

	t.Run("Should hash every other role", func(t *testing.T) {
		admin := RoleID(RoleAdmin)
		assert.Equal(t, [32]byte(crypto.Keccak256Hash([]byte("ADMIN_ROLE"))), admin)
		assert.NotEqual(t, [32]byte{}, admin)
		assert.NotEqual(t, admin, RoleID("MODERATOR_ROLE"))
	})

	t.Run("Should query hasRole with the encoded role", func(t *testing.T) {
		h := newHarness(t, time.Second)
		admin := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
		profileABI := h.deployment.Profile.ABI
		h.backend.OnCall(h.deployment.Profile.Address, func(msg ethereum.CallMsg) ([]byte, error) {
			_, args, err := testutil.MethodOf(profileABI, msg.Data)
			if err != nil {
				return nil, err
			}
			role := args[0].([32]byte)
			account := args[1].(common.Address)
			return testutil.PackReturn(profileABI, "hasRole", role == RoleID(RoleAdmin) && account == admin)
		})
		handle, err := h.factory.ReadHandle(h.deployment.Profile)
		require.NoError(t, err)

		ok, err := h.caller.HasRole(ctx, handle, RoleAdmin, admin)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = h.caller.HasRole(ctx, handle, DefaultAdminRole, admin)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = h.caller.HasRole(ctx, handle, RoleAdmin, common.HexToAddress("0x01"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func Test_Call(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Second)
	likeABI := h.deployment.Like.ABI
	h.backend.OnCall(h.deployment.Like.Address, func(msg ethereum.CallMsg) ([]byte, error) {
		return testutil.PackReturn(likeABI, "hasLiked", true)
	})
	handle, err := h.factory.ReadHandle(h.deployment.Like)
	require.NoError(t, err)

	t.Run("Should return view outputs", func(t *testing.T) {
		out, err := h.caller.Call(ctx, handle, "hasLiked", big.NewInt(7), big.NewInt(1))
		require.NoError(t, err)
		assert.Equal(t, []any{true}, out)
	})

	t.Run("Should reject state-changing methods", func(t *testing.T) {
		_, err := h.caller.Call(ctx, handle, "like", big.NewInt(7), big.NewInt(1))
		assert.True(t, errors.Is(err, failures.ErrUserInput))
	})

	t.Run("Should classify unreachable endpoints", func(t *testing.T) {
		h.backend.CallErr = &url.Error{Op: "Post", URL: "http://localhost:8545", Err: syscall.ECONNREFUSED}
		defer func() { h.backend.CallErr = nil }()
		_, err := h.caller.Call(ctx, handle, "hasLiked", big.NewInt(7), big.NewInt(1))
		assert.True(t, errors.Is(err, failures.ErrChainUnavailable))
	})
}
