package social

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/Layr-Labs/social-custody-go/internal/keyGenerator/localKeyGenerator"
	"github.com/Layr-Labs/social-custody-go/pkg/clients/keyService"
	"github.com/Layr-Labs/social-custody-go/pkg/clients/localKms"
	"github.com/Layr-Labs/social-custody-go/pkg/config"
	"github.com/Layr-Labs/social-custody-go/pkg/contractCaller/caller"
	"github.com/Layr-Labs/social-custody-go/pkg/contracts"
	"github.com/Layr-Labs/social-custody-go/pkg/custody"
	"github.com/Layr-Labs/social-custody-go/pkg/encryption"
	"github.com/Layr-Labs/social-custody-go/pkg/envelope"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
	"github.com/Layr-Labs/social-custody-go/pkg/ledger"
	"github.com/Layr-Labs/social-custody-go/pkg/persistence/memory"
	"github.com/Layr-Labs/social-custody-go/pkg/testutil"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pipeline struct {
	custody    *custody.Service
	backend    *testutil.FakeBackend
	deployment *contracts.Deployment
	service    *Service
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	l := zap.NewNop()

	enc, err := encryption.NewPassphraseEncryption("local-secret")
	require.NoError(t, err)
	path := keyService.KeyResourcePath{Project: "social", Location: "local", KeyRing: "wallets", Key: "custody"}
	kms, err := localKms.NewLocalKMSClient(path, "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff", l)
	require.NoError(t, err)
	chain, err := envelope.NewChain(envelope.NewLocalStage(enc), envelope.NewRemoteStage(kms))
	require.NoError(t, err)
	custodySvc := custody.NewService(localKeyGenerator.NewLocalKeyGenerator(l), chain, memory.NewMemoryPersistence(l), l)

	cfg := &config.CustodyConfig{Environment: config.Environment_Development, ConfirmationTimeout: 2 * time.Second}
	chainCfg, err := cfg.ResolveChain()
	require.NoError(t, err)
	deployment, err := contracts.NewDeployment(chainCfg.Contracts)
	require.NoError(t, err)
	backend := testutil.NewFakeBackend(int64(chainCfg.ChainID))
	factory, err := ledger.NewFactoryWithBackend(context.Background(), chainCfg, backend, l)
	require.NoError(t, err)

	return &pipeline{
		custody:    custodySvc,
		backend:    backend,
		deployment: deployment,
		service:    NewService(custodySvc, factory, caller.NewContractCaller(l), deployment, l),
	}
}

func Test_Pipeline(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	wallet, err := p.custody.ProvisionWallet(ctx, "user-1")
	require.NoError(t, err)

	t.Run("Should create a profile signed by the custodial wallet", func(t *testing.T) {
		profileABI := p.deployment.Profile.ABI
		p.backend.OnTransact(p.deployment.Profile.Address, func(sub *testutil.Submission) (*testutil.Outcome, error) {
			_, args, err := testutil.MethodOf(profileABI, sub.Data)
			if err != nil {
				return nil, err
			}
			log, err := testutil.PackEvent(profileABI, "ProfileCreated", big.NewInt(1), sub.From, args[0], args[1])
			if err != nil {
				return nil, err
			}
			return &testutil.Outcome{Logs: []*types.Log{log}}, nil
		})

		token, err := p.service.CreateProfile(ctx, "user-1", "alice", "")
		require.NoError(t, err)
		assert.Equal(t, &ProfileToken{
			TokenId:  1,
			Owner:    common.HexToAddress(wallet.Address).Hex(),
			Handle:   "alice",
			ImageURI: "",
		}, token)

		subs := p.backend.Submissions()
		require.Len(t, subs, 1)
		assert.Equal(t, common.HexToAddress(wallet.Address), subs[0].From)
	})

	t.Run("Should fail a like that emits no event", func(t *testing.T) {
		likeABI := p.deployment.Like.ABI
		p.backend.OnCall(p.deployment.Like.Address, func(msg ethereum.CallMsg) ([]byte, error) {
			return testutil.PackReturn(likeABI, "hasLiked", false)
		})
		p.backend.OnTransact(p.deployment.Like.Address, func(sub *testutil.Submission) (*testutil.Outcome, error) {
			return &testutil.Outcome{}, nil
		})

		_, err := p.service.ToggleLike(ctx, "user-1", 7, 1)
		assert.True(t, errors.Is(err, failures.ErrOperationFailed))
		assert.Equal(t, "Like failed.", err.Error())
	})

	t.Run("Should refuse users without a wallet", func(t *testing.T) {
		_, err := p.service.CreateProfile(ctx, "user-unknown", "ghost", "")
		assert.True(t, errors.Is(err, failures.ErrForbidden))
	})
}

func Test_Pipeline_ConcurrentFollows(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	followABI := p.deployment.Follow.ABI
	p.backend.OnCall(p.deployment.Follow.Address, func(msg ethereum.CallMsg) ([]byte, error) {
		return testutil.PackReturn(followABI, "isFollowing", false)
	})
	p.backend.OnTransact(p.deployment.Follow.Address, func(sub *testutil.Submission) (*testutil.Outcome, error) {
		_, args, err := testutil.MethodOf(followABI, sub.Data)
		if err != nil {
			return nil, err
		}
		log, err := testutil.PackEvent(followABI, "Follow", args[0], args[1], big.NewInt(1700000000))
		if err != nil {
			return nil, err
		}
		return &testutil.Outcome{Logs: []*types.Log{log}}, nil
	})

	users := []struct {
		id         string
		followerId uint64
		followeeId uint64
	}{
		{"user-a", 1, 100},
		{"user-b", 2, 200},
		{"user-c", 3, 300},
	}
	for _, u := range users {
		_, err := p.custody.ProvisionWallet(ctx, u.id)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	tokens := make([]*FollowToken, len(users))
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, userId string, follower, followee uint64) {
			defer wg.Done()
			tokens[i], errs[i] = p.service.ToggleFollow(ctx, userId, follower, followee)
		}(i, u.id, u.followerId, u.followeeId)
	}
	wg.Wait()

	for i, u := range users {
		require.NoError(t, errs[i])
		assert.Equal(t, &FollowToken{FollowerId: u.followerId, FolloweeId: u.followeeId, Timestamp: 1700000000, Following: true}, tokens[i])
	}
	assert.Len(t, p.backend.Submissions(), len(users))
}
