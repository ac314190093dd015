package caller

import (
	"sync"

	"github.com/Layr-Labs/social-custody-go/pkg/contractCaller"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ContractCaller drives calls through ledger handles. It holds no per-user
// state beyond the submission locks.
type ContractCaller struct {
	logger *zap.Logger
	locks  *signerLocks
}

var _ contractCaller.IContractCaller = (*ContractCaller)(nil)

func NewContractCaller(logger *zap.Logger) *ContractCaller {
	return &ContractCaller{
		logger: logger,
		locks:  newSignerLocks(),
	}
}

// signerLocks serializes submissions per signer address so two transactions
// from one wallet never race for the same nonce.
type signerLocks struct {
	mu    sync.Mutex
	locks map[common.Address]*signerLock
}

type signerLock struct {
	mu   sync.Mutex
	refs int
}

func newSignerLocks() *signerLocks {
	return &signerLocks{locks: make(map[common.Address]*signerLock)}
}

func (s *signerLocks) lock(addr common.Address) func() {
	s.mu.Lock()
	l, ok := s.locks[addr]
	if !ok {
		l = &signerLock{}
		s.locks[addr] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, addr)
		}
		s.mu.Unlock()
	}
}

func (s *signerLocks) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
