package lockmgr

import (
	"bytes"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("lockmgr")

// lockState is the per-key slot: at most one owner at a time, expiring after
// its timeout so a crashed holder cannot wedge the key forever.
type lockState struct {
	mu        sync.Mutex
	ownerID   []byte
	expiresAt time.Time
}

func (s *lockState) held() bool {
	if s.ownerID == nil {
		return false
	}
	if s.expiresAt.IsZero() {
		return true
	}
	return time.Now().Before(s.expiresAt)
}

type logMgmImpl struct {
	locks *xsync.MapOf[string, *lockState]
}

// NewLockManager returns an in-process lock manager keyed by lock name. It
// has no external store: every key's lockState lives in an xsync.MapOf for
// the lifetime of the process, the same sharded-map pattern the entry cache
// uses for its per-entry-id mutexes.
func NewLockManager() ILockManager {
	return &logMgmImpl{locks: xsync.NewMapOf[string, *lockState]()}
}

func (lp *logMgmImpl) state(key string) *lockState {
	s, _ := lp.locks.LoadOrCompute(key, func() *lockState { return &lockState{} })
	return s
}

func (lp *logMgmImpl) AcquireLock(key string, timeout uint64) (bool, []byte, error) {
	s := lp.state(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held() {
		return false, nil, nil
	}

	ownerID, err := generateOwnerID()
	if err != nil {
		log.Errorf("generate owner id for %s: %v", key, err)
		return false, nil, err
	}

	s.ownerID = ownerID
	if timeout > 0 {
		s.expiresAt = time.Now().Add(time.Duration(timeout) * time.Second)
	} else {
		s.expiresAt = time.Time{}
	}
	return true, ownerID, nil
}

func (lp *logMgmImpl) ReleaseLock(key string, ownerID []byte) (bool, error) {
	s := lp.state(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownerID == nil {
		return true, nil
	}
	if !bytes.Equal(s.ownerID, ownerID) {
		return false, nil
	}
	s.ownerID = nil
	s.expiresAt = time.Time{}
	return true, nil
}
