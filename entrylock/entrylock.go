// Package entrylock provides the per-entry write lock the transaction
// driver acquires during LOOKUP (spec section 4.3) and releases on commit,
// abort, or entering RETRY. It is a thin domain wrapper over lockmgr's
// generic named lock, translating acquisition outcomes into direrr's
// storage taxonomy so the driver can decide retry vs. surface without
// knowing anything about the underlying lock implementation.
package entrylock

import (
	"strconv"

	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/lib/lockmgr"
)

// Manager acquires and releases write locks keyed by entry id.
type Manager struct {
	locks lockmgr.ILockManager
	// TimeoutSeconds bounds how long a lock is held before it is
	// considered abandoned and eligible for a future holder to steal;
	// a stuck worker (crash mid-transaction) cannot wedge an entry
	// forever.
	TimeoutSeconds uint64
}

// NewManager wraps locks with the entry-keyed write-lock API.
func NewManager(locks lockmgr.ILockManager, timeoutSeconds uint64) *Manager {
	return &Manager{locks: locks, TimeoutSeconds: timeoutSeconds}
}

// Lock is a held write lock; Release requires the same Lock value it was
// issued with so a caller cannot accidentally release someone else's lock.
type Lock struct {
	key     string
	ownerID []byte
}

// Acquire attempts to take the write lock for id. A StorageError with code
// StorageNotGranted means the lock is currently held by someone else, which
// the transaction driver treats as NOT_GRANTED and retries with backoff.
func (m *Manager) Acquire(id uint64) (*Lock, error) {
	key := lockKey(id)
	ok, ownerID, err := m.locks.AcquireLock(key, m.TimeoutSeconds)
	if err != nil {
		return nil, direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	if !ok {
		return nil, direrr.NewStorageError(direrr.StorageNotGranted, "entry lock held")
	}
	return &Lock{key: key, ownerID: ownerID}, nil
}

// Release frees l. A failed release is logged by the caller but never
// retried; the lock's timeout bounds how long a leaked lock can linger.
func (m *Manager) Release(l *Lock) error {
	if l == nil {
		return nil
	}
	_, err := m.locks.ReleaseLock(l.key, l.ownerID)
	if err != nil {
		return direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	return nil
}

func lockKey(id uint64) string {
	return "entrylock:" + strconv.FormatUint(id, 10)
}
