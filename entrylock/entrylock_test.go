package entrylock_test

import (
	"testing"

	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/entrylock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLockMgr struct {
	held map[string][]byte
}

func newFakeLockMgr() *fakeLockMgr { return &fakeLockMgr{held: map[string][]byte{}} }

func (f *fakeLockMgr) AcquireLock(key string, timeout uint64) (bool, []byte, error) {
	if _, taken := f.held[key]; taken {
		return false, nil, nil
	}
	owner := []byte(key + "-owner")
	f.held[key] = owner
	return true, owner, nil
}

func (f *fakeLockMgr) ReleaseLock(key string, ownerID []byte) (bool, error) {
	cur, ok := f.held[key]
	if !ok {
		return true, nil
	}
	if string(cur) != string(ownerID) {
		return false, nil
	}
	delete(f.held, key)
	return true, nil
}

func TestAcquireThenReleaseRoundTrips(t *testing.T) {
	mgr := entrylock.NewManager(newFakeLockMgr(), 30)

	lock, err := mgr.Acquire(42)
	require.NoError(t, err)
	require.NotNil(t, lock)

	require.NoError(t, mgr.Release(lock))

	lock2, err := mgr.Acquire(42)
	require.NoError(t, err)
	require.NotNil(t, lock2)
}

func TestAcquireContendedReturnsNotGranted(t *testing.T) {
	fake := newFakeLockMgr()
	mgr := entrylock.NewManager(fake, 30)

	_, err := mgr.Acquire(1)
	require.NoError(t, err)

	_, err = mgr.Acquire(1)
	require.Error(t, err)
	se, ok := err.(*direrr.StorageError)
	require.True(t, ok)
	assert.Equal(t, direrr.StorageNotGranted, se.Code)
	assert.True(t, direrr.IsTransient(err))
}

func TestReleaseNilIsNoop(t *testing.T) {
	mgr := entrylock.NewManager(newFakeLockMgr(), 30)
	assert.NoError(t, mgr.Release(nil))
}
