package lockmgr_test

import (
	"testing"
	"time"

	"github.com/dirdkv/dird/lib/lockmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireThenReleaseRoundTrips(t *testing.T) {
	mgr := lockmgr.NewLockManager()

	ok, owner, err := mgr.AcquireLock("entrylock:1", 30)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, owner)

	released, err := mgr.ReleaseLock("entrylock:1", owner)
	require.NoError(t, err)
	assert.True(t, released)

	ok, _, err = mgr.AcquireLock("entrylock:1", 30)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAcquireContendedFails(t *testing.T) {
	mgr := lockmgr.NewLockManager()

	ok, _, err := mgr.AcquireLock("entrylock:2", 30)
	require.NoError(t, err)
	require.True(t, ok)

	ok, owner, err := mgr.AcquireLock("entrylock:2", 30)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, owner)
}

func TestReleaseWithWrongOwnerFails(t *testing.T) {
	mgr := lockmgr.NewLockManager()

	_, owner, err := mgr.AcquireLock("entrylock:3", 30)
	require.NoError(t, err)

	released, err := mgr.ReleaseLock("entrylock:3", append([]byte{}, owner[1:]...))
	require.NoError(t, err)
	assert.False(t, released)
}

func TestReleaseOfUnknownKeySucceeds(t *testing.T) {
	mgr := lockmgr.NewLockManager()

	released, err := mgr.ReleaseLock("entrylock:never-acquired", []byte("whoever"))
	require.NoError(t, err)
	assert.True(t, released)
}

func TestZeroTimeoutNeverExpires(t *testing.T) {
	mgr := lockmgr.NewLockManager()

	ok, _, err := mgr.AcquireLock("entrylock:4", 0)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(time.Millisecond)

	ok, _, err = mgr.AcquireLock("entrylock:4", 30)
	require.NoError(t, err)
	assert.False(t, ok)
}
