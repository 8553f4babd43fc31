package backend_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirdkv/dird/backend"
	"github.com/dirdkv/dird/cache"
	"github.com/dirdkv/dird/clock"
	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/entry"
	"github.com/dirdkv/dird/entrylock"
	"github.com/dirdkv/dird/schema"
	"github.com/dirdkv/dird/storage"
	"github.com/dirdkv/dird/txndriver"
)

type fakeLockMgr struct{ held map[string][]byte }

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

type fakeValidator struct{}

func (fakeValidator) Check(*entry.Entry, []*entry.Attribute, bool) error { return nil }

type fakeIndex struct{}

func (fakeIndex) IsIndexed(*entry.AttributeDescription) bool { return false }

type fakeIndexer struct{}

func (fakeIndexer) IndexValues(*entry.AttributeDescription, []string, uint64, bool) error {
	return nil
}

func mailDesc() *entry.AttributeDescription { return &entry.AttributeDescription{Name: "mail"} }

func newPrimary(t *testing.T) (*backend.Primary, *storage.Store) {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	deps := txndriver.Deps{
		Store:     store,
		Locks:     entrylock.NewManager(newFakeLockMgr(), 30),
		Cache:     cache.NewCache(),
		ACL:       schema.AllowAllACL{},
		Validator: fakeValidator{},
		Index:     fakeIndex{},
		Indexer:   fakeIndexer{},
		Clock:     clock.Fixed{At: time.Date(2026, 8, 6, 0, 0, 0, 0, time.UTC)},
	}
	cfg := txndriver.Config{
		Authoritative:  true,
		LastModEnabled: true,
		MaxRetries:     5,
		BackoffBase:    time.Millisecond,
		BackoffCap:     10 * time.Millisecond,
	}
	driver := txndriver.NewDriver(deps, cfg)
	return backend.NewPrimary(driver, "", true), store
}

func TestPrimaryModifySucceeds(t *testing.T) {
	p, store := newPrimary(t)
	require.NoError(t, store.PutEntry(&entry.Entry{
		ID: 1, DN: "cn=Alice", NDN: "cn=alice",
		Attrs: []*entry.Attribute{
			{Desc: mailDesc(), Values: []string{"a@example.com"}, NValues: []string{"a@example.com"}},
		},
	}))

	reply := p.Modify(&backend.Request{
		Name: "cn=Alice", NDN: "cn=alice",
		ModList: entry.ModList{
			{Op: entry.Add, Desc: mailDesc(), Values: []string{"b@example.com"}, NValues: []string{"b@example.com"}},
		},
	})

	assert.Equal(t, direrr.Success, reply.Code)
}

func TestPrimaryUpdateNDNAndLastMod(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	driver := txndriver.NewDriver(txndriver.Deps{
		Store: store, Locks: entrylock.NewManager(newFakeLockMgr(), 30), Cache: cache.NewCache(),
		ACL: schema.AllowAllACL{}, Validator: fakeValidator{}, Index: fakeIndex{}, Indexer: fakeIndexer{},
		Clock: clock.System{},
	}, txndriver.Config{MaxRetries: 1, BackoffBase: time.Millisecond, BackoffCap: time.Millisecond})

	p := backend.NewPrimary(driver, "cn=replicator", false)
	assert.Equal(t, "cn=replicator", p.UpdateNDN())
	assert.False(t, p.LastMod())
}
