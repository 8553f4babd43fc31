package storage_test

import (
	"testing"

	"github.com/dirdkv/dird/entry"
	"github.com/dirdkv/dird/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func cnAttr(value string) *entry.Attribute {
	return &entry.Attribute{Desc: &entry.AttributeDescription{Name: "cn"}, Values: []string{value}, NValues: []string{value}}
}

func TestPutThenLookupRoundTrips(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.PutEntry(&entry.Entry{ID: 1, DN: "cn=Alice", NDN: "cn=alice", Attrs: []*entry.Attribute{cnAttr("Alice")}}))

	txn, err := s.BeginOuter()
	require.NoError(t, err)
	defer txn.Abort()

	got, err := txn.Dn2Entry("cn=alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.ID)
	assert.Equal(t, "Alice", got.Attrs[0].Values[0])
}

func TestLookupMissingReturnsNotFound(t *testing.T) {
	s := openStore(t)
	txn, err := s.BeginOuter()
	require.NoError(t, err)
	defer txn.Abort()

	_, err = txn.Dn2Entry("cn=nobody")
	require.Error(t, err)
}

func TestNestedCommitVisibleAfterOuterCommit(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.PutEntry(&entry.Entry{ID: 1, DN: "cn=Alice", NDN: "cn=alice", Attrs: []*entry.Attribute{cnAttr("Alice")}}))

	txn, err := s.BeginOuter()
	require.NoError(t, err)

	nested, err := txn.BeginNested()
	require.NoError(t, err)
	require.NoError(t, nested.Id2EntryUpdate(&entry.Entry{ID: 1, DN: "cn=Alice", NDN: "cn=alice", Attrs: []*entry.Attribute{cnAttr("Bob")}}))
	require.NoError(t, nested.Commit())

	// Visible within the outer txn before it commits.
	got, err := txn.Dn2Entry("cn=alice")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Attrs[0].Values[0])

	require.NoError(t, txn.Commit())

	txn2, err := s.BeginOuter()
	require.NoError(t, err)
	defer txn2.Abort()
	got2, err := txn2.Dn2Entry("cn=alice")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got2.Attrs[0].Values[0])
}

func TestNestedAbortDoesNotPersist(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.PutEntry(&entry.Entry{ID: 1, DN: "cn=Alice", NDN: "cn=alice", Attrs: []*entry.Attribute{cnAttr("Alice")}}))

	txn, err := s.BeginOuter()
	require.NoError(t, err)
	defer txn.Abort()

	nested, err := txn.BeginNested()
	require.NoError(t, err)
	require.NoError(t, nested.Id2EntryUpdate(&entry.Entry{ID: 1, DN: "cn=Alice", NDN: "cn=alice", Attrs: []*entry.Attribute{cnAttr("Mallory")}}))
	require.NoError(t, nested.Abort())

	got, err := txn.Dn2Entry("cn=alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Attrs[0].Values[0])
}
