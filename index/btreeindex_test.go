package index_test

import (
	"testing"

	"github.com/dirdkv/dird/entry"
	"github.com/dirdkv/dird/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexAddAndDelete(t *testing.T) {
	idx := index.NewIndex("mail")
	mail := &entry.AttributeDescription{Name: "mail"}

	require.True(t, idx.IsIndexed(mail))
	require.NoError(t, idx.IndexValues(mail, []string{"a@example.com"}, 1, true))
	require.NoError(t, idx.IndexValues(mail, []string{"a@example.com"}, 2, true))

	assert.ElementsMatch(t, []uint64{1, 2}, idx.Lookup(mail, "a@example.com"))

	require.NoError(t, idx.IndexValues(mail, []string{"a@example.com"}, 1, false))
	assert.ElementsMatch(t, []uint64{2}, idx.Lookup(mail, "a@example.com"))
}

func TestUnindexedAttributeIsNoop(t *testing.T) {
	idx := index.NewIndex("mail")
	cn := &entry.AttributeDescription{Name: "cn"}

	assert.False(t, idx.IsIndexed(cn))
	assert.NoError(t, idx.IndexValues(cn, []string{"Alice"}, 1, true))
	assert.Empty(t, idx.Lookup(cn, "Alice"))
}
