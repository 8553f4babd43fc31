package entry_test

import (
	"testing"

	"github.com/dirdkv/dird/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cnDesc() *entry.AttributeDescription {
	return &entry.AttributeDescription{Name: "cn"}
}

func TestCloneIsIndependent(t *testing.T) {
	cn := cnDesc()
	e := &entry.Entry{
		ID:  1,
		DN:  "cn=Alice",
		NDN: "cn=alice",
		Attrs: []*entry.Attribute{
			{Desc: cn, Values: []string{"Alice"}, NValues: []string{"alice"}},
		},
	}

	clone := e.Clone()
	clone.Attrs[0].Append("Bob", "bob")

	require.Len(t, e.Attrs[0].Values, 1)
	assert.Equal(t, "Alice", e.Attrs[0].Values[0])
	assert.Len(t, clone.Attrs[0].Values, 2)
}

func TestFindAndRemove(t *testing.T) {
	cn := cnDesc()
	e := &entry.Entry{Attrs: []*entry.Attribute{
		{Desc: cn, Values: []string{"Alice"}, NValues: []string{"alice"}},
	}}

	require.NotNil(t, e.Find(cn))
	require.True(t, e.Remove(cn))
	require.Nil(t, e.Find(cn))
	require.False(t, e.Remove(cn))
}

func TestStripNonOperational(t *testing.T) {
	e := &entry.Entry{Attrs: []*entry.Attribute{
		{Desc: entry.ObjectClass, Values: []string{"glue"}, NValues: []string{"glue"}},
		{Desc: cnDesc(), Values: []string{"Alice"}, NValues: []string{"alice"}},
		{Desc: entry.ModifiersName, Values: []string{"cn=admin"}, NValues: []string{"cn=admin"}},
	}}

	e.StripNonOperational()

	require.Len(t, e.Attrs, 1)
	assert.True(t, entry.IsOperational(e.Attrs[0].Desc))
}

func TestIsOperationalCaseInsensitive(t *testing.T) {
	desc := &entry.AttributeDescription{Name: "ModifyTimestamp"}
	assert.True(t, entry.IsOperational(desc))
}
