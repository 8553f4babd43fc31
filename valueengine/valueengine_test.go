package valueengine_test

import (
	"testing"

	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/entry"
	"github.com/dirdkv/dird/valueengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func desc(name string) *entry.AttributeDescription {
	return &entry.AttributeDescription{Name: name}
}

func withMail(values ...string) *entry.Entry {
	nvals := append([]string(nil), values...)
	for i := range nvals {
		nvals[i] = values[i]
	}
	return &entry.Entry{Attrs: []*entry.Attribute{
		{Desc: desc("mail"), Values: values, NValues: nvals},
	}}
}

// S1: ADD of a value already present is rejected without permissive-modify.
func TestAddDuplicateNonPermissive(t *testing.T) {
	e := withMail("a@example.com")
	mod := &entry.Modification{Op: entry.Add, Desc: desc("mail"), Values: []string{"a@example.com"}, NValues: []string{"a@example.com"}}

	code := valueengine.Apply(e, mod, valueengine.Options{})
	assert.Equal(t, direrr.TypeOrValueExists, code)
	assert.Len(t, e.Attrs[0].Values, 1)
}

// S2: the same ADD becomes a no-op success under permissive-modify.
func TestAddDuplicatePermissive(t *testing.T) {
	e := withMail("a@example.com")
	mod := &entry.Modification{Op: entry.Add, Desc: desc("mail"), Values: []string{"a@example.com"}, NValues: []string{"a@example.com"}}

	code := valueengine.Apply(e, mod, valueengine.Options{Permissive: true})
	assert.Equal(t, direrr.Success, code)
	assert.Len(t, e.Attrs[0].Values, 1)
}

// S3: deleting the last remaining value removes the attribute entirely.
func TestDeleteLastValueRemovesAttribute(t *testing.T) {
	e := withMail("a@example.com")
	mod := &entry.Modification{Op: entry.Delete, Desc: desc("mail"), Values: []string{"a@example.com"}, NValues: []string{"a@example.com"}}

	code := valueengine.Apply(e, mod, valueengine.Options{})
	require.Equal(t, direrr.Success, code)
	assert.Nil(t, e.Find(desc("mail")))
}

// S4: REPLACE with an empty value list deletes the attribute even if absent.
func TestReplaceEmptyDeletesAttribute(t *testing.T) {
	e := &entry.Entry{}
	mod := &entry.Modification{Op: entry.Replace, Desc: desc("mail")}

	code := valueengine.Apply(e, mod, valueengine.Options{})
	assert.Equal(t, direrr.Success, code)
	assert.Nil(t, e.Find(desc("mail")))
}

func TestDeleteMissingAttributeNonPermissive(t *testing.T) {
	e := &entry.Entry{}
	mod := &entry.Modification{Op: entry.Delete, Desc: desc("mail"), Values: []string{"a@example.com"}, NValues: []string{"a@example.com"}}

	code := valueengine.Apply(e, mod, valueengine.Options{})
	assert.Equal(t, direrr.NoSuchAttribute, code)
}

func TestReplaceSingleValuedRejectsMultiple(t *testing.T) {
	e := &entry.Entry{}
	cn := &entry.AttributeDescription{Name: "cn", SingleValue: true}
	mod := &entry.Modification{Op: entry.Replace, Desc: cn, Values: []string{"a", "b"}, NValues: []string{"a", "b"}}

	code := valueengine.Apply(e, mod, valueengine.Options{})
	assert.Equal(t, direrr.ConstraintViolation, code)
}

func TestIncrementAddsDeltaToIntegerValue(t *testing.T) {
	counter := &entry.AttributeDescription{Name: "loginCount", IntegerSyntax: true}
	e := &entry.Entry{Attrs: []*entry.Attribute{
		{Desc: counter, Values: []string{"4"}, NValues: []string{"4"}},
	}}
	mod := &entry.Modification{Op: entry.Increment, Desc: counter, Values: []string{"3"}}

	code := valueengine.Apply(e, mod, valueengine.Options{})
	require.Equal(t, direrr.Success, code)
	assert.Equal(t, "7", e.Attrs[0].Values[0])
}

func TestIncrementNonIntegerSyntaxRejected(t *testing.T) {
	e := &entry.Entry{}
	mod := &entry.Modification{Op: entry.Increment, Desc: desc("mail"), Values: []string{"1"}}

	code := valueengine.Apply(e, mod, valueengine.Options{})
	assert.Equal(t, direrr.ConstraintViolation, code)
}

// SOFT_ADD behaves exactly like ADD, including adding a genuinely new value
// alongside an attribute that already has other values; only a duplicate
// value is tolerated instead of rejected.
func TestSoftAddAppendsNewValueWhenAttributePresent(t *testing.T) {
	e := withMail("a@example.com")
	mod := &entry.Modification{Op: entry.SoftAdd, Desc: desc("mail"), Values: []string{"b@example.com"}, NValues: []string{"b@example.com"}}

	code := valueengine.Apply(e, mod, valueengine.Options{})
	require.Equal(t, direrr.Success, code)
	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, e.Attrs[0].Values)
}

func TestSoftAddToleratesExistingValue(t *testing.T) {
	e := withMail("a@example.com")
	mod := &entry.Modification{Op: entry.SoftAdd, Desc: desc("mail"), Values: []string{"a@example.com"}, NValues: []string{"a@example.com"}}

	code := valueengine.Apply(e, mod, valueengine.Options{})
	require.Equal(t, direrr.Success, code)
	assert.Len(t, e.Attrs[0].Values, 1)
}

func TestReplaceRejectsDuplicatesWithinSet(t *testing.T) {
	e := &entry.Entry{}
	mod := &entry.Modification{Op: entry.Replace, Desc: desc("mail"), Values: []string{"a@example.com", "a@example.com"}, NValues: []string{"a@example.com", "a@example.com"}}

	code := valueengine.Apply(e, mod, valueengine.Options{})
	assert.Equal(t, direrr.ConstraintViolation, code)
}

func TestReplaceToleratesDuplicatesUnderPermissive(t *testing.T) {
	e := &entry.Entry{}
	mod := &entry.Modification{Op: entry.Replace, Desc: desc("mail"), Values: []string{"a@example.com", "a@example.com"}, NValues: []string{"a@example.com", "a@example.com"}}

	code := valueengine.Apply(e, mod, valueengine.Options{Permissive: true})
	assert.Equal(t, direrr.Success, code)
}
