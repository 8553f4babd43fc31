package stamper_test

import (
	"testing"
	"time"

	"github.com/dirdkv/dird/clock"
	"github.com/dirdkv/dird/entry"
	"github.com/dirdkv/dird/stamper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() clock.Clock {
	return clock.Fixed{At: time.Date(2026, 8, 6, 12, 30, 0, 0, time.UTC)}
}

func opts() stamper.Options {
	return stamper.Options{Authoritative: true, LastModEnabled: true, BindName: "cn=admin"}
}

func TestStampPrependsAndStripsOperationalMods(t *testing.T) {
	mail := &entry.AttributeDescription{Name: "mail"}
	modList := entry.ModList{
		{Op: entry.Replace, Desc: entry.ModifyTimestamp, Values: []string{"forged"}},
		{Op: entry.Add, Desc: mail, Values: []string{"a@example.com"}, NValues: []string{"a@example.com"}},
		{Op: entry.Replace, Desc: entry.CreatorsName, Values: []string{"cn=attacker"}},
	}

	out := stamper.Stamp(modList, opts(), fixedClock())

	require.Len(t, out, 3)
	assert.Equal(t, entry.ModifyTimestamp, out[0].Desc)
	assert.Equal(t, "20260806123000Z", out[0].Values[0])
	assert.Equal(t, entry.ModifiersName, out[1].Desc)
	assert.Equal(t, "cn=admin", out[1].Values[0])
	assert.Equal(t, mail, out[2].Desc)
}

func TestStampIdempotent(t *testing.T) {
	mail := &entry.AttributeDescription{Name: "mail"}
	modList := entry.ModList{
		{Op: entry.Add, Desc: mail, Values: []string{"a@example.com"}, NValues: []string{"a@example.com"}},
	}

	first := stamper.Stamp(modList, opts(), fixedClock())
	second := stamper.Stamp(first, opts(), fixedClock())

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Desc, second[i].Desc)
		assert.Equal(t, first[i].Values, second[i].Values)
	}
}

func TestStampNoBindNameUsesNulldn(t *testing.T) {
	out := stamper.Stamp(entry.ModList{}, stamper.Options{Authoritative: true, LastModEnabled: true}, fixedClock())

	require.Len(t, out, 2)
	assert.Equal(t, "NULLDN", out[1].Values[0])
}

func TestStampDisabledWhenNotAuthoritative(t *testing.T) {
	modList := entry.ModList{{Op: entry.Add, Desc: &entry.AttributeDescription{Name: "mail"}}}
	o := opts()
	o.Authoritative = false

	out := stamper.Stamp(modList, o, fixedClock())

	assert.Equal(t, modList, out)
}
