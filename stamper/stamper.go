// Package stamper implements the operation-attribute stamping pass (spec
// section 4.4): it strips any client-supplied values for the four
// server-managed operational attributes and prepends fresh replacements.
package stamper

import (
	"strings"
	"time"

	"github.com/dirdkv/dird/clock"
	"github.com/dirdkv/dird/entry"
)

// generalizedTimeLayout is the four-digit-year generalized-time format used
// for modifyTimestamp. The source system supports a build-time switch to a
// two-digit year; this implementation always uses four digits.
const generalizedTimeLayout = "20060102150405Z"

// strippedNames are the case-folded target names removed from an incoming
// modList before the server's own replacements are prepended.
var strippedNames = map[string]bool{
	"modifytimestamp": true,
	"modifiersname":   true,
	"createtimestamp": true,
	"creatorsname":    true,
}

// Options controls whether stamping runs at all.
type Options struct {
	// Authoritative reports whether this backend owns the entry (not a
	// read-only replica copy).
	Authoritative bool
	// LastModEnabled is the per-backend (falling back to global default)
	// setting that turns last-modification stamping on.
	LastModEnabled bool
	// BindName is the operation's authenticated identity, or "" if
	// anonymous.
	BindName string
}

// Stamp returns a new ModList with client-supplied operational-attribute
// mods removed and REPLACE mods for modifyTimestamp and modifiersName
// prepended, modifyTimestamp first. It leaves modList untouched when stamping is
// disabled. now is read once so the two stamped values stay consistent with
// each other within a single call.
func Stamp(modList entry.ModList, opt Options, clk clock.Clock) entry.ModList {
	if !opt.Authoritative || !opt.LastModEnabled {
		return modList
	}

	filtered := make(entry.ModList, 0, len(modList))
	for _, mod := range modList {
		if strippedNames[strings.ToLower(mod.Desc.Name)] {
			continue
		}
		filtered = append(filtered, mod)
	}

	bindName := opt.BindName
	if bindName == "" {
		bindName = "NULLDN"
	}
	ts := formatGeneralizedTime(clk.Now())

	out := make(entry.ModList, 0, len(filtered)+2)
	out = append(out, &entry.Modification{
		Op:      entry.Replace,
		Desc:    entry.ModifyTimestamp,
		Values:  []string{ts},
		NValues: []string{ts},
	})
	out = append(out, &entry.Modification{
		Op:      entry.Replace,
		Desc:    entry.ModifiersName,
		Values:  []string{bindName},
		NValues: []string{strings.ToLower(bindName)},
	})
	out = append(out, filtered...)
	return out
}

func formatGeneralizedTime(t time.Time) string {
	return t.UTC().Format(generalizedTimeLayout)
}
