// Package valueengine applies a single Modification to a single Attribute
// within an entry clone. It is the innermost layer of the Modify pipeline
// (spec section 4.1): it has no knowledge of transactions, locks or schema
// checking, only of the value-list arithmetic for ADD, DELETE, REPLACE,
// INCREMENT and SOFT_ADD.
package valueengine

import (
	"strconv"

	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/entry"
)

// Permissive, when true, relaxes ADD (tolerate an already-present value) and
// DELETE (tolerate an already-absent value) into no-ops instead of errors.
// It mirrors LDAP_CONTROL_X_PERMISSIVE_MODIFY (spec section 4.1, scenario S2).
type Options struct {
	Permissive bool
}

// Apply mutates working in place to reflect mod and reports the resulting
// reply code. working is the entry clone owned by the caller for the
// duration of one transaction attempt; Apply never touches working outside the
// single attribute mod.Desc names.
func Apply(working *entry.Entry, mod *entry.Modification, opt Options) direrr.ReplyCode {
	switch mod.Op {
	case entry.Add:
		return applyAdd(working, mod, opt)
	case entry.Delete:
		return applyDelete(working, mod, opt)
	case entry.Replace:
		return applyReplace(working, mod, opt)
	case entry.Increment:
		return applyIncrement(working, mod)
	case entry.SoftAdd:
		return applySoftAdd(working, mod, opt)
	default:
		return direrr.ProtocolError
	}
}

func applyAdd(working *entry.Entry, mod *entry.Modification, opt Options) direrr.ReplyCode {
	attr := working.Find(mod.Desc)
	if attr == nil && len(mod.Values) == 0 {
		return direrr.Success
	}
	candidate := &entry.Attribute{Desc: mod.Desc}
	if attr != nil {
		candidate = attr.Clone()
	}
	if mod.Desc.SingleValue && (candidate.Len() > 0 || len(mod.Values) > 1) {
		return direrr.ConstraintViolation
	}
	for i, nv := range mod.NValues {
		if candidate.IndexOf(mod.Desc, nv) >= 0 {
			if opt.Permissive {
				continue
			}
			return direrr.TypeOrValueExists
		}
		candidate.Append(mod.Values[i], nv)
	}
	if attr == nil {
		working.Attrs = append(working.Attrs, candidate)
	} else {
		attr.Values, attr.NValues = candidate.Values, candidate.NValues
	}
	return direrr.Success
}

func applyDelete(working *entry.Entry, mod *entry.Modification, opt Options) direrr.ReplyCode {
	attr := working.Find(mod.Desc)
	if len(mod.Values) == 0 {
		// Delete the whole attribute.
		if attr == nil {
			if opt.Permissive {
				return direrr.Success
			}
			return direrr.NoSuchAttribute
		}
		working.Remove(mod.Desc)
		return direrr.Success
	}
	if attr == nil {
		if opt.Permissive {
			return direrr.Success
		}
		return direrr.NoSuchAttribute
	}
	candidate := attr.Clone()
	for _, nv := range mod.NValues {
		idx := candidate.IndexOf(mod.Desc, nv)
		if idx < 0 {
			if opt.Permissive {
				continue
			}
			return direrr.NoSuchAttribute
		}
		candidate.RemoveAt(idx)
	}
	if candidate.Len() == 0 {
		working.Remove(mod.Desc)
		return direrr.Success
	}
	attr.Values, attr.NValues = candidate.Values, candidate.NValues
	return direrr.Success
}

func applyReplace(working *entry.Entry, mod *entry.Modification, opt Options) direrr.ReplyCode {
	if len(mod.Values) == 0 {
		working.Remove(mod.Desc)
		return direrr.Success
	}
	if mod.Desc.SingleValue && len(mod.Values) > 1 {
		return direrr.ConstraintViolation
	}
	// Reject duplicate values within the replacement set itself, unless the
	// caller asked to tolerate them (permissive modify, spec section 4.1).
	if !opt.Permissive {
		for i := range mod.NValues {
			for j := i + 1; j < len(mod.NValues); j++ {
				if mod.Desc.Matches(mod.NValues[i], mod.NValues[j]) {
					return direrr.ConstraintViolation
				}
			}
		}
	}
	attr := working.Find(mod.Desc)
	if attr == nil {
		attr = &entry.Attribute{Desc: mod.Desc}
		working.Attrs = append(working.Attrs, attr)
	}
	attr.Values = append([]string(nil), mod.Values...)
	attr.NValues = append([]string(nil), mod.NValues...)
	return direrr.Success
}

func applyIncrement(working *entry.Entry, mod *entry.Modification) direrr.ReplyCode {
	if !mod.Desc.IntegerSyntax {
		return direrr.ConstraintViolation
	}
	if len(mod.Values) != 1 {
		return direrr.ProtocolError
	}
	delta, err := strconv.ParseInt(mod.Values[0], 10, 64)
	if err != nil {
		return direrr.ConstraintViolation
	}
	attr := working.Find(mod.Desc)
	if attr == nil || attr.Len() != 1 {
		return direrr.ConstraintViolation
	}
	cur, err := strconv.ParseInt(attr.Values[0], 10, 64)
	if err != nil {
		return direrr.ConstraintViolation
	}
	sum := strconv.FormatInt(cur+delta, 10)
	attr.Values[0] = sum
	attr.NValues[0] = sum
	return direrr.Success
}

// applySoftAdd is ADD with TYPE_OR_VALUE_EXISTS downgraded to Success; present
// only as an internal extension used by replication conflict resolution, it
// never arrives over the wire (rejected earlier by dispatch).
func applySoftAdd(working *entry.Entry, mod *entry.Modification, opt Options) direrr.ReplyCode {
	code := applyAdd(working, mod, opt)
	if code == direrr.TypeOrValueExists {
		return direrr.Success
	}
	return code
}
