// Package schema declares the collaborators the Modify pipeline consumes
// but does not own: access control, schema validation and the
// indexed-attribute test. Spec section 6 treats these as external; this
// package gives them Go interfaces plus a minimal in-process implementation
// usable in tests and in the single-node backend.
package schema

import "github.com/dirdkv/dird/entry"

// ACLChecker evaluates whether an operation's principal may apply modList to
// e. The real implementation consults the access-control engine; it is
// intentionally opaque here.
type ACLChecker interface {
	CheckModify(principal string, e *entry.Entry, modList entry.ModList) bool
}

// Validator checks that an entry still satisfies the schema after
// modifications have been applied: required attributes present,
// single-valued attributes single-valued, values conformant to syntax, and
// the objectClass chain valid.
type Validator interface {
	// Check validates working against its schema. savedAttrs is the
	// pre-modification attribute set, supplied so implementations that
	// need to diff (e.g. to detect which structural class changed) can.
	Check(working *entry.Entry, savedAttrs []*entry.Attribute, manageDIT bool) error
}

// IndexChecker reports whether a given attribute is mirrored into the
// secondary value index. The modify engine consults this once per touched
// attribute to decide whether to stamp index flags.
type IndexChecker interface {
	IsIndexed(desc *entry.AttributeDescription) bool
}

// AllowAllACL is an ACLChecker that never refuses; used by tests and by
// deployments where ACL enforcement happens upstream of this core.
type AllowAllACL struct{}

func (AllowAllACL) CheckModify(string, *entry.Entry, entry.ModList) bool { return true }

// DenyAllACL is an ACLChecker that always refuses; used to exercise the
// INSUFFICIENT_ACCESS path in tests.
type DenyAllACL struct{}

func (DenyAllACL) CheckModify(string, *entry.Entry, entry.ModList) bool { return false }

// NoopValidator is a Validator that never rejects; used by tests and by
// deployments whose schema is enforced by something other than this core
// (e.g. a front-end that already validated the request).
type NoopValidator struct{}

func (NoopValidator) Check(*entry.Entry, []*entry.Attribute, bool) error { return nil }
