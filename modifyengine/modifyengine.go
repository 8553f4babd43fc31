// Package modifyengine applies an ordered modList to a working Entry clone:
// access control, glue promotion, per-mod apply via valueengine, index-flag
// bookkeeping, schema validation and index emission, all-or-nothing (spec
// section 4.2).
package modifyengine

import (
	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/entry"
	"github.com/dirdkv/dird/schema"
	"github.com/dirdkv/dird/valueengine"
)

// glueObjectClass is the literal normalized value a placeholder subtree node
// carries as its sole objectClass.
const glueObjectClass = "glue"

// Indexer performs the index delete/add passes once a modification's target
// attribute has been identified as indexed. It mirrors index_values: nvals
// is the set of normalized values to remove or add for the entry id.
type Indexer interface {
	IndexValues(desc *entry.AttributeDescription, nvals []string, id uint64, add bool) error
}

// Deps bundles the engine's external collaborators. NoOp requests and
// permissive-modify are per-call options, not dependencies, because they
// vary per operation rather than per deployment.
type Deps struct {
	ACL       schema.ACLChecker
	Validator schema.Validator
	Index     schema.IndexChecker
	Indexer   Indexer
}

// Options carries per-operation flags that do not belong to Deps.
type Options struct {
	Permissive bool
	// NoOp, when true, makes Apply perform the full pipeline (so ACL and
	// schema are exercised) but report a distinguished no-op success
	// instead of committing; the transaction driver uses this to abort
	// the outer transaction without failing the client.
	NoOp bool
	// ManageDIT suppresses glue/referral semantics during schema check,
	// mirrored through to the Validator.
	ManageDIT bool
	Principal string
}

// Result reports the outcome of Apply beyond a plain reply code.
type Result struct {
	Code  direrr.ReplyCode
	NoOp  bool
	Error error
}

// Apply mutates working in place per modList and runs schema/index
// bookkeeping. On any failure it restores working to its pre-call state
// (byte-for-byte, per the invariant) and returns the failing code.
func Apply(working *entry.Entry, modList entry.ModList, deps Deps, opt Options) Result {
	if !deps.ACL.CheckModify(opt.Principal, working, modList) {
		return Result{Code: direrr.InsufficientAccess}
	}

	savedAttrs := cloneAttrs(working.Attrs)

	glueDelete := detectGlueDelete(modList)
	if glueDelete {
		working.StripNonOperational()
	}

	veOpt := valueengine.Options{Permissive: opt.Permissive}
	for _, mod := range modList {
		if glueDelete && mod.Op == entry.Delete {
			// Deletes after the glue cut target attributes that no
			// longer exist; the original treats them as no-ops
			// rather than NO_SUCH_ATTRIBUTE errors.
			continue
		}

		code := valueengine.Apply(working, mod, veOpt)
		if code != direrr.Success {
			restore(working, savedAttrs)
			return Result{Code: code}
		}

		if mod.Desc.Equal(entry.ObjectClass) || mod.Desc.Equal(entry.StructuralObjectClass) {
			working.OCFlags = 0
		}

		if deps.Index.IsIndexed(mod.Desc) {
			if pre := findAttr(savedAttrs, mod.Desc); pre != nil {
				pre.SetIndexFlag(entry.IndexDel)
			}
			if post := working.Find(mod.Desc); post != nil {
				post.SetIndexFlag(entry.IndexAdd)
			}
		}
	}

	if err := deps.Validator.Check(working, savedAttrs, opt.ManageDIT); err != nil {
		restore(working, savedAttrs)
		clearIndexFlags(working)
		return Result{Code: direrr.SchemaViolation, Error: err}
	}

	if opt.NoOp {
		restore(working, savedAttrs)
		clearIndexFlags(working)
		return Result{Code: direrr.Success, NoOp: true}
	}

	for _, pre := range savedAttrs {
		if pre.IndexFlags()&entry.IndexDel == 0 {
			continue
		}
		if err := deps.Indexer.IndexValues(pre.Desc, pre.NValues, working.ID, false); err != nil {
			restore(working, savedAttrs)
			return Result{Code: direrr.Other, Error: err}
		}
	}
	for _, post := range working.Attrs {
		if post.IndexFlags()&entry.IndexAdd == 0 {
			continue
		}
		if err := deps.Indexer.IndexValues(post.Desc, post.NValues, working.ID, true); err != nil {
			restore(working, savedAttrs)
			return Result{Code: direrr.Other, Error: err}
		}
	}

	return Result{Code: direrr.Success}
}

// detectGlueDelete scans modList for an ADD or REPLACE of
// structuralObjectClass whose first value is anything other than the
// literal "glue". A mod that sets it TO "glue" does not stop the scan —
// only a non-glue match does.
func detectGlueDelete(modList entry.ModList) bool {
	for _, mod := range modList {
		if !mod.Desc.Equal(entry.StructuralObjectClass) {
			continue
		}
		if mod.Op != entry.Add && mod.Op != entry.Replace {
			continue
		}
		if len(mod.NValues) == 0 {
			return false
		}
		if mod.NValues[0] != glueObjectClass {
			return true
		}
	}
	return false
}

func cloneAttrs(attrs []*entry.Attribute) []*entry.Attribute {
	out := make([]*entry.Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = a.Clone()
	}
	return out
}

func findAttr(attrs []*entry.Attribute, desc *entry.AttributeDescription) *entry.Attribute {
	for _, a := range attrs {
		if a.Desc.Equal(desc) {
			return a
		}
	}
	return nil
}

// restore swaps working's attribute list back to savedAttrs, a pointer
// assignment since savedAttrs already holds independent clones.
func restore(working *entry.Entry, savedAttrs []*entry.Attribute) {
	working.Attrs = savedAttrs
}

func clearIndexFlags(working *entry.Entry) {
	for _, a := range working.Attrs {
		a.ClearIndexFlag()
	}
}
