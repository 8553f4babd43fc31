// Package index implements the secondary value index consumed by the
// modify engine (spec section 4.2, item 9): one ordered set of (value, id)
// pairs per indexed attribute, supporting add/delete by normalized value.
// It answers only exact-match lookups needed during Modify; it is not a
// search/filter planner (an explicit non-goal).
package index

import (
	"sync"

	"github.com/google/btree"

	"github.com/dirdkv/dird/entry"
)

// entryRef is a single (normalized value, entry id) pair stored in a tree.
// btree.Item orders by Less; ties are broken by id so that distinct entries
// sharing a value both get a slot.
type entryRef struct {
	nvalue string
	id     uint64
}

func (a entryRef) Less(other btree.Item) bool {
	b := other.(entryRef)
	if a.nvalue != b.nvalue {
		return a.nvalue < b.nvalue
	}
	return a.id < b.id
}

// Index maintains one B-tree per indexed attribute description, keyed by
// normalized value. It implements both schema.IndexChecker and
// modifyengine.Indexer.
type Index struct {
	mu      sync.Mutex
	indexed map[string]bool
	trees   map[string]*btree.BTree
}

// NewIndex builds an Index that treats every descriptor whose Name appears
// in indexedNames (case-sensitive, matching the schema registry's resolved
// form) as indexed. The attribute registry decides what's indexed in a real
// deployment; here it's a fixed set supplied at construction.
func NewIndex(indexedNames ...string) *Index {
	indexed := make(map[string]bool, len(indexedNames))
	trees := make(map[string]*btree.BTree, len(indexedNames))
	for _, name := range indexedNames {
		indexed[name] = true
		trees[name] = btree.New(32)
	}
	return &Index{indexed: indexed, trees: trees}
}

// IsIndexed implements schema.IndexChecker.
func (idx *Index) IsIndexed(desc *entry.AttributeDescription) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.indexed[desc.Name]
}

// IndexValues implements modifyengine.Indexer: add inserts (nval, id) pairs,
// !add removes them. Unindexed attributes are silently ignored so callers
// don't need to double-check IsIndexed before calling.
func (idx *Index) IndexValues(desc *entry.AttributeDescription, nvals []string, id uint64, add bool) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	tree := idx.trees[desc.Name]
	if tree == nil {
		return nil
	}
	for _, nv := range nvals {
		ref := entryRef{nvalue: nv, id: id}
		if add {
			tree.ReplaceOrInsert(ref)
		} else {
			tree.Delete(ref)
		}
	}
	return nil
}

// Lookup returns every entry id indexed under desc/nvalue, in ascending id
// order. Used by tests and by the invariant check in spec section 8's
// property 3 (post-apply index contents match the post-image exactly).
func (idx *Index) Lookup(desc *entry.AttributeDescription, nvalue string) []uint64 {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	tree := idx.trees[desc.Name]
	if tree == nil {
		return nil
	}
	var ids []uint64
	tree.AscendRange(entryRef{nvalue: nvalue, id: 0}, entryRef{nvalue: nvalue + "\x00"},
		func(item btree.Item) bool {
			ids = append(ids, item.(entryRef).id)
			return true
		})
	return ids
}
