// Package storage implements the primary entry store and the nested
// transaction model the transaction driver drives (spec sections 4.3, 6):
// txn begin/commit/abort, dn2entry lookup, id2entry update, and a
// best-effort checkpoint hook. It is backed by github.com/cockroachdb/pebble.
//
// Deadlock detection is not something pebble provides (it has no lock
// manager of its own); the transaction driver gets DEADLOCK/NOT_GRANTED
// signals from entrylock instead, which guards entry-level write access
// before any storage transaction touches the key space. Storage itself
// only ever reports NOT_FOUND or a generic storage failure.
package storage

import (
	"bytes"
	"encoding/gob"
	"errors"

	"github.com/cockroachdb/pebble"

	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/entry"
)

const (
	dnPrefix = "dn:"
	idPrefix = "id:"
)

// Store is the pebble-backed primary entry store.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a pebble store at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	return &Store{db: db}, nil
}

// Close releases the underlying pebble database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutEntry seeds or overwrites an entry directly, bypassing the
// transaction model. Used to provision fixtures and by backends that
// create new entries outside of Modify's scope.
func (s *Store) PutEntry(e *entry.Entry) error {
	payload, err := encodeEntry(e)
	if err != nil {
		return direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(idKey(e.ID), payload, nil); err != nil {
		return direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	if err := batch.Set(dnKey(e.NDN), idBytes(e.ID), nil); err != nil {
		return direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	return nil
}

// Txn is the outer transaction opened once per Modify attempt.
type Txn struct {
	store *Store
	batch *pebble.Batch
}

// BeginOuter opens a top-level transaction (spec's OPEN_OUTER).
func (s *Store) BeginOuter() (*Txn, error) {
	return &Txn{store: s, batch: s.db.NewIndexedBatch()}, nil
}

// Dn2Entry resolves ndn to its entry, reading through any writes already
// staged in this outer transaction. NOT_FOUND is reported via StorageCode
// so the driver can distinguish it from other storage failures (and, for
// an empty ndn, synthesize a fakeroot instead of failing).
func (t *Txn) Dn2Entry(ndn string) (*entry.Entry, error) {
	idBuf, closer, err := t.batch.Get(dnKey(ndn))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, direrr.NewStorageError(direrr.StorageNotFound, "no such entry: "+ndn)
		}
		return nil, direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	id := decodeID(idBuf)
	closer.Close()

	payload, closer2, err := t.batch.Get(idKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, direrr.NewStorageError(direrr.StorageNotFound, "dangling dn mapping for: "+ndn)
		}
		return nil, direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	defer closer2.Close()

	e, err := decodeEntry(payload)
	if err != nil {
		return nil, direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	return e, nil
}

// Commit commits the outer transaction (spec's COMMIT_OUTER).
func (t *Txn) Commit() error {
	if err := t.batch.Commit(pebble.Sync); err != nil {
		return direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	return nil
}

// Abort discards the outer transaction; abort errors are never surfaced
// per the retry policy (spec section 4.3), so callers may ignore the
// returned error.
func (t *Txn) Abort() error {
	return t.batch.Close()
}

// Nested is a nested transaction within an outer one (spec's OPEN_NESTED).
// Writes accumulate in their own batch and only become visible to the
// outer transaction (and hence to later Dn2Entry calls within it) once
// Commit folds them in.
type Nested struct {
	outer *Txn
	batch *pebble.Batch
}

// BeginNested opens a nested transaction within t.
func (t *Txn) BeginNested() (*Nested, error) {
	return &Nested{outer: t, batch: t.store.db.NewIndexedBatch()}, nil
}

// Id2EntryUpdate writes the modified entry back (spec's PERSIST), staged
// in this nested transaction.
func (n *Nested) Id2EntryUpdate(e *entry.Entry) error {
	payload, err := encodeEntry(e)
	if err != nil {
		return direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	if err := n.batch.Set(idKey(e.ID), payload, nil); err != nil {
		return direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	if err := n.batch.Set(dnKey(e.NDN), idBytes(e.ID), nil); err != nil {
		return direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	return nil
}

// Commit folds the nested transaction's writes into the outer transaction
// (spec's COMMIT_NESTED). The writes are not durable until the outer
// transaction itself commits.
func (n *Nested) Commit() error {
	if err := n.outer.batch.Apply(n.batch, nil); err != nil {
		return direrr.NewStorageError(direrr.StorageOther, err.Error())
	}
	return n.batch.Close()
}

// Abort discards the nested transaction's staged writes without touching
// the outer transaction.
func (n *Nested) Abort() error {
	return n.batch.Close()
}

// Checkpoint is the best-effort post-commit hook (spec's CHECKPOINT):
// it flushes pebble's in-memory memtable to stable storage. Its failure
// must never affect the reply already sent to the client.
func (s *Store) Checkpoint() error {
	return s.db.Flush()
}

func dnKey(ndn string) []byte { return append([]byte(dnPrefix), []byte(ndn)...) }

func idKey(id uint64) []byte { return append([]byte(idPrefix), idBytes(id)...) }

func idBytes(id uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[7-i] = byte(id >> (8 * i))
	}
	return b
}

func decodeID(b []byte) uint64 {
	var id uint64
	for _, by := range b {
		id = id<<8 | uint64(by)
	}
	return id
}

// storedAttr/storedEntry are the on-disk wire form. AttributeDescription
// carries a matching-rule function pointer that gob cannot encode, and the
// stored form only ever needs the attribute name to round-trip: every
// Find/Matches call during Modify supplies its own schema-resolved
// descriptor from the modList, never the one attached to a stored value.
type storedAttr struct {
	Name    string
	Values  []string
	NValues []string
}

type storedEntry struct {
	ID      uint64
	DN      string
	NDN     string
	OCFlags uint64
	Attrs   []storedAttr
}

func encodeEntry(e *entry.Entry) ([]byte, error) {
	se := storedEntry{ID: e.ID, DN: e.DN, NDN: e.NDN, OCFlags: uint64(e.OCFlags), Attrs: make([]storedAttr, len(e.Attrs))}
	for i, a := range e.Attrs {
		se.Attrs[i] = storedAttr{Name: a.Desc.Name, Values: a.Values, NValues: a.NValues}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(se); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeEntry(payload []byte) (*entry.Entry, error) {
	var se storedEntry
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&se); err != nil {
		return nil, err
	}
	e := &entry.Entry{ID: se.ID, DN: se.DN, NDN: se.NDN, OCFlags: entry.OCFlags(se.OCFlags), Attrs: make([]*entry.Attribute, len(se.Attrs))}
	for i, sa := range se.Attrs {
		e.Attrs[i] = &entry.Attribute{
			Desc:    &entry.AttributeDescription{Name: sa.Name},
			Values:  sa.Values,
			NValues: sa.NValues,
		}
	}
	return e, nil
}
