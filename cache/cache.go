// Package cache implements the in-memory entry cache consumed by the
// transaction driver (spec sections 3, 5, 6): a single-writer-many-reader
// lock per entry id, holding the authoritative in-memory attribute set
// between storage reads.
package cache

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/dirdkv/dird/entry"
)

type cacheEntry struct {
	mu    sync.RWMutex
	value *entry.Entry
}

// Cache maps entry id to its cached value, sharded internally by xsync.
type Cache struct {
	entries *xsync.MapOf[uint64, *cacheEntry]
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: xsync.NewMapOf[uint64, *cacheEntry]()}
}

func (c *Cache) getOrCreate(id uint64) *cacheEntry {
	ce, _ := c.entries.LoadOrCompute(id, func() *cacheEntry { return &cacheEntry{} })
	return ce
}

// Load returns a shallow clone of the cached entry for reading (pre-read
// materialization, diagnostics) without holding any lock beyond the call.
// The second return is false if nothing is cached for id yet.
func (c *Cache) Load(id uint64) (*entry.Entry, bool) {
	ce, ok := c.entries.Load(id)
	if !ok {
		return nil, false
	}
	ce.mu.RLock()
	defer ce.mu.RUnlock()
	if ce.value == nil {
		return nil, false
	}
	return ce.value.Clone(), true
}

// Lock is a held write lock on one entry id, acquired via Cache.Lock. The
// caller must release it exactly once, with Commit on success or Release
// on abort or retry.
type Lock struct {
	ce   *cacheEntry
	done bool
}

// Lock acquires the write lock for id and returns it alongside a clone of
// the value to operate on: the cached entry if one is already resident,
// otherwise base (the first read after a storage lookup). The lock is held
// until the caller calls Commit or Release on the returned *Lock, spanning
// however many driver states the caller needs — LOOKUP through COMMIT_OUTER
// on the success path, LOOKUP through the abort on RETRY — matching the
// spec's "read under write-lock, commit or abort while still holding it"
// entry lifecycle (sections 3, 4.3).
func (c *Cache) Lock(id uint64, base *entry.Entry) (*entry.Entry, *Lock) {
	ce := c.getOrCreate(id)
	ce.mu.Lock()

	current := ce.value
	if current == nil {
		current = base
	}
	return current.Clone(), &Lock{ce: ce}
}

// Commit makes final the new cached value and releases the lock.
func (l *Lock) Commit(final *entry.Entry) {
	if l.done {
		return
	}
	l.done = true
	l.ce.value = final
	l.ce.mu.Unlock()
}

// Release unlocks without touching the cached value; used when the attempt
// never reached a committable state (abort or retry).
func (l *Lock) Release() {
	if l.done {
		return
	}
	l.done = true
	l.ce.mu.Unlock()
}

// Modify is a convenience wrapper over Lock for callers that mutate and
// decide commit-or-abort within a single synchronous call.
func (c *Cache) Modify(id uint64, base *entry.Entry, fn func(working *entry.Entry) (commit bool, err error)) error {
	working, lock := c.Lock(id, base)

	commit, err := fn(working)
	if err != nil {
		lock.Release()
		return err
	}
	if commit {
		lock.Commit(working)
	} else {
		lock.Release()
	}
	return nil
}

// Evict drops id from the cache entirely; used when an entry is deleted
// out from under the cache by another backend operation.
func (c *Cache) Evict(id uint64) {
	c.entries.Delete(id)
}
