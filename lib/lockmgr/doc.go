// Package lockmgr implements a simple in-process named lock with owner
// verification and an expiry timeout. It backs entrylock's per-entry write
// lock: the transaction driver acquires one lock per entry ID for the
// duration of a Modify attempt, using the owner ID (a github.com/google/uuid
// value) to tell its own acquisition apart from a concurrent attempt on the
// same entry.
//
// Core Functionality:
//   - Lock acquisition with ownership verification
//   - Automatic expiration through a configurable timeout
//   - Safe release operations that verify ownership
//
// Implementation Approach:
//
//	Each lock name maps to a lockState guarded by its own sync.Mutex, held
//	in an xsync.MapOf the same way the entry cache shards its per-entry-id
//	mutexes (github.com/dirdkv/dird/cache). There is no backing store: this
//	server is single node, so a lock's lifetime is the process's lifetime.
//
//	- Lock Acquisition: under the key's mutex, checks whether the current
//	  holder (if any) has expired, then stamps a freshly generated owner ID
//	  and expiry time.
//
//	- Timeouts: locks can be configured with an optional timeout that
//	  automatically frees the lock after the specified period, preventing
//	  deadlocks if a client crashes mid-transaction. A zero timeout never
//	  expires on its own.
//
//	- Safe Release: ReleaseLock first verifies the caller's owner ID matches
//	  the current holder before clearing the slot.
//
// Thread Safety:
//
//	Each lockState's mutex serializes acquire/release for that key; the
//	xsync.MapOf serializes creation of new keys. Two different keys never
//	contend with each other.
//
// Usage Example:
//
//	lockProvider := lockmgr.NewLockManager()
//
//	acquired, ownerID, err := lockProvider.AcquireLock("resource:123", 30)
//	if err != nil {
//	    // Handle error
//	}
//
//	if acquired {
//	    // Use the resource safely
//	    // ...
//
//	    released, err := lockProvider.ReleaseLock("resource:123", ownerID)
//	    if err != nil {
//	        // Handle error
//	    }
//	}
package lockmgr
