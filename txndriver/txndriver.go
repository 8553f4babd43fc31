// Package txndriver implements the transaction driver (spec section 4.3):
// the retrying state machine that opens an outer transaction, locates and
// write-locks the target entry, opens a nested transaction, invokes the
// modify engine, persists the result, and commits — restarting from a
// clean state on DEADLOCK/NOT_GRANTED.
package txndriver

import (
	"runtime"
	"time"

	"github.com/lni/dragonboat/v4/logger"

	"github.com/dirdkv/dird/cache"
	"github.com/dirdkv/dird/clock"
	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/entry"
	"github.com/dirdkv/dird/entrylock"
	"github.com/dirdkv/dird/modifyengine"
	"github.com/dirdkv/dird/schema"
	"github.com/dirdkv/dird/stamper"
	"github.com/dirdkv/dird/storage"
)

var log = logger.GetLogger("txndriver")

// referralDesc names the attribute that, when present, marks an entry as a
// referral rather than a real local entry.
var referralDesc = &entry.AttributeDescription{Name: "ref"}

// state names the driver's state machine positions.
type state int

const (
	statePrepare state = iota
	stateOpenOuter
	stateLookup
	stateOpenNested
	stateApply
	statePersist
	stateCommitNested
	stateCommitOuter
	stateRetry
	stateDone
)

// Operation carries everything the driver needs for one Modify attempt,
// already decided by dispatch: the target name, the (stamped or
// unstamped) modList, and the controls the spec's supplemental features
// section adds on top of the core pipeline.
type Operation struct {
	Name string // presentation DN, used only for replies/logging
	NDN  string // normalized DN, used for lookup

	ModList    entry.ModList
	Principal  string
	Permissive bool
	NoOp       bool

	ManageDSAit bool
	Assertion   func(*entry.Entry) bool
	PreRead     bool
	PostRead    bool

	// Abandon, when non-nil, is polled at each retry boundary; if it
	// reports true the driver exits with ABANDONED without further
	// storage I/O (spec section 5).
	Abandon func() bool
}

// Reply is the driver's outcome.
type Reply struct {
	Code      direrr.ReplyCode
	Text      string
	Referrals []string
	PreImage  *entry.Entry
	PostImage *entry.Entry
	Retries   int
}

// CheckpointPolicy gates the best-effort post-commit checkpoint call.
type CheckpointPolicy struct {
	Enabled bool
	KBytes  uint64
	Minutes uint64
}

// Config holds deployment-level settings, as opposed to Deps (collaborator
// wiring) and Operation (per-call flags).
type Config struct {
	Authoritative  bool
	LastModEnabled bool
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffCap     time.Duration
	Checkpoint     CheckpointPolicy
}

// Deps bundles every external collaborator the driver composes.
type Deps struct {
	Store     *storage.Store
	Locks     *entrylock.Manager
	Cache     *cache.Cache
	ACL       schema.ACLChecker
	Validator schema.Validator
	Index     schema.IndexChecker
	Indexer   modifyengine.Indexer
	Clock     clock.Clock
}

// Driver runs Operations through the state machine.
type Driver struct {
	deps Deps
	cfg  Config
}

// NewDriver builds a Driver over the given collaborators and policy.
func NewDriver(deps Deps, cfg Config) *Driver {
	return &Driver{deps: deps, cfg: cfg}
}

// Modify runs op through the full pipeline, retrying transient storage
// failures with backoff, and returns the final reply.
func (d *Driver) Modify(op *Operation) *Reply {
	modList := stamper.Stamp(op.ModList, stamper.Options{
		Authoritative:  d.cfg.Authoritative,
		LastModEnabled: d.cfg.LastModEnabled,
		BindName:       op.Principal,
	}, d.deps.Clock)

	attempt := &attemptState{op: op, modList: modList}

	st := statePrepare
	for st != stateDone {
		var next state
		var reply *Reply
		next, reply = d.step(st, attempt)
		if reply != nil {
			return reply
		}
		st = next
	}
	return &Reply{Code: direrr.Other, Text: "internal error: state machine exited without a reply"}
}

// attemptState carries the mutable state threaded through one Modify call,
// surviving across RETRY re-entries into OPEN_OUTER (numRetries persists,
// everything transaction-scoped is reset).
type attemptState struct {
	op      *Operation
	modList entry.ModList

	outer      *storage.Txn
	nested     *storage.Nested
	lock       *entrylock.Lock
	cacheLock  *cache.Lock
	base       *entry.Entry
	working    *entry.Entry
	fakeroot   bool
	preImage   *entry.Entry
	postImage  *entry.Entry
	result     modifyengine.Result
	numRetries int
}

func (d *Driver) step(st state, a *attemptState) (state, *Reply) {
	switch st {
	case statePrepare:
		return stateOpenOuter, nil

	case stateOpenOuter:
		txn, err := d.deps.Store.BeginOuter()
		if err != nil {
			log.Errorf("open outer txn: %v", err)
			return stateDone, internalError(err)
		}
		a.outer = txn
		return stateLookup, nil

	case stateLookup:
		return d.lookup(a)

	case stateOpenNested:
		nested, err := a.outer.BeginNested()
		if err != nil {
			d.abortAndRelease(a)
			return stateDone, internalError(err)
		}
		a.nested = nested
		return stateApply, nil

	case stateApply:
		return d.apply(a)

	case statePersist:
		return d.persist(a)

	case stateCommitNested:
		if err := a.nested.Commit(); err != nil {
			d.abortAndRelease(a)
			return stateDone, internalError(err)
		}
		if a.op.PostRead && !a.result.NoOp {
			a.postImage = a.working.Clone()
		}
		return stateCommitOuter, nil

	case stateCommitOuter:
		return d.commitOuter(a)

	case stateRetry:
		return d.retry(a)
	}
	return stateDone, internalError(direrr.NewStorageError(direrr.StorageOther, "unreachable state"))
}

func (d *Driver) lookup(a *attemptState) (state, *Reply) {
	e, err := a.outer.Dn2Entry(a.op.NDN)
	if err != nil {
		se, ok := err.(*direrr.StorageError)
		if ok && se.Code == direrr.StorageNotFound && a.op.NDN == "" {
			e = synthesizeFakeroot(a.op.Name)
			a.fakeroot = true
		} else if direrr.IsTransient(err) {
			return stateRetry, nil
		} else if ok && se.Code == direrr.StorageNotFound {
			a.outer.Abort()
			return stateDone, &Reply{Code: direrr.NoSuchObject}
		} else {
			a.outer.Abort()
			return stateDone, internalError(err)
		}
	}
	lock, lerr := d.deps.Locks.Acquire(e.ID)
	if lerr != nil {
		if direrr.IsTransient(lerr) {
			a.outer.Abort()
			return stateRetry, nil
		}
		a.outer.Abort()
		return stateDone, internalError(lerr)
	}
	a.lock = lock

	// Hold the cache's own write lock for the entry from here through
	// COMMIT_OUTER (or the abort on RETRY); e was read before the entry lock
	// was taken, so a cache hit, which is only updated under this lock,
	// supersedes it and reflects the last committed write (spec sections 3, 4.3).
	cached, cacheLock := d.deps.Cache.Lock(e.ID, e)
	a.cacheLock = cacheLock
	e = cached
	a.base = e

	if isUnresolvedReferralOrGlue(e) && !a.op.ManageDSAit {
		d.abortAndRelease(a)
		return stateDone, &Reply{Code: direrr.Referral, Referrals: referralsOf(e)}
	}

	if a.op.Assertion != nil && !a.op.Assertion(e) {
		d.abortAndRelease(a)
		return stateDone, &Reply{Code: direrr.AssertionFailed}
	}

	if a.op.PreRead {
		a.preImage = e.Clone()
	}

	return stateOpenNested, nil
}

func (d *Driver) apply(a *attemptState) (state, *Reply) {
	working := a.base.Clone()
	res := modifyengine.Apply(working, a.modList, modifyengine.Deps{
		ACL:       d.deps.ACL,
		Validator: d.deps.Validator,
		Index:     d.deps.Index,
		Indexer:   d.deps.Indexer,
	}, modifyengine.Options{
		Permissive: a.op.Permissive,
		NoOp:       a.op.NoOp,
		ManageDIT:  a.op.ManageDSAit,
		Principal:  a.op.Principal,
	})
	a.result = res
	a.working = working

	if res.Code != direrr.Success {
		if direrr.IsTransient(res.Error) {
			a.nested.Abort()
			d.abortAndRelease(a)
			return stateRetry, nil
		}
		a.nested.Abort()
		d.abortAndRelease(a)
		return stateDone, &Reply{Code: res.Code}
	}

	return statePersist, nil
}

func (d *Driver) persist(a *attemptState) (state, *Reply) {
	if a.result.NoOp {
		return stateCommitNested, nil
	}
	if err := a.nested.Id2EntryUpdate(a.working); err != nil {
		if direrr.IsTransient(err) {
			a.nested.Abort()
			d.abortAndRelease(a)
			return stateRetry, nil
		}
		a.nested.Abort()
		d.abortAndRelease(a)
		return stateDone, internalError(err)
	}
	return stateCommitNested, nil
}

func (d *Driver) commitOuter(a *attemptState) (state, *Reply) {
	if a.result.NoOp {
		a.outer.Abort()
		a.cacheLock.Release()
		d.deps.Locks.Release(a.lock)
		return stateDone, &Reply{Code: direrr.NoOperation, Retries: a.numRetries}
	}

	if err := a.outer.Commit(); err != nil {
		a.cacheLock.Release()
		d.deps.Locks.Release(a.lock)
		return stateDone, internalError(err)
	}

	// The entry is now durably committed; make it the new cached value
	// before releasing the cache lock, so the next reader to take this
	// lock sees exactly what was just persisted.
	a.cacheLock.Commit(a.working)

	d.deps.Locks.Release(a.lock)
	d.maybeCheckpoint()

	return stateDone, &Reply{
		Code:      direrr.Success,
		PreImage:  a.preImage,
		PostImage: a.postImage,
		Retries:   a.numRetries,
	}
}

func (d *Driver) retry(a *attemptState) (state, *Reply) {
	a.nested = nil

	maxRetries := d.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 10
	}
	a.numRetries++
	if a.numRetries > maxRetries {
		log.Errorf("%s: exceeded max retries (%d)", a.op.NDN, maxRetries)
		return stateDone, &Reply{Code: direrr.Other, Text: "internal error", Retries: a.numRetries}
	}

	if a.op.Abandon != nil && a.op.Abandon() {
		return stateDone, &Reply{Code: direrr.Abandoned, Retries: a.numRetries}
	}

	runtime.Gosched()
	time.Sleep(backoff(a.numRetries, d.cfg.BackoffBase, d.cfg.BackoffCap))

	if a.op.Abandon != nil && a.op.Abandon() {
		return stateDone, &Reply{Code: direrr.Abandoned, Retries: a.numRetries}
	}

	return stateOpenOuter, nil
}

// abortAndRelease aborts the outer transaction (ignoring its error, per
// the retry policy) and releases the entry write lock and cache lock if
// held, leaving the cache untouched (the RETRY and abort paths never reach
// a committable state).
func (d *Driver) abortAndRelease(a *attemptState) {
	if a.outer != nil {
		_ = a.outer.Abort()
	}
	if a.cacheLock != nil {
		a.cacheLock.Release()
		a.cacheLock = nil
	}
	if a.lock != nil {
		if err := d.deps.Locks.Release(a.lock); err != nil {
			log.Warningf("release lock for %s: %v", a.op.NDN, err)
		}
		a.lock = nil
	}
}

func (d *Driver) maybeCheckpoint() {
	if !d.cfg.Checkpoint.Enabled {
		return
	}
	runtime.Gosched()
	if err := d.deps.Store.Checkpoint(); err != nil {
		log.Warningf("checkpoint: %v", err)
	}
}

// backoff returns an increasing, capped delay for the n'th retry.
func backoff(n int, base, ceiling time.Duration) time.Duration {
	if base <= 0 {
		base = 10 * time.Millisecond
	}
	if ceiling <= 0 {
		ceiling = time.Second
	}
	d := base
	for i := 1; i < n; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	if d > ceiling {
		d = ceiling
	}
	return d
}

func internalError(err error) *Reply {
	return &Reply{Code: direrr.Other, Text: "internal error: " + err.Error()}
}

// synthesizeFakeroot builds an in-memory glue root entry when dn2entry
// reports NOT_FOUND for an empty (root) name, rather than failing the
// operation outright.
func synthesizeFakeroot(name string) *entry.Entry {
	return &entry.Entry{
		DN:  name,
		NDN: "",
		Attrs: []*entry.Attribute{
			{Desc: entry.ObjectClass, Values: []string{"glue"}, NValues: []string{"glue"}},
		},
	}
}

// isUnresolvedReferralOrGlue reports whether e is a referral, or is still
// an unpromoted glue placeholder, either of which requires manageDSAit to
// bypass.
func isUnresolvedReferralOrGlue(e *entry.Entry) bool {
	if e.Find(referralDesc) != nil {
		return true
	}
	return e.HasObjectClass("glue")
}

func referralsOf(e *entry.Entry) []string {
	ref := e.Find(referralDesc)
	if ref == nil {
		return nil
	}
	return append([]string(nil), ref.Values...)
}
