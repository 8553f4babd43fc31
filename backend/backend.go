// Package backend implements the Backend contract dispatch invokes (spec
// section 6): be.modify(op, reply) plus the update_ndn and lastmod
// accessors; dispatch consults UpdateNDN before calling it.
package backend

import (
	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/entry"
	"github.com/dirdkv/dird/txndriver"
)

// Request is the decoded, dispatch-validated Modify request handed to a
// Backend.
type Request struct {
	Name        string
	NDN         string
	ModList     entry.ModList
	Principal   string
	Permissive  bool
	NoOp        bool
	ManageDSAit bool
	Assertion   func(*entry.Entry) bool
	PreRead     bool
	PostRead    bool
	Abandon     func() bool
}

// Reply mirrors txndriver.Reply; kept distinct so backend implementations
// that don't use txndriver (the shell backend) aren't forced to depend on
// it.
type Reply struct {
	Code      direrr.ReplyCode
	Text      string
	Referrals []string
	PreImage  *entry.Entry
	PostImage *entry.Entry
}

// Backend is the contract dispatch invokes once it has selected a suffix
// owner. UpdateNDN and LastMod mirror be_update_ndn/be_lastmod from the
// consumed interface: UpdateNDN is the replication principal this backend
// accepts writes from when it is a read-only replica (empty means "not a
// replica"); LastMod gates operational-attribute stamping per backend.
type Backend interface {
	Modify(req *Request) *Reply
	UpdateNDN() string
	LastMod() bool
}

// Primary is the pebble/txndriver-backed Backend, the only one with a
// persistent store behind it.
type Primary struct {
	driver    *txndriver.Driver
	updateNDN string
	lastMod   bool
}

// NewPrimary wraps driver as a Backend. updateNDN is the replication
// principal accepted when this backend is configured read-only; pass ""
// for a normal read-write backend.
func NewPrimary(driver *txndriver.Driver, updateNDN string, lastMod bool) *Primary {
	return &Primary{driver: driver, updateNDN: updateNDN, lastMod: lastMod}
}

func (p *Primary) UpdateNDN() string { return p.updateNDN }
func (p *Primary) LastMod() bool     { return p.lastMod }

func (p *Primary) Modify(req *Request) *Reply {
	result := p.driver.Modify(&txndriver.Operation{
		Name:        req.Name,
		NDN:         req.NDN,
		ModList:     req.ModList,
		Principal:   req.Principal,
		Permissive:  req.Permissive,
		NoOp:        req.NoOp,
		ManageDSAit: req.ManageDSAit,
		Assertion:   req.Assertion,
		PreRead:     req.PreRead,
		PostRead:    req.PostRead,
		Abandon:     req.Abandon,
	})
	return &Reply{
		Code:      result.Code,
		Text:      result.Text,
		Referrals: result.Referrals,
		PreImage:  result.PreImage,
		PostImage: result.PostImage,
	}
}
