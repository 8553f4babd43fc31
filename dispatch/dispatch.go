// Package dispatch is the front door described in section 4.5: it parses
// a decoded request into (name, modList), validates opcodes, normalizes
// the name, picks a backend by longest-suffix match, applies the
// referral/replica rules, and on success appends a replication log entry.
package dispatch

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"

	"github.com/dirdkv/dird/backend"
	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/entry"
	"github.com/dirdkv/dird/replog"
)

var log = logger.GetLogger("dispatch")

// Request is the already-decoded client request; parsing the wire frame
// itself is out of scope here (that happens in rpc/serializer).
type Request struct {
	Name        string
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

// Reply is what the dispatcher hands back to the RPC layer.
type Reply struct {
	Code      direrr.ReplyCode
	Text      string
	Referrals []string
	PreImage  *entry.Entry
	PostImage *entry.Entry
}

// DefaultReferral is returned whenever no backend owns a name and no
// backend-specific referral applies.
var DefaultReferral = []string{}

// Registry resolves a normalized name to the Backend that owns it, by
// longest matching suffix.
type Registry struct {
	suffixes []string
	backends map[string]backend.Backend
}

// NewRegistry builds an empty registry; register backends with Add.
func NewRegistry() *Registry {
	return &Registry{backends: map[string]backend.Backend{}}
}

// Add registers be as the owner of everything under suffix (normalized
// the same way incoming names are).
func (r *Registry) Add(suffix string, be backend.Backend) {
	n := normalize(suffix)
	if _, exists := r.backends[n]; !exists {
		r.suffixes = append(r.suffixes, n)
	}
	r.backends[n] = be
}

// Lookup returns the backend owning the longest suffix of ndn, or nil if
// none does.
func (r *Registry) Lookup(ndn string) backend.Backend {
	best := ""
	var bestBackend backend.Backend
	for _, suffix := range r.suffixes {
		if !strings.HasSuffix(ndn, suffix) {
			continue
		}
		if len(suffix) > len(best) {
			best = suffix
			bestBackend = r.backends[suffix]
		}
	}
	return bestBackend
}

func normalize(name string) string {
	parts := strings.Split(name, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, ",")
}

// Dispatcher wires a backend Registry to a replication log sink.
type Dispatcher struct {
	Registry *Registry
	Replog   replog.Sink
}

// NewDispatcher builds a Dispatcher over reg, logging successful
// modifications to sink.
func NewDispatcher(reg *Registry, sink replog.Sink) *Dispatcher {
	return &Dispatcher{Registry: reg, Replog: sink}
}

// Modify implements the single exposed operation: modify(decodedRequest)
// -> replyStatus.
func (d *Dispatcher) Modify(req *Request) *Reply {
	opID := uuid.New()

	if err := validate(req.ModList); err != nil {
		log.Warningf("dispatch[%s]: malformed modlist: %v", opID, err)
		return &Reply{Code: direrr.ProtocolError, Text: err.Error()}
	}

	ndn := normalize(req.Name)

	be := d.Registry.Lookup(ndn)
	if be == nil {
		log.Infof("dispatch[%s]: no backend for %q, returning default referral", opID, ndn)
		return &Reply{Code: direrr.PartialResults, Referrals: DefaultReferral}
	}

	if be.UpdateNDN() != "" && be.UpdateNDN() != req.Principal {
		log.Infof("dispatch[%s]: replica update-name mismatch for %q", opID, ndn)
		return &Reply{Code: direrr.PartialResults, Referrals: DefaultReferral}
	}

	beReq := &backend.Request{
		Name:        req.Name,
		NDN:         ndn,
		ModList:     req.ModList,
		Principal:   req.Principal,
		Permissive:  req.Permissive,
		NoOp:        req.NoOp,
		ManageDSAit: req.ManageDSAit,
		Assertion:   req.Assertion,
		PreRead:     req.PreRead,
		PostRead:    req.PostRead,
		Abandon:     req.Abandon,
	}

	beReply := be.Modify(beReq)

	reply := &Reply{
		Code:      beReply.Code,
		Text:      beReply.Text,
		Referrals: beReply.Referrals,
		PreImage:  beReply.PreImage,
		PostImage: beReply.PostImage,
	}

	if reply.Code == direrr.Success && d.Replog != nil {
		if err := d.Replog.Append(replog.Entry{
			OpID:    opID.String(),
			Op:      "MODIFY",
			Name:    ndn,
			ModList: replog.FromModList(req.ModList),
		}); err != nil {
			log.Errorf("dispatch[%s]: replog append failed: %v", opID, err)
		}
	}

	return reply
}

func validate(modList entry.ModList) error {
	for _, mod := range modList {
		switch mod.Op {
		case entry.Add, entry.Delete, entry.Replace:
			// permitted from the wire
		default:
			return direrr.New(direrr.ProtocolError, "modification opcode not permitted from a client")
		}
		if len(mod.Values) == 0 && mod.Op != entry.Delete {
			return direrr.New(direrr.ProtocolError, "empty value list on a non-delete modification")
		}
	}
	return nil
}
