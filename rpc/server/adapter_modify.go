package server

import (
	"fmt"

	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/dispatch"
	"github.com/dirdkv/dird/entry"
	"github.com/dirdkv/dird/rpc/common"
)

// NewModifyServerAdapter returns an IRPCServerAdapter that translates
// Modify requests to dispatch.Dispatcher.Modify calls.
func NewModifyServerAdapter() IRPCServerAdapter {
	return &modifyServerAdapterImpl{}
}

type modifyServerAdapterImpl struct{}

func (adapter *modifyServerAdapterImpl) Handle(req *common.Message, d *dispatch.Dispatcher) *common.Message {
	if d == nil {
		return common.NewErrorResponse("handler: dispatcher is nil")
	}

	switch req.MsgType {
	case common.MsgTModify:
		for _, m := range req.ModList {
			if _, ok := parseOp(m.Op); !ok {
				return common.NewModifyResponse(uint32(direrr.ProtocolError),
					"modification opcode not permitted from a client", nil, nil, nil)
			}
		}
		reply := d.Modify(&dispatch.Request{
			Name:        req.Name,
			ModList:     toModList(req.ModList),
			Principal:   req.Principal,
			Permissive:  req.Permissive,
			NoOp:        req.NoOp,
			ManageDSAit: req.ManageDSAit,
			PreRead:     req.PreRead,
			PostRead:    req.PostRead,
		})
		return common.NewModifyResponse(
			uint32(reply.Code),
			reply.Text,
			reply.Referrals,
			toSnapshot(reply.PreImage),
			toSnapshot(reply.PostImage),
		)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC ModifyAdapter - unsupported message type: %s", req.MsgType),
		)
	}
}

func toModList(wire []common.ModOp) entry.ModList {
	out := make(entry.ModList, 0, len(wire))
	for _, m := range wire {
		op, ok := parseOp(m.Op)
		if !ok {
			continue
		}
		out = append(out, &entry.Modification{
			Op:      op,
			Desc:    &entry.AttributeDescription{Name: m.Attr},
			Values:  m.Values,
			NValues: m.Values,
		})
	}
	return out
}

func parseOp(s string) (entry.Op, bool) {
	switch s {
	case "ADD":
		return entry.Add, true
	case "DELETE":
		return entry.Delete, true
	case "REPLACE":
		return entry.Replace, true
	default:
		return 0, false
	}
}

func toSnapshot(e *entry.Entry) *common.EntrySnapshot {
	if e == nil {
		return nil
	}
	attrs := make(map[string][]string, len(e.Attrs))
	for _, a := range e.Attrs {
		attrs[a.Desc.Name] = a.Values
	}
	return &common.EntrySnapshot{DN: e.DN, Attrs: attrs}
}
