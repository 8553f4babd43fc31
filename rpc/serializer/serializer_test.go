package serializer

import (
	"reflect"
	"testing"

	"github.com/dirdkv/dird/rpc/common"
)

func testMessages() []common.Message {
	return []common.Message{
		{MsgType: common.MsgTSuccess},
		{
			MsgType: common.MsgTModify,
			Name:    "cn=Alice,dc=example,dc=com",
			ModList: []common.ModOp{
				{Op: "ADD", Attr: "mail", Values: []string{"a@example.com"}},
				{Op: "DELETE", Attr: "sn"},
			},
			Principal:  "cn=admin",
			Permissive: true,
		},
		{
			MsgType: common.MsgTModify,
			Code:    uint32(0),
			Text:    "",
			PreImage: &common.EntrySnapshot{
				DN:    "cn=Alice,dc=example,dc=com",
				Attrs: map[string][]string{"mail": {"a@example.com"}},
			},
		},
		{MsgType: common.MsgTError, Err: "test error message"},
	}
}

func TestJSONSerializerRoundTrip(t *testing.T) {
	s := NewJSONSerializer()

	for i, msg := range testMessages() {
		data, err := s.Serialize(msg)
		if err != nil {
			t.Fatalf("failed to serialize message %d: %v", i, err)
		}

		var result common.Message
		if err := s.Deserialize(data, &result); err != nil {
			t.Fatalf("failed to deserialize message %d: %v", i, err)
		}

		if !reflect.DeepEqual(msg, result) {
			t.Errorf("message %d doesn't match after round trip:\noriginal: %+v\nresult: %+v", i, msg, result)
		}
	}
}

func TestJSONSerializerMessageTypePreserved(t *testing.T) {
	s := NewJSONSerializer()

	for _, mt := range []common.MessageType{common.MsgTSuccess, common.MsgTError, common.MsgTModify} {
		data, err := s.Serialize(common.Message{MsgType: mt})
		if err != nil {
			t.Fatalf("failed to serialize message type %s: %v", mt, err)
		}

		var result common.Message
		if err := s.Deserialize(data, &result); err != nil {
			t.Fatalf("failed to deserialize message type %s: %v", mt, err)
		}

		if result.MsgType != mt {
			t.Errorf("message type mismatch: expected %s, got %s", mt, result.MsgType)
		}
	}
}
