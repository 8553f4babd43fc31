package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Request fields
	Name        string   `json:"name,omitempty"`
	ModList     []ModOp  `json:"modList,omitempty"`
	Principal   string   `json:"principal,omitempty"`
	Permissive  bool     `json:"permissive,omitempty"`
	NoOp        bool     `json:"noOp,omitempty"`
	ManageDSAit bool     `json:"manageDSAit,omitempty"`
	PreRead     bool     `json:"preRead,omitempty"`
	PostRead    bool     `json:"postRead,omitempty"`

	// Response only fields
	Code      uint32         `json:"code,omitempty"`
	Text      string         `json:"text,omitempty"`
	Referrals []string       `json:"referrals,omitempty"`
	PreImage  *EntrySnapshot `json:"preImage,omitempty"`
	PostImage *EntrySnapshot `json:"postImage,omitempty"`
	Err       string         `json:"err,omitempty"` // empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // unused, available for future adapters
}

// ModOp is the wire representation of a single modification: the
// AttributeDescription's matching-rule function can't cross the wire, so
// only the attribute name travels.
type ModOp struct {
	Op     string   `json:"op"`
	Attr   string   `json:"attr"`
	Values []string `json:"values,omitempty"`
}

// EntrySnapshot is the wire representation of a pre/post-read image.
type EntrySnapshot struct {
	DN    string              `json:"dn"`
	Attrs map[string][]string `json:"attrs,omitempty"`
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewModifyRequest creates a new Modify request.
func NewModifyRequest(name string, modList []ModOp) *Message {
	return &Message{
		MsgType: MsgTModify,
		Name:    name,
		ModList: modList,
	}
}

// NewModifyResponse creates a new Modify response.
func NewModifyResponse(code uint32, text string, referrals []string, pre, post *EntrySnapshot) *Message {
	return &Message{
		MsgType:   MsgTModify,
		Code:      code,
		Text:      text,
		Referrals: referrals,
		PreImage:  pre,
		PostImage: post,
	}
}

// NewErrorResponse creates a new Error response.
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTModify:
		return "modify"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "modify":
		*t = MsgTModify
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	MsgTUnknown MessageType = iota
	MsgTSuccess             // indicates a successful operation
	MsgTError               // indicates an error occurred

	MsgTModify // a Modify request/response
)
