package transport

import (
	"github.com/dirdkv/dird/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc handles an incoming serialized request and returns the
// serialized response. Unlike the sharded KV transport this replaces,
// there is exactly one logical endpoint (Modify), so no routing key is
// threaded through the handler.
type ServerHandleFunc func(req []byte) (resp []byte)

// IRPCServerTransport is the interface for the RPC transport layer.
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer.
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and listens for incoming requests.
	Listen(config common.ServerConfig) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport.
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration.
	Connect(config common.ClientConfig) error
	// Send sends a request to the server and returns the response.
	Send(req []byte) (resp []byte, err error)
	// Close closes the transport connection.
	Close() error
}
