// Package transport defines the interfaces and abstractions for RPC
// communication with the directory server. It provides a common contract
// that all transport implementations must fulfill, enabling
// protocol-agnostic delivery of Modify requests.
//
// The package focuses on:
//   - Defining clear interfaces for client and server transport layers
//   - Enabling multiple transport implementations (HTTP, and beyond)
//
// Key Components:
//
//   - IRPCClientTransport: interface for client-side transport
//     implementations, handling connection management and request sending.
//
//   - IRPCServerTransport: interface for server-side transport
//     implementations, receiving requests and routing them to the
//     registered handler.
//
//   - ServerHandleFunc: function type for request handling callbacks.
package transport
