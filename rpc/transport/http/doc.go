// Package http implements an HTTP-based transport layer for RPC
// communication with the directory server. It provides concrete
// implementations of the interfaces defined in the parent transport
// package.
//
// The package focuses on:
//   - Client-side HTTP transport for sending Modify requests to servers
//   - Server-side HTTP transport exposing a single POST /modify endpoint
//   - Round-robin load balancing across multiple server endpoints
//
// Key Components:
//
//   - httpClientTransport: implements IRPCClientTransport, managing
//     connections to server endpoints and implementing retry on send. Uses
//     round-robin selection for load balancing across multiple endpoints.
//
//   - httpServerTransport: implements IRPCServerTransport, setting up an
//     HTTP server that routes every incoming request to the single
//     registered handler.
//
// Thread Safety:
//
//	The client transport is thread-safe and can be used concurrently. It
//	uses atomic operations for the round-robin counter to ensure thread
//	safety when selecting server endpoints.
package http
