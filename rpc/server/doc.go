// Package server implements the RPC server for the directory service. It
// adapts decoded Modify requests to dispatch.Dispatcher calls and wires a
// transport and a serializer around that single operation.
//
// The package focuses on:
//   - Server-side RPC request handling for the Modify operation
//   - Adapter pattern to decouple the wire Message from dispatch.Request
//   - A single NewRPCServer factory wiring dispatcher + transport + serializer
//
// Key Components:
//
//   - IRPCServerAdapter: interface defining the contract for server
//     adapters, with the Handle method that processes incoming requests
//     against a dispatch.Dispatcher.
//
//   - NewModifyServerAdapter: factory function creating the adapter that
//     translates Modify Messages to dispatch.Request/Reply.
//
//   - NewRPCServer: factory function creating a configured server with the
//     specified dispatcher, transport and serializer.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Endpoint: "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	s := server.NewRPCServer(
//	  config,
//	  dispatcher,
//	  http.NewHttpServerTransport(),
//	  serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent
//	requests across multiple connections. Each request is processed
//	independently. The Serve method is not thread-safe and should be
//	called only once.
package server
