// Package rpc provides a comprehensive framework for remote procedure
// calls to the directory service. It acts as the communication layer
// between clients and the Modify dispatcher, enabling operations across
// network boundaries.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC
//     system, including the Message protocol, configuration structures,
//     and logging.
//
//   - transport: Network communication abstractions with pluggable
//     implementations (HTTP today).
//
//   - serializer: Message serialization, converting between Message
//     objects and byte arrays.
//
//   - server: RPC server components that handle incoming Modify requests,
//     adapting them onto dispatch.Dispatcher.
package rpc
