// Package common provides core data structures and utilities shared
// across the directory service's RPC system. It defines fundamental
// types, configuration structures, and protocol elements used by other
// packages.
//
// The package focuses on:
//   - Message protocol definition for the Modify operation
//   - Configuration structures for client and server components
//   - Custom logging implementation integrated with dragonboat's logger
//     interface (reused here purely as a logging facade, no RAFT)
//
// Key Components:
//
//   - Message: core data structure for Modify requests and responses,
//     with factory methods for creating them.
//
//   - MessageType: enumeration of the supported message kinds.
//
//   - ServerConfig: configuration for a directory server process —
//     storage location, checkpoint policy, replog path, network endpoint.
//
//   - ClientConfig: configuration for client components, controlling
//     connection parameters, timeouts, and retry behavior.
//
//   - Logger: custom logging implementation providing consistent
//     formatting across the application.
package common
