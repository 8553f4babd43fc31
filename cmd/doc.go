// Package cmd implements the command-line interface for dird, a directory
// service exposing a single Modify operation. It provides a hierarchical
// command structure with operations for running the server and sending it
// modifications as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Starts and configures the dird server.
//   - modify: Sends a single Modify request to a running server.
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dird -help for a list of all commands.
package cmd
