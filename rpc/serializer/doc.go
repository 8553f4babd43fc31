// Package serializer provides message serialization capabilities for the
// directory service's RPC system. It defines a common interface and a
// JSON implementation for serializing and deserializing Messages between
// client and server.
//
// The package focuses on:
//   - Providing a consistent interface independent of wire format
//   - Human-readable encoding useful for debugging and for the replog's
//     own JSON-lines format to stay consistent with the wire format
//
// Key Components:
//
//   - IRPCSerializer: core interface that all serializer implementations
//     must satisfy.
//
//   - jsonSerializerImpl: implementation using encoding/json.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent
//	use across multiple goroutines without additional synchronization.
//
// Usage:
//
//	serializer := serializer.NewJSONSerializer()
//	data, err := serializer.Serialize(message)
//	// ... send data ...
//	var receivedMsg common.Message
//	err = serializer.Deserialize(receivedData, &receivedMsg)
package serializer
