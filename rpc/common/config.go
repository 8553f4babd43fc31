package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters for a directory server
// process: where its storage and replication log live, checkpoint policy,
// network endpoint, and logging.
type ServerConfig struct {
	// Storage
	DataDir string

	// Checkpoint policy, mirroring bi_txn_cp_kbyte/bi_txn_cp_min.
	CheckpointKBytes  uint64
	CheckpointMinutes uint64

	// Replication log
	ReplogPath string

	// HTTP api settings
	Endpoint      string
	TimeoutSecond int64

	// Suffix this server is authoritative for.
	Suffix string

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration.
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Suffix", c.Suffix)

	addSection("Storage")
	addField("Data Directory", c.DataDir)
	addField("Replog Path", c.ReplogPath)
	addField("Checkpoint KBytes", fmt.Sprintf("%d", c.CheckpointKBytes))
	addField("Checkpoint Minutes", fmt.Sprintf("%d", c.CheckpointMinutes))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the client configuration.
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", fmt.Sprintf("%d", c.RetryCount))
	addField("Connections Per Endpoint", fmt.Sprintf("%d", max(1, c.ConnectionsPerEndpoint)))

	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(fmt.Sprintf("%d", i), endpoint)
	}

	return sb.String()
}
