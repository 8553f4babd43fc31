package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dirdkv/dird/cmd/modify"
	"github.com/dirdkv/dird/cmd/serve"
	"github.com/dirdkv/dird/cmd/util"
)

const (
	Version = "1.0.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dird",
		Short: "directory service with a single Modify operation",
		Long: fmt.Sprintf(`dird (v%s)

A directory service exposing a single, RFC4511-shaped Modify operation
over RPC, built around a transactional entry store with per-entry
write locking, schema validation, and an append-only replication log.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dird",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dird v%s\n", Version)
		},
	}
)

func init() {
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(modify.ModifyCmd)
	RootCmd.AddCommand(versionCmd)

	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (only json is supported)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (only http is supported)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
