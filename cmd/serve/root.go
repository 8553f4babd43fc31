// Package serve implements the dird server command: it wires storage,
// locking, indexing, the transaction driver, and the RPC layer together
// and starts listening for Modify requests.
package serve

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdutil "github.com/dirdkv/dird/cmd/util"

	"github.com/dirdkv/dird/backend"
	"github.com/dirdkv/dird/backend/shellbackend"
	"github.com/dirdkv/dird/cache"
	"github.com/dirdkv/dird/clock"
	"github.com/dirdkv/dird/dispatch"
	"github.com/dirdkv/dird/entrylock"
	"github.com/dirdkv/dird/index"
	"github.com/dirdkv/dird/lib/lockmgr"
	"github.com/dirdkv/dird/replog"
	"github.com/dirdkv/dird/rpc/common"
	"github.com/dirdkv/dird/rpc/serializer"
	"github.com/dirdkv/dird/rpc/server"
	"github.com/dirdkv/dird/rpc/transport"
	"github.com/dirdkv/dird/rpc/transport/http"
	"github.com/dirdkv/dird/schema"
	"github.com/dirdkv/dird/storage"
	"github.com/dirdkv/dird/txndriver"
)

var (
	serveCmdConfig = &common.ServerConfig{}

	// ServeCmd starts the dird server.
	ServeCmd = &cobra.Command{
		Use:     "serve",
		Short:   "Start the dird directory server",
		Long: `Start the dird directory server with the specified configuration. The
configuration can be set via command line flags or environment variables.
The format of the environment variables is DIRD_<flag> (e.g.
DIRD_LOG_LEVEL=debug).`,
		PreRunE: processConfig,
		RunE:    run,
	}

	lockTimeoutSeconds uint64
	maxRetries         int
	indexedAttrs       []string
	updateNDN          string
	lastMod            bool
	shellCommand       string
	shellArgs          []string
	shellTimeoutSec    int
)

func init() {
	cobra.OnInitialize(initConfig)

	key := "data-dir"
	ServeCmd.PersistentFlags().String(key, "data", cmdutil.WrapString("Directory used for the primary entry store"))

	key = "checkpoint-kbytes"
	ServeCmd.PersistentFlags().Uint64(key, 0, cmdutil.WrapString("Nonzero enables checkpointing (as does --checkpoint-minutes): a checkpoint then runs after every committed Modify; the value is not used as a size threshold"))

	key = "checkpoint-minutes"
	ServeCmd.PersistentFlags().Uint64(key, 0, cmdutil.WrapString("Nonzero enables checkpointing (as does --checkpoint-kbytes): a checkpoint then runs after every committed Modify; the value is not used as a time threshold"))

	key = "replog-path"
	ServeCmd.PersistentFlags().String(key, "", cmdutil.WrapString("Path to the append-only replication log (empty disables replog)"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdutil.WrapString("The address on which the API will listen"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdutil.WrapString("RPC timeout in seconds"))

	key = "suffix"
	ServeCmd.PersistentFlags().String(key, "", cmdutil.WrapString("The suffix this server is authoritative for (e.g. dc=example,dc=com)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdutil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "lock-timeout"
	ServeCmd.PersistentFlags().Uint64Var(&lockTimeoutSeconds, key, 30, cmdutil.WrapString("Seconds a write lock is held before it is considered abandoned"))

	key = "max-retries"
	ServeCmd.PersistentFlags().IntVar(&maxRetries, key, 5, cmdutil.WrapString("Maximum transaction driver retries on DEADLOCK/NOT_GRANTED before surfacing OTHER"))

	key = "indexed-attrs"
	ServeCmd.PersistentFlags().StringSliceVar(&indexedAttrs, key, nil, cmdutil.WrapString("Comma-separated attribute names mirrored into the secondary value index"))

	key = "update-ndn"
	ServeCmd.PersistentFlags().StringVar(&updateNDN, key, "", cmdutil.WrapString("If set, this backend only accepts Modify requests bound as this principal (read-only replica mode)"))

	key = "lastmod"
	ServeCmd.PersistentFlags().BoolVar(&lastMod, key, true, cmdutil.WrapString("Whether operational attributes (modifiersName, modifyTimestamp) are stamped on commit"))

	key = "shell-command"
	ServeCmd.PersistentFlags().StringVar(&shellCommand, key, "", cmdutil.WrapString("If set, delegate Modify to this external command instead of the built-in storage backend"))

	key = "shell-args"
	ServeCmd.PersistentFlags().StringSliceVar(&shellArgs, key, nil, cmdutil.WrapString("Arguments passed to --shell-command"))

	key = "shell-timeout"
	ServeCmd.PersistentFlags().IntVar(&shellTimeoutSec, key, 30, cmdutil.WrapString("Seconds to wait for the shell backend before giving up"))
}

// processConfig reads configuration from flags and environment variables
// into serveCmdConfig.
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.CheckpointKBytes = viper.GetUint64("checkpoint-kbytes")
	serveCmdConfig.CheckpointMinutes = viper.GetUint64("checkpoint-minutes")
	serveCmdConfig.ReplogPath = viper.GetString("replog-path")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Suffix = viper.GetString("suffix")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	if serveCmdConfig.Suffix == "" {
		return fmt.Errorf("--suffix is required")
	}

	return nil
}

// run builds the Modify pipeline and starts the RPC server.
func run(_ *cobra.Command, _ []string) error {
	common.InitLoggers(*serveCmdConfig)

	be, err := buildBackend()
	if err != nil {
		return fmt.Errorf("build backend: %w", err)
	}

	reg := dispatch.NewRegistry()
	reg.Add(serveCmdConfig.Suffix, be)

	sink, err := buildReplogSink()
	if err != nil {
		return fmt.Errorf("build replog sink: %w", err)
	}

	d := dispatch.NewDispatcher(reg, sink)

	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "", "json":
		s = serializer.NewJSONSerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "", "http":
		t = http.NewHttpServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	srv := server.NewRPCServer(*serveCmdConfig, d, t, s)

	return srv.Serve()
}

// buildBackend wires either the shell-piped backend (if --shell-command is
// set) or the pebble/txndriver-backed primary backend.
func buildBackend() (backend.Backend, error) {
	if shellCommand != "" {
		be := shellbackend.New(shellCommand, shellArgs, updateNDN, lastMod)
		be.Timeout = time.Duration(shellTimeoutSec) * time.Second
		return be, nil
	}

	store, err := storage.Open(serveCmdConfig.DataDir)
	if err != nil {
		return nil, err
	}

	idx := index.NewIndex(indexedAttrs...)

	locks := entrylock.NewManager(lockmgr.NewLockManager(), lockTimeoutSeconds)

	driver := txndriver.NewDriver(
		txndriver.Deps{
			Store:     store,
			Locks:     locks,
			Cache:     cache.NewCache(),
			ACL:       schema.AllowAllACL{},
			Validator: schema.NoopValidator{},
			Index:     idx,
			Indexer:   idx,
			Clock:     clock.System{},
		},
		txndriver.Config{
			Authoritative:  updateNDN == "",
			LastModEnabled: lastMod,
			MaxRetries:     maxRetries,
			BackoffBase:    10 * time.Millisecond,
			BackoffCap:     500 * time.Millisecond,
			Checkpoint: txndriver.CheckpointPolicy{
				Enabled: serveCmdConfig.CheckpointKBytes > 0 || serveCmdConfig.CheckpointMinutes > 0,
				KBytes:  serveCmdConfig.CheckpointKBytes,
				Minutes: serveCmdConfig.CheckpointMinutes,
			},
		},
	)

	return backend.NewPrimary(driver, updateNDN, lastMod), nil
}

// buildReplogSink returns nil (no replog) when --replog-path is unset.
func buildReplogSink() (replog.Sink, error) {
	if serveCmdConfig.ReplogPath == "" {
		return nil, nil
	}
	return replog.NewFileSink(serveCmdConfig.ReplogPath)
}

// initConfig reads serveCmdConfig from env files and DIRD_-prefixed
// environment variables.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("dird")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
