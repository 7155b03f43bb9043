package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec"
	"github.com/kailas-cloud/redisvec/internal/config"
	logpkg "github.com/kailas-cloud/redisvec/internal/logger"
)

const rootLongDesc string = `redisvec stores texts, their embeddings and metadata in Redis and
answers similarity queries over them.

Run the HTTP API:
  redisvec serve

Work with the configured index directly:
  redisvec index create --dims 1536
  redisvec ingest notes.jsonl
  redisvec search "how do I rotate keys" -k 5`

const rootShortDesc string = "redisvec - Redis vector store"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "redisvec",
		Short:        rootShortDesc,
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (overrides --env)")
	cmd.PersistentFlags().String("env", "", "Config environment name, resolved as config/<env>.yaml (default: $ENV or local)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// app is what every command needs after flag parsing.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	// extra is appended to the options built from cfg.
	extra []redisvec.Option
}

func loadApp(cmd *cobra.Command) (*app, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not get config flag: %w", err)
	}
	env, err := cmd.Flags().GetString("env")
	if err != nil {
		return nil, fmt.Errorf("could not get env flag: %w", err)
	}
	if env == "" {
		env = config.GetEnv()
	}

	var cfg config.Config
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return &app{env: env, cfg: cfg, logger: logger}, nil
}
