// Package cli implements the kbm command-line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbmproject/kbm-backend/internal/app"
	"github.com/kbmproject/kbm-backend/internal/config"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configPath string
}

// NewRootCmd creates the top-level "kbm" command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "kbm",
		Short: "User and organization directory with audit history",
		Long: "kbm runs the directory gRPC service, its HTTP gateway, and the\n" +
			"maintenance tasks of the directory database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"path to the YAML config file (default: $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(
		newServerCmd(flags),
		newGatewayCmd(flags),
		newMigrateCmd(flags),
		newCleanupCmd(flags),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("kbm: " + err.Error() + "\n") //nolint:errcheck
		return 1
	}
	return 0
}

// load reads the configuration and builds the process logger.
func (f *rootFlags) load(cmd *cobra.Command, role string) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	app.NewLogger(cfg.Log, cmd.ErrOrStderr(), role)
	return cfg, nil
}
