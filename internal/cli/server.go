package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kbmproject/kbm-backend/internal/app"
)

func newServerCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the directory gRPC service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd, "server")
			if err != nil {
				return err
			}
			return app.RunServer(cmd.Context(), cfg, slog.Default())
		},
	}
}

func newGatewayCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Run the HTTP gateway in front of the directory service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd, "gateway")
			if err != nil {
				return err
			}
			return app.RunGateway(cmd.Context(), cfg, slog.Default())
		},
	}
}
