package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kbmproject/kbm-backend/internal/app"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back, or list the schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			cfg, err := flags.load(cmd, "migrate")
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), cfg.Database, command, slog.Default())
		},
	}
}
