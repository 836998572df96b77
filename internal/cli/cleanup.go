package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kbmproject/kbm-backend/internal/app"
)

func newCleanupCmd(flags *rootFlags) *cobra.Command {
	var retentionDays int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Physically delete rows soft-deleted longer than the retention period",
		Long: "cleanup removes users and organizations soft-deleted longer than\n" +
			"cleanup.retention_days, recording each removal in the audit log.\n" +
			"It is intended to be invoked by an external scheduler.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd, "cleanup")
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("retention-days") {
				if retentionDays < 0 {
					return fmt.Errorf("--retention-days must be >= 0 (got %d)", retentionDays)
				}
				cfg.Cleanup.RetentionDays = retentionDays
			}

			res, err := app.RunCleanup(cmd.Context(), cfg, slog.Default())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d users, %d organizations, %d audit records\n",
				res.Users, res.Organizations, res.AuditRecords)
			return nil
		},
	}

	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "override cleanup.retention_days")
	return cmd
}
