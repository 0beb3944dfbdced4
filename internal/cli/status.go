package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/schemapilot/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show every script with its migration status",
		Long: `Scan the scripts directory and reconcile each script against the
flyway_schema_history table of the target database.

Examples:
  schemapilot status
  schemapilot status --cached   # use the last cached history snapshot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())
			return wire.MigrationAdapterWithIO(cmd.InOrStdin(), cmd.OutOrStdout()).Status(ctx, cached)
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "Use the cached history snapshot instead of the target")

	return cmd
}
