package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/schemapilot/internal/wire"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	var (
		all       bool
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "migrate [script...]",
		Short: "Apply pending scripts to the target database",
		Long: `Apply one or more PENDING scripts and record them in flyway_schema_history.

Scripts are referenced by filename, path relative to the scripts directory,
or ID. Several scripts run in version order over one connection and stop at
the first failure. Scripts with destructive statements (DROP, TRUNCATE,
DELETE/UPDATE without WHERE, ...) ask for confirmation.

Examples:
  schemapilot migrate V3__add_orders.sql
  schemapilot migrate billing/V4__invoices.sql V5__cleanup.sql
  schemapilot migrate --all
  schemapilot migrate --all --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("specify a script or --all")
			}
			if all && len(args) > 0 {
				return fmt.Errorf("--all cannot be combined with script names")
			}

			ctx := wire.Context(cmd.Context())
			adapter := wire.MigrationAdapterWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
			if len(args) == 1 && !all {
				return adapter.Migrate(ctx, args[0], assumeYes)
			}
			return adapter.MigrateBatch(ctx, args, all, assumeYes)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Apply every pending script")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Confirm destructive scripts without prompting")

	return cmd
}
