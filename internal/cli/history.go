package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/schemapilot/internal/wire"
)

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List the rows of flyway_schema_history",
		Long:  `List the ledger rows of the target database, falling back to the cached snapshot when the target is unreachable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())
			return wire.MigrationAdapterWithIO(cmd.InOrStdin(), cmd.OutOrStdout()).History(ctx)
		},
	}
}
