package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/example/schemapilot/internal/cli"
	"github.com/example/schemapilot/internal/version"
	"github.com/example/schemapilot/internal/wire"
)

func main() {
	var (
		dir     string
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:     "schemapilot",
		Short:   "SchemaPilot - versioned SQL migrations against a Flyway history table",
		Version: version.String(),
		Long: `SchemaPilot scans a directory of V<version>__<description>.sql scripts,
reconciles them against flyway_schema_history on the target database, and
applies pending scripts with a confirmation gate for destructive statements.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.Configure(dir, verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			wire.Shutdown()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&dir, "project", "C", ".", "Project directory containing .schemapilot/")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")

	// Add subcommands
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.HistoryCmd())
	rootCmd.AddCommand(cli.ScriptCmd())

	// Setup and diagnostics
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.CacheCmd())
	rootCmd.AddCommand(cli.DoctorCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
