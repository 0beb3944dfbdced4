package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/schemapilot/internal/adapters/filesystem"
	rediscache "github.com/example/schemapilot/internal/adapters/redis"
	"github.com/example/schemapilot/internal/adapters/sqldb"
	"github.com/example/schemapilot/internal/config"
	"github.com/example/schemapilot/internal/wire"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate config, scripts directory, target database and cache",
		Long: `Health check for a schemapilot project.

Validates:
- .schemapilot/config.yaml loads and is valid
- Scripts directory exists and can be scanned
- Target database accepts connections
- flyway_schema_history exists or can be created, and is readable
- Cache server answers PING (when enabled)

Examples:
  schemapilot doctor              # Run full health check
  schemapilot doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runChecks(cmd.Context(), wire.WorkDir())

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				printChecks(cmd.OutOrStdout(), results, hasErrors)
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

// runChecks runs every check in order. Checks that depend on the config are
// skipped when it cannot be loaded.
func runChecks(ctx context.Context, dir string) []CheckResult {
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return []CheckResult{{Name: "Config", Status: "✗", Details: "  " + err.Error() + "\n  Run 'schemapilot config init'"}}
	}

	results := []CheckResult{{Name: "Config", Status: "✓"}}
	results = append(results, checkScripts(ctx, cfg.ResolveScriptsPath(dir)))
	results = append(results, checkTarget(ctx, cfg.Database)...)
	results = append(results, checkCache(ctx, cfg.Cache))
	return results
}

// checkScripts validates the scripts directory can be scanned
func checkScripts(ctx context.Context, root string) CheckResult {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return CheckResult{Name: "Scripts", Status: "✗", Details: fmt.Sprintf("  Missing: %s", root)}
	}
	records, err := filesystem.NewScriptRepository().Scan(ctx, root)
	if err != nil {
		return CheckResult{Name: "Scripts", Status: "✗", Details: "  " + err.Error()}
	}
	if len(records) == 0 {
		return CheckResult{Name: "Scripts", Status: "⚠", Details: fmt.Sprintf("  No .sql files under %s", root)}
	}
	return CheckResult{Name: "Scripts", Status: "✓"}
}

// checkTarget validates connectivity and the ledger table
func checkTarget(ctx context.Context, db config.DatabaseConfig) []CheckResult {
	connector := sqldb.NewConnector(db, nil)
	defer connector.Close()

	session, err := connector.Connect(ctx)
	if err != nil {
		return []CheckResult{
			{Name: "Target", Status: "✗", Details: "  " + err.Error()},
			{Name: "History table", Status: "⚠", Details: "  Skipped: target unreachable"},
		}
	}
	defer session.Close()

	history := session.History()
	if err := history.EnsureSchema(ctx); err != nil {
		return []CheckResult{
			{Name: "Target", Status: "✓"},
			{Name: "History table", Status: "✗", Details: "  " + err.Error()},
		}
	}
	if _, err := history.ReadAll(ctx); err != nil {
		return []CheckResult{
			{Name: "Target", Status: "✓"},
			{Name: "History table", Status: "✗", Details: "  " + err.Error()},
		}
	}
	return []CheckResult{{Name: "Target", Status: "✓"}, {Name: "History table", Status: "✓"}}
}

// checkCache pings the cache server when caching is enabled
func checkCache(ctx context.Context, cc config.CacheConfig) CheckResult {
	if !cc.Enabled {
		return CheckResult{Name: "Cache", Status: "✓"}
	}
	cache, err := rediscache.NewHistoryCache(cc, nil)
	if err != nil {
		return CheckResult{Name: "Cache", Status: "✗", Details: "  " + err.Error()}
	}
	defer cache.Close()

	// An unreachable cache degrades status previews but never blocks migrations.
	if err := cache.Ping(ctx); err != nil {
		return CheckResult{Name: "Cache", Status: "⚠", Details: fmt.Sprintf("  %s: %v", cc.Addr(), err)}
	}
	return CheckResult{Name: "Cache", Status: "✓"}
}

func printChecks(out io.Writer, results []CheckResult, hasErrors bool) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Check              Status")
	fmt.Fprintln(out, "─────────────────────────")
	for _, r := range results {
		fmt.Fprintf(out, "%-18s %s\n", r.Name, r.Status)
	}
	fmt.Fprintln(out)

	// Print details for non-passing checks
	hasDetails := false
	for _, r := range results {
		if r.Status != "✓" && r.Details != "" {
			if !hasDetails {
				fmt.Fprintln(out, "Details:")
				hasDetails = true
			}
			fmt.Fprintf(out, "\n%s:\n%s\n", r.Name, r.Details)
		}
	}

	if hasErrors {
		fmt.Fprintln(out, "\n⚠ Issues found.")
	} else {
		fmt.Fprintln(out, "All checks passed.")
	}
}
