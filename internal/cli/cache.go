package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/schemapilot/internal/wire"
)

// CacheCmd returns the cache command
func CacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the history cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Check that the cache server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := wire.HistoryCache()
			if cache == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled (cache.enabled: false)")
				return nil
			}
			if err := cache.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cache reachable at %s\n", wire.Config().Cache.Addr())
			return nil
		},
	})

	return cmd
}
