package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/schemapilot/internal/config"
	"github.com/example/schemapilot/internal/wire"
)

// ConfigCmd returns the config command with its subcommands
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage .schemapilot/config.yaml",
	}

	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configAICmd())

	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		force bool
		db    config.DatabaseConfig
		cache bool
		dir   string
		op    string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file in the project directory",
		Long: `Create .schemapilot/config.yaml and the scripts directory.

Examples:
  schemapilot config init --kind postgres --name app --user app
  schemapilot config init --kind sqlite --name ./dev.db
  schemapilot config init --kind mysql --host db.internal --name shop --cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir := wire.WorkDir()
			path := config.Path(workDir)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			cfg := &config.Config{
				Version:     "1",
				Database:    db,
				ScriptsPath: dir,
				Operator:    op,
				Cache:       config.CacheConfig{Enabled: cache},
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}
			if err := config.SaveConfig(workDir, cfg); err != nil {
				return err
			}

			scriptsRoot := cfg.ResolveScriptsPath(workDir)
			if err := os.MkdirAll(scriptsRoot, 0755); err != nil {
				return fmt.Errorf("failed to create scripts directory: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Config written to %s\n", path)
			fmt.Fprintf(out, "✓ Scripts directory %s\n", scriptsRoot)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  schemapilot script new 1 init")
			fmt.Fprintln(out, "  schemapilot status")
			return nil
		},
	}

	cmd.Flags().StringVar(&db.Kind, "kind", config.KindPostgres, "Database kind (postgres, mysql, mariadb, sqlite)")
	cmd.Flags().StringVar(&db.Host, "host", "", "Database host")
	cmd.Flags().IntVar(&db.Port, "port", 0, "Database port (default per kind)")
	cmd.Flags().StringVar(&db.Name, "name", "", "Database name, or file path for sqlite")
	cmd.Flags().StringVar(&db.User, "user", "", "Database user")
	cmd.Flags().StringVar(&db.Password, "password", "", "Database password (prefer ${ENV} references in the file)")
	cmd.Flags().StringVar(&db.Schema, "schema", "", "Postgres schema (default public)")
	cmd.Flags().StringVar(&dir, "scripts", "", "Scripts directory (default db/migration)")
	cmd.Flags().StringVar(&op, "operator", "", "Name recorded as installed_by")
	cmd.Flags().BoolVar(&cache, "cache", false, "Enable the redis history cache")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	cmd.MarkFlagRequired("name")

	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(wire.WorkDir())
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func configAICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Manage settings of the AI drafting provider",
	}

	var ai config.AIConfig
	bind := func(c *cobra.Command) {
		c.Flags().StringVar(&ai.Provider, "provider", "", "Provider name")
		c.Flags().StringVar(&ai.Model, "model", "", "Model name")
		c.Flags().StringVar(&ai.APIKey, "api-key", "", "API key")
		c.Flags().StringVar(&ai.BaseURL, "base-url", "", "API base URL")
		c.Flags().IntVar(&ai.TimeoutSeconds, "timeout", 0, "Request timeout in seconds")
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store AI settings in the cache, or the local file when caching is disabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())
			if err := config.SaveAISettings(ctx, ai, wire.SettingsStore(), config.AIFilePath(wire.WorkDir())); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ AI settings saved (%s/%s)\n", ai.Provider, ai.Model)
			return nil
		},
	}
	bind(setCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show which AI settings apply and where they come from",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())
			resolved, source := config.ResolveAISettings(ctx, ai, wire.SettingsStore(), config.AIFilePath(wire.WorkDir()))
			if source == config.AISourceNone && wire.Config().AI.Complete() {
				resolved, source = wire.Config().AI, "config"
			}

			out := cmd.OutOrStdout()
			if source == config.AISourceNone {
				fmt.Fprintln(out, "No AI settings configured")
				return nil
			}
			fmt.Fprintf(out, "Source:   %s\n", source)
			fmt.Fprintf(out, "Provider: %s\n", resolved.Provider)
			fmt.Fprintf(out, "Model:    %s\n", resolved.Model)
			fmt.Fprintf(out, "API key:  %s\n", "********")
			if resolved.BaseURL != "" {
				fmt.Fprintf(out, "Base URL: %s\n", resolved.BaseURL)
			}
			fmt.Fprintf(out, "Timeout:  %s\n", resolved.Timeout())
			return nil
		},
	}
	bind(showCmd)

	cmd.AddCommand(setCmd)
	cmd.AddCommand(showCmd)

	return cmd
}
