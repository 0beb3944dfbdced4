package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/schemapilot/internal/wire"
)

// ScriptCmd returns the script command with its subcommands
func ScriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Create and edit migration scripts",
		Long:  "Create, save, rename and delete script files. Only PENDING scripts can be changed.",
	}

	cmd.AddCommand(scriptNewCmd())
	cmd.AddCommand(scriptSaveCmd())
	cmd.AddCommand(scriptRenameCmd())
	cmd.AddCommand(scriptDeleteCmd())
	cmd.AddCommand(scriptShowCmd())

	return cmd
}

func scriptNewCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "new [version] [description]",
		Short: "Create an empty V<version>__<description>.sql script",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())
			return wire.ScriptAdapterWithOutput(cmd.OutOrStdout()).New(ctx, dir, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Subdirectory of the scripts directory")

	return cmd
}

func scriptSaveCmd() *cobra.Command {
	var (
		dir  string
		file string
	)

	cmd := &cobra.Command{
		Use:   "save [name]",
		Short: "Save script content from a file or stdin",
		Long: `Write content to a script, creating it if needed.

Examples:
  schemapilot script save V3__orders.sql --file ./orders.sql
  cat orders.sql | schemapilot script save V3__orders.sql --dir billing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				content []byte
				err     error
			)
			if file != "" {
				content, err = os.ReadFile(file)
			} else {
				content, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read content: %w", err)
			}

			ctx := wire.Context(cmd.Context())
			return wire.ScriptAdapterWithOutput(cmd.OutOrStdout()).Save(ctx, dir, args[0], string(content))
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Subdirectory of the scripts directory")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read content from file instead of stdin")

	return cmd
}

func scriptRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [script] [new-name]",
		Short: "Rename a pending script",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())
			return wire.ScriptAdapterWithOutput(cmd.OutOrStdout()).Rename(ctx, args[0], args[1])
		},
	}
}

func scriptDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [script]",
		Short: "Delete a pending script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())
			return wire.ScriptAdapterWithOutput(cmd.OutOrStdout()).Delete(ctx, args[0])
		},
	}
}

func scriptShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [script]",
		Short: "Show a script with its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())
			return wire.ScriptAdapterWithOutput(cmd.OutOrStdout()).Show(ctx, args[0])
		},
	}
}
