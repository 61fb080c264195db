package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookclose/recon/internal/statement"
)

func newStatementCommand() *cobra.Command {
	statementCmd := &cobra.Command{
		Use:   "statement",
		Short: "Bank statement import",
	}
	statementCmd.AddCommand(newStatementImportCommand())
	return statementCmd
}

func newStatementImportCommand() *cobra.Command {
	var (
		configPath string
		actor      string
		format     string
		noValidate bool
	)

	cmd := &cobra.Command{
		Use:   "import <session-id> <file>",
		Short: "Import a statement file into a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openRuntime(configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			parser := statement.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("unknown statement format %q", format)
			}

			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("opening statement file: %w", err)
			}
			defer f.Close()

			rows, err := parser.Parse(f)
			if err != nil {
				return fmt.Errorf("parsing statement file: %w", err)
			}

			result, err := env.svc.ImportStatement(cmd.Context(), args[0], rows, !noValidate, actor)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d statement transactions\n", len(result.Transactions))
			for _, w := range result.Warnings {
				fmt.Printf("  warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "recon.yaml", "config file")
	cmd.Flags().StringVar(&actor, "actor", "cli", "acting user")
	cmd.Flags().StringVar(&format, "format", "generic", "statement file format")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip row-level warnings")

	return cmd
}
