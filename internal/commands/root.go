package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookclose/recon/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "recon",
		Short:   "Bank reconciliation for small-business ledgers",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newSessionCommand())
	rootCmd.AddCommand(newStatementCommand())
	rootCmd.AddCommand(newMatchCommand())
	rootCmd.AddCommand(newItemCommand())
	rootCmd.AddCommand(newReportCommand())

	return rootCmd
}
