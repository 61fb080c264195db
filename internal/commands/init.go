package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bookclose/recon/internal/accounts"
	"github.com/bookclose/recon/internal/config"
	"github.com/bookclose/recon/internal/ledger"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a reconciliation workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), absDir)
		},
	}
	return cmd
}

func runInit(ctx context.Context, dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}

	// Write recon.yaml.
	cfg := config.Default(dir)
	cfg.Ledger.DatabasePath = filepath.Join(dir, "ledger.db")
	if err := config.Save(filepath.Join(dir, "recon.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Create the ledger database and seed the chart of accounts.
	store, err := ledger.Open(cfg.Ledger.DatabasePath)
	if err != nil {
		return fmt.Errorf("creating ledger db: %w", err)
	}
	defer store.Close()

	if err := store.SeedAccounts(ctx, accounts.DefaultChart()); err != nil {
		return fmt.Errorf("seeding chart of accounts: %w", err)
	}

	fmt.Printf("Initialized reconciliation workspace at %s\n", dir)
	return nil
}
