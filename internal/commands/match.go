package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookclose/recon/internal/session"
)

func newMatchCommand() *cobra.Command {
	matchCmd := &cobra.Command{
		Use:   "match",
		Short: "Match book and statement transactions",
	}
	matchCmd.AddCommand(newMatchAutoCommand())
	matchCmd.AddCommand(newMatchManualCommand())
	matchCmd.AddCommand(newMatchBreakCommand())
	return matchCmd
}

func newMatchAutoCommand() *cobra.Command {
	var (
		configPath string
		actor      string
		threshold  float64
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "auto <session-id>",
		Short: "Score all pairs and commit high-confidence matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openRuntime(configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			result, err := env.svc.AutoMatch(cmd.Context(), args[0], session.AutoMatchOpts{
				Threshold: threshold,
				Actor:     actor,
				DryRun:    dryRun,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Automatic: %d  Suggested: %d  Unmatched: %d book / %d statement\n",
				result.Summary.AutoMatched, result.Summary.Suggested,
				result.Summary.UnmatchedBook, result.Summary.UnmatchedStatement)
			for _, c := range result.Suggested {
				fmt.Printf("  suggest [%.2f %s] book %s <-> statement %s\n",
					c.Confidence, c.Tier, c.Book.ID, c.Statement.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "recon.yaml", "config file")
	cmd.Flags().StringVar(&actor, "actor", "cli", "acting user")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "confidence threshold for automatic acceptance (0 = config default)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "score without committing matches")

	return cmd
}

func newMatchManualCommand() *cobra.Command {
	var (
		configPath string
		actor      string
		reason     string
	)

	cmd := &cobra.Command{
		Use:   "manual <session-id> <book-tx-id> <statement-tx-id>",
		Short: "Manually match two transactions",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openRuntime(configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			result, err := env.svc.ManualMatch(cmd.Context(), args[0], args[1], args[2], reason, actor)
			if err != nil {
				return err
			}

			fmt.Printf("Match %s created\n", result.Match.ID)
			for _, w := range result.Warnings {
				fmt.Printf("  warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "recon.yaml", "config file")
	cmd.Flags().StringVar(&actor, "actor", "cli", "acting user")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for the manual match (required)")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func newMatchBreakCommand() *cobra.Command {
	var (
		configPath string
		actor      string
		reason     string
	)

	cmd := &cobra.Command{
		Use:   "break <session-id> <match-id>",
		Short: "Break a match, returning both transactions to the pools",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openRuntime(configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			m, err := env.svc.BreakMatch(cmd.Context(), args[0], args[1], reason, actor)
			if err != nil {
				return err
			}

			fmt.Printf("Match %s broken (book %s, statement %s)\n", m.ID, m.BookID, m.StatementID)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "recon.yaml", "config file")
	cmd.Flags().StringVar(&actor, "actor", "cli", "acting user")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for breaking the match (required)")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}
