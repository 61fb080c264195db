package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bookclose/recon/internal/session"
)

func newSessionCommand() *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Reconciliation session lifecycle",
	}
	sessionCmd.AddCommand(newSessionInitiateCommand())
	sessionCmd.AddCommand(newSessionCompleteCommand())
	return sessionCmd
}

func newSessionInitiateCommand() *cobra.Command {
	var (
		configPath   string
		actor        string
		accountID    int
		stmtDate     string
		periodStart  string
		balance      string
		statementRef string
	)

	cmd := &cobra.Command{
		Use:   "initiate",
		Short: "Start a reconciliation session for a bank account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openRuntime(configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			statementDate, err := parseDate("statement-date", stmtDate)
			if err != nil {
				return err
			}
			start, err := parseDate("period-start", periodStart)
			if err != nil {
				return err
			}
			statementBalance, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("parsing --balance %q: %w", balance, err)
			}

			sess, err := env.svc.Initiate(cmd.Context(), session.InitiateParams{
				BankAccountID:    accountID,
				StatementDate:    statementDate,
				PeriodStart:      start,
				StatementBalance: statementBalance,
				StatementRef:     statementRef,
				Actor:            actor,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Session %s initiated\n", sess.ID)
			fmt.Printf("  book balance:     %s\n", sess.BookBalance.StringFixed(2))
			fmt.Printf("  unreconciled:     %d lines\n", len(sess.Book))
			fmt.Printf("  initial variance: %s\n", sess.Variance.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "recon.yaml", "config file")
	cmd.Flags().StringVar(&actor, "actor", "cli", "acting user")
	cmd.Flags().IntVar(&accountID, "account", 0, "bank account id (required)")
	cmd.Flags().StringVar(&stmtDate, "statement-date", "", "statement date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&periodStart, "period-start", "", "period start YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&balance, "balance", "", "statement ending balance (required)")
	cmd.Flags().StringVar(&statementRef, "statement-ref", "", "external statement reference")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("statement-date")
	_ = cmd.MarkFlagRequired("period-start")
	_ = cmd.MarkFlagRequired("balance")

	return cmd
}

func newSessionCompleteCommand() *cobra.Command {
	var (
		configPath    string
		actor         string
		force         bool
		allowVariance bool
		maxVariance   string
	)

	cmd := &cobra.Command{
		Use:   "complete <session-id>",
		Short: "Complete a session once the variance is acceptable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openRuntime(configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			opts := session.CompleteOpts{
				Actor:         actor,
				ForceComplete: force,
				AllowVariance: allowVariance,
			}
			if maxVariance != "" {
				opts.MaxVarianceThreshold, err = decimal.NewFromString(maxVariance)
				if err != nil {
					return fmt.Errorf("parsing --max-variance %q: %w", maxVariance, err)
				}
			}

			result, err := env.svc.Complete(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			fmt.Printf("Session %s completed (variance %s)\n",
				result.Session.ID, result.Breakdown.Variance.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "recon.yaml", "config file")
	cmd.Flags().StringVar(&actor, "actor", "cli", "acting user")
	cmd.Flags().BoolVar(&force, "force", false, "complete regardless of variance")
	cmd.Flags().BoolVar(&allowVariance, "allow-variance", false, "accept a non-zero variance within --max-variance")
	cmd.Flags().StringVar(&maxVariance, "max-variance", "", "maximum acceptable absolute variance")

	return cmd
}
