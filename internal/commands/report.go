package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookclose/recon/internal/session"
)

func newReportCommand() *cobra.Command {
	var (
		configPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "report <session-id>",
		Short: "Render a reconciliation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openRuntime(configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			report, err := env.svc.GenerateReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "recon.yaml", "config file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of text")

	return cmd
}

func printReport(r *session.Report) {
	fmt.Printf("Reconciliation report - %s (%s)\n", r.AccountName, r.Status)
	fmt.Printf("Session %s, period %s .. %s\n", r.SessionID,
		r.PeriodStart.Format(dateFormat), r.StatementDate.Format(dateFormat))
	fmt.Println()

	fmt.Printf("Book: %d  Statement: %d  Matched: %d (%d auto, %d manual)\n",
		r.Summary.BookTotal, r.Summary.StatementTotal, r.Summary.Matched,
		r.Summary.AutoMatched, r.Summary.ManualMatched)
	fmt.Printf("Unmatched: %d book / %d statement  Items: %d\n",
		r.Summary.UnmatchedBook, r.Summary.UnmatchedStatement, r.Summary.Items)
	fmt.Println()

	if len(r.Matches) > 0 {
		fmt.Println("Matches:")
		for _, m := range r.Matches {
			fmt.Printf("  [%.2f %s] %s %s  <->  %s %s\n",
				m.Confidence, m.Type,
				m.Book.Date.Format(dateFormat), m.Book.Amount.StringFixed(2),
				m.Statement.Date.Format(dateFormat), m.Statement.Amount.StringFixed(2))
		}
		fmt.Println()
	}

	if len(r.UnmatchedBook) > 0 {
		fmt.Println("Unmatched book transactions:")
		for _, l := range r.UnmatchedBook {
			fmt.Printf("  %s  %10s  %s\n", l.Date.Format(dateFormat), l.Amount.StringFixed(2), l.Description)
		}
		fmt.Println()
	}
	if len(r.UnmatchedStatement) > 0 {
		fmt.Println("Unmatched statement transactions:")
		for _, l := range r.UnmatchedStatement {
			fmt.Printf("  %s  %10s  %-12s %s\n", l.Date.Format(dateFormat), l.Amount.StringFixed(2), l.Category, l.Description)
		}
		fmt.Println()
	}

	if len(r.Items) > 0 {
		fmt.Println("Reconciling items:")
		for _, it := range r.Items {
			fmt.Printf("  %-20s %10s  %s\n", it.Type, it.Amount.StringFixed(2), it.Description)
		}
		fmt.Println()
	}

	v := r.Variance
	fmt.Printf("Statement balance: %12s   adjusted: %12s\n",
		v.StatementBalance.StringFixed(2), v.AdjustedStatement.StringFixed(2))
	fmt.Printf("Book balance:      %12s   adjusted: %12s\n",
		v.BookBalance.StringFixed(2), v.AdjustedBook.StringFixed(2))
	fmt.Printf("Variance:          %12s\n", v.Variance.StringFixed(2))
}
