// Package ledger defines the collaborator contracts the reconciliation
// engine depends on, plus a SQLite-backed implementation.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookclose/recon/internal/model"
)

// BalanceResult is the outcome of a balance calculation.
type BalanceResult struct {
	AccountID int
	AsOf      time.Time
	Balance   decimal.Decimal
}

// JournalLine is one side of a journal entry.
type JournalLine struct {
	AccountID   int
	Debit       decimal.Decimal // zero if credit side
	Credit      decimal.Decimal // zero if debit side
	Description string
}

// JournalEntry is a balanced entry handed to the ledger for posting.
type JournalEntry struct {
	Date        time.Time
	Description string
	Reference   string
	Lines       []JournalLine
}

// PostingResult reports a posted journal entry.
type PostingResult struct {
	EntryID string
	Posted  bool
}

// ReversalResult reports a posted reversal entry.
type ReversalResult struct {
	OriginalEntryID string
	ReversalEntryID string
}

// Service is the general ledger collaborator. Implementations own posting
// semantics, retries, and timeouts; the engine treats every call as a
// potentially failing I/O boundary.
type Service interface {
	CalculateAccountBalance(ctx context.Context, accountID int, asOf time.Time, includeUnposted bool) (BalanceResult, error)
	PostJournalEntry(ctx context.Context, entry JournalEntry, actor string, autoPost bool) (PostingResult, error)
	ReverseJournalEntry(ctx context.Context, originalEntryID, reason, actor string) (ReversalResult, error)
	// FinalizeReconciliation flags the matched ledger lines as reconciled and
	// stamps the account's last-reconciled marker.
	FinalizeReconciliation(ctx context.Context, accountID int, lineIDs []string, statementDate time.Time) error
}

// AccountRepository looks up chart-of-accounts entries.
type AccountRepository interface {
	FindByID(ctx context.Context, id int) (model.Account, bool, error)
}

// TransactionRepository fetches ledger cash lines for an account and period.
// Callers filter to posted, not-yet-reconciled lines.
type TransactionRepository interface {
	FindByAccount(ctx context.Context, accountID int, start, end time.Time) ([]model.BookTransaction, error)
}
