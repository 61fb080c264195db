// Package variance computes the statement-vs-book variance of a
// reconciliation session. Target is zero at completion.
package variance

import (
	"github.com/shopspring/decimal"

	"github.com/bookclose/recon/internal/model"
)

// Breakdown details how the current variance is built from both sides.
type Breakdown struct {
	StatementBalance    decimal.Decimal `json:"statement_balance"`
	BookBalance         decimal.Decimal `json:"book_balance"`
	UnmatchedDebits     decimal.Decimal `json:"unmatched_debits"`
	UnmatchedCredits    decimal.Decimal `json:"unmatched_credits"`
	OutstandingDeposits decimal.Decimal `json:"outstanding_deposits"`
	OutstandingChecks   decimal.Decimal `json:"outstanding_checks"`
	BankCharges         decimal.Decimal `json:"bank_charges"`
	InterestEarned      decimal.Decimal `json:"interest_earned"`
	NSFChecks           decimal.Decimal `json:"nsf_checks"`
	BankErrors          decimal.Decimal `json:"bank_errors"`
	BookErrors          decimal.Decimal `json:"book_errors"`
	AdjustedStatement   decimal.Decimal `json:"adjusted_statement"`
	AdjustedBook        decimal.Decimal `json:"adjusted_book"`
	Variance            decimal.Decimal `json:"variance"`
}

// Initial computes the variance at session start:
// statement balance minus (book balance + unreconciled debits - credits).
func Initial(statementBalance, bookBalance decimal.Decimal, book []model.BookTransaction) decimal.Decimal {
	adjusted := bookBalance
	for _, t := range book {
		adjusted = adjusted.Add(t.Amount) // signed: debit positive, credit negative
	}
	return statementBalance.Sub(adjusted)
}

// Compute recomputes the variance from current session state: unmatched book
// transactions adjust the book side as at initiate, reconciling items adjust
// the side their type belongs to.
func Compute(sess *model.ReconciliationSession) Breakdown {
	b := Breakdown{
		StatementBalance: sess.StatementBalance,
		BookBalance:      sess.BookBalance,
	}

	for _, t := range sess.UnmatchedBook() {
		if t.Side() == model.SideDebit {
			b.UnmatchedDebits = b.UnmatchedDebits.Add(t.Amount)
		} else {
			b.UnmatchedCredits = b.UnmatchedCredits.Add(t.Amount.Abs())
		}
	}

	for _, item := range sess.Items {
		amount := item.Amount.Abs()
		switch item.Type {
		case model.ItemOutstandingDeposit:
			b.OutstandingDeposits = b.OutstandingDeposits.Add(amount)
		case model.ItemOutstandingCheck:
			b.OutstandingChecks = b.OutstandingChecks.Add(amount)
		case model.ItemBankCharge:
			b.BankCharges = b.BankCharges.Add(amount)
		case model.ItemInterestEarned:
			b.InterestEarned = b.InterestEarned.Add(amount)
		case model.ItemNSFCheck:
			b.NSFChecks = b.NSFChecks.Add(amount)
		case model.ItemBankError:
			b.BankErrors = b.BankErrors.Add(item.Amount) // signed as entered
		case model.ItemBookError:
			b.BookErrors = b.BookErrors.Add(item.Amount) // signed as entered
		}
	}

	// Bank side: deposits in transit raise it, outstanding checks lower it,
	// signed bank errors correct it.
	b.AdjustedStatement = b.StatementBalance.
		Add(b.OutstandingDeposits).
		Sub(b.OutstandingChecks).
		Add(b.BankErrors)

	// Book side: unmatched activity as at initiate, then interest raises it,
	// charges and NSF checks lower it, signed book errors correct it.
	b.AdjustedBook = b.BookBalance.
		Add(b.UnmatchedDebits).
		Sub(b.UnmatchedCredits).
		Add(b.InterestEarned).
		Sub(b.BankCharges).
		Sub(b.NSFChecks).
		Add(b.BookErrors)

	b.Variance = b.AdjustedStatement.Sub(b.AdjustedBook)
	return b
}
