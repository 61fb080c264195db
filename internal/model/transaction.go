package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionSide distinguishes the debit and credit sides of a ledger line.
type TransactionSide string

const (
	SideDebit  TransactionSide = "debit"
	SideCredit TransactionSide = "credit"
)

// BookTransaction is an unreconciled cash line from the ledger, snapshotted
// when a reconciliation session is initiated. Read-only inside the engine.
type BookTransaction struct {
	ID          string
	Date        time.Time
	Amount      decimal.Decimal // signed: positive = debit (inflow), negative = credit (outflow)
	Currency    string
	Description string
	Reference   string
	Posted      bool
	Reconciled  bool
}

// Side returns the debit/credit side implied by the signed amount.
func (t BookTransaction) Side() TransactionSide {
	if t.Amount.IsNegative() {
		return SideCredit
	}
	return SideDebit
}

// StatementCategory classifies an imported bank statement row.
type StatementCategory string

const (
	CategoryDeposit    StatementCategory = "DEPOSIT"
	CategoryCheck      StatementCategory = "CHECK"
	CategoryBankFee    StatementCategory = "BANK_FEE"
	CategoryInterest   StatementCategory = "INTEREST"
	CategoryTransfer   StatementCategory = "TRANSFER"
	CategoryWithdrawal StatementCategory = "WITHDRAWAL"
	CategoryOther      StatementCategory = "OTHER"
)

// StatementTransaction is a normalized, categorized bank statement row.
// Immutable once produced by the import processor.
type StatementTransaction struct {
	ID          string
	Date        time.Time
	Amount      decimal.Decimal // signed: positive = deposit, negative = withdrawal
	Description string          // trimmed and uppercased
	Reference   string          // trimmed and uppercased
	Category    StatementCategory
}
