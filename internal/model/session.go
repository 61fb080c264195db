package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a reconciliation session.
// Transitions are monotonic: INITIATED -> COMPLETED, never back.
type SessionStatus string

const (
	StatusInitiated SessionStatus = "INITIATED"
	StatusCompleted SessionStatus = "COMPLETED"
)

// ReconciliationSession holds all state for reconciling one bank account
// against one statement period. Mutated only through the session service;
// immutable once COMPLETED.
type ReconciliationSession struct {
	ID               string
	BankAccountID    int
	StatementRef     string // optional external statement identifier
	StatementDate    time.Time
	PeriodStart      time.Time
	StatementBalance decimal.Decimal
	BookBalance      decimal.Decimal // as of the statement date
	Status           SessionStatus
	Book             []BookTransaction      // ledger snapshot at initiate
	Statement        []StatementTransaction // set by statement import
	Matches          []TransactionMatch
	Items            []ReconciliationItem
	Variance         decimal.Decimal
	InitiatedBy      string
	InitiatedAt      time.Time
	CompletedBy      string
	CompletedAt      time.Time
}

// UnmatchedBook returns book transactions not consumed by any match,
// preserving snapshot order.
func (s *ReconciliationSession) UnmatchedBook() []BookTransaction {
	matched := s.matchedBookIDs()
	var out []BookTransaction
	for _, t := range s.Book {
		if !matched[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// UnmatchedStatement returns statement transactions not consumed by any
// match, preserving import order.
func (s *ReconciliationSession) UnmatchedStatement() []StatementTransaction {
	matched := s.matchedStatementIDs()
	var out []StatementTransaction
	for _, t := range s.Statement {
		if !matched[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// BookByID looks up a book transaction in the session snapshot.
func (s *ReconciliationSession) BookByID(id string) (BookTransaction, bool) {
	for _, t := range s.Book {
		if t.ID == id {
			return t, true
		}
	}
	return BookTransaction{}, false
}

// StatementByID looks up a statement transaction in the session.
func (s *ReconciliationSession) StatementByID(id string) (StatementTransaction, bool) {
	for _, t := range s.Statement {
		if t.ID == id {
			return t, true
		}
	}
	return StatementTransaction{}, false
}

// MatchByID looks up a match in the session.
func (s *ReconciliationSession) MatchByID(id string) (TransactionMatch, bool) {
	for _, m := range s.Matches {
		if m.ID == id {
			return m, true
		}
	}
	return TransactionMatch{}, false
}

// MatchForBook returns the match consuming the given book transaction, if any.
func (s *ReconciliationSession) MatchForBook(bookID string) (TransactionMatch, bool) {
	for _, m := range s.Matches {
		if m.BookID == bookID {
			return m, true
		}
	}
	return TransactionMatch{}, false
}

// MatchForStatement returns the match consuming the given statement
// transaction, if any.
func (s *ReconciliationSession) MatchForStatement(stmtID string) (TransactionMatch, bool) {
	for _, m := range s.Matches {
		if m.StatementID == stmtID {
			return m, true
		}
	}
	return TransactionMatch{}, false
}

// ItemByID looks up a reconciling item in the session.
func (s *ReconciliationSession) ItemByID(id string) (ReconciliationItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ReconciliationItem{}, false
}

func (s *ReconciliationSession) matchedBookIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Matches))
	for _, m := range s.Matches {
		ids[m.BookID] = true
	}
	return ids
}

func (s *ReconciliationSession) matchedStatementIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Matches))
	for _, m := range s.Matches {
		ids[m.StatementID] = true
	}
	return ids
}
