package match

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookclose/recon/internal/model"
	"github.com/bookclose/recon/internal/recon"
)

// Sanity-check bounds for manual matches. Exceeding them warns, never blocks.
var manualWarnAmountGap = decimal.NewFromInt(100)

const manualWarnDateGapDays = 30

// ManualMatch links a book and a statement transaction at confidence 1.0.
// Both sides must be unmatched. Large amount or date gaps produce warnings.
func ManualMatch(sess *model.ReconciliationSession, bookID, stmtID, reason, actor string) (model.TransactionMatch, []string, error) {
	book, ok := sess.BookByID(bookID)
	if !ok {
		return model.TransactionMatch{}, nil, recon.Errf(recon.KindNotFound, "book transaction %s not in session", bookID)
	}
	stmt, ok := sess.StatementByID(stmtID)
	if !ok {
		return model.TransactionMatch{}, nil, recon.Errf(recon.KindNotFound, "statement transaction %s not in session", stmtID)
	}

	if existing, matched := sess.MatchForBook(bookID); matched {
		return model.TransactionMatch{}, nil, recon.Errf(recon.KindConflict,
			"book transaction %s already matched by %s", bookID, existing.ID)
	}
	if existing, matched := sess.MatchForStatement(stmtID); matched {
		return model.TransactionMatch{}, nil, recon.Errf(recon.KindConflict,
			"statement transaction %s already matched by %s", stmtID, existing.ID)
	}

	var warnings []string
	amountGap := book.Amount.Sub(stmt.Amount).Abs()
	if amountGap.GreaterThan(manualWarnAmountGap) {
		warnings = append(warnings, fmt.Sprintf("amount gap %s exceeds %s", amountGap.StringFixed(2), manualWarnAmountGap))
	}
	if gap := dateGapDays(book.Date, stmt.Date); gap > manualWarnDateGapDays {
		warnings = append(warnings, fmt.Sprintf("date gap %d days exceeds %d", gap, manualWarnDateGapDays))
	}

	m := model.TransactionMatch{
		ID:          uuid.NewString(),
		BookID:      bookID,
		StatementID: stmtID,
		Type:        model.MatchManual,
		Confidence:  1.0,
		Criteria:    []string{"Manual match: " + reason},
		MatchedAt:   time.Now().UTC(),
		MatchedBy:   actor,
	}
	sess.Matches = append(sess.Matches, m)
	return m, warnings, nil
}

// BreakMatch removes a match from the session. Both transactions fall back
// to the unmatched pools and are immediately eligible for re-matching.
func BreakMatch(sess *model.ReconciliationSession, matchID string) (model.TransactionMatch, error) {
	for i, m := range sess.Matches {
		if m.ID == matchID {
			sess.Matches = append(sess.Matches[:i], sess.Matches[i+1:]...)
			return m, nil
		}
	}
	return model.TransactionMatch{}, recon.Errf(recon.KindNotFound, "match %s not found", matchID)
}
