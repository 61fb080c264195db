package match

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclose/recon/internal/model"
)

func bookTx(id string, date time.Time, amount, desc, ref string) model.BookTransaction {
	return model.BookTransaction{
		ID: id, Date: date, Amount: dec(amount),
		Description: desc, Reference: ref, Posted: true,
	}
}

func stmtTx(id string, date time.Time, amount, desc, ref string) model.StatementTransaction {
	return model.StatementTransaction{
		ID: id, Date: date, Amount: dec(amount),
		Description: desc, Reference: ref,
	}
}

func TestEngine_ExactPairAutoMatches(t *testing.T) {
	books := []model.BookTransaction{
		bookTx("b1", day(2025, 1, 5), "100.00", "ACME PAYMENT", "INV100"),
	}
	stmts := []model.StatementTransaction{
		stmtTx("s1", day(2025, 1, 5), "100.00", "ACME PAYMENT", "INV100"),
	}

	r := NewEngine(DefaultAutoThreshold).Match(books, stmts, "alice")
	require.Len(t, r.Automatic, 1)
	m := r.Automatic[0]
	assert.Equal(t, "b1", m.BookID)
	assert.Equal(t, "s1", m.StatementID)
	assert.Equal(t, model.MatchAutomatic, m.Type)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, "alice", m.MatchedBy)
	assert.Empty(t, r.Suggested)
	assert.Empty(t, r.UnmatchedBook)
	assert.Empty(t, r.UnmatchedStatement)
}

func TestEngine_WeekGapNoRefSuggestedOnly(t *testing.T) {
	books := []model.BookTransaction{
		bookTx("b1", day(2025, 1, 5), "100.00", "VENDOR PAYMENT", ""),
	}
	stmts := []model.StatementTransaction{
		stmtTx("s1", day(2025, 1, 12), "100.00", "ACH TRANSFER", ""),
	}

	r := NewEngine(DefaultAutoThreshold).Match(books, stmts, "alice")
	assert.Empty(t, r.Automatic)
	require.Len(t, r.Suggested, 1)
	assert.Equal(t, 0.55, r.Suggested[0].Confidence)
	assert.Equal(t, TierLow, r.Suggested[0].Tier)
	// Suggestions do not consume either side.
	assert.Len(t, r.UnmatchedBook, 1)
	assert.Len(t, r.UnmatchedStatement, 1)
}

func TestEngine_BelowCutoffDiscarded(t *testing.T) {
	books := []model.BookTransaction{
		bookTx("b1", day(2025, 1, 5), "100.00", "RENT", ""),
	}
	stmts := []model.StatementTransaction{
		stmtTx("s1", day(2025, 3, 1), "900.00", "PAYROLL", ""),
	}

	r := NewEngine(DefaultAutoThreshold).Match(books, stmts, "alice")
	assert.Empty(t, r.Automatic)
	assert.Empty(t, r.Suggested)
	assert.Len(t, r.UnmatchedBook, 1)
	assert.Len(t, r.UnmatchedStatement, 1)
}

func TestEngine_GreedyNeverReusesTransactions(t *testing.T) {
	// Two book rows both score HIGH against the single statement row; only
	// the better candidate wins, the loser returns to the unmatched pool.
	books := []model.BookTransaction{
		bookTx("b1", day(2025, 1, 6), "100.00", "ACME PAYMENT", "INV100"),
		bookTx("b2", day(2025, 1, 5), "100.00", "ACME PAYMENT", "INV100"),
	}
	stmts := []model.StatementTransaction{
		stmtTx("s1", day(2025, 1, 5), "100.00", "ACME PAYMENT", "INV100"),
	}

	r := NewEngine(DefaultAutoThreshold).Match(books, stmts, "alice")
	require.Len(t, r.Automatic, 1)
	assert.Equal(t, "b2", r.Automatic[0].BookID)
	assert.Empty(t, r.Suggested)
	require.Len(t, r.UnmatchedBook, 1)
	assert.Equal(t, "b1", r.UnmatchedBook[0].ID)
	assert.Empty(t, r.UnmatchedStatement)
}

func TestEngine_TieBreakPrefersSmallerDateGap(t *testing.T) {
	// Gaps of 2 and 3 days score the same date component, so both
	// candidates tie on confidence; the smaller gap must win.
	books := []model.BookTransaction{
		bookTx("b1", day(2025, 1, 8), "50.00", "COFFEE SUPPLY", "PO7"),
		bookTx("b2", day(2025, 1, 7), "50.00", "COFFEE SUPPLY", "PO7"),
	}
	stmts := []model.StatementTransaction{
		stmtTx("s1", day(2025, 1, 5), "50.00", "COFFEE SUPPLY", "PO7"),
	}

	r := NewEngine(DefaultAutoThreshold).Match(books, stmts, "alice")
	require.Len(t, r.Automatic, 1)
	assert.Equal(t, "b2", r.Automatic[0].BookID)
	require.Len(t, r.UnmatchedBook, 1)
	assert.Equal(t, "b1", r.UnmatchedBook[0].ID)
}

func TestEngine_TieBreakFirstSeenOrder(t *testing.T) {
	// Identical twins: everything ties, so the first-seen pair wins.
	books := []model.BookTransaction{
		bookTx("b1", day(2025, 1, 5), "25.00", "DUPLICATE", "R1"),
		bookTx("b2", day(2025, 1, 5), "25.00", "DUPLICATE", "R1"),
	}
	stmts := []model.StatementTransaction{
		stmtTx("s1", day(2025, 1, 5), "25.00", "DUPLICATE", "R1"),
		stmtTx("s2", day(2025, 1, 5), "25.00", "DUPLICATE", "R1"),
	}

	r := NewEngine(DefaultAutoThreshold).Match(books, stmts, "alice")
	require.Len(t, r.Automatic, 2)
	assert.Equal(t, "b1", r.Automatic[0].BookID)
	assert.Equal(t, "s1", r.Automatic[0].StatementID)
	assert.Equal(t, "b2", r.Automatic[1].BookID)
	assert.Equal(t, "s2", r.Automatic[1].StatementID)
}

func TestEngine_HighTierBelowThresholdStaysSuggested(t *testing.T) {
	books := []model.BookTransaction{
		bookTx("b1", day(2025, 1, 5), "100.00", "ACME PAYMENT", "INV100"),
	}
	stmts := []model.StatementTransaction{
		stmtTx("s1", day(2025, 1, 5), "100.00", "ACME PAYMENT", "INV100"),
	}

	// A threshold above the pair's confidence keeps it out of the
	// automatic set even though the tier is HIGH.
	r := NewEngine(1.01).Match(books, stmts, "alice")
	assert.Empty(t, r.Automatic)
	require.Len(t, r.Suggested, 1)
	assert.Equal(t, TierHigh, r.Suggested[0].Tier)
}

func TestEngine_Summary(t *testing.T) {
	books := []model.BookTransaction{
		bookTx("b1", day(2025, 1, 5), "100.00", "ACME PAYMENT", "INV100"),
		bookTx("b2", day(2025, 1, 8), "40.00", "OFFICE SUPPLY", ""),
		bookTx("b3", day(2025, 1, 9), "999.99", "ONE OFF", ""),
	}
	stmts := []model.StatementTransaction{
		stmtTx("s1", day(2025, 1, 5), "100.00", "ACME PAYMENT", "INV100"),
		stmtTx("s2", day(2025, 1, 12), "40.00", "CARD PURCHASE", ""),
	}

	r := NewEngine(DefaultAutoThreshold).Match(books, stmts, "alice")
	assert.Equal(t, 3, r.Summary.BookTotal)
	assert.Equal(t, 2, r.Summary.StatementTotal)
	assert.Equal(t, 1, r.Summary.AutoMatched)
	assert.Equal(t, 1, r.Summary.Suggested)
	assert.Equal(t, 2, r.Summary.UnmatchedBook)
	assert.Equal(t, 1, r.Summary.UnmatchedStatement)
}

func TestEngine_ParallelScoringIsDeterministic(t *testing.T) {
	// Enough pairs to cross the parallel threshold; results must be
	// identical to the sequential path.
	var books []model.BookTransaction
	var stmts []model.StatementTransaction
	for i := 0; i < 80; i++ {
		d := day(2025, 1, 1).AddDate(0, 0, i%28)
		amt := fmt.Sprintf("%d.00", 10+i)
		books = append(books, bookTx(fmt.Sprintf("b%03d", i), d, amt, "RECURRING VENDOR", fmt.Sprintf("R%03d", i)))
		stmts = append(stmts, stmtTx(fmt.Sprintf("s%03d", i), d, amt, "RECURRING VENDOR", fmt.Sprintf("R%03d", i)))
	}
	require.GreaterOrEqual(t, len(books)*len(stmts), parallelPairThreshold)

	e := NewEngine(DefaultAutoThreshold)
	parallel := e.scorePairs(books, stmts)
	sequential := e.scoreRange(books, stmts, 0)
	require.Equal(t, len(sequential), len(parallel))
	for i := range sequential {
		assert.Equal(t, sequential[i].order, parallel[i].order)
		assert.Equal(t, sequential[i].Confidence, parallel[i].Confidence)
	}

	r := e.Match(books, stmts, "alice")
	assert.Equal(t, 80, r.Summary.AutoMatched)
	for _, m := range r.Automatic {
		assert.Equal(t, m.BookID[1:], m.StatementID[1:])
	}
}

func TestNewEngine_DefaultThreshold(t *testing.T) {
	assert.Equal(t, DefaultAutoThreshold, NewEngine(0).threshold)
	assert.Equal(t, DefaultAutoThreshold, NewEngine(-1).threshold)
	assert.Equal(t, 0.95, NewEngine(0.95).threshold)
}
