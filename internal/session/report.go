package session

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookclose/recon/internal/model"
	"github.com/bookclose/recon/internal/recon"
	"github.com/bookclose/recon/internal/variance"
)

// Report is a read-only snapshot of a session, assembled for rendering by a
// host CLI or API.
type Report struct {
	SessionID     string    `json:"session_id"`
	AccountID     int       `json:"account_id"`
	AccountName   string    `json:"account_name"`
	Status        string    `json:"status"`
	StatementRef  string    `json:"statement_ref,omitempty"`
	PeriodStart   time.Time `json:"period_start"`
	StatementDate time.Time `json:"statement_date"`
	GeneratedAt   time.Time `json:"generated_at"`

	Summary            ReportSummary      `json:"summary"`
	Matches            []ReportMatch      `json:"matches"`
	UnmatchedBook      []ReportLine       `json:"unmatched_book"`
	UnmatchedStatement []ReportLine       `json:"unmatched_statement"`
	Items              []ReportItem       `json:"items"`
	Variance           variance.Breakdown `json:"variance"`
}

// ReportSummary carries the headline counts.
type ReportSummary struct {
	BookTotal          int `json:"book_total"`
	StatementTotal     int `json:"statement_total"`
	Matched            int `json:"matched"`
	AutoMatched        int `json:"auto_matched"`
	ManualMatched      int `json:"manual_matched"`
	UnmatchedBook      int `json:"unmatched_book"`
	UnmatchedStatement int `json:"unmatched_statement"`
	Items              int `json:"items"`
}

// ReportMatch is one matched pair.
type ReportMatch struct {
	MatchID    string     `json:"match_id"`
	Type       string     `json:"type"`
	Confidence float64    `json:"confidence"`
	Criteria   []string   `json:"criteria"`
	Book       ReportLine `json:"book"`
	Statement  ReportLine `json:"statement"`
	MatchedBy  string     `json:"matched_by"`
}

// ReportLine is one transaction, from either side.
type ReportLine struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// ReportItem is one reconciling item.
type ReportItem struct {
	ID               string          `json:"id"`
	Type             string          `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	Reference        string          `json:"reference,omitempty"`
	AdjustingEntryID string          `json:"adjusting_entry_id,omitempty"`
}

// GenerateReport assembles a report from the session's saved snapshot. Safe
// to call concurrently with mutations; the snapshot is whatever the store
// last persisted.
func (s *Service) GenerateReport(ctx context.Context, sessionID string) (*Report, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	account, found, err := s.accounts.FindByID(ctx, sess.BankAccountID)
	if err != nil {
		return nil, recon.Dependency("looking up account", err)
	}
	if !found {
		return nil, recon.Errf(recon.KindNotFound, "account %d not found", sess.BankAccountID)
	}

	return buildReport(sess, account), nil
}

func buildReport(sess *model.ReconciliationSession, account model.Account) *Report {
	r := &Report{
		SessionID:     sess.ID,
		AccountID:     sess.BankAccountID,
		AccountName:   account.Name,
		Status:        string(sess.Status),
		StatementRef:  sess.StatementRef,
		PeriodStart:   sess.PeriodStart,
		StatementDate: sess.StatementDate,
		GeneratedAt:   time.Now().UTC(),
		Variance:      variance.Compute(sess),
	}

	for _, m := range sess.Matches {
		rm := ReportMatch{
			MatchID:    m.ID,
			Type:       string(m.Type),
			Confidence: m.Confidence,
			Criteria:   m.Criteria,
			MatchedBy:  m.MatchedBy,
		}
		if book, ok := sess.BookByID(m.BookID); ok {
			rm.Book = bookLine(book)
		}
		if stmt, ok := sess.StatementByID(m.StatementID); ok {
			rm.Statement = statementLine(stmt)
		}
		r.Matches = append(r.Matches, rm)
		if m.Type == model.MatchAutomatic {
			r.Summary.AutoMatched++
		}
		if m.Type == model.MatchManual {
			r.Summary.ManualMatched++
		}
	}

	for _, t := range sess.UnmatchedBook() {
		r.UnmatchedBook = append(r.UnmatchedBook, bookLine(t))
	}
	for _, t := range sess.UnmatchedStatement() {
		r.UnmatchedStatement = append(r.UnmatchedStatement, statementLine(t))
	}
	for _, item := range sess.Items {
		r.Items = append(r.Items, ReportItem{
			ID:               item.ID,
			Type:             string(item.Type),
			Amount:           item.Amount,
			Description:      item.Description,
			Reference:        item.Reference,
			AdjustingEntryID: item.AdjustingEntryID,
		})
	}

	r.Summary.BookTotal = len(sess.Book)
	r.Summary.StatementTotal = len(sess.Statement)
	r.Summary.Matched = len(sess.Matches)
	r.Summary.UnmatchedBook = len(r.UnmatchedBook)
	r.Summary.UnmatchedStatement = len(r.UnmatchedStatement)
	r.Summary.Items = len(sess.Items)
	return r
}

func bookLine(t model.BookTransaction) ReportLine {
	return ReportLine{
		ID:          t.ID,
		Date:        t.Date,
		Amount:      t.Amount,
		Description: t.Description,
		Reference:   t.Reference,
	}
}

func statementLine(t model.StatementTransaction) ReportLine {
	return ReportLine{
		ID:          t.ID,
		Date:        t.Date,
		Amount:      t.Amount,
		Description: t.Description,
		Reference:   t.Reference,
		Category:    string(t.Category),
	}
}
