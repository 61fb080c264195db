package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/bookclose/recon/internal/id"
	"github.com/bookclose/recon/internal/model"
)

const dateFormat = "2006-01-02"

// Store is a SQLite-backed ledger. It implements Service,
// AccountRepository, TransactionRepository, and session persistence.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path and runs
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrations returns the schema statements. Each string is a single SQL
// statement (SQLite executes one at a time).
func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id              INTEGER PRIMARY KEY,
			name            TEXT NOT NULL,
			type            TEXT NOT NULL,
			cash            INTEGER NOT NULL DEFAULT 0,
			description     TEXT NOT NULL DEFAULT '',
			last_reconciled TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id          TEXT PRIMARY KEY,
			date        TEXT NOT NULL,
			description TEXT NOT NULL,
			reference   TEXT NOT NULL DEFAULT '',
			created_by  TEXT NOT NULL DEFAULT '',
			posted      INTEGER NOT NULL DEFAULT 0,
			reversed_by TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS ledger_lines (
			id          TEXT PRIMARY KEY,
			entry_id    TEXT NOT NULL REFERENCES ledger_entries(id),
			account_id  INTEGER NOT NULL REFERENCES accounts(id),
			date        TEXT NOT NULL,
			description TEXT NOT NULL,
			debit       TEXT NOT NULL DEFAULT '0',
			credit      TEXT NOT NULL DEFAULT '0',
			reference   TEXT NOT NULL DEFAULT '',
			reconciled  INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lines_account_date ON ledger_lines(account_id, date)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id             TEXT PRIMARY KEY,
			account_id     INTEGER NOT NULL,
			statement_date TEXT NOT NULL,
			period_start   TEXT NOT NULL,
			status         TEXT NOT NULL,
			state          TEXT NOT NULL,
			updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_account ON sessions(account_id, status)`,
	}
}

func (s *Store) migrate() error {
	for _, stmt := range migrations() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}

// SeedAccounts inserts chart-of-accounts rows, skipping existing ids.
func (s *Store) SeedAccounts(ctx context.Context, accts []model.Account) error {
	for _, a := range accts {
		cash := 0
		if a.Cash {
			cash = 1
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO accounts (id, name, type, cash, description, last_reconciled)
			VALUES (?, ?, ?, ?, ?, ?)
		`, a.ID, a.Name, string(a.Type), cash, a.Description, a.LastReconciled)
		if err != nil {
			return fmt.Errorf("seeding account %d: %w", a.ID, err)
		}
	}
	return nil
}

// FindByID implements AccountRepository.
func (s *Store) FindByID(ctx context.Context, accountID int) (model.Account, bool, error) {
	var a model.Account
	var typ string
	var cash int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, cash, description, last_reconciled
		FROM accounts WHERE id = ?
	`, accountID).Scan(&a.ID, &a.Name, &typ, &cash, &a.Description, &a.LastReconciled)
	if err == sql.ErrNoRows {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, fmt.Errorf("querying account %d: %w", accountID, err)
	}
	a.Type = model.AccountType(typ)
	a.Cash = cash == 1
	return a, true, nil
}

// FindByAccount implements TransactionRepository. Lines are returned in
// date then id order with signed amounts (debit positive, credit negative).
func (s *Store) FindByAccount(ctx context.Context, accountID int, start, end time.Time) ([]model.BookTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.date, l.description, l.debit, l.credit, l.reference, l.reconciled, e.posted
		FROM ledger_lines l
		JOIN ledger_entries e ON e.id = l.entry_id
		WHERE l.account_id = ? AND l.date >= ? AND l.date <= ?
		ORDER BY l.date, l.id
	`, accountID, start.Format(dateFormat), end.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("querying ledger lines: %w", err)
	}
	defer rows.Close()

	var txns []model.BookTransaction
	for rows.Next() {
		var (
			txn                         model.BookTransaction
			dateStr, debitStr, credStr string
			reconciled, posted         int
		)
		if err := rows.Scan(&txn.ID, &dateStr, &txn.Description, &debitStr, &credStr, &txn.Reference, &reconciled, &posted); err != nil {
			return nil, fmt.Errorf("scanning ledger line: %w", err)
		}
		txn.Date, err = time.Parse(dateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing line date %q: %w", dateStr, err)
		}
		debit, err := decimal.NewFromString(debitStr)
		if err != nil {
			return nil, fmt.Errorf("parsing debit %q: %w", debitStr, err)
		}
		credit, err := decimal.NewFromString(credStr)
		if err != nil {
			return nil, fmt.Errorf("parsing credit %q: %w", credStr, err)
		}
		txn.Amount = debit.Sub(credit)
		txn.Currency = "USD"
		txn.Posted = posted == 1
		txn.Reconciled = reconciled == 1
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// CalculateAccountBalance implements Service. The balance is the sum of
// debits minus credits on the account through asOf. Amounts are summed as
// decimals in Go; SQLite float aggregation would drift.
func (s *Store) CalculateAccountBalance(ctx context.Context, accountID int, asOf time.Time, includeUnposted bool) (BalanceResult, error) {
	query := `
		SELECT l.debit, l.credit
		FROM ledger_lines l
		JOIN ledger_entries e ON e.id = l.entry_id
		WHERE l.account_id = ? AND l.date <= ?`
	if !includeUnposted {
		query += ` AND e.posted = 1`
	}

	rows, err := s.db.QueryContext(ctx, query, accountID, asOf.Format(dateFormat))
	if err != nil {
		return BalanceResult{}, fmt.Errorf("querying balance lines: %w", err)
	}
	defer rows.Close()

	balance := decimal.Zero
	for rows.Next() {
		var debitStr, credStr string
		if err := rows.Scan(&debitStr, &credStr); err != nil {
			return BalanceResult{}, fmt.Errorf("scanning balance line: %w", err)
		}
		debit, err := decimal.NewFromString(debitStr)
		if err != nil {
			return BalanceResult{}, fmt.Errorf("parsing debit %q: %w", debitStr, err)
		}
		credit, err := decimal.NewFromString(credStr)
		if err != nil {
			return BalanceResult{}, fmt.Errorf("parsing credit %q: %w", credStr, err)
		}
		balance = balance.Add(debit).Sub(credit)
	}
	if err := rows.Err(); err != nil {
		return BalanceResult{}, err
	}

	return BalanceResult{AccountID: accountID, AsOf: asOf, Balance: balance}, nil
}

// PostJournalEntry implements Service. The entry must balance; debits and
// credits are checked before anything is written.
func (s *Store) PostJournalEntry(ctx context.Context, entry JournalEntry, actor string, autoPost bool) (PostingResult, error) {
	if len(entry.Lines) < 2 {
		return PostingResult{}, fmt.Errorf("entry needs at least two lines, got %d", len(entry.Lines))
	}
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, l := range entry.Lines {
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		return PostingResult{}, fmt.Errorf("entry does not balance: debits %s != credits %s",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}

	year, month := entry.Date.Year(), int(entry.Date.Month())
	seq, err := s.nextEntrySeq(ctx, year, month)
	if err != nil {
		return PostingResult{}, err
	}
	entryID := id.FormatEntryID(year, month, seq)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PostingResult{}, fmt.Errorf("beginning posting tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	posted := 0
	if autoPost {
		posted = 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, date, description, reference, created_by, posted)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entryID, entry.Date.Format(dateFormat), entry.Description, entry.Reference, actor, posted)
	if err != nil {
		return PostingResult{}, fmt.Errorf("inserting entry %s: %w", entryID, err)
	}

	for i, l := range entry.Lines {
		lineID := id.FormatLineID(entryID, i)
		desc := l.Description
		if desc == "" {
			desc = entry.Description
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ledger_lines (id, entry_id, account_id, date, description, debit, credit, reference)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, lineID, entryID, l.AccountID, entry.Date.Format(dateFormat), desc,
			l.Debit.String(), l.Credit.String(), entry.Reference)
		if err != nil {
			return PostingResult{}, fmt.Errorf("inserting line %s: %w", lineID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return PostingResult{}, fmt.Errorf("committing entry %s: %w", entryID, err)
	}
	return PostingResult{EntryID: entryID, Posted: autoPost}, nil
}

// ReverseJournalEntry implements Service. The reversal is a new entry with
// debits and credits swapped; the original records what reversed it.
func (s *Store) ReverseJournalEntry(ctx context.Context, originalEntryID, reason, actor string) (ReversalResult, error) {
	var date, description, reversedBy string
	err := s.db.QueryRowContext(ctx, `
		SELECT date, description, reversed_by FROM ledger_entries WHERE id = ?
	`, originalEntryID).Scan(&date, &description, &reversedBy)
	if err == sql.ErrNoRows {
		return ReversalResult{}, fmt.Errorf("entry %s not found", originalEntryID)
	}
	if err != nil {
		return ReversalResult{}, fmt.Errorf("querying entry %s: %w", originalEntryID, err)
	}
	if reversedBy != "" {
		return ReversalResult{}, fmt.Errorf("entry %s already reversed by %s", originalEntryID, reversedBy)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, debit, credit, description FROM ledger_lines WHERE entry_id = ? ORDER BY id
	`, originalEntryID)
	if err != nil {
		return ReversalResult{}, fmt.Errorf("querying lines of %s: %w", originalEntryID, err)
	}
	defer rows.Close()

	var lines []JournalLine
	for rows.Next() {
		var l JournalLine
		var debitStr, credStr string
		if err := rows.Scan(&l.AccountID, &debitStr, &credStr, &l.Description); err != nil {
			return ReversalResult{}, fmt.Errorf("scanning line: %w", err)
		}
		debit, err := decimal.NewFromString(debitStr)
		if err != nil {
			return ReversalResult{}, fmt.Errorf("parsing debit %q: %w", debitStr, err)
		}
		credit, err := decimal.NewFromString(credStr)
		if err != nil {
			return ReversalResult{}, fmt.Errorf("parsing credit %q: %w", credStr, err)
		}
		// Swap sides.
		l.Debit = credit
		l.Credit = debit
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return ReversalResult{}, err
	}

	entryDate, err := time.Parse(dateFormat, date)
	if err != nil {
		return ReversalResult{}, fmt.Errorf("parsing entry date %q: %w", date, err)
	}

	result, err := s.PostJournalEntry(ctx, JournalEntry{
		Date:        entryDate,
		Description: fmt.Sprintf("Reversal of %s: %s", originalEntryID, reason),
		Reference:   originalEntryID,
		Lines:       lines,
	}, actor, true)
	if err != nil {
		return ReversalResult{}, fmt.Errorf("posting reversal of %s: %w", originalEntryID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE ledger_entries SET reversed_by = ? WHERE id = ?
	`, result.EntryID, originalEntryID)
	if err != nil {
		return ReversalResult{}, fmt.Errorf("marking %s reversed: %w", originalEntryID, err)
	}

	return ReversalResult{OriginalEntryID: originalEntryID, ReversalEntryID: result.EntryID}, nil
}

// FinalizeReconciliation implements Service.
func (s *Store) FinalizeReconciliation(ctx context.Context, accountID int, lineIDs []string, statementDate time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning finalize tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, lineID := range lineIDs {
		if _, err := tx.ExecContext(ctx, `
			UPDATE ledger_lines SET reconciled = 1 WHERE id = ?
		`, lineID); err != nil {
			return fmt.Errorf("flagging line %s reconciled: %w", lineID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts SET last_reconciled = ? WHERE id = ?
	`, statementDate.Format(dateFormat), accountID); err != nil {
		return fmt.Errorf("stamping account %d: %w", accountID, err)
	}

	return tx.Commit()
}

// nextEntrySeq returns the next entry sequence for a month.
func (s *Store) nextEntrySeq(ctx context.Context, year, month int) (int, error) {
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM ledger_entries WHERE id LIKE ?
	`, prefix+"%")
	if err != nil {
		return 0, fmt.Errorf("querying entry ids: %w", err)
	}
	defer rows.Close()

	maxSeq := 0
	for rows.Next() {
		var entryID string
		if err := rows.Scan(&entryID); err != nil {
			return 0, fmt.Errorf("scanning entry id: %w", err)
		}
		if !strings.HasPrefix(entryID, prefix) {
			continue
		}
		_, _, seq, err := id.ParseEntryID(entryID)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}

// SaveSession upserts a session. The full session is stored as JSON with
// query columns alongside.
func (s *Store) SaveSession(ctx context.Context, sess *model.ReconciliationSession) error {
	state, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshaling session %s: %w", sess.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, account_id, statement_date, period_start, status, state, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			status     = excluded.status,
			state      = excluded.state,
			updated_at = datetime('now')
	`, sess.ID, sess.BankAccountID, sess.StatementDate.Format(dateFormat),
		sess.PeriodStart.Format(dateFormat), string(sess.Status), string(state))
	if err != nil {
		return fmt.Errorf("saving session %s: %w", sess.ID, err)
	}
	return nil
}

// GetSession loads a session by id. Returns (nil, nil) if absent.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*model.ReconciliationSession, error) {
	var state string
	err := s.db.QueryRowContext(ctx, `
		SELECT state FROM sessions WHERE id = ?
	`, sessionID).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session %s: %w", sessionID, err)
	}

	var sess model.ReconciliationSession
	if err := json.Unmarshal([]byte(state), &sess); err != nil {
		return nil, fmt.Errorf("unmarshaling session %s: %w", sessionID, err)
	}
	return &sess, nil
}

// ActiveSessions returns all INITIATED sessions for an account.
func (s *Store) ActiveSessions(ctx context.Context, accountID int) ([]*model.ReconciliationSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT state FROM sessions WHERE account_id = ? AND status = ?
	`, accountID, string(model.StatusInitiated))
	if err != nil {
		return nil, fmt.Errorf("querying active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.ReconciliationSession
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		var sess model.ReconciliationSession
		if err := json.Unmarshal([]byte(state), &sess); err != nil {
			return nil, fmt.Errorf("unmarshaling session: %w", err)
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}
