// Package session orchestrates reconciliation sessions: the completion
// state machine, per-session serialization, and the operations a host CLI
// or API maps onto.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookclose/recon/internal/auditlog"
	"github.com/bookclose/recon/internal/ledger"
	"github.com/bookclose/recon/internal/match"
	"github.com/bookclose/recon/internal/model"
	"github.com/bookclose/recon/internal/recitem"
	"github.com/bookclose/recon/internal/recon"
	"github.com/bookclose/recon/internal/statement"
	"github.com/bookclose/recon/internal/variance"
)

// DefaultMaxPeriodDays bounds the reconciliation period.
const DefaultMaxPeriodDays = 90

// Store persists sessions. Implemented by ledger.Store.
type Store interface {
	SaveSession(ctx context.Context, sess *model.ReconciliationSession) error
	GetSession(ctx context.Context, sessionID string) (*model.ReconciliationSession, error)
	ActiveSessions(ctx context.Context, accountID int) ([]*model.ReconciliationSession, error)
}

// Config tunes the session service.
type Config struct {
	AutoThreshold   float64 // automatic match acceptance, default 0.7
	MaxPeriodDays   int     // default 90
	BatchLimit      int     // statement import batch limit, default 10000
	ChargeAccount   int     // designated expense account for bank charges
	InterestAccount int     // designated income account for interest
}

// Service owns all session mutation. Every mutating operation is serialized
// per session id; reads observe the store's saved snapshot.
type Service struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	ledger    ledger.Service
	accounts  ledger.AccountRepository
	txns      ledger.TransactionRepository
	store     Store
	audit     auditlog.Log
	items     *recitem.Manager
	processor *statement.Processor

	autoThreshold float64
	maxPeriodDays int
}

// NewService creates a session Service.
func NewService(lsvc ledger.Service, accts ledger.AccountRepository, txns ledger.TransactionRepository, store Store, audit auditlog.Log, cfg Config) *Service {
	if cfg.AutoThreshold <= 0 {
		cfg.AutoThreshold = match.DefaultAutoThreshold
	}
	if cfg.MaxPeriodDays <= 0 {
		cfg.MaxPeriodDays = DefaultMaxPeriodDays
	}
	return &Service{
		locks:         make(map[string]*sync.Mutex),
		ledger:        lsvc,
		accounts:      accts,
		txns:          txns,
		store:         store,
		audit:         audit,
		items:         recitem.NewManager(lsvc, cfg.ChargeAccount, cfg.InterestAccount),
		processor:     statement.NewProcessor(cfg.BatchLimit),
		autoThreshold: cfg.AutoThreshold,
		maxPeriodDays: cfg.MaxPeriodDays,
	}
}

// InitiateParams holds parameters for starting a session.
type InitiateParams struct {
	BankAccountID    int
	StatementDate    time.Time
	PeriodStart      time.Time
	StatementBalance decimal.Decimal
	StatementRef     string // optional
	Actor            string
}

// Initiate starts a reconciliation session: validates the account and
// period, rejects overlap with an active session, snapshots the unreconciled
// ledger lines and book balance, and computes the initial variance.
func (s *Service) Initiate(ctx context.Context, params InitiateParams) (*model.ReconciliationSession, error) {
	account, found, err := s.accounts.FindByID(ctx, params.BankAccountID)
	if err != nil {
		return nil, recon.Dependency("looking up account", err)
	}
	if !found {
		return nil, recon.Errf(recon.KindNotFound, "account %d not found", params.BankAccountID)
	}
	if !account.Cash {
		return nil, recon.Errf(recon.KindValidation,
			"account %d (%s) is not a cash/bank account", account.ID, account.Name)
	}

	if params.StatementDate.Before(params.PeriodStart) {
		return nil, recon.Errf(recon.KindValidation, "statement date precedes period start")
	}
	if days := int(params.StatementDate.Sub(params.PeriodStart).Hours() / 24); days > s.maxPeriodDays {
		return nil, recon.Errf(recon.KindValidation,
			"period of %d days exceeds maximum of %d", days, s.maxPeriodDays)
	}

	active, err := s.store.ActiveSessions(ctx, params.BankAccountID)
	if err != nil {
		return nil, recon.Dependency("checking active sessions", err)
	}
	for _, other := range active {
		if !params.StatementDate.Before(other.PeriodStart) && !other.StatementDate.Before(params.PeriodStart) {
			return nil, recon.Errf(recon.KindConflict,
				"active session %s overlaps period for account %d", other.ID, params.BankAccountID)
		}
	}

	lines, err := s.txns.FindByAccount(ctx, params.BankAccountID, params.PeriodStart, params.StatementDate)
	if err != nil {
		return nil, recon.Dependency("fetching ledger lines", err)
	}
	var book []model.BookTransaction
	for _, t := range lines {
		if t.Posted && !t.Reconciled {
			book = append(book, t)
		}
	}

	balance, err := s.ledger.CalculateAccountBalance(ctx, params.BankAccountID, params.StatementDate, false)
	if err != nil {
		return nil, recon.Dependency("calculating book balance", err)
	}

	sess := &model.ReconciliationSession{
		ID:               uuid.NewString(),
		BankAccountID:    params.BankAccountID,
		StatementRef:     params.StatementRef,
		StatementDate:    params.StatementDate,
		PeriodStart:      params.PeriodStart,
		StatementBalance: params.StatementBalance,
		BookBalance:      balance.Balance,
		Status:           model.StatusInitiated,
		Book:             book,
		InitiatedBy:      params.Actor,
		InitiatedAt:      time.Now().UTC(),
	}
	sess.Variance = variance.Initial(sess.StatementBalance, sess.BookBalance, sess.Book)

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, recon.Dependency("saving session", err)
	}
	s.record(params.Actor, "initiate", sess.ID,
		fmt.Sprintf("account %d, period %s..%s, %d unreconciled lines",
			params.BankAccountID, params.PeriodStart.Format("2006-01-02"),
			params.StatementDate.Format("2006-01-02"), len(book)))
	return sess, nil
}

// ImportStatement validates, normalizes, and categorizes statement rows and
// attaches them to the session. All-or-nothing: a failed batch leaves the
// session untouched. Re-import is allowed until matching has started.
func (s *Service) ImportStatement(ctx context.Context, sessionID string, rows []statement.RawRow, validate bool, actor string) (*statement.ImportResult, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(sess.Statement) > 0 && len(sess.Matches) > 0 {
		return nil, recon.Errf(recon.KindConflict,
			"statement already imported and matching started on session %s", sessionID)
	}

	result, err := s.processor.Process(ctx, rows, validate)
	if err != nil {
		return nil, err
	}

	sess.Statement = result.Transactions
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, recon.Dependency("saving session", err)
	}
	s.record(actor, "import_statement", sessionID,
		fmt.Sprintf("%d rows imported, %d warnings", len(result.Transactions), len(result.Warnings)))
	return result, nil
}

// AutoMatchOpts tunes one automatic matching run.
type AutoMatchOpts struct {
	Threshold float64 // 0 means the service default
	Actor     string
	DryRun    bool // score and report without committing
}

// AutoMatch scores all unmatched pairs and commits the automatic matches to
// the session in one step. The scoring itself never touches the session;
// with DryRun nothing is committed.
func (s *Service) AutoMatch(ctx context.Context, sessionID string, opts AutoMatchOpts) (*match.Result, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(sess.Statement) == 0 {
		return nil, recon.Errf(recon.KindValidation, "no statement imported on session %s", sessionID)
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = s.autoThreshold
	}
	engine := match.NewEngine(threshold)
	result := engine.Match(sess.UnmatchedBook(), sess.UnmatchedStatement(), opts.Actor)

	if opts.DryRun {
		return result, nil
	}

	sess.Matches = append(sess.Matches, result.Automatic...)
	sess.Variance = variance.Compute(sess).Variance
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, recon.Dependency("saving session", err)
	}
	s.record(opts.Actor, "auto_match", sessionID,
		fmt.Sprintf("%d automatic, %d suggested, %d/%d unmatched",
			result.Summary.AutoMatched, result.Summary.Suggested,
			result.Summary.UnmatchedBook, result.Summary.UnmatchedStatement))
	return result, nil
}

// ManualMatchResult is a created manual match plus its sanity warnings.
type ManualMatchResult struct {
	Match    model.TransactionMatch
	Warnings []string
}

// ManualMatch links two unmatched transactions at confidence 1.0.
func (s *Service) ManualMatch(ctx context.Context, sessionID, bookID, stmtID, reason, actor string) (*ManualMatchResult, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	m, warnings, err := match.ManualMatch(sess, bookID, stmtID, reason, actor)
	if err != nil {
		return nil, err
	}

	sess.Variance = variance.Compute(sess).Variance
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, recon.Dependency("saving session", err)
	}
	s.record(actor, "manual_match", sessionID,
		fmt.Sprintf("match %s: book %s <-> statement %s (%s)", m.ID, bookID, stmtID, reason))
	return &ManualMatchResult{Match: m, Warnings: warnings}, nil
}

// BreakMatch removes a match, returning both transactions to the unmatched
// pools.
func (s *Service) BreakMatch(ctx context.Context, sessionID, matchID, reason, actor string) (model.TransactionMatch, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return model.TransactionMatch{}, err
	}

	m, err := match.BreakMatch(sess, matchID)
	if err != nil {
		return model.TransactionMatch{}, err
	}

	sess.Variance = variance.Compute(sess).Variance
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return model.TransactionMatch{}, recon.Dependency("saving session", err)
	}
	s.record(actor, "break_match", sessionID,
		fmt.Sprintf("match %s broken: %s", matchID, reason))
	return m, nil
}

// ItemResult is an added or removed item plus the recomputed variance.
type ItemResult struct {
	Item     model.ReconciliationItem
	Variance decimal.Decimal
}

// AddItem appends a reconciling item and recomputes the variance.
func (s *Service) AddItem(ctx context.Context, sessionID string, params recitem.AddParams) (*ItemResult, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.Add(ctx, sess, params)
	if err != nil {
		return nil, err
	}

	sess.Variance = variance.Compute(sess).Variance
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, recon.Dependency("saving session", err)
	}
	s.record(params.Actor, "add_item", sessionID,
		fmt.Sprintf("%s %s (%s)", item.Type, item.Amount.StringFixed(2), item.ID))
	return &ItemResult{Item: item, Variance: sess.Variance}, nil
}

// RemoveItem removes a reconciling item, reversing its adjusting entry
// first when requested, and recomputes the variance.
func (s *Service) RemoveItem(ctx context.Context, sessionID, itemID, reason, actor string, reverseAdjustingEntry bool) (*ItemResult, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.Remove(ctx, sess, itemID, reason, actor, reverseAdjustingEntry)
	if err != nil {
		return nil, err
	}

	sess.Variance = variance.Compute(sess).Variance
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, recon.Dependency("saving session", err)
	}
	s.record(actor, "remove_item", sessionID,
		fmt.Sprintf("%s removed: %s", itemID, reason))
	return &ItemResult{Item: item, Variance: sess.Variance}, nil
}

// CompleteOpts controls completion gating.
type CompleteOpts struct {
	Actor                string
	ForceComplete        bool
	AllowVariance        bool
	MaxVarianceThreshold decimal.Decimal
}

// CompleteResult is the completed session and its final variance breakdown.
type CompleteResult struct {
	Session   *model.ReconciliationSession
	Breakdown variance.Breakdown
}

// Complete recomputes the final variance and closes the session. It fails
// unless the variance is zero, AllowVariance admits it within the
// threshold, or ForceComplete is set. On success the matched ledger lines
// are flagged reconciled and the session becomes immutable.
func (s *Service) Complete(ctx context.Context, sessionID string, opts CompleteOpts) (*CompleteResult, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	breakdown := variance.Compute(sess)
	v := breakdown.Variance

	allowed := v.IsZero() || opts.ForceComplete ||
		(opts.AllowVariance && v.Abs().LessThanOrEqual(opts.MaxVarianceThreshold))
	if !allowed {
		return nil, recon.Errf(recon.KindBusinessRule,
			"variance %s is outside the allowed threshold", v.StringFixed(2))
	}

	// Persist the completed status first; the ledger must not carry
	// reconciled flags for a session that is still mutable.
	sess.Status = model.StatusCompleted
	sess.Variance = v
	sess.CompletedBy = opts.Actor
	sess.CompletedAt = time.Now().UTC()
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, recon.Dependency("saving session", err)
	}

	var matchedLines []string
	for _, m := range sess.Matches {
		matchedLines = append(matchedLines, m.BookID)
	}
	if err := s.ledger.FinalizeReconciliation(ctx, sess.BankAccountID, matchedLines, sess.StatementDate); err != nil {
		// Roll the status back so the session stays mutable while the
		// ledger is unchanged.
		sess.Status = model.StatusInitiated
		sess.CompletedBy = ""
		sess.CompletedAt = time.Time{}
		if saveErr := s.store.SaveSession(ctx, sess); saveErr != nil {
			return nil, recon.Dependency("rolling back failed completion", saveErr)
		}
		return nil, recon.Dependency("finalizing reconciliation", err)
	}
	s.record(opts.Actor, "complete", sessionID,
		fmt.Sprintf("variance %s, force=%t", v.StringFixed(2), opts.ForceComplete))
	return &CompleteResult{Session: sess, Breakdown: breakdown}, nil
}

// Get returns a session by id.
func (s *Service) Get(ctx context.Context, sessionID string) (*model.ReconciliationSession, error) {
	return s.load(ctx, sessionID)
}

// lockSession serializes mutation per session id.
func (s *Service) lockSession(sessionID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// load fetches a session or reports NotFound.
func (s *Service) load(ctx context.Context, sessionID string) (*model.ReconciliationSession, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, recon.Dependency("loading session", err)
	}
	if sess == nil {
		return nil, recon.Errf(recon.KindNotFound, "session %s not found", sessionID)
	}
	return sess, nil
}

// loadMutable additionally rejects completed sessions.
func (s *Service) loadMutable(ctx context.Context, sessionID string) (*model.ReconciliationSession, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == model.StatusCompleted {
		return nil, recon.Errf(recon.KindConflict, "session %s is completed and immutable", sessionID)
	}
	return sess, nil
}

// record appends an audit entry. Best-effort: an audit write failure never
// rolls back a persisted operation.
func (s *Service) record(actor, action, sessionID, details string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Append([]auditlog.Entry{{
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Action:    action,
		SessionID: sessionID,
		Details:   details,
	}})
}
