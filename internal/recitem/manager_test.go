package recitem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclose/recon/internal/ledger"
	"github.com/bookclose/recon/internal/model"
	"github.com/bookclose/recon/internal/recon"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeLedger records posted entries and reversals, failing on demand.
type fakeLedger struct {
	posted     []ledger.JournalEntry
	reversed   []string
	postErr    error
	reverseErr error
}

func (f *fakeLedger) CalculateAccountBalance(ctx context.Context, accountID int, asOf time.Time, includeUnposted bool) (ledger.BalanceResult, error) {
	return ledger.BalanceResult{AccountID: accountID, AsOf: asOf}, nil
}

func (f *fakeLedger) PostJournalEntry(ctx context.Context, entry ledger.JournalEntry, actor string, autoPost bool) (ledger.PostingResult, error) {
	if f.postErr != nil {
		return ledger.PostingResult{}, f.postErr
	}
	f.posted = append(f.posted, entry)
	return ledger.PostingResult{EntryID: "JE-0001", Posted: autoPost}, nil
}

func (f *fakeLedger) ReverseJournalEntry(ctx context.Context, originalEntryID, reason, actor string) (ledger.ReversalResult, error) {
	if f.reverseErr != nil {
		return ledger.ReversalResult{}, f.reverseErr
	}
	f.reversed = append(f.reversed, originalEntryID)
	return ledger.ReversalResult{OriginalEntryID: originalEntryID, ReversalEntryID: "JE-0002"}, nil
}

func (f *fakeLedger) FinalizeReconciliation(ctx context.Context, accountID int, lineIDs []string, statementDate time.Time) error {
	return nil
}

const (
	bankAccount     = 1010
	chargeAccount   = 5060
	interestAccount = 4030
)

func newTestManager() (*Manager, *fakeLedger) {
	fake := &fakeLedger{}
	return NewManager(fake, chargeAccount, interestAccount), fake
}

func newItemSession() *model.ReconciliationSession {
	return &model.ReconciliationSession{
		ID:            "sess-1",
		BankAccountID: bankAccount,
		Status:        model.StatusInitiated,
	}
}

func TestAdd_Validation(t *testing.T) {
	m, _ := newTestManager()
	sess := newItemSession()

	_, err := m.Add(context.Background(), sess, AddParams{
		Type:        model.ItemType("BOGUS"),
		Amount:      decimal.Zero,
		Description: "  ",
	})
	oe, ok := recon.As(err)
	require.True(t, ok)
	assert.Equal(t, recon.KindValidation, oe.Kind)
	// All three problems are reported together.
	assert.Len(t, oe.Errors, 3)
	assert.Empty(t, sess.Items)
}

func TestAdd_PlainItem(t *testing.T) {
	m, fake := newTestManager()
	sess := newItemSession()

	item, err := m.Add(context.Background(), sess, AddParams{
		Type:        model.ItemOutstandingCheck,
		Amount:      dec("-200.00"),
		Description: "Check 1042 not cleared",
		Reference:   "CHK1042",
		Actor:       "alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Empty(t, item.AdjustingEntryID)
	assert.Equal(t, "alice", item.CreatedBy)
	assert.Empty(t, fake.posted)
	assert.Len(t, sess.Items, 1)
}

func TestAdd_BankChargeAdjustingEntry(t *testing.T) {
	m, fake := newTestManager()
	sess := newItemSession()

	item, err := m.Add(context.Background(), sess, AddParams{
		Type:                 model.ItemBankCharge,
		Amount:               dec("15.00"),
		Description:          "Monthly service charge",
		Actor:                "alice",
		CreateAdjustingEntry: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "JE-0001", item.AdjustingEntryID)

	require.Len(t, fake.posted, 1)
	entry := fake.posted[0]
	require.Len(t, entry.Lines, 2)
	// Debit bank fee expense, credit the bank account.
	assert.Equal(t, chargeAccount, entry.Lines[0].AccountID)
	assert.Equal(t, "15", entry.Lines[0].Debit.String())
	assert.Equal(t, bankAccount, entry.Lines[1].AccountID)
	assert.Equal(t, "15", entry.Lines[1].Credit.String())
}

func TestAdd_InterestAdjustingEntry(t *testing.T) {
	m, fake := newTestManager()
	sess := newItemSession()

	// Negative amounts post at absolute value.
	_, err := m.Add(context.Background(), sess, AddParams{
		Type:                 model.ItemInterestEarned,
		Amount:               dec("-2.50"),
		Description:          "Interest earned",
		Actor:                "alice",
		CreateAdjustingEntry: true,
	})
	require.NoError(t, err)

	require.Len(t, fake.posted, 1)
	entry := fake.posted[0]
	assert.Equal(t, bankAccount, entry.Lines[0].AccountID)
	assert.Equal(t, "2.5", entry.Lines[0].Debit.String())
	assert.Equal(t, interestAccount, entry.Lines[1].AccountID)
	assert.Equal(t, "2.5", entry.Lines[1].Credit.String())
}

func TestAdd_AdjustingEntryForWrongType(t *testing.T) {
	m, fake := newTestManager()
	sess := newItemSession()

	_, err := m.Add(context.Background(), sess, AddParams{
		Type:                 model.ItemOutstandingDeposit,
		Amount:               dec("500.00"),
		Description:          "Deposit in transit",
		CreateAdjustingEntry: true,
	})
	assert.True(t, recon.IsKind(err, recon.KindBusinessRule))
	assert.Empty(t, fake.posted)
	assert.Empty(t, sess.Items)
}

func TestAdd_PostingFailureAddsNothing(t *testing.T) {
	m, fake := newTestManager()
	fake.postErr = errors.New("ledger offline")
	sess := newItemSession()

	_, err := m.Add(context.Background(), sess, AddParams{
		Type:                 model.ItemBankCharge,
		Amount:               dec("15.00"),
		Description:          "Service charge",
		CreateAdjustingEntry: true,
	})
	assert.True(t, recon.IsKind(err, recon.KindDependency))
	assert.ErrorIs(t, err, fake.postErr)
	assert.Empty(t, sess.Items)
}

func TestRemove_ReversesAdjustingEntry(t *testing.T) {
	m, fake := newTestManager()
	sess := newItemSession()

	item, err := m.Add(context.Background(), sess, AddParams{
		Type:                 model.ItemBankCharge,
		Amount:               dec("15.00"),
		Description:          "Service charge",
		CreateAdjustingEntry: true,
	})
	require.NoError(t, err)

	removed, err := m.Remove(context.Background(), sess, item.ID, "entered twice", "alice", true)
	require.NoError(t, err)
	assert.Equal(t, item.ID, removed.ID)
	assert.Empty(t, sess.Items)
	assert.Equal(t, []string{"JE-0001"}, fake.reversed)
}

func TestRemove_ReversalFailureAborts(t *testing.T) {
	m, fake := newTestManager()
	sess := newItemSession()

	item, err := m.Add(context.Background(), sess, AddParams{
		Type:                 model.ItemBankCharge,
		Amount:               dec("15.00"),
		Description:          "Service charge",
		CreateAdjustingEntry: true,
	})
	require.NoError(t, err)

	fake.reverseErr = errors.New("entry locked")
	_, err = m.Remove(context.Background(), sess, item.ID, "oops", "alice", true)
	assert.True(t, recon.IsKind(err, recon.KindDependency))

	// The item survives an aborted removal.
	assert.Len(t, sess.Items, 1)
}

func TestRemove_SkipReversal(t *testing.T) {
	m, fake := newTestManager()
	sess := newItemSession()

	item, err := m.Add(context.Background(), sess, AddParams{
		Type:                 model.ItemBankCharge,
		Amount:               dec("15.00"),
		Description:          "Service charge",
		CreateAdjustingEntry: true,
	})
	require.NoError(t, err)

	_, err = m.Remove(context.Background(), sess, item.ID, "keep the entry", "alice", false)
	require.NoError(t, err)
	assert.Empty(t, fake.reversed)
	assert.Empty(t, sess.Items)
}

func TestRemove_NotFound(t *testing.T) {
	m, _ := newTestManager()
	sess := newItemSession()

	_, err := m.Remove(context.Background(), sess, "missing", "r", "alice", true)
	assert.True(t, recon.IsKind(err, recon.KindNotFound))
}
