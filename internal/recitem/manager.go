// Package recitem manages reconciling items: the book-vs-bank differences
// tracked and optionally adjusted rather than matched.
package recitem

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookclose/recon/internal/ledger"
	"github.com/bookclose/recon/internal/model"
	"github.com/bookclose/recon/internal/recon"
)

// Manager adds and removes reconciling items, posting paired adjusting
// entries through the ledger collaborator when asked.
type Manager struct {
	ledger          ledger.Service
	chargeAccount   int // designated expense account for bank charges
	interestAccount int // designated income account for interest earned
}

// NewManager creates a Manager.
func NewManager(svc ledger.Service, chargeAccount, interestAccount int) *Manager {
	return &Manager{
		ledger:          svc,
		chargeAccount:   chargeAccount,
		interestAccount: interestAccount,
	}
}

// AddParams holds parameters for adding a reconciling item.
type AddParams struct {
	Type                 model.ItemType
	Amount               decimal.Decimal
	Description          string
	Reference            string
	Actor                string
	CreateAdjustingEntry bool
}

// Add validates and appends a reconciling item to the session. For bank
// charges and interest, an adjusting entry is posted first and its id
// stored on the item; requesting one for any other type fails. Nothing is
// added when posting fails.
func (m *Manager) Add(ctx context.Context, sess *model.ReconciliationSession, params AddParams) (model.ReconciliationItem, error) {
	var details []string
	if params.Amount.IsZero() {
		details = append(details, "amount must be non-zero")
	}
	if strings.TrimSpace(params.Description) == "" {
		details = append(details, "description must not be blank")
	}
	if !params.Type.Valid() {
		details = append(details, "unknown item type "+string(params.Type))
	}
	if len(details) > 0 {
		return model.ReconciliationItem{}, recon.Fail(recon.KindValidation, details)
	}

	item := model.ReconciliationItem{
		ID:          uuid.NewString(),
		Type:        params.Type,
		Amount:      params.Amount,
		Description: params.Description,
		Reference:   params.Reference,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   params.Actor,
	}

	if params.CreateAdjustingEntry {
		if !params.Type.AutoAdjustable() {
			return model.ReconciliationItem{}, recon.Errf(recon.KindBusinessRule,
				"item type %s does not support adjusting entries", params.Type)
		}

		entry := m.adjustingEntry(sess.BankAccountID, params)
		result, err := m.ledger.PostJournalEntry(ctx, entry, params.Actor, true)
		if err != nil {
			return model.ReconciliationItem{}, recon.Dependency("posting adjusting entry", err)
		}
		item.AdjustingEntryID = result.EntryID
	}

	sess.Items = append(sess.Items, item)
	return item, nil
}

// adjustingEntry builds the two-line entry for an auto-adjustable item.
func (m *Manager) adjustingEntry(bankAccountID int, params AddParams) ledger.JournalEntry {
	amount := params.Amount.Abs()
	entry := ledger.JournalEntry{
		Date:        time.Now().UTC(),
		Description: params.Description,
		Reference:   params.Reference,
	}

	switch params.Type {
	case model.ItemBankCharge:
		// Expense up, bank down.
		entry.Lines = []ledger.JournalLine{
			{AccountID: m.chargeAccount, Debit: amount},
			{AccountID: bankAccountID, Credit: amount},
		}
	case model.ItemInterestEarned:
		// Bank up, income up.
		entry.Lines = []ledger.JournalLine{
			{AccountID: bankAccountID, Debit: amount},
			{AccountID: m.interestAccount, Credit: amount},
		}
	}
	return entry
}

// Remove deletes an item from the session. A linked adjusting entry is
// reversed first when requested; reversal failure aborts the removal.
func (m *Manager) Remove(ctx context.Context, sess *model.ReconciliationSession, itemID, reason, actor string, reverseAdjustingEntry bool) (model.ReconciliationItem, error) {
	item, ok := sess.ItemByID(itemID)
	if !ok {
		return model.ReconciliationItem{}, recon.Errf(recon.KindNotFound, "item %s not found", itemID)
	}

	if reverseAdjustingEntry && item.AdjustingEntryID != "" {
		if _, err := m.ledger.ReverseJournalEntry(ctx, item.AdjustingEntryID, reason, actor); err != nil {
			return model.ReconciliationItem{}, recon.Dependency("reversing adjusting entry", err)
		}
	}

	for i, it := range sess.Items {
		if it.ID == itemID {
			sess.Items = append(sess.Items[:i], sess.Items[i+1:]...)
			break
		}
	}
	return item, nil
}
