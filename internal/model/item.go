package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType classifies a reconciling item.
type ItemType string

const (
	ItemOutstandingDeposit ItemType = "OUTSTANDING_DEPOSIT"
	ItemOutstandingCheck   ItemType = "OUTSTANDING_CHECK"
	ItemBankCharge         ItemType = "BANK_CHARGE"
	ItemInterestEarned     ItemType = "INTEREST_EARNED"
	ItemNSFCheck           ItemType = "NSF_CHECK"
	ItemBankError          ItemType = "BANK_ERROR"
	ItemBookError          ItemType = "BOOK_ERROR"
)

// ItemTypes lists all known reconciling item types.
func ItemTypes() []ItemType {
	return []ItemType{
		ItemOutstandingDeposit,
		ItemOutstandingCheck,
		ItemBankCharge,
		ItemInterestEarned,
		ItemNSFCheck,
		ItemBankError,
		ItemBookError,
	}
}

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	for _, known := range ItemTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// AutoAdjustable reports whether an adjusting journal entry can be generated
// for this item type. Only bank charges and interest have a designated
// counter-account.
func (t ItemType) AutoAdjustable() bool {
	return t == ItemBankCharge || t == ItemInterestEarned
}

// ReconciliationItem tracks a book-vs-bank difference that is adjusted or
// carried rather than matched.
type ReconciliationItem struct {
	ID               string
	Type             ItemType
	Amount           decimal.Decimal // non-zero, signed
	Description      string
	Reference        string
	AdjustingEntryID string // set when an adjusting entry was posted
	CreatedAt        time.Time
	CreatedBy        string
}
