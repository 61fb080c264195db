package statement

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bookclose/recon/internal/model"
)

// categoryKeywords maps normalized-description keywords to categories,
// checked in order. First hit wins; the amount sign breaks the remainder.
var categoryKeywords = []struct {
	category model.StatementCategory
	words    []string
}{
	{model.CategoryBankFee, []string{"FEE", "CHARGE", "SVC", "SERVICE CHG"}},
	{model.CategoryInterest, []string{"INTEREST", "INT PMT"}},
	{model.CategoryCheck, []string{"CHECK", "CHK"}},
	{model.CategoryTransfer, []string{"TRANSFER", "XFER", "WIRE"}},
	{model.CategoryWithdrawal, []string{"WITHDRAWAL", "ATM", "CASH OUT"}},
	{model.CategoryDeposit, []string{"DEPOSIT", "DIRECT DEP", "PAYROLL"}},
}

// Categorize derives a statement category from a normalized (uppercased)
// description and the amount sign.
func Categorize(description string, amount decimal.Decimal) model.StatementCategory {
	for _, entry := range categoryKeywords {
		for _, w := range entry.words {
			if strings.Contains(description, w) {
				return entry.category
			}
		}
	}

	if amount.IsPositive() {
		return model.CategoryDeposit
	}
	if amount.IsNegative() {
		return model.CategoryWithdrawal
	}
	return model.CategoryOther
}
