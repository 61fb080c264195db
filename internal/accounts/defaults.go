package accounts

import "github.com/bookclose/recon/internal/model"

// DefaultChart returns the default chart of accounts for a new ledger,
// including the designated counter-accounts for adjusting entries.
func DefaultChart() []model.Account {
	return []model.Account{
		{ID: 1010, Name: "Business Checking", Type: model.AccountTypeAsset, Cash: true, Description: "Primary checking account"},
		{ID: 1020, Name: "Business Savings", Type: model.AccountTypeAsset, Cash: true, Description: "Savings account"},
		{ID: 1210, Name: "Accounts Receivable", Type: model.AccountTypeAsset, Description: "Customer balances owed"},
		{ID: 2010, Name: "Credit Card", Type: model.AccountTypeLiability, Description: "Business credit card"},
		{ID: 3010, Name: "Owner's Equity", Type: model.AccountTypeEquity, Description: "Owner's equity"},
		{ID: 4010, Name: "Service Revenue", Type: model.AccountTypeRevenue},
		{ID: 4030, Name: "Interest Income", Type: model.AccountTypeRevenue, Description: "Bank interest earned"},
		{ID: 5010, Name: "Advertising & Marketing", Type: model.AccountTypeExpense, Description: "Advertising costs"},
		{ID: 5020, Name: "Software & SaaS", Type: model.AccountTypeExpense, Description: "Software subscriptions"},
		{ID: 5060, Name: "Bank Fees", Type: model.AccountTypeExpense, Description: "Bank service charges"},
	}
}
