package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Account is one row in the chart of accounts.
type Account struct {
	ID             int
	Name           string
	Type           AccountType
	Cash           bool // bank/cash asset accounts eligible for reconciliation
	Description    string
	LastReconciled string // statement date of the most recent completed reconciliation, "" if never
}
