package accounts

import (
	"context"

	"github.com/bookclose/recon/internal/model"
)

// Service provides in-memory lookup over a chart of accounts. It satisfies
// the ledger.AccountRepository contract and backs tests and db seeding.
type Service struct {
	accounts []model.Account
	byID     map[int]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[int]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID}
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id int) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// CashAccounts returns the accounts eligible for bank reconciliation.
func (s *Service) CashAccounts() []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Cash {
			result = append(result, a)
		}
	}
	return result
}

// FindByID implements the account repository contract.
func (s *Service) FindByID(_ context.Context, id int) (model.Account, bool, error) {
	a, ok := s.byID[id]
	return a, ok, nil
}
