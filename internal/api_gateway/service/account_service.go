package service

import (
	"context"

	"github.com/bizdesk-posting-ledger/internal/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo account.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
	}
}

// CreateAccount adds an account to an organization's chart. The code must be
// unique within the organization; the repository reports collisions.
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, params CreateAccountParams) (*account.Account, error) {
	acc, err := account.New(params.OrganizationID, params.Code, params.Name, params.Type, params.Subtype, params.OpeningBalance)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// GetAccountByID retrieves an account by its ID, returns ErrAccountNotFound if not found
func (s *AccountServiceImpl) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// ListAccounts returns every account of an organization
func (s *AccountServiceImpl) ListAccounts(ctx context.Context, organizationID uuid.UUID) ([]*account.Account, error) {
	return s.accountRepo.ListByOrganization(ctx, organizationID)
}

// DeactivateAccount soft-deletes an account
func (s *AccountServiceImpl) DeactivateAccount(ctx context.Context, id uuid.UUID) error {
	return s.accountRepo.Deactivate(ctx, id)
}

// GetComputedBalance derives an account's balance from its ledger lines,
// signed by the account type's normal balance.
func (s *AccountServiceImpl) GetComputedBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	return s.accountRepo.ComputedBalance(ctx, id)
}
