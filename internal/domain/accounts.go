package domain

import (
	"context"
	"errors"
	"fmt"
)

// AccountService handles account creation and lookup.
type AccountService struct {
	accounts AccountRepository
	refs     ReferenceGenerator
}

// NewAccountService creates a new instance of AccountService.
func NewAccountService(accounts AccountRepository, refs ReferenceGenerator) *AccountService {
	return &AccountService{
		accounts: accounts,
		refs:     refs,
	}
}

// CreateAccount opens a new account for the user with a zero balance in the
// default currency. Account numbers are generated at random and verified
// unique by the store's unique index; collisions are retried up to the
// attempt budget.
func (s *AccountService) CreateAccount(ctx context.Context, userID int64, accountType AccountType) (*Account, error) {
	if err := ValidateAccountType(accountType); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		number, err := s.refs.AccountNumber()
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}

		account := NewAccount(userID, accountType, number)
		err = s.accounts.Create(ctx, account)
		if errors.Is(err, ErrDuplicateAccountNumber) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		return account, nil
	}

	return nil, ErrAccountNumberExhausted
}

// GetAccount retrieves a single account by id.
func (s *AccountService) GetAccount(ctx context.Context, id int64) (*Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccountsForUser retrieves the user's accounts in creation order.
func (s *AccountService) ListAccountsForUser(ctx context.Context, userID int64) ([]*Account, error) {
	accounts, err := s.accounts.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
