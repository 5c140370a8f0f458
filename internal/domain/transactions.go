package domain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Default feed sizes when the caller doesn't ask for a specific limit.
const (
	DefaultUserFeedLimit    = 10
	DefaultAccountFeedLimit = 20
)

// TransactionService posts single-account monetary movements and keeps each
// account's balance consistent with its ledger entries.
type TransactionService struct {
	accounts     AccountRepository
	transactions TransactionRepository
	txManager    TransactionManager
	refs         ReferenceGenerator
	// Optional event publisher to emit domain events.
	eventPublisher EventPublisher
}

// NewTransactionService creates a new instance of TransactionService.
// Pass nil for eventPublisher if no events should be emitted.
func NewTransactionService(
	accounts AccountRepository,
	transactions TransactionRepository,
	txManager TransactionManager,
	refs ReferenceGenerator,
	eventPublisher EventPublisher,
) *TransactionService {
	return &TransactionService{
		accounts:       accounts,
		transactions:   transactions,
		txManager:      txManager,
		refs:           refs,
		eventPublisher: eventPublisher,
	}
}

// PostTransaction applies a deposit or withdrawal to a single account.
// The caller supplies an unsigned magnitude; the signed ledger amount is
// derived from the transaction type.
//
// The posting executes atomically:
//  1. Lock the account row
//  2. Reject withdrawals that would take the balance below zero
//  3. Generate a unique transaction reference
//  4. Insert the ledger entry
//  5. Apply the signed amount to the balance
//  6. Commit
//
// Returns the persisted transaction or an error if the posting fails.
func (s *TransactionService) PostTransaction(
	ctx context.Context,
	accountID int64,
	userID int64,
	amount decimal.Decimal,
	description string,
	txType TransactionType,
) (*Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if err := ValidatePostingType(txType); err != nil {
		return nil, err
	}
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}

	signed := amount
	if txType == TransactionTypeWithdrawal {
		signed = amount.Neg()
	}

	var posted *Transaction
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.accounts.Lock(txCtx, accountID)
		if err != nil {
			return err
		}

		if txType == TransactionTypeWithdrawal && account.Balance.Add(signed).IsNegative() {
			return ErrInsufficientFunds
		}

		ref, err := nextReference(txCtx, s.refs, s.transactions)
		if err != nil {
			return err
		}

		posted = NewTransaction(accountID, userID, signed, description, txType, ref)
		if err := s.transactions.Create(txCtx, posted); err != nil {
			return fmt.Errorf("failed to create transaction record: %w", err)
		}

		account.Balance = account.Balance.Add(signed)
		if err := s.accounts.UpdateBalance(txCtx, account); err != nil {
			return fmt.Errorf("failed to update account balance: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	// After commit, publish the posting event best-effort so transient broker
	// failures don't make an already-committed posting appear to fail.
	if s.eventPublisher != nil {
		go func(t *Transaction) {
			if err := s.eventPublisher.PublishTransactionPosted(context.Background(), t); err != nil {
				slog.Warn("failed to publish transaction posted event", "reference", t.ReferenceID, "error", err)
			}
		}(posted)
	}

	return posted, nil
}

// ListTransactionsForUser retrieves the user's transactions, newest first.
// A non-positive limit falls back to the default feed size.
func (s *TransactionService) ListTransactionsForUser(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = DefaultUserFeedLimit
	}
	transactions, err := s.transactions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// ListTransactionsForAccount retrieves the account's transactions, newest
// first. A non-positive limit falls back to the default feed size.
func (s *TransactionService) ListTransactionsForAccount(ctx context.Context, accountID int64, limit int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = DefaultAccountFeedLimit
	}
	transactions, err := s.transactions.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}
