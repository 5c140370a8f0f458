package domain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// TransferService moves funds between two accounts as a single atomic unit
// composed of two linked ledger entries.
type TransferService struct {
	users        UserRepository
	accounts     AccountRepository
	transactions TransactionRepository
	txManager    TransactionManager
	refs         ReferenceGenerator
	// Optional event publisher to emit domain events.
	eventPublisher EventPublisher
}

// NewTransferService creates a new instance of TransferService.
// Pass nil for eventPublisher if no events should be emitted.
func NewTransferService(
	users UserRepository,
	accounts AccountRepository,
	transactions TransactionRepository,
	txManager TransactionManager,
	refs ReferenceGenerator,
	eventPublisher EventPublisher,
) *TransferService {
	return &TransferService{
		users:          users,
		accounts:       accounts,
		transactions:   transactions,
		txManager:      txManager,
		refs:           refs,
		eventPublisher: eventPublisher,
	}
}

// Transfer moves amount from the sender's first account to the recipient's
// first account. The recipient is addressed by username.
//
// Resolution failures (unknown recipient, missing accounts) are terminal and
// leave no state behind. The monetary movement itself executes atomically:
//  1. Lock both account rows, in ascending account-id order
//  2. Reject if the sender's balance is below the amount
//  3. Insert the debit leg on the sender's account
//  4. Insert the credit leg on the recipient's account
//  5. Apply both balance changes
//  6. Commit
//
// Both legs are committed together or neither is. Each leg carries its own
// independently generated reference.
//
// Returns the debit and credit transactions in that order.
func (s *TransferService) Transfer(
	ctx context.Context,
	senderUserID int64,
	recipientUsername string,
	amount decimal.Decimal,
) (*Transaction, *Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, nil, err
	}

	sender, err := s.users.GetByID(ctx, senderUserID)
	if err != nil {
		return nil, nil, err
	}

	recipient, err := s.users.GetByUsername(ctx, recipientUsername)
	if err != nil {
		return nil, nil, err
	}

	senderAccounts, err := s.accounts.GetByUser(ctx, senderUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve sender accounts: %w", err)
	}
	if len(senderAccounts) == 0 {
		return nil, nil, ErrNoSenderAccount
	}
	senderAccountID := senderAccounts[0].ID

	recipientAccounts, err := s.accounts.GetByUser(ctx, recipient.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve recipient accounts: %w", err)
	}
	if len(recipientAccounts) == 0 {
		return nil, nil, ErrNoRecipientAccount
	}
	recipientAccountID := recipientAccounts[0].ID

	if senderAccountID == recipientAccountID {
		return nil, nil, ErrSameAccount
	}

	var debit, credit *Transaction
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		senderAccount, recipientAccount, err := s.lockPair(txCtx, senderAccountID, recipientAccountID)
		if err != nil {
			return err
		}

		if senderAccount.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		debitRef, err := nextReference(txCtx, s.refs, s.transactions)
		if err != nil {
			return err
		}
		creditRef, err := nextReference(txCtx, s.refs, s.transactions)
		if err != nil {
			return err
		}

		debit = NewTransaction(
			senderAccount.ID, sender.ID, amount.Neg(),
			fmt.Sprintf("Transfer to %s", recipient.Username),
			TransactionTypeTransfer, debitRef,
		)
		credit = NewTransaction(
			recipientAccount.ID, recipient.ID, amount,
			fmt.Sprintf("Transfer from %s", sender.Username),
			TransactionTypeTransfer, creditRef,
		)

		if err := s.transactions.Create(txCtx, debit); err != nil {
			return fmt.Errorf("failed to create debit leg: %w", err)
		}
		if err := s.transactions.Create(txCtx, credit); err != nil {
			return fmt.Errorf("failed to create credit leg: %w", err)
		}

		senderAccount.Balance = senderAccount.Balance.Sub(amount)
		recipientAccount.Balance = recipientAccount.Balance.Add(amount)

		if err := s.accounts.UpdateBalance(txCtx, senderAccount); err != nil {
			return fmt.Errorf("failed to update sender balance: %w", err)
		}
		if err := s.accounts.UpdateBalance(txCtx, recipientAccount); err != nil {
			return fmt.Errorf("failed to update recipient balance: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, nil, err
	}

	// After commit, publish the transfer event best-effort so transient broker
	// failures don't make an already-committed transfer appear to fail.
	if s.eventPublisher != nil {
		go func(d, c *Transaction) {
			if err := s.eventPublisher.PublishTransferCompleted(context.Background(), d, c); err != nil {
				slog.Warn("failed to publish transfer completed event", "reference", d.ReferenceID, "error", err)
			}
		}(debit, credit)
	}

	return debit, credit, nil
}

// lockPair locks both accounts in ascending account-id order so two
// concurrent transfers touching the same accounts cannot deadlock, and
// returns them as (sender, recipient).
func (s *TransferService) lockPair(ctx context.Context, senderID, recipientID int64) (*Account, *Account, error) {
	firstID, secondID := senderID, recipientID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}

	first, err := s.accounts.Lock(ctx, firstID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock account %d: %w", firstID, err)
	}
	second, err := s.accounts.Lock(ctx, secondID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock account %d: %w", secondID, err)
	}

	if first.ID == senderID {
		return first, second, nil
	}
	return second, first, nil
}
