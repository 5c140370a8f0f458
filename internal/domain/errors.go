package domain

import "errors"

var (
	// ErrAccountNotFound is returned when an account lookup misses.
	ErrAccountNotFound = errors.New("account not found")

	// ErrRecipientNotFound is returned when a transfer recipient username
	// doesn't resolve to a user.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrUserNotFound is returned when a user lookup by id misses.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateAccountNumber is returned by the store when an account
	// number collides with an existing account.
	ErrDuplicateAccountNumber = errors.New("account number already exists")

	// ErrDuplicateReference is returned by the store when a transaction
	// reference collides with an existing transaction.
	ErrDuplicateReference = errors.New("transaction reference already exists")

	// ErrInvalidAccountType is returned when the account type is not
	// checking or savings.
	ErrInvalidAccountType = errors.New("invalid account type")

	// ErrInvalidTransactionType is returned when a posted transaction is not
	// a deposit or a withdrawal.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidAmount is returned when an amount is not a positive decimal
	// with at most two fractional digits.
	ErrInvalidAmount = errors.New("invalid amount: must be positive")

	// ErrInsufficientFunds is returned when a withdrawal or transfer would
	// take the funding account's balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoSenderAccount is returned when the transfer sender owns no account.
	ErrNoSenderAccount = errors.New("sender has no account")

	// ErrNoRecipientAccount is returned when the transfer recipient owns no account.
	ErrNoRecipientAccount = errors.New("recipient has no account")

	// ErrSameAccount is returned when a transfer would debit and credit the
	// same account.
	ErrSameAccount = errors.New("sender and recipient must be different accounts")

	// ErrAccountNumberExhausted is returned when account number generation
	// keeps colliding past the retry budget.
	ErrAccountNumberExhausted = errors.New("account number generation exhausted retries")

	// ErrReferenceExhausted is returned when transaction reference generation
	// keeps colliding past the retry budget.
	ErrReferenceExhausted = errors.New("transaction reference generation exhausted retries")

	// ErrStoreUnavailable is returned when the ledger store cannot be
	// reached; callers may retry the whole operation.
	ErrStoreUnavailable = errors.New("ledger store unavailable")
)
