package domain

import "context"

// AccountRepository defines the interface for account data access operations.
// This follows the Repository pattern to abstract data persistence logic.
type AccountRepository interface {
	// Create persists a new account draft and assigns its ID.
	// Returns ErrDuplicateAccountNumber if the account number collides.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by its internal identifier.
	// Returns ErrAccountNotFound if the account doesn't exist.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// GetByUser retrieves all accounts owned by a user in creation order.
	GetByUser(ctx context.Context, userID int64) ([]*Account, error)

	// Lock acquires a row lock on the account for the duration of the
	// transaction and returns the current state. Must be called within a
	// transaction context. Returns ErrAccountNotFound if the account
	// doesn't exist.
	Lock(ctx context.Context, id int64) (*Account, error)

	// UpdateBalance persists the account's balance.
	UpdateBalance(ctx context.Context, account *Account) error
}

// TransactionRepository defines the interface for ledger entry data access.
// Entries are append-only: there is no update or delete.
type TransactionRepository interface {
	// Create persists a new transaction draft and assigns its ID.
	// Returns ErrDuplicateReference if the reference collides.
	Create(ctx context.Context, transaction *Transaction) error

	// ReferenceExists reports whether a transaction with the given
	// reference already exists. Used to verify generated references
	// before insert.
	ReferenceExists(ctx context.Context, referenceID string) (bool, error)

	// ListByUser retrieves the user's transactions, newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Transaction, error)

	// ListByAccount retrieves the account's transactions, newest first.
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*Transaction, error)
}

// UserRepository resolves users owned by the identity collaborator. The
// ledger core only reads users; it never creates or modifies them.
type UserRepository interface {
	// GetByID retrieves a user by id. Returns ErrUserNotFound on a miss.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByUsername retrieves a user by username.
	// Returns ErrRecipientNotFound on a miss.
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// TransactionManager defines the interface for managing database transactions.
// This abstraction allows the service layer to work with transactions
// without being coupled to a specific database implementation.
type TransactionManager interface {
	// WithTransaction executes the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// Otherwise, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher publishes domain events to external systems (e.g. RabbitMQ).
type EventPublisher interface {
	PublishTransactionPosted(ctx context.Context, transaction *Transaction) error
	PublishTransferCompleted(ctx context.Context, debit, credit *Transaction) error
}
