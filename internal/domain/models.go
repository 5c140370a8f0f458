package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates the supported kinds of bank accounts.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

// TransactionType enumerates the supported kinds of ledger movements.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

// TransactionStatus is the lifecycle state of a transaction. Only a single
// state is modeled: every persisted transaction is already applied.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

// DefaultCurrency is assigned to newly created accounts.
const DefaultCurrency = "USD"

// MaxDescriptionLen bounds transaction descriptions.
const MaxDescriptionLen = 140

// Account is a bank account owned by a user. Balance is held as a fixed-point
// decimal and must at all times equal the sum of the signed amounts of the
// account's transactions.
type Account struct {
	ID            int64           // Internal numeric identifier
	AccountNumber string          // Externally facing 10-digit number, unique
	Type          AccountType     // checking or savings
	Balance       decimal.Decimal // Current balance
	Currency      string          // ISO 4217 currency code
	UserID        int64           // Owning user
	CreatedAt     time.Time       // Timestamp when the account was created
}

// Transaction is a single append-only ledger entry. Amount is signed:
// positive amounts credit the account, negative amounts debit it.
// Amount, AccountID and ReferenceID never change once persisted.
type Transaction struct {
	ID          int64             // Internal numeric identifier
	Amount      decimal.Decimal   // Signed amount applied to the account balance
	Description string            // Bounded free text
	Type        TransactionType   // deposit, withdrawal or transfer
	Status      TransactionStatus // Always completed in this model
	Timestamp   time.Time         // Creation time, immutable
	UserID      int64             // Owning user
	AccountID   int64             // Account the amount was applied to
	ReferenceID string            // Externally facing unique reference token
}

// User is the identity collaborator's entity; the ledger core only needs the
// id and the username used to resolve transfer recipients.
type User struct {
	ID       int64
	Username string
}

// NewAccount builds an account draft with a zero balance in the default
// currency. Persistence assigns the ID.
func NewAccount(userID int64, accountType AccountType, accountNumber string) *Account {
	return &Account{
		AccountNumber: accountNumber,
		Type:          accountType,
		Balance:       decimal.Zero,
		Currency:      DefaultCurrency,
		UserID:        userID,
		CreatedAt:     time.Now(),
	}
}

// NewTransaction builds a completed transaction draft for the given account.
// Persistence assigns the ID.
func NewTransaction(accountID, userID int64, amount decimal.Decimal, description string, txType TransactionType, referenceID string) *Transaction {
	return &Transaction{
		Amount:      amount,
		Description: description,
		Type:        txType,
		Status:      TransactionStatusCompleted,
		Timestamp:   time.Now(),
		UserID:      userID,
		AccountID:   accountID,
		ReferenceID: referenceID,
	}
}
