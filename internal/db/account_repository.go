package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbank/ledger-service/internal/domain"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		pool: pool,
	}
}

// Create persists a new account draft and assigns its ID.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (account_number, account_type, balance, currency, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	// Use transaction if available, otherwise use pool
	var row pgx.Row
	if tx := getTx(ctx); tx != nil {
		row = tx.QueryRow(ctx, query,
			account.AccountNumber,
			string(account.Type),
			account.Balance,
			account.Currency,
			account.UserID,
			account.CreatedAt,
		)
	} else {
		row = r.pool.QueryRow(ctx, query,
			account.AccountNumber,
			string(account.Type),
			account.Balance,
			account.Currency,
			account.UserID,
			account.CreatedAt,
		)
	}

	if err := row.Scan(&account.ID); err != nil {
		if isUniqueViolation(err, "accounts_account_number_key") {
			return domain.ErrDuplicateAccountNumber
		}
		return fmt.Errorf("failed to create account: %w", mapStoreError(err))
	}

	return nil
}

// GetByID retrieves an account by its internal identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := accountSelect + ` WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// Lock acquires a pessimistic lock on the account for the duration of the
// transaction. This method MUST be called within a transaction context.
// Uses SELECT ... FOR UPDATE to lock the row.
func (r *AccountRepository) Lock(ctx context.Context, id int64) (*domain.Account, error) {
	query := accountSelect + ` WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

// GetByUser retrieves all accounts owned by a user in creation order.
func (r *AccountRepository) GetByUser(ctx context.Context, userID int64) ([]*domain.Account, error) {
	query := accountSelect + ` WHERE user_id = $1 ORDER BY id`

	var rows pgx.Rows
	var err error
	if tx := getTx(ctx); tx != nil {
		rows, err = tx.Query(ctx, query, userID)
	} else {
		rows, err = r.pool.Query(ctx, query, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", mapStoreError(err))
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", mapStoreError(err))
	}

	return accounts, nil
}

// UpdateBalance persists the account's balance.
func (r *AccountRepository) UpdateBalance(ctx context.Context, account *domain.Account) error {
	query := `UPDATE accounts SET balance = $2 WHERE id = $1`

	var err error
	var rowsAffected int64

	// Use transaction if available, otherwise use pool
	if tx := getTx(ctx); tx != nil {
		result, execErr := tx.Exec(ctx, query, account.ID, account.Balance)
		err = execErr
		rowsAffected = result.RowsAffected()
	} else {
		result, execErr := r.pool.Exec(ctx, query, account.ID, account.Balance)
		err = execErr
		rowsAffected = result.RowsAffected()
	}

	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", mapStoreError(err))
	}

	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

const accountSelect = `
	SELECT id, account_number, account_type, balance, currency, user_id, created_at
	FROM accounts`

func (r *AccountRepository) scanOne(ctx context.Context, query string, id int64) (*domain.Account, error) {
	var row pgx.Row
	if tx := getTx(ctx); tx != nil {
		row = tx.QueryRow(ctx, query, id)
	} else {
		row = r.pool.QueryRow(ctx, query, id)
	}

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", mapStoreError(err))
	}
	return account, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	var accountType string
	err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&accountType,
		&account.Balance,
		&account.Currency,
		&account.UserID,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.Type = domain.AccountType(accountType)
	return &account, nil
}
