package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbank/ledger-service/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using
// PostgreSQL. Ledger entries are append-only; there is no update or delete.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{
		pool: pool,
	}
}

// Create persists a new ledger entry and assigns its ID.
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			amount, description, transaction_type, status,
			timestamp, user_id, account_id, reference_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	// Use transaction if available, otherwise use pool
	var row pgx.Row
	if tx := getTx(ctx); tx != nil {
		row = tx.QueryRow(ctx, query,
			transaction.Amount,
			transaction.Description,
			string(transaction.Type),
			string(transaction.Status),
			transaction.Timestamp,
			transaction.UserID,
			transaction.AccountID,
			transaction.ReferenceID,
		)
	} else {
		row = r.pool.QueryRow(ctx, query,
			transaction.Amount,
			transaction.Description,
			string(transaction.Type),
			string(transaction.Status),
			transaction.Timestamp,
			transaction.UserID,
			transaction.AccountID,
			transaction.ReferenceID,
		)
	}

	if err := row.Scan(&transaction.ID); err != nil {
		if isUniqueViolation(err, "transactions_reference_id_key") {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("failed to create transaction: %w", mapStoreError(err))
	}

	return nil
}

// ReferenceExists reports whether a transaction with the given reference
// already exists.
func (r *TransactionRepository) ReferenceExists(ctx context.Context, referenceID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE reference_id = $1)`

	var row pgx.Row
	if tx := getTx(ctx); tx != nil {
		row = tx.QueryRow(ctx, query, referenceID)
	} else {
		row = r.pool.QueryRow(ctx, query, referenceID)
	}

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reference: %w", mapStoreError(err))
	}
	return exists, nil
}

// ListByUser retrieves the user's transactions, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	query := transactionSelect + ` WHERE user_id = $1 ORDER BY timestamp DESC, id DESC LIMIT $2`
	return r.list(ctx, query, userID, limit)
}

// ListByAccount retrieves the account's transactions, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*domain.Transaction, error) {
	query := transactionSelect + ` WHERE account_id = $1 ORDER BY timestamp DESC, id DESC LIMIT $2`
	return r.list(ctx, query, accountID, limit)
}

const transactionSelect = `
	SELECT id, amount, description, transaction_type, status,
	       timestamp, user_id, account_id, reference_id
	FROM transactions`

func (r *TransactionRepository) list(ctx context.Context, query string, ownerID int64, limit int) ([]*domain.Transaction, error) {
	var rows pgx.Rows
	var err error
	if tx := getTx(ctx); tx != nil {
		rows, err = tx.Query(ctx, query, ownerID, limit)
	} else {
		rows, err = r.pool.Query(ctx, query, ownerID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", mapStoreError(err))
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var txType, status string
		err := rows.Scan(
			&t.ID,
			&t.Amount,
			&t.Description,
			&txType,
			&status,
			&t.Timestamp,
			&t.UserID,
			&t.AccountID,
			&t.ReferenceID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Type = domain.TransactionType(txType)
		t.Status = domain.TransactionStatus(status)
		transactions = append(transactions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", mapStoreError(err))
	}

	return transactions, nil
}
