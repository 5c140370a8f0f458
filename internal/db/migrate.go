package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations holds the schema, applied in order. Statements are idempotent
// so startup can run them unconditionally.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(64) NOT NULL UNIQUE
	);`,

	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGSERIAL PRIMARY KEY,
		account_number VARCHAR(20) NOT NULL UNIQUE,
		account_type VARCHAR(50) NOT NULL,
		balance NUMERIC(15, 2) NOT NULL DEFAULT 0,
		currency VARCHAR(3) NOT NULL DEFAULT 'USD',
		user_id BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id);`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		amount NUMERIC(15, 2) NOT NULL,
		description VARCHAR(140),
		transaction_type VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'completed',
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		user_id BIGINT NOT NULL REFERENCES users(id),
		account_id BIGINT NOT NULL REFERENCES accounts(id),
		reference_id VARCHAR(50) NOT NULL UNIQUE
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_timestamp ON transactions(timestamp);`,
}

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}
	return nil
}
