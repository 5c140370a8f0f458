package db

import (
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/finbank/ledger-service/internal/domain"
)

// uniqueViolationCode is the PostgreSQL error code for unique_violation.
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a unique constraint violation on
// the named constraint. An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// mapStoreError translates connectivity failures into
// domain.ErrStoreUnavailable so callers know the whole operation may be
// retried. Other errors pass through unchanged.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.Timeout(err) {
		return errors.Join(domain.ErrStoreUnavailable, err)
	}
	return err
}
