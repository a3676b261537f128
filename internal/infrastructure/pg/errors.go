package pg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yisheng316/Crypto-Trading-System/internal/application"
)

// Postgres error codes that mean "another writer got there first": the
// settlement engine retries the whole unit of work on these.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
)

// mapWriteError translates driver-level failures into the application's
// error taxonomy.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeUniqueViolation:
			return application.ErrLedgerConflict
		case codeCheckViolation:
			return application.ErrInsufficientBalance
		}
	}
	return err
}
