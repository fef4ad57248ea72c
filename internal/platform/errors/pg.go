package errors

import (
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlockDetected     = "40P01"
	pgErrAdminShutdown        = "57P01"
	pgErrCannotConnectNow     = "57P03"
	pgErrUndefinedTable       = "42P01"
)

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUndefinedTable reports a missing relation, usually a load run without --create-schema
func IsUndefinedTable(err error) bool { return sqlState(err) == pgErrUndefinedTable }

// FromPG classifies a pgx failure of op as DB, or Unavailable for states a retry can clear
func FromPG(err error, op string) error {
	if err == nil {
		return nil
	}
	code := ErrorCodeDB
	switch sqlState(err) {
	case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrAdminShutdown, pgErrCannotConnectNow:
		code = ErrorCodeUnavailable
	}
	return WithOp(Wrapf(err, code, "postgres %s", op), op)
}
