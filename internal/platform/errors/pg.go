package errors

// Postgres error classification

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlStateCodes maps the SQLSTATEs we care about to project codes
var sqlStateCodes = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,    // unique_violation
	"23503": ErrorCodeInvalidArgument, // foreign_key_violation
	"23502": ErrorCodeValidation,      // not_null_violation
	"23514": ErrorCodeValidation,      // check_violation
	"22001": ErrorCodeInvalidArgument, // string_data_right_truncation
	"22P02": ErrorCodeInvalidArgument, // invalid_text_representation
	"40001": ErrorCodeDB,              // serialization_failure
	"40P01": ErrorCodeDB,              // deadlock_detected
	"55P03": ErrorCodeDB,              // lock_not_available
	"25006": ErrorCodeUnavailable,     // read_only_sql_transaction
	"57P03": ErrorCodeUnavailable,     // cannot_connect_now
}

var retryableStates = map[string]bool{"40001": true, "40P01": true, "55P03": true}

var retryableText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"terminating connection due to administrator command",
}

// PgError returns the *pgconn.PgError in the chain of err, if any
func PgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if err != nil && stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether err is a postgres error with the given SQLSTATE
func IsSQLState(err error, state string) bool {
	pgErr, ok := PgError(err)
	return ok && pgErr.Code == state
}

// DBErrorCode maps a postgres error to an ErrorCode; ok=false for non-postgres errors
func DBErrorCode(err error) (ErrorCode, bool) {
	pgErr, ok := PgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	if c, ok := sqlStateCodes[pgErr.Code]; ok {
		return c, true
	}
	return ErrorCodeDB, true
}

// FromPG wraps a database error with a mapped code and message, tagging the column when known
func FromPG(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	out := Wrap(err, code, msg)
	if pgErr, ok := PgError(err); ok && strings.TrimSpace(pgErr.ColumnName) != "" {
		out = WithField(out, pgErr.ColumnName)
	}
	return out
}

// IsRetryable reports whether a database error is a transient contention failure.
// Local cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := PgError(err); ok {
		return retryableStates[pgErr.Code]
	}
	s := strings.ToLower(Root(err).Error())
	for _, needle := range retryableText {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
