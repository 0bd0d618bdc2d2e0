package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const sqlstateUnique = "23505"

// sqlstates maps the SQLSTATEs the repos can hit to our codes; anything else is ErrorCodeDB
var sqlstates = map[string]ErrorCode{
	sqlstateUnique: ErrorCodeDuplicateKey,
	"23503":        ErrorCodeInvalidArgument, // campaign or conversation row gone
	"23502":        ErrorCodeValidation,
	"23514":        ErrorCodeValidation,
	"22001":        ErrorCodeInvalidArgument,
	"22P02":        ErrorCodeInvalidArgument,
	"25006":        ErrorCodeUnavailable, // read-only replica after failover
	"57P03":        ErrorCodeUnavailable,
}

// contention SQLSTATEs clear up on retry: serialization, deadlock, lock_not_available
var contention = map[string]bool{"40001": true, "40P01": true, "55P03": true}

// pgx reports some aborts only as text on commit
var retryText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"could not obtain lock on row",
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	ok := stderrs.As(err, &pe)
	return pe, ok
}

// DBErrorCode classifies a Postgres error; ok is false when err is not one
func DBErrorCode(err error) (ErrorCode, bool) {
	pe, ok := pgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	if c, known := sqlstates[pe.Code]; known {
		return c, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with msg under its mapped code; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// FromPostgresf is FromPostgres with a formatted message
func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// IsDuplicateKey reports a unique violation anywhere in the chain
func IsDuplicateKey(err error) bool {
	pe, ok := pgError(err)
	return ok && pe.Code == sqlstateUnique
}

// IsRetryable reports lock contention or an aborted commit
// Context cancellation and deadlines are never retryable here
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pe, ok := pgError(err); ok {
		return contention[pe.Code]
	}
	s := strings.ToLower(Root(err).Error())
	for _, t := range retryText {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
