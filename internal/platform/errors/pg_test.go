package errors

import (
	"context"
	stderrs "errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgErr(code string) *pgconn.PgError { return &pgconn.PgError{Code: code} }

func TestDBErrorCode(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23503", ErrorCodeInvalidArgument},
		{"23502", ErrorCodeValidation},
		{"23514", ErrorCodeValidation},
		{"22001", ErrorCodeInvalidArgument},
		{"22P02", ErrorCodeInvalidArgument},
		{"40001", ErrorCodeDB},
		{"40P01", ErrorCodeDB},
		{"55P03", ErrorCodeDB},
		{"25006", ErrorCodeUnavailable},
		{"57P03", ErrorCodeUnavailable},
		{"XXXXX", ErrorCodeDB},
	}
	for _, c := range cases {
		got, ok := DBErrorCode(pgErr(c.code))
		if !ok || got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v,%v want %v", c.code, got, ok, c.want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("non-pg error should not map")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil || FromPostgresf(nil, "x %d", 1) != nil {
		t.Fatalf("nil should pass through")
	}
	err := FromPostgres(pgErr("23505"), "claim conversation")
	if CodeOf(err) != ErrorCodeDuplicateKey || !IsDuplicateKey(err) {
		t.Fatalf("unique violation should map to duplicate key: %v", err)
	}
	err = FromPostgresf(stderrs.New("conn reset"), "list campaigns %d", 2)
	if CodeOf(err) != ErrorCodeDB {
		t.Fatalf("foreign errors should map to DB, got %v", CodeOf(err))
	}
}

func TestIsRetryable(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		if !IsRetryable(pgErr(code)) {
			t.Fatalf("%s should be retryable", code)
		}
	}
	if IsRetryable(pgErr("23505")) || IsRetryable(nil) {
		t.Fatalf("unique violation and nil are not retryable")
	}
	if IsRetryable(context.DeadlineExceeded) {
		t.Fatalf("deadline is left to the caller")
	}
	if !IsRetryable(stderrs.New("ERROR: deadlock detected")) {
		t.Fatalf("text fallback should catch deadlocks")
	}
}
