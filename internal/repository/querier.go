package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jmoiron/sqlx"
)

const pgUniqueViolation = "23505"

// Querier is satisfied by both *sqlx.DB and *sqlx.Tx so repositories can be
// bound to a transaction with WithTx.
type Querier interface {
	sqlx.ExtContext
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// pgTypes encodes and decodes Postgres arrays through database/sql
var pgTypes = pgtype.NewMap()

// isUniqueViolation reports whether err violates the named unique constraint.
// An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func textArray(dst *[]string) sql.Scanner {
	return pgTypes.SQLScanner(dst)
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
