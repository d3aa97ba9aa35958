package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation.
// Postgres errors are matched on the pgconn error code; the sqlite driver only
// surfaces text, so both backends' message shapes are recognized as a
// fallback. A non-empty hint narrows the match to the violated constraint:
// it is compared as a substring so callers can pass the column name and match
// Postgres index names and sqlite's table.column form alike.
func IsUniqueViolation(err error, hint string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return false
		}
		return hint == "" || strings.Contains(pgErr.ConstraintName, hint)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") &&
		!strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return hint == "" || strings.Contains(msg, hint)
}
