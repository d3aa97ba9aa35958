package db_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/partshub/autospares-backend/pkg/db"
)

func TestIsUniqueViolationPostgres(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_orders_order_number",
		Message:        `duplicate key value violates unique constraint "idx_orders_order_number"`,
	}

	if !db.IsUniqueViolation(pgErr, "order_number") {
		t.Fatal("expected pg unique violation to match the column hint")
	}
	if !db.IsUniqueViolation(pgErr, "") {
		t.Fatal("expected pg unique violation to match without a hint")
	}
	if db.IsUniqueViolation(pgErr, "users_email") {
		t.Fatal("expected a different constraint hint not to match")
	}

	wrapped := fmt.Errorf("create order: %w", pgErr)
	if !db.IsUniqueViolation(wrapped, "order_number") {
		t.Fatal("expected wrapped pg error to match")
	}

	if db.IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation must not classify as unique violation")
	}
}

func TestIsUniqueViolationSQLite(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: orders.order_number")

	if !db.IsUniqueViolation(err, "order_number") {
		t.Fatal("expected sqlite unique violation to match the column hint")
	}
	if !db.IsUniqueViolation(err, "") {
		t.Fatal("expected sqlite unique violation to match without a hint")
	}
	if db.IsUniqueViolation(err, "users.email") {
		t.Fatal("expected a different column hint not to match")
	}
}

func TestIsUniqueViolationOtherErrors(t *testing.T) {
	if db.IsUniqueViolation(nil, "") {
		t.Fatal("nil error must not match")
	}
	if db.IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error must not match")
	}
}
