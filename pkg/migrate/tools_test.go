package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/partshub/autospares-backend/pkg/migrate"
)

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := migrate.CreateSQLMigration(dir, "Add Wishlist  Table!")
	if err != nil {
		t.Fatalf("CreateSQLMigration returned error: %v", err)
	}
	base := filepath.Base(path)
	if !strings.HasSuffix(base, "_add_wishlist_table.sql") {
		t.Fatalf("unexpected filename %q", base)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read created migration: %v", err)
	}
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(string(body), marker) {
			t.Fatalf("created migration missing %q", marker)
		}
	}

	if _, err := migrate.CreateSQLMigration(dir, "???"); err == nil {
		t.Fatal("expected error for a name with no usable characters")
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("empty dir should validate: %v", err)
	}

	good := filepath.Join(dir, "20250601100000_create_tables.sql")
	if err := os.WriteFile(good, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("valid migration should pass: %v", err)
	}

	bad := filepath.Join(dir, "20250601100001_broken.sql")
	if err := os.WriteFile(bad, []byte("-- +goose Up\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected error for migration without a Down marker")
	}
	if err := os.Remove(bad); err != nil {
		t.Fatal(err)
	}

	misnamed := filepath.Join(dir, "001_short.sql")
	if err := os.WriteFile(misnamed, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected error for malformed filename")
	}
}
