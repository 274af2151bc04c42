package pgprefs

import (
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
)

func TestMigrate(t *testing.T) {
	var gotDir string
	gooseUpFunc = func(db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	defer func() { gooseUpFunc = goose.Up }()

	if err := Migrate(nil); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if gotDir != "migrations" {
		t.Errorf("Migrate() ran goose on %q, want %q", gotDir, "migrations")
	}

	entries, err := migrations.ReadDir("migrations")
	if err != nil || len(entries) == 0 {
		t.Errorf("no embedded migrations: %v", err)
	}
}
