package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigrationFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion int
		wantOK      bool
	}{
		{"001_accounts.sql", 1, true},
		{"008_documents.sql", 8, true},
		{"012_lab_orders.sql", 12, true},
		{"notes.sql", 0, false},
		{"abc_foo.sql", 0, false},
		{"README.md", 0, false},
		{"001.sql", 0, false},
	}

	for _, tt := range tests {
		version, ok := parseVersion(tt.filename)
		if version != tt.wantVersion || ok != tt.wantOK {
			t.Errorf("parseVersion(%q) = (%d, %v), want (%d, %v)",
				tt.filename, version, ok, tt.wantVersion, tt.wantOK)
		}
	}
}

func TestLoadMigrations(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFiles(t, dir, map[string]string{
		"001_accounts.sql":     "CREATE TABLE accounts (id UUID PRIMARY KEY);",
		"002_patients.sql":     "CREATE TABLE patients (id UUID PRIMARY KEY);",
		"003_appointments.sql": "CREATE TABLE appointments (id UUID PRIMARY KEY);",
	})

	migrations, err := NewMigrator(nil, dir).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	first := migrations[0]
	if first.Version != 1 || first.Name != "001_accounts.sql" {
		t.Errorf("unexpected first migration: %+v", first)
	}
	if first.SQL != "CREATE TABLE accounts (id UUID PRIMARY KEY);" {
		t.Errorf("unexpected SQL content: %s", first.SQL)
	}
	if migrations[2].Version != 3 {
		t.Errorf("expected version 3 last, got %d", migrations[2].Version)
	}
}

func TestLoadMigrations_SortsNumerically(t *testing.T) {
	dir := t.TempDir()

	// Lexical order would put 010 before 002; the migrator must not.
	writeMigrationFiles(t, dir, map[string]string{
		"010_invoices.sql":   "SELECT 10;",
		"002_patients.sql":   "SELECT 2;",
		"001_accounts.sql":   "SELECT 1;",
		"005_facilities.sql": "SELECT 5;",
	})

	migrations, err := NewMigrator(nil, dir).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}

	if len(migrations) != 4 {
		t.Fatalf("expected 4 migrations, got %d", len(migrations))
	}
	for i, want := range []int{1, 2, 5, 10} {
		if migrations[i].Version != want {
			t.Errorf("position %d: expected version %d, got %d", i, want, migrations[i].Version)
		}
	}
}

func TestLoadMigrations_IgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFiles(t, dir, map[string]string{
		"001_accounts.sql": "SELECT 1;",
		"README.md":        "schema docs",
		"notes.sql":        "SELECT 0;",
		"abc_foo.sql":      "SELECT 0;",
	})

	migrations, err := NewMigrator(nil, dir).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}

	if len(migrations) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migrations))
	}
	if migrations[0].Name != "001_accounts.sql" {
		t.Errorf("unexpected migration: %s", migrations[0].Name)
	}
}

func TestLoadMigrations_MissingDirectory(t *testing.T) {
	if _, err := NewMigrator(nil, "/nonexistent/migrations").LoadMigrations(); err == nil {
		t.Error("expected error for missing migrations directory")
	}
}
