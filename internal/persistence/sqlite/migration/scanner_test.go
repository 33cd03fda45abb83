package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestFileScannerScanMigrations(t *testing.T) {
	t.Run("orders by numeric version and reads descriptions", func(t *testing.T) {
		files := fstest.MapFS{
			"migrations/010_add_index.sql":      {Data: []byte("CREATE INDEX idx ON rooms(name);")},
			"migrations/002_bookings.sql":       {Data: []byte("-- Description: Booking tables\nCREATE TABLE bookings (id TEXT);")},
			"migrations/001_initial_schema.sql": {Data: []byte("CREATE TABLE rooms (id TEXT);")},
			"migrations/README.md":              {Data: []byte("ignored")},
		}

		migrations, err := NewFileScanner(files, "migrations").ScanMigrations()
		if err != nil {
			t.Fatalf("ScanMigrations returned error: %v", err)
		}
		if len(migrations) != 3 {
			t.Fatalf("expected 3 migrations, got %d", len(migrations))
		}
		if migrations[0].Version != "001" || migrations[1].Version != "002" || migrations[2].Version != "010" {
			t.Fatalf("unexpected order: %s, %s, %s", migrations[0].Version, migrations[1].Version, migrations[2].Version)
		}
		if migrations[0].Description != "initial schema" {
			t.Fatalf("expected filename description, got %q", migrations[0].Description)
		}
		if migrations[1].Description != "Booking tables" {
			t.Fatalf("expected comment description, got %q", migrations[1].Description)
		}
		if migrations[0].Checksum == "" || migrations[0].Checksum == migrations[1].Checksum {
			t.Fatalf("expected distinct checksums, got %q and %q", migrations[0].Checksum, migrations[1].Checksum)
		}
	})

	t.Run("rejects malformed file names", func(t *testing.T) {
		files := fstest.MapFS{"initial.sql": {Data: []byte("CREATE TABLE t (id TEXT);")}}
		_, err := NewFileScanner(files, ".").ScanMigrations()
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		files := fstest.MapFS{
			"001_a.sql": {Data: []byte("CREATE TABLE a (id TEXT);")},
			"1_b.sql":   {Data: []byte("CREATE TABLE b (id TEXT);")},
		}
		_, err := NewFileScanner(files, ".").ScanMigrations()
		if !errors.Is(err, ErrDuplicateVersion) {
			t.Fatalf("expected ErrDuplicateVersion, got %v", err)
		}
	})

	t.Run("rejects comment-only files", func(t *testing.T) {
		files := fstest.MapFS{"001_empty.sql": {Data: []byte("-- nothing here\n")}}
		_, err := NewFileScanner(files, ".").ScanMigrations()
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})

	t.Run("rejects unbalanced parentheses", func(t *testing.T) {
		files := fstest.MapFS{"001_broken.sql": {Data: []byte("CREATE TABLE t (id TEXT;")}}
		_, err := NewFileScanner(files, ".").ScanMigrations()
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})
}

func TestSplitStatements(t *testing.T) {
	script := "-- header\nCREATE TABLE a (id TEXT);\n\n-- trailing comment\nCREATE TABLE b (id TEXT);\n"
	statements := splitStatements(script)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(statements), statements)
	}
	if statements[0] != "CREATE TABLE a (id TEXT)" {
		t.Fatalf("unexpected first statement %q", statements[0])
	}
}
