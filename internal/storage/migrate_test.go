package storage

import (
	"path/filepath"
	"testing"
)

func TestRunMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "salesdash.db")

	v, _, err := SchemaVersion(dbPath)
	if err != nil {
		t.Fatalf("SchemaVersion before migrate: %v", err)
	}
	if v != 0 {
		t.Fatalf("fresh database version = %d, want 0", v)
	}

	for i := 0; i < 2; i++ {
		if err := RunMigrations(dbPath); err != nil {
			t.Fatalf("RunMigrations pass %d: %v", i+1, err)
		}
	}

	v, dirty, err := SchemaVersion(dbPath)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 1 || dirty {
		t.Fatalf("version = %d dirty = %v, want 1 clean", v, dirty)
	}
}
