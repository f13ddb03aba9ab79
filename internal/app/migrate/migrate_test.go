package migrate

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsAreGooseFiles(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one migration")
	}
	for _, entry := range entries {
		data, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+entry.Name())
		if err != nil {
			t.Fatalf("read %s: %v", entry.Name(), err)
		}
		body := string(data)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Fatalf("%s is missing goose annotations", entry.Name())
		}
	}
}

func TestInitialMigrationCascadesOwnership(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, migrationsDir+"/00001_create_users_splits_workouts.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	body := string(data)
	for _, want := range []string{
		"REFERENCES users (id) ON DELETE CASCADE",
		"REFERENCES splits (id) ON DELETE CASCADE",
		"CONSTRAINT users_username_key UNIQUE (username)",
		"CONSTRAINT users_email_key UNIQUE (email)",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("migration missing %q", want)
		}
	}
}

func TestNewValidatesArguments(t *testing.T) {
	if _, err := New(nil, "postgres://x", nil); err == nil {
		t.Fatal("expected error for nil pool")
	}
}
