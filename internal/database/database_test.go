package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded migrations")
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %q in migrations", name)
		}
	}
	for version := range ups {
		if !downs[version] {
			t.Errorf("migration %s has no down file", version)
		}
	}
	for version := range downs {
		if !ups[version] {
			t.Errorf("migration %s has no up file", version)
		}
	}
}

func TestInitialMigrationCreatesTables(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, "migrations/000001_create_queries_and_questions.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := string(data)
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS user_queries",
		"CREATE TABLE IF NOT EXISTS questions",
		"answer_choices   TEXT[]",
		"REFERENCES user_queries(id)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("initial migration missing %q", want)
		}
	}
}

func TestSubjectColumnsAreUnbounded(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, "migrations/000002_widen_question_subject_columns.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := string(data)
	for _, want := range []string{
		"ALTER COLUMN subject TYPE TEXT",
		"ALTER COLUMN subject_subtopic TYPE TEXT",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("subject migration missing %q", want)
		}
	}
}
