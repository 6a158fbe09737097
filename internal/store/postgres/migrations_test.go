package postgres

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsHaveGooseUpSections(t *testing.T) {
	dir, err := migrationsDir()
	if err != nil {
		t.Fatalf("migrationsDir error: %v", err)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		t.Fatalf("Glob error: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no migrations found in %s", dir)
	}

	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("ReadFile(%s) error: %v", p, err)
		}
		up, err := extractGooseUp(string(b))
		if err != nil {
			t.Fatalf("%s: %v", filepath.Base(p), err)
		}
		if strings.Contains(up, "DROP TABLE") {
			t.Fatalf("%s: up section leaks down statements", filepath.Base(p))
		}
		if len(splitSQLStatements(up)) == 0 {
			t.Fatalf("%s: no statements in up section", filepath.Base(p))
		}
	}
}

func TestExtractGooseUp(t *testing.T) {
	in := "-- +goose Up\nCREATE TABLE a (id int);\nCREATE TABLE b (id int);\n\n-- +goose Down\nDROP TABLE b;\n"

	up, err := extractGooseUp(in)
	if err != nil {
		t.Fatalf("extractGooseUp error: %v", err)
	}
	stmts := splitSQLStatements(up)
	if len(stmts) != 2 || stmts[1] != "CREATE TABLE b (id int)" {
		t.Fatalf("statements = %q", stmts)
	}

	if _, err := extractGooseUp("CREATE TABLE a (id int);"); err == nil {
		t.Fatalf("expected error without up marker")
	}
}

func TestWithSearchPath(t *testing.T) {
	got, err := withSearchPath("postgres://u:p@localhost:5432/app?sslmode=disable", "s1")
	if err != nil {
		t.Fatalf("withSearchPath error: %v", err)
	}
	if !strings.Contains(got, "search_path=s1") || !strings.Contains(got, "sslmode=disable") {
		t.Fatalf("url = %q", got)
	}
}
