package database

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/m3rciful/hallbot/core/config"
)

func TestDSNAndURL(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "db", Port: "5432", User: "hall", Password: "p@ss", Name: "support", SSLMode: "disable",
	}
	if got := DSN(cfg); !strings.Contains(got, "host=db") || !strings.Contains(got, "dbname=support") {
		t.Fatalf("DSN = %q", got)
	}
	want := "postgres://hall:p%40ss@db:5432/support?sslmode=disable"
	if got := URL(cfg); got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}

func TestSelectApplied(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.up.sql", "0001_a.up.sql", "0001_a.down.sql", "0003_c.up.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	files := listMigrationFiles(dir)
	if want := []string{"0001_a.up.sql", "0002_b.up.sql", "0003_c.up.sql"}; !reflect.DeepEqual(files, want) {
		t.Fatalf("files = %v", files)
	}
	if got := selectApplied(files, 1, 3); !reflect.DeepEqual(got, []string{"0002_b.up.sql", "0003_c.up.sql"}) {
		t.Fatalf("applied = %v", got)
	}
	if got := selectApplied(files, 3, 3); len(got) != 0 {
		t.Fatalf("expected nothing applied, got %v", got)
	}
}
