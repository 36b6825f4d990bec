package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestSQLiteLoadMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	v, found, err := repo.Load(context.Background(), "transactions")
	if err != nil || found || v != nil {
		t.Fatalf("expected missing key, v=%q found=%v err=%v", v, found, err)
	}
}

func TestSQLiteSaveOverwrite(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if err := repo.Save(ctx, "budget", []byte("1000")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, "budget", []byte("250.5")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, found, err := repo.Load(ctx, "budget")
	if err != nil || !found || string(v) != "250.5" {
		t.Fatalf("unexpected load: v=%q found=%v err=%v", v, found, err)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	repo, path := newTestRepo(t)
	if err := repo.Save(ctx, "currency", []byte(`"EUR"`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	repo.Close()

	// Migrations are idempotent on an existing database.
	reopened, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, found, err := reopened.Load(ctx, "currency")
	if err != nil || !found || string(v) != `"EUR"` {
		t.Fatalf("unexpected load after reopen: v=%q found=%v err=%v", v, found, err)
	}
	if err := reopened.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	repo, path := newTestRepo(t)
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second migration run: %v", err)
	}

	var name string
	err := repo.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'ledger_state'`).Scan(&name)
	if err != nil || name != "ledger_state" {
		t.Fatalf("ledger_state table missing: name=%q err=%v", name, err)
	}
}
