package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/iliyamo/taskflow-api/internal/config"
)

func openTempDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "taskflow.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTempDB(t)
	ctx := context.Background()

	if err := Migrate(ctx, db, SQLite); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := Migrate(ctx, db, SQLite); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var applied int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied migration, got %d", applied)
	}
	for _, table := range []string{"users", "projects", "tasks"} {
		if _, err := db.Exec("SELECT COUNT(*) FROM " + table); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestMigrateUnknownDialect(t *testing.T) {
	db := openTempDB(t)
	if err := Migrate(context.Background(), db, Dialect("oracle")); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}

func TestIsDuplicate(t *testing.T) {
	db := openTempDB(t)
	if err := Migrate(context.Background(), db, SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	const q = "INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)"
	if _, err := db.Exec(q, "alice", "alice@example.com", "x"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := db.Exec(q, "alice", "other@example.com", "x")
	if !IsDuplicate(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if IsDuplicate(errors.New("connection refused")) || IsDuplicate(nil) {
		t.Fatal("unexpected duplicate match")
	}
}

func TestSplitStatementsSkipsComments(t *testing.T) {
	stmts := splitStatements("-- header\nCREATE TABLE a (id INT);\n\n-- note\nCREATE TABLE b (id INT);\n")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if extractUp("-- +migrate Up\nA;\n-- +migrate Down\nB;") != "\nA;\n" {
		t.Fatal("unexpected up section")
	}
}

func TestConnectSQLite(t *testing.T) {
	cfg := config.DBConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "connect.db")}
	db, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		t.Fatalf("users table missing: %v", err)
	}
}

func TestConnectUnknownDriver(t *testing.T) {
	if _, err := Connect(context.Background(), config.DBConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error")
	}
}
