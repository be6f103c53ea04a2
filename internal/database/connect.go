package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/taskflow-api/internal/config"
)

// Connect opens the store selected by cfg.Driver and applies pending
// migrations.
func Connect(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)
	switch Dialect(cfg.Driver) {
	case MySQL:
		dialect = MySQL
		db, err = Open(cfg.User, cfg.Pass, cfg.Host, cfg.Port, cfg.Name)
	case SQLite:
		dialect = SQLite
		db, err = OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
