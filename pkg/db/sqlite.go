package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens or creates the SQLite database file at path with WAL
// journaling. The special path ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, errors.Join(ErrFailedToOpenDBConnection, err)
		}
		dsn = path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenDBConnection, err)
	}
	// one writer; an in-memory database also lives on a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, errors.Join(ErrFailedToOpenDBConnection, err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrFailedToOpenDBConnection, err)
	}
	return db, nil
}
