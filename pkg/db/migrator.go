package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Goose dialect names accepted by MigrateDB.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// Migrate applies pending migrations found at the root of migrations to a
// PostgreSQL pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, migrationTable string, log *slog.Logger) error {
	// The wrapper shares the pool connections, so it is not closed here.
	return MigrateDB(ctx, stdlib.OpenDBFromPool(pool), DialectPostgres, migrations, migrationTable, log)
}

// MigrateDB applies pending migrations through database/sql for any goose dialect.
func MigrateDB(ctx context.Context, db *sql.DB, dialect string, migrations fs.FS, migrationTable string, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if migrationTable == "" {
		migrationTable = "schema_migrations"
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{log})
	goose.SetTableName(migrationTable)

	if err := goose.SetDialect(dialect); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	// goose returns the error as well, so shutdown stays in the caller's hands.
	g.log.Error(fmt.Sprintf(format, args...))
}
