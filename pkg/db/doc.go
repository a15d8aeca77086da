// Package db opens the SQL databases backing session stores and applies
// their migrations.
//
// PostgreSQL pools are created with [Connect], which retries until the server
// answers. SQLite files are opened with [OpenSQLite] through the pure Go
// modernc.org/sqlite driver, so development setups need no server at all.
//
//	pool, err := db.Connect(ctx, db.Config{ConnectionString: os.Getenv("DATABASE_URL")})
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, session.PostgresMigrations(), "", logger); err != nil {
//		return err
//	}
//
// Migrations are goose SQL files. [MigrateDB] applies them to any *sql.DB for
// a goose dialect, [Migrate] is the PostgreSQL pool shortcut.
//
// [Healthcheck] and [SQLHealthcheck] return readiness checks for the health
// endpoints. [WithTx] runs a function inside a transaction, rolling back on
// error or panic.
//
// Errors are wrapped with [errors.Join] around the sentinels in errors.go.
package db
