package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/loom/pkg/db"
	"github.com/dmitrymomot/loom/pkg/health"
	"github.com/dmitrymomot/loom/pkg/redis"
	"github.com/dmitrymomot/loom/pkg/session"
)

const migrationsTable = "loom_migrations"

// backends are the stores the server depends on.
type backends struct {
	sessions session.Store
	redis    goredis.UniversalClient
	checks   health.Checks
	closers  []func(context.Context) error
}

// openBackends connects the session store and, when configured, Redis.
// SQLite stores are migrated on open; PostgreSQL needs "loom migrate".
func openBackends(ctx context.Context, cfg Config, log *slog.Logger) (*backends, error) {
	b := &backends{checks: health.Checks{}}

	switch cfg.Session.Driver {
	case DriverMemory:
		store := session.NewMemoryStore()
		b.sessions = store
		b.closers = append(b.closers, func(context.Context) error { return store.Close() })

	case DriverSQLite:
		conn, err := openSQLite(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		b.sessions = session.NewSQLiteStore(conn)
		b.checks["sqlite"] = db.SQLHealthcheck(conn)
		b.closers = append(b.closers, func(context.Context) error { return conn.Close() })

	case DriverPostgres:
		pool, err := db.Connect(ctx, cfg.Session.Postgres)
		if err != nil {
			return nil, err
		}
		b.sessions = session.NewPostgresStore(pool)
		b.checks["postgres"] = db.Healthcheck(pool)
		b.closers = append(b.closers, db.Shutdown(pool))
	}

	if cfg.Redis.URL != "" {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			_ = b.Close(ctx)
			return nil, err
		}
		b.redis = client
		b.checks["redis"] = redis.Healthcheck(client)
		b.closers = append(b.closers, redis.Shutdown(client))
	}

	return b, nil
}

// Close releases the backends in reverse order of opening.
func (b *backends) Close(ctx context.Context) error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openSQLite(ctx context.Context, cfg Config, log *slog.Logger) (*sql.DB, error) {
	conn, err := db.OpenSQLite(ctx, cfg.Session.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateDB(ctx, conn, db.DialectSQLite, session.SQLiteMigrations(), migrationsTable, log); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return conn, nil
}

// migrate applies the session store migrations of the configured driver.
func migrate(ctx context.Context, cfg Config, log *slog.Logger) error {
	switch cfg.Session.Driver {
	case DriverSQLite:
		conn, err := openSQLite(ctx, cfg, log)
		if err != nil {
			return err
		}
		return conn.Close()

	case DriverPostgres:
		pool, err := db.Connect(ctx, cfg.Session.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()
		return db.Migrate(ctx, pool, session.PostgresMigrations(), migrationsTable, log)

	default:
		log.InfoContext(ctx, "nothing to migrate", slog.String("driver", cfg.Session.Driver))
		return nil
	}
}
