package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a PostgreSQL pool, retrying with a growing delay until the
// database answers a ping.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	cfg = cfg.withDefaults()
	connConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	connConfig.MaxConns = cfg.MaxOpenConns
	connConfig.MinConns = cfg.MinConns
	connConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	connConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	connConfig.MaxConnLifetime = cfg.MaxConnLifetime

	// attempt n waits n*RetryInterval
	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		conn, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
			case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
			}
			continue
		}

		if err := conn.Ping(ctx); err != nil {
			conn.Close()
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
			case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
			}
			continue
		}

		return conn, nil
	}

	return nil, ErrFailedToOpenDBConnection
}
