package db

import (
	"context"
	"errors"
)

// Pinger is satisfied by *pgxpool.Pool and *sql.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthcheck returns a readiness check pinging the database.
func Healthcheck(p Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// SQLPinger adapts a database/sql handle to Pinger.
type SQLPinger interface {
	PingContext(ctx context.Context) error
}

type sqlPinger struct{ db SQLPinger }

func (p sqlPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// SQLHealthcheck is Healthcheck for a *sql.DB.
func SQLHealthcheck(db SQLPinger) func(context.Context) error {
	return Healthcheck(sqlPinger{db})
}
