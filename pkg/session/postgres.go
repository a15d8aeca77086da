package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/loom/pkg/db"
)

// PostgresStore keeps sessions in the loom_sessions table. Apply
// PostgresMigrations before use.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store on pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const pgSelect = `SELECT id, token, user_id, ip, user_agent, vals, created_at, last_active_at, expires_at
FROM loom_sessions WHERE token = $1`

func (s *PostgresStore) Create(ctx context.Context, sess *Session) error {
	vals, err := encodeValues(sess.Values)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO loom_sessions
(id, token, user_id, ip, user_agent, vals, created_at, last_active_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sess.ID, sess.Token, sess.UserID, sess.IP, sess.UserAgent, vals,
		sess.CreatedAt, sess.LastActiveAt, sess.ExpiresAt)
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, token string) (*Session, error) {
	var (
		sess Session
		vals []byte
	)
	err := s.pool.QueryRow(ctx, pgSelect, token).Scan(
		&sess.ID, &sess.Token, &sess.UserID, &sess.IP, &sess.UserAgent, &vals,
		&sess.CreatedAt, &sess.LastActiveAt, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	if sess.Values, err = decodeValues(vals); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Update locks the row before writing so a concurrent token rotation
// cannot interleave with it.
func (s *PostgresStore) Update(ctx context.Context, sess *Session) error {
	vals, err := encodeValues(sess.Values)
	if err != nil {
		return err
	}
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `SELECT id FROM loom_sessions WHERE id = $1 FOR UPDATE`, sess.ID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE loom_sessions
SET token = $2, user_id = $3, ip = $4, user_agent = $5, vals = $6, last_active_at = $7, expires_at = $8
WHERE id = $1`,
			sess.ID, sess.Token, sess.UserID, sess.IP, sess.UserAgent, vals, sess.LastActiveAt, sess.ExpiresAt)
		return err
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	default:
		return errors.Join(ErrStore, err)
	}
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM loom_sessions WHERE id = $1`, id)
}

func (s *PostgresStore) DeleteByUserID(ctx context.Context, userID string) error {
	return s.exec(ctx, `DELETE FROM loom_sessions WHERE user_id = $1`, userID)
}

func (s *PostgresStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE loom_sessions SET last_active_at = $2 WHERE id = $1`, id, lastActiveAt)
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM loom_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, errors.Join(ErrStore, err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) exec(ctx context.Context, sql string, args ...any) error {
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}
