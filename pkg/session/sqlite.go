package session

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteStore keeps sessions in the loom_sessions table of a SQLite database
// opened with db.OpenSQLite. Apply SQLiteMigrations before use. Timestamps are
// stored as unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store on db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Create(ctx context.Context, sess *Session) error {
	vals, err := encodeValues(sess.Values)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO loom_sessions
(id, token, user_id, ip, user_agent, vals, created_at, last_active_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Token, nullString(sess.UserID), sess.IP, sess.UserAgent, vals,
		sess.CreatedAt.UnixMilli(), sess.LastActiveAt.UnixMilli(), sess.ExpiresAt.UnixMilli())
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, token string) (*Session, error) {
	var (
		sess   Session
		userID sql.NullString
		vals   []byte
	)
	var created, active, expires int64
	err := s.db.QueryRowContext(ctx, `SELECT id, token, user_id, ip, user_agent, vals, created_at, last_active_at, expires_at
FROM loom_sessions WHERE token = ?`, token).Scan(
		&sess.ID, &sess.Token, &userID, &sess.IP, &sess.UserAgent, &vals, &created, &active, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	sess.CreatedAt = time.UnixMilli(created)
	sess.LastActiveAt = time.UnixMilli(active)
	sess.ExpiresAt = time.UnixMilli(expires)
	if userID.Valid {
		sess.UserID = &userID.String
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	if sess.Values, err = decodeValues(vals); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SQLiteStore) Update(ctx context.Context, sess *Session) error {
	vals, err := encodeValues(sess.Values)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE loom_sessions
SET token = ?, user_id = ?, ip = ?, user_agent = ?, vals = ?, last_active_at = ?, expires_at = ?
WHERE id = ?`,
		sess.Token, nullString(sess.UserID), sess.IP, sess.UserAgent, vals,
		sess.LastActiveAt.UnixMilli(), sess.ExpiresAt.UnixMilli(), sess.ID)
	return affected(res, err)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM loom_sessions WHERE id = ?`, id); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM loom_sessions WHERE user_id = ?`, userID); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (s *SQLiteStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE loom_sessions SET last_active_at = ? WHERE id = ?`,
		lastActiveAt.UnixMilli(), id)
	return affected(res, err)
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM loom_sessions WHERE expires_at < ?`, now.UnixMilli())
	if err != nil {
		return 0, errors.Join(ErrStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Join(ErrStore, err)
	}
	return n, nil
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
