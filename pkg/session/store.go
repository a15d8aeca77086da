package session

import (
	"context"
	"time"
)

// Store persists sessions. Implementations: MemoryStore, PostgresStore and
// SQLiteStore.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Get retrieves a session by its cookie token.
	// Returns ErrNotFound if the session doesn't exist and ErrExpired if it has expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Update saves changes to an existing session, including a rotated token.
	Update(ctx context.Context, s *Session) error

	// Delete removes a session by its ID.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes all sessions of a user.
	DeleteByUserID(ctx context.Context, userID string) error

	// Touch updates LastActiveAt without rewriting the session.
	Touch(ctx context.Context, id string, lastActiveAt time.Time) error

	// DeleteExpired removes sessions expired before now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
