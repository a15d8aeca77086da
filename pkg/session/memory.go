package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrymomot/loom/pkg/cache"
)

// MemoryStore keeps sessions in process memory. Sessions vanish on restart,
// so it suits tests and single instance development servers.
type MemoryStore struct {
	mu      sync.Mutex
	byToken *cache.Memory[*Session]
	tokens  map[string]string // id -> token
}

// NewMemoryStore creates an empty store. Expired sessions stay until
// DeleteExpired runs, usually from a Janitor.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byToken: cache.NewMemory[*Session](cache.WithCleanupInterval(0)),
		tokens:  make(map[string]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, sess)
}

func (s *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.byToken.Get(ctx, token)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return sess.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.tokens[sess.ID]
	if !ok {
		return ErrNotFound
	}
	if old != sess.Token {
		_ = s.byToken.Delete(ctx, old)
	}
	return s.put(ctx, sess)
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.tokens[id]; ok {
		delete(s.tokens, id)
		_ = s.byToken.Delete(ctx, token)
	}
	return nil
}

func (s *MemoryStore) DeleteByUserID(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, token := range s.byToken.Keys() {
		sess, ok := s.byToken.Peek(token)
		if ok && sess.UserID != nil && *sess.UserID == userID {
			delete(s.tokens, sess.ID)
			_ = s.byToken.Delete(ctx, token)
		}
	}
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, id string, lastActiveAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[id]
	if !ok {
		return ErrNotFound
	}
	sess, ok := s.byToken.Peek(token)
	if !ok {
		return ErrNotFound
	}
	sess.LastActiveAt = lastActiveAt
	return nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, token := range s.byToken.Keys() {
		sess, ok := s.byToken.Peek(token)
		if ok && now.After(sess.ExpiresAt) {
			delete(s.tokens, sess.ID)
			_ = s.byToken.Delete(ctx, token)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int { return s.byToken.Len() }

// Close releases the store. Later calls fail.
func (s *MemoryStore) Close() error { return s.byToken.Close() }

func (s *MemoryStore) put(ctx context.Context, sess *Session) error {
	if sess.IsExpired() {
		return ErrExpired
	}
	s.tokens[sess.ID] = sess.Token
	if err := s.byToken.Set(ctx, sess.Token, sess.Clone(), -1); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}
