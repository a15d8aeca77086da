package session

import (
	"maps"
	"time"
)

// Session is the persistent part of a browser session: identity, expiry and
// string attributes such as the negotiated locale. Pages live elsewhere, in
// memory, keyed by the session ID.
type Session struct {
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time

	UserID    *string // nil = anonymous session
	Values    map[string]string
	ID        string // stable identifier
	Token     string // cookie value, rotated on privilege changes
	IP        string
	UserAgent string

	dirty bool
	isNew bool
}

// New creates a session expiring at expiresAt.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]string),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// IsAuthenticated reports whether a user is bound to the session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

// Get returns the attribute key.
func (s *Session) Get(key string) (string, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// Set stores an attribute. Setting the current value keeps the session clean.
func (s *Session) Set(key, val string) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	if old, ok := s.Values[key]; ok && old == val {
		return
	}
	s.Values[key] = val
	s.dirty = true
}

// Delete removes an attribute.
func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Clone returns a copy sharing nothing with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Values = maps.Clone(s.Values)
	if s.UserID != nil {
		uid := *s.UserID
		c.UserID = &uid
	}
	return &c
}

// IsDirty reports unsaved changes.
func (s *Session) IsDirty() bool { return s.dirty }

// ClearDirty is called by the session manager after persisting changes.
func (s *Session) ClearDirty() { s.dirty = false }

// MarkDirty forces the next save.
func (s *Session) MarkDirty() { s.dirty = true }

// IsNew reports whether the session was created during this request.
func (s *Session) IsNew() bool { return s.isNew }

// ClearNew is called after the session is first persisted.
func (s *Session) ClearNew() { s.isNew = false }

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
