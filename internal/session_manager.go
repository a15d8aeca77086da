package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/loom/pkg/cookie"
	"github.com/dmitrymomot/loom/pkg/id"
	"github.com/dmitrymomot/loom/pkg/logger"
	"github.com/dmitrymomot/loom/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "__sid"
	defaultSessionMaxAge     = 86400 * 30 // 30 days
)

// SessionManager loads and creates sessions through a store and keeps the
// session token in a cookie. The cookie is signed when a secret is set.
type SessionManager struct {
	store      session.Store
	cookies    *cookie.Manager
	logger     *slog.Logger
	cookieOpts []cookie.Option
	cookieName string
	maxAge     int
	signed     bool
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a new SessionManager with the given store and options.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		logger:     logger.NewNope(),
		cookieName: defaultSessionCookieName,
		maxAge:     defaultSessionMaxAge,
	}

	for _, opt := range opts {
		opt(sm)
	}
	sm.cookies = cookie.New(sm.cookieOpts...)

	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionMaxAge sets the session max age in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return func(sm *SessionManager) {
		if seconds > 0 {
			sm.maxAge = seconds
		}
	}
}

// WithSessionCookie configures the session cookie: domain, path and flags.
func WithSessionCookie(opts ...cookie.Option) SessionOption {
	return func(sm *SessionManager) {
		sm.cookieOpts = append(sm.cookieOpts, opts...)
	}
}

// WithSessionSecret signs the session cookie with secret.
func WithSessionSecret(secret string) SessionOption {
	return func(sm *SessionManager) {
		if len(secret) >= cookie.MinSecretLength {
			sm.signed = true
			sm.cookieOpts = append(sm.cookieOpts, cookie.WithSecret(secret))
		}
	}
}

// SetLogger sets the logger for session events. Called by App after initialization.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// MaxAge returns the session lifetime.
func (sm *SessionManager) MaxAge() time.Duration {
	return time.Duration(sm.maxAge) * time.Second
}

// LoadSession loads the session named by the request cookie.
// Returns nil, nil if there is no usable cookie or the session is gone.
func (sm *SessionManager) LoadSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := sm.readToken(r)
	if err != nil || token == "" {
		if errors.Is(err, cookie.ErrBadSig) {
			sm.logger.WarnContext(ctx, "session cookie signature mismatch")
		}
		return nil, nil
	}

	sess, err := sm.store.Get(ctx, token)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return sess, nil
}

// CreateSession creates and persists a new session with metadata extracted
// from the request.
func (sm *SessionManager) CreateSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := session.New(id.NewULID(), token, time.Now().Add(sm.MaxAge()))
	sess.IP = remoteIP(r)
	sess.UserAgent = r.UserAgent()

	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	sess.ClearNew()
	sess.ClearDirty()

	return sess, nil
}

// SaveSession persists attribute changes, or just the activity time when
// nothing changed.
func (sm *SessionManager) SaveSession(ctx context.Context, sess *session.Session) error {
	if !sess.IsDirty() {
		return sm.store.Touch(ctx, sess.ID, time.Now())
	}
	sess.LastActiveAt = time.Now()
	if err := sm.store.Update(ctx, sess); err != nil {
		return err
	}
	sess.ClearDirty()
	return nil
}

// WriteCookie writes the session cookie to the response.
func (sm *SessionManager) WriteCookie(w http.ResponseWriter, sess *session.Session) {
	if sm.signed {
		if err := sm.cookies.SetSigned(w, sm.cookieName, sess.Token, sm.maxAge); err == nil {
			return
		}
	}
	sm.cookies.Set(w, sm.cookieName, sess.Token, sm.maxAge)
}

// DeleteCookie clears the session cookie.
func (sm *SessionManager) DeleteCookie(w http.ResponseWriter) {
	sm.cookies.Delete(w, sm.cookieName)
}

// RotateToken generates a new token for the session.
// Called after authentication to prevent session fixation.
func (sm *SessionManager) RotateToken(ctx context.Context, sess *session.Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}
	sess.Token = newToken
	sess.MarkDirty()

	if err := sm.store.Update(ctx, sess); err != nil {
		sess.Token = oldToken
		return err
	}
	sess.ClearDirty()
	return nil
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

func (sm *SessionManager) readToken(r *http.Request) (string, error) {
	if sm.signed {
		return sm.cookies.GetSigned(r, sm.cookieName)
	}
	return sm.cookies.Get(r, sm.cookieName)
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	return id.NewToken(32)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
