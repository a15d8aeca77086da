package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// MinSecretLength is the shortest secret WithSecret accepts.
const MinSecretLength = 32

// Errors.
var (
	ErrNotFound = errors.New("cookie: not found")
	ErrNoSecret = errors.New("cookie: secret required")
	ErrBadSig   = errors.New("cookie: invalid signature")
)

// Manager reads and writes cookies sharing one set of attributes.
type Manager struct {
	secret   []byte
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a Manager. Defaults: path "/", HttpOnly, SameSite=Lax.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret enables signed cookies. Secrets shorter than MinSecretLength
// are ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= MinSecretLength {
			m.secret = []byte(secret)
		}
	}
}

// WithDomain sets the Domain attribute.
func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

// WithPath sets the Path attribute.
func WithPath(path string) Option {
	return func(m *Manager) { m.path = path }
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) { m.httpOnly = httpOnly }
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.sameSite = ss }
}

// CanSign reports whether a secret is configured.
func (m *Manager) CanSign() bool { return m.secret != nil }

// Get returns the value of cookie name.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Set writes cookie name. maxAge is in seconds; zero makes a browser
// session cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete expires cookie name.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// SetSigned writes value with an HMAC-SHA256 signature over the cookie name
// and value, so a signed value cannot be moved to another cookie.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.secret == nil {
		return ErrNoSecret
	}
	enc := base64.RawURLEncoding
	v := enc.EncodeToString([]byte(value)) + "." + enc.EncodeToString(m.sign(name, []byte(value)))
	http.SetCookie(w, m.cookie(name, v, maxAge))
	return nil
}

// GetSigned returns the value written by SetSigned, or ErrBadSig when the
// cookie was tampered with.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	v, s, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || !hmac.Equal(sig, m.sign(name, value)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

func (m *Manager) sign(name string, value []byte) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(name))
	mac.Write([]byte{0})
	mac.Write(value)
	return mac.Sum(nil)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}
