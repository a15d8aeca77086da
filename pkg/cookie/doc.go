// Package cookie writes the session cookie of a loom application.
//
// A Manager carries the cookie attributes (path, domain, Secure, HttpOnly,
// SameSite) and, with a secret of at least MinSecretLength bytes, signs
// values so a client cannot forge a session token:
//
//	m := cookie.New(cookie.WithSecret(secret), cookie.WithSecure(true))
//	if err := m.SetSigned(w, "__sid", token, 86400); err != nil {
//		return err
//	}
//	token, err := m.GetSigned(r, "__sid") // ErrBadSig when tampered with
package cookie
