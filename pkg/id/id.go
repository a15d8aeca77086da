// Package id generates session, request and token identifiers.
package id

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Crockford's base32 alphabet, without I, L, O and U.
const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ULIDLength is the length of NewULID results.
const ULIDLength = 26

// ErrInvalidULID is returned by Time for malformed input.
var ErrInvalidULID = errors.New("id: invalid ULID")

// NewULID returns a ULID: 48 bits of Unix milliseconds followed by 80
// random bits, Crockford base32 encoded. ULIDs sort by creation time.
func NewULID() string {
	var raw [16]byte
	ms := uint64(time.Now().UnixMilli())
	for i := 5; i >= 0; i-- {
		raw[i] = byte(ms)
		ms >>= 8
	}
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = rand.Read(raw[6:])
	return encode(raw)
}

// Time returns the creation time encoded in a ULID.
func Time(ulid string) (time.Time, error) {
	if len(ulid) != ULIDLength {
		return time.Time{}, fmt.Errorf("%w: length %d", ErrInvalidULID, len(ulid))
	}
	var ms uint64
	for _, c := range strings.ToUpper(ulid[:10]) {
		v := strings.IndexRune(crockford, c)
		if v < 0 {
			return time.Time{}, fmt.Errorf("%w: character %q", ErrInvalidULID, c)
		}
		ms = ms<<5 | uint64(v)
	}
	return time.UnixMilli(int64(ms)), nil
}

// NewToken returns n random bytes as unpadded URL-safe base64, for secrets
// such as session cookie tokens.
func NewToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("id: read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// encode packs 128 bits into 26 characters. The first character carries
// only 3 bits.
func encode(raw [16]byte) string {
	var out [ULIDLength]byte
	for i := range out {
		var v byte
		for b := range 5 {
			pos := i*5 - 2 + b
			v <<= 1
			if pos >= 0 && raw[pos/8]&(0x80>>(pos%8)) != 0 {
				v |= 1
			}
		}
		out[i] = crockford[v]
	}
	return string(out[:])
}
