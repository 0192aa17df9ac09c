// internal/auth/auth.go
//
// Player tokens.
//
// Players come from a chat platform, so there is no signup or password: an
// operator (or the bot front end) mints an HS256 JWT whose "id" claim is the
// platform user ID, and the HTTP surface trusts that claim.

package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie checked when no Authorization header is sent.
const CookieName = "wordl_token"

var ErrInvalidToken = errors.New("invalid token")

// Issuer signs and verifies player tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer using secret for HS256 and ttl for expiry.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign creates a token for playerID and returns it with its expiry.
func (i *Issuer) Sign(playerID string) (string, time.Time, error) {
	if playerID == "" {
		return "", time.Time{}, errors.New("auth: empty player id")
	}
	now := i.now()
	exp := now.Add(i.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  playerID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString(i.secret)
	return ss, exp, err
}

// Parse verifies token and returns the player ID it was issued for.
func (i *Issuer) Parse(token string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return "", ErrInvalidToken
	}
	return id, nil
}

// BearerOrCookie extracts a token from the Authorization header or the auth cookie.
func BearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
