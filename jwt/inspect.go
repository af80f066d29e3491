package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned by Inspect for tokens that are not structurally JWTs.
var ErrNotJWT = errors.New("token is not a jwt")

// Claims are the registered claims read from an unverified token.
type Claims struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// HasExpiry reports whether the token carried an exp claim.
func (c Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// Expired reports whether the token's exp is before now minus leeway.
// Tokens without exp never expire.
func (c Claims) Expired(now time.Time, leeway time.Duration) bool {
	if !c.HasExpiry() {
		return false
	}
	return now.After(c.ExpiresAt.Add(leeway))
}

// Inspect decodes the registered claims of token without checking its
// signature.
func Inspect(token string) (Claims, error) {
	parser := jwt.NewParser()
	var rc jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &rc); err != nil {
		return Claims{}, ErrNotJWT
	}

	c := Claims{
		Subject: rc.Subject,
		Issuer:  rc.Issuer,
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	return c, nil
}

// ExpiredAt reports whether token is a JWT that expired before now-leeway.
// Opaque tokens and JWTs without exp report false.
func ExpiredAt(token string, now time.Time, leeway time.Duration) bool {
	c, err := Inspect(token)
	if err != nil {
		return false
	}
	return c.Expired(now, leeway)
}
