// Package auth issues and verifies API tokens signed with HS256.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
}

// Authority signs and verifies tokens with one shared key.
type Authority struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type Option func(*Authority) *Authority

// WithClock replaces the wall clock. For tests.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) *Authority {
		a.now = now
		return a
	}
}

func New(signKey string, ttl time.Duration, options ...Option) *Authority {
	a := &Authority{
		key: []byte(signKey),
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range options {
		a = opt(a)
	}
	return a
}

// Issue signs a token naming subject, valid for the authority's ttl.
func (a *Authority) Issue(subject string) (string, error) {
	now := a.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	})
	return tok.SignedString(a.key)
}

// Verify parses and checks token, returning its claims.
//
// Malformed, forged and expired tokens come back as ErrInvalidToken.
func (a *Authority) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(
		token, claims,
		func(t *jwt.Token) (interface{}, error) { return a.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) ||
			errors.Is(err, jwt.ErrSignatureInvalid) ||
			errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Join(ErrInvalidToken, err)
		}
		return nil, err
	}
	if c, ok := tok.Claims.(*Claims); ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: unexpected claims type: %T", ErrInvalidToken, tok.Claims)
}
