// Package csrf protects HTML form submissions against request forgery.
//
// Tokens are HS256-signed JWTs bound to the browser session id and signed
// with the application's secret key.
package csrf

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken indicates that an unsafe request carried no token.
	ErrMissingToken = errors.New("csrf token is missing")
	// ErrInvalidToken indicates a token that fails the signature or expiry checks.
	ErrInvalidToken = errors.New("csrf token is invalid")
	// ErrSessionMismatch indicates a valid token issued for another session.
	ErrSessionMismatch = errors.New("csrf token does not match session")
)

// defaultTTL is used when the configured lifetime is not positive.
const defaultTTL = time.Hour

// Issuer creates and verifies session-bound tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates a new Issuer with the provided secret and token lifetime.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a signed token for sessionID.
func (i *Issuer) Issue(sessionID string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign csrf token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and session binding of token.
func (i *Issuer) Verify(token, sessionID string) error {
	if token == "" {
		return ErrMissingToken
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	if claims.Subject != sessionID {
		return ErrSessionMismatch
	}
	return nil
}
