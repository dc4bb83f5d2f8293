package jwtauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer produces signed bearer tokens for authenticated identities.
type Issuer struct {
	cfg *Config
}

// NewIssuer creates an Issuer signing with cfg's secret.
func NewIssuer(cfg *Config) *Issuer {
	return &Issuer{cfg: cfg}
}

// Issue returns an HS256 token carrying {sub: subject, exp: now+TokenValidity}.
// exp is stored in whole seconds and truncated, so a token issued at a
// fractional second expires up to one second before now+TokenValidity.
// The result only depends on subject and the whole second of now.
func (i *Issuer) Issue(subject string, now time.Time) (string, error) {
	expiresAt := now.Add(TokenValidity)
	if !expiresAt.After(now) {
		return "", &SigningError{Err: errors.New("expiration time overflows the clock")}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	tokenString, err := token.SignedString(i.cfg.secret)
	if err != nil {
		return "", &SigningError{Err: err}
	}

	return tokenString, nil
}
