package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validator verifies tokens produced by an Issuer sharing the same Config.
type Validator struct {
	cfg    *Config
	parser *jwt.Parser
}

// NewValidator creates a Validator bound to cfg.
func NewValidator(cfg *Config) *Validator {
	return &Validator{
		cfg: cfg,
		// Time-based claims are checked by validateClaims against the caller's clock.
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
	}
}

// Validate parses tokenString, verifies its signature and checks that it has
// not expired at now. Every failure is a *ValidationError.
func (v *Validator) Validate(tokenString string, now time.Time) (*Claims, error) {
	registered := &jwt.RegisteredClaims{}

	token, err := v.parser.ParseWithClaims(tokenString, registered, func(token *jwt.Token) (interface{}, error) {
		return validateAlgorithm(token, v.cfg)
	})
	if err != nil {
		// The JWT library wraps keyfunc errors, so unwrap ours first
		var valErr *ValidationError
		if errors.As(err, &valErr) {
			return nil, valErr
		}

		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, NewValidationError(ErrInvalidSignature, "invalid signature", err)
		case errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, NewValidationError(ErrUnsupportedAlgorithm, "token cannot be verified", err)
		default:
			return nil, NewValidationError(ErrMalformed, "malformed token", err)
		}
	}

	if !token.Valid {
		return nil, NewValidationError(ErrInvalidSignature, "token is invalid", nil)
	}

	claims, err := toClaims(registered)
	if err != nil {
		return nil, err
	}

	if err := validateClaims(claims, now, v.cfg.ClockSkewLeeway()); err != nil {
		return nil, err
	}

	return claims, nil
}

// validateAlgorithm ensures the token is HMAC-SHA256 signed and returns the
// verification key. Checking the method type as well as the header value
// prevents algorithm confusion.
func validateAlgorithm(token *jwt.Token, cfg *Config) (interface{}, error) {
	alg, _ := token.Header["alg"].(string)

	if alg == "none" || alg == "None" || alg == "NONE" {
		return nil, NewValidationError(ErrNoneAlgorithm, "none algorithm not allowed", nil)
	}

	if alg != cfg.Algorithm() {
		return nil, NewValidationError(
			ErrUnsupportedAlgorithm,
			fmt.Sprintf("algorithm %s not supported (available: %s)", alg, cfg.Algorithm()),
			nil,
		)
	}

	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, NewValidationError(
			ErrInvalidSignature,
			fmt.Sprintf("algorithm confusion detected: token method %s is not HMAC", token.Method.Alg()),
			nil,
		)
	}

	return cfg.secret, nil
}

// toClaims keeps the trusted subset of the registered claims
func toClaims(registered *jwt.RegisteredClaims) (*Claims, error) {
	if registered.Subject == "" {
		return nil, NewValidationError(ErrMissingClaim, "required claim missing: sub", nil)
	}
	if registered.ExpiresAt == nil {
		return nil, NewValidationError(ErrMissingClaim, "required claim missing: exp", nil)
	}

	return &Claims{
		Subject:   registered.Subject,
		ExpiresAt: registered.ExpiresAt.Time,
	}, nil
}

// validateClaims rejects tokens whose expiration is not strictly after now
func validateClaims(claims *Claims, now time.Time, skew time.Duration) error {
	if !now.Before(claims.ExpiresAt.Add(skew)) {
		return NewValidationError(
			ErrExpired,
			fmt.Sprintf("token expired at %v", claims.ExpiresAt),
			nil,
		)
	}
	return nil
}
