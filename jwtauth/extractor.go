package jwtauth

import (
	"net/http"
	"strings"

	"google.golang.org/grpc/metadata"
)

const bearerPrefix = "Bearer "

// extractBearer extracts the token from an Authorization header value.
// Expected format: "Bearer <token>", scheme matched case-sensitively.
func extractBearer(authHeader string) (string, error) {
	if authHeader == "" {
		return "", NewValidationError(ErrMissingToken, "authorization header not found", nil)
	}

	token, ok := strings.CutPrefix(authHeader, bearerPrefix)
	if !ok {
		return "", NewValidationError(ErrMalformed, "invalid authorization header format, expected 'Bearer <token>'", nil)
	}
	if token == "" {
		return "", NewValidationError(ErrMissingToken, "token is empty", nil)
	}

	return token, nil
}

// extractTokenFromCookie extracts JWT token from a cookie
func extractTokenFromCookie(r *http.Request, cookieName string) (string, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return "", NewValidationError(ErrMissingToken, "cookie not found", err)
	}

	token := strings.TrimSpace(cookie.Value)
	if token == "" {
		return "", NewValidationError(ErrMissingToken, "cookie value is empty", nil)
	}

	return token, nil
}

// extractToken extracts JWT token from HTTP request
// Checks Authorization header first, then falls back to cookie if configured
func extractToken(r *http.Request, cfg *Config) (string, error) {
	token, err := extractBearer(r.Header.Get("Authorization"))
	if err == nil {
		return token, nil
	}

	if cfg.CookieName() != "" {
		token, cookieErr := extractTokenFromCookie(r, cfg.CookieName())
		if cookieErr == nil {
			return token, nil
		}
	}

	// Report the header error, not the cookie one
	return "", err
}

// extractTokenFromMetadata extracts JWT token from gRPC metadata
func extractTokenFromMetadata(md metadata.MD) (string, error) {
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", NewValidationError(ErrMissingToken, "authorization metadata not found", nil)
	}
	return extractBearer(values[0])
}
