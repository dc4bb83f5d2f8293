package jwtauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// SecurityEvent represents a structured security log entry
type SecurityEvent struct {
	EventType     string        // "success" or "failure"
	Timestamp     time.Time     // Event timestamp
	RequestID     string        // Correlation ID
	UserID        string        // Subject from claims (empty on failure)
	Algorithm     string        // Algorithm presented in the token header
	FailureReason string        // Error code (on failure)
	TokenPreview  string        // Redacted before logging
	Latency       time.Duration // Validation latency
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler with redaction
func (e SecurityEvent) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("event", e.EventType).
		Time("timestamp", e.Timestamp).
		Str("request_id", e.RequestID).
		Str("user_id", e.UserID).
		Str("algorithm", e.Algorithm).
		Str("failure_reason", e.FailureReason).
		Str("token", redactToken(e.TokenPreview)).
		Dur("latency", e.Latency)
}

// redactToken redacts sensitive token data
func redactToken(token string) string {
	if len(token) == 0 {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

// logSecurityEvent emits a security event via the configured logger
func logSecurityEvent(logger *zerolog.Logger, event SecurityEvent) {
	if logger == nil {
		return
	}

	if event.EventType == "failure" {
		logger.Warn().Object("auth_event", event).Msg("authentication failed")
	} else {
		logger.Info().Object("auth_event", event).Msg("authentication succeeded")
	}
}

// extractAlgorithmFromToken reads the alg header without verifying anything.
// Returns "MALFORMED" when the header cannot be decoded.
func extractAlgorithmFromToken(token string) string {
	if token == "" {
		return ""
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "MALFORMED"
	}

	if alg, ok := parsed.Header["alg"].(string); ok {
		return alg
	}
	return "MALFORMED"
}
