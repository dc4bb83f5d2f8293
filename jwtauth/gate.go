package jwtauth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Gate admits or rejects requests to protected operations. Every rejection is
// reported identically to the caller; the cause only reaches the security log.
type Gate struct {
	cfg       *Config
	validator *Validator
}

// NewGate creates a Gate validating tokens with cfg.
func NewGate(cfg *Config) *Gate {
	return &Gate{
		cfg:       cfg,
		validator: NewValidator(cfg),
	}
}

// Authorize checks the raw Authorization header value and returns the trusted
// identity on success.
func (g *Gate) Authorize(ctx context.Context, authorization string) (*Claims, error) {
	token, err := extractBearer(authorization)
	return g.check(ctx, token, err)
}

// authorizeRequest checks the Authorization header, falling back to the
// configured cookie.
func (g *Gate) authorizeRequest(r *http.Request) (*Claims, error) {
	token, err := extractToken(r, g.cfg)
	return g.check(r.Context(), token, err)
}

func (g *Gate) check(ctx context.Context, token string, extractErr error) (*Claims, error) {
	startTime := time.Now()
	requestID, _ := GetRequestID(ctx)

	if extractErr != nil {
		g.logFailure(requestID, token, extractErr, time.Since(startTime))
		return nil, extractErr
	}

	claims, err := g.validator.Validate(token, g.cfg.Now())
	if err != nil {
		g.logFailure(requestID, token, err, time.Since(startTime))
		return nil, err
	}

	g.logSuccess(requestID, claims, token, time.Since(startTime))
	return claims, nil
}

// Middleware returns a net/http decorator guarding next.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = withRequestID(r)

		claims, err := g.authorizeRequest(r)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// withRequestID makes sure the request context carries a correlation ID,
// taking X-Request-ID when the client sent one.
func withRequestID(r *http.Request) *http.Request {
	if _, ok := GetRequestID(r.Context()); ok {
		return r
	}
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return r.WithContext(WithRequestID(r.Context(), requestID))
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Reason: UnauthorizedReason})
}

func (g *Gate) logSuccess(requestID string, claims *Claims, token string, latency time.Duration) {
	if g.cfg.Logger() == nil {
		return
	}

	logSecurityEvent(g.cfg.Logger(), SecurityEvent{
		EventType:    "success",
		Timestamp:    time.Now(),
		RequestID:    requestID,
		UserID:       claims.Subject,
		Algorithm:    extractAlgorithmFromToken(token),
		TokenPreview: token,
		Latency:      latency,
	})
}

func (g *Gate) logFailure(requestID string, token string, err error, latency time.Duration) {
	if g.cfg.Logger() == nil {
		return
	}

	logSecurityEvent(g.cfg.Logger(), SecurityEvent{
		EventType:     "failure",
		Timestamp:     time.Now(),
		RequestID:     requestID,
		Algorithm:     extractAlgorithmFromToken(token),
		FailureReason: getErrorCode(err),
		TokenPreview:  token,
		Latency:       latency,
	})
}
