package jwtauth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestValidityWindow tests acceptance for now <= t < now+24h and rejection after
func TestValidityWindow(t *testing.T) {
	cfg := mustCreateConfig(WithHS256(testSecret()))
	token, err := NewIssuer(cfg).Issue("alice@example.org", testNow)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	validator := NewValidator(cfg)

	tests := []struct {
		name        string
		at          time.Time
		expectedErr ErrorCode
	}{
		{name: "at issuance", at: testNow},
		{name: "one hour later", at: testNow.Add(time.Hour)},
		{name: "last nanosecond of the window", at: testNow.Add(24*time.Hour - time.Nanosecond)},
		{name: "exactly at expiry", at: testNow.Add(24 * time.Hour), expectedErr: ErrExpired},
		{name: "a day after expiry", at: testNow.Add(48 * time.Hour), expectedErr: ErrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := validator.Validate(token, tt.at)

			if tt.expectedErr != "" {
				assertValidationError(t, err, tt.expectedErr)
				return
			}

			if err != nil {
				t.Fatalf("expected token to validate, got %v", err)
			}
			if claims.Subject != "alice@example.org" {
				t.Errorf("expected subject alice@example.org, got %s", claims.Subject)
			}
			if !claims.ExpiresAt.Equal(testNow.Add(24 * time.Hour)) {
				t.Errorf("expected exp %v, got %v", testNow.Add(24*time.Hour), claims.ExpiresAt)
			}
		})
	}
}

// TestClockSkewLeeway verifies the optional tolerance on the exp check
func TestClockSkewLeeway(t *testing.T) {
	cfg := mustCreateConfig(WithHS256(testSecret()), WithClockSkew(30*time.Second))
	token, _ := NewIssuer(cfg).Issue("alice@example.org", testNow)
	validator := NewValidator(cfg)

	if _, err := validator.Validate(token, testNow.Add(24*time.Hour+10*time.Second)); err != nil {
		t.Errorf("expected token inside leeway to validate, got %v", err)
	}
	_, err := validator.Validate(token, testNow.Add(24*time.Hour+30*time.Second))
	assertValidationError(t, err, ErrExpired)
}

// TestUnsupportedAlgorithmRejection tests that only HS256 is accepted
func TestUnsupportedAlgorithmRejection(t *testing.T) {
	secret := testSecret()
	cfg := mustCreateConfig(WithHS256(secret))
	validator := NewValidator(cfg)

	tests := []struct {
		name   string
		method jwt.SigningMethod
	}{
		{name: "HS384 rejected", method: jwt.SigningMethodHS384},
		{name: "HS512 rejected", method: jwt.SigningMethodHS512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signClaims(t, tt.method, secret, jwt.MapClaims{
				"sub": "alice@example.org",
				"exp": testNow.Add(time.Hour).Unix(),
			})

			_, err := validator.Validate(token, testNow)
			assertValidationError(t, err, ErrUnsupportedAlgorithm)
		})
	}
}

// TestNoneAlgorithmRejection tests rejection of unsigned tokens
func TestNoneAlgorithmRejection(t *testing.T) {
	cfg := mustCreateConfig(WithHS256(testSecret()))

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alice@example.org",
		"exp": testNow.Add(time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to create none token: %v", err)
	}

	_, err = NewValidator(cfg).Validate(tokenString, testNow)
	assertValidationError(t, err, ErrNoneAlgorithm)
}

// TestMalformedTokens tests inputs that are not three-part JWTs
func TestMalformedTokens(t *testing.T) {
	validator := NewValidator(mustCreateConfig(WithHS256(testSecret())))

	tests := []struct {
		name  string
		token string
	}{
		{name: "random text", token: "not-a-token"},
		{name: "two segments", token: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJhIn0"},
		{name: "invalid base64 header", token: "!!!.eyJzdWIiOiJhIn0.c2ln"},
		{name: "header is not JSON", token: "bm90LWpzb24.eyJzdWIiOiJhIn0.c2ln"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.Validate(tt.token, testNow)
			assertValidationError(t, err, ErrMalformed)
		})
	}
}

// TestMissingClaims tests tokens lacking sub or exp
func TestMissingClaims(t *testing.T) {
	secret := testSecret()
	validator := NewValidator(mustCreateConfig(WithHS256(secret)))

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{name: "missing sub", claims: jwt.MapClaims{"exp": testNow.Add(time.Hour).Unix()}},
		{name: "empty sub", claims: jwt.MapClaims{"sub": "", "exp": testNow.Add(time.Hour).Unix()}},
		{name: "missing exp", claims: jwt.MapClaims{"sub": "alice@example.org"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signClaims(t, jwt.SigningMethodHS256, secret, tt.claims)
			_, err := validator.Validate(token, testNow)
			assertValidationError(t, err, ErrMissingClaim)
		})
	}
}

// TestUntrustedClaimsIgnored verifies extra claims never reach Claims
func TestUntrustedClaimsIgnored(t *testing.T) {
	secret := testSecret()
	validator := NewValidator(mustCreateConfig(WithHS256(secret)))

	token := signClaims(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
		"sub":   "alice@example.org",
		"exp":   testNow.Add(time.Hour).Unix(),
		"nbf":   testNow.Add(time.Hour).Unix(),
		"admin": true,
	})

	claims, err := validator.Validate(token, testNow)
	if err != nil {
		t.Fatalf("expected extra claims to be ignored, got %v", err)
	}
	if claims.Subject != "alice@example.org" {
		t.Errorf("unexpected subject %q", claims.Subject)
	}
}

// assertValidationError checks err is a *ValidationError carrying code
func assertValidationError(t *testing.T, err error, code ErrorCode) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if valErr.Code != code {
		t.Errorf("expected error code %s, got %s (%s)", code, valErr.Code, valErr.Message)
	}
}

func signClaims(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()

	tokenString, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tokenString
}
