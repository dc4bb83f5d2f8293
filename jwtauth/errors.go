package jwtauth

import (
	"errors"
	"fmt"
)

// ErrorCode represents a validation error code
type ErrorCode string

const (
	ErrExpired              ErrorCode = "EXPIRED"
	ErrInvalidSignature     ErrorCode = "INVALID_SIGNATURE"
	ErrMissingToken         ErrorCode = "MISSING_TOKEN"
	ErrMalformed            ErrorCode = "MALFORMED"
	ErrNoneAlgorithm        ErrorCode = "NONE_ALGORITHM"
	ErrConfigError          ErrorCode = "CONFIG_ERROR"
	ErrUnsupportedAlgorithm ErrorCode = "UNSUPPORTED_ALGORITHM"
	ErrMissingClaim         ErrorCode = "MISSING_CLAIM"
)

// UnauthorizedReason is the only reason ever reported to a rejected caller.
const UnauthorizedReason = "Unauthorized"

// ErrorResponse is the JSON body written when the Gate rejects a request.
type ErrorResponse struct {
	Reason string `json:"reason"`
}

// ValidationError represents a JWT validation error with a code and message
type ValidationError struct {
	Code     ErrorCode
	Message  string
	Internal error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *ValidationError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(code ErrorCode, message string, internal error) *ValidationError {
	return &ValidationError{
		Code:     code,
		Message:  message,
		Internal: internal,
	}
}

// ErrTokenSigning matches every *SigningError via errors.Is.
var ErrTokenSigning = errors.New("token signing failed")

// SigningError reports a failure to produce a token. It only happens on clock
// or environment failures and is never caused by caller input.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("%v: %v", ErrTokenSigning, e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

func (e *SigningError) Is(target error) bool {
	return target == ErrTokenSigning
}

// getErrorCode extracts the error code from a validation error
func getErrorCode(err error) string {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return string(valErr.Code)
	}
	return "UNKNOWN"
}
