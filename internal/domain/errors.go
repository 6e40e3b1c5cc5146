package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. The remote-call taxonomy
// (auth/timeout/server/malformed) is what the tool adapters translate into
// model-visible error text; the rest surface as ordinary Go errors.
var (
	ErrAuthInvalid       = fmt.Errorf("authentication failed")
	ErrTimeout           = fmt.Errorf("request timed out")
	ErrRemoteServer      = fmt.Errorf("remote server error")
	ErrMalformedResponse = fmt.Errorf("malformed response")
	ErrRateLimit         = fmt.Errorf("rate limit exceeded")

	ErrMissingAPIKey = fmt.Errorf("api key not configured")
	ErrToolNotFound  = fmt.Errorf("tool not found")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrConfigLoad    = fmt.Errorf("failed to load configuration")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Registry.Get")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ValidationError reports a malformed tool invocation: a missing required
// parameter, an unknown key, or a value of the wrong type. It is the caller's
// bug, so Execute returns it as a Go error instead of hiding it in a
// ToolResult, and it is always produced before any network call.
type ValidationError struct {
	Tool   string // tool name
	Field  string // offending parameter, empty if the whole payload is bad
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: invalid params: %q %s", e.Tool, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: invalid params: %s", e.Tool, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a ValidationError for the given tool and field.
func NewValidationError(tool, field, reason string) *ValidationError {
	return &ValidationError{Tool: tool, Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
