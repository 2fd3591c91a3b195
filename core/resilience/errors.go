package resilience

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide how to react without
// inspecting dependency-specific error values.
type Kind string

const (
	// KindNotFound means the entity is absent in the source of truth. Never retried.
	KindNotFound Kind = "not_found"
	// KindTimeout means the call exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindTransient means the dependency reported a recoverable failure.
	KindTransient Kind = "transient"
	// KindNonTransient means validation or permanent rejection. Never retried.
	KindNonTransient Kind = "non_transient"
	// KindCircuitOpen means the call was rejected fast because the breaker is open.
	KindCircuitOpen Kind = "circuit_open"
	// KindDataIntegrity means a record violated referential or shape constraints
	// after validation. The record is skipped, not run-fatal.
	KindDataIntegrity Kind = "data_integrity"
)

// Error tags an underlying failure with a Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with the given kind. A nil err yields a bare tagged error.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Errorf builds a tagged error from a format string.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind from err. Untagged errors are treated as
// transient so the retry and breaker policies err on the side of recovery.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindTransient
}

// IsRetryable reports whether the failure kind is eligible for retry.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindTransient:
		return true
	default:
		return false
	}
}
