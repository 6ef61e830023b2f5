package interp

import (
	"fmt"

	"github.com/formalang/forma/internal/token"
)

// ErrorKind classifies a runtime failure the way the diagnostics package
// classifies compile-time ones.
type ErrorKind string

const (
	ErrDivByZero        ErrorKind = "DIVIDE_BY_ZERO"
	ErrIndexOutOfBounds ErrorKind = "INDEX_OUT_OF_BOUNDS"
	ErrKeyNotFound      ErrorKind = "KEY_NOT_FOUND"
	ErrUnwrapNone       ErrorKind = "UNWRAP_NONE"
	ErrCapabilityDenied ErrorKind = "CAPABILITY_DENIED"
	ErrContractViolated ErrorKind = "CONTRACT_VIOLATED"
	ErrUnknownField     ErrorKind = "UNKNOWN_FIELD"
	ErrNotCallable      ErrorKind = "NOT_CALLABLE"
	ErrUndefinedName    ErrorKind = "UNDEFINED_NAME"
	ErrNoMatchingArm    ErrorKind = "NO_MATCHING_ARM"
	ErrHostFailure      ErrorKind = "HOST_FAILURE"
)

// InterpError is a runtime error carrying enough context to render a
// diagnostics.Diagnostic at the driver boundary without importing
// diagnostics here (interp stays independent of the CLI's rendering path).
type InterpError struct {
	Kind    ErrorKind
	Message string
	Span    token.Span
}

func (e *InterpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newErr(kind ErrorKind, span token.Span, format string, args ...interface{}) *InterpError {
	return &InterpError{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}
