package ledger

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable failure class returned to callers.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindInvalidRule ErrorKind = "invalid_rule"
	KindNotFound    ErrorKind = "not_found"
	KindStorage     ErrorKind = "storage"
)

// Error is the typed failure every ledger operation returns.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Sentinels for errors.Is; they match any Error of the same kind.
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrInvalidRule = &Error{Kind: KindInvalidRule}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrStorage     = &Error{Kind: KindStorage}
)

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidRuleError(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRule, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewStorageError wraps an adapter failure without inspecting it.
func NewStorageError(op string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: op, Cause: cause}
}

// KindOf returns the kind of a ledger error, or KindStorage for anything else.
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindStorage
}

// MessageOf returns the human-readable part of a ledger error.
func MessageOf(err error) string {
	var le *Error
	if errors.As(err, &le) {
		if le.Kind == KindStorage && le.Cause != nil {
			return le.Message + ": " + le.Cause.Error()
		}
		return le.Message
	}
	return err.Error()
}
