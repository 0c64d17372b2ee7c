package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an operational failure. Every error that crosses a service
// boundary carries exactly one kind; controllers map kinds to HTTP statuses.
type Kind int

const (
	// KindValidation marks malformed or out-of-bounds answer/content/config.
	KindValidation Kind = iota + 1
	// KindProtection marks a rejected deletion of protected state
	// (original response, archived roadmap).
	KindProtection
	// KindStateConflict marks an operation attempted in an incompatible
	// status, e.g. generate while already generating.
	KindStateConflict
	// KindExternalService marks completion API failures, timeouts and
	// malformed responses. Recoverable via the roadmap ERROR state.
	KindExternalService
	// KindIntegrity marks unexpected inconsistencies such as a broken
	// backup chain. Fatal for the current operation.
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindProtection:
		return "protection"
	case KindStateConflict:
		return "state_conflict"
	case KindExternalService:
		return "external_service"
	case KindIntegrity:
		return "integrity"
	default:
		return "unknown"
	}
}

// Error is the single error type used across services. Field is optional and
// names the offending input for validation failures.
type Error struct {
	Kind  Kind
	Field string
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Message returns the reason without the kind/field prefix.
func (e *Error) Message() string { return e.msg }

func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, msg: fmt.Sprintf(format, args...)}
}

func Protection(format string, args ...any) *Error {
	return &Error{Kind: KindProtection, msg: fmt.Sprintf(format, args...)}
}

func StateConflict(format string, args ...any) *Error {
	return &Error{Kind: KindStateConflict, msg: fmt.Sprintf(format, args...)}
}

// ExternalService wraps a transport-level failure so the raw error never
// leaks past the completion client boundary.
func ExternalService(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindExternalService, msg: fmt.Sprintf(format, args...), cause: cause}
}

func Integrity(format string, args ...any) *Error {
	return &Error{Kind: KindIntegrity, msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, unwrapping as needed. Returns 0 when err
// carries no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsValidation(err error) bool      { return KindOf(err) == KindValidation }
func IsProtection(err error) bool      { return KindOf(err) == KindProtection }
func IsStateConflict(err error) bool   { return KindOf(err) == KindStateConflict }
func IsExternalService(err error) bool { return KindOf(err) == KindExternalService }
func IsIntegrity(err error) bool       { return KindOf(err) == KindIntegrity }
