package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Error is returned by every Engine operation that fails.
//
// Error codes:
//   - NOT_FOUND: unknown track, module, badge or certificate
//   - VALIDATION: malformed interaction payload or out-of-range value
//   - PERSISTENCE: the store failed; the call may be retried
//   - PREREQUISITES_UNMET: the module is locked under the enforced policy
//
// Uniqueness conflicts are resolved inside the engine and never produce an
// Error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context, such as per-field validation
	// messages keyed by field name.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates an unknown catalog or store entity.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeValidation indicates the caller sent a malformed request.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodePersistence indicates a store failure.
	ErrCodePersistence ErrorCode = "PERSISTENCE"

	// ErrCodePrerequisites indicates the module's prerequisites are not
	// completed and the enforced policy is active.
	ErrCodePrerequisites ErrorCode = "PREREQUISITES_UNMET"
)

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the call may succeed.
func (e *Error) Retryable() bool {
	return e.Code == ErrCodePersistence
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsNotFound returns true if err is a NOT_FOUND engine error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsValidation returns true if err is a VALIDATION engine error.
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsPersistence returns true if err is a PERSISTENCE engine error.
func IsPersistence(err error) bool { return hasCode(err, ErrCodePersistence) }

// IsPrerequisites returns true if err is a PREREQUISITES_UNMET engine error.
func IsPrerequisites(err error) bool { return hasCode(err, ErrCodePrerequisites) }

func notFound(err error) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "lookup failed", Err: err}
}

func validationf(format string, args ...any) *Error {
	return &Error{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

func persistence(op string, err error) *Error {
	return &Error{Code: ErrCodePersistence, Message: op, Err: err}
}

func prerequisitesUnmet(moduleID string, missing []string) *Error {
	return &Error{
		Code:    ErrCodePrerequisites,
		Message: fmt.Sprintf("module %s is locked", moduleID),
		Details: map[string]string{"missing": strings.Join(missing, ",")},
	}
}
